// Copyright (C) 2026 The Cohen3 Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"context"
	"errors"

	"github.com/thejerf/suture/v4"

	"github.com/opacam/Cohen3-sub000/lib/config"
	"github.com/opacam/Cohen3-sub000/lib/events"
	"github.com/opacam/Cohen3-sub000/lib/ssdp"
	"github.com/opacam/Cohen3-sub000/lib/svcutil"
)

type serveCommand struct {
	commonOptions
	MetricsListen string `placeholder:"ADDR" env:"COHEN_METRICS_LISTEN" help:"Serve Prometheus metrics on this address"`
	SaveConfig    bool   `default:"true" negatable:"" help:"Write generated device UUIDs back to the configuration file"`
}

func (c *serveCommand) Run(ctx context.Context) error {
	cfg, err := c.load()
	if err != nil {
		return err
	}
	if cfg.EnsureUUIDs() && c.Config != "" && c.SaveConfig {
		if err := cfg.Save(c.Config); err != nil {
			return svcutil.AsFatalErr(err, svcutil.ExitConfig)
		}
		l.Infoln("Saved generated device UUIDs to", c.Config)
	}

	evLogger := events.NewLogger()
	sup, srv, err := newEngine(cfg, evLogger)
	if err != nil {
		return err
	}

	for _, dev := range cfg.SSDPDevices() {
		if err := srv.RegisterDevice(dev); err != nil {
			return err
		}
		l.Infof("Announcing %s device %s", dev.Type, dev.UUID)
	}

	sub := srv.Subscribe(events.NewRootDevice | events.RootDeviceRemoved)
	sup.Add(svcutil.AsService(func(ctx context.Context) error {
		defer srv.Unsubscribe(sub)
		return logEvents(ctx, sub, nil, eventLine{w: logWriter{}})
	}, "eventlog"))

	if c.MetricsListen != "" {
		sup.Add(metricsService(c.MetricsListen))
	}

	return serveTree(ctx, sup)
}

// newEngine binds the SSDP sockets for cfg and returns a supervisor running
// the protocol engine, plus the periodic searcher when enabled.
func newEngine(cfg config.Configuration, evLogger *events.Logger) (*suture.Supervisor, *ssdp.Server, error) {
	tr, err := ssdp.ListenMulticast(cfg.Interface)
	if err != nil {
		return nil, nil, err
	}
	srv := ssdp.NewServer(tr, evLogger, cfg.ServerOptions()...)

	sup := suture.New("main", svcutil.SpecWithInfoLogger(l))
	sup.Add(svcutil.AsService(func(ctx context.Context) error {
		if err := srv.Serve(ctx); err != nil {
			return svcutil.AsFatalErr(err, svcutil.ExitError)
		}
		return nil
	}, srv.String()))

	if cfg.ActiveSearch {
		utr, err := ssdp.ListenUnicast(cfg.Interface)
		if err != nil {
			tr.Close()
			return nil, nil, err
		}
		// Searcher restarts are logged at debug level only.
		search := suture.New("search", svcutil.SpecWithDebugLogger(l))
		search.Add(ssdp.NewSearcher(srv, utr, cfg.SearchInterval()))
		sup.Add(search)
	}
	return sup, srv, nil
}

// serveTree runs sup until ctx is cancelled or a service fails fatally.
func serveTree(ctx context.Context, sup *suture.Supervisor) error {
	err := sup.Serve(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// logWriter sends event lines to the info log.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	l.Infof("%s", trimNewline(p))
	return len(p), nil
}

func trimNewline(p []byte) []byte {
	if n := len(p); n > 0 && p[n-1] == '\n' {
		return p[:n-1]
	}
	return p
}
