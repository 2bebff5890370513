// Copyright (C) 2026 The Cohen3 Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Command cohen-ssdp runs the Cohen3 SSDP presence and discovery engine,
// announcing the configured UPnP devices and tracking the ones announced
// by others on the local network.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/opacam/Cohen3-sub000/lib/automaxprocs"
	"github.com/opacam/Cohen3-sub000/lib/build"
	"github.com/opacam/Cohen3-sub000/lib/config"
	"github.com/opacam/Cohen3-sub000/lib/logger"
	"github.com/opacam/Cohen3-sub000/lib/ssdp"
	"github.com/opacam/Cohen3-sub000/lib/svcutil"
)

var l = logger.DefaultLogger.NewFacility("main", "Main package")

type CLI struct {
	Version       versionCommand       `cmd:"" help:"Show version"`
	Serve         serveCommand         `cmd:"" default:"withargs" help:"Announce the configured devices and track remote ones"`
	Search        searchCommand        `cmd:"" help:"Send a single M-SEARCH and list the responders"`
	Watch         watchCommand         `cmd:"" help:"Print root devices as they appear and disappear"`
	DefaultConfig defaultConfigCommand `cmd:"" help:"Print the default configuration"`
}

type commonOptions struct {
	Config    string `short:"c" type:"path" placeholder:"PATH" env:"COHEN_CONFIG" help:"Configuration file"`
	Interface string `short:"i" placeholder:"NAME" env:"COHEN_INTERFACE" help:"Network interface to use, default all multicast capable ones"`
	Debug     bool   `env:"COHEN_DEBUG" help:"Enable debug output for all facilities"`
}

// load returns the configuration file contents, or the defaults when no
// file was given, with the command line overrides applied.
func (o commonOptions) load() (config.Configuration, error) {
	if o.Debug {
		for facility := range logger.DefaultLogger.Facilities() {
			logger.DefaultLogger.SetDebug(facility, true)
		}
	}

	cfg := config.New()
	if o.Config != "" {
		var err error
		cfg, err = config.Load(o.Config)
		if err != nil {
			return cfg, svcutil.AsFatalErr(err, svcutil.ExitConfig)
		}
	}
	if o.Interface != "" {
		cfg.Interface = o.Interface
	}
	if err := cfg.Validate(); err != nil {
		return cfg, svcutil.AsFatalErr(fmt.Errorf("%s: %w", o.configName(), err), svcutil.ExitConfig)
	}
	return cfg, nil
}

func (o commonOptions) configName() string {
	if o.Config == "" {
		return "default configuration"
	}
	return o.Config
}

type versionCommand struct{}

func (versionCommand) Run() error {
	fmt.Println(build.LongVersion)
	return nil
}

type defaultConfigCommand struct{}

func (defaultConfigCommand) Run() error {
	cfg := config.New()
	cfg.Devices = append(cfg.Devices, config.DeviceConfiguration{
		Type:         "MediaServer",
		Version:      2,
		LocationBase: "http://192.168.1.10:30020",
		Services: []config.ServiceConfiguration{
			{ID: "ContentDirectory"},
			{ID: "ConnectionManager"},
		},
	})
	bs, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(bs)
	return err
}

func main() {
	var cli CLI
	kongCtx := kong.Parse(&cli,
		kong.Name("cohen-ssdp"),
		kong.Description("SSDP presence and discovery for UPnP devices"),
		kong.UsageOnError(),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	kongCtx.BindTo(ctx, (*context.Context)(nil))

	err := kongCtx.Run()
	cancel()
	os.Exit(exitStatus(err).AsInt())
}

// exitStatus logs err and chooses the process exit status for it.
func exitStatus(err error) svcutil.ExitStatus {
	if err == nil {
		return svcutil.ExitSuccess
	}
	l.Warnln(err)

	var bindErr *ssdp.BindError
	if errors.As(err, &bindErr) {
		return svcutil.ExitBind
	}
	var fatalErr *svcutil.FatalErr
	if errors.As(err, &fatalErr) {
		return fatalErr.Status
	}
	return svcutil.ExitError
}

// metricsService serves the Prometheus metrics on addr until ctx is
// cancelled.
func metricsService(addr string) svcutil.ServiceWithError {
	return svcutil.AsService(func(ctx context.Context) error {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		srv := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errs := make(chan error, 1)
		go func() {
			errs <- srv.ListenAndServe()
		}()
		l.Infoln("Serving metrics on", addr)

		select {
		case err := <-errs:
			return svcutil.NoRestartErr(err)
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		}
	}, "metrics@"+addr)
}
