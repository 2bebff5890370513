// Copyright (C) 2026 The Cohen3 Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gobwas/glob"

	"github.com/opacam/Cohen3-sub000/lib/events"
	"github.com/opacam/Cohen3-sub000/lib/ssdp"
	"github.com/opacam/Cohen3-sub000/lib/svcutil"
)

type watchCommand struct {
	commonOptions
	Filter   string        `short:"f" placeholder:"GLOB" help:"Only show services whose search target or USN matches the pattern"`
	Events   []string      `default:"NewRootDevice,RootDeviceRemoved" placeholder:"TYPE,..." help:"Event types to show: NewRootDevice, RootDeviceRemoved, ServiceAdded, ServiceRemoved"`
	For      time.Duration `placeholder:"DURATION" help:"Stop watching after this long"`
}

func (c *watchCommand) Run(ctx context.Context) error {
	cfg, err := c.load()
	if err != nil {
		return err
	}
	// Watching is passive; nothing of our own is announced.
	cfg.Devices = nil

	mask, err := eventMask(c.Events)
	if err != nil {
		return svcutil.AsFatalErr(err, svcutil.ExitConfig)
	}

	var filter glob.Glob
	if c.Filter != "" {
		filter, err = glob.Compile(c.Filter)
		if err != nil {
			return svcutil.AsFatalErr(fmt.Errorf("filter: %w", err), svcutil.ExitConfig)
		}
	}

	sup, srv, err := newEngine(cfg, events.NewLogger())
	if err != nil {
		return err
	}

	sub := srv.Subscribe(mask)
	sup.Add(svcutil.AsService(func(ctx context.Context) error {
		defer srv.Unsubscribe(sub)
		return logEvents(ctx, sub, filter, eventLine{w: os.Stdout})
	}, "watch"))

	if c.For > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.For)
		defer cancel()
	}
	return serveTree(ctx, sup)
}

// eventMask parses event type names into a subscription mask. Only the
// events carrying a service can be watched.
func eventMask(names []string) (events.EventType, error) {
	const watchable = events.NewRootDevice | events.RootDeviceRemoved | events.ServiceAdded | events.ServiceRemoved
	var mask events.EventType
	for _, name := range names {
		t := events.UnmarshalEventType(name)
		if t&watchable == 0 {
			return 0, fmt.Errorf("cannot watch event type %q", name)
		}
		mask |= t
	}
	if mask == 0 {
		return 0, errors.New("no event types to watch")
	}
	return mask, nil
}

// logEvents writes every service event from sub that matches filter until
// ctx is cancelled. A nil filter matches everything.
func logEvents(ctx context.Context, sub *events.Subscription, filter glob.Glob, out eventLine) error {
	for {
		select {
		case ev, ok := <-sub.C():
			if !ok {
				return nil
			}
			svc, ok := ev.Data.(ssdp.Service)
			if !ok {
				continue
			}
			if filter != nil && !filter.Match(svc.ST) && !filter.Match(svc.USN) {
				continue
			}
			if err := out.print(ev.Type, svc); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}

type eventLine struct {
	w io.Writer
}

func (e eventLine) print(t events.EventType, svc ssdp.Service) error {
	verb := "+"
	if t == events.RootDeviceRemoved || t == events.ServiceRemoved {
		verb = "-"
	}
	line := fmt.Sprintf("%s %s %s %s", verb, svc.Manifestation, svc.USN, svc.ST)
	if svc.Location != "" {
		line += " " + svc.Location
	}
	if svc.Host != "" {
		line += " from " + svc.Host
	}
	_, err := fmt.Fprintln(e.w, line)
	return err
}
