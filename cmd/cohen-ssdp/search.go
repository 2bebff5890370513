// Copyright (C) 2026 The Cohen3 Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/opacam/Cohen3-sub000/lib/ssdp"
)

type searchCommand struct {
	commonOptions
	Target string `arg:"" optional:"" default:"ssdp:all" help:"Search target, e.g. upnp:rootdevice or a device type URN"`
	MX     int    `default:"3" help:"Seconds responders may wait before answering"`
}

func (c *searchCommand) Run(ctx context.Context) error {
	cfg, err := c.load()
	if err != nil {
		return err
	}
	if c.MX < 1 || c.MX > 120 {
		return fmt.Errorf("mx must be between 1 and 120, not %d", c.MX)
	}

	tr, err := ssdp.ListenUnicast(cfg.Interface)
	if err != nil {
		return err
	}
	// The server is never served; it only collects the responses.
	srv := ssdp.NewServer(tr, nil, cfg.ServerOptions()...)
	if err := ssdp.NewSearcher(srv, tr, 0).SearchOnce(ctx, c.Target, c.MX); err != nil {
		return err
	}
	return printServices(os.Stdout, srv.Services())
}

func printServices(w io.Writer, services []ssdp.Service) error {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USN\tST\tLOCATION\tSERVER")
	for _, svc := range services {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", svc.USN, svc.ST, svc.Location, svc.Server)
	}
	return tw.Flush()
}
