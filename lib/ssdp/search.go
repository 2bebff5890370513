// Copyright (C) 2026 The Cohen3 Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package ssdp

import (
	"context"
	"strconv"
	"time"

	"github.com/opacam/Cohen3-sub000/lib/svcutil"
)

const (
	DefaultSearchInterval = 120 * time.Second
	// searchRepeat is how many copies of each periodic search are sent, as
	// a single UDP datagram is easily lost.
	searchRepeat = 2
	searchMX     = 5
)

// Searcher periodically multicasts an ssdp:all M-SEARCH from its own
// unicast socket and hands the responses to the Server, which registers
// the responders as remote services.
type Searcher struct {
	srv      *Server
	tr       Transport
	interval time.Duration
}

// NewSearcher returns a Searcher repeating its search every interval, or
// every DefaultSearchInterval when interval is not positive.
func NewSearcher(srv *Server, tr Transport, interval time.Duration) *Searcher {
	if interval <= 0 {
		interval = DefaultSearchInterval
	}
	return &Searcher{srv: srv, tr: tr, interval: interval}
}

func (s *Searcher) String() string {
	return "ssdp.Searcher"
}

// Serve searches immediately and then every interval until ctx is
// cancelled. The transport is closed on return.
func (s *Searcher) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	readErr := make(chan error, 1)
	go func() {
		readErr <- s.readLoop(ctx)
	}()

	ticker := s.srv.clock.NewTicker(s.interval)
	defer ticker.Stop()

	s.searchAll(ctx)
	for {
		select {
		case <-ticker.C():
			s.searchAll(ctx)
		case err := <-readErr:
			s.tr.Close()
			l.Warnln("SSDP search receive failed:", err)
			return svcutil.NoRestartErr(err)
		case <-ctx.Done():
			s.tr.Close()
			<-readErr
			return nil
		}
	}
}

func (s *Searcher) readLoop(ctx context.Context) error {
	buf := make([]byte, maxDatagram)
	for {
		n, src, err := s.tr.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		s.srv.HandleDatagram(buf[:n], src)
	}
}

func (s *Searcher) searchAll(ctx context.Context) {
	for i := 0; i < searchRepeat; i++ {
		if err := s.Search(ctx, SearchAll, searchMX); err != nil {
			l.Debugln("periodic search:", err)
			return
		}
	}
}

// Search multicasts a single M-SEARCH for st, asking for responses within
// mx seconds.
func (s *Searcher) Search(ctx context.Context, st string, mx int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.tr.WriteTo(searchRequest(st, mx), multicastGroup); err != nil {
		metricSendErrors.Inc()
		return &TransportWriteError{Addr: multicastGroup, Err: err}
	}
	return nil
}

// SearchOnce sends a search for st and hands the responses arriving within
// mx seconds, plus one second of slack, to the Server. The transport is
// closed on return.
func (s *Searcher) SearchOnce(ctx context.Context, st string, mx int) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(mx+1)*time.Second)
	defer cancel()

	readErr := make(chan error, 1)
	go func() {
		readErr <- s.readLoop(ctx)
	}()
	stop := func() {
		cancel()
		s.tr.Close()
		<-readErr
	}

	for i := 0; i < searchRepeat; i++ {
		if err := s.Search(ctx, st, mx); err != nil {
			stop()
			return err
		}
	}

	select {
	case err := <-readErr:
		cancel()
		s.tr.Close()
		return err
	case <-ctx.Done():
		stop()
		return nil
	}
}

func searchRequest(st string, mx int) []byte {
	h := NewHeader()
	h.Set("HOST", MulticastAddr)
	h.Set("MAN", `"ssdp:discover"`)
	h.Set("MX", strconv.Itoa(mx))
	h.Set("ST", st)
	return Encode("M-SEARCH * HTTP/1.1", h, time.Time{})
}
