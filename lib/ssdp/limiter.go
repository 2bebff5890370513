// Copyright (C) 2026 The Cohen3 Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package ssdp

import (
	"net"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// searchLimiter keeps a token bucket per requesting host, so that a single
// chatty control point cannot make us flood the segment with responses.
// Only the most recently seen hosts are tracked.
type searchLimiter struct {
	limit   rate.Limit
	burst   int
	buckets *lru.Cache[string, *rate.Limiter]
}

// newSearchLimiter returns nil, meaning unlimited, when limit or size is
// not positive.
func newSearchLimiter(limit rate.Limit, burst, size int) *searchLimiter {
	if limit <= 0 || size <= 0 {
		return nil
	}
	buckets, err := lru.New[string, *rate.Limiter](size)
	if err != nil {
		panic("bug: " + err.Error())
	}
	return &searchLimiter{limit: limit, burst: burst, buckets: buckets}
}

func (s *searchLimiter) allow(src net.Addr, now time.Time) bool {
	if s == nil {
		return true
	}
	key := hostOf(src)
	bkt, ok := s.buckets.Get(key)
	if !ok {
		bkt = rate.NewLimiter(s.limit, s.burst)
		if prev, found, _ := s.buckets.PeekOrAdd(key, bkt); found {
			bkt = prev
		}
	}
	return bkt.AllowN(now, 1)
}

// hostOf returns the IP part of addr, or its string form when it has none.
func hostOf(addr net.Addr) string {
	switch a := addr.(type) {
	case nil:
		return ""
	case *net.UDPAddr:
		return a.IP.String()
	}
	if host, _, err := net.SplitHostPort(addr.String()); err == nil {
		return host
	}
	return addr.String()
}
