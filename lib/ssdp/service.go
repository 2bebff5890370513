// Copyright (C) 2026 The Cohen3 Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package ssdp

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	// RootDevice is the search target of top level UPnP devices.
	RootDevice = "upnp:rootdevice"
	// SearchAll matches every loud local service.
	SearchAll = "ssdp:all"

	ntsAlive  = "ssdp:alive"
	ntsByebye = "ssdp:byebye"
)

type Manifestation int

const (
	// Local services originate in this process and are announced by it.
	Local Manifestation = iota + 1
	// Remote services were learned from the network and expire.
	Remote
)

func (m Manifestation) String() string {
	switch m {
	case Local:
		return "local"
	case Remote:
		return "remote"
	default:
		return fmt.Sprintf("Manifestation(%d)", int(m))
	}
}

// Service is one announced service instance, keyed by USN.
type Service struct {
	USN           string
	ST            string
	Location      string
	Server        string
	CacheControl  string
	MaxAge        time.Duration
	Manifestation Manifestation
	// Silent services are never announced and do not answer ssdp:all.
	Silent   bool
	Host     string
	LastSeen time.Time
}

func (s Service) IsRootDevice() bool {
	return s.ST == RootDevice
}

// expired reports whether a remote service has outlived its max-age plus
// the grace period.
func (s Service) expired(now time.Time, grace time.Duration) bool {
	if s.Manifestation != Remote {
		return false
	}
	return s.LastSeen.Add(s.MaxAge + grace).Before(now)
}

// matches reports whether the service answers an M-SEARCH for st.
func (s Service) matches(st string) bool {
	if s.Manifestation != Local {
		return false
	}
	if st == SearchAll {
		return !s.Silent
	}
	return s.ST == st
}

// ParseMaxAge extracts the max-age directive from a CACHE-CONTROL value
// such as "max-age=1800" or "no-cache, max-age = 60".
func ParseMaxAge(cacheControl string) (time.Duration, bool) {
	for _, directive := range strings.Split(cacheControl, ",") {
		name, value, ok := strings.Cut(directive, "=")
		if !ok || !strings.EqualFold(strings.TrimSpace(name), "max-age") {
			continue
		}
		secs, err := strconv.Atoi(strings.Trim(strings.TrimSpace(value), `"`))
		if err != nil || secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	return 0, false
}

// CacheControl formats d as a CACHE-CONTROL header value.
func CacheControl(d time.Duration) string {
	return "max-age=" + strconv.Itoa(int(d/time.Second))
}

// registry is the service table. It is not safe for concurrent use; the
// Server guards it.
type registry struct {
	services map[string]Service
}

func newRegistry() registry {
	return registry{services: make(map[string]Service)}
}

// put stores svc and returns the record it replaced, if any.
func (r registry) put(svc Service) (Service, bool) {
	old, ok := r.services[svc.USN]
	r.services[svc.USN] = svc
	if ok {
		metricServices.WithLabelValues(old.Manifestation.String()).Dec()
	}
	metricServices.WithLabelValues(svc.Manifestation.String()).Inc()
	return old, ok
}

func (r registry) get(usn string) (Service, bool) {
	svc, ok := r.services[usn]
	return svc, ok
}

func (r registry) touch(usn string, now time.Time) bool {
	svc, ok := r.services[usn]
	if !ok {
		return false
	}
	svc.LastSeen = now
	r.services[usn] = svc
	return true
}

func (r registry) delete(usn string) (Service, bool) {
	svc, ok := r.services[usn]
	if !ok {
		return Service{}, false
	}
	delete(r.services, usn)
	metricServices.WithLabelValues(svc.Manifestation.String()).Dec()
	return svc, true
}

// filter returns the services for which keep returns true, ordered by USN.
func (r registry) filter(keep func(Service) bool) []Service {
	var res []Service
	for _, svc := range r.services {
		if keep == nil || keep(svc) {
			res = append(res, svc)
		}
	}
	sort.Slice(res, func(a, b int) bool { return res[a].USN < res[b].USN })
	return res
}
