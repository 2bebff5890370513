// Copyright (C) 2026 The Cohen3 Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package ssdp

import (
	"fmt"
	"strings"
)

const defaultNamespace = "schemas-upnp-org"

// Device describes a local UPnP device to announce.
type Device struct {
	// UUID with or without the "uuid:" prefix.
	UUID string
	// Type is the bare device type, e.g. "MediaServer".
	Type    string
	Version int
	// LocationBase is the URL the description documents are served under.
	LocationBase string
	Services     []DeviceService
}

type DeviceService struct {
	// ID is the bare service type, e.g. "ContentDirectory".
	ID string
	// Version defaults to the device version when zero.
	Version   int
	Namespace string
}

func (d Device) uuid() string {
	if strings.HasPrefix(d.UUID, "uuid:") {
		return d.UUID
	}
	return "uuid:" + d.UUID
}

func (d Device) location(version int) string {
	if version < 1 {
		version = 1
	}
	base := d.LocationBase
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return fmt.Sprintf("%s%s/description-%d.xml", base, strings.TrimPrefix(d.uuid(), "uuid:"), version)
}

// Announcements lists the local services that make up d. Every supported
// version of the device and service types gets its own record so that
// older control points find it, but only the highest version is loud.
func (d Device) Announcements() []Service {
	uuid := d.uuid()
	res := []Service{
		{USN: uuid + "::" + RootDevice, ST: RootDevice, Location: d.location(d.Version), Manifestation: Local},
		{USN: uuid, ST: uuid, Location: d.location(d.Version), Manifestation: Local},
	}

	for v := d.Version; v > 0; v-- {
		st := fmt.Sprintf("urn:%s:device:%s:%d", defaultNamespace, d.Type, v)
		res = append(res, Service{
			USN:           uuid + "::" + st,
			ST:            st,
			Location:      d.location(v),
			Manifestation: Local,
			Silent:        v != d.Version,
		})
	}

	for _, svc := range d.Services {
		ns := svc.Namespace
		if ns == "" {
			ns = defaultNamespace
		}
		version := svc.Version
		if version == 0 {
			version = d.Version
		}
		deviceVersion := d.Version
		for v := version; v > 0; v-- {
			st := fmt.Sprintf("urn:%s:service:%s:%d", ns, svc.ID, v)
			res = append(res, Service{
				USN:           uuid + "::" + st,
				ST:            st,
				Location:      d.location(deviceVersion),
				Manifestation: Local,
				Silent:        v != version,
			})
			deviceVersion--
		}
	}
	return res
}

// RegisterDevice registers every announcement of d as a local service.
func (s *Server) RegisterDevice(d Device) error {
	if d.UUID == "" || d.Type == "" || d.Version < 1 {
		return fmt.Errorf("incomplete device %q of type %q version %d", d.UUID, d.Type, d.Version)
	}
	for _, svc := range d.Announcements() {
		if err := s.Register(svc); err != nil {
			return err
		}
	}
	l.Infof("Announcing %s %s version %d", d.uuid(), d.Type, d.Version)
	return nil
}

// UnregisterDevice unregisters every announcement of d and returns how many
// were known.
func (s *Server) UnregisterDevice(d Device) int {
	n := 0
	for _, svc := range d.Announcements() {
		if s.Unregister(svc.USN) {
			n++
		}
	}
	return n
}
