// Copyright (C) 2026 The Cohen3 Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package ssdp

import (
	"context"
	"net"

	"github.com/pkg/errors"
	"golang.org/x/net/ipv4"
)

const (
	MulticastAddr = "239.255.255.250:1900"
	// multicastTTL follows the UPnP device architecture recommendation.
	multicastTTL = 2
	maxDatagram  = 65536
)

var multicastGroup = &net.UDPAddr{IP: net.IPv4(239, 255, 255, 250), Port: 1900}

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -o mocks/transport.go --fake-name Transport . Transport

// Transport is the part of a net.PacketConn the engine uses.
type Transport interface {
	ReadFrom(p []byte) (n int, addr net.Addr, err error)
	WriteTo(p []byte, addr net.Addr) (n int, err error)
	Close() error
}

// ListenMulticast opens the shared SSDP socket on port 1900 and joins the
// SSDP group on the named interface, or on every running multicast capable
// interface when ifname is empty. Address reuse is enabled so that other
// SSDP stacks on the host keep working.
func ListenMulticast(ifname string) (Transport, error) {
	lc := net.ListenConfig{Control: reuseControl}
	conn, err := lc.ListenPacket(context.Background(), "udp4", "0.0.0.0:1900")
	if err != nil {
		return nil, &BindError{Addr: MulticastAddr, Err: errors.Wrap(err, "listen")}
	}

	intfs, err := multicastInterfaces(ifname)
	if err != nil {
		conn.Close()
		return nil, &BindError{Addr: MulticastAddr, Err: err}
	}

	pconn := ipv4.NewPacketConn(conn)
	joined := 0
	for i := range intfs {
		if err := pconn.JoinGroup(&intfs[i], &net.UDPAddr{IP: multicastGroup.IP}); err != nil {
			l.Debugln("IPv4 join", intfs[i].Name, "failed:", err)
			continue
		}
		l.Debugln("IPv4 join", intfs[i].Name, "success")
		joined++
	}
	if joined == 0 {
		conn.Close()
		return nil, &BindError{Addr: MulticastAddr, Err: errors.New("could not join the SSDP group on any interface")}
	}

	if err := setMulticastOptions(pconn, ifname, intfs); err != nil {
		conn.Close()
		return nil, &BindError{Addr: MulticastAddr, Err: err}
	}
	return conn, nil
}

// ListenUnicast opens an ephemeral port for sending M-SEARCH requests and
// receiving the unicast responses to them.
func ListenUnicast(ifname string) (Transport, error) {
	conn, err := net.ListenPacket("udp4", "0.0.0.0:0")
	if err != nil {
		return nil, &BindError{Addr: "0.0.0.0:0", Err: errors.Wrap(err, "listen")}
	}
	var intfs []net.Interface
	if ifname != "" {
		if intfs, err = multicastInterfaces(ifname); err != nil {
			conn.Close()
			return nil, &BindError{Addr: conn.LocalAddr().String(), Err: err}
		}
	}
	if err := setMulticastOptions(ipv4.NewPacketConn(conn), ifname, intfs); err != nil {
		conn.Close()
		return nil, &BindError{Addr: conn.LocalAddr().String(), Err: err}
	}
	return conn, nil
}

func setMulticastOptions(pconn *ipv4.PacketConn, ifname string, intfs []net.Interface) error {
	if err := pconn.SetMulticastTTL(multicastTTL); err != nil {
		return errors.Wrap(err, "setting multicast TTL")
	}
	if err := pconn.SetMulticastLoopback(true); err != nil {
		return errors.Wrap(err, "enabling multicast loopback")
	}
	if ifname != "" && len(intfs) > 0 {
		if err := pconn.SetMulticastInterface(&intfs[0]); err != nil {
			return errors.Wrap(err, "setting multicast interface")
		}
	}
	return nil
}

func multicastInterfaces(ifname string) ([]net.Interface, error) {
	if ifname != "" {
		intf, err := net.InterfaceByName(ifname)
		if err != nil {
			return nil, errors.Wrapf(err, "interface %q", ifname)
		}
		return []net.Interface{*intf}, nil
	}

	all, err := net.Interfaces()
	if err != nil {
		return nil, errors.Wrap(err, "listing interfaces")
	}
	var res []net.Interface
	for _, intf := range all {
		if intf.Flags&net.FlagUp == 0 || intf.Flags&net.FlagMulticast == 0 {
			continue
		}
		res = append(res, intf)
	}
	if len(res) == 0 {
		return nil, errors.New("no multicast interfaces available")
	}
	return res, nil
}
