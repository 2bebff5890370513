// Copyright (C) 2026 The Cohen3 Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package ssdp

import (
	"fmt"
	"net"
)

// MalformedMessageError is returned by Decode for datagrams that do not
// have the shape of an SSDP message.
type MalformedMessageError struct {
	Reason string
}

func (e *MalformedMessageError) Error() string {
	return "malformed SSDP message: " + e.Reason
}

// MissingRequiredHeaderError is a well formed message lacking a header its
// method needs, such as a NOTIFY without USN.
type MissingRequiredHeaderError struct {
	Method string
	Header string
}

func (e *MissingRequiredHeaderError) Error() string {
	return fmt.Sprintf("%s without required %s header", e.Method, e.Header)
}

// TransportWriteError wraps a failed datagram send.
type TransportWriteError struct {
	Addr net.Addr
	Err  error
}

func (e *TransportWriteError) Error() string {
	return fmt.Sprintf("writing to %v: %v", e.Addr, e.Err)
}

func (e *TransportWriteError) Unwrap() error {
	return e.Err
}

// BindError means the multicast socket could not be opened or the group
// could not be joined. The engine cannot run without it.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("binding SSDP socket on %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}
