// Copyright (C) 2026 The Cohen3 Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package events provides event subscription and polling functionality.
package events

import (
	"errors"
	"sync"
	"time"

	"github.com/opacam/Cohen3-sub000/lib/timeutil"
)

type EventType int

const (
	// NewRootDevice is logged when a upnp:rootdevice service is registered,
	// local or remote. Data is the registered service.
	NewRootDevice EventType = 1 << iota
	// RootDeviceRemoved is logged before a upnp:rootdevice service is
	// deleted, whether by unregistration, byebye or expiry.
	RootDeviceRemoved
	ServiceAdded
	ServiceRemoved
	// DatagramReceived is logged for every decoded SSDP datagram, after the
	// registry has been updated for it.
	DatagramReceived

	AllEvents = (1 << iota) - 1
)

func (t EventType) String() string {
	switch t {
	case NewRootDevice:
		return "NewRootDevice"
	case RootDeviceRemoved:
		return "RootDeviceRemoved"
	case ServiceAdded:
		return "ServiceAdded"
	case ServiceRemoved:
		return "ServiceRemoved"
	case DatagramReceived:
		return "DatagramReceived"
	default:
		return "Unknown"
	}
}

// UnmarshalEventType returns the event type named s, or zero.
func UnmarshalEventType(s string) EventType {
	for t := NewRootDevice; t&AllEvents != 0; t <<= 1 {
		if t.String() == s {
			return t
		}
	}
	return 0
}

const BufferSize = 64

type Logger struct {
	subs         []*Subscription
	nextGlobalID int
	mutex        sync.Mutex
}

type Event struct {
	// Per-subscription sequential event ID.
	SubscriptionID int `json:"id"`
	// Global ID of the event across all subscriptions
	GlobalID int         `json:"globalID"`
	Time     time.Time   `json:"time"`
	Type     EventType   `json:"type"`
	Data     interface{} `json:"data"`
}

type Subscription struct {
	mask    EventType
	events  chan Event
	nextID  int
	timeout *time.Timer
}

var (
	ErrTimeout = errors.New("timeout")
	ErrClosed  = errors.New("closed")
)

func NewLogger() *Logger {
	return &Logger{}
}

// Log delivers the event to every subscription whose mask includes t. A
// subscriber that is not keeping up loses the event; Log never blocks.
func (l *Logger) Log(t EventType, data interface{}) {
	l.mutex.Lock()
	dl.Debugln("log", l.nextGlobalID, t, data)
	l.nextGlobalID++

	e := Event{
		GlobalID: l.nextGlobalID,
		Time:     time.Now(),
		Type:     t,
		Data:     data,
	}

	for _, s := range l.subs {
		if s.mask&t == 0 {
			continue
		}
		e.SubscriptionID = s.nextID
		select {
		case s.events <- e:
			s.nextID++
		default:
			dl.Debugln("dropping event", t, "for slow subscriber")
		}
	}
	l.mutex.Unlock()
}

func (l *Logger) Subscribe(mask EventType) *Subscription {
	l.mutex.Lock()
	dl.Debugln("subscribe", mask)

	s := &Subscription{
		mask:    mask,
		events:  make(chan Event, BufferSize),
		nextID:  1,
		timeout: time.NewTimer(time.Hour),
	}
	// Created stopped so that Poll can always Reset it.
	s.timeout.Stop()

	l.subs = append(l.subs, s)
	l.mutex.Unlock()
	return s
}

// Unsubscribe removes the subscription and closes its channel. Calling it
// twice for the same subscription is harmless.
func (l *Logger) Unsubscribe(s *Subscription) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	dl.Debugln("unsubscribe")
	for i, ss := range l.subs {
		if s == ss {
			last := len(l.subs) - 1
			l.subs[i] = l.subs[last]
			l.subs[last] = nil
			l.subs = l.subs[:last]
			close(s.events)
			return
		}
	}
}

// Poll returns an event from the subscription or an error if the poll times
// out or the event channel is closed. Poll should not be called concurrently
// from multiple goroutines for a single subscription.
func (s *Subscription) Poll(timeout time.Duration) (Event, error) {
	timeutil.ResetTimer(s.timeout, timeout)
	defer timeutil.StopTimer(s.timeout)

	select {
	case e, ok := <-s.events:
		if !ok {
			return e, ErrClosed
		}
		return e, nil
	case <-s.timeout.C:
		return Event{}, ErrTimeout
	}
}

// C returns the raw event channel. It is closed on Unsubscribe.
func (s *Subscription) C() <-chan Event {
	return s.events
}
