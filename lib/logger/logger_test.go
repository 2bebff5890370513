// Copyright (C) 2026 The Cohen3 Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestAPI(t *testing.T) {
	l := newLogger(&bytes.Buffer{})
	l.SetFlags(0)
	l.SetPrefix("testing")

	debug := 0
	l.AddHandler(LevelDebug, checkFunc(t, LevelDebug, &debug))
	info := 0
	l.AddHandler(LevelInfo, checkFunc(t, LevelInfo, &info))
	warn := 0
	l.AddHandler(LevelWarn, checkFunc(t, LevelWarn, &warn))

	l.Debugf("test %d", 0)
	l.Debugln("test", 0)
	l.Infof("test %d", 1)
	l.Infoln("test", 1)
	l.Warnf("test %d", 3)
	l.Warnln("test", 3)

	if debug != 6 {
		t.Errorf("Debug handler called %d != 6 times", debug)
	}
	if info != 4 {
		t.Errorf("Info handler called %d != 4 times", info)
	}
	if warn != 2 {
		t.Errorf("Warn handler called %d != 2 times", warn)
	}
}

func checkFunc(t *testing.T, expectl LogLevel, counter *int) func(LogLevel, string) {
	return func(l LogLevel, msg string) {
		*counter++
		if l < expectl {
			t.Errorf("Incorrect message level %d < %d", l, expectl)
		}
	}
}

func TestFacilityDebugging(t *testing.T) {
	out := new(bytes.Buffer)
	l := newLogger(out)

	msgs := 0
	l.AddHandler(LevelDebug, func(l LogLevel, msg string) {
		msgs++
		if strings.Contains(msg, "f1") {
			t.Fatal("Should not get message for facility f1")
		}
	})

	f0 := l.NewFacility("f0", "foo#0")
	f1 := l.NewFacility("f1", "foo#1")

	l.SetDebug("f0", true)
	l.SetDebug("f1", false)

	f0.Debugln("Debug line from f0")
	f1.Debugln("Debug line from f1")

	if msgs != 1 {
		t.Fatalf("Incorrect number of messages, %d != 1", msgs)
	}
	if got := l.FacilityDebugging(); len(got) != 1 || got[0] != "f0" {
		t.Errorf("Unexpected debugging facilities %v", got)
	}
	if descr := l.Facilities()["f1"]; descr != "foo#1" {
		t.Errorf("Unexpected description %q", descr)
	}
}

func TestTraceEnv(t *testing.T) {
	t.Setenv(TraceEnv, "ssdp, events")
	l := newLogger(&bytes.Buffer{})
	l.NewFacility("ssdp", "")
	l.NewFacility("clock", "")
	if !l.ShouldDebug("ssdp") {
		t.Error("ssdp should be traced")
	}
	if l.ShouldDebug("clock") {
		t.Error("clock should not be traced")
	}

	t.Setenv(TraceEnv, "all")
	l = newLogger(&bytes.Buffer{})
	l.NewFacility("anything", "")
	if !l.ShouldDebug("anything") {
		t.Error("all should trace every facility")
	}
}

func TestControlStripper(t *testing.T) {
	b := new(bytes.Buffer)
	l := newLogger(controlStripper{b})
	l.SetFlags(0)
	l.Infoln("NOTIFY * HTTP/1.1\x00\x07")
	if strings.ContainsAny(b.String(), "\x00\x07") {
		t.Errorf("control characters not stripped: %q", b.String())
	}
}
