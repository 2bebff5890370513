// Copyright (C) 2026 The Cohen3 Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/d4l3k/messagediff"

	"github.com/opacam/Cohen3-sub000/lib/ssdp"
)

func TestDefaultValues(t *testing.T) {
	expected := Configuration{
		AnnounceIntervalS: 777,
		SweepIntervalS:    30,
		GraceS:            60,
		DefaultMaxAgeS:    1800,
		MaxMXS:            120,
		SearchRate:        10,
		SearchBurst:       20,
		SearchSources:     1024,
		ActiveSearch:      true,
		SearchIntervalS:   120,
		Devices:           []DeviceConfiguration{},
	}

	cfg := New()
	if diff, equal := messagediff.PrettyDiff(expected, cfg); !equal {
		t.Errorf("Default config differs. Diff:\n%s", diff)
	}
	if err := cfg.Validate(); err != nil {
		t.Error("default config does not validate:", err)
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
interface: eth0
sweepIntervalS: 20
graceS: 45
activeSearch: false
devices:
  - uuid: uuid:e70e9d0e-bbbe-dbe3-1b4c-9c4e1a7a2b00
    type: MediaServer
    version: 2
    locationBase: http://192.168.1.10:30020
    services:
      - id: ContentDirectory
      - id: ConnectionManager
        version: 1
`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatal(err)
	}

	expected := New()
	expected.Interface = "eth0"
	expected.SweepIntervalS = 20
	expected.GraceS = 45
	expected.ActiveSearch = false
	expected.Devices = []DeviceConfiguration{{
		UUID:         "uuid:e70e9d0e-bbbe-dbe3-1b4c-9c4e1a7a2b00",
		Type:         "MediaServer",
		Version:      2,
		LocationBase: "http://192.168.1.10:30020",
		Services: []ServiceConfiguration{
			{ID: "ContentDirectory"},
			{ID: "ConnectionManager", Version: 1},
		},
	}}
	if diff, equal := messagediff.PrettyDiff(expected, cfg); !equal {
		t.Errorf("Parsed config differs. Diff:\n%s", diff)
	}
	if err := cfg.Validate(); err != nil {
		t.Error(err)
	}
}

func TestParseUnknownField(t *testing.T) {
	if _, err := Parse([]byte("annouceIntervalS: 10\n")); err == nil {
		t.Error("unexpected nil error for misspelled option")
	}
}

func TestValidate(t *testing.T) {
	device := func() DeviceConfiguration {
		return DeviceConfiguration{Type: "MediaServer", Version: 1, LocationBase: "http://10.0.0.1:8080"}
	}

	cases := []struct {
		name   string
		modify func(*Configuration)
	}{
		{"zero announce", func(c *Configuration) { c.AnnounceIntervalS = 0 }},
		{"negative sweep", func(c *Configuration) { c.SweepIntervalS = -1 }},
		{"grace not above sweep", func(c *Configuration) { c.GraceS = c.SweepIntervalS }},
		{"zero max-age", func(c *Configuration) { c.DefaultMaxAgeS = 0 }},
		{"zero search interval", func(c *Configuration) { c.SearchIntervalS = 0 }},
		{"negative rate", func(c *Configuration) { c.SearchRate = -1 }},
		{"rate without burst", func(c *Configuration) { c.SearchBurst = 0 }},
		{"device without type", func(c *Configuration) {
			d := device()
			d.Type = ""
			c.Devices = append(c.Devices, d)
		}},
		{"device version zero", func(c *Configuration) {
			d := device()
			d.Version = 0
			c.Devices = append(c.Devices, d)
		}},
		{"relative location", func(c *Configuration) {
			d := device()
			d.LocationBase = "/desc"
			c.Devices = append(c.Devices, d)
		}},
		{"service without id", func(c *Configuration) {
			d := device()
			d.Services = []ServiceConfiguration{{Version: 1}}
			c.Devices = append(c.Devices, d)
		}},
		{"duplicate uuid", func(c *Configuration) {
			d := device()
			d.UUID = "uuid:1"
			c.Devices = append(c.Devices, d, d)
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := New()
			tc.modify(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("unexpected nil error")
			}
		})
	}

	cfg := New()
	cfg.SearchRate = 0
	cfg.SearchBurst = 0
	cfg.ActiveSearch = false
	cfg.SearchIntervalS = 0
	cfg.Devices = append(cfg.Devices, device())
	if err := cfg.Validate(); err != nil {
		t.Error("disabled limiter and search should validate:", err)
	}
}

func TestEnsureUUIDs(t *testing.T) {
	cfg := New()
	cfg.Devices = []DeviceConfiguration{
		{UUID: "uuid:fixed", Type: "MediaServer", Version: 1},
		{Type: "MediaRenderer", Version: 1},
	}

	if !cfg.EnsureUUIDs() {
		t.Fatal("expected a generated UUID")
	}
	if cfg.Devices[0].UUID != "uuid:fixed" {
		t.Error("existing UUID changed to", cfg.Devices[0].UUID)
	}
	gen := cfg.Devices[1].UUID
	if !strings.HasPrefix(gen, "uuid:") || len(gen) != len("uuid:")+36 {
		t.Error("unexpected generated UUID", gen)
	}
	if cfg.EnsureUUIDs() {
		t.Error("second call should not change anything")
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cohen.yaml")

	cfg := New()
	cfg.Interface = "wlan0"
	cfg.Devices = []DeviceConfiguration{{
		UUID:         "uuid:abc",
		Type:         "MediaServer",
		Version:      1,
		LocationBase: "http://10.0.0.1:8080",
		Services:     []ServiceConfiguration{{ID: "ContentDirectory", Version: 1}},
	}}
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff, equal := messagediff.PrettyDiff(cfg, loaded); !equal {
		t.Errorf("Loaded config differs. Diff:\n%s", diff)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Error("temporary file left behind:", entries)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml")); err == nil {
		t.Error("unexpected nil error")
	}
}

func TestSSDPDevices(t *testing.T) {
	cfg := New()
	cfg.Devices = []DeviceConfiguration{{
		UUID:         "uuid:abc",
		Type:         "MediaServer",
		Version:      2,
		LocationBase: "http://10.0.0.1:8080",
		Services: []ServiceConfiguration{
			{ID: "ContentDirectory"},
			{ID: "X_MS_MediaReceiverRegistrar", Namespace: "microsoft.com"},
		},
	}}

	expected := []ssdp.Device{{
		UUID:         "uuid:abc",
		Type:         "MediaServer",
		Version:      2,
		LocationBase: "http://10.0.0.1:8080",
		Services: []ssdp.DeviceService{
			{ID: "ContentDirectory"},
			{ID: "X_MS_MediaReceiverRegistrar", Namespace: "microsoft.com"},
		},
	}}
	if diff, equal := messagediff.PrettyDiff(expected, cfg.SSDPDevices()); !equal {
		t.Errorf("Devices differ. Diff:\n%s", diff)
	}

	if n := len(cfg.ServerOptions()); n != 6 {
		t.Errorf("expected 6 options without a server string, got %d", n)
	}
	cfg.ServerString = "Custom/1.0"
	if n := len(cfg.ServerOptions()); n != 7 {
		t.Errorf("expected 7 options with a server string, got %d", n)
	}
}
