// Copyright (C) 2026 The Cohen3 Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package config implements reading and writing of the cohen-ssdp
// configuration file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
	"sigs.k8s.io/yaml"

	"github.com/opacam/Cohen3-sub000/lib/ssdp"
)

type Configuration struct {
	Interface         string                `json:"interface,omitempty"`
	ServerString      string                `json:"serverString,omitempty"`
	AnnounceIntervalS int                   `json:"announceIntervalS" default:"777"`
	SweepIntervalS    int                   `json:"sweepIntervalS" default:"30"`
	GraceS            int                   `json:"graceS" default:"60"`
	DefaultMaxAgeS    int                   `json:"defaultMaxAgeS" default:"1800"`
	MaxMXS            int                   `json:"maxMXS" default:"120"`
	SearchRate        float64               `json:"searchRate" default:"10"`
	SearchBurst       int                   `json:"searchBurst" default:"20"`
	SearchSources     int                   `json:"searchSources" default:"1024"`
	ActiveSearch      bool                  `json:"activeSearch" default:"true"`
	SearchIntervalS   int                   `json:"searchIntervalS" default:"120"`
	Devices           []DeviceConfiguration `json:"devices"`
}

type DeviceConfiguration struct {
	UUID         string                 `json:"uuid"`
	Type         string                 `json:"type"`
	Version      int                    `json:"version"`
	LocationBase string                 `json:"locationBase"`
	Services     []ServiceConfiguration `json:"services,omitempty"`
}

type ServiceConfiguration struct {
	ID        string `json:"id"`
	Version   int    `json:"version,omitempty"`
	Namespace string `json:"namespace,omitempty"`
}

func New() Configuration {
	var cfg Configuration
	if err := setDefaults(&cfg); err != nil {
		panic(err)
	}
	cfg.Devices = []DeviceConfiguration{}
	return cfg
}

// Parse reads a YAML (or JSON) configuration. Options missing from data
// keep their defaults.
func Parse(data []byte) (Configuration, error) {
	cfg := New()
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Configuration{}, errors.Wrap(err, "parsing configuration")
	}
	if cfg.Devices == nil {
		cfg.Devices = []DeviceConfiguration{}
	}
	return cfg, nil
}

func Load(path string) (Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Configuration{}, errors.Wrap(err, "reading configuration")
	}
	return Parse(data)
}

func (cfg Configuration) Marshal() ([]byte, error) {
	return yaml.Marshal(cfg)
}

// Save writes the configuration atomically to path.
func (cfg Configuration) Save(path string) error {
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return errors.Wrap(err, "saving configuration")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "saving configuration")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "saving configuration")
	}
	return errors.Wrap(os.Rename(tmp.Name(), path), "saving configuration")
}

// EnsureUUIDs gives every device without a UUID a freshly generated one and
// reports whether anything changed.
func (cfg *Configuration) EnsureUUIDs() bool {
	changed := false
	for i := range cfg.Devices {
		if cfg.Devices[i].UUID == "" {
			cfg.Devices[i].UUID = "uuid:" + uuid.New().String()
			changed = true
		}
	}
	return changed
}

func (cfg Configuration) Validate() error {
	positive := []struct {
		name string
		val  int
	}{
		{"announceIntervalS", cfg.AnnounceIntervalS},
		{"sweepIntervalS", cfg.SweepIntervalS},
		{"graceS", cfg.GraceS},
		{"defaultMaxAgeS", cfg.DefaultMaxAgeS},
		{"maxMXS", cfg.MaxMXS},
	}
	for _, p := range positive {
		if p.val <= 0 {
			return fmt.Errorf("%s must be positive, not %d", p.name, p.val)
		}
	}
	if cfg.ActiveSearch && cfg.SearchIntervalS <= 0 {
		return fmt.Errorf("searchIntervalS must be positive, not %d", cfg.SearchIntervalS)
	}
	// A remote record must survive at least one sweep past its max-age.
	if cfg.GraceS <= cfg.SweepIntervalS {
		return fmt.Errorf("graceS (%d) must exceed sweepIntervalS (%d)", cfg.GraceS, cfg.SweepIntervalS)
	}
	if cfg.SearchRate < 0 || cfg.SearchBurst < 0 || cfg.SearchSources < 0 {
		return errors.New("search rate limits must not be negative")
	}
	if cfg.SearchRate > 0 && (cfg.SearchBurst == 0 || cfg.SearchSources == 0) {
		return errors.New("searchBurst and searchSources are required when searchRate is set")
	}

	seen := make(map[string]struct{}, len(cfg.Devices))
	for i, dev := range cfg.Devices {
		if err := dev.validate(); err != nil {
			return errors.Wrapf(err, "device %d", i)
		}
		if dev.UUID != "" {
			if _, ok := seen[dev.UUID]; ok {
				return fmt.Errorf("device %d: duplicate uuid %s", i, dev.UUID)
			}
			seen[dev.UUID] = struct{}{}
		}
	}
	return nil
}

func (dev DeviceConfiguration) validate() error {
	if dev.Type == "" {
		return errors.New("missing type")
	}
	if dev.Version < 1 {
		return fmt.Errorf("version must be at least 1, not %d", dev.Version)
	}
	u, err := url.Parse(dev.LocationBase)
	if err != nil {
		return errors.Wrap(err, "locationBase")
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("locationBase %q is not an absolute http URL", dev.LocationBase)
	}
	for _, svc := range dev.Services {
		if svc.ID == "" {
			return errors.New("service without id")
		}
		if svc.Version < 0 {
			return fmt.Errorf("service %s: negative version", svc.ID)
		}
	}
	return nil
}

// ServerOptions translates the engine timing and limits into ssdp options.
func (cfg Configuration) ServerOptions() []ssdp.Option {
	opts := []ssdp.Option{
		ssdp.WithAnnounceInterval(seconds(cfg.AnnounceIntervalS)),
		ssdp.WithSweepInterval(seconds(cfg.SweepIntervalS)),
		ssdp.WithGrace(seconds(cfg.GraceS)),
		ssdp.WithDefaultMaxAge(seconds(cfg.DefaultMaxAgeS)),
		ssdp.WithMaxMX(seconds(cfg.MaxMXS)),
		ssdp.WithSearchRate(rate.Limit(cfg.SearchRate), cfg.SearchBurst, cfg.SearchSources),
	}
	if cfg.ServerString != "" {
		opts = append(opts, ssdp.WithServerString(cfg.ServerString))
	}
	return opts
}

func (cfg Configuration) SearchInterval() time.Duration {
	return seconds(cfg.SearchIntervalS)
}

func (cfg Configuration) SSDPDevices() []ssdp.Device {
	res := make([]ssdp.Device, 0, len(cfg.Devices))
	for _, dev := range cfg.Devices {
		d := ssdp.Device{
			UUID:         dev.UUID,
			Type:         dev.Type,
			Version:      dev.Version,
			LocationBase: dev.LocationBase,
		}
		for _, svc := range dev.Services {
			d.Services = append(d.Services, ssdp.DeviceService{
				ID:        svc.ID,
				Version:   svc.Version,
				Namespace: svc.Namespace,
			})
		}
		res = append(res, d)
	}
	return res
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// setDefaults sets the fields of the struct pointed to by data from their
// "default" tags.
func setDefaults(data interface{}) error {
	s := reflect.ValueOf(data).Elem()
	t := s.Type()

	for i := 0; i < s.NumField(); i++ {
		f := s.Field(i)
		v := t.Field(i).Tag.Get("default")
		if v == "" {
			continue
		}
		switch f.Interface().(type) {
		case string:
			f.SetString(v)

		case int:
			i, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return err
			}
			f.SetInt(i)

		case float64:
			fl, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return err
			}
			f.SetFloat(fl)

		case bool:
			f.SetBool(v == "true")

		default:
			panic(f.Type())
		}
	}
	return nil
}
