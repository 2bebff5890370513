// Copyright (C) 2026 The Cohen3 Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package build carries version information set at link time and derives
// the SERVER header advertised in SSDP messages from it.
package build

import (
	"fmt"
	"log"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"
)

const (
	ProductName = "Cohen3"
	UPnPVersion = "UPnP/1.0"
)

var (
	// Injected by build script
	Version = "unknown-dev"
	Stamp   = "0"

	// Set by init()
	Date        time.Time
	IsRelease   bool
	LongVersion string

	AllowedVersionExp = regexp.MustCompile(`^v\d+\.\d+\.\d+(-[a-z0-9]+)*(\.\d+)*(\+\d+-g[0-9a-f]+)?(-[^\s]+)?$`)
	releaseExp        = regexp.MustCompile(`^v\d+\.\d+\.\d+$`)
)

func init() {
	if Version != "unknown-dev" && !AllowedVersionExp.MatchString(Version) {
		log.Fatalf("Invalid version string %q;\n\tdoes not match regexp %v", Version, AllowedVersionExp)
	}
	setBuildData()
}

func setBuildData() {
	IsRelease = releaseExp.MatchString(Version)

	stamp, _ := strconv.Atoi(Stamp)
	Date = time.Unix(int64(stamp), 0)

	date := Date.UTC().Format("2006-01-02 15:04:05 MST")
	LongVersion = fmt.Sprintf("cohen-ssdp %s (%s %s-%s) %s", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH, date)
}

// ServerString returns the SERVER header value in the
// "OS/version UPnP/1.0 product/version" form UPnP asks for.
func ServerString() string {
	return serverString(runtime.GOOS, Version)
}

func serverString(goos, version string) string {
	os := goos
	if os != "" {
		os = strings.ToUpper(os[:1]) + os[1:]
	}
	return fmt.Sprintf("%s/%s %s %s/%s", os, runtime.GOARCH, UPnPVersion, ProductName, strings.TrimPrefix(version, "v"))
}
