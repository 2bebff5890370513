// Copyright (C) 2026 The Cohen3 Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package automaxprocs matches GOMAXPROCS to the container CPU quota when
// imported.
package automaxprocs

import (
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/opacam/Cohen3-sub000/lib/logger"
)

var l = logger.DefaultLogger.NewFacility("automaxprocs", "GOMAXPROCS adjustment")

func init() {
	if _, err := maxprocs.Set(maxprocs.Logger(l.Debugf)); err != nil {
		l.Debugln("setting GOMAXPROCS:", err)
	}
}
