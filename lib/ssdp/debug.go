// Copyright (C) 2026 The Cohen3 Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package ssdp

import (
	"github.com/opacam/Cohen3-sub000/lib/logger"
)

var l = logger.DefaultLogger.NewFacility("ssdp", "SSDP presence and discovery")
