// Copyright (C) 2026 The Cohen3 Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package rand provides the few random helpers the SSDP engine needs, on
// top of a cryptographically secure source so that response jitter cannot
// be predicted by other hosts on the segment.
package rand

import (
	mathRand "math/rand"
	"time"
)

var (
	defaultSource = newSecureSource()
	defaultRand   = mathRand.New(defaultSource)
)

// DurationUpTo returns a uniformly distributed duration in [0,max]. A zero
// or negative max yields zero.
func DurationUpTo(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(defaultRand.Int63n(int64(max) + 1))
}
