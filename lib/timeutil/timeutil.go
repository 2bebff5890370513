// Copyright (C) 2026 The Cohen3 Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package timeutil has helpers for the stop-and-drain dance that
// *time.Timer requires before reuse.
package timeutil

import "time"

// StopTimer stops t and empties its channel if it had already fired.
func StopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

// ResetTimer stops and drains t, then arms it for dur. Plain Reset is only
// safe right after a receive from t.C.
func ResetTimer(t *time.Timer, dur time.Duration) {
	StopTimer(t)
	t.Reset(dur)
}
