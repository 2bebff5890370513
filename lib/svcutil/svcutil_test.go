// Copyright (C) 2026 The Cohen3 Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package svcutil

import (
	"context"
	"errors"
	"testing"

	"github.com/thejerf/suture/v4"
)

func TestNoRestartErr(t *testing.T) {
	if !errors.Is(NoRestartErr(nil), suture.ErrDoNotRestart) {
		t.Error("nil error should become ErrDoNotRestart")
	}
	base := errors.New("bind failed")
	err := NoRestartErr(base)
	if !errors.Is(err, suture.ErrDoNotRestart) {
		t.Error("wrapped error should match ErrDoNotRestart")
	}
	if !errors.Is(err, base) {
		t.Error("wrapped error should unwrap to the original")
	}
}

func TestAsFatalErr(t *testing.T) {
	base := errors.New("boom")
	ferr := AsFatalErr(base, ExitBind)
	if ferr.Status != ExitBind {
		t.Errorf("status %v", ferr.Status)
	}
	if again := AsFatalErr(ferr, ExitError); again != ferr {
		t.Error("FatalErr must not be wrapped twice")
	}
	if !errors.Is(ferr, suture.ErrTerminateSupervisorTree) {
		t.Error("FatalErr should terminate the tree")
	}
}

func TestAsServiceRecordsError(t *testing.T) {
	want := errors.New("failed")
	svc := AsService(func(context.Context) error { return want }, "test")
	if err := svc.Serve(context.Background()); err != want {
		t.Fatalf("Serve returned %v", err)
	}
	if svc.Error() != want {
		t.Errorf("Error() = %v", svc.Error())
	}
	if svc.String() != "test" {
		t.Errorf("String() = %q", svc.String())
	}
}
