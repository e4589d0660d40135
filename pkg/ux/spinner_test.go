// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSpinnerMachineModePrintsProgressOnce(t *testing.T) {
	withLevel(t, PersonalityMachine)

	out := captureStdout(func() {
		s := NewSpinner("Fetching ideas")
		s.Start()
		s.Stop()
	})
	if got := strings.Count(out, "PROGRESS: Fetching ideas"); got != 1 {
		t.Errorf("expected one PROGRESS line, got %d in %q", got, out)
	}
}

func TestSpinnerAnimatesAndClearsLine(t *testing.T) {
	withLevel(t, PersonalityStandard)

	out := captureStdout(func() {
		s := NewSpinner("Waiting on the run")
		s.Start()
		time.Sleep(200 * time.Millisecond)
		s.Stop()
	})
	if !strings.Contains(out, "Waiting on the run") {
		t.Errorf("expected the message in spinner output, got %q", out)
	}
	if !strings.Contains(out, "\r\033[K") {
		t.Errorf("expected the line-clear sequence after Stop, got %q", out)
	}
}

func TestSpinnerUpdateMessage(t *testing.T) {
	withLevel(t, PersonalityStandard)

	out := captureStdout(func() {
		s := NewSpinner("planning")
		s.Start()
		time.Sleep(150 * time.Millisecond)
		s.UpdateMessage("generating")
		time.Sleep(150 * time.Millisecond)
		s.Stop()
	})
	if !strings.Contains(out, "planning") || !strings.Contains(out, "generating") {
		t.Errorf("expected both stage messages, got %q", out)
	}
}

func TestSpinnerStopWithoutStartIsSafe(t *testing.T) {
	withLevel(t, PersonalityStandard)
	s := NewSpinner("idle")
	s.Stop() // must not panic or block
}

func TestSpinnerDoubleStartIsSafe(t *testing.T) {
	withLevel(t, PersonalityMachine)

	out := captureStdout(func() {
		s := NewSpinner("once")
		s.Start()
		s.Start()
		s.Stop()
	})
	if got := strings.Count(out, "PROGRESS: once"); got != 1 {
		t.Errorf("second Start must be a no-op, got %d PROGRESS lines", got)
	}
}

func TestWithSpinnerSuccess(t *testing.T) {
	withLevel(t, PersonalityMachine)

	var ran bool
	out := captureStdout(func() {
		err := WithSpinner("Fetching ideas", func() error {
			ran = true
			return nil
		})
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
	if !ran {
		t.Fatal("wrapped function did not run")
	}
	if !strings.Contains(out, "OK: Fetching ideas") {
		t.Errorf("expected success line, got %q", out)
	}
}

func TestWithSpinnerSurfacesError(t *testing.T) {
	withLevel(t, PersonalityMachine)

	boom := errors.New("connection refused")
	errOut := captureStderr(func() {
		if err := WithSpinner("Fetching ideas", func() error { return boom }); !errors.Is(err, boom) {
			t.Errorf("expected the wrapped error back, got %v", err)
		}
	})
	if !strings.Contains(errOut, "connection refused") {
		t.Errorf("expected the failure on stderr, got %q", errOut)
	}
}
