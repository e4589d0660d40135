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
	"testing"
)

func withLevel(t *testing.T, level PersonalityLevel) {
	t.Helper()
	orig := GetPersonality()
	t.Cleanup(func() { SetPersonality(orig) })
	SetPersonalityLevel(level)
}

func TestParsePersonalityLevel(t *testing.T) {
	cases := map[string]PersonalityLevel{
		"full":     PersonalityFull,
		"f":        PersonalityFull,
		"standard": PersonalityStandard,
		"std":      PersonalityStandard,
		"minimal":  PersonalityMinimal,
		"m":        PersonalityMinimal,
		"machine":  PersonalityMachine,
		"quiet":    PersonalityMachine,
		"MACHINE":  PersonalityMachine,
		"bogus":    PersonalityStandard,
		"":         PersonalityStandard,
	}
	for in, want := range cases {
		if got := ParsePersonalityLevel(in); got != want {
			t.Errorf("ParsePersonalityLevel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSetPersonalityLevelRoundTrip(t *testing.T) {
	withLevel(t, PersonalityMinimal)
	if got := GetPersonality().Level; got != PersonalityMinimal {
		t.Errorf("got level %q, want minimal", got)
	}
}

func TestInitPersonalityHonorsEnv(t *testing.T) {
	orig := GetPersonality()
	t.Cleanup(func() { SetPersonality(orig) })

	t.Setenv("CREATE_PERSONALITY", "machine")
	InitPersonality()
	if got := GetPersonality().Level; got != PersonalityMachine {
		t.Errorf("got level %q, want machine", got)
	}
}

func TestInitPersonalityNonTerminalDefaultsToMachine(t *testing.T) {
	orig := GetPersonality()
	t.Cleanup(func() { SetPersonality(orig) })

	t.Setenv("CREATE_PERSONALITY", "")
	// Test binaries run with stdout piped, so this exercises the
	// non-terminal branch.
	InitPersonality()
	if got := GetPersonality().Level; got != PersonalityMachine {
		t.Errorf("got level %q, want machine for piped stdout", got)
	}
}

func TestIsInteractiveFalseInMachineMode(t *testing.T) {
	withLevel(t, PersonalityMachine)
	if IsInteractive() {
		t.Error("machine mode must never prompt")
	}
}
