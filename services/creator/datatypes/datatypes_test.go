// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentTypeValid(t *testing.T) {
	assert.True(t, ContentBlog.Valid())
	assert.True(t, ContentSocial.Valid())
	assert.True(t, ContentCode.Valid())
	assert.False(t, ContentType("video").Valid())
	assert.False(t, ContentType("").Valid())
}

func TestCritiqueThresholds(t *testing.T) {
	tests := []struct {
		overall    int
		passing    bool
		regenerate bool
	}{
		{overall: 100, passing: true, regenerate: false},
		{overall: 80, passing: true, regenerate: false},
		{overall: 79, passing: false, regenerate: false},
		{overall: 40, passing: false, regenerate: false},
		{overall: 39, passing: false, regenerate: true},
		{overall: 0, passing: false, regenerate: true},
	}
	for _, tc := range tests {
		c := Critique{Overall: tc.overall}
		assert.Equal(t, tc.passing, c.Passing(), "overall=%d", tc.overall)
		assert.Equal(t, tc.regenerate, c.NeedsRegeneration(), "overall=%d", tc.overall)
	}
}

func TestCodeProjectUpsert(t *testing.T) {
	p := CodeProject{Name: "demo", Language: "go"}
	p.Upsert(GeneratedFile{Path: "main.go", Contents: "package main"})
	p.Upsert(GeneratedFile{Path: "util.go", Contents: "package main"})
	require.Len(t, p.Files, 2)

	p.Upsert(GeneratedFile{Path: "main.go", Contents: "package main // v2"})
	require.Len(t, p.Files, 2)
	assert.Equal(t, "package main // v2", p.File("main.go").Contents)
	assert.Nil(t, p.File("missing.go"))
}

func TestRunLifecycle(t *testing.T) {
	idea := NewIdea("user-1", "a blog about sourdough")
	require.NotEmpty(t, idea.ID)

	run := NewRun(idea)
	require.Equal(t, RunPending, run.Status)
	assert.False(t, run.Status.Terminal())

	ev := run.Record("planning", "drafting outline")
	assert.Equal(t, "planning", ev.Stage)
	assert.Len(t, run.Events, 1)

	run.Finish("")
	assert.Equal(t, RunSucceeded, run.Status)
	assert.True(t, run.Status.Terminal())
	assert.False(t, run.EndedAt.IsZero())

	failed := NewRun(idea)
	failed.Finish("planner refused")
	assert.Equal(t, RunFailed, failed.Status)
	assert.Equal(t, "planner refused", failed.Error)
}
