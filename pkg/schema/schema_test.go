// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPlan struct {
	ContentType string `json:"content_type" validate:"required,oneof=blog social code"`
	Angle       string `json:"angle" validate:"required"`
	WordCount   int    `json:"word_count" validate:"gte=0"`
}

func TestDecodeBareJSON(t *testing.T) {
	var plan testPlan
	err := Decode(`{"content_type": "blog", "angle": "intro piece", "word_count": 800}`, &plan)
	require.NoError(t, err)
	assert.Equal(t, "blog", plan.ContentType)
	assert.Equal(t, 800, plan.WordCount)
}

func TestDecodeFencedJSON(t *testing.T) {
	response := "Here is the plan you asked for:\n```json\n" +
		`{"content_type": "social", "angle": "hot take"}` + "\n```\nLet me know!"

	var plan testPlan
	require.NoError(t, Decode(response, &plan))
	assert.Equal(t, "social", plan.ContentType)
}

func TestDecodeEmbeddedObject(t *testing.T) {
	response := `Sure thing. {"content_type": "code", "angle": "cli tool"} Hope that helps.`

	var plan testPlan
	require.NoError(t, Decode(response, &plan))
	assert.Equal(t, "code", plan.ContentType)
}

func TestDecodeNoJSON(t *testing.T) {
	var plan testPlan
	err := Decode("I cannot produce JSON right now.", &plan)
	require.ErrorIs(t, err, ErrNoJSON)
}

func TestDecodeValidationFailure(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"missing angle", `{"content_type": "blog"}`},
		{"bad enum", `{"content_type": "podcast", "angle": "x"}`},
		{"negative count", `{"content_type": "blog", "angle": "x", "word_count": -1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var plan testPlan
			err := Decode(tt.response, &plan)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation), "want ErrValidation, got %v", err)
		})
	}
}

func TestExtractJSONPrefersValidCandidates(t *testing.T) {
	// The bare-brace fallback must not return invalid JSON spans.
	assert.Equal(t, "", ExtractJSON("set {a, b} union {c}"))

	// Fenced block without json tag.
	got := ExtractJSON("```\n{\"a\": 1}\n```")
	assert.Equal(t, `{"a": 1}`, got)
}
