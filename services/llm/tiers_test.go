// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierForComplexity(t *testing.T) {
	tests := []struct {
		score int
		want  Tier
	}{
		{0, TierLight},
		{1, TierLight},
		{3, TierLight},
		{4, TierStandard},
		{7, TierStandard},
		{8, TierFrontier},
		{10, TierFrontier},
		{15, TierFrontier},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TierForComplexity(tt.score), "score %d", tt.score)
	}
}

func TestRouterDefaults(t *testing.T) {
	router, err := NewRouter(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", router.Model(ProviderOpenAI, TierLight))
	assert.Equal(t, "claude-3-5-sonnet-20240620", router.Model(ProviderAnthropic, TierStandard))
	assert.Equal(t, "gemini-1.5-pro", router.Model(ProviderGoogle, TierFrontier))
}

func TestRouterOverrides(t *testing.T) {
	router, err := NewRouter(map[string]map[string]string{
		"frontier": {ProviderOpenAI: "o4"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "o4", router.Model(ProviderOpenAI, TierFrontier))
	// Other providers at the same tier keep defaults.
	assert.Equal(t, "claude-3-7-sonnet-20250219", router.Model(ProviderAnthropic, TierFrontier))
}

func TestRouterRejectsUnknownTier(t *testing.T) {
	_, err := NewRouter(map[string]map[string]string{"turbo": {}}, nil)
	require.Error(t, err)
}

func TestRouterParamsStampsModel(t *testing.T) {
	router, err := NewRouter(nil, nil)
	require.NoError(t, err)

	base := GenerationParams{System: "sys", Temperature: Float32Ptr(0.2)}
	params := router.Params(ProviderAnthropic, TierLight, base)

	assert.Equal(t, "claude-3-5-haiku-20241022", params.Model)
	assert.Equal(t, "sys", params.System)
	// The base is copied, not mutated.
	assert.Empty(t, base.Model)
}
