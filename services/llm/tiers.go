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
	"fmt"
	"log/slog"
	"sync"
)

// Tier names a model capability class. The code plan's complexity score maps
// onto a tier; the tier plus provider maps onto a concrete model ID.
type Tier string

const (
	// TierLight serves classification and short structured calls.
	TierLight Tier = "light"

	// TierStandard serves most content generation.
	TierStandard Tier = "standard"

	// TierFrontier serves high-complexity code generation and critique.
	TierFrontier Tier = "frontier"
)

// defaultTierModels are the compiled-in model IDs per provider and tier.
// Config overrides take precedence.
var defaultTierModels = map[Tier]map[string]string{
	TierLight: {
		ProviderOpenAI:    "gpt-4o-mini",
		ProviderAnthropic: "claude-3-5-haiku-20241022",
		ProviderGoogle:    "gemini-1.5-flash",
	},
	TierStandard: {
		ProviderOpenAI:    "gpt-4o",
		ProviderAnthropic: "claude-3-5-sonnet-20240620",
		ProviderGoogle:    "gemini-1.5-pro",
	},
	TierFrontier: {
		ProviderOpenAI:    "gpt-4o",
		ProviderAnthropic: "claude-3-7-sonnet-20250219",
		ProviderGoogle:    "gemini-1.5-pro",
	},
}

// TierForComplexity maps a plan's 1-10 complexity score onto a tier.
// Scores outside the range clamp to the nearest tier.
func TierForComplexity(score int) Tier {
	switch {
	case score <= 3:
		return TierLight
	case score <= 7:
		return TierStandard
	default:
		return TierFrontier
	}
}

// Router resolves (provider, tier) to a concrete model ID and stamps it onto
// GenerationParams.
//
// Thread Safety: safe for concurrent use after construction.
type Router struct {
	mu        sync.RWMutex
	overrides map[Tier]map[string]string
	logger    *slog.Logger
}

// NewRouter creates a Router. overrides maps tier name to provider to model
// ID; entries not present fall back to compiled-in defaults. Unknown tier
// names in overrides are rejected.
func NewRouter(overrides map[string]map[string]string, logger *slog.Logger) (*Router, error) {
	if logger == nil {
		logger = slog.Default()
	}

	resolved := make(map[Tier]map[string]string, len(overrides))
	for tierName, models := range overrides {
		tier := Tier(tierName)
		switch tier {
		case TierLight, TierStandard, TierFrontier:
		default:
			return nil, fmt.Errorf("unknown model tier %q", tierName)
		}
		resolved[tier] = models
	}

	return &Router{overrides: resolved, logger: logger}, nil
}

// Model returns the model ID for provider at tier.
func (r *Router) Model(provider string, tier Tier) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if models, ok := r.overrides[tier]; ok {
		if model, ok := models[provider]; ok && model != "" {
			return model
		}
	}
	return defaultTierModels[tier][provider]
}

// Params returns a copy of base with Model set for provider at tier.
func (r *Router) Params(provider string, tier Tier, base GenerationParams) GenerationParams {
	model := r.Model(provider, tier)
	if model == "" {
		r.logger.Warn("no model mapped for tier, using provider default",
			"provider", provider, "tier", string(tier))
		return base
	}
	base.Model = model
	return base
}
