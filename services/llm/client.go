// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package llm provides a common client interface over the LLM providers the
// pipeline calls: OpenAI, Anthropic, and Google. Model selection is tiered;
// see Router.
package llm

import "context"

// Provider identifiers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGoogle    = "google"
)

// GenerationParams are the per-call knobs shared across providers.
// Nil pointer fields mean "provider default".
type GenerationParams struct {
	// Model overrides the client's default model for this call. The tier
	// router sets this; most callers leave it empty.
	Model string `json:"model,omitempty"`

	// System is the system prompt. Providers without a native system slot
	// get it prepended to the user prompt.
	System string `json:"system,omitempty"`

	Temperature *float32 `json:"temperature,omitempty"`
	TopP        *float32 `json:"top_p,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// Client is the standard interface for any LLM backend.
type Client interface {
	// Name returns the provider identifier ("openai", "anthropic", "google").
	Name() string

	// Generate runs a single-turn completion and returns the raw text.
	Generate(ctx context.Context, prompt string, params GenerationParams) (string, error)
}

// Float32Ptr is a convenience for building GenerationParams literals.
func Float32Ptr(v float32) *float32 { return &v }

// IntPtr is a convenience for building GenerationParams literals.
func IntPtr(v int) *int { return &v }
