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
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/AleutianAI/AleutianCreate/pkg/config"
)

// GoogleClient implements Client over Gemini via langchaingo.
type GoogleClient struct {
	model *googleai.GoogleAI
	name  string
}

// NewGoogleClient builds a client from GEMINI_API_KEY (or the mounted
// gemini_api_key secret) and GEMINI_MODEL.
func NewGoogleClient(ctx context.Context) (*GoogleClient, error) {
	apiKey := config.ResolveSecret("GEMINI_API_KEY", "gemini_api_key")
	if apiKey == "" {
		slog.Warn("Gemini API Key is missing.")
		return nil, fmt.Errorf("GEMINI_API_KEY is missing")
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-1.5-pro"
		slog.Info("GEMINI_MODEL not set, defaulting to", "model", model)
	}

	g, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("initialize Gemini client: %w", err)
	}

	return &GoogleClient{model: g, name: model}, nil
}

// Name implements Client.
func (g *GoogleClient) Name() string { return ProviderGoogle }

// Generate implements Client.
func (g *GoogleClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	// Gemini has no separate system slot in the single-prompt path; fold it in.
	if params.System != "" {
		prompt = params.System + "\n\n" + prompt
	}

	var opts []llms.CallOption
	if params.Model != "" {
		opts = append(opts, llms.WithModel(params.Model))
	}
	if params.Temperature != nil {
		opts = append(opts, llms.WithTemperature(float64(*params.Temperature)))
	}
	if params.TopP != nil {
		opts = append(opts, llms.WithTopP(float64(*params.TopP)))
	}
	if params.MaxTokens != nil {
		opts = append(opts, llms.WithMaxTokens(*params.MaxTokens))
	}
	if len(params.Stop) > 0 {
		opts = append(opts, llms.WithStopWords(params.Stop))
	}

	slog.Debug("Generating text via Gemini", "model", g.name)

	out, err := llms.GenerateFromSinglePrompt(ctx, g.model, prompt, opts...)
	if err != nil {
		slog.Error("Gemini API call failed", "error", err)
		return "", fmt.Errorf("Gemini API call failed: %w", err)
	}
	if out == "" {
		return "", fmt.Errorf("Gemini returned empty completion")
	}
	return out, nil
}
