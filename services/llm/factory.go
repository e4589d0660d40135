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

	"github.com/AleutianAI/AleutianCreate/pkg/config"
)

// NewFromConfig builds the configured provider client wrapped with retry.
//
// The provider comes from cfg.LLM.Provider; credentials resolve from the
// environment or mounted secrets inside each constructor.
func NewFromConfig(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (Client, error) {
	var (
		inner Client
		err   error
	)

	switch cfg.Provider {
	case ProviderOpenAI:
		inner, err = NewOpenAIClient()
	case ProviderAnthropic:
		inner, err = NewAnthropicClient()
	case ProviderGoogle:
		inner, err = NewGoogleClient(ctx)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initialize %s client: %w", cfg.Provider, err)
	}

	return NewRetryingClient(inner, cfg.MaxRetries, logger), nil
}
