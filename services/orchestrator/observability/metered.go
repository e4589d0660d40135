// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package observability

import (
	"context"

	"github.com/AleutianAI/AleutianCreate/services/llm"
)

// MeteredClient wraps an llm.Client and records each call's outcome.
//
// Thread Safety: safe for concurrent use if the wrapped client is.
type MeteredClient struct {
	inner   llm.Client
	metrics *Metrics
}

var _ llm.Client = (*MeteredClient)(nil)

// InstrumentClient wraps inner so every Generate call increments the
// per-provider call counter. A nil metrics handle returns inner unchanged.
func InstrumentClient(inner llm.Client, m *Metrics) llm.Client {
	if m == nil {
		return inner
	}
	return &MeteredClient{inner: inner, metrics: m}
}

// Name implements llm.Client.
func (c *MeteredClient) Name() string { return c.inner.Name() }

// Generate implements llm.Client.
func (c *MeteredClient) Generate(ctx context.Context, prompt string, params llm.GenerationParams) (string, error) {
	out, err := c.inner.Generate(ctx, prompt, params)
	if err != nil {
		c.metrics.LLMCall(c.inner.Name(), "error")
		return "", err
	}
	c.metrics.LLMCall(c.inner.Name(), "ok")
	return out, nil
}
