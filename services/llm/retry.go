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
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// HTTPStatusError carries a provider HTTP status so the retry layer can
// distinguish transient failures from caller errors.
type HTTPStatusError struct {
	Provider string
	Status   int
	Body     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s API returned status %d: %s", e.Provider, e.Status, e.Body)
}

// Retryable reports whether the status is worth retrying: 429 and 5xx are;
// other 4xx are permanent.
func (e *HTTPStatusError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// RetryingClient wraps a Client with exponential backoff.
//
// Transient failures (network errors, 429, 5xx) are retried up to MaxTries
// with exponential backoff; permanent failures (4xx, empty completions)
// surface immediately.
//
// Thread Safety: safe for concurrent use if the wrapped client is.
type RetryingClient struct {
	inner    Client
	maxTries uint
	logger   *slog.Logger
}

// NewRetryingClient wraps inner with at most maxTries attempts per call.
// maxTries < 1 is treated as 1 (no retries).
func NewRetryingClient(inner Client, maxTries int, logger *slog.Logger) *RetryingClient {
	if maxTries < 1 {
		maxTries = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RetryingClient{inner: inner, maxTries: uint(maxTries), logger: logger}
}

// Name implements Client.
func (r *RetryingClient) Name() string { return r.inner.Name() }

// Generate implements Client.
func (r *RetryingClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	attempt := 0

	operation := func() (string, error) {
		attempt++
		out, err := r.inner.Generate(ctx, prompt, params)
		if err == nil {
			return out, nil
		}

		var statusErr *HTTPStatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			return "", backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return "", backoff.Permanent(err)
		}

		r.logger.Warn("retrying LLM call",
			"provider", r.inner.Name(),
			"attempt", attempt,
			"max_attempts", r.maxTries,
			"error", err.Error(),
		)
		return "", err
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = 500 * time.Millisecond
	expo.MaxInterval = 15 * time.Second

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(r.maxTries),
	)
}
