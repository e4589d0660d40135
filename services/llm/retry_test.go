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
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyClient fails a fixed number of times before succeeding.
type flakyClient struct {
	failures int
	err      error
	calls    int
}

func (f *flakyClient) Name() string { return "flaky" }

func (f *flakyClient) Generate(ctx context.Context, prompt string, params GenerationParams) (string, error) {
	f.calls++
	if f.calls <= f.failures {
		return "", f.err
	}
	return "ok", nil
}

func TestRetryRecoversFromTransientErrors(t *testing.T) {
	client := &flakyClient{failures: 2, err: errors.New("connection reset")}
	retrying := NewRetryingClient(client, 3, nil)

	out, err := retrying.Generate(context.Background(), "p", GenerationParams{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 3, client.calls)
}

func TestRetryGivesUpAfterMaxTries(t *testing.T) {
	client := &flakyClient{failures: 10, err: errors.New("upstream timeout")}
	retrying := NewRetryingClient(client, 3, nil)

	_, err := retrying.Generate(context.Background(), "p", GenerationParams{})
	require.Error(t, err)
	assert.Equal(t, 3, client.calls)
}

func TestRetrySkipsPermanentStatusErrors(t *testing.T) {
	client := &flakyClient{
		failures: 10,
		err:      &HTTPStatusError{Provider: ProviderAnthropic, Status: http.StatusBadRequest, Body: "bad schema"},
	}
	retrying := NewRetryingClient(client, 3, nil)

	_, err := retrying.Generate(context.Background(), "p", GenerationParams{})
	require.Error(t, err)
	assert.Equal(t, 1, client.calls, "4xx must not be retried")
}

func TestRetryRetriesRateLimit(t *testing.T) {
	client := &flakyClient{
		failures: 1,
		err:      &HTTPStatusError{Provider: ProviderAnthropic, Status: http.StatusTooManyRequests},
	}
	retrying := NewRetryingClient(client, 3, nil)

	out, err := retrying.Generate(context.Background(), "p", GenerationParams{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 2, client.calls)
}

func TestHTTPStatusErrorRetryable(t *testing.T) {
	assert.True(t, (&HTTPStatusError{Status: 429}).Retryable())
	assert.True(t, (&HTTPStatusError{Status: 503}).Retryable())
	assert.False(t, (&HTTPStatusError{Status: 400}).Retryable())
	assert.False(t, (&HTTPStatusError{Status: 404}).Retryable())
}
