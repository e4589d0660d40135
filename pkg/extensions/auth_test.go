// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package extensions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopAuthProviderAlwaysSucceeds(t *testing.T) {
	p := &NopAuthProvider{}

	info, err := p.Validate(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "local-user", info.UserID)
	assert.True(t, info.HasRole("admin"))
	assert.False(t, info.HasRole("auditor"))
}

func TestStaticTokenProvider(t *testing.T) {
	_, err := NewStaticTokenProvider("")
	require.Error(t, err)

	p, err := NewStaticTokenProvider("s3cret")
	require.NoError(t, err)

	info, err := p.Validate(context.Background(), "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "token-user", info.UserID)

	_, err = p.Validate(context.Background(), "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = p.Validate(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}
