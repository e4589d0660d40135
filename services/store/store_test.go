// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianCreate/services/creator/datatypes"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory(NewCipherFromKey([]byte("test-master-key")), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestIdeaRoundTrip(t *testing.T) {
	s := newTestStore(t)

	idea := datatypes.NewIdea("alice", "a post about goroutine leaks")
	require.NoError(t, s.PutIdea(idea))

	got, err := s.GetIdea("alice", idea.ID)
	require.NoError(t, err)
	assert.Equal(t, idea.Text, got.Text)

	_, err = s.GetIdea("alice", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListIdeasScopedToUser(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.PutIdea(datatypes.NewIdea("alice", "first")))
	require.NoError(t, s.PutIdea(datatypes.NewIdea("alice", "second")))
	require.NoError(t, s.PutIdea(datatypes.NewIdea("bob", "other user")))

	ideas, err := s.ListIdeas("alice")
	require.NoError(t, err)
	assert.Len(t, ideas, 2)

	ideas, err = s.ListIdeas("carol")
	require.NoError(t, err)
	assert.Empty(t, ideas)
}

func TestRunRoundTrip(t *testing.T) {
	s := newTestStore(t)

	run := datatypes.NewRun(datatypes.NewIdea("alice", "x"))
	run.Record("planning", "started")
	run.Finish("")
	require.NoError(t, s.PutRun(run))

	got, err := s.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, datatypes.RunSucceeded, got.Status)
	assert.Len(t, got.Events, 1)
}

func TestCredentialSealedAtRest(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.PutCredential("alice", "openai", "sk-secret-value"))

	// Raw bytes on disk must not contain the plaintext.
	raw, err := s.get(credKey("alice", "openai"))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "sk-secret-value")

	got, err := s.GetCredential("alice", "openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-secret-value", got)

	require.NoError(t, s.DeleteCredential("alice", "openai"))
	_, err = s.GetCredential("alice", "openai")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCredentialRequiresCipher(t *testing.T) {
	s, err := OpenInMemory(nil, nil)
	require.NoError(t, err)
	defer s.Close()

	err = s.PutCredential("alice", "openai", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no cipher")
}

func TestCipherRoundTripAndTamper(t *testing.T) {
	c := NewCipherFromKey([]byte("key material"))

	sealed, err := c.Encrypt([]byte("hello"))
	require.NoError(t, err)

	plain, err := c.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(plain))

	// Distinct nonces per encryption.
	sealed2, err := c.Encrypt([]byte("hello"))
	require.NoError(t, err)
	assert.NotEqual(t, sealed, sealed2)

	// Tampering is detected.
	sealed[len(sealed)-1] ^= 0xff
	_, err = c.Decrypt(sealed)
	require.Error(t, err)

	// Wrong key fails.
	other := NewCipherFromKey([]byte("different key"))
	_, err = other.Decrypt(sealed2)
	require.Error(t, err)
}
