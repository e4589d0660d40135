// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package creator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianCreate/services/creator/datatypes"
	"github.com/AleutianAI/AleutianCreate/services/creator/prompt"
	"github.com/AleutianAI/AleutianCreate/services/llm"
)

// scriptedClient returns canned responses in order, then repeats the last.
type scriptedClient struct {
	responses []string
	err       error
	calls     int
	prompts   []string
}

func (s *scriptedClient) Name() string { return "scripted" }

func (s *scriptedClient) Generate(ctx context.Context, p string, _ llm.GenerationParams) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, p)
	if s.err != nil {
		return "", s.err
	}
	i := s.calls - 1
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	return s.responses[i], nil
}

func newTestPrompts(t *testing.T) *prompt.Store {
	t.Helper()
	store, err := prompt.NewStore("", nil)
	require.NoError(t, err)
	return store
}

func TestRouteUsesModelDecision(t *testing.T) {
	client := &scriptedClient{responses: []string{`{"type": "social", "confidence": 0.9}`}}
	r := NewRouter(client, newTestPrompts(t), nil)

	got := r.Route(context.Background(), datatypes.NewIdea("u", "announce our launch"))
	assert.Equal(t, datatypes.ContentSocial, got)
	assert.Equal(t, 1, client.calls)
}

func TestRouteFallsBackOnModelError(t *testing.T) {
	client := &scriptedClient{err: errors.New("provider down")}
	r := NewRouter(client, newTestPrompts(t), nil)

	got := r.Route(context.Background(), datatypes.NewIdea("u", "write a CLI tool in Go"))
	assert.Equal(t, datatypes.ContentCode, got)
}

func TestRouteFallsBackOnBadJSON(t *testing.T) {
	client := &scriptedClient{responses: []string{"I think this is a blog post"}}
	r := NewRouter(client, newTestPrompts(t), nil)

	got := r.Route(context.Background(), datatypes.NewIdea("u", "a thread about testing"))
	assert.Equal(t, datatypes.ContentSocial, got)
}

func TestRouteByKeywords(t *testing.T) {
	tests := []struct {
		text string
		want datatypes.ContentType
	}{
		{"build a parser for TOML", datatypes.ContentCode},
		{"a twitter thread on burnout", datatypes.ContentSocial},
		{"reflections on a decade of remote work", datatypes.ContentBlog},
		{"", datatypes.ContentBlog},
		// Code wins when both code and social keywords appear.
		{"a script that posts to twitter", datatypes.ContentCode},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, routeByKeywords(tc.text), "text=%q", tc.text)
	}
}
