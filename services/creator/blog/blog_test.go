// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package blog

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianCreate/services/creator/datatypes"
	"github.com/AleutianAI/AleutianCreate/services/creator/prompt"
	"github.com/AleutianAI/AleutianCreate/services/llm"
)

type scriptedClient struct {
	responses []string
	calls     int
}

func (s *scriptedClient) Name() string { return "scripted" }

func (s *scriptedClient) Generate(ctx context.Context, p string, _ llm.GenerationParams) (string, error) {
	i := s.calls
	s.calls++
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	return s.responses[i], nil
}

const planResponse = `{"title": "On Caching", "summary": "Why cache invalidation is the hard part of systems design.",
 "sections": ["The problem", "Strategies", "Closing"], "image_prompt": "a wall of lockers"}`

var draftResponse = `{"title": "On Caching", "markdown": "` + strings.Repeat("Cache invalidation is hard. ", 10) + `", "tags": ["systems"]}`

const passReview = `{"overall": 91, "summary": "ship it", "dimensions": [], "suggestions": []}`
const failReview = `{"overall": 62, "summary": "thin middle section",
 "dimensions": [{"name": "depth", "score": 4}],
 "suggestions": [{"target": "Strategies", "description": "add concrete eviction policies", "severity": "high"}]}`

func testPrompts(t *testing.T) *prompt.Store {
	t.Helper()
	store, err := prompt.NewStore("", nil)
	require.NoError(t, err)
	return store
}

func TestCreatePassingFirstReview(t *testing.T) {
	client := &scriptedClient{responses: []string{planResponse, draftResponse, passReview}}
	c := NewCreator(client, testPrompts(t), nil, nil)

	var stages []string
	post, err := c.Create(context.Background(), datatypes.NewIdea("u", "caching"), func(stage, _ string) {
		stages = append(stages, stage)
	})
	require.NoError(t, err)
	assert.Equal(t, "On Caching", post.Title)
	require.NotNil(t, post.Critique)
	assert.Equal(t, 91, post.Critique.Overall)
	assert.Equal(t, 3, client.calls)
	assert.Equal(t, []string{"planning", "generating", "reviewing"}, stages)
	assert.Nil(t, post.Hero)
}

func TestCreateRevisesBelowGate(t *testing.T) {
	client := &scriptedClient{responses: []string{
		planResponse, draftResponse, failReview, draftResponse, passReview,
	}}
	c := NewCreator(client, testPrompts(t), nil, nil)

	post, err := c.Create(context.Background(), datatypes.NewIdea("u", "caching"), nil)
	require.NoError(t, err)
	// plan + generate + review + revise + re-review
	assert.Equal(t, 5, client.calls)
	require.NotNil(t, post.Critique)
	assert.Equal(t, 91, post.Critique.Overall)
}

func TestCreateHonorsConfiguredGate(t *testing.T) {
	// 91 clears the default gate but not a raised one, so a revision runs.
	reReview := `{"overall": 97, "summary": "excellent", "dimensions": [], "suggestions": []}`
	client := &scriptedClient{responses: []string{
		planResponse, draftResponse, passReview, draftResponse, reReview,
	}}
	c := NewCreator(client, testPrompts(t), nil, nil, WithQualityGate(95))

	post, err := c.Create(context.Background(), datatypes.NewIdea("u", "caching"), nil)
	require.NoError(t, err)
	assert.Equal(t, 5, client.calls)
	assert.Equal(t, 97, post.Critique.Overall)
}

func TestCreateShipsUnreviewedWhenReviewBreaks(t *testing.T) {
	client := &scriptedClient{responses: []string{planResponse, draftResponse, "not json at all"}}
	c := NewCreator(client, testPrompts(t), nil, nil)

	post, err := c.Create(context.Background(), datatypes.NewIdea("u", "caching"), nil)
	require.NoError(t, err)
	assert.Nil(t, post.Critique)
	assert.NotEmpty(t, post.Markdown)
}

func TestCreatePlanFailureIsFatal(t *testing.T) {
	client := &scriptedClient{responses: []string{"no structure here"}}
	c := NewCreator(client, testPrompts(t), nil, nil)

	_, err := c.Create(context.Background(), datatypes.NewIdea("u", "caching"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blog planning")
}
