// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianCreate/services/creator"
	"github.com/AleutianAI/AleutianCreate/services/creator/blog"
	"github.com/AleutianAI/AleutianCreate/services/creator/datatypes"
	"github.com/AleutianAI/AleutianCreate/services/creator/prompt"
	"github.com/AleutianAI/AleutianCreate/services/creator/social"
	"github.com/AleutianAI/AleutianCreate/services/llm"
	"github.com/AleutianAI/AleutianCreate/services/store"
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

var blogScript = []string{
	`{"type": "blog", "confidence": 0.95}`,
	`{"title": "T", "summary": "A summary long enough to validate.", "sections": ["one", "two"]}`,
	`{"title": "T", "markdown": "` + strings.Repeat("Body text here. ", 10) + `", "tags": []}`,
	`{"overall": 90, "summary": "good", "dimensions": [], "suggestions": []}`,
}

func newTestEngine(t *testing.T, responses []string) (*Engine, *store.Store) {
	t.Helper()
	st, err := store.OpenInMemory(nil, nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	prompts, err := prompt.NewStore("", nil)
	require.NoError(t, err)

	client := &scriptedClient{responses: responses}
	eng := New(st,
		creator.NewRouter(client, prompts, nil),
		Creators{
			Blog:   blog.NewCreator(client, prompts, nil, nil),
			Social: social.NewCreator(client, prompts, nil),
		},
		nil, nil, nil, nil)
	return eng, st
}

func waitTerminal(t *testing.T, eng *Engine, id string) *datatypes.Run {
	t.Helper()
	var run *datatypes.Run
	require.Eventually(t, func() bool {
		var err error
		run, err = eng.Run(id)
		return err == nil && run.Status.Terminal()
	}, 5*time.Second, 10*time.Millisecond)
	return run
}

func TestStartRunCompletesBlogPipeline(t *testing.T) {
	eng, st := newTestEngine(t, blogScript)

	idea := datatypes.NewIdea("alice", "why zero-downtime deploys matter")
	run := eng.StartRun(idea)
	assert.Equal(t, datatypes.RunPending, run.Status)

	final := waitTerminal(t, eng, run.ID)
	assert.Equal(t, datatypes.RunSucceeded, final.Status)
	assert.Equal(t, datatypes.ContentBlog, final.Type)
	require.NotNil(t, final.Result)
	require.NotNil(t, final.Result.Blog)
	assert.Equal(t, "T", final.Result.Blog.Title)
	assert.NotEmpty(t, final.Events)

	// Terminal record is persisted.
	stored, err := st.GetRun(run.ID)
	require.NoError(t, err)
	assert.Equal(t, datatypes.RunSucceeded, stored.Status)
}

func TestStartRunRecordsFailure(t *testing.T) {
	eng, _ := newTestEngine(t, []string{
		`{"type": "blog", "confidence": 0.95}`,
		"not a plan at all",
	})

	run := eng.StartRun(datatypes.NewIdea("alice", "x"))
	final := waitTerminal(t, eng, run.ID)
	assert.Equal(t, datatypes.RunFailed, final.Status)
	assert.Contains(t, final.Error, "blog planning")
}

func TestSubscribeStreamsProgress(t *testing.T) {
	eng, _ := newTestEngine(t, blogScript)

	run := eng.StartRun(datatypes.NewIdea("alice", "a deploy post"))
	events, cancel := eng.Subscribe(run.ID)
	defer cancel()

	var stages []string
	for ev := range events {
		stages = append(stages, ev.Stage)
	}
	// Channel closed means the run is terminal. Some early events may be
	// missed if the run raced ahead of the subscription.
	final := waitTerminal(t, eng, run.ID)
	assert.Equal(t, datatypes.RunSucceeded, final.Status)
	for _, s := range stages {
		assert.Contains(t, []string{"planning", "generating", "reviewing", "fixing"}, s)
	}
}

func TestSubscribeAfterTerminalClosesImmediately(t *testing.T) {
	eng, _ := newTestEngine(t, blogScript)
	run := eng.StartRun(datatypes.NewIdea("alice", "a post"))
	waitTerminal(t, eng, run.ID)

	events, cancel := eng.Subscribe(run.ID)
	defer cancel()
	_, open := <-events
	assert.False(t, open)
}

func TestRunUnknownID(t *testing.T) {
	eng, _ := newTestEngine(t, blogScript)
	_, err := eng.Run("nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
