// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianCreate/services/creator/datatypes"
)

func testClient(baseURL, token string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

func TestCreateIdeaSendsTokenAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "POST", r.Method)
		require.Equal(t, "/v1/ideas", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "a post about caching", req["text"])
		assert.Equal(t, "developers", req["audience"])

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": "idea-1", "text": req["text"]})
	}))
	defer srv.Close()

	idea, err := testClient(srv.URL, "secret").CreateIdea("a post about caching", "developers", "")
	require.NoError(t, err)
	assert.Equal(t, "idea-1", idea.ID)
}

func TestListIdeasDecodesWrappedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/ideas", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"ideas": []datatypes.Idea{
				{ID: "idea-1", Text: "a post about caching"},
				{ID: "idea-2", Text: "a cli in go"},
			},
		})
	}))
	defer srv.Close()

	ideas, err := testClient(srv.URL, "").ListIdeas()
	require.NoError(t, err)
	require.Len(t, ideas, 2)
	assert.Equal(t, "idea-1", ideas[0].ID)
	assert.Equal(t, "a cli in go", ideas[1].Text)
}

func TestListIdeasEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"ideas": []datatypes.Idea{}})
	}))
	defer srv.Close()

	ideas, err := testClient(srv.URL, "").ListIdeas()
	require.NoError(t, err)
	assert.Empty(t, ideas)
}

func TestDoSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "idea not found"})
	}))
	defer srv.Close()

	_, err := testClient(srv.URL, "").GetIdea("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "idea not found")
	assert.Contains(t, err.Error(), "404")
}

func TestPollRunReportsNewEventsUntilTerminal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		run := datatypes.Run{ID: "run-1", Status: datatypes.RunGenerating}
		run.Events = []datatypes.ProgressEvent{{Stage: "planning", Message: "started"}}
		if n > 1 {
			run.Status = datatypes.RunSucceeded
			run.Events = append(run.Events, datatypes.ProgressEvent{Stage: "generating", Message: "done"})
		}
		json.NewEncoder(w).Encode(run)
	}))
	defer srv.Close()

	client := testClient(srv.URL, "")
	client.http = &http.Client{Timeout: time.Second}

	var stages []string
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	run, err := client.PollRun(ctx, "run-1", func(ev datatypes.ProgressEvent) {
		stages = append(stages, ev.Stage)
	})
	require.NoError(t, err)
	assert.Equal(t, datatypes.RunSucceeded, run.Status)
	assert.Equal(t, []string{"planning", "generating"}, stages)
}
