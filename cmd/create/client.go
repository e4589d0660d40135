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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AleutianAI/AleutianCreate/services/creator/datatypes"
)

// apiClient talks to the orchestrator's HTTP API.
type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func newClient() *apiClient {
	base := serverURL
	if base == "" {
		base = os.Getenv("CREATE_SERVER")
	}
	if base == "" {
		base = "http://localhost:12310"
	}
	return &apiClient{
		baseURL: strings.TrimRight(base, "/"),
		token:   os.Getenv("CREATE_AUTH_TOKEN"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *apiClient) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("orchestrator unreachable at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s (%d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *apiClient) CreateIdea(text, audience, tone string) (*datatypes.Idea, error) {
	req := map[string]string{"text": text}
	if audience != "" {
		req["audience"] = audience
	}
	if tone != "" {
		req["tone"] = tone
	}
	var idea datatypes.Idea
	if err := c.do(http.MethodPost, "/v1/ideas", req, &idea); err != nil {
		return nil, err
	}
	return &idea, nil
}

func (c *apiClient) ListIdeas() ([]datatypes.Idea, error) {
	var resp struct {
		Ideas []datatypes.Idea `json:"ideas"`
	}
	if err := c.do(http.MethodGet, "/v1/ideas", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Ideas, nil
}

func (c *apiClient) GetIdea(id string) (*datatypes.Idea, error) {
	var idea datatypes.Idea
	if err := c.do(http.MethodGet, "/v1/ideas/"+id, nil, &idea); err != nil {
		return nil, err
	}
	return &idea, nil
}

func (c *apiClient) StartRun(ideaID string) (string, error) {
	var started struct {
		RunID string `json:"run_id"`
	}
	if err := c.do(http.MethodPost, "/v1/ideas/"+ideaID+"/generate", nil, &started); err != nil {
		return "", err
	}
	return started.RunID, nil
}

func (c *apiClient) GetRun(id string) (*datatypes.Run, error) {
	var run datatypes.Run
	if err := c.do(http.MethodGet, "/v1/runs/"+id, nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// streamMessage is either a progress event or the terminal frame
// carrying the finished run.
type streamMessage struct {
	datatypes.ProgressEvent
	Done bool           `json:"done"`
	Run  *datatypes.Run `json:"run,omitempty"`
}

// StreamRun follows a run's progress over the events websocket, calling
// onEvent for each stage update, and returns the finished run.
func (c *apiClient) StreamRun(ctx context.Context, runID string, onEvent func(datatypes.ProgressEvent)) (*datatypes.Run, error) {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/v1/runs/" + runID + "/events"

	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		return nil, fmt.Errorf("event stream unavailable: %w", err)
	}
	defer conn.Close()

	for {
		var msg streamMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				// Server closed without a terminal frame; fall back to a fetch.
				return c.GetRun(runID)
			}
			return nil, err
		}
		if msg.Done {
			if msg.Run != nil {
				return msg.Run, nil
			}
			return c.GetRun(runID)
		}
		if onEvent != nil && msg.Stage != "" {
			onEvent(msg.ProgressEvent)
		}
	}
}

// PollRun is the fallback when the websocket cannot be established. It
// reports events as they appear in the run record.
func (c *apiClient) PollRun(ctx context.Context, runID string, onEvent func(datatypes.ProgressEvent)) (*datatypes.Run, error) {
	seen := 0
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		run, err := c.GetRun(runID)
		if err != nil {
			return nil, err
		}
		for ; seen < len(run.Events); seen++ {
			if onEvent != nil {
				onEvent(run.Events[seen])
			}
		}
		if run.Status.Terminal() {
			return run, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
