// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/AleutianAI/AleutianCreate/pkg/config"
)

const replicateDefaultModel = "black-forest-labs/flux-schnell"

type replicateCreateRequest struct {
	Input map[string]any `json:"input"`
}

type replicatePrediction struct {
	ID     string `json:"id"`
	Status string `json:"status"` // starting, processing, succeeded, failed, canceled
	Output any    `json:"output"`
	Error  string `json:"error,omitempty"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

// ReplicateClient implements Client over the Replicate predictions API.
type ReplicateClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	poll       PollSettings
}

// NewReplicateClient builds a client from REPLICATE_API_TOKEN (or the
// mounted replicate_api_token secret) and REPLICATE_MODEL.
func NewReplicateClient(poll PollSettings) (*ReplicateClient, error) {
	apiKey := config.ResolveSecret("REPLICATE_API_TOKEN", "replicate_api_token")
	if apiKey == "" {
		return nil, fmt.Errorf("REPLICATE_API_TOKEN is missing")
	}

	model := os.Getenv("REPLICATE_MODEL")
	if model == "" {
		model = replicateDefaultModel
	}

	return &ReplicateClient{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    "https://api.replicate.com/v1",
		apiKey:     apiKey,
		model:      model,
		poll:       poll,
	}, nil
}

// Name implements Client.
func (r *ReplicateClient) Name() string { return BackendReplicate }

// GenerateImage implements Client.
func (r *ReplicateClient) GenerateImage(ctx context.Context, req Request) (*Image, error) {
	input := map[string]any{"prompt": req.Prompt}
	if req.Width > 0 && req.Height > 0 {
		// Replicate flux models take an aspect ratio, not pixel dimensions.
		input["aspect_ratio"] = aspectRatio(req.Width, req.Height)
	}

	body, err := r.doJSON(ctx, "POST",
		fmt.Sprintf("%s/models/%s/predictions", r.baseURL, r.model),
		replicateCreateRequest{Input: input})
	if err != nil {
		return nil, err
	}

	var pred replicatePrediction
	if err := json.Unmarshal(body, &pred); err != nil {
		return nil, fmt.Errorf("parse replicate prediction: %w", err)
	}

	slog.Debug("replicate prediction created", "id", pred.ID, "status", pred.Status)

	deadline := time.Now().Add(r.poll.Timeout)
	ticker := time.NewTicker(r.poll.Interval)
	defer ticker.Stop()

	for pred.Status != "succeeded" {
		switch pred.Status {
		case "failed", "canceled":
			return nil, fmt.Errorf("replicate prediction %s: %s", pred.Status, pred.Error)
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("replicate prediction timed out after %s", r.poll.Timeout)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		body, err = r.doJSON(ctx, "GET", pred.URLs.Get, nil)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(body, &pred); err != nil {
			return nil, fmt.Errorf("parse replicate prediction: %w", err)
		}
	}

	url := firstOutputURL(pred.Output)
	if url == "" {
		return nil, fmt.Errorf("replicate prediction succeeded with no output")
	}

	return &Image{Provider: BackendReplicate, URL: url}, nil
}

// firstOutputURL handles the two output shapes Replicate models use:
// a single URL string or a list of URL strings.
func firstOutputURL(output any) string {
	switch v := output.(type) {
	case string:
		return v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// aspectRatio reduces width:height to the closest supported ratio label.
func aspectRatio(w, h int) string {
	switch {
	case w == h:
		return "1:1"
	case w*9 == h*16:
		return "16:9"
	case w*16 == h*9:
		return "9:16"
	case w > h:
		return "4:3"
	default:
		return "3:4"
	}
}

func (r *ReplicateClient) doJSON(ctx context.Context, method, url string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal replicate request: %w", err)
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create replicate request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("replicate HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("replicate API returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
