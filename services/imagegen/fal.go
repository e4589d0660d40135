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

const falDefaultModel = "fal-ai/flux/schnell"

type falSubmitRequest struct {
	Prompt    string      `json:"prompt"`
	ImageSize *falImgSize `json:"image_size,omitempty"`
	NumImages int         `json:"num_images,omitempty"`
}

type falImgSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type falSubmitResponse struct {
	RequestID   string `json:"request_id"`
	StatusURL   string `json:"status_url"`
	ResponseURL string `json:"response_url"`
}

type falStatusResponse struct {
	Status string `json:"status"` // IN_QUEUE, IN_PROGRESS, COMPLETED
}

type falResultResponse struct {
	Images []struct {
		URL         string `json:"url"`
		ContentType string `json:"content_type"`
	} `json:"images"`
}

// FalClient implements Client over the fal.ai queue API.
//
// fal is queue-based: submit returns a request ID plus status and response
// URLs, which are polled until COMPLETED.
type FalClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	poll       PollSettings
}

// NewFalClient builds a client from FAL_API_KEY (or the mounted fal_api_key
// secret) and FAL_MODEL.
func NewFalClient(poll PollSettings) (*FalClient, error) {
	apiKey := config.ResolveSecret("FAL_API_KEY", "fal_api_key")
	if apiKey == "" {
		return nil, fmt.Errorf("FAL_API_KEY is missing")
	}

	model := os.Getenv("FAL_MODEL")
	if model == "" {
		model = falDefaultModel
	}

	return &FalClient{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    "https://queue.fal.run",
		apiKey:     apiKey,
		model:      model,
		poll:       poll,
	}, nil
}

// Name implements Client.
func (f *FalClient) Name() string { return BackendFal }

// GenerateImage implements Client.
func (f *FalClient) GenerateImage(ctx context.Context, req Request) (*Image, error) {
	payload := falSubmitRequest{Prompt: req.Prompt, NumImages: 1}
	if req.Width > 0 && req.Height > 0 {
		payload.ImageSize = &falImgSize{Width: req.Width, Height: req.Height}
	}

	submit, err := f.doJSON(ctx, "POST", f.baseURL+"/"+f.model, payload)
	if err != nil {
		return nil, err
	}

	var submitResp falSubmitResponse
	if err := json.Unmarshal(submit, &submitResp); err != nil {
		return nil, fmt.Errorf("parse fal submit response: %w", err)
	}
	if submitResp.ResponseURL == "" {
		return nil, fmt.Errorf("fal submit returned no response URL")
	}

	slog.Debug("fal generation queued", "request_id", submitResp.RequestID)

	if err := f.waitCompleted(ctx, submitResp.StatusURL); err != nil {
		return nil, err
	}

	result, err := f.doJSON(ctx, "GET", submitResp.ResponseURL, nil)
	if err != nil {
		return nil, err
	}

	var resultResp falResultResponse
	if err := json.Unmarshal(result, &resultResp); err != nil {
		return nil, fmt.Errorf("parse fal result: %w", err)
	}
	if len(resultResp.Images) == 0 {
		return nil, fmt.Errorf("fal returned no images")
	}

	return &Image{
		Provider: BackendFal,
		URL:      resultResp.Images[0].URL,
		MimeType: resultResp.Images[0].ContentType,
	}, nil
}

// waitCompleted polls the status URL until COMPLETED or timeout.
func (f *FalClient) waitCompleted(ctx context.Context, statusURL string) error {
	deadline := time.Now().Add(f.poll.Timeout)
	ticker := time.NewTicker(f.poll.Interval)
	defer ticker.Stop()

	for {
		body, err := f.doJSON(ctx, "GET", statusURL, nil)
		if err != nil {
			return err
		}
		var status falStatusResponse
		if err := json.Unmarshal(body, &status); err != nil {
			return fmt.Errorf("parse fal status: %w", err)
		}
		if status.Status == "COMPLETED" {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("fal generation timed out after %s", f.poll.Timeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (f *FalClient) doJSON(ctx context.Context, method, url string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal fal request: %w", err)
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create fal request: %w", err)
	}
	req.Header.Set("Authorization", "Key "+f.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fal HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return nil, fmt.Errorf("fal API returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
