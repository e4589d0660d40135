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
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianCreate/pkg/config"
)

const hfDefaultModel = "stabilityai/stable-diffusion-xl-base-1.0"

// HuggingFaceClient implements Client over the serverless inference API.
// Unlike the queued vendors, Hugging Face returns image bytes directly.
type HuggingFaceClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewHuggingFaceClient builds a client from HF_API_TOKEN (or the mounted
// hf_api_token secret) and HF_IMAGE_MODEL.
func NewHuggingFaceClient() (*HuggingFaceClient, error) {
	apiKey := config.ResolveSecret("HF_API_TOKEN", "hf_api_token")
	if apiKey == "" {
		return nil, fmt.Errorf("HF_API_TOKEN is missing")
	}

	model := os.Getenv("HF_IMAGE_MODEL")
	if model == "" {
		model = hfDefaultModel
	}

	return &HuggingFaceClient{
		// Cold model loads can take a while; the API holds the connection.
		httpClient: &http.Client{Timeout: 3 * time.Minute},
		baseURL:    "https://api-inference.huggingface.co/models",
		apiKey:     apiKey,
		model:      model,
	}, nil
}

// Name implements Client.
func (h *HuggingFaceClient) Name() string { return BackendHuggingFace }

// GenerateImage implements Client.
func (h *HuggingFaceClient) GenerateImage(ctx context.Context, req Request) (*Image, error) {
	payload, err := json.Marshal(map[string]string{"inputs": req.Prompt})
	if err != nil {
		return nil, fmt.Errorf("marshal huggingface request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST",
		h.baseURL+"/"+h.model, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("create huggingface request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+h.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("huggingface HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("huggingface API returned status %d: %s", resp.StatusCode, string(body))
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		// Error payloads come back as JSON with a 200 in some failure modes.
		return nil, fmt.Errorf("huggingface returned non-image payload: %s", string(body))
	}

	return &Image{
		Provider: BackendHuggingFace,
		Data:     body,
		MimeType: contentType,
	}, nil
}
