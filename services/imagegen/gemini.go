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
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/AleutianAI/AleutianCreate/pkg/config"
)

const geminiDefaultImageModel = "imagen-3.0-generate-002"

type geminiPredictRequest struct {
	Instances  []geminiInstance `json:"instances"`
	Parameters geminiParams     `json:"parameters"`
}

type geminiInstance struct {
	Prompt string `json:"prompt"`
}

type geminiParams struct {
	SampleCount int    `json:"sampleCount"`
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type geminiPredictResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"predictions"`
}

// GeminiImageClient implements Client over the Imagen predict REST API.
type GeminiImageClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewGeminiImageClient builds a client from GEMINI_API_KEY (or the mounted
// gemini_api_key secret) and GEMINI_IMAGE_MODEL.
func NewGeminiImageClient() (*GeminiImageClient, error) {
	apiKey := config.ResolveSecret("GEMINI_API_KEY", "gemini_api_key")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is missing")
	}

	model := os.Getenv("GEMINI_IMAGE_MODEL")
	if model == "" {
		model = geminiDefaultImageModel
	}

	return &GeminiImageClient{
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		baseURL:    "https://generativelanguage.googleapis.com/v1beta/models",
		apiKey:     apiKey,
		model:      model,
	}, nil
}

// Name implements Client.
func (g *GeminiImageClient) Name() string { return BackendGemini }

// GenerateImage implements Client.
func (g *GeminiImageClient) GenerateImage(ctx context.Context, req Request) (*Image, error) {
	payload := geminiPredictRequest{
		Instances:  []geminiInstance{{Prompt: req.Prompt}},
		Parameters: geminiParams{SampleCount: 1},
	}
	if req.Width > 0 && req.Height > 0 {
		payload.Parameters.AspectRatio = aspectRatio(req.Width, req.Height)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:predict?key=%s", g.baseURL, g.model, g.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("create gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini API returned status %d: %s", resp.StatusCode, string(body))
	}

	var predictResp geminiPredictResponse
	if err := json.Unmarshal(body, &predictResp); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}
	if len(predictResp.Predictions) == 0 {
		return nil, fmt.Errorf("gemini returned no predictions")
	}

	imageData, err := base64.StdEncoding.DecodeString(predictResp.Predictions[0].BytesBase64Encoded)
	if err != nil {
		return nil, fmt.Errorf("decode gemini image data: %w", err)
	}

	mimeType := predictResp.Predictions[0].MimeType
	if mimeType == "" {
		mimeType = "image/png"
	}

	return &Image{
		Provider: BackendGemini,
		Data:     imageData,
		MimeType: mimeType,
	}, nil
}
