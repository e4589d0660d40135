// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package imagegen provides REST clients for the image generation vendors
// the pipeline can call: fal.ai, Replicate, Hugging Face inference, and
// Gemini (Imagen). None of these vendors ship a Go SDK, so each client is a
// thin hand-rolled REST wrapper.
//
// Image generation is always best-effort: a creator that wants a hero image
// asks FanOut for candidates and proceeds without one when every backend
// fails.
package imagegen

import (
	"context"
	"time"
)

// Backend identifiers, matching config.ImageConfig.Backends entries.
const (
	BackendFal         = "fal"
	BackendReplicate   = "replicate"
	BackendHuggingFace = "huggingface"
	BackendGemini      = "gemini"
)

// Request describes one image to generate.
type Request struct {
	// Prompt is the image brief produced by the content plan.
	Prompt string

	// Width and Height are hints; backends that only support fixed sizes
	// ignore them.
	Width  int
	Height int
}

// Image is one generated image. Exactly one of URL or Data is set,
// depending on how the backend returns results.
type Image struct {
	// Provider is the backend that produced this image.
	Provider string

	// URL is a hosted result URL (fal, Replicate).
	URL string

	// Data is raw image bytes (Hugging Face, Gemini).
	Data []byte

	// MimeType describes Data when set.
	MimeType string
}

// Client generates a single image for a request.
type Client interface {
	// Name returns the backend identifier.
	Name() string

	// GenerateImage produces one image. Implementations poll queued
	// backends internally and respect ctx for cancellation.
	GenerateImage(ctx context.Context, req Request) (*Image, error)
}

// PollSettings bounds queue polling for asynchronous backends.
type PollSettings struct {
	Interval time.Duration
	Timeout  time.Duration
}

// DefaultPollSettings matches the config defaults.
func DefaultPollSettings() PollSettings {
	return PollSettings{Interval: 2 * time.Second, Timeout: 3 * time.Minute}
}
