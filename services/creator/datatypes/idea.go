// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes defines the shared data structures that flow through
// the content pipeline: ideas, plans, generated content, and critiques.
//
// Structures produced by LLM calls carry validator tags and are checked via
// pkg/schema before any downstream use.
package datatypes

import (
	"time"

	"github.com/google/uuid"
)

// Idea is a user-submitted seed for the pipeline.
type Idea struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text" validate:"required,min=3,max=2000"`
	Audience  string    `json:"audience,omitempty" validate:"max=200"`
	Tone      string    `json:"tone,omitempty" validate:"max=100"`
	CreatedAt time.Time `json:"created_at"`
}

// NewIdea builds an Idea with a fresh ID and timestamp.
func NewIdea(userID, text string) Idea {
	return Idea{
		ID:        uuid.NewString(),
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}

// ContentType is the creator an idea routes to.
type ContentType string

const (
	ContentBlog   ContentType = "blog"
	ContentSocial ContentType = "social"
	ContentCode   ContentType = "code"
)

// Valid reports whether the content type is one the pipeline supports.
func (c ContentType) Valid() bool {
	switch c {
	case ContentBlog, ContentSocial, ContentCode:
		return true
	}
	return false
}
