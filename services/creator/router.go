// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package creator routes ideas to the blog, social, and code creators and
// drives each through its plan, generate, and review stages.
package creator

import (
	"context"
	"log/slog"
	"strings"

	"github.com/AleutianAI/AleutianCreate/pkg/schema"
	"github.com/AleutianAI/AleutianCreate/services/creator/datatypes"
	"github.com/AleutianAI/AleutianCreate/services/creator/prompt"
	"github.com/AleutianAI/AleutianCreate/services/llm"
)

// routeDecision is the classifier's structured verdict.
type routeDecision struct {
	Type       string  `json:"type" validate:"required,oneof=blog social code"`
	Confidence float64 `json:"confidence" validate:"min=0,max=1"`
}

// Router classifies an idea into a content type. The LLM decides; a
// keyword heuristic answers when the model call or its JSON fails.
type Router struct {
	client  llm.Client
	prompts *prompt.Store
	logger  *slog.Logger
}

// NewRouter builds a Router over the shared LLM client and prompt store.
func NewRouter(client llm.Client, prompts *prompt.Store, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{client: client, prompts: prompts, logger: logger}
}

// Route classifies the idea. It never fails: the fallback heuristic always
// produces an answer, defaulting to blog.
func (r *Router) Route(ctx context.Context, idea datatypes.Idea) datatypes.ContentType {
	rendered, err := r.prompts.Render(prompt.NameRoute, map[string]any{"Idea": idea.Text})
	if err != nil {
		r.logger.Error("render route prompt failed", "error", err.Error())
		return routeByKeywords(idea.Text)
	}

	raw, err := r.client.Generate(ctx, rendered, llm.GenerationParams{
		Temperature: llm.Float32Ptr(0),
	})
	if err != nil {
		r.logger.Warn("route classification call failed, using heuristic",
			"error", err.Error())
		return routeByKeywords(idea.Text)
	}

	var decision routeDecision
	if err := schema.Decode(raw, &decision); err != nil {
		r.logger.Warn("route classification returned invalid JSON, using heuristic",
			"error", err.Error())
		return routeByKeywords(idea.Text)
	}

	ct := datatypes.ContentType(decision.Type)
	r.logger.Info("idea routed", "idea_id", idea.ID, "type", ct,
		"confidence", decision.Confidence)
	return ct
}

var (
	codeKeywords = []string{
		"code", "cli", "library", "script", "api", "app", "tool",
		"program", "function", "implement", "build a", "parser",
		"server", "bot", "package",
	}
	socialKeywords = []string{
		"tweet", "thread", "post", "social", "announcement", "linkedin",
		"x.com", "twitter", "mastodon", "bluesky", "viral",
	}
)

// routeByKeywords is the deterministic fallback. Code keywords win over
// social because implementation requests often mention announcing too.
func routeByKeywords(text string) datatypes.ContentType {
	lower := strings.ToLower(text)
	for _, kw := range codeKeywords {
		if strings.Contains(lower, kw) {
			return datatypes.ContentCode
		}
	}
	for _, kw := range socialKeywords {
		if strings.Contains(lower, kw) {
			return datatypes.ContentSocial
		}
	}
	return datatypes.ContentBlog
}
