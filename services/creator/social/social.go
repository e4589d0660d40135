// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package social turns an idea into a reviewed thread of short posts.
package social

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/AleutianAI/AleutianCreate/pkg/schema"
	"github.com/AleutianAI/AleutianCreate/services/creator/datatypes"
	"github.com/AleutianAI/AleutianCreate/services/creator/prompt"
	"github.com/AleutianAI/AleutianCreate/services/llm"
)

// Progress receives stage notifications during creation. May be nil.
type Progress func(stage, message string)

// Creator runs the social pipeline: plan, generate, review, with one
// revision pass under the gate. Every post is clamped to the platform
// character budget after generation regardless of what the model returned.
type Creator struct {
	client       llm.Client
	prompts      *prompt.Store
	logger       *slog.Logger
	gate         int
	maxPostChars int
}

// Option adjusts Creator behavior at construction time.
type Option func(*Creator)

// WithMaxPostChars overrides the per-post character budget. Non-positive
// values keep the default.
func WithMaxPostChars(n int) Option {
	return func(c *Creator) {
		if n > 0 {
			c.maxPostChars = n
		}
	}
}

// WithQualityGate overrides the score a review must reach to skip the
// revision pass. Non-positive values keep the default.
func WithQualityGate(gate int) Option {
	return func(c *Creator) {
		if gate > 0 {
			c.gate = gate
		}
	}
}

// NewCreator builds a social Creator.
func NewCreator(client llm.Client, prompts *prompt.Store, logger *slog.Logger, opts ...Option) *Creator {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Creator{
		client:       client,
		prompts:      prompts,
		logger:       logger,
		gate:         datatypes.QualityGate,
		maxPostChars: datatypes.MaxPostChars,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// threadDraft is the generator's structured output. Post length is
// enforced by clamping, not by validator tags, so an over-budget model
// response degrades instead of failing the run.
type threadDraft struct {
	Posts    []string `json:"posts" validate:"required,min=1,dive,min=1"`
	Hashtags []string `json:"hashtags,omitempty"`
}

// Create produces the finished thread.
func (c *Creator) Create(ctx context.Context, idea datatypes.Idea, notify Progress) (*datatypes.SocialThread, error) {
	emit := func(stage, msg string) {
		if notify != nil {
			notify(stage, msg)
		}
	}

	emit("planning", "outlining thread")
	plan, err := c.plan(ctx, idea)
	if err != nil {
		return nil, fmt.Errorf("social planning: %w", err)
	}
	planJSON, _ := json.MarshalIndent(plan, "", "  ")

	emit("generating", "writing thread: "+plan.Title)
	d, err := c.generate(ctx, planJSON)
	if err != nil {
		return nil, fmt.Errorf("social generation: %w", err)
	}
	c.clampPosts(d.Posts)

	emit("reviewing", "thread review")
	critique, err := c.review(ctx, planJSON, d)
	if err != nil {
		c.logger.Warn("social review failed, shipping unreviewed thread", "error", err.Error())
	} else if critique.Overall < c.gate {
		emit("fixing", fmt.Sprintf("revising (score %d)", critique.Overall))
		if revised, revErr := c.revise(ctx, planJSON, d, critique); revErr == nil {
			c.clampPosts(revised.Posts)
			d = revised
			if re, reErr := c.review(ctx, planJSON, d); reErr == nil && re.Overall > critique.Overall {
				critique = re
			}
		} else {
			c.logger.Warn("social revision failed, keeping first draft", "error", revErr.Error())
		}
	}

	return &datatypes.SocialThread{
		Posts:    d.Posts,
		Hashtags: d.Hashtags,
		Critique: critique,
	}, nil
}

func (c *Creator) plan(ctx context.Context, idea datatypes.Idea) (*datatypes.Plan, error) {
	rendered, err := c.prompts.Render(prompt.NameSocialPlan, map[string]any{
		"Idea":     idea.Text,
		"Audience": idea.Audience,
		"Tone":     idea.Tone,
	})
	if err != nil {
		return nil, err
	}
	raw, err := c.client.Generate(ctx, rendered, llm.GenerationParams{
		Temperature: llm.Float32Ptr(0.8),
	})
	if err != nil {
		return nil, err
	}
	var plan datatypes.Plan
	if err := schema.Decode(raw, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (c *Creator) generate(ctx context.Context, planJSON []byte) (*threadDraft, error) {
	rendered, err := c.prompts.Render(prompt.NameSocialGenerate, map[string]any{
		"PlanJSON": string(planJSON),
		"MaxChars": c.maxPostChars,
	})
	if err != nil {
		return nil, err
	}
	raw, err := c.client.Generate(ctx, rendered, llm.GenerationParams{
		Temperature: llm.Float32Ptr(0.9),
	})
	if err != nil {
		return nil, err
	}
	var d threadDraft
	if err := schema.Decode(raw, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Creator) review(ctx context.Context, planJSON []byte, d *threadDraft) (*datatypes.Critique, error) {
	rendered, err := c.prompts.Render(prompt.NameSocialReview, map[string]any{
		"PlanJSON": string(planJSON),
		"Content":  formatThread(d.Posts),
	})
	if err != nil {
		return nil, err
	}
	raw, err := c.client.Generate(ctx, rendered, llm.GenerationParams{
		Temperature: llm.Float32Ptr(0.2),
	})
	if err != nil {
		return nil, err
	}
	var critique datatypes.Critique
	if err := schema.Decode(raw, &critique); err != nil {
		return nil, err
	}
	return &critique, nil
}

func (c *Creator) revise(ctx context.Context, planJSON []byte, d *threadDraft, critique *datatypes.Critique) (*threadDraft, error) {
	critJSON, _ := json.MarshalIndent(critique, "", "  ")
	rendered, err := c.prompts.Render(prompt.NameSocialGenerate, map[string]any{
		"PlanJSON": fmt.Sprintf("%s\n\nPrevious thread scored %d/100. Notes to address:\n%s\n\nPrevious thread:\n%s",
			planJSON, critique.Overall, critJSON, formatThread(d.Posts)),
		"MaxChars": c.maxPostChars,
	})
	if err != nil {
		return nil, err
	}
	raw, err := c.client.Generate(ctx, rendered, llm.GenerationParams{
		Temperature: llm.Float32Ptr(0.7),
	})
	if err != nil {
		return nil, err
	}
	var revised threadDraft
	if err := schema.Decode(raw, &revised); err != nil {
		return nil, err
	}
	return &revised, nil
}

// clampPosts enforces the per-post budget in place.
func (c *Creator) clampPosts(posts []string) {
	for i, p := range posts {
		posts[i] = prompt.Truncate(p, c.maxPostChars)
	}
}

func formatThread(posts []string) string {
	var b strings.Builder
	for i, p := range posts {
		fmt.Fprintf(&b, "post %d: %s\n", i+1, p)
	}
	return b.String()
}
