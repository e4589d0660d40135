// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package blog turns an idea into a reviewed long-form post.
package blog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/AleutianAI/AleutianCreate/pkg/schema"
	"github.com/AleutianAI/AleutianCreate/services/creator/datatypes"
	"github.com/AleutianAI/AleutianCreate/services/creator/prompt"
	"github.com/AleutianAI/AleutianCreate/services/imagegen"
	"github.com/AleutianAI/AleutianCreate/services/llm"
)

// Progress receives stage notifications during creation. May be nil.
type Progress func(stage, message string)

// Creator runs the blog pipeline: plan, generate, review, and at most one
// revision pass when the review falls under the quality gate.
type Creator struct {
	client  llm.Client
	prompts *prompt.Store
	images  *imagegen.FanOut
	logger  *slog.Logger
	gate    int
}

// Option adjusts Creator behavior at construction time.
type Option func(*Creator)

// WithQualityGate overrides the score a review must reach to skip the
// revision pass. Non-positive values keep the default.
func WithQualityGate(gate int) Option {
	return func(c *Creator) {
		if gate > 0 {
			c.gate = gate
		}
	}
}

// NewCreator builds a blog Creator. images may be nil; posts then ship
// without a hero image.
func NewCreator(client llm.Client, prompts *prompt.Store, images *imagegen.FanOut, logger *slog.Logger, opts ...Option) *Creator {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Creator{
		client:  client,
		prompts: prompts,
		images:  images,
		logger:  logger,
		gate:    datatypes.QualityGate,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// draft is the generator's raw structured output before critique.
type draft struct {
	Title    string   `json:"title" validate:"required,min=3,max=300"`
	Markdown string   `json:"markdown" validate:"required,min=100"`
	Tags     []string `json:"tags,omitempty"`
}

// Create produces the finished post. Planning and generation errors are
// fatal; review errors degrade to shipping the unreviewed draft, and image
// failures are never fatal.
func (c *Creator) Create(ctx context.Context, idea datatypes.Idea, notify Progress) (*datatypes.BlogPost, error) {
	emit := func(stage, msg string) {
		if notify != nil {
			notify(stage, msg)
		}
	}

	emit("planning", "drafting outline")
	plan, err := c.plan(ctx, idea)
	if err != nil {
		return nil, fmt.Errorf("blog planning: %w", err)
	}
	planJSON, _ := json.MarshalIndent(plan, "", "  ")

	emit("generating", "writing post: "+plan.Title)
	d, err := c.generate(ctx, planJSON)
	if err != nil {
		return nil, fmt.Errorf("blog generation: %w", err)
	}

	emit("reviewing", "editorial review")
	critique, err := c.review(ctx, planJSON, d.Markdown)
	if err != nil {
		c.logger.Warn("blog review failed, shipping unreviewed draft", "error", err.Error())
	} else if critique.Overall < c.gate {
		emit("fixing", fmt.Sprintf("revising (score %d)", critique.Overall))
		revised, revErr := c.revise(ctx, planJSON, d, critique)
		if revErr != nil {
			c.logger.Warn("blog revision failed, keeping first draft", "error", revErr.Error())
		} else {
			d = revised
			if re, reErr := c.review(ctx, planJSON, d.Markdown); reErr == nil && re.Overall > critique.Overall {
				critique = re
			}
		}
	}

	post := &datatypes.BlogPost{
		Title:    d.Title,
		Markdown: d.Markdown,
		Tags:     d.Tags,
		Critique: critique,
	}

	if c.images != nil && c.images.Available() && plan.ImagePrompt != "" {
		emit("generating", "rendering hero image")
		if img := c.images.First(ctx, imagegen.Request{Prompt: plan.ImagePrompt, Width: 1920, Height: 1080}); img != nil {
			post.Hero = &datatypes.HeroImage{
				Provider: img.Provider,
				URL:      img.URL,
				MimeType: img.MimeType,
				AltText:  plan.ImagePrompt,
			}
		}
	}

	return post, nil
}

func (c *Creator) plan(ctx context.Context, idea datatypes.Idea) (*datatypes.Plan, error) {
	rendered, err := c.prompts.Render(prompt.NameBlogPlan, map[string]any{
		"Idea":     idea.Text,
		"Audience": idea.Audience,
		"Tone":     idea.Tone,
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
	var plan datatypes.Plan
	if err := schema.Decode(raw, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (c *Creator) generate(ctx context.Context, planJSON []byte) (*draft, error) {
	rendered, err := c.prompts.Render(prompt.NameBlogGenerate, map[string]any{
		"PlanJSON": string(planJSON),
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
	var d draft
	if err := schema.Decode(raw, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Creator) review(ctx context.Context, planJSON []byte, markdown string) (*datatypes.Critique, error) {
	rendered, err := c.prompts.Render(prompt.NameBlogReview, map[string]any{
		"PlanJSON": string(planJSON),
		"Content":  markdown,
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

// revise asks the writer to address the editor's notes. The review prompt
// is reused with the critique appended so the generator sees what failed.
func (c *Creator) revise(ctx context.Context, planJSON []byte, d *draft, critique *datatypes.Critique) (*draft, error) {
	critJSON, _ := json.MarshalIndent(critique, "", "  ")
	rendered, err := c.prompts.Render(prompt.NameBlogGenerate, map[string]any{
		"PlanJSON": fmt.Sprintf("%s\n\nPrevious draft scored %d/100. Editor notes to address:\n%s",
			planJSON, critique.Overall, critJSON),
	})
	if err != nil {
		return nil, err
	}
	raw, err := c.client.Generate(ctx, rendered, llm.GenerationParams{
		Temperature: llm.Float32Ptr(0.6),
	})
	if err != nil {
		return nil, err
	}
	var revised draft
	if err := schema.Decode(raw, &revised); err != nil {
		return nil, err
	}
	return &revised, nil
}
