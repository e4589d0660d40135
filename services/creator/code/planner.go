// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package code

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AleutianAI/AleutianCreate/pkg/schema"
	"github.com/AleutianAI/AleutianCreate/services/creator/datatypes"
	"github.com/AleutianAI/AleutianCreate/services/creator/prompt"
	"github.com/AleutianAI/AleutianCreate/services/llm"
)

// Planner produces the structured project plan: file manifest, language,
// complexity, and the rubric the critic scores against.
type Planner struct {
	client  llm.Client
	tiers   *llm.Router
	prompts *prompt.Store
	logger  *slog.Logger
}

// NewPlanner builds a Planner. tiers may be nil; the client's configured
// default model is then used.
func NewPlanner(client llm.Client, tiers *llm.Router, prompts *prompt.Store, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{client: client, tiers: tiers, prompts: prompts, logger: logger}
}

// Plan asks the model for a project plan and validates it. Planning always
// runs on the standard tier; the plan's own complexity score then picks
// the generation tier.
func (p *Planner) Plan(ctx context.Context, idea datatypes.Idea) (*datatypes.CodePlan, error) {
	rendered, err := p.prompts.Render(prompt.NameCodePlan, map[string]any{"Idea": idea.Text})
	if err != nil {
		return nil, err
	}

	params := llm.GenerationParams{Temperature: llm.Float32Ptr(0.4)}
	if p.tiers != nil {
		params = p.tiers.Params(p.client.Name(), llm.TierStandard, params)
	}

	raw, err := p.client.Generate(ctx, rendered, params)
	if err != nil {
		return nil, fmt.Errorf("code planning call: %w", err)
	}

	var plan datatypes.CodePlan
	if err := schema.Decode(raw, &plan); err != nil {
		return nil, fmt.Errorf("code plan: %w", err)
	}

	p.logger.Info("code plan produced",
		"project", plan.ProjectName,
		"language", plan.Language,
		"files", len(plan.Files),
		"complexity", plan.Complexity,
		"tier", llm.TierForComplexity(plan.Complexity))
	return &plan, nil
}
