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
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/AleutianAI/AleutianCreate/pkg/schema"
	"github.com/AleutianAI/AleutianCreate/services/creator/datatypes"
	"github.com/AleutianAI/AleutianCreate/services/creator/prompt"
	"github.com/AleutianAI/AleutianCreate/services/llm"
)

// generated is the generator's structured output.
type generated struct {
	Readme string                    `json:"readme,omitempty"`
	Files  []datatypes.GeneratedFile `json:"files" validate:"required,min=1,dive"`
}

// Generator produces project files from a plan, on the model tier the
// plan's complexity selects, and runs the static gate over the result.
type Generator struct {
	client  llm.Client
	tiers   *llm.Router
	prompts *prompt.Store
	logger  *slog.Logger
}

// NewGenerator builds a Generator. tiers may be nil.
func NewGenerator(client llm.Client, tiers *llm.Router, prompts *prompt.Store, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{client: client, tiers: tiers, prompts: prompts, logger: logger}
}

// Generate implements the plan. Syntax issues from the static gate are
// returned alongside the project; the iteration controller feeds them to
// the fixer rather than failing the run.
func (g *Generator) Generate(ctx context.Context, plan *datatypes.CodePlan) (*datatypes.CodeProject, []SyntaxIssue, error) {
	planJSON, _ := json.MarshalIndent(plan, "", "  ")
	rendered, err := g.prompts.Render(prompt.NameCodeGenerate, map[string]any{
		"PlanJSON": string(planJSON),
	})
	if err != nil {
		return nil, nil, err
	}

	params := llm.GenerationParams{Temperature: llm.Float32Ptr(0.3)}
	if g.tiers != nil {
		params = g.tiers.Params(g.client.Name(), llm.TierForComplexity(plan.Complexity), params)
	}

	raw, err := g.client.Generate(ctx, rendered, params)
	if err != nil {
		return nil, nil, fmt.Errorf("code generation call: %w", err)
	}

	var out generated
	if err := schema.Decode(raw, &out); err != nil {
		return nil, nil, fmt.Errorf("generated project: %w", err)
	}

	project := &datatypes.CodeProject{
		Name:     plan.ProjectName,
		Language: plan.Language,
		Readme:   out.Readme,
		Files:    out.Files,
		Plan:     plan,
	}

	issues, err := CheckProject(ctx, project)
	if err != nil {
		return nil, nil, err
	}
	if len(issues) > 0 {
		g.logger.Warn("static gate found issues", "project", project.Name, "count", len(issues))
	}
	return project, issues, nil
}
