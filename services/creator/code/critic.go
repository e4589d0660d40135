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
	"sort"
	"strings"

	"github.com/AleutianAI/AleutianCreate/pkg/schema"
	"github.com/AleutianAI/AleutianCreate/services/creator/datatypes"
	"github.com/AleutianAI/AleutianCreate/services/creator/prompt"
	"github.com/AleutianAI/AleutianCreate/services/llm"
)

// Critic reviews a generated project against its plan's rubric.
type Critic struct {
	client    llm.Client
	tiers     *llm.Router
	prompts   *prompt.Store
	logger    *slog.Logger
	gateScore int
}

// NewCritic builds a Critic. tiers may be nil.
func NewCritic(client llm.Client, tiers *llm.Router, prompts *prompt.Store, logger *slog.Logger) *Critic {
	if logger == nil {
		logger = slog.Default()
	}
	return &Critic{
		client:    client,
		tiers:     tiers,
		prompts:   prompts,
		logger:    logger,
		gateScore: datatypes.QualityGate,
	}
}

// Review scores the project. Static-gate issues are appended as high
// severity suggestions and cap the overall score under the quality gate,
// so syntactically broken output can never ship on a generous review.
func (c *Critic) Review(ctx context.Context, plan *datatypes.CodePlan, project *datatypes.CodeProject, gate []SyntaxIssue) (*datatypes.Critique, error) {
	planJSON, _ := json.MarshalIndent(plan, "", "  ")
	rendered, err := c.prompts.Render(prompt.NameCodeCritic, map[string]any{
		"PlanJSON": string(planJSON),
		"Content":  formatFiles(project.Files),
	})
	if err != nil {
		return nil, err
	}

	params := llm.GenerationParams{Temperature: llm.Float32Ptr(0.2)}
	if c.tiers != nil {
		params = c.tiers.Params(c.client.Name(), llm.TierStandard, params)
	}

	raw, err := c.client.Generate(ctx, rendered, params)
	if err != nil {
		return nil, fmt.Errorf("code review call: %w", err)
	}

	var critique datatypes.Critique
	if err := schema.Decode(raw, &critique); err != nil {
		return nil, fmt.Errorf("code critique: %w", err)
	}

	for _, issue := range gate {
		critique.Suggestions = append(critique.Suggestions, datatypes.FixSuggestion{
			Target:      issue.Path,
			Description: issue.String(),
			Severity:    "high",
		})
	}
	if len(gate) > 0 && critique.Overall >= c.gateScore {
		critique.Overall = c.gateScore - 1
	}

	// Stable suggestion order: high severity first, then by target.
	sort.SliceStable(critique.Suggestions, func(i, j int) bool {
		a, b := critique.Suggestions[i], critique.Suggestions[j]
		if a.Severity != b.Severity {
			return severityRank(a.Severity) < severityRank(b.Severity)
		}
		return a.Target < b.Target
	})

	c.logger.Info("code review complete", "project", project.Name,
		"overall", critique.Overall, "suggestions", len(critique.Suggestions))
	return &critique, nil
}

func severityRank(s string) int {
	switch s {
	case "high":
		return 0
	case "medium":
		return 1
	default:
		return 2
	}
}

// formatFiles renders the project as fenced blocks for prompting.
func formatFiles(files []datatypes.GeneratedFile) string {
	var b strings.Builder
	for _, f := range files {
		fmt.Fprintf(&b, "=== %s ===\n%s\n\n", f.Path, f.Contents)
	}
	return b.String()
}
