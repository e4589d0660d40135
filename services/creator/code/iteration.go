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

	"github.com/AleutianAI/AleutianCreate/services/creator/datatypes"
	"github.com/AleutianAI/AleutianCreate/services/creator/prompt"
	"github.com/AleutianAI/AleutianCreate/services/llm"
)

// Progress receives stage notifications during a pipeline run. May be nil.
type Progress func(stage, message string)

// Pipeline drives the full code sub-pipeline: plan, generate, then a
// bounded critique/fix loop.
//
// The loop stops on the first of: the critique clears the quality gate,
// the score stops improving, or the iteration budget runs out. Whichever
// snapshot scored best is what ships.
type Pipeline struct {
	planner   *Planner
	generator *Generator
	critic    *Critic
	fixer     *Fixer
	logger    *slog.Logger

	maxIterations   int
	gate            int
	regenerateBelow int
}

// Option adjusts pipeline behavior at construction time.
type Option func(*Pipeline)

// WithLimits overrides the loop thresholds: the fix-iteration budget, the
// passing score, and the full-regeneration floor. Non-positive values keep
// the defaults.
func WithLimits(maxIterations, gate, regenerateBelow int) Option {
	return func(p *Pipeline) {
		if maxIterations > 0 {
			p.maxIterations = maxIterations
		}
		if gate > 0 {
			p.gate = gate
			p.critic.gateScore = gate
		}
		if regenerateBelow > 0 {
			p.regenerateBelow = regenerateBelow
		}
	}
}

// NewPipeline wires the stages over one shared client.
func NewPipeline(client llm.Client, tiers *llm.Router, prompts *prompt.Store, mode FixMode, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		planner:         NewPlanner(client, tiers, prompts, logger),
		generator:       NewGenerator(client, tiers, prompts, logger),
		critic:          NewCritic(client, tiers, prompts, logger),
		fixer:           NewFixer(client, tiers, prompts, mode, logger),
		logger:          logger,
		maxIterations:   datatypes.MaxFixIterations,
		gate:            datatypes.QualityGate,
		regenerateBelow: datatypes.RegenerateBelow,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewPipelineFromStages wires explicit stages. Used by tests.
func NewPipelineFromStages(planner *Planner, generator *Generator, critic *Critic, fixer *Fixer, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		planner:         planner,
		generator:       generator,
		critic:          critic,
		fixer:           fixer,
		logger:          logger,
		maxIterations:   datatypes.MaxFixIterations,
		gate:            datatypes.QualityGate,
		regenerateBelow: datatypes.RegenerateBelow,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the pipeline for one idea.
func (p *Pipeline) Run(ctx context.Context, idea datatypes.Idea, notify Progress) (*datatypes.CodeProject, error) {
	emit := func(stage, msg string) {
		if notify != nil {
			notify(stage, msg)
		}
	}

	emit("planning", "planning project")
	plan, err := p.planner.Plan(ctx, idea)
	if err != nil {
		return nil, err
	}

	emit("generating", "implementing "+plan.ProjectName)
	project, gate, err := p.generator.Generate(ctx, plan)
	if err != nil {
		return nil, err
	}

	var (
		best      *datatypes.CodeProject
		bestScore = -1
		prevScore = -1
	)

	for iter := 1; iter <= p.maxIterations; iter++ {
		emit("reviewing", fmt.Sprintf("review pass %d", iter))
		critique, err := p.critic.Review(ctx, plan, project, gate)
		if err != nil {
			if best != nil {
				p.logger.Warn("review failed mid-loop, shipping best snapshot",
					"iteration", iter, "best_score", bestScore, "error", err.Error())
				return best, nil
			}
			p.logger.Warn("first review failed, shipping unreviewed project",
				"project", project.Name, "error", err.Error())
			project.Iterations = iter
			return project, nil
		}

		project.Critique = critique
		project.Iterations = iter
		if critique.Overall > bestScore {
			best, bestScore = project, critique.Overall
		}

		if critique.Overall >= p.gate {
			p.logger.Info("quality gate cleared", "iteration", iter, "score", critique.Overall)
			break
		}
		if prevScore >= 0 && critique.Overall <= prevScore {
			p.logger.Info("score regressed, keeping best snapshot",
				"iteration", iter, "score", critique.Overall, "best_score", bestScore)
			break
		}
		prevScore = critique.Overall
		if iter == p.maxIterations {
			p.logger.Info("iteration budget exhausted", "best_score", bestScore)
			break
		}

		if critique.Overall < p.regenerateBelow {
			emit("generating", fmt.Sprintf("regenerating (score %d)", critique.Overall))
			project, gate, err = p.generator.Generate(ctx, plan)
		} else {
			emit("fixing", fmt.Sprintf("applying %d fixes (score %d)",
				len(critique.Suggestions), critique.Overall))
			project, err = p.fixer.Fix(ctx, plan, project, critique)
			if err == nil {
				gate, err = CheckProject(ctx, project)
			}
		}
		if err != nil {
			p.logger.Warn("fix stage failed, shipping best snapshot",
				"iteration", iter, "best_score", bestScore, "error", err.Error())
			return best, nil
		}
	}

	return best, nil
}
