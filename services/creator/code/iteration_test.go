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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianCreate/services/creator/datatypes"
	"github.com/AleutianAI/AleutianCreate/services/creator/prompt"
	"github.com/AleutianAI/AleutianCreate/services/llm"
)

type scriptedClient struct {
	responses []string
	calls     int
}

func (s *scriptedClient) Name() string { return llm.ProviderOpenAI }

func (s *scriptedClient) Generate(ctx context.Context, p string, _ llm.GenerationParams) (string, error) {
	i := s.calls
	s.calls++
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	return s.responses[i], nil
}

const planResponse = `{"project_name": "wordfreq", "language": "go",
 "description": "Counts word frequencies in text files and prints the top N.",
 "files": [{"path": "main.go", "purpose": "entry point"}],
 "rubric": [{"name": "correctness", "weight": 10}, {"name": "clarity", "weight": 6}],
 "complexity": 4}`

func genResponse(body string) string {
	out, _ := json.Marshal(map[string]any{
		"readme": "# wordfreq",
		"files": []map[string]string{
			{"path": "main.go", "contents": body},
		},
	})
	return string(out)
}

func reviewResponse(overall int) string {
	return fmt.Sprintf(`{"overall": %d, "summary": "review",
 "dimensions": [{"name": "correctness", "score": %d}],
 "suggestions": [{"target": "main.go", "description": "tighten error handling", "severity": "medium"}]}`,
		overall, overall/10)
}

const validGo = "package main\n\nfunc main() {\n\tprintln(\"ok\")\n}\n"

func newPipeline(t *testing.T, client llm.Client) *Pipeline {
	t.Helper()
	prompts, err := prompt.NewStore("", nil)
	require.NoError(t, err)
	return NewPipeline(client, nil, prompts, FixWholeFile, nil)
}

func TestRunPassesFirstReview(t *testing.T) {
	client := &scriptedClient{responses: []string{
		planResponse,
		genResponse(validGo),
		reviewResponse(92),
	}}
	p := newPipeline(t, client)

	project, err := p.Run(context.Background(), datatypes.NewIdea("u", "word frequency tool"), nil)
	require.NoError(t, err)
	require.NotNil(t, project)
	assert.Equal(t, "wordfreq", project.Name)
	assert.Equal(t, 1, project.Iterations)
	assert.Equal(t, 92, project.Critique.Overall)
	assert.Equal(t, 3, client.calls)
}

func TestRunFixLoopImproves(t *testing.T) {
	client := &scriptedClient{responses: []string{
		planResponse,
		genResponse(validGo),
		reviewResponse(70),
		genResponse(validGo), // fixer whole-file response reuses the files shape
		reviewResponse(86),
	}}
	p := newPipeline(t, client)

	project, err := p.Run(context.Background(), datatypes.NewIdea("u", "word frequency tool"), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, project.Iterations)
	assert.Equal(t, 86, project.Critique.Overall)
	assert.Equal(t, 5, client.calls)
}

func TestRunRegeneratesBelowThreshold(t *testing.T) {
	var stages []string
	client := &scriptedClient{responses: []string{
		planResponse,
		genResponse(validGo),
		reviewResponse(25), // unsalvageable
		genResponse(validGo),
		reviewResponse(88),
	}}
	p := newPipeline(t, client)

	project, err := p.Run(context.Background(), datatypes.NewIdea("u", "x"), func(stage, _ string) {
		stages = append(stages, stage)
	})
	require.NoError(t, err)
	assert.Equal(t, 88, project.Critique.Overall)
	// Regeneration shows up as a second generating stage, not a fixing one.
	assert.Equal(t, []string{"planning", "generating", "reviewing", "generating", "reviewing"}, stages)
	assert.NotContains(t, stages, "fixing")
}

func TestRunRegressionKeepsBestSnapshot(t *testing.T) {
	client := &scriptedClient{responses: []string{
		planResponse,
		genResponse(validGo),
		reviewResponse(70),
		genResponse("package main\n\nfunc main() {\n\tprintln(\"worse\")\n}\n"),
		reviewResponse(60), // regression
	}}
	p := newPipeline(t, client)

	project, err := p.Run(context.Background(), datatypes.NewIdea("u", "x"), nil)
	require.NoError(t, err)
	// The 70-score snapshot ships, not the regressed 60.
	assert.Equal(t, 70, project.Critique.Overall)
	assert.Contains(t, project.File("main.go").Contents, `println("ok")`)
}

func TestRunIterationBudget(t *testing.T) {
	client := &scriptedClient{responses: []string{
		planResponse,
		genResponse(validGo),
		reviewResponse(60),
		genResponse(validGo),
		reviewResponse(68),
		genResponse(validGo),
		reviewResponse(74),
	}}
	p := newPipeline(t, client)

	project, err := p.Run(context.Background(), datatypes.NewIdea("u", "x"), nil)
	require.NoError(t, err)
	assert.Equal(t, datatypes.MaxFixIterations, project.Iterations)
	assert.Equal(t, 74, project.Critique.Overall)
	// plan + gen + (review, fix) x2 + final review
	assert.Equal(t, 7, client.calls)
}

func TestRunSyntaxGateCapsScore(t *testing.T) {
	broken := "package main\n\nfunc main() {\n\tif {\n}\n"
	client := &scriptedClient{responses: []string{
		planResponse,
		genResponse(broken),
		reviewResponse(95), // generous review cannot clear a broken build
		genResponse(validGo),
		reviewResponse(90),
	}}
	p := newPipeline(t, client)

	project, err := p.Run(context.Background(), datatypes.NewIdea("u", "x"), nil)
	require.NoError(t, err)
	assert.Equal(t, 90, project.Critique.Overall)
	assert.Contains(t, project.File("main.go").Contents, `println("ok")`)
}

func TestRunFirstReviewFailureShipsUnreviewed(t *testing.T) {
	client := &scriptedClient{responses: []string{
		planResponse,
		genResponse(validGo),
		"the code looks fine to me", // not a structured review
	}}
	p := newPipeline(t, client)

	project, err := p.Run(context.Background(), datatypes.NewIdea("u", "x"), nil)
	require.NoError(t, err)
	require.NotNil(t, project)
	assert.Nil(t, project.Critique)
	assert.Equal(t, 1, project.Iterations)
	assert.Contains(t, project.File("main.go").Contents, `println("ok")`)
}

func TestRunConfiguredGateForcesFixPass(t *testing.T) {
	client := &scriptedClient{responses: []string{
		planResponse,
		genResponse(validGo),
		reviewResponse(85), // under a raised gate of 90
		genResponse(validGo),
		reviewResponse(92),
	}}
	prompts, err := prompt.NewStore("", nil)
	require.NoError(t, err)
	p := NewPipeline(client, nil, prompts, FixWholeFile, nil, WithLimits(0, 90, 0))

	project, err := p.Run(context.Background(), datatypes.NewIdea("u", "x"), nil)
	require.NoError(t, err)
	assert.Equal(t, 92, project.Critique.Overall)
	assert.Equal(t, 5, client.calls)
}

func TestRunConfiguredIterationBudget(t *testing.T) {
	client := &scriptedClient{responses: []string{
		planResponse,
		genResponse(validGo),
		reviewResponse(70), // under the gate, but the budget is one pass
	}}
	prompts, err := prompt.NewStore("", nil)
	require.NoError(t, err)
	p := NewPipeline(client, nil, prompts, FixWholeFile, nil, WithLimits(1, 0, 0))

	project, err := p.Run(context.Background(), datatypes.NewIdea("u", "x"), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, project.Iterations)
	assert.Equal(t, 70, project.Critique.Overall)
	assert.Equal(t, 3, client.calls)
}

func TestRunConfiguredRegenerateFloor(t *testing.T) {
	var stages []string
	client := &scriptedClient{responses: []string{
		planResponse,
		genResponse(validGo),
		reviewResponse(50), // above the default floor, below a raised one
		genResponse(validGo),
		reviewResponse(88),
	}}
	prompts, err := prompt.NewStore("", nil)
	require.NoError(t, err)
	p := NewPipeline(client, nil, prompts, FixWholeFile, nil, WithLimits(0, 0, 60))

	_, err = p.Run(context.Background(), datatypes.NewIdea("u", "x"), func(stage, _ string) {
		stages = append(stages, stage)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"planning", "generating", "reviewing", "generating", "reviewing"}, stages)
	assert.NotContains(t, stages, "fixing")
}

func TestRunPlanFailureIsFatal(t *testing.T) {
	client := &scriptedClient{responses: []string{"not a plan"}}
	p := newPipeline(t, client)

	_, err := p.Run(context.Background(), datatypes.NewIdea("u", "x"), nil)
	require.Error(t, err)
}
