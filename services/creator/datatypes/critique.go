// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

// Thresholds shared by the review loops. Overall critique scores are
// 0-100; individual rubric dimensions are 0-10.
const (
	// QualityGate is the overall score at or above which content ships.
	QualityGate = 80

	// RegenerateBelow is the overall score under which content is
	// considered unsalvageable and regenerated from the plan instead of
	// patched.
	RegenerateBelow = 40

	// MaxFixIterations bounds the critique/fix loop.
	MaxFixIterations = 3
)

// DimensionScore is a critic's score for one rubric dimension.
type DimensionScore struct {
	Name      string `json:"name" validate:"required"`
	Score     int    `json:"score" validate:"min=0,max=10"`
	Rationale string `json:"rationale,omitempty"`
}

// FixSuggestion is one concrete, actionable change the critic wants.
type FixSuggestion struct {
	Target      string `json:"target" validate:"required"`
	Description string `json:"description" validate:"required,min=5"`
	Severity    string `json:"severity" validate:"required,oneof=low medium high"`
}

// Critique is the structured review verdict for generated content.
type Critique struct {
	Overall     int              `json:"overall" validate:"min=0,max=100"`
	Summary     string           `json:"summary" validate:"required"`
	Dimensions  []DimensionScore `json:"dimensions" validate:"dive"`
	Suggestions []FixSuggestion  `json:"suggestions" validate:"dive"`
}

// Passing reports whether the critique clears the quality gate.
func (c Critique) Passing() bool { return c.Overall >= QualityGate }

// NeedsRegeneration reports whether the content is too weak to patch.
func (c Critique) NeedsRegeneration() bool { return c.Overall < RegenerateBelow }
