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

// Plan is the structured outline a creator produces before generating
// content. It is LLM output and must pass schema validation.
type Plan struct {
	Title       string   `json:"title" validate:"required,min=3,max=300"`
	Summary     string   `json:"summary" validate:"required,min=10"`
	Audience    string   `json:"audience,omitempty"`
	Tone        string   `json:"tone,omitempty"`
	Sections    []string `json:"sections" validate:"required,min=1,dive,min=3"`
	Keywords    []string `json:"keywords,omitempty"`
	ImagePrompt string   `json:"image_prompt,omitempty"`
}

// RubricDimension is one axis a critic scores on a 0-10 scale.
type RubricDimension struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	Weight      int    `json:"weight" validate:"min=0,max=10"`
}

// CodePlan is the planner output for the code sub-pipeline: the file
// manifest, the language, and the rubric the critic will score against.
type CodePlan struct {
	ProjectName string            `json:"project_name" validate:"required,min=1,max=120"`
	Language    string            `json:"language" validate:"required,oneof=go python javascript"`
	Description string            `json:"description" validate:"required,min=10"`
	Files       []PlannedFile     `json:"files" validate:"required,min=1,dive"`
	Rubric      []RubricDimension `json:"rubric" validate:"required,min=1,dive"`
	Complexity  int               `json:"complexity" validate:"min=1,max=10"`
}

// PlannedFile names one file the generator must produce and its purpose.
type PlannedFile struct {
	Path    string `json:"path" validate:"required"`
	Purpose string `json:"purpose" validate:"required"`
}
