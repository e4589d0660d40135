// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package schema parses and validates structured LLM output.
//
// Every model call in the pipeline that expects JSON goes through Decode:
// it extracts a JSON object from the raw completion (models love to wrap
// JSON in markdown fences or preamble text), unmarshals it into the target
// struct, and validates it against the struct's validator tags.
//
// Decode never trusts the model. A completion that fails any stage returns
// a typed error so callers can re-ask once and then fall back.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrNoJSON is returned when no JSON object can be located in the response.
var ErrNoJSON = errors.New("no JSON object found in model response")

// ErrValidation is returned when the decoded value fails struct validation.
var ErrValidation = errors.New("model response failed schema validation")

// validate is shared; validator.Validate is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Decode extracts JSON from a raw model completion, unmarshals it into v,
// and validates v against its validator tags.
//
// Inputs:
//
//	response - Raw completion text. May contain markdown fences or prose
//	           around the JSON object.
//	v - Pointer to the target struct.
//
// Outputs:
//
//	error - ErrNoJSON if no object is found, a wrapped unmarshal error for
//	        malformed JSON, or ErrValidation (wrapped) for tag failures.
func Decode(response string, v any) error {
	raw := ExtractJSON(response)
	if raw == "" {
		return ErrNoJSON
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("unmarshal model response: %w", err)
	}

	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	return nil
}

// Validate checks v against its validator tags without decoding.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// ExtractJSON locates a JSON object in a model completion.
//
// It tries, in order: the full trimmed response, fenced ```json blocks,
// plain ``` blocks, and finally the outermost {...} span. Returns "" when
// nothing object-shaped is found.
func ExtractJSON(response string) string {
	trimmed := strings.TrimSpace(response)
	if strings.HasPrefix(trimmed, "{") && json.Valid([]byte(trimmed)) {
		return trimmed
	}

	startMarkers := []string{"```json\n", "```json\r\n", "```\n", "```\r\n"}
	for _, startMarker := range startMarkers {
		startIdx := strings.Index(response, startMarker)
		if startIdx == -1 {
			continue
		}
		contentStart := startIdx + len(startMarker)
		remaining := response[contentStart:]
		endIdx := strings.Index(remaining, "```")
		if endIdx == -1 {
			continue
		}
		candidate := strings.TrimSpace(remaining[:endIdx])
		if strings.HasPrefix(candidate, "{") && json.Valid([]byte(candidate)) {
			return candidate
		}
	}

	// Outermost object span. Models sometimes emit prose before and after.
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")
	if startIdx != -1 && endIdx > startIdx {
		candidate := response[startIdx : endIdx+1]
		if json.Valid([]byte(candidate)) {
			return candidate
		}
	}

	return ""
}
