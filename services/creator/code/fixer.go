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
	"strings"

	"github.com/sourcegraph/go-diff/diff"

	"github.com/AleutianAI/AleutianCreate/pkg/schema"
	"github.com/AleutianAI/AleutianCreate/services/creator/datatypes"
	"github.com/AleutianAI/AleutianCreate/services/creator/prompt"
	"github.com/AleutianAI/AleutianCreate/services/llm"
)

// FixMode selects how the fixer applies model output.
type FixMode string

const (
	// FixWholeFile asks the model for complete replacement files.
	FixWholeFile FixMode = "whole-file"

	// FixPatch asks for a unified diff and applies it hunk-wise. Cheaper
	// on output tokens for large projects, stricter on model discipline.
	FixPatch FixMode = "patch"
)

// Fixer applies critique suggestions to a project.
type Fixer struct {
	client  llm.Client
	tiers   *llm.Router
	prompts *prompt.Store
	mode    FixMode
	logger  *slog.Logger
}

// NewFixer builds a Fixer. An empty mode defaults to whole-file.
func NewFixer(client llm.Client, tiers *llm.Router, prompts *prompt.Store, mode FixMode, logger *slog.Logger) *Fixer {
	if mode == "" {
		mode = FixWholeFile
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fixer{client: client, tiers: tiers, prompts: prompts, mode: mode, logger: logger}
}

// fixResponse is the whole-file mode structured output.
type fixResponse struct {
	Files []datatypes.GeneratedFile `json:"files" validate:"required,min=1,dive"`
}

// Fix returns a new project with the critique's suggestions applied. The
// input project is not mutated; the controller keeps it as the fallback
// snapshot.
func (f *Fixer) Fix(ctx context.Context, plan *datatypes.CodePlan, project *datatypes.CodeProject, critique *datatypes.Critique) (*datatypes.CodeProject, error) {
	planJSON, _ := json.MarshalIndent(plan, "", "  ")
	critJSON, _ := json.MarshalIndent(critique, "", "  ")

	tmplName := prompt.NameCodeFix
	data := map[string]any{
		"PlanJSON":     string(planJSON),
		"Content":      formatFiles(project.Files),
		"CritiqueJSON": string(critJSON),
	}
	if f.mode == FixPatch {
		data["PlanJSON"] = string(planJSON) +
			"\n\nRespond with a unified diff (git format, a/ and b/ prefixes) instead of JSON."
	}

	rendered, err := f.prompts.Render(tmplName, data)
	if err != nil {
		return nil, err
	}

	params := llm.GenerationParams{Temperature: llm.Float32Ptr(0.3)}
	if f.tiers != nil {
		params = f.tiers.Params(f.client.Name(), llm.TierForComplexity(plan.Complexity), params)
	}

	raw, err := f.client.Generate(ctx, rendered, params)
	if err != nil {
		return nil, fmt.Errorf("code fix call: %w", err)
	}

	next := cloneProject(project)
	switch f.mode {
	case FixPatch:
		if err := applyPatch(next, raw); err != nil {
			return nil, fmt.Errorf("apply fix patch: %w", err)
		}
	default:
		var out fixResponse
		if err := schema.Decode(raw, &out); err != nil {
			return nil, fmt.Errorf("fix response: %w", err)
		}
		for _, file := range out.Files {
			next.Upsert(file)
		}
		f.logger.Info("fix applied", "project", project.Name, "files_changed", len(out.Files))
	}
	return next, nil
}

func cloneProject(p *datatypes.CodeProject) *datatypes.CodeProject {
	next := *p
	next.Files = make([]datatypes.GeneratedFile, len(p.Files))
	copy(next.Files, p.Files)
	return &next
}

// applyPatch parses a unified diff and applies it hunk-wise to the
// project's in-memory files. New files are created; /dev/null targets are
// removed.
func applyPatch(project *datatypes.CodeProject, patch string) error {
	fileDiffs, err := diff.NewMultiFileDiffReader(strings.NewReader(extractDiff(patch))).ReadAllFiles()
	if err != nil {
		return fmt.Errorf("parse diff: %w", err)
	}
	if len(fileDiffs) == 0 {
		return fmt.Errorf("no file diffs in fix response")
	}

	for _, fd := range fileDiffs {
		path := fd.NewName
		if path == "" || path == "/dev/null" {
			path = fd.OrigName
		}
		path = strings.TrimPrefix(path, "a/")
		path = strings.TrimPrefix(path, "b/")

		if fd.NewName == "/dev/null" {
			removeFile(project, path)
			continue
		}

		var original string
		if existing := project.File(path); existing != nil {
			original = existing.Contents
		}
		patched, err := applyFileDiff(original, fd)
		if err != nil {
			return fmt.Errorf("apply hunks to %s: %w", path, err)
		}
		project.Upsert(datatypes.GeneratedFile{Path: path, Contents: patched})
	}
	return nil
}

// extractDiff strips any prose or fencing the model wrapped the diff in.
func extractDiff(raw string) string {
	if i := strings.Index(raw, "```diff"); i >= 0 {
		rest := raw[i+len("```diff"):]
		if j := strings.Index(rest, "```"); j >= 0 {
			return strings.TrimSpace(rest[:j])
		}
	}
	if i := strings.Index(raw, "--- "); i >= 0 {
		return raw[i:]
	}
	return raw
}

// applyFileDiff applies fd's hunks to original. Context and deletion
// lines must match the original exactly; a misaligned hunk is rejected
// rather than silently corrupting the file.
func applyFileDiff(original string, fd *diff.FileDiff) (string, error) {
	if fd.OrigName == "/dev/null" || original == "" {
		var lines []string
		for _, hunk := range fd.Hunks {
			for _, line := range hunkLines(hunk) {
				if strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++") {
					lines = append(lines, strings.TrimPrefix(line, "+"))
				}
			}
		}
		return strings.Join(lines, "\n"), nil
	}

	origLines := strings.Split(original, "\n")
	newLines := make([]string, 0, len(origLines))
	origIdx := 0

	for _, hunk := range fd.Hunks {
		hunkStart := int(hunk.OrigStartLine) - 1
		if hunkStart < origIdx {
			return "", fmt.Errorf("overlapping hunks at line %d", hunk.OrigStartLine)
		}
		for origIdx < hunkStart && origIdx < len(origLines) {
			newLines = append(newLines, origLines[origIdx])
			origIdx++
		}
		for _, line := range hunkLines(hunk) {
			switch {
			case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
				newLines = append(newLines, strings.TrimPrefix(line, "+"))
			case strings.HasPrefix(line, `\`):
				// "\ No newline at end of file" marker.
			case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
				want := strings.TrimPrefix(line, "-")
				if origIdx >= len(origLines) || origLines[origIdx] != want {
					return "", fmt.Errorf("hunk context mismatch at line %d: expected %q", origIdx+1, want)
				}
				origIdx++
			default:
				// Context line: " x", or "" for an empty original line.
				want := strings.TrimPrefix(line, " ")
				if origIdx >= len(origLines) || origLines[origIdx] != want {
					return "", fmt.Errorf("hunk context mismatch at line %d: expected %q", origIdx+1, want)
				}
				newLines = append(newLines, origLines[origIdx])
				origIdx++
			}
		}
	}
	for origIdx < len(origLines) {
		newLines = append(newLines, origLines[origIdx])
		origIdx++
	}
	return strings.Join(newLines, "\n"), nil
}

// hunkLines splits a hunk body into lines, dropping the empty trailing
// element the body's final newline produces.
func hunkLines(hunk *diff.Hunk) []string {
	lines := strings.Split(string(hunk.Body), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

func removeFile(project *datatypes.CodeProject, path string) {
	for i := range project.Files {
		if project.Files[i].Path == path {
			project.Files = append(project.Files[:i], project.Files[i+1:]...)
			return
		}
	}
}
