// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package code is the staged sub-pipeline for generated software
// projects: planner, generator with a static gate, critic, fixer, and the
// bounded iteration controller that drives them.
package code

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"

	"github.com/AleutianAI/AleutianCreate/services/creator/datatypes"
)

// SyntaxIssue is one static-gate finding in a generated file.
type SyntaxIssue struct {
	Path    string
	Line    int
	Message string
}

func (i SyntaxIssue) String() string {
	if i.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", i.Path, i.Line, i.Message)
	}
	return fmt.Sprintf("%s: %s", i.Path, i.Message)
}

// CheckProject runs the static gate over every generated file: tree-sitter
// parsing for the languages we have grammars for, plus a module-path check
// for Go projects. Files in other languages pass unchecked.
//
// Thread Safety: safe for concurrent use. Parsers are created per call.
func CheckProject(ctx context.Context, project *datatypes.CodeProject) ([]SyntaxIssue, error) {
	var issues []SyntaxIssue
	for _, f := range project.Files {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		switch {
		case filepath.Base(f.Path) == "go.mod":
			issues = append(issues, checkGoMod(f)...)
		default:
			fileIssues, err := checkFileSyntax(ctx, f)
			if err != nil {
				return nil, err
			}
			issues = append(issues, fileIssues...)
		}
	}
	return issues, nil
}

func checkFileSyntax(ctx context.Context, f datatypes.GeneratedFile) ([]SyntaxIssue, error) {
	lang := grammarFor(f.Path)
	if lang == nil {
		return nil, nil
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, []byte(f.Contents))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", f.Path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if errNode := firstErrorNode(root); errNode != nil {
		return []SyntaxIssue{{
			Path:    f.Path,
			Line:    int(errNode.StartPoint().Row) + 1,
			Message: "syntax error",
		}}, nil
	}
	return nil, nil
}

// checkGoMod validates the module directive with x/mod. A malformed go.mod
// means the whole project is unusable, so it gates like a syntax error.
func checkGoMod(f datatypes.GeneratedFile) []SyntaxIssue {
	mf, err := modfile.Parse(f.Path, []byte(f.Contents), nil)
	if err != nil {
		return []SyntaxIssue{{Path: f.Path, Message: fmt.Sprintf("invalid go.mod: %v", err)}}
	}
	if mf.Module == nil || mf.Module.Mod.Path == "" {
		return []SyntaxIssue{{Path: f.Path, Message: "go.mod missing module directive"}}
	}
	if err := module.CheckPath(mf.Module.Mod.Path); err != nil {
		return []SyntaxIssue{{Path: f.Path, Message: fmt.Sprintf("invalid module path %q: %v", mf.Module.Mod.Path, err)}}
	}
	return nil
}

func grammarFor(path string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return golang.GetLanguage()
	case ".py", ".pyi":
		return python.GetLanguage()
	case ".js", ".jsx", ".mjs", ".cjs":
		return javascript.GetLanguage()
	default:
		return nil
	}
}

func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := uint32(0); i < node.ChildCount(); i++ {
		if err := firstErrorNode(node.Child(int(i))); err != nil {
			return err
		}
	}
	return nil
}
