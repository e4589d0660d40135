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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianCreate/services/creator/datatypes"
)

func TestCheckProjectValidGo(t *testing.T) {
	project := &datatypes.CodeProject{
		Name:     "demo",
		Language: "go",
		Files: []datatypes.GeneratedFile{
			{Path: "go.mod", Contents: "module example.com/demo\n\ngo 1.22\n"},
			{Path: "main.go", Contents: "package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfmt.Println(\"hi\")\n}\n"},
		},
	}
	issues, err := CheckProject(context.Background(), project)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestCheckProjectSyntaxError(t *testing.T) {
	project := &datatypes.CodeProject{
		Name:     "demo",
		Language: "go",
		Files: []datatypes.GeneratedFile{
			{Path: "main.go", Contents: "package main\n\nfunc main() {\n\tif {\n}\n"},
		},
	}
	issues, err := CheckProject(context.Background(), project)
	require.NoError(t, err)
	require.NotEmpty(t, issues)
	assert.Equal(t, "main.go", issues[0].Path)
	assert.Greater(t, issues[0].Line, 0)
}

func TestCheckProjectPythonAndJavascript(t *testing.T) {
	project := &datatypes.CodeProject{
		Name:     "demo",
		Language: "python",
		Files: []datatypes.GeneratedFile{
			{Path: "app.py", Contents: "def greet(name):\n    return f\"hi {name}\"\n"},
			{Path: "broken.py", Contents: "def greet(:\n"},
			{Path: "index.js", Contents: "export function greet(name) { return `hi ${name}`; }\n"},
		},
	}
	issues, err := CheckProject(context.Background(), project)
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "broken.py", issues[0].Path)
}

func TestCheckProjectSkipsUnknownLanguages(t *testing.T) {
	project := &datatypes.CodeProject{
		Name:     "demo",
		Language: "go",
		Files: []datatypes.GeneratedFile{
			{Path: "README.md", Contents: "# not code {{{{"},
			{Path: "data.csv", Contents: "a,b,c"},
		},
	}
	issues, err := CheckProject(context.Background(), project)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestCheckGoMod(t *testing.T) {
	tests := []struct {
		name     string
		contents string
		wantBad  bool
	}{
		{"valid", "module example.com/demo\n\ngo 1.22\n", false},
		{"missing module", "go 1.22\n", true},
		{"bad path", "module Not A Path!\n", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			issues := checkGoMod(datatypes.GeneratedFile{Path: "go.mod", Contents: tc.contents})
			if tc.wantBad {
				assert.NotEmpty(t, issues)
			} else {
				assert.Empty(t, issues)
			}
		})
	}
}
