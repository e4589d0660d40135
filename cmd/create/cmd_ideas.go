// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianCreate/pkg/ux"
	"github.com/AleutianAI/AleutianCreate/services/creator/datatypes"
	"github.com/AleutianAI/AleutianCreate/services/creator/prompt"
)

func runIdeasList(cmd *cobra.Command, args []string) {
	client := newClient()

	var ideas []datatypes.Idea
	err := ux.WithSpinner("Fetching ideas", func() error {
		var err error
		ideas, err = client.ListIdeas()
		return err
	})
	if err != nil {
		os.Exit(1)
	}

	if len(ideas) == 0 {
		ux.Muted("No ideas saved yet. Try: create generate \"a post about ...\"")
		return
	}

	ux.Title("Saved ideas")
	for _, idea := range ideas {
		text := prompt.Truncate(idea.Text, 70)
		fmt.Printf("%s %s  %s\n",
			ux.Styles.Muted.Render(idea.ID),
			ux.Styles.Muted.Render(idea.CreatedAt.Format("2006-01-02")),
			text)
	}
}

func runIdeasShow(cmd *cobra.Command, args []string) {
	client := newClient()
	idea, err := client.GetIdea(args[0])
	if err != nil {
		ux.Error("Failed to fetch the idea: " + err.Error())
		os.Exit(1)
	}

	content := idea.Text
	if idea.Audience != "" {
		content += "\n\nAudience: " + idea.Audience
	}
	if idea.Tone != "" {
		content += "\nTone: " + idea.Tone
	}
	ux.Box("Idea "+idea.ID, content)
}
