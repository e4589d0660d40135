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
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianCreate/pkg/ux"
	"github.com/AleutianAI/AleutianCreate/services/creator/datatypes"
	"github.com/AleutianAI/AleutianCreate/services/creator/prompt"
)

func runShowRun(cmd *cobra.Command, args []string) {
	client := newClient()
	runID := args[0]

	follow, _ := cmd.Flags().GetBool("follow")
	if follow {
		run := followRun(client, runID)
		printRun(run)
		if run.Status == datatypes.RunFailed {
			os.Exit(1)
		}
		return
	}

	run, err := client.GetRun(runID)
	if err != nil {
		ux.Error("Failed to fetch run " + runID + ": " + err.Error())
		os.Exit(1)
	}
	printRun(run)
}

// printRun renders a run's status, its result, and any publish receipts.
func printRun(run *datatypes.Run) {
	switch run.Status {
	case datatypes.RunSucceeded:
		ux.Success("Run " + run.ID + " succeeded")
	case datatypes.RunFailed:
		ux.Error("Run " + run.ID + " failed: " + run.Error)
	default:
		ux.Info("Run " + run.ID + " is " + string(run.Status))
	}

	if run.Result != nil {
		printResult(run.Result)
	}
	for _, r := range run.Receipts {
		ux.Receipt(r.Target, r.URL, r.DryRun)
	}
}

func printResult(result *datatypes.Result) {
	switch {
	case result.Blog != nil:
		b := result.Blog
		body := prompt.Truncate(b.Markdown, 300)
		body += fmt.Sprintf("\n\n%d words", prompt.WordCount(b.Markdown))
		if b.Critique != nil {
			body += fmt.Sprintf(", review score %d/100", b.Critique.Overall)
		}
		ux.Box(b.Title, body)

	case result.Social != nil:
		s := result.Social
		ux.Title(fmt.Sprintf("Thread (%d posts)", len(s.Posts)))
		for i, post := range s.Posts {
			fmt.Printf("%s %d. %s\n", string(ux.IconBullet), i+1, post)
		}
		if len(s.Hashtags) > 0 {
			ux.Muted(strings.Join(s.Hashtags, " "))
		}

	case result.Code != nil:
		c := result.Code
		title := c.Name + " (" + c.Language + ")"
		body := fmt.Sprintf("%d files, %d fix iterations", len(c.Files), c.Iterations)
		if c.Critique != nil {
			body += fmt.Sprintf(", review score %d/100", c.Critique.Overall)
		}
		ux.Box(title, body)
		for _, f := range c.Files {
			fmt.Printf("%s %s\n", string(ux.IconBullet), f.Path)
		}
	}
}
