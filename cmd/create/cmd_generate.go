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
	"context"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianCreate/pkg/ux"
	"github.com/AleutianAI/AleutianCreate/services/creator/datatypes"
)

// Covers the slowest code runs, which iterate through fix cycles.
const followTimeout = 20 * time.Minute

func runGenerate(cmd *cobra.Command, args []string) {
	ideaText := strings.TrimSpace(strings.Join(args, " "))
	if ideaText == "" {
		if !ux.IsInteractive() {
			ux.Error("an idea is required when not running interactively")
			os.Exit(1)
		}
		var err error
		ideaText, err = promptForIdea()
		if err != nil {
			ux.Error(err.Error())
			os.Exit(1)
		}
	}

	client := newClient()
	idea, err := client.CreateIdea(ideaText, audience, tone)
	if err != nil {
		ux.Error("Failed to save the idea: " + err.Error())
		os.Exit(1)
	}
	ux.Success("Idea saved (" + idea.ID + ")")

	runID, err := client.StartRun(idea.ID)
	if err != nil {
		ux.Error("Failed to start the run: " + err.Error())
		os.Exit(1)
	}

	if noWait {
		ux.Info("Run started: " + runID)
		ux.Muted("Check on it with: create run " + runID)
		return
	}

	run := followRun(client, runID)
	printRun(run)
	if run.Status == datatypes.RunFailed {
		os.Exit(1)
	}
}

// promptForIdea collects the idea interactively when none was given on
// the command line. Audience and tone answers override the flags.
func promptForIdea() (string, error) {
	var ideaText string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("What should we create?").
				Description("Describe the blog post, social thread, or code project you want.").
				CharLimit(2000).
				Value(&ideaText),
			huh.NewInput().
				Title("Audience").
				Description("Who is this for? Leave blank for a general audience.").
				Value(&audience),
			huh.NewSelect[string]().
				Title("Tone").
				Options(
					huh.NewOption("No preference", ""),
					huh.NewOption("Casual", "casual"),
					huh.NewOption("Professional", "professional"),
					huh.NewOption("Playful", "playful"),
					huh.NewOption("Technical", "technical"),
				).
				Value(&tone),
		),
	)

	if err := form.Run(); err != nil {
		return "", err
	}
	return strings.TrimSpace(ideaText), nil
}

// followRun streams progress over the events websocket, falling back to
// polling when the socket cannot be established.
func followRun(client *apiClient, runID string) *datatypes.Run {
	ctx, cancel := context.WithTimeout(context.Background(), followTimeout)
	defer cancel()

	onEvent := func(ev datatypes.ProgressEvent) {
		ux.Stage(ev.Stage, ev.Message)
	}

	run, err := client.StreamRun(ctx, runID, onEvent)
	if err != nil {
		ux.Muted("Live events unavailable, polling instead.")
		run, err = client.PollRun(ctx, runID, onEvent)
	}
	if err != nil {
		ux.Error("Lost track of run " + runID + ": " + err.Error())
		os.Exit(1)
	}
	return run
}
