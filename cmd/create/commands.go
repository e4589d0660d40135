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
	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianCreate/pkg/ux"
)

// Set at build time via -ldflags "-X main.version=...".
var version = "dev"

// --- Global Command Variables ---
var (
	serverURL        string
	audience         string
	tone             string
	noWait           bool
	personalityLevel string // UX personality level (full/standard/minimal/machine)

	rootCmd = &cobra.Command{
		Use:   "create",
		Short: "A cli for the Aleutian content creation pipeline",
		Long: `Create turns a one-line idea into a finished blog post, social
thread, or working code project, reviewed and published for you.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if personalityLevel != "" {
				ux.SetPersonalityLevel(ux.ParsePersonalityLevel(personalityLevel))
			} else {
				ux.InitPersonality()
			}
		},
	}

	// --- Generation ---
	generateCmd = &cobra.Command{
		Use:     "generate [idea]",
		Short:   "Generate content from an idea and watch it happen",
		Aliases: []string{"g"},
		Run:     runGenerate, // Defined in cmd_generate.go
	}

	// --- Ideas ---
	ideasCmd = &cobra.Command{
		Use:   "ideas",
		Short: "Manage saved ideas",
	}
	ideasListCmd = &cobra.Command{
		Use:   "list",
		Short: "List your saved ideas",
		Run:   runIdeasList, // Defined in cmd_ideas.go
	}
	ideasShowCmd = &cobra.Command{
		Use:   "show [idea_id]",
		Short: "Show a saved idea",
		Args:  cobra.ExactArgs(1),
		Run:   runIdeasShow, // Defined in cmd_ideas.go
	}

	// --- Runs ---
	runCmd = &cobra.Command{
		Use:   "run [run_id]",
		Short: "Show the status and results of a pipeline run",
		Args:  cobra.ExactArgs(1),
		Run:   runShowRun, // Defined in cmd_run.go
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the cli version",
		Run: func(cmd *cobra.Command, args []string) {
			ux.Info("create " + version)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "",
		"Orchestrator base URL (defaults to $CREATE_SERVER or http://localhost:12310)")
	rootCmd.PersistentFlags().StringVar(&personalityLevel, "personality", "",
		"Output personality: full, standard, minimal, machine")

	generateCmd.Flags().StringVar(&audience, "audience", "", "Who the content is for")
	generateCmd.Flags().StringVar(&tone, "tone", "", "Tone of voice for the content")
	generateCmd.Flags().BoolVar(&noWait, "no-wait", false,
		"Start the run and print its ID without waiting for completion")

	runCmd.Flags().Bool("follow", false, "Stream progress until the run finishes")

	ideasCmd.AddCommand(ideasListCmd)
	ideasCmd.AddCommand(ideasShowCmd)

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(ideasCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}
