// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package publish pushes finished code projects to GitHub and archives
// generation artifacts.
package publish

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/AleutianAI/AleutianCreate/pkg/config"
	"github.com/AleutianAI/AleutianCreate/services/creator/datatypes"
)

// GitHubPublisher creates a repository and uploads project files through
// the contents API. Without a token it runs in dry-run mode: every
// operation is logged and reported, nothing leaves the process.
//
// Thread Safety: safe for concurrent use; the rate limiter serializes
// upload pacing across goroutines.
type GitHubPublisher struct {
	httpClient *http.Client
	baseURL    string
	token      string
	owner      string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewGitHubPublisher builds a publisher from config. The token resolves
// from GITHUB_TOKEN or the mounted github_token secret; a missing token
// selects dry-run mode rather than failing.
func NewGitHubPublisher(cfg config.PublishConfig, logger *slog.Logger) *GitHubPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	perSecond := cfg.UploadsPerSecond
	if perSecond <= 0 {
		perSecond = 0.5
	}
	token := config.ResolveSecret("GITHUB_TOKEN", "github_token")
	if token == "" {
		logger.Info("no GitHub token resolved, publisher running in dry-run mode")
	}
	return &GitHubPublisher{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://api.github.com",
		token:      token,
		owner:      cfg.Owner,
		limiter:    rate.NewLimiter(rate.Limit(perSecond), 1),
		logger:     logger,
	}
}

// DryRun reports whether the publisher will simulate instead of push.
func (g *GitHubPublisher) DryRun() bool { return g.token == "" }

// Publish creates the repository and uploads every file plus the README.
func (g *GitHubPublisher) Publish(ctx context.Context, project *datatypes.CodeProject) (*datatypes.PublishReceipt, error) {
	repo := Slugify(project.Name)
	files := uploadSet(project)

	if g.DryRun() {
		var b strings.Builder
		fmt.Fprintf(&b, "would create repo %s/%s and upload %d files:", g.owner, repo, len(files))
		for _, f := range files {
			fmt.Fprintf(&b, " %s", f.Path)
			g.logger.Info("dry-run: would upload file", "repo", repo, "path", f.Path,
				"bytes", len(f.Contents))
		}
		return &datatypes.PublishReceipt{
			Target:  "github",
			DryRun:  true,
			Details: b.String(),
		}, nil
	}

	htmlURL, err := g.createRepo(ctx, repo, firstLine(project.Readme))
	if err != nil {
		return nil, err
	}

	for _, f := range files {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		if err := g.uploadFile(ctx, repo, f); err != nil {
			return nil, fmt.Errorf("upload %s: %w", f.Path, err)
		}
		g.logger.Info("uploaded file", "repo", repo, "path", f.Path)
	}

	return &datatypes.PublishReceipt{
		Target:  "github",
		URL:     htmlURL,
		Details: fmt.Sprintf("uploaded %d files", len(files)),
	}, nil
}

func (g *GitHubPublisher) createRepo(ctx context.Context, name, description string) (string, error) {
	payload, _ := json.Marshal(map[string]any{
		"name":        name,
		"description": description,
		"private":     false,
		"auto_init":   false,
	})
	status, body, err := g.do(ctx, "POST", g.baseURL+"/user/repos", payload)
	if err != nil {
		return "", err
	}
	if status != http.StatusCreated {
		return "", fmt.Errorf("create repo returned status %d: %s", status, body)
	}
	var created struct {
		HTMLURL string `json:"html_url"`
	}
	if err := json.Unmarshal([]byte(body), &created); err != nil {
		return "", fmt.Errorf("parse create repo response: %w", err)
	}
	return created.HTMLURL, nil
}

func (g *GitHubPublisher) uploadFile(ctx context.Context, repo string, f datatypes.GeneratedFile) error {
	payload, _ := json.Marshal(map[string]string{
		"message": "Add " + f.Path,
		"content": base64.StdEncoding.EncodeToString([]byte(f.Contents)),
	})
	url := fmt.Sprintf("%s/repos/%s/%s/contents/%s", g.baseURL, g.owner, repo, f.Path)
	status, body, err := g.do(ctx, "PUT", url, payload)
	if err != nil {
		return err
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return fmt.Errorf("contents API returned status %d: %s", status, body)
	}
	return nil
}

func (g *GitHubPublisher) do(ctx context.Context, method, url string, payload []byte) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("github request failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body), nil
}

// uploadSet is the README followed by project files, skipping any
// generated README duplicate.
func uploadSet(project *datatypes.CodeProject) []datatypes.GeneratedFile {
	var files []datatypes.GeneratedFile
	if project.Readme != "" && project.File("README.md") == nil {
		files = append(files, datatypes.GeneratedFile{Path: "README.md", Contents: project.Readme})
	}
	return append(files, project.Files...)
}

var slugRe = regexp.MustCompile(`[^a-z0-9-]+`)

// Slugify turns a project name into a valid repository name.
func Slugify(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	s = slugRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	if s == "" {
		s = "generated-project"
	}
	return s
}

func firstLine(s string) string {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
