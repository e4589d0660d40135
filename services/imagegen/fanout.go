// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package imagegen

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianCreate/pkg/config"
)

// FanOut generates image candidates across multiple backends concurrently.
//
// Thread Safety: safe for concurrent use after construction.
type FanOut struct {
	clients []Client
	logger  *slog.Logger
}

// NewFanOut wires the configured backends. Backends whose credentials are
// missing are skipped with a warning rather than failing startup; image
// generation degrades gracefully when no backend is available.
func NewFanOut(cfg config.ImageConfig, logger *slog.Logger) *FanOut {
	if logger == nil {
		logger = slog.Default()
	}

	poll := PollSettings{Interval: cfg.PollInterval, Timeout: cfg.PollTimeout}
	if poll.Interval <= 0 || poll.Timeout <= 0 {
		poll = DefaultPollSettings()
	}

	var clients []Client
	for _, name := range cfg.Backends {
		var (
			client Client
			err    error
		)
		switch name {
		case BackendFal:
			client, err = NewFalClient(poll)
		case BackendReplicate:
			client, err = NewReplicateClient(poll)
		case BackendHuggingFace:
			client, err = NewHuggingFaceClient()
		case BackendGemini:
			client, err = NewGeminiImageClient()
		default:
			logger.Warn("unknown image backend in config, skipping", "backend", name)
			continue
		}
		if err != nil {
			logger.Warn("image backend unavailable", "backend", name, "error", err.Error())
			continue
		}
		clients = append(clients, client)
	}

	return &FanOut{clients: clients, logger: logger}
}

// NewFanOutWithClients builds a FanOut over explicit clients. Used by tests
// and by callers that manage credentials themselves.
func NewFanOutWithClients(logger *slog.Logger, clients ...Client) *FanOut {
	if logger == nil {
		logger = slog.Default()
	}
	return &FanOut{clients: clients, logger: logger}
}

// Available reports whether any backend is wired.
func (f *FanOut) Available() bool { return len(f.clients) > 0 }

// Generate runs the request against every wired backend concurrently and
// returns all successes. An error is returned only when every backend
// fails; callers treat an empty result as "proceed without images".
func (f *FanOut) Generate(ctx context.Context, req Request) ([]*Image, error) {
	if len(f.clients) == 0 {
		return nil, nil
	}

	results := make([]*Image, len(f.clients))
	g, gctx := errgroup.WithContext(ctx)

	for i, client := range f.clients {
		g.Go(func() error {
			img, err := client.GenerateImage(gctx, req)
			if err != nil {
				// Individual backend failures degrade, not abort.
				f.logger.Warn("image backend failed",
					"backend", client.Name(), "error", err.Error())
				return nil
			}
			results[i] = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var images []*Image
	for _, img := range results {
		if img != nil {
			images = append(images, img)
		}
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("all %d image backends failed", len(f.clients))
	}
	return images, nil
}

// First returns the first successful image in backend preference order, or
// nil when generation failed everywhere.
func (f *FanOut) First(ctx context.Context, req Request) *Image {
	images, err := f.Generate(ctx, req)
	if err != nil || len(images) == 0 {
		return nil
	}
	return images[0]
}
