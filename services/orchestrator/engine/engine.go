// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package engine executes pipeline runs: route the idea, drive the
// matching creator, publish code output, and stream progress to
// subscribers.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/AleutianAI/AleutianCreate/services/creator"
	"github.com/AleutianAI/AleutianCreate/services/creator/blog"
	"github.com/AleutianAI/AleutianCreate/services/creator/code"
	"github.com/AleutianAI/AleutianCreate/services/creator/datatypes"
	"github.com/AleutianAI/AleutianCreate/services/creator/social"
	"github.com/AleutianAI/AleutianCreate/services/orchestrator/observability"
	"github.com/AleutianAI/AleutianCreate/services/publish"
	"github.com/AleutianAI/AleutianCreate/services/store"
)

// RunTimeout bounds a full pipeline run.
const RunTimeout = 15 * time.Minute

// Creators bundles the three content pipelines.
type Creators struct {
	Blog   *blog.Creator
	Social *social.Creator
	Code   *code.Pipeline
}

// Engine owns run execution and progress fan-out.
//
// Thread Safety: safe for concurrent use.
type Engine struct {
	store     *store.Store
	router    *creator.Router
	creators  Creators
	publisher *publish.GitHubPublisher
	archiver  *publish.Archiver
	metrics   *observability.Metrics
	logger    *slog.Logger

	mu     sync.RWMutex
	active map[string]*datatypes.Run
	subs   map[string][]chan datatypes.ProgressEvent
}

// New builds an Engine. publisher, archiver, and metrics may be nil.
func New(st *store.Store, router *creator.Router, creators Creators,
	publisher *publish.GitHubPublisher, archiver *publish.Archiver,
	metrics *observability.Metrics, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:     st,
		router:    router,
		creators:  creators,
		publisher: publisher,
		archiver:  archiver,
		metrics:   metrics,
		logger:    logger,
		active:    map[string]*datatypes.Run{},
		subs:      map[string][]chan datatypes.ProgressEvent{},
	}
}

// StartRun launches a run for the idea and returns immediately. Progress
// streams to Subscribe channels; the terminal record lands in the store.
func (e *Engine) StartRun(idea datatypes.Idea) *datatypes.Run {
	run := datatypes.NewRun(idea)

	e.mu.Lock()
	e.active[run.ID] = run
	e.mu.Unlock()

	if err := e.store.PutRun(run); err != nil {
		e.logger.Error("persist run failed", "run_id", run.ID, "error", err.Error())
	}

	go e.execute(run, idea)
	return run
}

// Run returns the run record, preferring the live copy over the store.
// Live runs are snapshotted so callers never race the executing
// goroutine.
func (e *Engine) Run(id string) (*datatypes.Run, error) {
	e.mu.RLock()
	if run, ok := e.active[id]; ok {
		cp := *run
		cp.Events = append([]datatypes.ProgressEvent(nil), run.Events...)
		cp.Receipts = append([]datatypes.PublishReceipt(nil), run.Receipts...)
		e.mu.RUnlock()
		return &cp, nil
	}
	e.mu.RUnlock()
	return e.store.GetRun(id)
}

// Subscribe returns a channel of progress events for a run and a cancel
// func. The channel closes when the run finishes or cancel is called.
func (e *Engine) Subscribe(runID string) (<-chan datatypes.ProgressEvent, func()) {
	ch := make(chan datatypes.ProgressEvent, 64)

	e.mu.Lock()
	_, live := e.active[runID]
	if live {
		e.subs[runID] = append(e.subs[runID], ch)
	} else {
		close(ch) // already terminal, nothing to stream
	}
	e.mu.Unlock()

	cancel := func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		chans := e.subs[runID]
		for i, c := range chans {
			if c == ch {
				e.subs[runID] = append(chans[:i], chans[i+1:]...)
				close(ch)
				return
			}
		}
	}
	return ch, cancel
}

func (e *Engine) execute(run *datatypes.Run, idea datatypes.Idea) {
	ctx, cancel := context.WithTimeout(context.Background(), RunTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("run panicked", "run_id", run.ID, "panic", fmt.Sprint(r))
			e.finish(run, fmt.Sprintf("internal error: %v", r))
		}
	}()

	contentType := e.router.Route(ctx, idea)
	e.mu.Lock()
	run.Type = contentType
	e.mu.Unlock()
	e.metrics.RunStarted(string(contentType))
	defer e.metrics.RunEnded(string(contentType))

	notify := e.progressFunc(run, string(contentType))

	result := &datatypes.Result{Type: contentType}
	var err error
	switch contentType {
	case datatypes.ContentBlog:
		result.Blog, err = e.creators.Blog.Create(ctx, idea, blog.Progress(notify))
	case datatypes.ContentSocial:
		result.Social, err = e.creators.Social.Create(ctx, idea, social.Progress(notify))
	case datatypes.ContentCode:
		result.Code, err = e.creators.Code.Run(ctx, idea, code.Progress(notify))
	default:
		err = fmt.Errorf("unroutable content type %q", contentType)
	}
	if err != nil {
		e.finish(run, err.Error())
		return
	}
	e.mu.Lock()
	run.Result = result
	e.mu.Unlock()

	if contentType == datatypes.ContentCode && result.Code != nil {
		e.publishCode(ctx, run, result.Code, notify)
	}

	e.finish(run, "")
}

// publishCode pushes the project to GitHub (or dry-runs) and archives the
// bundle. Publish failures are recorded on the run but do not fail it;
// the generated content is still the primary artifact.
func (e *Engine) publishCode(ctx context.Context, run *datatypes.Run, project *datatypes.CodeProject, notify func(string, string)) {
	if e.publisher != nil {
		notify("publishing", "publishing to GitHub")
		receipt, err := e.publisher.Publish(ctx, project)
		e.mu.Lock()
		if err != nil {
			run.Record("publishing", "GitHub publish failed: "+err.Error())
		} else {
			run.Receipts = append(run.Receipts, *receipt)
		}
		e.mu.Unlock()
		if err != nil {
			e.metrics.Published("github", "error")
			e.logger.Warn("GitHub publish failed", "run_id", run.ID, "error", err.Error())
		} else {
			e.metrics.Published("github", "ok")
		}
	}

	if e.archiver != nil {
		url, err := e.archiver.Archive(ctx, run.ID, project)
		if err != nil {
			e.metrics.Published("gcs", "error")
			e.logger.Warn("artifact archive failed", "run_id", run.ID, "error", err.Error())
			return
		}
		e.metrics.Published("gcs", "ok")
		e.mu.Lock()
		run.Receipts = append(run.Receipts, datatypes.PublishReceipt{Target: "gcs", URL: url})
		e.mu.Unlock()
	}
}

// progressFunc returns the notify callback creators call per stage. It
// updates run status, records the event, observes stage latency, and fans
// out to subscribers.
func (e *Engine) progressFunc(run *datatypes.Run, creatorName string) func(stage, message string) {
	var (
		mu        sync.Mutex
		lastStage string
		stageAt   = time.Now()
	)
	return func(stage, message string) {
		mu.Lock()
		if lastStage != "" && stage != lastStage {
			e.metrics.ObserveStage(creatorName, lastStage, time.Since(stageAt))
			stageAt = time.Now()
		}
		lastStage = stage
		mu.Unlock()

		e.mu.Lock()
		run.Status = statusForStage(stage)
		ev := run.Record(stage, message)
		chans := append([]chan datatypes.ProgressEvent(nil), e.subs[run.ID]...)
		e.mu.Unlock()

		for _, ch := range chans {
			select {
			case ch <- ev:
			default: // slow subscriber, drop rather than stall the run
			}
		}
	}
}

func statusForStage(stage string) datatypes.RunStatus {
	switch stage {
	case "planning":
		return datatypes.RunPlanning
	case "generating":
		return datatypes.RunGenerating
	case "reviewing":
		return datatypes.RunReviewing
	case "fixing":
		return datatypes.RunFixing
	case "publishing":
		return datatypes.RunPublishing
	default:
		return datatypes.RunGenerating
	}
}

// finish marks the run terminal, persists it, closes subscriber channels,
// and drops it from the active set.
func (e *Engine) finish(run *datatypes.Run, errMsg string) {
	e.mu.Lock()
	run.Finish(errMsg)
	chans := e.subs[run.ID]
	delete(e.subs, run.ID)
	delete(e.active, run.ID)
	e.mu.Unlock()

	for _, ch := range chans {
		close(ch)
	}

	if err := e.store.PutRun(run); err != nil {
		e.logger.Error("persist terminal run failed", "run_id", run.ID, "error", err.Error())
	}
	e.metrics.RunFinished(string(run.Type), string(run.Status))
	e.logger.Info("run finished", "run_id", run.ID, "type", run.Type,
		"status", run.Status, "error", run.Error)
}
