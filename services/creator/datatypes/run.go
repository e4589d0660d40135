// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

import (
	"time"

	"github.com/google/uuid"
)

// RunStatus tracks a pipeline run through its lifecycle.
type RunStatus string

const (
	RunPending    RunStatus = "pending"
	RunPlanning   RunStatus = "planning"
	RunGenerating RunStatus = "generating"
	RunReviewing  RunStatus = "reviewing"
	RunFixing     RunStatus = "fixing"
	RunPublishing RunStatus = "publishing"
	RunSucceeded  RunStatus = "succeeded"
	RunFailed     RunStatus = "failed"
)

// Terminal reports whether the status is final.
func (s RunStatus) Terminal() bool {
	return s == RunSucceeded || s == RunFailed
}

// ProgressEvent is one streamed update during a run. Events are pushed to
// websocket subscribers and appended to the run record.
type ProgressEvent struct {
	Stage   string    `json:"stage"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Result is the polymorphic output envelope of a run. Exactly one of the
// content fields is set, matching Type.
type Result struct {
	Type   ContentType   `json:"type"`
	Blog   *BlogPost     `json:"blog,omitempty"`
	Social *SocialThread `json:"social,omitempty"`
	Code   *CodeProject  `json:"code,omitempty"`
}

// PublishReceipt records where a run's output landed.
type PublishReceipt struct {
	Target  string `json:"target"`
	URL     string `json:"url,omitempty"`
	DryRun  bool   `json:"dry_run"`
	Details string `json:"details,omitempty"`
}

// Run is the persisted record of one trip through the pipeline.
type Run struct {
	ID        string           `json:"id"`
	IdeaID    string           `json:"idea_id"`
	UserID    string           `json:"user_id"`
	Type      ContentType      `json:"type,omitempty"`
	Status    RunStatus        `json:"status"`
	Events    []ProgressEvent  `json:"events,omitempty"`
	Result    *Result          `json:"result,omitempty"`
	Receipts  []PublishReceipt `json:"receipts,omitempty"`
	Error     string           `json:"error,omitempty"`
	StartedAt time.Time        `json:"started_at"`
	EndedAt   time.Time        `json:"ended_at,omitzero"`
}

// NewRun builds a pending Run for an idea.
func NewRun(idea Idea) *Run {
	return &Run{
		ID:        uuid.NewString(),
		IdeaID:    idea.ID,
		UserID:    idea.UserID,
		Status:    RunPending,
		StartedAt: time.Now().UTC(),
	}
}

// Record appends a progress event and returns it for broadcasting.
func (r *Run) Record(stage, message string) ProgressEvent {
	ev := ProgressEvent{Stage: stage, Message: message, At: time.Now().UTC()}
	r.Events = append(r.Events, ev)
	return ev
}

// Finish marks the run terminal. An empty errMsg means success.
func (r *Run) Finish(errMsg string) {
	r.EndedAt = time.Now().UTC()
	if errMsg != "" {
		r.Status = RunFailed
		r.Error = errMsg
		return
	}
	r.Status = RunSucceeded
}
