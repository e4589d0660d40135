// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers implements the orchestrator's HTTP handlers.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianCreate/pkg/schema"
	"github.com/AleutianAI/AleutianCreate/services/creator/datatypes"
	"github.com/AleutianAI/AleutianCreate/services/orchestrator/engine"
	"github.com/AleutianAI/AleutianCreate/services/orchestrator/middleware"
	"github.com/AleutianAI/AleutianCreate/services/store"
)

// createIdeaRequest is the POST /v1/ideas payload.
type createIdeaRequest struct {
	Text     string `json:"text" validate:"required,min=3,max=2000"`
	Audience string `json:"audience" validate:"max=200"`
	Tone     string `json:"tone" validate:"max=100"`
}

// CreateIdea stores a new idea for the authenticated user.
func CreateIdea(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createIdeaRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
			return
		}
		if err := schema.Validate(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		idea := datatypes.NewIdea(middleware.UserID(c), req.Text)
		idea.Audience = req.Audience
		idea.Tone = req.Tone

		if err := st.PutIdea(idea); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store idea"})
			return
		}
		c.JSON(http.StatusCreated, idea)
	}
}

// ListIdeas returns the authenticated user's ideas.
func ListIdeas(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ideas, err := st.ListIdeas(middleware.UserID(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list ideas"})
			return
		}
		if ideas == nil {
			ideas = []datatypes.Idea{}
		}
		c.JSON(http.StatusOK, gin.H{"ideas": ideas})
	}
}

// GetIdea returns one idea by ID.
func GetIdea(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		idea, err := st.GetIdea(middleware.UserID(c), c.Param("id"))
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "idea not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load idea"})
			return
		}
		c.JSON(http.StatusOK, idea)
	}
}

// GenerateFromIdea starts a pipeline run for an existing idea and returns
// 202 with the run ID.
func GenerateFromIdea(st *store.Store, eng *engine.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		idea, err := st.GetIdea(middleware.UserID(c), c.Param("id"))
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "idea not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load idea"})
			return
		}

		run := eng.StartRun(idea)
		c.JSON(http.StatusAccepted, gin.H{
			"run_id": run.ID,
			"status": run.Status,
		})
	}
}
