// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/AleutianCreate/pkg/extensions"
	"github.com/AleutianAI/AleutianCreate/services/orchestrator/engine"
	"github.com/AleutianAI/AleutianCreate/services/orchestrator/handlers"
	"github.com/AleutianAI/AleutianCreate/services/orchestrator/middleware"
	"github.com/AleutianAI/AleutianCreate/services/store"
)

// SetupRoutes registers the orchestrator's endpoints.
func SetupRoutes(router *gin.Engine, st *store.Store, eng *engine.Engine,
	auth extensions.AuthProvider, logger *slog.Logger) {

	router.GET("/healthz", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/v1")
	v1.Use(middleware.AuthMiddleware(auth))
	{
		ideas := v1.Group("/ideas")
		{
			ideas.POST("", handlers.CreateIdea(st))
			ideas.GET("", handlers.ListIdeas(st))
			ideas.GET("/:id", handlers.GetIdea(st))
			ideas.POST("/:id/generate", handlers.GenerateFromIdea(st, eng))
		}

		runs := v1.Group("/runs")
		{
			runs.GET("/:id", handlers.GetRun(eng))
			runs.GET("/:id/events", handlers.RunEvents(eng, logger))
		}
	}
}
