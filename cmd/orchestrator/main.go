// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// The orchestrator serves the content pipeline over HTTP: idea intake,
// run execution, progress websockets, and Prometheus metrics.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/AleutianAI/AleutianCreate/pkg/config"
	"github.com/AleutianAI/AleutianCreate/pkg/extensions"
	"github.com/AleutianAI/AleutianCreate/pkg/logging"
	"github.com/AleutianAI/AleutianCreate/services/creator"
	"github.com/AleutianAI/AleutianCreate/services/creator/blog"
	"github.com/AleutianAI/AleutianCreate/services/creator/code"
	"github.com/AleutianAI/AleutianCreate/services/creator/prompt"
	"github.com/AleutianAI/AleutianCreate/services/creator/social"
	"github.com/AleutianAI/AleutianCreate/services/imagegen"
	"github.com/AleutianAI/AleutianCreate/services/llm"
	"github.com/AleutianAI/AleutianCreate/services/orchestrator/engine"
	"github.com/AleutianAI/AleutianCreate/services/orchestrator/observability"
	"github.com/AleutianAI/AleutianCreate/services/orchestrator/routes"
	"github.com/AleutianAI/AleutianCreate/services/publish"
	"github.com/AleutianAI/AleutianCreate/services/store"
)

const serviceName = "create-orchestrator"

// initTracer wires the OTLP gRPC exporter when an endpoint is
// configured. Returns a no-op cleanup when tracing is disabled.
func initTracer(ctx context.Context, endpoint string, logger *slog.Logger) (func(context.Context), error) {
	if endpoint == "" {
		return func(context.Context) {}, nil
	}

	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String(serviceName)))
	if err != nil {
		return nil, err
	}

	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(sdktrace.NewBatchSpanProcessor(traceExporter)))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			logger.Error("failed to shutdown OTLP exporter", "error", err.Error())
		}
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err.Error())
		os.Exit(1)
	}

	logger := logging.New(logging.Config{
		Service: serviceName,
		LogDir:  cfg.LogDir,
		JSON:    true,
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	ctx := context.Background()
	cleanup, err := initTracer(ctx, cfg.Server.OTLPEndpoint, logger.Slog())
	if err != nil {
		logger.Slog().Error("OTLP tracer setup failed", "error", err.Error())
		os.Exit(1)
	}
	defer cleanup(ctx)

	metrics := observability.InitMetrics()

	client, err := llm.NewFromConfig(ctx, cfg.LLM, logger.Slog())
	if err != nil {
		logger.Slog().Error("LLM client setup failed", "error", err.Error())
		os.Exit(1)
	}
	client = observability.InstrumentClient(client, metrics)

	tiers, err := llm.NewRouter(cfg.LLM.Tiers, logger.Slog())
	if err != nil {
		logger.Slog().Error("model tier config invalid", "error", err.Error())
		os.Exit(1)
	}

	prompts, err := prompt.NewStore(cfg.PromptDir, logger.Slog())
	if err != nil {
		logger.Slog().Error("prompt store setup failed", "error", err.Error())
		os.Exit(1)
	}
	if err := prompts.Watch(); err != nil {
		logger.Slog().Warn("prompt hot reload unavailable", "error", err.Error())
	}
	defer prompts.Close()

	var cipher *store.Cipher
	if c, err := store.NewCipher(); err != nil {
		logger.Slog().Warn("credential cipher unavailable", "error", err.Error())
	} else {
		cipher = c
	}

	st, err := store.Open(cfg.Store.Path, cipher, logger.Slog())
	if err != nil {
		logger.Slog().Error("store open failed", "error", err.Error())
		os.Exit(1)
	}
	defer st.Close()

	images := imagegen.NewFanOut(cfg.Images, logger.Slog())
	publisher := publish.NewGitHubPublisher(cfg.Publish, logger.Slog())

	var archiver *publish.Archiver
	if cfg.Publish.GCSBucket != "" {
		archiver, err = publish.NewArchiver(ctx, cfg.Publish.GCSBucket, logger.Slog())
		if err != nil {
			logger.Slog().Warn("artifact archive unavailable", "error", err.Error())
			archiver = nil
		} else {
			defer archiver.Close()
		}
	}

	eng := engine.New(st,
		creator.NewRouter(client, prompts, logger.Slog()),
		engine.Creators{
			Blog: blog.NewCreator(client, prompts, images, logger.Slog(),
				blog.WithQualityGate(cfg.Pipeline.QualityGate)),
			Social: social.NewCreator(client, prompts, logger.Slog(),
				social.WithQualityGate(cfg.Pipeline.QualityGate),
				social.WithMaxPostChars(cfg.Pipeline.MaxPostChars)),
			Code: code.NewPipeline(client, tiers, prompts, code.FixWholeFile, logger.Slog(),
				code.WithLimits(cfg.Pipeline.MaxFixIterations, cfg.Pipeline.QualityGate, cfg.Pipeline.RegenerateBelow)),
		},
		publisher, archiver, metrics, logger.Slog())

	var auth extensions.AuthProvider = &extensions.NopAuthProvider{}
	if cfg.Server.AuthToken != "" {
		auth, err = extensions.NewStaticTokenProvider(cfg.Server.AuthToken)
		if err != nil {
			logger.Slog().Error("auth setup failed", "error", err.Error())
			os.Exit(1)
		}
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	routes.SetupRoutes(router, st, eng, auth, logger.Slog())

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Slog().Info("orchestrator listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Slog().Error("server failed", "error", err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Slog().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Slog().Error("graceful shutdown failed", "error", err.Error())
	}
}
