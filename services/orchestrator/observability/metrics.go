// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for the pipeline.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace  = "aleutian_create"
	pipelineSubsystem = "pipeline"
)

// Metrics holds the pipeline's Prometheus collectors.
//
// Thread Safety: safe for concurrent use; Prometheus collectors are
// internally synchronized.
type Metrics struct {
	// RunsTotal counts completed runs by creator and terminal status.
	RunsTotal *prometheus.CounterVec

	// StageSeconds observes per-stage latency by creator and stage.
	StageSeconds *prometheus.HistogramVec

	// LLMCallsTotal counts provider calls by provider and outcome.
	LLMCallsTotal *prometheus.CounterVec

	// ActiveRuns tracks in-flight runs by creator.
	ActiveRuns *prometheus.GaugeVec

	// PublishTotal counts publish attempts by target and outcome.
	PublishTotal *prometheus.CounterVec
}

// DefaultMetrics is the instance InitMetrics creates.
var DefaultMetrics *Metrics

// InitMetrics registers all collectors on the default registry. Call once
// at startup; a second call panics on duplicate registration.
func InitMetrics() *Metrics {
	DefaultMetrics = &Metrics{
		RunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "runs_total",
				Help:      "Completed pipeline runs by creator and status",
			},
			[]string{"creator", "status"},
		),

		StageSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "stage_seconds",
				Help:      "Stage latency in seconds by creator and stage",
				Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"creator", "stage"},
		),

		LLMCallsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "llm_calls_total",
				Help:      "LLM provider calls by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),

		ActiveRuns: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "active_runs",
				Help:      "Currently executing runs by creator",
			},
			[]string{"creator"},
		),

		PublishTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: pipelineSubsystem,
				Name:      "publish_total",
				Help:      "Publish attempts by target and outcome",
			},
			[]string{"target", "outcome"},
		),
	}
	return DefaultMetrics
}

// ObserveStage records one stage duration. No-op on a nil receiver so
// callers never need nil checks.
func (m *Metrics) ObserveStage(creator, stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageSeconds.WithLabelValues(creator, stage).Observe(d.Seconds())
}

// RunFinished records a terminal run.
func (m *Metrics) RunFinished(creator, status string) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(creator, status).Inc()
}

// RunStarted and RunEnded bracket the active gauge.
func (m *Metrics) RunStarted(creator string) {
	if m == nil {
		return
	}
	m.ActiveRuns.WithLabelValues(creator).Inc()
}

// RunEnded decrements the active gauge.
func (m *Metrics) RunEnded(creator string) {
	if m == nil {
		return
	}
	m.ActiveRuns.WithLabelValues(creator).Dec()
}

// LLMCall records one provider call outcome ("ok" or "error").
func (m *Metrics) LLMCall(provider, outcome string) {
	if m == nil {
		return
	}
	m.LLMCallsTotal.WithLabelValues(provider, outcome).Inc()
}

// Published records a publish attempt outcome.
func (m *Metrics) Published(target, outcome string) {
	if m == nil {
		return
	}
	m.PublishTotal.WithLabelValues(target, outcome).Inc()
}
