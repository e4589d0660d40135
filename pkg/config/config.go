// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads pipeline configuration from YAML with environment
// overrides.
//
// Resolution order (later wins):
//
//  1. Built-in defaults
//  2. YAML file (CREATE_CONFIG or ~/.aleutian-create/config.yaml)
//  3. Environment variables
//
// Provider API keys are never stored in the YAML file. They resolve from
// environment variables or secret files under /run/secrets, matching how the
// deployment mounts credentials.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level pipeline configuration.
type Config struct {
	// Server configures the orchestrator HTTP service.
	Server ServerConfig `yaml:"server"`

	// LLM configures provider selection and model tiers.
	LLM LLMConfig `yaml:"llm"`

	// Images configures image generation backends.
	Images ImageConfig `yaml:"images"`

	// Publish configures the GitHub publisher and artifact archive.
	Publish PublishConfig `yaml:"publish"`

	// Store configures the embedded datastore.
	Store StoreConfig `yaml:"store"`

	// Pipeline configures creator behavior.
	Pipeline PipelineConfig `yaml:"pipeline"`

	// LogDir enables file logging when set.
	LogDir string `yaml:"log_dir"`

	// PromptDir is an optional directory of prompt template overrides,
	// hot-reloaded at runtime.
	PromptDir string `yaml:"prompt_dir"`
}

// ServerConfig configures the orchestrator HTTP service.
type ServerConfig struct {
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	AuthToken    string        `yaml:"-"` // env only, never from file
	OTLPEndpoint string        `yaml:"otlp_endpoint"`
}

// LLMConfig configures provider selection and model tiers.
type LLMConfig struct {
	// Provider is the default provider: "openai", "anthropic", or "google".
	Provider string `yaml:"provider"`

	// Tiers maps tier names to per-provider model IDs. Missing entries fall
	// back to compiled-in defaults.
	Tiers map[string]map[string]string `yaml:"tiers"`

	// MaxRetries bounds retry attempts per LLM call.
	MaxRetries int `yaml:"max_retries"`

	// RequestTimeout bounds a single provider call.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// ImageConfig configures image generation backends.
type ImageConfig struct {
	// Backends lists enabled backends in preference order:
	// "fal", "replicate", "huggingface", "gemini".
	Backends []string `yaml:"backends"`

	// PollInterval is the status poll interval for queued backends.
	PollInterval time.Duration `yaml:"poll_interval"`

	// PollTimeout bounds total wait for a queued generation.
	PollTimeout time.Duration `yaml:"poll_timeout"`
}

// PublishConfig configures the GitHub publisher and artifact archive.
type PublishConfig struct {
	// Owner is the GitHub account repositories are created under.
	Owner string `yaml:"owner"`

	// UploadsPerSecond limits contents-API calls.
	UploadsPerSecond float64 `yaml:"uploads_per_second"`

	// GCSBucket enables artifact archiving when set.
	GCSBucket string `yaml:"gcs_bucket"`
}

// StoreConfig configures the embedded datastore.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// PipelineConfig configures creator behavior.
type PipelineConfig struct {
	// MaxFixIterations bounds the code critic/fixer loop.
	MaxFixIterations int `yaml:"max_fix_iterations"`

	// QualityGate is the overall score at which iteration stops early.
	QualityGate int `yaml:"quality_gate"`

	// RegenerateBelow forces full regeneration under this overall score.
	RegenerateBelow int `yaml:"regenerate_below"`

	// MaxPostChars is the per-post budget for social threads.
	MaxPostChars int `yaml:"max_post_chars"`
}

// Default returns the compiled-in defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:         "12310",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 10 * time.Minute, // generation runs are long
		},
		LLM: LLMConfig{
			Provider:       "anthropic",
			MaxRetries:     3,
			RequestTimeout: 120 * time.Second,
		},
		Images: ImageConfig{
			Backends:     []string{"fal", "replicate"},
			PollInterval: 2 * time.Second,
			PollTimeout:  3 * time.Minute,
		},
		Publish: PublishConfig{
			UploadsPerSecond: 0.5,
		},
		Store: StoreConfig{
			Path: "~/.aleutian-create/store",
		},
		Pipeline: PipelineConfig{
			MaxFixIterations: 3,
			QualityGate:      80,
			RegenerateBelow:  40,
			MaxPostChars:     280,
		},
	}
}

// Load resolves configuration from defaults, the YAML file, and the
// environment, in that order.
func Load() (Config, error) {
	cfg := Default()

	path := os.Getenv("CREATE_CONFIG")
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".aleutian-create", "config.yaml")
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overlays environment variables onto cfg.
func applyEnv(cfg *Config) {
	if v := os.Getenv("CREATE_PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("CREATE_AUTH_TOKEN"); v != "" {
		cfg.Server.AuthToken = v
	}
	if v := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); v != "" {
		cfg.Server.OTLPEndpoint = v
	}
	if v := os.Getenv("CREATE_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("CREATE_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("CREATE_LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	if v := os.Getenv("CREATE_PROMPT_DIR"); v != "" {
		cfg.PromptDir = v
	}
	if v := os.Getenv("CREATE_GITHUB_OWNER"); v != "" {
		cfg.Publish.Owner = v
	}
	if v := os.Getenv("CREATE_GCS_BUCKET"); v != "" {
		cfg.Publish.GCSBucket = v
	}
	if v := os.Getenv("CREATE_MAX_FIX_ITERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Pipeline.MaxFixIterations = n
		}
	}
	if v := os.Getenv("CREATE_QUALITY_GATE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			cfg.Pipeline.QualityGate = n
		}
	}
}

// ResolveSecret returns the value of envVar, falling back to the content of
// /run/secrets/<secretName>. Returns "" when neither resolves.
//
// This mirrors how deployments mount provider keys as container secrets.
func ResolveSecret(envVar, secretName string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	content, err := os.ReadFile(filepath.Join("/run/secrets", secretName))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(content))
}
