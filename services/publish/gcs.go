// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package publish

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/AleutianAI/AleutianCreate/services/creator/datatypes"
)

// Archiver copies a generated project bundle into a GCS bucket, keyed by
// run ID, so published output survives local store cleanup.
type Archiver struct {
	client *storage.Client
	bucket string
	logger *slog.Logger
}

// NewArchiver builds an Archiver for the bucket. Credentials come from
// GOOGLE_APPLICATION_CREDENTIALS when set, otherwise application default
// credentials.
func NewArchiver(ctx context.Context, bucket string, logger *slog.Logger) (*Archiver, error) {
	if bucket == "" {
		return nil, fmt.Errorf("archive bucket is not configured")
	}
	if logger == nil {
		logger = slog.Default()
	}

	var opts []option.ClientOption
	if keyPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); keyPath != "" {
		if _, err := os.Stat(keyPath); err != nil {
			return nil, fmt.Errorf("service account key not found at %s: %w", keyPath, err)
		}
		opts = append(opts, option.WithCredentialsFile(keyPath))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}
	return &Archiver{client: client, bucket: bucket, logger: logger}, nil
}

// Archive writes every project file (and the README) under
// runs/<runID>/<project>/. Returns the gs:// prefix of the bundle.
func (a *Archiver) Archive(ctx context.Context, runID string, project *datatypes.CodeProject) (string, error) {
	prefix := path.Join("runs", runID, Slugify(project.Name))
	for _, f := range uploadSet(project) {
		objPath := path.Join(prefix, f.Path)
		w := a.client.Bucket(a.bucket).Object(objPath).NewWriter(ctx)
		w.ContentType = "application/octet-stream"
		w.CacheControl = "no-cache, no-store, must-revalidate"
		if _, err := w.Write([]byte(f.Contents)); err != nil {
			w.Close()
			return "", fmt.Errorf("write %s: %w", objPath, err)
		}
		if err := w.Close(); err != nil {
			return "", fmt.Errorf("close writer for %s: %w", objPath, err)
		}
		a.logger.Debug("archived file", "bucket", a.bucket, "object", objPath)
	}
	url := fmt.Sprintf("gs://%s/%s", a.bucket, prefix)
	a.logger.Info("project archived", "run_id", runID, "url", url)
	return url, nil
}

// Close releases the underlying client.
func (a *Archiver) Close() error { return a.client.Close() }
