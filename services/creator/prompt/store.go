// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package prompt

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Store resolves prompt templates by name: compiled-in defaults, optionally
// shadowed by .tmpl files in an override directory.
//
// # Thread Safety
//
// Safe for concurrent use. Renders hold a read lock; reloads hold the
// write lock briefly while swapping the parsed override set.
type Store struct {
	dir    string
	logger *slog.Logger

	mu        sync.RWMutex
	compiled  map[string]*template.Template
	overrides map[string]*template.Template

	watcher  *fsnotify.Watcher
	stopOnce sync.Once
	done     chan struct{}
}

// NewStore parses the built-in templates and, when dir is non-empty, loads
// any overrides found there. A missing or unreadable override directory is
// not fatal.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	compiled := make(map[string]*template.Template, len(defaults))
	for name, text := range defaults {
		t, err := template.New(name).Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse built-in template %q: %w", name, err)
		}
		compiled[name] = t
	}

	s := &Store{
		dir:       dir,
		logger:    logger,
		compiled:  compiled,
		overrides: map[string]*template.Template{},
		done:      make(chan struct{}),
	}
	if dir != "" {
		s.reload()
	}
	return s, nil
}

// Watch begins hot-reloading overrides on directory changes. Reload is
// debounced so editors that write multiple events per save trigger one
// reload. Call Close to stop.
func (s *Store) Watch() error {
	if s.dir == "" {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create prompt watcher: %w", err)
	}
	if err := w.Add(s.dir); err != nil {
		w.Close()
		return fmt.Errorf("watch prompt dir %s: %w", s.dir, err)
	}
	s.watcher = w

	go func() {
		var timer *time.Timer
		const debounce = 200 * time.Millisecond
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !strings.HasSuffix(ev.Name, ".tmpl") {
					continue
				}
				if timer == nil {
					timer = time.AfterFunc(debounce, s.reload)
				} else {
					timer.Reset(debounce)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				s.logger.Warn("prompt watcher error", "error", err.Error())
			case <-s.done:
				return
			}
		}
	}()
	return nil
}

// Close stops the watcher, if one is running.
func (s *Store) Close() {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.watcher != nil {
			s.watcher.Close()
		}
	})
}

// Render executes the named template with data. Overrides win over the
// built-in default.
func (s *Store) Render(name string, data any) (string, error) {
	s.mu.RLock()
	t, ok := s.overrides[name]
	if !ok {
		t, ok = s.compiled[name]
	}
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("unknown prompt template %q", name)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %q: %w", name, err)
	}
	return buf.String(), nil
}

// reload re-scans the override directory. A broken override file is logged
// and skipped; the built-in default stays active for that name.
func (s *Store) reload() {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("prompt override dir unreadable", "dir", s.dir, "error", err.Error())
		}
		return
	}

	next := map[string]*template.Template{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".tmpl") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".tmpl")
		if _, known := s.compiled[name]; !known {
			s.logger.Warn("prompt override does not match a known template", "file", e.Name())
			continue
		}
		raw, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			s.logger.Warn("read prompt override failed", "file", e.Name(), "error", err.Error())
			continue
		}
		t, err := template.New(name).Parse(string(raw))
		if err != nil {
			s.logger.Warn("parse prompt override failed", "file", e.Name(), "error", err.Error())
			continue
		}
		next[name] = t
	}

	s.mu.Lock()
	s.overrides = next
	s.mu.Unlock()
	if len(next) > 0 {
		s.logger.Info("prompt overrides loaded", "count", len(next), "dir", s.dir)
	}
}
