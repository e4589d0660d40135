// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package store is the embedded datastore for ideas, runs, and provider
// credentials, backed by BadgerDB.
//
// Key layout:
//
//	idea/<user>/<id>  - submitted ideas, JSON
//	run/<id>          - pipeline run records, JSON
//	cred/<user>/<nm>  - provider credentials, AES-256-GCM sealed
//
// List operations are prefix scans. Credentials never touch disk in
// plaintext; see crypto.go.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/AleutianCreate/services/creator/datatypes"
)

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("store: not found")

// Store wraps a BadgerDB instance.
//
// Thread Safety: safe for concurrent use.
type Store struct {
	db     *badger.DB
	cipher *Cipher
	logger *slog.Logger
}

// Open opens a persistent store at path. cipher may be nil; credential
// operations then fail rather than writing plaintext.
func Open(path string, cipher *Cipher, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("store path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	path = expandHome(path)
	if err := os.MkdirAll(path, 0o750); err != nil {
		return nil, fmt.Errorf("create store directory %s: %w", path, err)
	}

	opts := badger.DefaultOptions(path).
		WithSyncWrites(true).
		WithNumVersionsToKeep(1).
		WithLogger(&badgerLogger{logger: logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &Store{db: db, cipher: cipher, logger: logger}, nil
}

// OpenInMemory opens a throwaway store. Used by tests.
func OpenInMemory(cipher *Cipher, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory store: %w", err)
	}
	return &Store{db: db, cipher: cipher, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// PutIdea persists an idea under its user.
func (s *Store) PutIdea(idea datatypes.Idea) error {
	return s.putJSON(ideaKey(idea.UserID, idea.ID), idea)
}

// GetIdea loads one idea.
func (s *Store) GetIdea(userID, id string) (datatypes.Idea, error) {
	var idea datatypes.Idea
	err := s.getJSON(ideaKey(userID, id), &idea)
	return idea, err
}

// ListIdeas returns all ideas for a user, in key order.
func (s *Store) ListIdeas(userID string) ([]datatypes.Idea, error) {
	var ideas []datatypes.Idea
	err := s.scan("idea/"+userID+"/", func(val []byte) error {
		var idea datatypes.Idea
		if err := json.Unmarshal(val, &idea); err != nil {
			return err
		}
		ideas = append(ideas, idea)
		return nil
	})
	return ideas, err
}

// PutRun persists a run record.
func (s *Store) PutRun(run *datatypes.Run) error {
	return s.putJSON("run/"+run.ID, run)
}

// GetRun loads one run record.
func (s *Store) GetRun(id string) (*datatypes.Run, error) {
	var run datatypes.Run
	if err := s.getJSON("run/"+id, &run); err != nil {
		return nil, err
	}
	return &run, nil
}

// PutCredential seals and stores a provider credential for a user.
func (s *Store) PutCredential(userID, name, secret string) error {
	if s.cipher == nil {
		return errors.New("store: no cipher configured, refusing to store credential")
	}
	sealed, err := s.cipher.Encrypt([]byte(secret))
	if err != nil {
		return fmt.Errorf("seal credential: %w", err)
	}
	return s.put(credKey(userID, name), sealed)
}

// GetCredential loads and opens a credential.
func (s *Store) GetCredential(userID, name string) (string, error) {
	if s.cipher == nil {
		return "", errors.New("store: no cipher configured")
	}
	sealed, err := s.get(credKey(userID, name))
	if err != nil {
		return "", err
	}
	plain, err := s.cipher.Decrypt(sealed)
	if err != nil {
		return "", fmt.Errorf("open credential: %w", err)
	}
	return string(plain), nil
}

// DeleteCredential removes a credential.
func (s *Store) DeleteCredential(userID, name string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(credKey(userID, name)))
	})
}

func ideaKey(userID, id string) string { return "idea/" + userID + "/" + id }
func credKey(userID, name string) string {
	return "cred/" + userID + "/" + name
}

func (s *Store) putJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.put(key, data)
}

func (s *Store) getJSON(key string, v any) error {
	data, err := s.get(key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (s *Store) put(key string, val []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), val)
	})
}

func (s *Store) get(key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	return out, err
}

func (s *Store) scan(prefix string, fn func(val []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if err := it.Item().Value(fn); err != nil {
				return err
			}
		}
		return nil
	})
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// badgerLogger adapts slog to BadgerDB's logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
