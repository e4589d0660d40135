// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package extensions defines the pluggable seams of the pipeline.
//
// The open source build ships permissive defaults: NopAuthProvider
// authenticates everything as a local admin so the CLI works with zero
// infrastructure, and StaticTokenProvider covers single-token
// deployments. Enterprise builds substitute real identity providers
// behind the same interfaces.
package extensions

import (
	"context"
	"crypto/subtle"
	"errors"
)

// ErrUnauthorized is returned when authentication fails. Implementations
// should wrap it so callers can errors.Is against one sentinel.
var ErrUnauthorized = errors.New("unauthorized")

// AuthInfo is the identity returned after successful authentication.
type AuthInfo struct {
	// UserID is the unique identifier for the authenticated user.
	// Never empty on a successful Validate.
	UserID string

	// Email may be empty if the provider does not supply one.
	Email string

	// Roles holds role memberships for authorization decisions.
	Roles []string
}

// HasRole checks if the user has a specific role.
func (a *AuthInfo) HasRole(role string) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// AuthProvider validates bearer tokens and returns user identity.
//
// Implementations must be safe for concurrent use.
type AuthProvider interface {
	// Validate checks the token and returns the user's identity, or
	// ErrUnauthorized (possibly wrapped) when the token is invalid.
	Validate(ctx context.Context, token string) (*AuthInfo, error)
}

// NopAuthProvider authenticates every request as a local admin. This is
// the default for single-user deployments with no auth infrastructure.
//
// Thread Safety: stateless.
type NopAuthProvider struct{}

// Validate always succeeds, ignoring the token.
func (p *NopAuthProvider) Validate(_ context.Context, _ string) (*AuthInfo, error) {
	return &AuthInfo{
		UserID: "local-user",
		Roles:  []string{"admin"},
	}, nil
}

// StaticTokenProvider authenticates requests bearing one configured
// token. Comparison is constant-time.
//
// Thread Safety: stateless after construction.
type StaticTokenProvider struct {
	token string
}

// NewStaticTokenProvider builds a provider for the given token.
func NewStaticTokenProvider(token string) (*StaticTokenProvider, error) {
	if token == "" {
		return nil, errors.New("static token must not be empty")
	}
	return &StaticTokenProvider{token: token}, nil
}

// Validate accepts only the configured token.
func (p *StaticTokenProvider) Validate(_ context.Context, token string) (*AuthInfo, error) {
	if subtle.ConstantTimeCompare([]byte(token), []byte(p.token)) != 1 {
		return nil, ErrUnauthorized
	}
	return &AuthInfo{
		UserID: "token-user",
		Roles:  []string{"admin"},
	}, nil
}

var (
	_ AuthProvider = (*NopAuthProvider)(nil)
	_ AuthProvider = (*StaticTokenProvider)(nil)
)
