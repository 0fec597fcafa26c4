// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package auth

import "context"

// FailureLimiter tracks failed logins per username across login sessions.
//
// The LoginSession counter limits a single dialogue; a FailureLimiter lets a
// deployment block a username after repeated failures from any session.
type FailureLimiter interface {
	// Blocked reports whether username has reached the failure limit.
	Blocked(ctx context.Context, username string) (bool, error)

	// RecordFailure counts one failed attempt for username.
	RecordFailure(ctx context.Context, username string) error

	// Reset clears the failures recorded for username.
	Reset(ctx context.Context, username string) error
}

// NoopLimiter never blocks.
type NoopLimiter struct{}

// Blocked always returns false.
func (NoopLimiter) Blocked(context.Context, string) (bool, error) { return false, nil }

// RecordFailure does nothing.
func (NoopLimiter) RecordFailure(context.Context, string) error { return nil }

// Reset does nothing.
func (NoopLimiter) Reset(context.Context, string) error { return nil }
