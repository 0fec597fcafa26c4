// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package auth

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/samber/oops"
)

// LoginState is the position of a LoginSession in its dialogue.
type LoginState int

// Login states.
const (
	StateAwaitingCredentials LoginState = iota
	StateFailed
	StateAuthenticated
	StateLockedOut
)

func (s LoginState) String() string {
	switch s {
	case StateAwaitingCredentials:
		return "awaiting_credentials"
	case StateFailed:
		return "failed"
	case StateAuthenticated:
		return "authenticated"
	case StateLockedOut:
		return "locked_out"
	default:
		return "unknown"
	}
}

// LoginSession bounds one login dialogue to a fixed number of failed
// attempts. Once the budget is spent every further attempt returns
// ErrTooManyAttempts without checking credentials.
//
// A LoginSession is safe for concurrent use; attempts are serialized.
type LoginSession struct {
	mu          sync.Mutex
	service     *Service
	logger      *slog.Logger
	maxAttempts int
	failures    int
	state       LoginState
	identity    *Identity
}

func newLoginSession(service *Service, maxAttempts int, logger *slog.Logger) *LoginSession {
	return &LoginSession{
		service:     service,
		logger:      logger,
		maxAttempts: maxAttempts,
		state:       StateAwaitingCredentials,
	}
}

// Attempt tries username and password.
//
// An empty username is rejected without counting. Infrastructure failures
// are returned without counting either; every other failure consumes one
// attempt.
func (l *LoginSession) Attempt(ctx context.Context, username, password string) (*Identity, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case StateAuthenticated:
		return nil, oops.Code(CodeSessionClosed).Wrap(ErrSessionClosed)
	case StateLockedOut:
		return nil, l.lockedOut()
	}

	if strings.TrimSpace(username) == "" {
		return nil, validationError("username", "username cannot be empty")
	}

	identity, err := l.service.Authenticate(ctx, username, password)
	if err == nil {
		l.state = StateAuthenticated
		l.identity = identity
		return identity, nil
	}
	if !countsAsAttempt(err) {
		return nil, err
	}

	l.failures++
	if l.failures >= l.maxAttempts {
		l.state = StateLockedOut
		LoginLockouts.Inc()
		l.logger.Warn("login_locked_out", "username", username, "attempts", l.failures)
	} else {
		l.state = StateFailed
	}
	return nil, err
}

func (l *LoginSession) lockedOut() error {
	return oops.Code(CodeTooManyAttempts).
		With("attempts", l.failures).
		With("max_attempts", l.maxAttempts).
		Wrap(ErrTooManyAttempts)
}

// State returns the current state.
func (l *LoginSession) State() LoginState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Failures returns the number of counted failures.
func (l *LoginSession) Failures() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.failures
}

// Remaining returns how many attempts are left.
func (l *LoginSession) Remaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateAuthenticated {
		return 0
	}
	return max(l.maxAttempts-l.failures, 0)
}

// Identity returns the authenticated identity, or nil before success.
func (l *LoginSession) Identity() *Identity {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.identity
}
