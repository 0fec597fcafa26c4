// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

// Package store owns the PostgreSQL connection pool and schema migrations.
package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// ConnectOptions tunes Connect.
type ConnectOptions struct {
	// Retries is how many times a failed ping is retried.
	Retries uint64
	// Timeout bounds each ping.
	Timeout time.Duration
	// Backoff is the first retry delay; it doubles per attempt.
	Backoff time.Duration
	Logger  *slog.Logger
}

// DefaultConnectOptions returns the options used when none are configured.
func DefaultConnectOptions() ConnectOptions {
	return ConnectOptions{
		Retries: 5,
		Timeout: 5 * time.Second,
		Backoff: 200 * time.Millisecond,
	}
}

// Connect opens a pool for databaseURL and pings it, retrying with
// exponential backoff while the database comes up.
func Connect(ctx context.Context, databaseURL string, opts ConnectOptions) (*pgxpool.Pool, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultConnectOptions().Timeout
	}
	if opts.Backoff <= 0 {
		opts.Backoff = DefaultConnectOptions().Backoff
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, oops.Code("DB_CONFIG_INVALID").Wrap(err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").With("operation", "create pool").Wrap(err)
	}

	backoff := retry.WithMaxRetries(opts.Retries, retry.NewExponential(opts.Backoff))
	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		pingCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			logger.Warn("database ping failed", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").
			With("operation", "ping").
			With("attempts", attempt).
			Wrap(err)
	}
	return pool, nil
}
