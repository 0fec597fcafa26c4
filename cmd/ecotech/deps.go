// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dani6777-2/EcoTechSolutions/internal/auth"
	"github.com/dani6777-2/EcoTechSolutions/internal/auth/postgres"
	"github.com/dani6777-2/EcoTechSolutions/internal/config"
	"github.com/dani6777-2/EcoTechSolutions/internal/store"
	"github.com/dani6777-2/EcoTechSolutions/internal/throttle"
	"github.com/dani6777-2/EcoTechSolutions/internal/xdg"
)

// Deps contains injectable dependencies for the commands.
// All fields with nil values will use their default implementations.
type Deps struct {
	// OpenBackend opens the credential and role stores.
	// Default: PostgreSQL repositories, plus Redis when the redis throttle is configured.
	OpenBackend func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error)

	// OpenMigrator opens a schema migrator for a database URL.
	// Default: store.NewMigrator
	OpenMigrator func(databaseURL string) (Migrator, error)

	// NewPrompter creates the prompter used to read usernames and passwords.
	// Default: a terminal prompter over the command's input and error streams.
	NewPrompter func(cmd *cobra.Command) Prompter

	// Getenv reads environment variables.
	// Default: os.Getenv
	Getenv func(string) string

	// DefaultConfigFile returns the config file used when --config is unset.
	// Default: xdg.DefaultConfigFile
	DefaultConfigFile func() string
}

// Backend holds the stores a command works against.
type Backend struct {
	Credentials auth.CredentialStore
	Roles       auth.RoleRepository
	// Limiter is optional.
	Limiter auth.FailureLimiter

	closers []func()
}

// Close releases the backend's connections in reverse order.
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

// Migrator wraps the methods used from store.Migrator.
type Migrator interface {
	Up() error
	Down() error
	Version() (uint, bool, error)
	Force(version int) error
	Pending() ([]uint, error)
	Close() error
}

func (d *Deps) withDefaults() *Deps {
	out := *d
	if out.OpenBackend == nil {
		out.OpenBackend = openPostgresBackend
	}
	if out.OpenMigrator == nil {
		out.OpenMigrator = func(databaseURL string) (Migrator, error) {
			return store.NewMigrator(databaseURL)
		}
	}
	if out.NewPrompter == nil {
		out.NewPrompter = func(cmd *cobra.Command) Prompter {
			return newTerminalPrompter(cmd.InOrStdin(), cmd.ErrOrStderr())
		}
	}
	if out.Getenv == nil {
		out.Getenv = os.Getenv
	}
	if out.DefaultConfigFile == nil {
		out.DefaultConfigFile = xdg.DefaultConfigFile
	}
	return &out
}

func openPostgresBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	if err := cfg.RequireDatabase(); err != nil {
		return nil, err
	}

	pool, err := store.Connect(ctx, cfg.Database.URL, store.ConnectOptions{
		Retries: cfg.Database.ConnectRetries,
		Timeout: cfg.Database.ConnectTimeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	b := &Backend{
		Credentials: postgres.NewPrincipalRepository(pool),
		Roles:       postgres.NewRoleRepository(pool),
		closers:     []func(){pool.Close},
	}

	if strings.EqualFold(cfg.Auth.Throttle.Backend, config.ThrottleRedis) {
		client, err := throttle.Dial(ctx, cfg.Redis.Addr)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, func() {
			if err := client.Close(); err != nil {
				logger.Warn("close redis client", "error", err)
			}
		})
		limiter, err := throttle.NewRedisLimiter(client, cfg.Auth.Throttle.MaxFailures, cfg.Auth.Throttle.Window)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Limiter = limiter
	}
	return b, nil
}
