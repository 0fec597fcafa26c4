// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package main

import (
	"fmt"
	"strings"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

// newMigrateCmd creates the migrate subcommand.
func newMigrateCmd(d *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
		Long:  `Apply, roll back, or inspect the PostgreSQL schema. Without a subcommand, applies pending migrations.`,
		RunE:  d.runEnv("migrate up", runMigrateUp(d)),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE:  d.runEnv("migrate up", runMigrateUp(d)),
	})

	var yes bool
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations, dropping every account",
		RunE: d.runEnv("migrate down", func(cmd *cobra.Command, e *env, _ []string) error {
			if !yes {
				return oops.Code("CLI_CONFIRMATION_REQUIRED").Errorf("migrate down drops all auth tables; pass --yes to confirm")
			}
			return withMigrator(d, e, func(m Migrator) error {
				if err := m.Down(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "All migrations rolled back")
				return nil
			})
		}),
	}
	down.Flags().BoolVar(&yes, "yes", false, "confirm dropping all data")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the applied schema version",
		RunE: d.runEnv("migrate version", func(cmd *cobra.Command, e *env, _ []string) error {
			return withMigrator(d, e, func(m Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				pending, err := m.Pending()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "version: %d\n", version)
				fmt.Fprintf(out, "dirty: %t\n", dirty)
				fmt.Fprintf(out, "pending: %d\n", len(pending))
				return nil
			})
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "force VERSION",
		Short: "Mark VERSION as applied without running it (dirty state recovery)",
		Args:  cobra.ExactArgs(1),
		RunE: d.runEnv("migrate force", func(cmd *cobra.Command, e *env, args []string) error {
			version, err := parseForceVersion(args[0])
			if err != nil {
				return err
			}
			return withMigrator(d, e, func(m Migrator) error {
				if err := m.Force(version); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Forced version %d\n", version)
				return nil
			})
		}),
	})

	return cmd
}

func runMigrateUp(d *Deps) func(cmd *cobra.Command, e *env, _ []string) error {
	return func(cmd *cobra.Command, e *env, _ []string) error {
		return withMigrator(d, e, func(m Migrator) error {
			pending, err := m.Pending()
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
				return nil
			}
			if err := m.Up(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s)\n", len(pending))
			return nil
		})
	}
}

func withMigrator(d *Deps, e *env, fn func(Migrator) error) (err error) {
	if err := e.cfg.RequireDatabase(); err != nil {
		return err
	}
	m, err := d.OpenMigrator(e.cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(m)
}

// parseForceVersion parses the version argument of migrate force.
func parseForceVersion(arg string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(strings.TrimSpace(arg), "%d", &version); err != nil {
		return 0, oops.Code("MIGRATION_INVALID_VERSION").With("input", arg).Wrap(err)
	}
	if version < 0 {
		return 0, oops.Code("MIGRATION_INVALID_VERSION").With("input", arg).Errorf("version must be non-negative")
	}
	return version, nil
}
