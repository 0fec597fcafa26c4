// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/dani6777-2/EcoTechSolutions/internal/access"
	"github.com/dani6777-2/EcoTechSolutions/internal/seed"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

type seedOptions struct {
	file          string
	adminPassword string
	timeout       time.Duration
}

// newSeedCmd creates the seed subcommand.
func newSeedCmd(d *Deps) *cobra.Command {
	opts := &seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Provision the initial roles and principals",
		Long: `Creates the roles and principals listed in a seed manifest, or the default
Administrador, Gerente and Empleado roles plus the admin principal.
This command is idempotent - it will not create duplicates if run multiple times.

The admin password comes from --admin-password or $` + seed.AdminPasswordEnv + `.`,
		RunE: d.run("seed", func(cmd *cobra.Command, a *app, _ []string) error {
			return runSeed(cmd, a, d, opts)
		}),
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "seed manifest (YAML); defaults to the built-in manifest")
	cmd.Flags().StringVar(&opts.adminPassword, "admin-password", "", "password for the admin principal")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", defaultSeedTimeout, "timeout for database operations (e.g., 30s, 1m)")

	return cmd
}

func runSeed(cmd *cobra.Command, a *app, d *Deps, opts *seedOptions) error {
	manifest := seed.DefaultManifest()
	if opts.file != "" {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return oops.Code("SEED_INVALID").With("file", opts.file).Wrap(err)
		}
		if manifest, err = seed.Parse(data); err != nil {
			return err
		}
	}

	seeder, err := seed.NewSeeder(a.service, a.registry, a.backend.Credentials,
		seed.WithLogger(a.logger),
		seed.WithGetenv(d.Getenv),
		seed.WithPassword(access.AdminUsername, opts.adminPassword))
	if err != nil {
		return err
	}

	// Use cmd.Context() to respect SIGINT/SIGTERM signals
	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	result, err := seeder.Apply(ctx, manifest)
	if result != nil {
		out := cmd.OutOrStdout()
		for _, name := range result.RolesCreated {
			fmt.Fprintf(out, "Created role %s\n", name)
		}
		for _, name := range result.RolesExisting {
			fmt.Fprintf(out, "Role %s already exists, skipping\n", name)
		}
		for _, name := range result.PrincipalsCreated {
			fmt.Fprintf(out, "Created principal %s\n", name)
		}
		for _, name := range result.PrincipalsExisting {
			fmt.Fprintf(out, "Principal %s already exists, skipping\n", name)
		}
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Seeding complete")
	return nil
}
