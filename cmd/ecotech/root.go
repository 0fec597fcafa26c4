// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/dani6777-2/EcoTechSolutions/internal/config"
)

// NewRootCmd creates the root command with the production dependencies.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&Deps{})
}

func newRootCmd(deps *Deps) *cobra.Command {
	d := deps.withDefaults()

	cmd := &cobra.Command{
		Use:   "ecotech",
		Short: "EcoTech account and access administration",
		Long: `ecotech manages EcoTech principals and roles: it migrates and seeds the
database, signs users in, and lets administrators provision accounts.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file path")
	flags.String("as", "", "username of the operator running a privileged command")
	config.BindFlags(flags)

	cmd.AddCommand(newMigrateCmd(d))
	cmd.AddCommand(newSeedCmd(d))
	cmd.AddCommand(newLoginCmd(d))
	cmd.AddCommand(newCapsCmd(d))
	cmd.AddCommand(newUserCmd(d))
	cmd.AddCommand(newRoleCmd(d))

	return cmd
}
