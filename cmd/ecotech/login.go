// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// newLoginCmd creates the login subcommand.
func newLoginCmd(d *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "login [username]",
		Short: "Sign in and show your role and capabilities",
		Long: `Sign in interactively. Each login allows a limited number of failed
attempts; an empty username does not count as an attempt.`,
		Args: cobra.MaximumNArgs(1),
		RunE: d.run("login", func(cmd *cobra.Command, a *app, args []string) error {
			var username string
			if len(args) == 1 {
				username = args[0]
			}

			identity, err := a.authenticate(cmd, username)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Welcome, %s\n", identity.Username)
			fmt.Fprintf(out, "Role: %s (level %d)\n", identity.RoleName, identity.PermissionLevel)
			if identity.LastLoginAt != nil {
				fmt.Fprintf(out, "Last login: %s\n", identity.LastLoginAt.Format(time.RFC3339))
			} else {
				fmt.Fprintln(out, "Last login: never")
			}
			fmt.Fprintln(out, "Capabilities:")
			for _, op := range a.service.ResolveCapabilities(identity.PermissionLevel) {
				fmt.Fprintf(out, "  %s\n", op)
			}
			return nil
		}),
	}
}
