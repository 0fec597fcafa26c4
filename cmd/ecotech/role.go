// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dani6777-2/EcoTechSolutions/internal/access"
)

// newRoleCmd creates the role subcommand tree.
func newRoleCmd(d *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Manage roles",
	}

	var (
		level       int
		description string
	)
	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a role",
		Args:  cobra.ExactArgs(1),
		RunE: d.run("role create", func(cmd *cobra.Command, a *app, args []string) error {
			identity, err := a.operator(cmd)
			if err != nil {
				return err
			}
			if err := a.service.Authorize(cmd.Context(), identity, access.OpManageRoles); err != nil {
				return err
			}
			role, err := a.registry.CreateRole(cmd.Context(), args[0], description, level)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created role %s (level %d)\n", role.Name, role.PermissionLevel)
			return nil
		}),
	}
	create.Flags().IntVar(&level, "level", 0, "permission level (1-10)")
	create.Flags().StringVar(&description, "description", "", "role description")
	_ = create.MarkFlagRequired("level")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List active roles by permission level",
		Args:  cobra.NoArgs,
		RunE: d.run("role list", func(cmd *cobra.Command, a *app, _ []string) error {
			if _, err := a.operator(cmd); err != nil {
				return err
			}
			roles, err := a.registry.ListActiveRoles(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tLEVEL\tDESCRIPTION")
			for _, role := range roles {
				fmt.Fprintf(w, "%s\t%d\t%s\n", role.Name, role.PermissionLevel, role.Description)
			}
			return w.Flush()
		}),
	})

	return cmd
}
