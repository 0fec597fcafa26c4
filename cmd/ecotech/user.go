// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/dani6777-2/EcoTechSolutions/internal/access"
	"github.com/dani6777-2/EcoTechSolutions/internal/auth"
)

// newUserCmd creates the user subcommand tree.
func newUserCmd(d *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage principals",
	}
	cmd.AddCommand(newUserCreateCmd(d))
	cmd.AddCommand(newUserListCmd(d))
	cmd.AddCommand(newUserPasswdCmd(d))
	cmd.AddCommand(newUserActivateCmd(d, true))
	cmd.AddCommand(newUserActivateCmd(d, false))
	return cmd
}

func newUserCreateCmd(d *Deps) *cobra.Command {
	var roleName string

	cmd := &cobra.Command{
		Use:   "create USERNAME",
		Short: "Create a principal",
		Long:  `Create a principal in --role, or in the employee role when --role is omitted.`,
		Args:  cobra.ExactArgs(1),
		RunE: d.run("user create", func(cmd *cobra.Command, a *app, args []string) error {
			ctx := cmd.Context()
			identity, err := a.operator(cmd)
			if err != nil {
				return err
			}
			if err := a.service.Authorize(ctx, identity, access.OpManageUsers); err != nil {
				return err
			}

			username := args[0]
			if err := auth.ValidateUsername(username); err != nil {
				return err
			}
			password, err := a.newPassword(fmt.Sprintf("Password for %s: ", username))
			if err != nil {
				return err
			}

			var id ulid.ULID
			if roleName == "" {
				id, err = a.service.CreateEmployeePrincipal(ctx, username, password)
			} else {
				role, roleErr := a.registry.GetRoleByName(ctx, roleName)
				if roleErr != nil {
					return roleErr
				}
				id, err = a.service.CreatePrincipal(ctx, username, password, role.ID)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created principal %s (%s)\n", username, id)
			return nil
		}),
	}

	cmd.Flags().StringVar(&roleName, "role", "", "role name (default: the employee role)")
	return cmd
}

func newUserListCmd(d *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List principals, newest first",
		Args:  cobra.NoArgs,
		RunE: d.run("user list", func(cmd *cobra.Command, a *app, _ []string) error {
			identity, err := a.operator(cmd)
			if err != nil {
				return err
			}
			summaries, err := a.service.ListPrincipals(cmd.Context(), identity.PrincipalID)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "USERNAME\tROLE\tACTIVE\tCREATED\tLAST LOGIN")
			for _, s := range summaries {
				lastLogin := "never"
				if s.LastLoginAt != nil {
					lastLogin = s.LastLoginAt.Format(time.RFC3339)
				}
				fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%s\n",
					s.Username, s.RoleName, s.Active, s.CreatedAt.Format(time.RFC3339), lastLogin)
			}
			return w.Flush()
		}),
	}
}

func newUserPasswdCmd(d *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "passwd [USERNAME]",
		Short: "Change your password, or reset another principal's",
		Long: `Without USERNAME, or with your own, changes your password after checking
the current one. With another USERNAME, resets that principal's password;
this needs permission to manage users.`,
		Args: cobra.MaximumNArgs(1),
		RunE: d.run("user passwd", func(cmd *cobra.Command, a *app, args []string) error {
			ctx := cmd.Context()
			identity, err := a.operator(cmd)
			if err != nil {
				return err
			}

			if len(args) == 0 || strings.EqualFold(args[0], identity.Username) {
				current, err := a.prompter.Secret("Current password: ")
				if err != nil {
					return err
				}
				next, err := a.newPassword("New password: ")
				if err != nil {
					return err
				}
				if err := a.service.ChangeOwnPassword(ctx, identity, current, next); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Password changed")
				return nil
			}

			if err := a.service.Authorize(ctx, identity, access.OpManageUsers); err != nil {
				return err
			}
			target, err := a.backend.Credentials.GetByUsername(ctx, args[0])
			if err != nil {
				return err
			}
			next, err := a.newPassword(fmt.Sprintf("New password for %s: ", target.Username))
			if err != nil {
				return err
			}
			if err := a.service.ResetPassword(ctx, identity.PrincipalID, target.ID, next); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Password reset for %s\n", target.Username)
			return nil
		}),
	}
}

func newUserActivateCmd(d *Deps, active bool) *cobra.Command {
	use, short, done := "activate USERNAME", "Reactivate a principal", "Activated"
	if !active {
		use, short, done = "deactivate USERNAME", "Deactivate a principal", "Deactivated"
	}
	var yes bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: d.run("user "+strings.Fields(use)[0], func(cmd *cobra.Command, a *app, args []string) error {
			ctx := cmd.Context()
			identity, err := a.operator(cmd)
			if err != nil {
				return err
			}
			// Self-deactivation is refused below whatever the level.
			if active || !strings.EqualFold(args[0], identity.Username) {
				if err := a.service.Authorize(ctx, identity, access.OpManageUsers); err != nil {
					return err
				}
			}
			target, err := a.backend.Credentials.GetByUsername(ctx, args[0])
			if err != nil {
				return err
			}

			var opts []auth.SetActiveOption
			if yes {
				opts = append(opts, auth.WithConfirmation())
			}
			err = a.service.SetActive(ctx, target.ID, active, identity.PrincipalID, opts...)
			if auth.KindOf(err) == auth.KindConfirmationRequired && !yes {
				answer, promptErr := a.prompter.Line(fmt.Sprintf("Really deactivate %s? [y/N]: ", target.Username))
				if promptErr != nil {
					return promptErr
				}
				if !strings.EqualFold(strings.TrimSpace(answer), "y") && !strings.EqualFold(strings.TrimSpace(answer), "yes") {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
					return nil
				}
				err = a.service.SetActive(ctx, target.ID, active, identity.PrincipalID, auth.WithConfirmation())
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", done, target.Username)
			return nil
		}),
	}

	if !active {
		cmd.Flags().BoolVar(&yes, "yes", false, "confirm deactivating a protected account")
	}
	return cmd
}
