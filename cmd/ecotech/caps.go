// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/dani6777-2/EcoTechSolutions/internal/access"
)

// newCapsCmd creates the caps subcommand.
func newCapsCmd(d *Deps) *cobra.Command {
	var (
		level  int
		filter string
	)

	cmd := &cobra.Command{
		Use:   "caps",
		Short: "List the operations a permission level may invoke",
		Long: `List the operations allowed at --level, or at the level of the --as
operator. --filter narrows the list with a glob such as "manage_*".`,
		RunE: d.runEnv("caps", func(cmd *cobra.Command, e *env, _ []string) error {
			resolver := access.NewResolver()
			if !cmd.Flags().Changed("level") {
				a, err := d.openApp(cmd, e)
				if err != nil {
					return err
				}
				defer a.backend.Close()
				identity, err := a.operator(cmd)
				if err != nil {
					return err
				}
				level = identity.PermissionLevel
				resolver = a.service.Resolver()
			}
			if !access.ValidLevel(level) {
				return oops.Code("CLI_INVALID_ARGUMENT").
					With("level", level).
					Errorf("level must be between %d and %d", access.MinLevel, access.MaxLevel)
			}

			var matcher glob.Glob
			if filter != "" {
				g, err := glob.Compile(filter)
				if err != nil {
					return oops.Code("CLI_INVALID_ARGUMENT").With("filter", filter).Wrap(err)
				}
				matcher = g
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "OPERATION\tREQUIRED LEVEL")
			for _, op := range resolver.Capabilities(level) {
				if matcher != nil && !matcher.Match(op.String()) {
					continue
				}
				threshold, _ := resolver.Threshold(op)
				fmt.Fprintf(w, "%s\t%d\n", op, threshold)
			}
			return w.Flush()
		}),
	}

	cmd.Flags().IntVar(&level, "level", 0, "permission level to inspect (1-10)")
	cmd.Flags().StringVar(&filter, "filter", "", "glob pattern matched against operation names")
	return cmd
}
