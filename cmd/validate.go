// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pgmask/pgmask/cmd/flags"
	"github.com/pgmask/pgmask/pkg/generator"
	"github.com/pgmask/pgmask/pkg/obfuscate"
	"github.com/pgmask/pgmask/pkg/relation"
)

// validateCmd reads locale/delimiter/delete-by-pattern from the
// persistent flags registered on the root command.
func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "validate <file>",
		Short:     "Parse a plain dump and report counts of the directives it registers, without transforming rows",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"file"},
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			ob := obfuscate.New(obfuscate.Config{
				Registry:       generator.New(flags.Locale()),
				Relations:      relation.New(),
				Delimiter:      flags.Delimiter(),
				DeletePatterns: flags.DeleteByPattern(),
				DryRun:         true,
			})

			scanner := bufio.NewScanner(f)
			scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)

			for scanner.Scan() {
				if _, _, err := ob.ParseLine(scanner.Text()); err != nil {
					return fmt.Errorf("validate: %w", err)
				}
			}
			if err := scanner.Err(); err != nil {
				return err
			}

			summary := ob.Summarize()
			fmt.Fprintf(cmd.OutOrStdout(), "tables marked for deletion: %d\n", summary.DeleteTables)
			fmt.Fprintf(cmd.OutOrStdout(), "tables with column mutations: %d\n", summary.MutatedTables)
			fmt.Fprintf(cmd.OutOrStdout(), "columns with mutations: %d\n", summary.MutatedCols)

			return nil
		},
	}

	return cmd
}
