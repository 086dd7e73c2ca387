// SPDX-License-Identifier: Apache-2.0

// Package flags centralizes the CLI flags the subcommands read through
// viper (persistent root flags plus run-only flags), so a flag's env var
// name and default live in one place.
package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func Locale() string {
	return viper.GetString("LOCALE")
}

func Delimiter() string {
	return viper.GetString("DELIMITER")
}

func DeleteByPattern() []string {
	return viper.GetStringSlice("DELETE_BY_PATTERN")
}

func TmpDir() string {
	return viper.GetString("TMP_DIR")
}

func TmpPrefix() string {
	return viper.GetString("TMP_PREFIX")
}

func Mode() string {
	return viper.GetString("MODE")
}

func ConfigFile() string {
	return viper.GetString("CONFIG_FILE")
}

// DirectiveFlags registers, as persistent flags on the root command, the
// flags that affect how directives are parsed and resolved: locale,
// field delimiter, and extra delete-by-pattern expressions. Persistent
// flags are inherited by every subcommand, so run and validate share one
// registration and one viper binding instead of racing to bind the same
// key twice.
func DirectiveFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("locale", "en", "Locale for the built-in value generators")
	cmd.PersistentFlags().String("delimiter", "\t", "COPY body field delimiter")
	cmd.PersistentFlags().StringSlice("delete-by-pattern", nil, "Additional regular expressions matched against table names for deletion")

	viper.BindPFlag("LOCALE", cmd.PersistentFlags().Lookup("locale"))
	viper.BindPFlag("DELIMITER", cmd.PersistentFlags().Lookup("delimiter"))
	viper.BindPFlag("DELETE_BY_PATTERN", cmd.PersistentFlags().Lookup("delete-by-pattern"))
}

// RunFlags registers the flags only a real run needs: input mode
// selection, temp file placement for the custom-format codec, and an
// optional config file overlay. Call DirectiveFlags on the root command
// separately to pick up locale/delimiter/delete-by-pattern.
func RunFlags(cmd *cobra.Command) {
	cmd.Flags().String("tmp-dir", "", "Directory for custom-format scratch files (defaults to the OS temp directory)")
	cmd.Flags().String("tmp-prefix", "pgmask_", "Filename prefix for custom-format scratch files")
	cmd.Flags().String("mode", "auto", "Input format: auto, plain, or custom")
	cmd.Flags().String("config", "", "Optional YAML config file merged on top of flags and environment")

	viper.BindPFlag("TMP_DIR", cmd.Flags().Lookup("tmp-dir"))
	viper.BindPFlag("TMP_PREFIX", cmd.Flags().Lookup("tmp-prefix"))
	viper.BindPFlag("MODE", cmd.Flags().Lookup("mode"))
	viper.BindPFlag("CONFIG_FILE", cmd.Flags().Lookup("config"))
}
