// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pgmask/pgmask/cmd/flags"
	"github.com/pgmask/pgmask/pkg/driver"
)

// Version is the pgmask version.
var Version = "development"

func init() {
	viper.SetEnvPrefix("PGMASK")
	viper.AutomaticEnv()

	flags.DirectiveFlags(rootCmd)
}

var rootCmd = &cobra.Command{
	Use:          "pgmask",
	Short:        "Obfuscate PostgreSQL dumps",
	SilenceUsage: true,
	Version:      Version,
}

// buildConfig assembles a driver.Config from bound flags/env, then
// overlays an optional YAML config file on top.
func buildConfig() (*driver.Config, error) {
	cfg, err := driver.LoadEnv()
	if err != nil {
		return nil, err
	}

	cfg.Mode = driver.Mode(flags.Mode())
	cfg.Locale = flags.Locale()
	cfg.Delimiter = flags.Delimiter()
	cfg.DeleteByPattern = flags.DeleteByPattern()
	cfg.TmpDir = flags.TmpDir()
	cfg.TmpPrefix = flags.TmpPrefix()

	if path := flags.ConfigFile(); path != "" {
		if err := driver.LoadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Execute executes the root command.
func Execute() error {
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(validateCmd())

	return rootCmd.Execute()
}
