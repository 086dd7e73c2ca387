// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pgmask/pgmask/cmd/flags"
	"github.com/pgmask/pgmask/pkg/driver"
	"github.com/pgmask/pgmask/pkg/logging"
)

func runCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:       "run [file]",
		Short:     "Obfuscate a dump, reading stdin and writing stdout unless paths are given",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"file"},
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(args)
			if err != nil {
				return err
			}
			defer in.Close()

			out, closeOut, err := openOutput(outputPath)
			if err != nil {
				return err
			}
			defer closeOut()

			cfg, err := buildConfig()
			if err != nil {
				return err
			}

			logger := logging.New()

			if err := driver.SweepTmpFiles(cfg.TmpDir, cfg.TmpPrefix); err != nil {
				logger.Error("failed to sweep leftover temp files", "err", err)
			}

			d := driver.New(cfg, logger)
			return d.Run(in, out)
		},
	}

	flags.RunFlags(cmd)
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (defaults to stdout)")

	return cmd
}

func openInput(args []string) (io.ReadCloser, error) {
	if len(args) == 0 {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(args[0])
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}
