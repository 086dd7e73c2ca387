// SPDX-License-Identifier: Apache-2.0

package driver

import (
	"os"
	"path/filepath"
	"strings"
)

// SweepTmpFiles removes any leftover spool files matching
// tmpDir/tmpPrefix* that a crashed or killed run failed to clean up on
// its own. cmd/run.go calls it before a run begins, and Driver.Run calls
// it again when it returns if a prefix is configured.
func SweepTmpFiles(tmpDir, tmpPrefix string) error {
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.HasPrefix(entry.Name(), tmpPrefix) {
			continue
		}
		_ = os.Remove(filepath.Join(tmpDir, entry.Name()))
	}

	return nil
}
