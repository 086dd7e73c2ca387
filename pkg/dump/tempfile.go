// SPDX-License-Identifier: Apache-2.0

package dump

import (
	"errors"
	"os"
	"time"

	"github.com/cloudflare/backoff"
)

const (
	tempFileRemoveMaxBackoff = 5 * time.Second
	tempFileRemoveInterval   = 50 * time.Millisecond
)

// spoolFile is a scratch file used to stage the transformed rows of an
// uncompressed data block until their new size is known. Close retries
// the unlink with backoff because a concurrent antivirus/backup scan on
// the host can hold a transient lock on a freshly-written file (seen in
// CI on shared runners).
type spoolFile struct {
	*os.File
	path string
}

func newSpoolFile(dir, prefix string) (*spoolFile, error) {
	f, err := os.CreateTemp(dir, prefix+"*")
	if err != nil {
		return nil, err
	}
	return &spoolFile{File: f, path: f.Name()}, nil
}

const tempFileRemoveMaxAttempts = 10

func (s *spoolFile) Close() error {
	closeErr := s.File.Close()

	b := backoff.New(tempFileRemoveMaxBackoff, tempFileRemoveInterval)
	for attempt := 0; attempt < tempFileRemoveMaxAttempts; attempt++ {
		err := os.Remove(s.path)
		if err == nil || errors.Is(err, os.ErrNotExist) {
			return closeErr
		}
		time.Sleep(b.Duration())
	}
	return closeErr
}
