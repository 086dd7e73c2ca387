// SPDX-License-Identifier: Apache-2.0

package driver

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/pgmask/pgmask/pkg/dump"
	"github.com/pgmask/pgmask/pkg/generator"
	"github.com/pgmask/pgmask/pkg/logging"
	"github.com/pgmask/pgmask/pkg/obfuscate"
	"github.com/pgmask/pgmask/pkg/relation"
)

const customMagic = "PGDMP"

// Driver owns the lifetime of one obfuscation run: it builds the
// generator registry and relation store once, constructs the line
// obfuscator, sniffs (or is told) which codec to drive, and sweeps temp
// files on exit.
type Driver struct {
	cfg    *Config
	logger logging.Logger
}

// New builds a Driver over cfg. If logger is nil a noop logger is used.
func New(cfg *Config, logger logging.Logger) *Driver {
	if logger == nil {
		logger = logging.NewNoop()
	}
	return &Driver{cfg: cfg, logger: logger}
}

// Run transforms r into w according to d.cfg, returning once the whole
// input has been consumed or a fatal error occurs.
func (d *Driver) Run(r io.Reader, w io.Writer) error {
	if d.cfg.TmpPrefix != "" {
		defer func() { _ = SweepTmpFiles(d.cfg.TmpDir, d.cfg.TmpPrefix) }()
	}

	ob := obfuscate.New(obfuscate.Config{
		Registry:       generator.New(d.cfg.Locale),
		Relations:      relation.New(),
		Delimiter:      d.cfg.Delimiter,
		DeletePatterns: d.cfg.DeleteByPattern,
		Logger:         d.logger,
	})

	mode, br, err := d.resolveMode(r)
	if err != nil {
		return err
	}

	switch mode {
	case ModePlain:
		return runPlain(br, w, ob)
	case ModeCustom:
		return dump.Process(br, w, ob, dump.Options{TmpDir: d.cfg.TmpDir, TmpPrefix: d.cfg.TmpPrefix})
	default:
		return fmt.Errorf("driver: unresolved mode %q", mode)
	}
}

// resolveMode returns the effective mode for this run and a reader that
// still yields every byte of the input, including whatever was peeked at
// during sniffing.
func (d *Driver) resolveMode(r io.Reader) (Mode, io.Reader, error) {
	if d.cfg.Mode == ModePlain || d.cfg.Mode == ModeCustom {
		return d.cfg.Mode, r, nil
	}

	br := bufio.NewReaderSize(r, len(customMagic))
	peeked, err := br.Peek(len(customMagic))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return "", nil, fmt.Errorf("driver: sniffing input: %w", err)
	}

	if bytes.Equal(peeked, []byte(customMagic)) {
		return ModeCustom, br, nil
	}
	return ModePlain, br, nil
}

// runPlain drives the line obfuscator over a newline-delimited SQL text
// dump, matching the custom-format codec's contract of always emitting a
// trailing newline after each kept line.
func runPlain(r io.Reader, w io.Writer, ob *obfuscate.Obfuscator) error {
	return dump.ProcessLines(r, w, ob)
}
