// SPDX-License-Identifier: Apache-2.0

// Package obfuscate implements the line obfuscator: the stateful
// plain-text state machine that recognizes directive comments and COPY
// headers, and rewrites COPY body rows according to the directives it has
// accumulated so far. It is the engine pkg/dump drives line-by-line over a
// custom-format archive's decompressed data blocks, and that pkg/driver
// drives line-by-line over a plain SQL dump (through dump.ProcessLines).
package obfuscate

import (
	"regexp"
	"strings"

	"github.com/pgmask/pgmask/pkg/directive"
	"github.com/pgmask/pgmask/pkg/generator"
	"github.com/pgmask/pgmask/pkg/logging"
	"github.com/pgmask/pgmask/pkg/relation"
)

const rowTerminator = `\.`

const defaultDelimiter = "\t"

// Config configures a new Obfuscator.
type Config struct {
	// Registry resolves mutation names to generator functions. Required.
	Registry *generator.Registry
	// Relations is the cross-row relation key store. Required.
	Relations *relation.Store
	// Delimiter separates COPY body fields. Defaults to a tab.
	Delimiter string
	// DeletePatterns are additional regular expressions matched against
	// table names; any match marks the table for deletion alongside
	// explicit `{"mutation_name":"delete"}` table directives.
	DeletePatterns []string
	// Logger receives directive-registration events. Defaults to a noop
	// logger.
	Logger logging.Logger
	// DryRun, when set, makes ParseLine register and validate directives
	// exactly as a normal run does but skip generating replacement
	// values for COPY body rows: every row is passed through unchanged.
	// Unknown mutation names are still reported as errors.
	DryRun bool
}

// Obfuscator is a single-threaded streaming state machine: at any moment
// it is either outside a COPY block or inside one, per spec. It owns the
// directive maps, the delete set, and a reference to the relation store
// and generator registry for the lifetime of one run.
type Obfuscator struct {
	registry  *generator.Registry
	relations *relation.Store
	logger    logging.Logger
	delimiter string

	deletePatterns []*regexp.Regexp
	deleteTables   map[string]struct{}

	// columnDirectives is table -> column -> ordered mutation entries.
	columnDirectives map[string]map[string][]directive.MutationEntry

	patternCache map[string]*regexp.Regexp

	dryRun bool
	row    rowContext
}

// rowContext is the state the obfuscator carries while inside a COPY
// body: the current table, its column order, and whether it is being
// deleted. It is reset at every COPY header and at every row terminator.
type rowContext struct {
	active   bool
	table    string
	columns  []string
	isDelete bool
}

// New builds an Obfuscator. Registry and Relations must be non-nil.
func New(cfg Config) *Obfuscator {
	delimiter := cfg.Delimiter
	if delimiter == "" {
		delimiter = defaultDelimiter
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNoop()
	}

	patterns := make([]*regexp.Regexp, 0, len(cfg.DeletePatterns))
	for _, p := range cfg.DeletePatterns {
		if re, err := regexp.Compile(p); err == nil {
			patterns = append(patterns, re)
		}
	}

	return &Obfuscator{
		registry:         cfg.Registry,
		relations:        cfg.Relations,
		logger:           logger,
		delimiter:        delimiter,
		deletePatterns:   patterns,
		deleteTables:     make(map[string]struct{}),
		columnDirectives: make(map[string]map[string][]directive.MutationEntry),
		patternCache:     make(map[string]*regexp.Regexp),
		dryRun:           cfg.DryRun,
	}
}

// Summary reports what ParseLine has registered so far: how many tables
// carry a delete directive, and how many columns across all tables carry
// at least one mutation entry. It is meant for a validation pass that
// wants to report what a run would do without performing one.
type Summary struct {
	DeleteTables  int
	MutatedTables int
	MutatedCols   int
}

// Summarize builds a Summary of the directives registered so far.
func (o *Obfuscator) Summarize() Summary {
	s := Summary{DeleteTables: len(o.deleteTables)}
	for _, cols := range o.columnDirectives {
		if len(cols) == 0 {
			continue
		}
		s.MutatedTables++
		s.MutatedCols += len(cols)
	}
	return s
}

// ParseLine is the line obfuscator's public contract: given one logical
// line with no trailing newline, it returns the line to emit and whether
// anything should be emitted at all (false means the row was dropped,
// e.g. a deleted table's body row). A non-nil error is always one of the
// fatal kinds (generator.UnknownMutationError,
// generator.UniquenessExhaustedError, generator.GeneratorFailureError, or
// relation.ErrInvalidKey); callers abort the run on any of them.
func (o *Obfuscator) ParseLine(line string) (string, bool, error) {
	if strings.HasPrefix(line, rowTerminator) {
		o.row = rowContext{}
		return line, true, nil
	}

	if o.row.active {
		return o.transformRow(line)
	}

	switch {
	case strings.HasPrefix(line, "COMMENT ON COLUMN "):
		return o.parseCommentColumn(line)
	case strings.HasPrefix(line, "COMMENT ON TABLE "):
		return o.parseCommentTable(line)
	case strings.HasPrefix(line, "COPY "):
		return o.parseCopyHeader(line)
	default:
		return line, true, nil
	}
}
