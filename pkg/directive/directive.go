// SPDX-License-Identifier: Apache-2.0

// Package directive holds the immutable directive model parsed out of
// `COMMENT ON TABLE`/`COMMENT ON COLUMN` annotations in a dump.
package directive

import (
	"encoding/json"

	"github.com/oapi-codegen/nullable"
)

// Operation is the comparison a Condition performs against a row's column
// value.
type Operation string

const (
	OpEqual     Operation = "equal"
	OpNotEqual  Operation = "not_equal"
	OpByPattern Operation = "by_pattern"
)

// Condition gates whether a MutationEntry fires for a given row.
type Condition struct {
	ColumnName string    `json:"column_name"`
	Operation  Operation `json:"operation"`
	Value      string    `json:"value"`
}

// Relation declares that a mutation's replacement should be reused across
// rows (possibly in a different table) that share a source value.
type Relation struct {
	TableName      string `json:"table_name"`
	ColumnName     string `json:"column_name"`
	FromColumnName string `json:"from_column_name"`
	ToColumnName   string `json:"to_column_name"`
}

// Kwargs is the opaque parameter bundle passed to a generator. Values that
// are meaningfully three-state (absent / JSON null / present) are decoded
// through nullable.Nullable so mutation implementations can tell "use the
// default" apart from "explicitly null".
type Kwargs struct {
	Unique  bool                      `json:"unique,omitempty"`
	Value   nullable.Nullable[string] `json:"value,omitempty"`
	Choices nullable.Nullable[[]string] `json:"choices,omitempty"`
	Raw     map[string]any            `json:"-"`
}

// UnmarshalJSON decodes known kwargs fields while retaining the full
// payload in Raw so generator-specific fields (format, start_date,
// max_length, ...) remain available without a schema per mutation.
func (k *Kwargs) UnmarshalJSON(data []byte) error {
	type alias Kwargs
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*k = Kwargs(a)
	if err := json.Unmarshal(data, &k.Raw); err != nil {
		return err
	}
	return nil
}

// MutationEntry is one element of a column directive's ordered mutation
// list.
type MutationEntry struct {
	MutationName   string      `json:"mutation_name"`
	MutationKwargs Kwargs      `json:"mutation_kwargs"`
	Relations      []Relation  `json:"relations"`
	Conditions     []Condition `json:"conditions"`
}

// Column is the ordered list of mutation entries registered for a
// (table, column) pair.
type Column struct {
	TableName  string
	ColumnName string
	Mutations  []MutationEntry
}

// Table is a table-level directive. Currently the only table mutation is
// "delete"; it is modeled as a set membership rather than an enum of one.
type Table struct {
	TableName string
}
