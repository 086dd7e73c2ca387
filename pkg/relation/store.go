// SPDX-License-Identifier: Apache-2.0

// Package relation implements the cross-row, cross-table relation key
// store: a two-level map from a source value to a synthetic relation
// key, and a second map from that key to the chosen replacement string,
// so two rows (possibly in different tables) that share a source value
// end up with the same obfuscated replacement.
package relation

import (
	"fmt"

	"github.com/google/uuid"
)

// Key is an opaque relation key minted the first time a source value is
// seen for a given (table:column, from_column) triple.
type Key string

// ErrInvalidKey reports a relation key present in fk_map with no
// corresponding entry in value_map. This indicates store corruption and
// is always fatal.
type ErrInvalidKey struct {
	Key Key
}

func (e ErrInvalidKey) Error() string {
	return fmt.Sprintf("relation: key %q present in fk_map has no value in value_map", e.Key)
}

// Store is the relation key store: fk_map keyed by
// (own_table:own_column) -> from_column_name -> source_value -> key, plus
// value_map keyed by key -> replacement. It is owned by a single
// obfuscator instance for the lifetime of one run and is not safe for
// concurrent mutation.
type Store struct {
	fk    map[string]map[string]map[string]Key
	value map[Key]string
}

// New returns an empty relation store.
func New() *Store {
	return &Store{
		fk:    make(map[string]map[string]map[string]Key),
		value: make(map[Key]string),
	}
}

func ownKey(table, column string) string {
	return table + ":" + column
}

// Lookup resolves the replacement already chosen for sourceValue under
// (ownTable:ownColumn, fromColumn), if any. The bool is false on a clean
// miss (the relation has never seen sourceValue); ErrInvalidKey is
// returned only when fk_map has a key but value_map is missing it, which
// can only happen if the store was corrupted.
func (s *Store) Lookup(ownTable, ownColumn, fromColumn, sourceValue string) (string, bool, error) {
	byColumn, ok := s.fk[ownKey(ownTable, ownColumn)]
	if !ok {
		return "", false, nil
	}

	byValue, ok := byColumn[fromColumn]
	if !ok {
		return "", false, nil
	}

	key, ok := byValue[sourceValue]
	if !ok {
		return "", false, nil
	}

	value, ok := s.value[key]
	if !ok {
		return "", false, ErrInvalidKey{Key: key}
	}

	return value, true, nil
}

// Record mints a fresh relation key for replacement (the caller has
// already confirmed no relation spec produced a hit) and records it
// under every (ownTable:ownColumn, fromColumn, sourceValue) triple
// supplied, so any future row that shares one of those source values
// resolves to the same replacement. See DESIGN.md for the
// from_column/to_column convention this asymmetric write/read shape
// implements.
func (s *Store) Record(ownTable, ownColumn string, bindings []Binding, replacement string) Key {
	key := Key(uuid.NewString())
	s.value[key] = replacement

	byColumn, ok := s.fk[ownKey(ownTable, ownColumn)]
	if !ok {
		byColumn = make(map[string]map[string]Key)
		s.fk[ownKey(ownTable, ownColumn)] = byColumn
	}

	for _, b := range bindings {
		byValue, ok := byColumn[b.FromColumn]
		if !ok {
			byValue = make(map[string]Key)
			byColumn[b.FromColumn] = byValue
		}
		byValue[b.SourceValue] = key
	}

	return key
}

// Binding is one (from_column, source_value) pair to record a freshly
// minted relation key under.
type Binding struct {
	FromColumn  string
	SourceValue string
}
