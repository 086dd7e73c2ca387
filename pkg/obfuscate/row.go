// SPDX-License-Identifier: Apache-2.0

package obfuscate

import (
	"strings"

	"github.com/pgmask/pgmask/pkg/directive"
	"github.com/pgmask/pgmask/pkg/generator"
	"github.com/pgmask/pgmask/pkg/relation"
)

// transformRow rewrites one COPY body row according to the directives
// registered for its table. It is only reached while a row context is
// active.
func (o *Obfuscator) transformRow(line string) (string, bool, error) {
	if o.row.isDelete {
		return "", false, nil
	}

	tableCols := o.columnDirectives[o.row.table]
	if len(tableCols) == 0 {
		return line, true, nil
	}

	if o.dryRun {
		for _, entries := range tableCols {
			for _, entry := range entries {
				if !o.registry.Has(entry.MutationName) {
					return "", false, generator.UnknownMutationError{Name: entry.MutationName}
				}
			}
		}
		return line, true, nil
	}

	values := strings.Split(line, o.delimiter)

	row := make(map[string]string, len(values))
	for i, column := range o.row.columns {
		if i < len(values) {
			row[column] = values[i]
		}
	}

	out := make([]string, len(values))
	copy(out, values)

	for i, column := range o.row.columns {
		if i >= len(values) {
			break
		}

		entries := tableCols[column]
		if len(entries) == 0 {
			continue
		}

		for _, entry := range entries {
			if !o.evaluateConditions(entry.Conditions, row) {
				continue
			}

			replacement, err := o.resolve(entry, o.row.table, column, row)
			if err != nil {
				return "", false, err
			}

			out[i] = replacement
			row[column] = replacement
			break
		}
	}

	return strings.Join(out, o.delimiter), true, nil
}

// resolve produces the replacement value for one winning mutation entry.
// Relations take precedence over fresh generation: a hit in the relation
// store is reused verbatim; a miss mints a fresh value and records it
// under every relation spec so future rows resolve to it too.
//
// The read and write sides intentionally use different own-keys (see
// DESIGN.md): a write lands under the current (table:column,
// from_column_name), which is exactly where a relation spec declaring
// the reverse pairing (table_name/column_name == this table/column,
// to_column_name == this from_column_name) looks it up.
func (o *Obfuscator) resolve(entry directive.MutationEntry, table, column string, row map[string]string) (string, error) {
	if len(entry.Relations) == 0 {
		return o.registry.Generate(entry.MutationName, entry.MutationKwargs, row)
	}

	for _, rel := range entry.Relations {
		sourceValue := row[rel.FromColumnName]
		value, hit, err := o.relations.Lookup(rel.TableName, rel.ColumnName, rel.ToColumnName, sourceValue)
		if err != nil {
			return "", err
		}
		if hit {
			return value, nil
		}
	}

	value, err := o.registry.Generate(entry.MutationName, entry.MutationKwargs, row)
	if err != nil {
		return "", err
	}

	bindings := make([]relation.Binding, 0, len(entry.Relations))
	for _, rel := range entry.Relations {
		bindings = append(bindings, relation.Binding{
			FromColumn:  rel.FromColumnName,
			SourceValue: row[rel.FromColumnName],
		})
	}
	o.relations.Record(table, column, bindings, value)

	return value, nil
}
