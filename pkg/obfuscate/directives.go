// SPDX-License-Identifier: Apache-2.0

package obfuscate

import (
	"github.com/pgmask/pgmask/pkg/directive"
	"github.com/pgmask/pgmask/pkg/generator"
)

const tableMutationDelete = "delete"

// parseCommentColumn handles a recognized `COMMENT ON COLUMN ` line. The
// comment line is always emitted unchanged; only a reference to an
// unregistered mutation name aborts the run.
func (o *Obfuscator) parseCommentColumn(line string) (string, bool, error) {
	target, err := directive.ParseCommentColumn(line)
	if err != nil {
		return line, true, nil
	}

	payload, ok := target.AnonJSON()
	if !ok {
		return line, true, nil
	}

	entries, err := directive.DecodeColumnPayload(payload)
	if err != nil {
		return line, true, nil
	}

	if len(target.Qualified) < 2 {
		return line, true, nil
	}
	columnName := target.Qualified[len(target.Qualified)-1]
	tableName := directive.JoinQualified(target.Qualified[:len(target.Qualified)-1])

	for _, entry := range entries {
		if !o.registry.Has(entry.MutationName) {
			return "", false, generator.UnknownMutationError{Name: entry.MutationName}
		}
	}

	byColumn, ok := o.columnDirectives[tableName]
	if !ok {
		byColumn = make(map[string][]directive.MutationEntry)
		o.columnDirectives[tableName] = byColumn
	}
	byColumn[columnName] = append(byColumn[columnName], entries...)

	o.logger.LogDirectiveRegistered("column", tableName, columnName)
	return line, true, nil
}

// parseCommentTable handles a recognized `COMMENT ON TABLE ` line.
// Unknown table mutation names are ignored, not fatal.
func (o *Obfuscator) parseCommentTable(line string) (string, bool, error) {
	target, err := directive.ParseCommentTable(line)
	if err != nil {
		return line, true, nil
	}

	payload, ok := target.AnonJSON()
	if !ok {
		return line, true, nil
	}

	mutationName, err := directive.DecodeTablePayload(payload)
	if err != nil {
		return line, true, nil
	}

	tableName := directive.JoinQualified(target.Qualified)

	if mutationName != tableMutationDelete {
		o.logger.LogUnknownTableMutation(tableName, mutationName)
		return line, true, nil
	}

	o.deleteTables[tableName] = struct{}{}
	o.logger.LogTableDeleted(tableName)
	return line, true, nil
}

// parseCopyHeader handles a recognized `COPY ` line. A syntactically
// valid COPY statement that isn't a FROM-stdin column-list copy never
// opens a row context.
func (o *Obfuscator) parseCopyHeader(line string) (string, bool, error) {
	header, err := directive.ParseCopyHeader(line)
	if err != nil || header == nil {
		return line, true, nil
	}

	o.row = rowContext{
		active:   true,
		table:    header.TableName,
		columns:  header.Columns,
		isDelete: o.isTableDeleted(header.TableName),
	}
	return line, true, nil
}

func (o *Obfuscator) isTableDeleted(table string) bool {
	if _, ok := o.deleteTables[table]; ok {
		return true
	}
	for _, p := range o.deletePatterns {
		if p.MatchString(table) {
			return true
		}
	}
	return false
}
