// SPDX-License-Identifier: Apache-2.0

package directive

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema_column.json
var columnSchemaJSON []byte

//go:embed schema_table.json
var tableSchemaJSON []byte

var (
	columnEntrySchema *jsonschema.Schema
	tableSchema       *jsonschema.Schema
)

func init() {
	columnEntrySchema = mustCompile("pgmask://column-mutation-entry.json", columnSchemaJSON)
	tableSchema = mustCompile("pgmask://table-mutation.json", tableSchemaJSON)
}

func mustCompile(id string, data []byte) *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		panic(fmt.Sprintf("directive: invalid embedded schema %s: %v", id, err))
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(id, doc); err != nil {
		panic(fmt.Sprintf("directive: could not register schema %s: %v", id, err))
	}

	sch, err := c.Compile(id)
	if err != nil {
		panic(fmt.Sprintf("directive: could not compile schema %s: %v", id, err))
	}
	return sch
}

// ErrMalformedPayload marks a directive JSON payload that failed to parse
// or validate. Callers treat it as the tolerant "pass the line through
// unchanged" case, never a fatal error.
var ErrMalformedPayload = fmt.Errorf("directive: malformed anon payload")

// DecodeColumnPayload parses the JSON payload of a `COMMENT ON COLUMN`
// anon directive. A single object is treated as a singleton array.
func DecodeColumnPayload(raw string) ([]MutationEntry, error) {
	var any1 any
	if err := json.Unmarshal([]byte(raw), &any1); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	var items []any
	switch v := any1.(type) {
	case []any:
		items = v
	case map[string]any:
		items = []any{v}
	default:
		return nil, fmt.Errorf("%w: expected object or array", ErrMalformedPayload)
	}

	entries := make([]MutationEntry, 0, len(items))
	for _, item := range items {
		if err := columnEntrySchema.Validate(item); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
		}

		encoded, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
		}

		var entry MutationEntry
		if err := json.Unmarshal(encoded, &entry); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// DecodeTablePayload parses the JSON payload of a `COMMENT ON TABLE` anon
// directive and returns its mutation_name.
func DecodeTablePayload(raw string) (string, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	if err := tableSchema.Validate(v); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return "", fmt.Errorf("%w: expected object", ErrMalformedPayload)
	}

	name, _ := obj["mutation_name"].(string)
	return name, nil
}
