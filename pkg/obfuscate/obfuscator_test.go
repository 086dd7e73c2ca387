// SPDX-License-Identifier: Apache-2.0

package obfuscate_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgmask/pgmask/pkg/generator"
	"github.com/pgmask/pgmask/pkg/obfuscate"
	"github.com/pgmask/pgmask/pkg/relation"
)

func newTestObfuscator() *obfuscate.Obfuscator {
	return obfuscate.New(obfuscate.Config{
		Registry:  generator.New("en"),
		Relations: relation.New(),
	})
}

// S1 — table delete.
func TestParseLine_TableDelete(t *testing.T) {
	o := newTestObfuscator()

	lines := []string{
		`COMMENT ON TABLE table_1 IS 'anon: {"mutation_name": "delete"}';`,
		`COPY table_1 (id,message) FROM stdin;`,
		"1\thello",
		"2\tworld",
		`\.`,
	}

	var out []string
	for _, line := range lines {
		emitted, ok, err := o.ParseLine(line)
		require.NoError(t, err)
		if ok {
			out = append(out, emitted)
		}
	}

	assert.Equal(t, []string{
		`COMMENT ON TABLE table_1 IS 'anon: {"mutation_name": "delete"}';`,
		`COPY table_1 (id,message) FROM stdin;`,
		`\.`,
	}, out)
}

// S2 — column null.
func TestParseLine_ColumnNull(t *testing.T) {
	o := newTestObfuscator()

	mustParse(t, o, `COMMENT ON COLUMN t.email IS 'anon: [{"mutation_name":"null"}]';`)
	mustParse(t, o, `COPY t (id,email) FROM stdin;`)

	row, ok, err := o.ParseLine("1\tfoo@x")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1\t\\N", row)
}

// S3 — equal condition.
func TestParseLine_EqualCondition(t *testing.T) {
	o := newTestObfuscator()

	mustParse(t, o, `COMMENT ON COLUMN t.email IS 'anon: [{"mutation_name":"email","conditions":[{"column_name":"id","operation":"equal","value":"1"}]}]';`)
	mustParse(t, o, `COPY t (id,email) FROM stdin;`)

	row1, _, err := o.ParseLine("1\tfoo@x")
	require.NoError(t, err)
	assert.NotEqual(t, "1\tfoo@x", row1)

	row2, _, err := o.ParseLine("2\tbar@y")
	require.NoError(t, err)
	assert.Equal(t, "2\tbar@y", row2)
}

// S4 — relation across two tables.
func TestParseLine_RelationAcrossTables(t *testing.T) {
	reg := generator.New("en")
	rel := relation.New()
	o := obfuscate.New(obfuscate.Config{Registry: reg, Relations: rel})

	directiveJSON := `anon: [{"mutation_name":"uuid4","relations":[{"table_name":"%s","column_name":"user_id","from_column_name":"user_id","to_column_name":"user_id"}]}]`

	mustParse(t, o, `COMMENT ON COLUMN t1.user_id IS '`+fmt.Sprintf(directiveJSON, "t2")+`';`)
	mustParse(t, o, `COMMENT ON COLUMN t2.user_id IS '`+fmt.Sprintf(directiveJSON, "t1")+`';`)

	mustParse(t, o, `COPY t1 (user_id,name) FROM stdin;`)
	row1, _, err := o.ParseLine("1\tA")
	require.NoError(t, err)
	mustParse(t, o, `\.`)

	mustParse(t, o, `COPY t2 (user_id,name) FROM stdin;`)
	row2, _, err := o.ParseLine("1\tB")
	require.NoError(t, err)
	mustParse(t, o, `\.`)

	field1 := row1[:len(row1)-len("\tA")]
	field2 := row2[:len(row2)-len("\tB")]
	assert.Equal(t, field1, field2)
	assert.NotEqual(t, "1", field1)
}

// S6 — two mutations, condition selects second.
func TestParseLine_ConditionSelectsEntry(t *testing.T) {
	o := newTestObfuscator()

	mustParse(t, o, `COMMENT ON COLUMN t.v IS 'anon: [`+
		`{"mutation_name":"fixed_value","mutation_kwargs":{"value":"A"},"conditions":[{"column_name":"id","operation":"equal","value":"1"}]},`+
		`{"mutation_name":"fixed_value","mutation_kwargs":{"value":"B"},"conditions":[{"column_name":"id","operation":"equal","value":"2"}]}`+
		`]';`)
	mustParse(t, o, `COPY t (id,v) FROM stdin;`)

	row3, _, err := o.ParseLine("3\tx")
	require.NoError(t, err)
	assert.Equal(t, "3\tx", row3)

	row1, _, err := o.ParseLine("1\tx")
	require.NoError(t, err)
	assert.Equal(t, "1\tA", row1)

	row2, _, err := o.ParseLine("2\tx")
	require.NoError(t, err)
	assert.Equal(t, "2\tB", row2)
}

// Multiple conditions on one entry are an OR: the entry fires if any one
// of them matches, not only if all of them do.
func TestParseLine_MultipleConditionsIsOr(t *testing.T) {
	o := newTestObfuscator()

	mustParse(t, o, `COMMENT ON COLUMN t.v IS 'anon: [{"mutation_name":"fixed_value","mutation_kwargs":{"value":"HIT"},`+
		`"conditions":[{"column_name":"a","operation":"equal","value":"x"},{"column_name":"b","operation":"equal","value":"y"}]}]';`)
	mustParse(t, o, `COPY t (a,b,v) FROM stdin;`)

	// Only the second condition matches; the entry still fires since
	// conditions within one entry are an OR, not an AND.
	row, _, err := o.ParseLine("no\ty\tv")
	require.NoError(t, err)
	assert.Equal(t, "no\ty\tHIT", row)

	// Neither condition matches: the entry does not fire.
	row2, _, err := o.ParseLine("no\tno\tv")
	require.NoError(t, err)
	assert.Equal(t, "no\tno\tv", row2)
}

func TestParseLine_PassThroughOutsideCopyBody(t *testing.T) {
	o := newTestObfuscator()

	for _, line := range []string{
		"SET statement_timeout = 0;",
		"CREATE TABLE table_1 (id integer, message text);",
		"-- a comment that is not a directive",
	} {
		out, ok, err := o.ParseLine(line)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, line, out)
	}
}

func TestParseLine_UnknownMutationIsFatal(t *testing.T) {
	o := newTestObfuscator()

	_, _, err := o.ParseLine(`COMMENT ON COLUMN t.v IS 'anon: [{"mutation_name":"not_a_real_mutation"}]';`)
	require.Error(t, err)
	assert.IsType(t, generator.UnknownMutationError{}, err)
}

func mustParse(t *testing.T, o *obfuscate.Obfuscator, line string) {
	t.Helper()
	_, _, err := o.ParseLine(line)
	require.NoError(t, err)
}
