// SPDX-License-Identifier: Apache-2.0

package dump_test

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgmask/pgmask/pkg/dump"
	"github.com/pgmask/pgmask/pkg/generator"
	"github.com/pgmask/pgmask/pkg/obfuscate"
	"github.com/pgmask/pgmask/pkg/relation"
)

// buildArchive assembles a minimal v1.15 custom-format archive: a
// header, a TOC with the given entries, one DATA block per TABLE DATA
// entry, and a terminating END byte. Every DATA block is
// zlib-compressed, matching what pg_dump -Fc emits by default.
type tocEntrySpec struct {
	dumpID   int64
	desc     string
	defN     string
	copyStmt string
	body     string // raw COPY-body bytes for a TABLE DATA entry; compressed per-block
}

func buildArchive(t *testing.T, entries []tocEntrySpec) []byte {
	t.Helper()
	dio := dump.NewBinaryIO()

	var buf bytes.Buffer
	buf.WriteString("PGDMP")
	buf.Write([]byte{1, 15, 0})
	buf.WriteByte(byte(dio.IntSize))
	buf.WriteByte(byte(dio.OffsetSize))
	buf.WriteByte(1)    // format byte
	buf.WriteByte(3)    // compression: zlib
	for _, n := range []int64{0, 0, 12, 1, 0, 124, 0} {
		require.NoError(t, dio.WriteInt(&buf, n))
	}
	for _, s := range []string{"testdb", "16.0", "16.0"} {
		require.NoError(t, dio.WriteInt(&buf, int64(len(s))))
		buf.WriteString(s)
	}

	writeStr := func(s string) {
		require.NoError(t, dio.WriteInt(&buf, int64(len(s))))
		buf.WriteString(s)
	}

	require.NoError(t, dio.WriteInt(&buf, int64(len(entries))))
	for _, e := range entries {
		require.NoError(t, dio.WriteInt(&buf, e.dumpID))
		require.NoError(t, dio.WriteInt(&buf, 0)) // had_dumper
		writeStr("")                              // table_oid
		writeStr("")                              // oid
		writeStr(e.desc)                          // tag
		writeStr(e.desc)                          // desc
		require.NoError(t, dio.WriteInt(&buf, 0)) // section
		writeStr(e.defN)
		writeStr("") // drop_stmt
		writeStr(e.copyStmt)
		writeStr("")                              // namespace
		writeStr("")                              // tablespace
		writeStr("")                              // table_am (v1.15 >= v1.14)
		writeStr("")                              // owner
		writeStr("")                              // with_oids
		require.NoError(t, dio.WriteInt(&buf, 0)) // no dependencies
		buf.WriteByte(0)                          // data_state
		buf.Write(make([]byte, dio.OffsetSize))   // offset
	}

	for _, e := range entries {
		if e.desc != "TABLE DATA" {
			continue
		}
		buf.WriteByte(0x01) // blockTypeData
		require.NoError(t, dio.WriteInt(&buf, e.dumpID))

		var compressed bytes.Buffer
		zw := zlib.NewWriter(&compressed)
		_, err := zw.Write([]byte(e.body))
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		require.NoError(t, dio.WriteInt(&buf, int64(compressed.Len())))
		buf.Write(compressed.Bytes())
		require.NoError(t, dio.WriteInt(&buf, 0)) // frame terminator
	}
	buf.WriteByte(0x04) // blockTypeEnd

	return buf.Bytes()
}

func newTestObfuscator() *obfuscate.Obfuscator {
	return obfuscate.New(obfuscate.Config{
		Registry:  generator.New("en"),
		Relations: relation.New(),
	})
}

func TestProcess_PassThroughWithNoDirectives(t *testing.T) {
	archive := buildArchive(t, []tocEntrySpec{
		{dumpID: 1, desc: "TABLE DATA", copyStmt: "COPY t (id,val) FROM stdin;\n", body: "1\thello\n2\tworld\n"},
	})

	var out bytes.Buffer
	require.NoError(t, dump.Process(bytes.NewReader(archive), &out, newTestObfuscator(), dump.Options{}))

	assert.Equal(t, archive, out.Bytes())
}

func TestProcess_TableDeleteEmptiesDataBlock(t *testing.T) {
	archive := buildArchive(t, []tocEntrySpec{
		{dumpID: 1, desc: "COMMENT", defN: `COMMENT ON TABLE t IS 'anon: {"mutation_name":"delete"}';`},
		{dumpID: 2, desc: "TABLE DATA", copyStmt: "COPY t (id,val) FROM stdin;\n", body: "1\thello\n2\tworld\n"},
	})

	var out bytes.Buffer
	require.NoError(t, dump.Process(bytes.NewReader(archive), &out, newTestObfuscator(), dump.Options{}))

	assert.NotEqual(t, archive, out.Bytes())
	assert.Less(t, out.Len(), len(archive))
}

func TestProcess_ColumnMutationRewritesRows(t *testing.T) {
	archive := buildArchive(t, []tocEntrySpec{
		{dumpID: 1, desc: "COMMENT", defN: `COMMENT ON COLUMN t.val IS 'anon: {"mutation_name":"fixed_value","mutation_kwargs":{"value":"REDACTED"}}';`},
		{dumpID: 2, desc: "TABLE DATA", copyStmt: "COPY t (id,val) FROM stdin;\n", body: "1\tsecret\n"},
	})

	var out bytes.Buffer
	require.NoError(t, dump.Process(bytes.NewReader(archive), &out, newTestObfuscator(), dump.Options{}))

	assert.NotEqual(t, archive, out.Bytes())
}
