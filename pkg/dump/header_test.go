// SPDX-License-Identifier: Apache-2.0

package dump

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestHeader builds a minimal valid v1.15 header byte stream, the
// shape parseHeader expects: magic, version, int/offset size, format
// byte, a single compression byte, a 7-int creation date, and three
// header strings.
func writeTestHeader(t *testing.T, v version, compression byte) []byte {
	t.Helper()

	dio := NewBinaryIO()
	var buf bytes.Buffer

	buf.WriteString(magicHeader)
	buf.Write(v[:])
	buf.WriteByte(byte(dio.IntSize))
	buf.WriteByte(byte(dio.OffsetSize))
	buf.WriteByte(customFormatByte)
	buf.WriteByte(compression)

	for _, n := range []int64{0, 0, 12, 1, 0, 124, 0} { // sec,min,hour,day,month,year(-1900),isdst
		require.NoError(t, dio.WriteInt(&buf, n))
	}

	for _, s := range []string{"testdb", "16.0", "16.0"} {
		require.NoError(t, dio.WriteInt(&buf, int64(len(s))))
		buf.WriteString(s)
	}

	return buf.Bytes()
}

func TestParseHeader_ValidV115(t *testing.T) {
	raw := writeTestHeader(t, version{1, 15, 0}, 3) // 3 = zlib

	h, err := parseHeader(bytes.NewReader(raw), NewBinaryIO())
	require.NoError(t, err)

	assert.Equal(t, CompressionZlib, h.CompressionMethod)
	assert.Equal(t, "testdb", h.DatabaseName)
	assert.Equal(t, "16.0", h.ServerVersion)
	assert.Equal(t, 2024, h.CreateDate.Year())
	assert.Equal(t, 1, h.CreateDate.Day())
}

func TestParseHeader_BadMagic(t *testing.T) {
	raw := writeTestHeader(t, version{1, 15, 0}, 0)
	raw[0] = 'X'

	_, err := parseHeader(bytes.NewReader(raw), NewBinaryIO())
	require.Error(t, err)

	var invalid InvalidCustomFormatError
	assert.ErrorAs(t, err, &invalid)
}

func TestParseHeader_UnsupportedVersion(t *testing.T) {
	raw := writeTestHeader(t, version{1, 20, 0}, 0)

	_, err := parseHeader(bytes.NewReader(raw), NewBinaryIO())
	require.Error(t, err)

	var unsupported UnsupportedVersionError
	assert.ErrorAs(t, err, &unsupported)
}

func TestParseHeader_LegacyCompressionEncoding(t *testing.T) {
	dio := NewBinaryIO()
	v := version{1, 12, 0}

	var buf bytes.Buffer
	buf.WriteString(magicHeader)
	buf.Write(v[:])
	buf.WriteByte(byte(dio.IntSize))
	buf.WriteByte(byte(dio.OffsetSize))
	buf.WriteByte(customFormatByte)
	require.NoError(t, dio.WriteInt(&buf, -1)) // legacy: -1 means zlib

	for _, n := range []int64{0, 0, 0, 1, 0, 124, 0} {
		require.NoError(t, dio.WriteInt(&buf, n))
	}
	for _, s := range []string{"db", "16.0", "16.0"} {
		require.NoError(t, dio.WriteInt(&buf, int64(len(s))))
		buf.WriteString(s)
	}

	h, err := parseHeader(bytes.NewReader(buf.Bytes()), NewBinaryIO())
	require.NoError(t, err)
	assert.Equal(t, CompressionZlib, h.CompressionMethod)
}

func TestVersion_Comparisons(t *testing.T) {
	assert.True(t, version{1, 12, 0}.less(version{1, 15, 0}))
	assert.True(t, version{1, 16, 0}.greater(version{1, 15, 0}))
	assert.True(t, version{1, 15, 0}.atLeast(version{1, 15, 0}))
	assert.False(t, version{1, 14, 0}.atLeast(version{1, 15, 0}))
}
