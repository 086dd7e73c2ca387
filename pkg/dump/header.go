// SPDX-License-Identifier: Apache-2.0

package dump

import (
	"io"
	"time"
)

// CompressionMethod is the archive-wide compression scheme declared in
// the header.
type CompressionMethod int

const (
	CompressionNone CompressionMethod = iota
	CompressionGzip
	CompressionLZ4
	CompressionZlib
)

// version is the three-byte (major, minor, rev) archive format version.
type version [3]byte

var (
	minSupportedVersion = version{1, 12, 0}
	maxSupportedVersion = version{1, 16, 0}
	v1_14               = version{1, 14, 0}
	v1_15               = version{1, 15, 0}
)

func (v version) less(other version) bool {
	for i := range v {
		if v[i] != other[i] {
			return v[i] < other[i]
		}
	}
	return false
}

func (v version) greater(other version) bool { return other.less(v) }

func (v version) atLeast(other version) bool { return !v.less(other) }

// Header is the parsed form of the custom archive's fixed header.
type Header struct {
	Version           version
	IntSize           int
	OffsetSize        int
	CompressionMethod CompressionMethod
	CreateDate        time.Time
	DatabaseName      string
	ServerVersion     string
	PgDumpVersion     string
}

func parseHeader(r io.Reader, dio *BinaryIO) (*Header, error) {
	magic := make([]byte, len(magicHeader))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, err
	}
	if string(magic) != magicHeader {
		return nil, InvalidCustomFormatError{Reason: "bad magic header"}
	}

	var v version
	for i := range v {
		b, err := dio.ReadByte(r)
		if err != nil {
			return nil, err
		}
		v[i] = b
	}
	if v.less(minSupportedVersion) || v.greater(maxSupportedVersion) {
		return nil, UnsupportedVersionError{Version: v}
	}

	intSize, err := dio.ReadByte(r)
	if err != nil {
		return nil, err
	}
	offsetSize, err := dio.ReadByte(r)
	if err != nil {
		return nil, err
	}
	dio.IntSize = int(intSize)
	dio.OffsetSize = int(offsetSize)

	format, err := dio.ReadByte(r)
	if err != nil {
		return nil, err
	}
	if format != customFormatByte {
		return nil, InvalidCustomFormatError{Reason: "unsupported format byte"}
	}

	compression, err := parseCompression(r, dio, v)
	if err != nil {
		return nil, err
	}

	createDate, err := parseCreateDate(r, dio)
	if err != nil {
		return nil, err
	}

	databaseName, err := dio.ReadString(r)
	if err != nil {
		return nil, err
	}
	serverVersion, err := dio.ReadString(r)
	if err != nil {
		return nil, err
	}
	pgDumpVersion, err := dio.ReadString(r)
	if err != nil {
		return nil, err
	}

	return &Header{
		Version:           v,
		IntSize:           dio.IntSize,
		OffsetSize:        dio.OffsetSize,
		CompressionMethod: compression,
		CreateDate:        createDate,
		DatabaseName:      databaseName,
		ServerVersion:     serverVersion,
		PgDumpVersion:     pgDumpVersion,
	}, nil
}

func parseCompression(r io.Reader, dio *BinaryIO, v version) (CompressionMethod, error) {
	if v.atLeast(v1_15) {
		b, err := dio.ReadByte(r)
		if err != nil {
			return 0, err
		}
		switch b {
		case 0:
			return CompressionNone, nil
		case 1:
			return CompressionGzip, nil
		case 2:
			return CompressionLZ4, nil
		case 3:
			return CompressionZlib, nil
		default:
			return 0, InvalidCustomFormatError{Reason: "unknown compression method byte"}
		}
	}

	n, err := dio.ReadInt(r)
	if err != nil {
		return 0, err
	}
	switch {
	case n == -1:
		return CompressionZlib, nil
	case n == 0:
		return CompressionNone, nil
	case n >= 1 && n <= 9:
		return CompressionGzip, nil
	default:
		return 0, InvalidCustomFormatError{Reason: "invalid legacy compression level"}
	}
}

func parseCreateDate(r io.Reader, dio *BinaryIO) (time.Time, error) {
	sec, err := dio.ReadInt(r)
	if err != nil {
		return time.Time{}, err
	}
	minute, err := dio.ReadInt(r)
	if err != nil {
		return time.Time{}, err
	}
	hour, err := dio.ReadInt(r)
	if err != nil {
		return time.Time{}, err
	}
	day, err := dio.ReadInt(r)
	if err != nil {
		return time.Time{}, err
	}
	month, err := dio.ReadInt(r)
	if err != nil {
		return time.Time{}, err
	}
	year, err := dio.ReadInt(r)
	if err != nil {
		return time.Time{}, err
	}
	if _, err := dio.ReadInt(r); err != nil { // isdst, ignored
		return time.Time{}, err
	}

	return time.Date(int(year)+1900, time.Month(month+1), int(day), int(hour), int(minute), int(sec), 0, time.UTC), nil
}
