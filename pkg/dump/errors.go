// SPDX-License-Identifier: Apache-2.0

package dump

import "fmt"

// InvalidCustomFormatError reports that the magic, version,
// integer/offset size, format byte, compression code, or TOC structure
// violated the custom archive grammar.
type InvalidCustomFormatError struct {
	Reason string
}

func (e InvalidCustomFormatError) Error() string {
	return fmt.Sprintf("dump: invalid custom format archive: %s", e.Reason)
}

// UnsupportedVersionError reports that the archive's format version
// falls outside [1.12.0, 1.16.0].
type UnsupportedVersionError struct {
	Version [3]byte
}

func (e UnsupportedVersionError) Error() string {
	return fmt.Sprintf("dump: unsupported archive version %d.%d.%d", e.Version[0], e.Version[1], e.Version[2])
}

// UnexpectedEOFError reports that the stream ended inside a framed
// structure.
type UnexpectedEOFError struct {
	Context string
}

func (e UnexpectedEOFError) Error() string {
	return fmt.Sprintf("dump: unexpected EOF while reading %s", e.Context)
}

// ChunkTooLargeError reports that a single zlib frame exceeded the
// safety cap.
type ChunkTooLargeError struct {
	Size int64
	Max  int64
}

func (e ChunkTooLargeError) Error() string {
	return fmt.Sprintf("dump: chunk size %d exceeds maximum %d", e.Size, e.Max)
}

// DecompressionError reports that the inflate library returned an error.
type DecompressionError struct {
	Err error
}

func (e DecompressionError) Error() string { return fmt.Sprintf("dump: decompression error: %v", e.Err) }
func (e DecompressionError) Unwrap() error { return e.Err }

// CompressionError reports that the deflate library returned an error.
type CompressionError struct {
	Err error
}

func (e CompressionError) Error() string { return fmt.Sprintf("dump: compression error: %v", e.Err) }
func (e CompressionError) Unwrap() error { return e.Err }

// UnsupportedCompressionError reports that the archive declares a
// compression method (LZ4, gzip) the data-block codec does not implement
// a decoder for. Raised lazily, at the point a DATA block would actually
// be transformed, not at header-parse time.
type UnsupportedCompressionError struct {
	Method CompressionMethod
}

func (e UnsupportedCompressionError) Error() string {
	return fmt.Sprintf("dump: unsupported compression method %d for data block transform", e.Method)
}

// BlockTransformError wraps a fatal error raised while transforming a
// single DATA block's rows, identifying which TOC dump_id it happened
// under.
type BlockTransformError struct {
	DumpID int64
	Err    error
}

func (e BlockTransformError) Error() string {
	return fmt.Sprintf("dump: transforming block for dump_id %d: %v", e.DumpID, e.Err)
}

func (e BlockTransformError) Unwrap() error { return e.Err }
