// SPDX-License-Identifier: Apache-2.0

package dump

import (
	"io"

	"github.com/pgmask/pgmask/pkg/obfuscate"
)

// passthroughCompressed copies a zlib frame sequence
// ((int len)(bytes))* (int 0) byte-for-byte without decompressing.
func passthroughCompressed(r io.Reader, w io.Writer, dio *BinaryIO) error {
	for {
		n, err := dio.ReadInt(r)
		if err != nil {
			return err
		}
		if err := dio.WriteInt(w, n); err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		if n < 0 || n > maxChunkSize {
			return ChunkTooLargeError{Size: n, Max: maxChunkSize}
		}
		if _, err := io.CopyN(w, r, n); err != nil {
			return err
		}
	}
}

// passthroughPlain copies a single size-prefixed, uncompressed block
// byte-for-byte: one (int size)(bytes) pair, no frame repetition.
func passthroughPlain(r io.Reader, w io.Writer, dio *BinaryIO) error {
	size, err := dio.ReadInt(r)
	if err != nil {
		return err
	}
	if err := dio.WriteInt(w, size); err != nil {
		return err
	}
	if size <= 0 {
		return nil
	}
	if size > maxChunkSize {
		return ChunkTooLargeError{Size: size, Max: maxChunkSize}
	}
	_, err = io.CopyN(w, r, size)
	return err
}

// passthroughBlock copies a DATA or BLOBS block's payload unchanged,
// choosing framing by the archive's declared compression method. BLOBS
// blocks always take this path, and so do DATA blocks whose dump_id is
// not a transform target.
func passthroughBlock(r io.Reader, w io.Writer, dio *BinaryIO, method CompressionMethod) error {
	if method == CompressionNone {
		return passthroughPlain(r, w, dio)
	}
	return passthroughCompressed(r, w, dio)
}

// transformBlock decompresses (or reads) a DATA block's payload, runs
// every line through ob, and re-encodes the result, recomputing the
// block's size/frame boundaries since transformed rows rarely keep the
// exact byte length of the originals.
func transformBlock(r io.Reader, w io.Writer, dio *BinaryIO, method CompressionMethod, ob *obfuscate.Obfuscator, opts Options) error {
	switch method {
	case CompressionNone:
		return transformBlockPlain(r, w, dio, ob, opts)
	case CompressionZlib:
		return transformBlockZlib(r, w, dio, ob)
	default:
		return UnsupportedCompressionError{Method: method}
	}
}

func transformBlockZlib(r io.Reader, w io.Writer, dio *BinaryIO, ob *obfuscate.Obfuscator) error {
	fr, err := newFrameReader(r, dio)
	if err != nil {
		return err
	}
	fw := newFrameWriter(w, dio)

	if err := streamProcessLines(fr, fw, ob); err != nil {
		_ = fr.Close()
		_ = fw.Close()
		return err
	}
	if err := fr.Close(); err != nil {
		return err
	}
	return fw.Close()
}

// transformBlockPlain spools the transformed rows to a temp file, since
// the uncompressed framing requires the output size up front, then
// copies the spool into w behind a freshly computed size prefix.
func transformBlockPlain(r io.Reader, w io.Writer, dio *BinaryIO, ob *obfuscate.Obfuscator, opts Options) error {
	size, err := dio.ReadInt(r)
	if err != nil {
		return err
	}
	if size < 0 || size > maxChunkSize {
		return ChunkTooLargeError{Size: size, Max: maxChunkSize}
	}

	spool, err := newSpoolFile(opts.TmpDir, opts.prefix())
	if err != nil {
		return err
	}
	defer spool.Close()

	if err := streamProcessLines(io.LimitReader(r, size), spool, ob); err != nil {
		return err
	}

	newSize, err := spool.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if _, err := spool.Seek(0, io.SeekStart); err != nil {
		return err
	}

	if err := dio.WriteInt(w, newSize); err != nil {
		return err
	}
	_, err = io.Copy(w, spool)
	return err
}
