// SPDX-License-Identifier: Apache-2.0

package dump

import (
	"io"

	"github.com/klauspost/compress/zlib"
)

// A compressed data block on the wire is a sequence of
// (int length)(bytes payload) frames terminated by a zero-length frame,
// each payload being a raw zlib-compressed chunk. frameReader/frameWriter
// turn that framing into a plain io.Reader/io.Writer of the decompressed
// bytes, replacing a manual decompressor/compressor accumulation loop
// with idiomatic Go io wrapping.

// frameReader decompresses a frame-chunked zlib stream as it is read.
type frameReader struct {
	src *BinaryIO
	pr  *io.PipeReader
	zr  io.ReadCloser
}

func newFrameReader(r io.Reader, dio *BinaryIO) (*frameReader, error) {
	pr, pw := io.Pipe()

	go func() {
		for {
			n, err := dio.ReadInt(r)
			if err != nil {
				pw.CloseWithError(err)
				return
			}
			if n == 0 {
				pw.Close()
				return
			}
			if n < 0 || n > maxChunkSize {
				pw.CloseWithError(ChunkTooLargeError{Size: n, Max: maxChunkSize})
				return
			}

			if _, err := io.CopyN(pw, r, n); err != nil {
				pw.CloseWithError(err)
				return
			}
		}
	}()

	zr, err := zlib.NewReader(pr)
	if err != nil {
		return nil, DecompressionError{Err: err}
	}
	return &frameReader{src: dio, pr: pr, zr: zr}, nil
}

func (f *frameReader) Read(p []byte) (int, error) {
	n, err := f.zr.Read(p)
	if err != nil && err != io.EOF {
		return n, DecompressionError{Err: err}
	}
	return n, err
}

// Close closes both the zlib reader and the underlying pipe, so the
// frame-feeding goroutine launched in newFrameReader unblocks (with
// io.ErrClosedPipe) rather than leaking if it is ever abandoned before
// it reaches the terminating zero-length frame itself.
func (f *frameReader) Close() error {
	err := f.zr.Close()
	if pipeErr := f.pr.Close(); err == nil {
		err = pipeErr
	}
	return err
}

// frameWriter compresses writes and emits the compressed bytes as
// length-prefixed frames, finishing with a trailing zero-length frame on
// Close. Write takes raw (decompressed) bytes, matching io.Writer.
type frameWriter struct {
	dst  *BinaryIO
	w    io.Writer
	zw   *zlib.Writer
	sink frameSink
}

type frameSink struct {
	dst *BinaryIO
	w   io.Writer
	buf []byte
}

// Write accumulates already-compressed bytes and flushes them as a frame
// once the soft limit is reached.
func (s *frameSink) Write(p []byte) (int, error) {
	s.buf = append(s.buf, p...)
	if len(s.buf) >= zlibFrameSoftLimit {
		if err := s.flush(); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

func (s *frameSink) flush() error {
	if len(s.buf) == 0 {
		return nil
	}
	if err := s.dst.WriteInt(s.w, int64(len(s.buf))); err != nil {
		return err
	}
	if _, err := s.w.Write(s.buf); err != nil {
		return err
	}
	s.buf = s.buf[:0]
	return nil
}

func newFrameWriter(w io.Writer, dio *BinaryIO) *frameWriter {
	fw := &frameWriter{dst: dio, w: w, sink: frameSink{dst: dio, w: w}}
	fw.zw = zlib.NewWriter(&fw.sink)
	return fw
}

// Write compresses raw (decompressed) bytes.
func (f *frameWriter) Write(p []byte) (int, error) {
	n, err := f.zw.Write(p)
	if err != nil {
		return n, CompressionError{Err: err}
	}
	return n, nil
}

// Close flushes the zlib stream, flushes any buffered frame bytes, and
// emits the terminating zero-length frame.
func (f *frameWriter) Close() error {
	if err := f.zw.Close(); err != nil {
		return CompressionError{Err: err}
	}
	if err := f.sink.flush(); err != nil {
		return err
	}
	return f.dst.WriteInt(f.w, 0)
}
