// SPDX-License-Identifier: Apache-2.0

package dump

import (
	"bufio"
	"io"

	"github.com/pgmask/pgmask/pkg/obfuscate"
)

// ProcessLines reads newline-delimited SQL lines from r, runs each
// through the line obfuscator, and writes whatever it decides to keep to
// w, always newline-terminated. It drives a plain-text dump end to end;
// the custom-format codec uses the unexported streamProcessLines instead
// since it decodes a data block's lines from an already-framed reader
// rather than the raw input.
func ProcessLines(r io.Reader, w io.Writer, ob *obfuscate.Obfuscator) error {
	return streamProcessLines(r, w, ob)
}

// streamProcessLines reads newline-delimited COPY body lines from r,
// runs each through the line obfuscator, and writes whatever it decides
// to keep to w, always newline-terminated. It generalizes the codec's two
// separate line-processing shapes (decompressed-until-EOF, and
// bounded-exact-read) into one helper that simply processes whatever r
// yields until EOF.
func streamProcessLines(r io.Reader, w io.Writer, ob *obfuscate.Obfuscator) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, processingBufferSize), maxChunkSize)

	for scanner.Scan() {
		out, ok, err := ob.ParseLine(scanner.Text())
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if _, err := io.WriteString(w, out); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return scanner.Err()
}
