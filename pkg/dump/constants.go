// SPDX-License-Identifier: Apache-2.0

package dump

// Size and framing tunables for the custom-format codec: compile-time
// constants rather than magic numbers spread through the code.
const (
	magicHeader = "PGDMP"

	customFormatByte = 1

	zlibFrameSoftLimit   = 4096
	defaultBufferSize    = 1024 * 1024
	maxChunkSize         = 50 * 1024 * 1024
	processingBufferSize = 64 * 1024
	compressionBufSize   = 32 * 1024
	compressionLevel     = 6
	streamWriteThreshold = 10 * 1024 * 1024

	tempFilePrefix = "pgmask_"
)

// blockType identifies the kind of block framed in the data section of a
// custom-format archive.
type blockType byte

const (
	blockTypeData blockType = 0x01
	blockTypeBlob blockType = 0x02
	blockTypeEnd  blockType = 0x04
)
