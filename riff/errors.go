package riff

import (
	"errors"
	"fmt"
)

// ErrIncompleteFile signals that EOF was reached before a chunk header or
// body completed. Offset is the byte offset at which the short read began.
type ErrIncompleteFile struct {
	Offset int64
}

func (e *ErrIncompleteFile) Error() string {
	return fmt.Sprintf("riff: incomplete file at offset %d", e.Offset)
}

// ErrBadChunkSize signals a chunk header whose declared size would run past
// the end of the envelope. The walker still yields whatever bytes are
// actually present (best-effort read) alongside this error.
type ErrBadChunkSize struct {
	ID       string
	Offset   int64
	Declared uint64
	Have     uint64
}

func (e *ErrBadChunkSize) Error() string {
	return fmt.Sprintf(
		"riff: chunk %q at offset %d declares size %d but only %d bytes remain",
		e.ID, e.Offset, e.Declared, e.Have,
	)
}

// ErrFormatError is a structural mismatch in the outer envelope (missing
// RIFF/RF64/WAVE tag) that only a different parser could recover from.
var ErrFormatError = errors.New("riff: format error")
