// Package chunkio implements typed, bit-exact read/write support for every
// WAVE chunk spec §3/§6 recognizes: fmt, fact, data, ds64, bext, smpl, inst,
// cue, plst, LIST (INFO/adtl), acid, JUNK, id3, and the raw XML chunks.
package chunkio

import (
	"errors"
	"fmt"
)

// ErrInvalidData marks a chunk body too short for its fixed fields, or one
// whose table or sub-chunk runs past the end of the body.
type ErrInvalidData struct {
	Reason string
}

func (e *ErrInvalidData) Error() string {
	return fmt.Sprintf("chunkio: invalid data: %s", e.Reason)
}

// ErrUnexpectedFlag is returned when a chunk ID doesn't match what the
// caller expected at that position.
type ErrUnexpectedFlag struct {
	Expected, Got string
}

func (e *ErrUnexpectedFlag) Error() string {
	return fmt.Sprintf("chunkio: expected chunk %q, got %q", e.Expected, e.Got)
}

// ErrStringDecode marks a best-effort text decode failure. Parsing
// continues; the field keeps its text with the undecodable bytes removed.
type ErrStringDecode struct {
	Bytes []byte
}

func (e *ErrStringDecode) Error() string {
	return fmt.Sprintf("chunkio: could not decode %d bytes of text", len(e.Bytes))
}

// ErrMissingData marks a required chunk that never appeared.
type ErrMissingData struct {
	Name string
}

func (e *ErrMissingData) Error() string {
	return fmt.Sprintf("chunkio: missing required chunk %q", e.Name)
}

var errDuplicateSingleton = errors.New("chunkio: duplicate singleton chunk, first occurrence wins")

// ErrDuplicateSingleton wraps errDuplicateSingleton with the chunk's name,
// for the reader's "warned, first wins" diagnostic (spec §4.2).
func ErrDuplicateSingleton(name string) error {
	return fmt.Errorf("%w: %s", errDuplicateSingleton, name)
}
