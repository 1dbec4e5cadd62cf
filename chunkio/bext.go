package chunkio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// BextChunk is the Broadcast Wave Format extension chunk (spec §6): a
// 256-byte description, 32-byte originator, 32-byte originator reference,
// 10-byte origination date, 8-byte origination time, a 64-bit time
// reference, a version word, a 64-byte UMID, five 16-bit loudness fields,
// a 180-byte reserved block, and a variable-length coding-history string.
type BextChunk struct {
	Description         string
	Originator          string
	OriginatorReference  string
	OriginationDate      string
	OriginationTime      string
	TimeReference        uint64
	Version              uint16
	UMID                 [64]byte
	LoudnessValue        int16
	LoudnessRange        int16
	MaxTruePeakLevel     int16
	MaxMomentaryLoudness int16
	MaxShortTermLoudness int16
	CodingHistory        string
}

const (
	bextDescriptionLen = 256
	bextOriginatorLen  = 32
	bextOriginatorRefLen = 32
	bextDateLen        = 10
	bextTimeLen        = 8
	bextUMIDLen        = 64
	bextReservedLen    = 180
	bextFixedSize      = bextDescriptionLen + bextOriginatorLen + bextOriginatorRefLen +
		bextDateLen + bextTimeLen + 8 /*time ref*/ + 2 /*version*/ + bextUMIDLen +
		10 /*5 loudness fields*/ + bextReservedLen
)

// ParseBext decodes a bext chunk body. Version-0 chunks (no loudness
// fields, larger reserved block) are accepted: loudness fields read as zero.
func ParseBext(body []byte) (BextChunk, error) {
	if len(body) < bextFixedSize {
		return BextChunk{}, &ErrInvalidData{Reason: fmt.Sprintf("bext chunk too short: %d bytes", len(body))}
	}

	var b BextChunk

	off := 0
	b.Description = cstring(body[off : off+bextDescriptionLen])
	off += bextDescriptionLen
	b.Originator = cstring(body[off : off+bextOriginatorLen])
	off += bextOriginatorLen
	b.OriginatorReference = cstring(body[off : off+bextOriginatorRefLen])
	off += bextOriginatorRefLen
	b.OriginationDate = cstring(body[off : off+bextDateLen])
	off += bextDateLen
	b.OriginationTime = cstring(body[off : off+bextTimeLen])
	off += bextTimeLen
	b.TimeReference = binary.LittleEndian.Uint64(body[off : off+8])
	off += 8
	b.Version = binary.LittleEndian.Uint16(body[off : off+2])
	off += 2
	copy(b.UMID[:], body[off:off+bextUMIDLen])
	off += bextUMIDLen

	if b.Version >= 1 {
		b.LoudnessValue = int16(binary.LittleEndian.Uint16(body[off : off+2])) //nolint:gosec // wire format.
		b.LoudnessRange = int16(binary.LittleEndian.Uint16(body[off+2 : off+4]))
		b.MaxTruePeakLevel = int16(binary.LittleEndian.Uint16(body[off+4 : off+6]))
		b.MaxMomentaryLoudness = int16(binary.LittleEndian.Uint16(body[off+6 : off+8]))
		b.MaxShortTermLoudness = int16(binary.LittleEndian.Uint16(body[off+8 : off+10]))
	}

	off += 10 + bextReservedLen

	if off < len(body) {
		b.CodingHistory = cstring(body[off:])
	}

	return b, nil
}

// WriteTo encodes the bext chunk body. A zero Version is raised to 2 when
// any loudness field is non-zero, matching how broadcast-WAV writers signal
// the loudness block's presence; a non-zero Version is written as given.
func (b BextChunk) WriteTo(w io.Writer) (int64, error) {
	version := b.Version
	if version == 0 && (b.LoudnessValue != 0 || b.LoudnessRange != 0 || b.MaxTruePeakLevel != 0 ||
		b.MaxMomentaryLoudness != 0 || b.MaxShortTermLoudness != 0) {
		version = 2
	}

	history := []byte(b.CodingHistory)
	buf := make([]byte, bextFixedSize+len(history))

	off := 0
	putCString(buf[off:off+bextDescriptionLen], b.Description)
	off += bextDescriptionLen
	putCString(buf[off:off+bextOriginatorLen], b.Originator)
	off += bextOriginatorLen
	putCString(buf[off:off+bextOriginatorRefLen], b.OriginatorReference)
	off += bextOriginatorRefLen
	putCString(buf[off:off+bextDateLen], b.OriginationDate)
	off += bextDateLen
	putCString(buf[off:off+bextTimeLen], b.OriginationTime)
	off += bextTimeLen
	binary.LittleEndian.PutUint64(buf[off:off+8], b.TimeReference)
	off += 8
	binary.LittleEndian.PutUint16(buf[off:off+2], version)
	off += 2
	copy(buf[off:off+bextUMIDLen], b.UMID[:])
	off += bextUMIDLen

	if version >= 1 {
		binary.LittleEndian.PutUint16(buf[off:off+2], uint16(b.LoudnessValue)) //nolint:gosec // wire format.
		binary.LittleEndian.PutUint16(buf[off+2:off+4], uint16(b.LoudnessRange))
		binary.LittleEndian.PutUint16(buf[off+4:off+6], uint16(b.MaxTruePeakLevel))
		binary.LittleEndian.PutUint16(buf[off+6:off+8], uint16(b.MaxMomentaryLoudness))
		binary.LittleEndian.PutUint16(buf[off+8:off+10], uint16(b.MaxShortTermLoudness))
	}

	off += 10 + bextReservedLen
	copy(buf[off:], history)

	n, err := w.Write(buf)
	if err != nil {
		return int64(n), fmt.Errorf("chunkio: writing bext chunk: %w", err)
	}

	return int64(n), nil
}

// NewBext builds a fresh bext chunk for a writer that wasn't given one to
// inherit. Real broadcast-WAV writers stamp every file they originate with
// a unique originator reference and a UMID carrying a fresh material
// number; lacking a house numbering scheme, this generates both from a
// random UUID rather than leaving them blank.
func NewBext(description, originator string) BextChunk {
	id := uuid.New()

	var umid [64]byte
	copy(umid[48:], id[:])

	return BextChunk{
		Description:         description,
		Originator:          originator,
		OriginatorReference: strings.ReplaceAll(id.String(), "-", ""),
		UMID:                umid,
	}
}

func cstring(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}

	return string(bytes.TrimRight(b, " "))
}

func putCString(dst []byte, s string) {
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}
