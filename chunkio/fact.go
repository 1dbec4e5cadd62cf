package chunkio

import (
	"encoding/binary"
	"fmt"
	"io"
)

// FactChunk carries the compressed-format sample count (spec §6): required
// for every non-PCM codec, optional for PCM.
type FactChunk struct {
	SampleLength uint32
}

// ParseFact decodes a fact chunk body.
func ParseFact(body []byte) (FactChunk, error) {
	if len(body) < 4 {
		return FactChunk{}, &ErrInvalidData{Reason: fmt.Sprintf("fact chunk too short: %d bytes", len(body))}
	}

	return FactChunk{SampleLength: binary.LittleEndian.Uint32(body[0:4])}, nil
}

// WriteTo encodes the fact chunk body.
func (f FactChunk) WriteTo(w io.Writer) (int64, error) {
	var buf [4]byte

	binary.LittleEndian.PutUint32(buf[:], f.SampleLength)

	n, err := w.Write(buf[:])
	if err != nil {
		return int64(n), fmt.Errorf("chunkio: writing fact chunk: %w", err)
	}

	return int64(n), nil
}
