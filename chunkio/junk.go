package chunkio

import (
	"fmt"
	"io"
)

// JunkChunk is a padding/placeholder chunk (JUNK or PAD, spec §4.9): raw
// bytes carried through unchanged, used by the writer to reserve room for a
// later ds64 upgrade.
type JunkChunk struct {
	Data []byte
}

// ParseJunk returns the chunk body unchanged.
func ParseJunk(body []byte) JunkChunk {
	return JunkChunk{Data: append([]byte(nil), body...)}
}

// WriteTo writes the junk payload unchanged.
func (j JunkChunk) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(j.Data)
	if err != nil {
		return int64(n), fmt.Errorf("chunkio: writing JUNK chunk: %w", err)
	}

	return int64(n), nil
}

// NewJunk builds a JunkChunk of n zero bytes, for reserving space ahead of
// a data chunk whose final size isn't known yet.
func NewJunk(n int) JunkChunk {
	return JunkChunk{Data: make([]byte, n)}
}

// RawID3 is a passthrough "id3 " chunk (spec's non-goals exclude an
// ID3v2 parser: the bytes are carried untouched).
type RawID3 struct {
	Data []byte
}

// ParseRawID3 returns the chunk body unchanged.
func ParseRawID3(body []byte) RawID3 {
	return RawID3{Data: append([]byte(nil), body...)}
}

// WriteTo writes the id3 payload unchanged.
func (r RawID3) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.Data)
	if err != nil {
		return int64(n), fmt.Errorf("chunkio: writing id3 chunk: %w", err)
	}

	return int64(n), nil
}
