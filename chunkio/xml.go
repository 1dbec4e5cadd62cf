package chunkio

import (
	"fmt"
	"io"
)

// AxmlChunk carries a raw Dolby/ADM "axml" payload (typically UTF-8 XML).
// No XML schema validation is performed; the spec treats it as an opaque
// passthrough blob with a string accessor for convenience.
type AxmlChunk struct {
	XML string
}

// ParseAxml decodes an axml chunk body.
func ParseAxml(body []byte) (AxmlChunk, error) {
	text, err := decodeText(body)

	return AxmlChunk{XML: text}, err
}

// WriteTo writes the XML payload, NUL-terminated as most writers emit it.
func (a AxmlChunk) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(append([]byte(a.XML), 0))
	if err != nil {
		return int64(n), fmt.Errorf("chunkio: writing axml chunk: %w", err)
	}

	return int64(n), nil
}

// IxmlChunk carries a raw iXML production-metadata payload, the same
// passthrough treatment as AxmlChunk.
type IxmlChunk struct {
	XML string
}

// ParseIxml decodes an iXML chunk body.
func ParseIxml(body []byte) (IxmlChunk, error) {
	text, err := decodeText(body)

	return IxmlChunk{XML: text}, err
}

// WriteTo writes the XML payload, NUL-terminated as most writers emit it.
func (i IxmlChunk) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(append([]byte(i.XML), 0))
	if err != nil {
		return int64(n), fmt.Errorf("chunkio: writing iXML chunk: %w", err)
	}

	return int64(n), nil
}

// TrknChunk is a minimal track-number chunk. Spec.md does not fix its
// layout; this follows the common two-field (track, total) shape used by
// tagging tools that stamp a bare trkn chunk onto WAVE files, stored as two
// little-endian 16-bit words.
type TrknChunk struct {
	Track uint16
	Total uint16
}

// ParseTrkn decodes a trkn chunk body.
func ParseTrkn(body []byte) (TrknChunk, error) {
	if len(body) < 4 {
		return TrknChunk{}, &ErrInvalidData{Reason: fmt.Sprintf("trkn chunk too short: %d bytes", len(body))}
	}

	return TrknChunk{
		Track: uint16(body[0]) | uint16(body[1])<<8,
		Total: uint16(body[2]) | uint16(body[3])<<8,
	}, nil
}

// Bytes encodes the trkn chunk body.
func (t TrknChunk) Bytes() []byte {
	return []byte{byte(t.Track), byte(t.Track >> 8), byte(t.Total), byte(t.Total >> 8)}
}
