package chunkio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/samber/lo"
)

// Well-known LIST INFO sub-chunk IDs (spec §6).
const (
	InfoIART = "IART" // Artist
	InfoICMT = "ICMT" // Comment
	InfoICRD = "ICRD" // Creation date
	InfoIGNR = "IGNR" // Genre
	InfoINAM = "INAM" // Title
	InfoIPRD = "IPRD" // Product/album
	InfoISFT = "ISFT" // Software
	InfoITRK = "ITRK" // Track number
)

// ListInfo is the decoded body of a LIST chunk of type "INFO": an ordered
// set of four-character-code/string pairs. Order is preserved so a
// round-tripped file reproduces byte-identical sub-chunk ordering.
type ListInfo struct {
	Keys   []string
	Values map[string]string
}

// Get returns the value for a well-known INFO key, if present.
func (l ListInfo) Get(key string) (string, bool) {
	v, ok := l.Values[key]

	return v, ok
}

// ParseListInfo decodes a LIST chunk body already stripped of its "INFO"
// type tag. A text decode failure does not stop the parse: every entry is
// kept, and the first ErrStringDecode is returned alongside the result.
func ParseListInfo(body []byte) (ListInfo, error) {
	info := ListInfo{Values: map[string]string{}}

	var firstDecodeErr error

	off := 0
	for off+8 <= len(body) {
		id := string(body[off : off+4])
		size := binary.LittleEndian.Uint32(body[off+4 : off+8])
		off += 8

		end := off + int(size)
		if end > len(body) {
			return info, &ErrInvalidData{Reason: fmt.Sprintf("INFO sub-chunk %q overruns LIST body", id)}
		}

		value, decodeErr := decodeText(body[off:end])
		off = end

		if size%2 == 1 {
			off++
		}

		if _, exists := info.Values[id]; exists {
			continue // First wins; a later duplicate key is dropped without a warning.
		}

		info.Keys = append(info.Keys, id)
		info.Values[id] = value

		if decodeErr != nil && firstDecodeErr == nil {
			firstDecodeErr = decodeErr
		}
	}

	return info, firstDecodeErr
}

// WriteTo encodes a LIST/INFO chunk body, including the "INFO" type tag.
func (l ListInfo) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer

	buf.WriteString("INFO")

	for _, key := range l.Keys {
		value, ok := l.Values[key]
		if !ok {
			continue
		}

		writeListEntry(&buf, key, value)
	}

	n, err := w.Write(buf.Bytes())
	if err != nil {
		return int64(n), fmt.Errorf("chunkio: writing LIST/INFO chunk: %w", err)
	}

	return int64(n), nil
}

func writeListEntry(buf *bytes.Buffer, id, value string) {
	payload := append([]byte(value), 0)

	buf.WriteString(id)

	var sz [4]byte

	binary.LittleEndian.PutUint32(sz[:], uint32(len(payload))) //nolint:gosec // text fields are small.
	buf.Write(sz[:])
	buf.Write(payload)

	if len(payload)%2 == 1 {
		buf.WriteByte(0)
	}
}

// AdtlLabel is a labl or note sub-chunk: a name attached to a cue point.
type AdtlLabel struct {
	CuePointID uint32
	Text       string
	IsNote     bool // true for "note", false for "labl"
}

// AdtlRegion is an ltxt sub-chunk: a named, typed span attached to a cue
// point.
type AdtlRegion struct {
	CuePointID   uint32
	SampleLength uint32
	PurposeID    string
	Country      uint16
	Language     uint16
	Dialect      uint16
	CodePage     uint16
	Text         string
}

// ListAdtl is the decoded body of a LIST chunk of type "adtl": associated
// data list entries (labl/note/ltxt) that annotate cue points.
type ListAdtl struct {
	Labels  []AdtlLabel
	Regions []AdtlRegion
}

// ParseListAdtl decodes a LIST chunk body already stripped of its "adtl"
// type tag.
func ParseListAdtl(body []byte) (ListAdtl, error) {
	var l ListAdtl

	off := 0
	for off+8 <= len(body) {
		id := string(body[off : off+4])
		size := binary.LittleEndian.Uint32(body[off+4 : off+8])
		off += 8

		end := off + int(size)
		if end > len(body) {
			return l, &ErrInvalidData{Reason: fmt.Sprintf("adtl sub-chunk %q overruns LIST body", id)}
		}

		sub := body[off:end]
		off = end

		if size%2 == 1 {
			off++
		}

		switch id {
		case "labl", "note":
			if len(sub) < 4 {
				continue
			}

			text, _ := decodeText(sub[4:])
			l.Labels = append(l.Labels, AdtlLabel{
				CuePointID: binary.LittleEndian.Uint32(sub[0:4]),
				Text:       text,
				IsNote:     id == "note",
			})
		case "ltxt":
			if len(sub) < 20 {
				continue
			}

			text, _ := decodeText(sub[20:])
			l.Regions = append(l.Regions, AdtlRegion{
				CuePointID:   binary.LittleEndian.Uint32(sub[0:4]),
				SampleLength: binary.LittleEndian.Uint32(sub[4:8]),
				PurposeID:    string(sub[8:12]),
				Country:      binary.LittleEndian.Uint16(sub[12:14]),
				Language:     binary.LittleEndian.Uint16(sub[14:16]),
				Dialect:      binary.LittleEndian.Uint16(sub[16:18]),
				CodePage:     binary.LittleEndian.Uint16(sub[18:20]),
				Text:         text,
			})
		}
	}

	return l, nil
}

// WriteTo encodes a LIST/adtl chunk body, including the "adtl" type tag.
func (l ListAdtl) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer

	buf.WriteString("adtl")

	for _, label := range l.Labels {
		id := "labl"
		if label.IsNote {
			id = "note"
		}

		payload := make([]byte, 4)
		binary.LittleEndian.PutUint32(payload, label.CuePointID)
		payload = append(payload, []byte(label.Text)...)
		payload = append(payload, 0)
		writeSized(&buf, id, payload)
	}

	for _, r := range l.Regions {
		payload := make([]byte, 20)
		binary.LittleEndian.PutUint32(payload[0:4], r.CuePointID)
		binary.LittleEndian.PutUint32(payload[4:8], r.SampleLength)
		copy(payload[8:12], r.PurposeID)
		binary.LittleEndian.PutUint16(payload[12:14], r.Country)
		binary.LittleEndian.PutUint16(payload[14:16], r.Language)
		binary.LittleEndian.PutUint16(payload[16:18], r.Dialect)
		binary.LittleEndian.PutUint16(payload[18:20], r.CodePage)
		payload = append(payload, []byte(r.Text)...)
		writeSized(&buf, "ltxt", payload)
	}

	n, err := w.Write(buf.Bytes())
	if err != nil {
		return int64(n), fmt.Errorf("chunkio: writing LIST/adtl chunk: %w", err)
	}

	return int64(n), nil
}

func writeSized(buf *bytes.Buffer, id string, payload []byte) {
	buf.WriteString(id)

	var sz [4]byte

	binary.LittleEndian.PutUint32(sz[:], uint32(len(payload))) //nolint:gosec // text fields are small.
	buf.Write(sz[:])
	buf.Write(payload)

	if len(payload)%2 == 1 {
		buf.WriteByte(0)
	}
}

// decodeText best-effort-decodes a NUL-terminated or unterminated byte run
// as UTF-8 (spec §7/§9's explicit non-goal rules out codepage tables: no
// attempt is made to transcode legacy ANSI text). Invalid bytes are
// reported via ErrStringDecode but parsing continues with the raw bytes
// minus the decode failures trimmed.
func decodeText(b []byte) (string, error) {
	b, _, _ = bytes.Cut(b, []byte{0})

	if !utf8.Valid(b) {
		cleaned := lo.Filter(bytes.Runes(b), func(r rune, _ int) bool { return r != utf8.RuneError })

		return string(cleaned), &ErrStringDecode{Bytes: b}
	}

	return string(b), nil
}
