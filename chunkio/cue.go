package chunkio

import (
	"encoding/binary"
	"fmt"
	"io"
)

// CuePoint is one marker in a cue chunk.
type CuePoint struct {
	ID           uint32
	Position     uint32
	DataChunkID  string
	ChunkStart   uint32
	BlockStart   uint32
	SampleOffset uint32
}

// CueChunk is the cue-points chunk (spec §6): named sample-accurate markers
// into the data chunk.
type CueChunk struct {
	Points []CuePoint
}

const cuePointSize = 24

// ParseCue decodes a cue chunk body.
func ParseCue(body []byte) (CueChunk, error) {
	if len(body) < 4 {
		return CueChunk{}, &ErrInvalidData{Reason: fmt.Sprintf("cue chunk too short: %d bytes", len(body))}
	}

	count := binary.LittleEndian.Uint32(body[0:4])

	var c CueChunk

	off := 4
	for i := uint32(0); i < count; i++ {
		if off+cuePointSize > len(body) {
			return c, &ErrInvalidData{Reason: "cue point table truncated"}
		}

		c.Points = append(c.Points, CuePoint{
			ID:           binary.LittleEndian.Uint32(body[off : off+4]),
			Position:     binary.LittleEndian.Uint32(body[off+4 : off+8]),
			DataChunkID:  string(body[off+8 : off+12]),
			ChunkStart:   binary.LittleEndian.Uint32(body[off+12 : off+16]),
			BlockStart:   binary.LittleEndian.Uint32(body[off+16 : off+20]),
			SampleOffset: binary.LittleEndian.Uint32(body[off+20 : off+24]),
		})
		off += cuePointSize
	}

	return c, nil
}

// WriteTo encodes the cue chunk body.
func (c CueChunk) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, 4+cuePointSize*len(c.Points))

	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(c.Points))) //nolint:gosec // bounded in practice.

	off := 4
	for _, p := range c.Points {
		binary.LittleEndian.PutUint32(buf[off:off+4], p.ID)
		binary.LittleEndian.PutUint32(buf[off+4:off+8], p.Position)
		copy(buf[off+8:off+12], p.DataChunkID)
		binary.LittleEndian.PutUint32(buf[off+12:off+16], p.ChunkStart)
		binary.LittleEndian.PutUint32(buf[off+16:off+20], p.BlockStart)
		binary.LittleEndian.PutUint32(buf[off+20:off+24], p.SampleOffset)
		off += cuePointSize
	}

	n, err := w.Write(buf)
	if err != nil {
		return int64(n), fmt.Errorf("chunkio: writing cue chunk: %w", err)
	}

	return int64(n), nil
}

// PlaylistSegment is one entry in a plst chunk.
type PlaylistSegment struct {
	CuePointID uint32
	Length     uint32
	NumRepeats uint32
}

// PlstChunk is the playlist chunk (spec §6): an ordered, repeatable
// sequence over the cue points.
type PlstChunk struct {
	Segments []PlaylistSegment
}

const plstSegmentSize = 12

// ParsePlst decodes a plst chunk body.
func ParsePlst(body []byte) (PlstChunk, error) {
	if len(body) < 4 {
		return PlstChunk{}, &ErrInvalidData{Reason: fmt.Sprintf("plst chunk too short: %d bytes", len(body))}
	}

	count := binary.LittleEndian.Uint32(body[0:4])

	var p PlstChunk

	off := 4
	for i := uint32(0); i < count; i++ {
		if off+plstSegmentSize > len(body) {
			return p, &ErrInvalidData{Reason: "plst segment table truncated"}
		}

		p.Segments = append(p.Segments, PlaylistSegment{
			CuePointID: binary.LittleEndian.Uint32(body[off : off+4]),
			Length:     binary.LittleEndian.Uint32(body[off+4 : off+8]),
			NumRepeats: binary.LittleEndian.Uint32(body[off+8 : off+12]),
		})
		off += plstSegmentSize
	}

	return p, nil
}

// WriteTo encodes the plst chunk body.
func (p PlstChunk) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, 4+plstSegmentSize*len(p.Segments))

	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(p.Segments))) //nolint:gosec // bounded in practice.

	off := 4
	for _, s := range p.Segments {
		binary.LittleEndian.PutUint32(buf[off:off+4], s.CuePointID)
		binary.LittleEndian.PutUint32(buf[off+4:off+8], s.Length)
		binary.LittleEndian.PutUint32(buf[off+8:off+12], s.NumRepeats)
		off += plstSegmentSize
	}

	n, err := w.Write(buf)
	if err != nil {
		return int64(n), fmt.Errorf("chunkio: writing plst chunk: %w", err)
	}

	return int64(n), nil
}
