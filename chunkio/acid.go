package chunkio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Acid flags bits (TypeOfFile).
const (
	AcidOneShot uint32 = 1 << iota
	AcidRootNoteSet
	AcidStretch
	AcidDiskBased
	AcidAcidizer
)

// AcidChunk is the unofficial but widely deployed loop-metadata chunk
// (spec §6): root note, beat count, and tempo for time-stretching hosts.
type AcidChunk struct {
	TypeOfFile       uint32
	RootNote         uint16
	Unknown1         uint16
	Unknown2         float32
	NumBeats         uint32
	MeterDenominator uint16
	MeterNumerator   uint16
	Tempo            float32
}

const acidSize = 4 + 2 + 2 + 4 + 4 + 2 + 2 + 4

// ParseAcid decodes an acid chunk body.
func ParseAcid(body []byte) (AcidChunk, error) {
	if len(body) < acidSize {
		return AcidChunk{}, &ErrInvalidData{Reason: fmt.Sprintf("acid chunk too short: %d bytes", len(body))}
	}

	return AcidChunk{
		TypeOfFile:       binary.LittleEndian.Uint32(body[0:4]),
		RootNote:         binary.LittleEndian.Uint16(body[4:6]),
		Unknown1:         binary.LittleEndian.Uint16(body[6:8]),
		Unknown2:         math.Float32frombits(binary.LittleEndian.Uint32(body[8:12])),
		NumBeats:         binary.LittleEndian.Uint32(body[12:16]),
		MeterDenominator: binary.LittleEndian.Uint16(body[16:18]),
		MeterNumerator:   binary.LittleEndian.Uint16(body[18:20]),
		Tempo:            math.Float32frombits(binary.LittleEndian.Uint32(body[20:24])),
	}, nil
}

// WriteTo encodes the acid chunk body.
func (a AcidChunk) WriteTo(w io.Writer) (int64, error) {
	var buf [acidSize]byte

	binary.LittleEndian.PutUint32(buf[0:4], a.TypeOfFile)
	binary.LittleEndian.PutUint16(buf[4:6], a.RootNote)
	binary.LittleEndian.PutUint16(buf[6:8], a.Unknown1)
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(a.Unknown2))
	binary.LittleEndian.PutUint32(buf[12:16], a.NumBeats)
	binary.LittleEndian.PutUint16(buf[16:18], a.MeterDenominator)
	binary.LittleEndian.PutUint16(buf[18:20], a.MeterNumerator)
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(a.Tempo))

	n, err := w.Write(buf[:])
	if err != nil {
		return int64(n), fmt.Errorf("chunkio: writing acid chunk: %w", err)
	}

	return int64(n), nil
}
