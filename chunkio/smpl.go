package chunkio

import (
	"encoding/binary"
	"fmt"
	"io"
)

// SampleLoop is one entry in a smpl chunk's loop table.
type SampleLoop struct {
	CuePointID uint32
	Type       uint32
	Start      uint32
	End        uint32
	Fraction   uint32
	PlayCount  uint32
}

// SmplChunk is the sampler chunk (spec §6): MIDI unity-note and loop-point
// metadata.
type SmplChunk struct {
	Manufacturer    uint32
	Product         uint32
	SamplePeriod    uint32
	MIDIUnityNote   uint32
	MIDIPitchFraction uint32
	SMPTEFormat     uint32
	SMPTEOffset     uint32
	Loops           []SampleLoop
	SamplerData     []byte
}

const (
	smplFixedSize = 9 * 4
	sampleLoopSize = 6 * 4
)

// ParseSmpl decodes a smpl chunk body.
func ParseSmpl(body []byte) (SmplChunk, error) {
	if len(body) < smplFixedSize {
		return SmplChunk{}, &ErrInvalidData{Reason: fmt.Sprintf("smpl chunk too short: %d bytes", len(body))}
	}

	var s SmplChunk

	u32 := func(off int) uint32 { return binary.LittleEndian.Uint32(body[off : off+4]) }

	s.Manufacturer = u32(0)
	s.Product = u32(4)
	s.SamplePeriod = u32(8)
	s.MIDIUnityNote = u32(12)
	s.MIDIPitchFraction = u32(16)
	s.SMPTEFormat = u32(20)
	s.SMPTEOffset = u32(24)
	numLoops := u32(28)
	samplerDataSize := u32(32)

	off := smplFixedSize
	for i := uint32(0); i < numLoops; i++ {
		if off+sampleLoopSize > len(body) {
			return s, &ErrInvalidData{Reason: "smpl loop table truncated"}
		}

		s.Loops = append(s.Loops, SampleLoop{
			CuePointID: binary.LittleEndian.Uint32(body[off : off+4]),
			Type:       binary.LittleEndian.Uint32(body[off+4 : off+8]),
			Start:      binary.LittleEndian.Uint32(body[off+8 : off+12]),
			End:        binary.LittleEndian.Uint32(body[off+12 : off+16]),
			Fraction:   binary.LittleEndian.Uint32(body[off+16 : off+20]),
			PlayCount:  binary.LittleEndian.Uint32(body[off+20 : off+24]),
		})
		off += sampleLoopSize
	}

	end := off + int(samplerDataSize)
	if end > len(body) {
		end = len(body)
	}

	s.SamplerData = append([]byte(nil), body[off:end]...)

	return s, nil
}

// WriteTo encodes the smpl chunk body.
func (s SmplChunk) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, smplFixedSize+sampleLoopSize*len(s.Loops)+len(s.SamplerData))

	binary.LittleEndian.PutUint32(buf[0:4], s.Manufacturer)
	binary.LittleEndian.PutUint32(buf[4:8], s.Product)
	binary.LittleEndian.PutUint32(buf[8:12], s.SamplePeriod)
	binary.LittleEndian.PutUint32(buf[12:16], s.MIDIUnityNote)
	binary.LittleEndian.PutUint32(buf[16:20], s.MIDIPitchFraction)
	binary.LittleEndian.PutUint32(buf[20:24], s.SMPTEFormat)
	binary.LittleEndian.PutUint32(buf[24:28], s.SMPTEOffset)
	binary.LittleEndian.PutUint32(buf[28:32], uint32(len(s.Loops))) //nolint:gosec // bounded in practice.
	binary.LittleEndian.PutUint32(buf[32:36], uint32(len(s.SamplerData))) //nolint:gosec // bounded in practice.

	off := smplFixedSize
	for _, l := range s.Loops {
		binary.LittleEndian.PutUint32(buf[off:off+4], l.CuePointID)
		binary.LittleEndian.PutUint32(buf[off+4:off+8], l.Type)
		binary.LittleEndian.PutUint32(buf[off+8:off+12], l.Start)
		binary.LittleEndian.PutUint32(buf[off+12:off+16], l.End)
		binary.LittleEndian.PutUint32(buf[off+16:off+20], l.Fraction)
		binary.LittleEndian.PutUint32(buf[off+20:off+24], l.PlayCount)
		off += sampleLoopSize
	}

	copy(buf[off:], s.SamplerData)

	n, err := w.Write(buf)
	if err != nil {
		return int64(n), fmt.Errorf("chunkio: writing smpl chunk: %w", err)
	}

	return int64(n), nil
}
