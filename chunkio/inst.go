package chunkio

import "fmt"

// InstChunk is the instrument chunk (spec §6): seven signed bytes
// describing how a sampler should pitch, gain, and key/velocity-range the
// sample.
type InstChunk struct {
	UnshiftedNote int8
	FineTune      int8
	Gain          int8
	LowNote       int8
	HighNote      int8
	LowVelocity   int8
	HighVelocity  int8
}

const instSize = 7

// ParseInst decodes an inst chunk body.
func ParseInst(body []byte) (InstChunk, error) {
	if len(body) < instSize {
		return InstChunk{}, &ErrInvalidData{Reason: fmt.Sprintf("inst chunk too short: %d bytes", len(body))}
	}

	return InstChunk{
		UnshiftedNote: int8(body[0]), //nolint:gosec // wire format.
		FineTune:      int8(body[1]),
		Gain:          int8(body[2]),
		LowNote:       int8(body[3]),
		HighNote:      int8(body[4]),
		LowVelocity:   int8(body[5]),
		HighVelocity:  int8(body[6]),
	}, nil
}

// Bytes encodes the inst chunk body.
func (i InstChunk) Bytes() []byte {
	return []byte{
		byte(i.UnshiftedNote), byte(i.FineTune), byte(i.Gain),
		byte(i.LowNote), byte(i.HighNote), byte(i.LowVelocity), byte(i.HighVelocity),
	}
}
