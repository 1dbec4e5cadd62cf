// Package wave ties the chunk walker, format classifier, chunk registry,
// PCM transcoder, ADPCM/companding engines, and block-codec adapters into
// a single read/write API over WAVE containers: the writer state machine
// (C9), the reader orchestration (C10), and the iterator façade (C11).
package wave

import (
	"fmt"

	"github.com/farcloser/wavecraft/classify"
	"github.com/farcloser/wavecraft/sample"
)

// SampleFormat is the coarse numeric family a Spec's bits_per_sample
// combines with to resolve one of the twelve canonical WaveSampleType
// shapes.
type SampleFormat uint8

// Recognized sample formats.
const (
	FormatUnknown SampleFormat = iota
	FormatInt
	FormatUInt
	FormatFloat
)

// Spec is the immutable descriptor produced by parsing a container or
// supplied by a caller constructing one (spec §3).
type Spec struct {
	Channels      uint16
	ChannelMask   uint32
	SampleRate    uint32
	BitsPerSample uint16 // 0 for codecs where bit depth is not meaningful.
	SampleFormat  SampleFormat
	Codec         classify.CanonicalCodec
}

// ErrInvalidSpec signals a Spec whose (bits_per_sample, sample_format) pair
// does not resolve to one of the twelve canonical shapes, or whose channel
// mask fails the popcount invariant.
type ErrInvalidSpec struct {
	Reason string
}

func (e *ErrInvalidSpec) Error() string {
	return fmt.Sprintf("wave: invalid spec: %s", e.Reason)
}

// WaveSampleType resolves a Spec's (bits_per_sample, sample_format) pair to
// one of the twelve canonical shapes (spec §3's invariant). Only meaningful
// for PCM-family codecs (PCMInt/PCMFloat); compressed and companded codecs
// don't have a fixed on-disk shape.
func (s Spec) WaveSampleType() (sample.Type, error) {
	switch s.SampleFormat {
	case FormatInt:
		switch s.BitsPerSample {
		case 8:
			return sample.S8, nil
		case 16:
			return sample.S16, nil
		case 24:
			return sample.S24, nil
		case 32:
			return sample.S32, nil
		case 64:
			return sample.S64, nil
		}
	case FormatUInt:
		switch s.BitsPerSample {
		case 8:
			return sample.U8, nil
		case 16:
			return sample.U16, nil
		case 24:
			return sample.U24, nil
		case 32:
			return sample.U32, nil
		case 64:
			return sample.U64, nil
		}
	case FormatFloat:
		switch s.BitsPerSample {
		case 32:
			return sample.F32, nil
		case 64:
			return sample.F64, nil
		}
	case FormatUnknown:
	}

	return 0, &ErrInvalidSpec{
		Reason: fmt.Sprintf("bits_per_sample=%d sample_format=%d does not resolve to a canonical shape", s.BitsPerSample, s.SampleFormat),
	}
}

// Validate checks the channel-mask popcount invariant (spec §3/§6).
func (s Spec) Validate() error {
	if !classify.ChannelMaskPopcountValid(s.ChannelMask, s.Channels) {
		return &ErrInvalidSpec{Reason: fmt.Sprintf("channel mask 0x%08X does not match %d channels", s.ChannelMask, s.Channels)}
	}

	return nil
}

// FileSizePolicy governs how the writer handles a data chunk that may
// exceed 4 GiB (spec §4.9).
type FileSizePolicy uint8

// Recognized file-size policies.
const (
	// NeverLargerThan4GB reserves no JUNK slot; exceeding 4 GiB at finish
	// fails with NotPreparedFor4GBFile.
	NeverLargerThan4GB FileSizePolicy = iota
	// AllowLargerThan4GB reserves a JUNK block sized to hold a ds64 chunk,
	// upgrading the envelope to RF64 at finish only if the data size
	// actually exceeded 4 GiB.
	AllowLargerThan4GB
	// ForceUse4GBFormat always emits RF64 + ds64 from the start.
	ForceUse4GBFormat
)
