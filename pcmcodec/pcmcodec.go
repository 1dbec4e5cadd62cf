// Package pcmcodec implements the uncompressed PCM transcoder (spec's C5):
// per-frame sample-shape conversion into the on-disk target shape, block
// alignment, and fmt-chunk metadata selection, including the refusal
// matrix that rejects shapes the non-extensible legacy header can't carry.
package pcmcodec

import (
	"fmt"

	"github.com/farcloser/wavecraft/chunkio"
	"github.com/farcloser/wavecraft/classify"
	"github.com/farcloser/wavecraft/sample"
)

// ErrUnsupportedShape is returned when a target sample shape cannot be
// represented by the non-extensible legacy fmt chunk and the caller did not
// request the extensible form (channel mask set).
type ErrUnsupportedShape struct {
	Type sample.Type
}

func (e *ErrUnsupportedShape) Error() string {
	return fmt.Sprintf("pcmcodec: sample type %s requires the extensible fmt chunk", e.Type)
}

// ErrChannelMaskMismatch is returned when a requested channel mask's
// popcount does not match the channel count.
type ErrChannelMaskMismatch struct {
	ChannelMask uint32
	Channels    uint16
}

func (e *ErrChannelMaskMismatch) Error() string {
	return fmt.Sprintf("pcmcodec: channel mask 0x%08X does not match %d channels", e.ChannelMask, e.Channels)
}

// Transcoder converts interleaved frames from an arbitrary in-memory sample
// shape into the on-disk target shape, one frame at a time.
type Transcoder struct {
	Target   sample.Type
	Channels uint16
}

// NewTranscoder validates the target shape against the legacy-vs-extensible
// refusal matrix (spec §4.5) and returns a Transcoder.
func NewTranscoder(target sample.Type, channels uint16, channelMask uint32) (Transcoder, error) {
	if channelMask != 0 && !classify.ChannelMaskPopcountValid(channelMask, channels) {
		return Transcoder{}, &ErrChannelMaskMismatch{ChannelMask: channelMask, Channels: channels}
	}

	if channelMask == 0 && requiresExtensible(target) {
		return Transcoder{}, &ErrUnsupportedShape{Type: target}
	}

	return Transcoder{Target: target, Channels: channels}, nil
}

// requiresExtensible reports whether a shape can only be carried by the
// WAVEFORMATEXTENSIBLE fmt chunk: unsigned widths above 8 bits, and signed
// 8-bit (the legacy format reserves 8-bit for unsigned only).
func requiresExtensible(t sample.Type) bool {
	switch t {
	case sample.U16, sample.U24, sample.U32, sample.U64, sample.S8:
		return true
	default:
		return false
	}
}

// EncodeFrame converts one interleaved frame of source samples into its
// on-disk byte representation, appending to dst.
func EncodeFrame[S sample.Wire](t Transcoder, frame []S, dst []byte) []byte {
	width := t.Target.BytesPerSample()

	out := dst
	if cap(out)-len(out) < len(frame)*width {
		grown := make([]byte, len(out), len(out)+len(frame)*width)
		copy(grown, out)
		out = grown
	}

	for _, s := range frame {
		start := len(out)
		out = out[:start+width]
		sample.Encode(t.Target, sample.Of(s).ScaleTo(t.Target), out[start:start+width])
	}

	return out
}

// DecodeFrame converts one on-disk frame of width t.Channels samples into
// the caller's requested in-memory shape.
func DecodeFrame[S sample.Wire](t Transcoder, src []byte) []S {
	width := t.Target.BytesPerSample()
	out := make([]S, t.Channels)

	for i := range out {
		v := sample.Decode(t.Target, src[i*width:(i+1)*width])
		out[i] = sample.As[S](v.ScaleTo(sample.TypeOf[S]()))
	}

	return out
}

// DecodeFrameValues converts one on-disk frame into shape-erased Values, for
// callers (the reader orchestration and iterator façade) that don't know
// the caller's requested sample shape at compile time.
func DecodeFrameValues(t Transcoder, src []byte) []sample.Value {
	width := t.Target.BytesPerSample()
	out := make([]sample.Value, t.Channels)

	for i := range out {
		out[i] = sample.Decode(t.Target, src[i*width:(i+1)*width])
	}

	return out
}

// EncodeFrameValues converts one interleaved frame of shape-erased Values
// into its on-disk byte representation, appending to dst.
func EncodeFrameValues(t Transcoder, frame []sample.Value, dst []byte) []byte {
	width := t.Target.BytesPerSample()

	out := dst
	if cap(out)-len(out) < len(frame)*width {
		grown := make([]byte, len(out), len(out)+len(frame)*width)
		copy(grown, out)
		out = grown
	}

	for _, v := range frame {
		start := len(out)
		out = out[:start+width]
		sample.Encode(t.Target, v.ScaleTo(t.Target), out[start:start+width])
	}

	return out
}

// BlockAlign returns channels × bytes-per-sample, the data chunk's frame
// stride (spec §4.5).
func (t Transcoder) BlockAlign() uint16 {
	return t.Channels * uint16(t.Target.BytesPerSample()) //nolint:gosec // channels/width both small in practice.
}

// ByteRate returns sampleRate × channels × bytes-per-sample.
func (t Transcoder) ByteRate(sampleRate uint32) uint32 {
	return sampleRate * uint32(t.Channels) * uint32(t.Target.BytesPerSample()) //nolint:gosec // bounded in practice.
}

// FormatTag returns the format_tag this transcoder's target shape selects:
// PCM for integer shapes, PCM-IEEE for float shapes.
func (t Transcoder) FormatTag() uint16 {
	if t.Target.IsFloat() {
		return classify.TagIEEEFloat
	}

	return classify.TagPCM
}

// BuildFmtChunk constructs the fmt chunk for this transcoder's target
// shape, sample rate and channel mask: the legacy 16-byte shape when
// channelMask is 0, otherwise the extensible shape (format_tag 0xFFFE) with
// the matching PCM or IEEE-float SubFormat GUID.
func BuildFmtChunk(t Transcoder, sampleRate uint32, channelMask uint32) chunkio.FmtChunk {
	f := chunkio.FmtChunk{
		FormatTag:     t.FormatTag(),
		Channels:      t.Channels,
		SampleRate:    sampleRate,
		ByteRate:      t.ByteRate(sampleRate),
		BlockAlign:    t.BlockAlign(),
		BitsPerSample: uint16(t.Target.BitsPerSample()), //nolint:gosec // bounded to <=64.
	}

	if channelMask == 0 {
		return f
	}

	f.FormatTag = classify.TagExtensible
	f.Extension = classify.ExtExtensible
	f.ValidBitsPerSample = f.BitsPerSample
	f.ChannelMask = channelMask

	if t.Target.IsFloat() {
		f.SubFormat = classify.SubFormatIEEEFloat
	} else {
		f.SubFormat = classify.SubFormatPCM
	}

	return f
}
