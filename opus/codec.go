// Package opus wraps gopkg.in/hraban/opus.v2 in the buffer-and-flush
// adapter contract shared by every block-oriented codec. Unlike MP3/FLAC/
// Vorbis, Opus is the one codec with genuine two-way binding: both encode
// and decode are supported here.
package opus

import (
	"encoding/binary"
	"fmt"
	"io"

	"gopkg.in/hraban/opus.v2"

	"github.com/farcloser/wavecraft/blockio"
	"github.com/farcloser/wavecraft/classify"
)

const (
	minChannels = 1
	maxChannels = 255

	// DefaultSamplesPerEncode is 20ms at 48kHz, the libopus-recommended
	// frame size for general-purpose audio.
	DefaultSamplesPerEncode = 960
)

// Encoder buffers interleaved 16-bit PCM and emits Opus packets through a
// blockio.BufferedEncoder, one packet per samplesPerEncode-sized chunk.
type Encoder struct {
	enc              *opus.Encoder
	buffered         *blockio.BufferedEncoder[int16]
	channels         int
	samplesPerEncode int
}

// NewEncoder constructs an Opus encoder writing packets to w.
// samplesPerEncode is per channel (e.g. 960 = 20ms at 48kHz) and becomes the
// fmt chunk's block_align.
func NewEncoder(w io.Writer, sampleRate, channels, samplesPerEncode int) (*Encoder, error) {
	if err := blockio.ValidateChannels("opus", channels, minChannels, maxChannels); err != nil {
		return nil, err
	}

	enc, err := opus.NewEncoder(sampleRate, channels, opus.AppAudio)
	if err != nil {
		return nil, fmt.Errorf("opus: creating encoder: %w", err)
	}

	e := &Encoder{enc: enc, channels: channels, samplesPerEncode: samplesPerEncode}

	e.buffered = blockio.NewBufferedEncoder(w, samplesPerEncode*channels, e.flush)

	return e, nil
}

// flush encodes one frame and prepends a 2-byte little-endian length, since
// the data chunk otherwise has no inherent Opus packet boundaries. Decode
// reverses this via the matching length-prefixed PacketSource.
func (e *Encoder) flush(chunk []int16) ([]byte, error) {
	data := make([]byte, 4000)

	n, err := e.enc.Encode(chunk, data)
	if err != nil {
		return nil, fmt.Errorf("opus: encoding frame: %w", err)
	}

	framed := make([]byte, 2+n)
	binary.LittleEndian.PutUint16(framed[0:2], uint16(n)) //nolint:gosec // opus packets never approach 64KiB.
	copy(framed[2:], data[:n])

	return framed, nil
}

// Write buffers interleaved samples, flushing full Opus frames.
func (e *Encoder) Write(samples []int16) error {
	return e.buffered.Write(samples) //nolint:wrapcheck // error already carries full context from blockio.
}

// Finish drains any buffered samples and flushes the final (possibly
// short) Opus frame. Idempotent.
func (e *Encoder) Finish() error {
	return e.buffered.Finish() //nolint:wrapcheck // error already carries full context from blockio.
}

// Stats returns bytes/samples written so far, the basis for the
// byte_rate recomputation spec §4.7 requires after finish.
func (e *Encoder) Stats() (bytesWritten, samplesWritten uint64) {
	return e.buffered.Stats()
}

// BlockAlign is the fmt-chunk block_align for an Opus stream:
// num_samples_per_encode.
func (e *Encoder) BlockAlign() uint16 {
	return uint16(e.samplesPerEncode) //nolint:gosec // frame sizes are small positive constants (120-5760).
}

// Decoder pulls interleaved 16-bit PCM out of an Opus packet stream
// through a blockio.BufferedDecoder.
type Decoder struct {
	dec      *opus.Decoder
	channels int
	pull     *blockio.BufferedDecoder[int16]
}

// PacketSource yields the next raw Opus packet, or io.EOF once exhausted.
// The container's data chunk has no inherent packet boundaries of its own;
// the reader orchestration layer is responsible for framing packets (the
// length-prefixed scheme Encoder.flush writes) before handing them here.
type PacketSource func() ([]byte, error)

// NewDecoder constructs an Opus decoder pulling packets from next.
func NewDecoder(sampleRate, channels int, next PacketSource) (*Decoder, error) {
	if err := blockio.ValidateChannels("opus", channels, minChannels, maxChannels); err != nil {
		return nil, err
	}

	dec, err := opus.NewDecoder(sampleRate, channels)
	if err != nil {
		return nil, fmt.Errorf("opus: creating decoder: %w", err)
	}

	d := &Decoder{dec: dec, channels: channels}

	d.pull = blockio.NewBufferedDecoder(func() ([]int16, error) {
		packet, err := next()
		if err != nil {
			return nil, err //nolint:wrapcheck // PacketSource owns its own error context, including io.EOF.
		}

		pcm := make([]int16, 5760*channels) // Max Opus frame: 120ms at 48kHz.

		n, err := d.dec.Decode(packet, pcm)
		if err != nil {
			return nil, fmt.Errorf("opus: decoding packet: %w", err)
		}

		return pcm[:n*channels], nil
	})

	return d, nil
}

// Read pulls up to len(dst) interleaved samples; see blockio.BufferedDecoder.Read.
func (d *Decoder) Read(dst []int16) (int, error) {
	return d.pull.Read(dst)
}

// FormatTag is the fmt-chunk format_tag value for Opus streams.
func FormatTag() uint16 {
	return classify.TagOpus
}
