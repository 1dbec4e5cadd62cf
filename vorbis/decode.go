// Package vorbis decodes Ogg Vorbis audio to interleaved 16-bit PCM.
// Encoding is not supported: spec's own non-goals exclude Vorbis write
// support, so this package is decode-only.
package vorbis

import (
	"fmt"
	"io"
	"math"

	"github.com/jfreymuth/oggvorbis"

	"github.com/farcloser/wavecraft/blockio"
	"github.com/farcloser/wavecraft/classify"
)

// Decoder pulls interleaved 16-bit PCM out of an Ogg Vorbis stream through
// a blockio.BufferedDecoder, the same pull interface every other
// block-oriented codec adapter uses.
type Decoder struct {
	sampleRate uint32
	channels   int
	pull       *blockio.BufferedDecoder[int16]
}

// NewDecoder eagerly decodes rs to PCM (oggvorbis has no frame-by-frame
// pull API) and returns a Decoder exposing the result as a stream.
func NewDecoder(rs io.ReadSeeker) (*Decoder, error) {
	samples, format, err := oggvorbis.ReadAll(rs)
	if err != nil {
		return nil, fmt.Errorf("vorbis: decoding: %w", err)
	}

	out := make([]int16, len(samples))

	for i, s := range samples {
		scaled := math.Round(float64(s) * math.MaxInt16)
		scaled = max(math.MinInt16, min(math.MaxInt16, scaled))
		out[i] = int16(scaled) //nolint:gosec // clamped to int16 range above.
	}

	delivered := false

	pull := blockio.NewBufferedDecoder(func() ([]int16, error) {
		if delivered {
			return nil, io.EOF
		}

		delivered = true

		return out, nil
	})

	return &Decoder{
		sampleRate: uint32(format.SampleRate), //nolint:gosec // sample rates never approach int32 overflow.
		channels:   format.Channels,
		pull:       pull,
	}, nil
}

// Read pulls up to len(dst) interleaved samples; see blockio.BufferedDecoder.Read.
func (d *Decoder) Read(dst []int16) (int, error) {
	return d.pull.Read(dst)
}

// SampleRate returns the stream's sample rate in Hz.
func (d *Decoder) SampleRate() uint32 {
	return d.sampleRate
}

// Channels returns the stream's channel count.
func (d *Decoder) Channels() int {
	return d.channels
}

// HeaderMode selects which Vorbis fmt-chunk sub-mode a WAVE container uses
// to carry the codebook/setup headers (spec §4.7/§6). Three are provided:
// headers in-band in the data stream, split out to the fmt extension, or
// the Ogg transport layer stripped entirely. There is no HeaderMode for a
// stream whose codebook has been stripped.
type HeaderMode uint8

const (
	// HeaderInBand carries Vorbis headers as the first packets of the data
	// chunk's Ogg stream (format_tag 0x674F/0x676F family).
	HeaderInBand HeaderMode = iota
	// HeaderInExtension carries Vorbis headers as fmt-chunk extension bytes
	// alongside an in-band Ogg data stream (format_tag 0x6751/0x6771).
	HeaderInExtension
	// HeaderStrippedOgg carries raw Vorbis packets with the Ogg transport
	// layer removed, headers in the fmt extension (format_tag 0x6750).
	HeaderStrippedOgg
)

// FormatTagFor maps a HeaderMode (and whether the data stream itself is
// Ogg-wrapped) to the fmt-chunk format_tag spec §6's table assigns it.
func FormatTagFor(mode HeaderMode, oggWrapped bool) uint16 {
	switch mode {
	case HeaderStrippedOgg:
		return classify.TagVorbis2
	case HeaderInExtension:
		if oggWrapped {
			return classify.TagVorbis3Ogg
		}

		return classify.TagVorbis3
	case HeaderInBand:
		fallthrough
	default:
		if oggWrapped {
			return classify.TagVorbis1Ogg
		}

		return classify.TagVorbis1
	}
}
