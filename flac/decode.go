// Package flac decodes FLAC audio frame-by-frame into native-depth signed
// 32-bit samples, leaving shape conversion to the sample package. Encoding
// is not supported: spec's own non-goals exclude FLAC write support, so
// this package is decode-only.
package flac

import (
	"errors"
	"fmt"
	"io"

	goflac "github.com/mewkiz/flac"

	"github.com/farcloser/wavecraft/blockio"
	"github.com/farcloser/wavecraft/classify"
	"github.com/farcloser/wavecraft/sample"
)

// ErrUnsupportedBitDepth signals a FLAC stream whose native bit depth
// doesn't map onto one of the twelve canonical sample shapes.
var ErrUnsupportedBitDepth = errors.New("flac: unsupported bit depth")

// Decoder pulls interleaved samples out of a FLAC stream through a
// blockio.BufferedDecoder, one frame at a time, so large files never need
// a full in-memory decode.
type Decoder struct {
	stream     *goflac.Stream
	channels   int
	nativeType sample.Type
	pull       *blockio.BufferedDecoder[int32]
}

// NewDecoder opens a FLAC stream for frame-by-frame decoding.
func NewDecoder(rs io.ReadSeeker) (*Decoder, error) {
	stream, err := goflac.New(rs)
	if err != nil {
		return nil, fmt.Errorf("flac: opening stream: %w", err)
	}

	nativeType, err := bitsToType(int(stream.Info.BitsPerSample))
	if err != nil {
		stream.Close()

		return nil, err
	}

	d := &Decoder{
		stream:     stream,
		channels:   int(stream.Info.NChannels),
		nativeType: nativeType,
	}

	d.pull = blockio.NewBufferedDecoder(d.pullFrame)

	return d, nil
}

func (d *Decoder) pullFrame() ([]int32, error) {
	audioFrame, err := d.stream.ParseNext()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}

	if err != nil {
		return nil, fmt.Errorf("flac: decoding frame: %w", err)
	}

	blockSize := int(audioFrame.BlockSize)
	out := make([]int32, blockSize*d.channels)

	pos := 0
	for i := range blockSize {
		for ch := range d.channels {
			out[pos] = audioFrame.Subframes[ch].Samples[i]
			pos++
		}
	}

	return out, nil
}

// Read pulls up to len(dst) interleaved native-depth samples.
func (d *Decoder) Read(dst []int32) (int, error) {
	return d.pull.Read(dst)
}

// Close releases the underlying stream.
func (d *Decoder) Close() error {
	return d.stream.Close() //nolint:wrapcheck // Close error already carries full context from the library.
}

// Channels returns the stream's channel count.
func (d *Decoder) Channels() int {
	return d.channels
}

// SampleRate returns the stream's sample rate in Hz.
func (d *Decoder) SampleRate() uint32 {
	return d.stream.Info.SampleRate
}

// NativeType returns the sample shape each decoded int32 actually holds
// (S8/S16/S24/S32), so a caller can widen losslessly via sample.Of + ScaleTo
// instead of assuming full 32-bit range.
func (d *Decoder) NativeType() sample.Type {
	return d.nativeType
}

func bitsToType(bits int) (sample.Type, error) {
	switch bits {
	case 8:
		return sample.S8, nil
	case 16:
		return sample.S16, nil
	case 24:
		return sample.S24, nil
	case 32:
		return sample.S32, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bits)
	}
}

// FormatTag is the fmt-chunk format_tag value for FLAC streams.
func FormatTag() uint16 {
	return classify.TagFLAC
}

// BlockAlign implements the spec's FLAC fmt-chunk rule: the data chunk
// holds an opaque compressed byte stream, not fixed-size PCM frames.
func BlockAlign() uint16 {
	return 1
}
