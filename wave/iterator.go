package wave

import (
	"fmt"

	"github.com/farcloser/wavecraft/sample"
	"github.com/farcloser/wavecraft/waveerr"
)

// FrameIterator pulls successive interleaved frames through its own
// SampleSource instance, which gives it an independent seek cursor even
// though every iterator minted from the same Reader ultimately reads
// through the same underlying handle (spec §4.10: "each iterator owns a
// distinct byte-stream cursor into the data source").
type FrameIterator struct {
	source SampleSource
	cursor uint64
}

// Frames mints a frame iterator with its own cursor, positioned at the
// start of the data chunk.
func (r *Reader) Frames() (*FrameIterator, error) {
	src, err := r.Source()
	if err != nil {
		return nil, err
	}

	return &FrameIterator{source: src}, nil
}

// Channels reports the number of interleaved samples per frame.
func (it *FrameIterator) Channels() int { return it.source.Channels() }

// Next decodes and returns the next frame, or io.EOF once the data chunk
// is exhausted.
func (it *FrameIterator) Next() ([]sample.Value, error) {
	frame, err := it.source.ReadFrame()
	if err != nil {
		return nil, err //nolint:wrapcheck // io.EOF and already-wrapped source errors pass through verbatim.
	}

	it.cursor++

	return frame, nil
}

// Nth skips k frames from the current position and returns the frame
// immediately after (nth(0) behaves like Next). Frame-seekable sources
// (PCM: absolute byte offset; ADPCM: block-aligned seek plus reset_states
// and decode-and-discard of any partial-block remainder) jump directly;
// every other source decodes and discards each skipped frame (spec §4.10).
func (it *FrameIterator) Nth(k uint64) ([]sample.Value, error) {
	if seeker, ok := it.source.(FrameSeeker); ok {
		target := it.cursor + k

		if err := seeker.SeekFrame(target); err != nil {
			return nil, err
		}

		it.cursor = target

		return it.Next()
	}

	for range k {
		if _, err := it.source.ReadFrame(); err != nil {
			return nil, err //nolint:wrapcheck
		}

		it.cursor++
	}

	return it.Next()
}

// MonoIterator yields one sample per frame, averaging all channels of a
// multi-channel source down to mono (spec §4.10).
type MonoIterator struct {
	frames *FrameIterator
}

// Mono mints a mono iterator with its own cursor.
func (r *Reader) Mono() (*MonoIterator, error) {
	frames, err := r.Frames()
	if err != nil {
		return nil, err
	}

	return &MonoIterator{frames: frames}, nil
}

// Next decodes the next frame and downmixes it to a single sample.
func (it *MonoIterator) Next() (sample.Value, error) {
	frame, err := it.frames.Next()
	if err != nil {
		return sample.Value{}, err
	}

	return averageFrame(frame), nil
}

// Nth skips k frames and downmixes the one immediately after.
func (it *MonoIterator) Nth(k uint64) (sample.Value, error) {
	frame, err := it.frames.Nth(k)
	if err != nil {
		return sample.Value{}, err
	}

	return averageFrame(frame), nil
}

// averageFrame downmixes an arbitrary-channel frame to one sample by
// arithmetic mean in float space, generalizing blockio.Downmix's
// stereo-pair formula (mono := (L+R)/2) to N channels of shape-erased
// Values.
func averageFrame(frame []sample.Value) sample.Value {
	if len(frame) == 1 {
		return frame[0]
	}

	native := frame[0].Type

	var sum float64
	for _, v := range frame {
		sum += sample.As[float64](v.ScaleTo(sample.F64))
	}

	return sample.Of(sum / float64(len(frame))).ScaleTo(native)
}

// StereoFrame is one (left, right) pair yielded by a StereoIterator.
type StereoFrame struct {
	Left, Right sample.Value
}

// StereoIterator yields (left, right) pairs: a mono source's sample is
// duplicated into both channels, a stereo source passes through unchanged,
// and construction fails for anything wider (spec §4.10).
type StereoIterator struct {
	frames *FrameIterator
}

// Stereo mints a stereo iterator with its own cursor.
func (r *Reader) Stereo() (*StereoIterator, error) {
	frames, err := r.Frames()
	if err != nil {
		return nil, err
	}

	if ch := frames.Channels(); ch > 2 {
		return nil, &waveerr.InvalidArguments{
			Message: fmt.Sprintf("stereo iterator requires 1 or 2 channels, got %d", ch),
		}
	}

	return &StereoIterator{frames: frames}, nil
}

// Next decodes the next frame as a stereo pair.
func (it *StereoIterator) Next() (StereoFrame, error) {
	frame, err := it.frames.Next()
	if err != nil {
		return StereoFrame{}, err
	}

	return stereoFrame(frame), nil
}

// Nth skips k frames and returns the one immediately after as a stereo
// pair.
func (it *StereoIterator) Nth(k uint64) (StereoFrame, error) {
	frame, err := it.frames.Nth(k)
	if err != nil {
		return StereoFrame{}, err
	}

	return stereoFrame(frame), nil
}

func stereoFrame(frame []sample.Value) StereoFrame {
	if len(frame) == 1 {
		return StereoFrame{Left: frame[0], Right: frame[0]}
	}

	return StereoFrame{Left: frame[0], Right: frame[1]}
}
