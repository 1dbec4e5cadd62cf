package wave

import (
	"errors"
	"fmt"
	"io"

	"github.com/farcloser/wavecraft/adpcm"
	"github.com/farcloser/wavecraft/companding"
	"github.com/farcloser/wavecraft/pcmcodec"
	"github.com/farcloser/wavecraft/sample"
	"github.com/farcloser/wavecraft/waveerr"
)

// SampleSource yields successive audio frames (one sample per channel) as
// shape-erased Values, the common decode interface every codec branch
// (PCM, companding, ADPCM, or a block-codec adapter) presents to the
// iterator façade.
type SampleSource interface {
	Channels() int
	ReadFrame() ([]sample.Value, error)
}

// FrameSeeker is implemented by sources that can jump directly to a frame
// index without decoding every intervening frame (spec §4.10): PCM always,
// ADPCM via block-aligned seek plus partial in-block decode-and-discard.
// Sources without this capability fall back to the iterator's generic
// decode-and-discard loop.
type FrameSeeker interface {
	SeekFrame(frameIndex uint64) error
}

// pcmSource decodes uncompressed PCM frames directly by absolute byte
// offset (spec §4.10: "PCM: absolute seek to data_offset + frame_index ×
// block_align").
type pcmSource struct {
	rs        io.ReadSeeker
	dataStart int64
	tc        pcmcodec.Transcoder
}

func newPCMSource(rs io.ReadSeeker, dataStart int64, tc pcmcodec.Transcoder) *pcmSource {
	return &pcmSource{rs: rs, dataStart: dataStart, tc: tc}
}

func (s *pcmSource) Channels() int { return int(s.tc.Channels) }

func (s *pcmSource) ReadFrame() ([]sample.Value, error) {
	buf := make([]byte, s.tc.BlockAlign())

	if _, err := io.ReadFull(s.rs, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}

		return nil, fmt.Errorf("wave: reading pcm frame: %w", err)
	}

	return pcmcodec.DecodeFrameValues(s.tc, buf), nil
}

func (s *pcmSource) SeekFrame(frameIndex uint64) error {
	pos := s.dataStart + int64(frameIndex)*int64(s.tc.BlockAlign())

	if _, err := s.rs.Seek(pos, io.SeekStart); err != nil {
		return fmt.Errorf("wave: seeking pcm frame: %w", err)
	}

	return nil
}

// companderSource decodes A-law/µ-law frames directly by absolute byte
// offset (block_align = channels, one byte per channel per spec §4.8).
type companderSource struct {
	rs        io.ReadSeeker
	dataStart int64
	channels  int
	decode    func(byte) int16
}

func newCompanderSource(rs io.ReadSeeker, dataStart int64, channels int, decode func(byte) int16) *companderSource {
	return &companderSource{rs: rs, dataStart: dataStart, channels: channels, decode: decode}
}

func (s *companderSource) Channels() int { return s.channels }

func (s *companderSource) ReadFrame() ([]sample.Value, error) {
	buf := make([]byte, s.channels)

	if _, err := io.ReadFull(s.rs, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}

		return nil, fmt.Errorf("wave: reading companded frame: %w", err)
	}

	out := make([]sample.Value, s.channels)
	for i, b := range buf {
		out[i] = sample.Of(s.decode(b))
	}

	return out, nil
}

func (s *companderSource) SeekFrame(frameIndex uint64) error {
	pos := s.dataStart + int64(frameIndex)*int64(s.channels)

	if _, err := s.rs.Seek(pos, io.SeekStart); err != nil {
		return fmt.Errorf("wave: seeking companded frame: %w", err)
	}

	return nil
}

// adpcmSource decodes one block at a time, buffering the resulting
// interleaved frames for pull-sized consumption. Seeking jumps to the
// containing block, resets decoder state, then decode-and-discards the
// remainder within the block (spec §4.10).
type adpcmSource struct {
	variant        adpcm.Variant
	channels       int
	rs             io.ReadSeeker
	dataStart      int64
	blockSize      int
	framesPerBlock int
	yamahaStates   []adpcm.YamahaState
	queue          []int16
	eof            bool
}

func newADPCMSource(variant adpcm.Variant, channels int, rs io.ReadSeeker, dataStart int64) *adpcmSource {
	s := &adpcmSource{
		variant:        variant,
		channels:       channels,
		rs:             rs,
		dataStart:      dataStart,
		blockSize:      variant.BlockSize(channels),
		framesPerBlock: variant.FramesPerBlock(channels),
	}

	s.resetYamahaStates()

	return s
}

func (s *adpcmSource) resetYamahaStates() {
	if s.variant != adpcm.Yamaha {
		return
	}

	s.yamahaStates = make([]adpcm.YamahaState, s.channels)
	for i := range s.yamahaStates {
		s.yamahaStates[i] = adpcm.NewYamahaState()
	}
}

func (s *adpcmSource) Channels() int { return s.channels }

func (s *adpcmSource) nextBlock() error {
	block := make([]byte, s.blockSize)

	n, err := io.ReadFull(s.rs, block)
	if n == 0 && errors.Is(err, io.EOF) {
		s.eof = true

		return io.EOF
	}

	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("wave: reading adpcm block: %w", err)
	}

	block = block[:n]

	var out []int16

	emit := func(v int16) { out = append(out, v) }

	var decodeErr error

	switch s.variant {
	case adpcm.IMA:
		decodeErr = adpcm.DecodeIMABlock(s.channels, block, emit)
	case adpcm.MS:
		decodeErr = adpcm.DecodeMSBlock(s.channels, block, emit)
	case adpcm.Yamaha:
		decodeErr = adpcm.DecodeYamahaBlock(s.channels, s.yamahaStates, block, emit)
	}

	if decodeErr != nil {
		var badIdx *adpcm.ErrBadPredictorIndex
		if errors.As(decodeErr, &badIdx) {
			return &waveerr.InvalidData{Message: decodeErr.Error()}
		}

		return fmt.Errorf("wave: decoding adpcm block: %w", decodeErr)
	}

	s.queue = append(s.queue, out...)

	if n < s.blockSize {
		s.eof = true
	}

	return nil
}

func (s *adpcmSource) ReadFrame() ([]sample.Value, error) {
	for len(s.queue) < s.channels && !s.eof {
		if err := s.nextBlock(); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	}

	if len(s.queue) < s.channels {
		return nil, io.EOF
	}

	frame := s.queue[:s.channels]
	s.queue = s.queue[s.channels:]

	out := make([]sample.Value, s.channels)
	for i, v := range frame {
		out[i] = sample.Of(v)
	}

	return out, nil
}

func (s *adpcmSource) SeekFrame(frameIndex uint64) error {
	blockIndex := frameIndex / uint64(s.framesPerBlock) //nolint:gosec // framesPerBlock always > 0.
	within := frameIndex % uint64(s.framesPerBlock)      //nolint:gosec // see above.
	pos := s.dataStart + int64(blockIndex)*int64(s.blockSize)

	if _, err := s.rs.Seek(pos, io.SeekStart); err != nil {
		return fmt.Errorf("wave: seeking adpcm block: %w", err)
	}

	s.queue = nil
	s.eof = false
	s.resetYamahaStates()

	for range within {
		if _, err := s.ReadFrame(); err != nil {
			return err
		}
	}

	return nil
}

// blockCodecSource adapts a block-codec adapter's int16 pull interface
// (mp3, vorbis, opus) into a SampleSource. Seeking is not supported:
// compressed codecs always fall back to the iterator's generic
// decode-and-discard loop (spec §4.10).
type blockCodecSource struct {
	channels int
	pull     func([]int16) (int, error)
}

func newBlockCodecSource(channels int, pull func([]int16) (int, error)) *blockCodecSource {
	return &blockCodecSource{channels: channels, pull: pull}
}

func (s *blockCodecSource) Channels() int { return s.channels }

func (s *blockCodecSource) ReadFrame() ([]sample.Value, error) {
	buf := make([]int16, s.channels)

	total := 0
	for total < len(buf) {
		n, err := s.pull(buf[total:])
		total += n

		if err != nil {
			if errors.Is(err, io.EOF) && total == 0 {
				return nil, io.EOF
			}

			if errors.Is(err, io.EOF) {
				break
			}

			return nil, fmt.Errorf("wave: reading block-codec frame: %w", err)
		}

		if n == 0 {
			break
		}
	}

	if total < len(buf) {
		return nil, io.EOF
	}

	out := make([]sample.Value, s.channels)
	for i, v := range buf {
		out[i] = sample.Of(v)
	}

	return out, nil
}

// flacBlockSource adapts the FLAC decoder's int32 native-depth pull
// interface, widening each sample into a Value tagged with the stream's
// native shape.
type flacBlockSource struct {
	channels   int
	nativeType sample.Type
	pull       func([]int32) (int, error)
}

func newFLACBlockSource(channels int, nativeType sample.Type, pull func([]int32) (int, error)) *flacBlockSource {
	return &flacBlockSource{channels: channels, nativeType: nativeType, pull: pull}
}

func (s *flacBlockSource) Channels() int { return s.channels }

func (s *flacBlockSource) ReadFrame() ([]sample.Value, error) {
	buf := make([]int32, s.channels)

	total := 0
	for total < len(buf) {
		n, err := s.pull(buf[total:])
		total += n

		if err != nil {
			if errors.Is(err, io.EOF) && total == 0 {
				return nil, io.EOF
			}

			if errors.Is(err, io.EOF) {
				break
			}

			return nil, fmt.Errorf("wave: reading flac frame: %w", err)
		}

		if n == 0 {
			break
		}
	}

	if total < len(buf) {
		return nil, io.EOF
	}

	out := make([]sample.Value, s.channels)

	for i, v := range buf {
		out[i] = nativeValue(s.nativeType, v)
	}

	return out, nil
}

func nativeValue(t sample.Type, v int32) sample.Value {
	switch t {
	case sample.S8:
		return sample.Of(int8(v)) //nolint:gosec // caller guarantees v fits the native depth.
	case sample.S16:
		return sample.Of(int16(v)) //nolint:gosec // see above.
	case sample.S24:
		return sample.Of(sample.Int24(v))
	default:
		return sample.Of(v)
	}
}

func alawDecode() func(byte) int16 { return companding.DecodeALaw }
func mulawDecode() func(byte) int16 { return companding.DecodeMuLaw }
