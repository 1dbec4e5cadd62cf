package wave

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/farcloser/wavecraft/adpcm"
	"github.com/farcloser/wavecraft/classify"
	"github.com/farcloser/wavecraft/companding"
	"github.com/farcloser/wavecraft/opus"
	"github.com/farcloser/wavecraft/pcmcodec"
	"github.com/farcloser/wavecraft/sample"
)

// encodeSink is the writer's per-codec backend: one frame (or one batch of
// samples on Finish) at a time in, encoded bytes out. byte_rate/block_align
// are queried after Finish so compressed codecs can report their observed
// rate rather than a nominal one (spec §4.7/§4.9).
type encodeSink interface {
	Write(frame []sample.Value) error
	Finish() error
	Stats() (bytesWritten, samplesWritten uint64)
	BlockAlign() uint16
	ByteRate(sampleRate uint32) uint32
}

type pcmWriterSink struct {
	w            io.Writer
	tc           pcmcodec.Transcoder
	bytesWritten uint64
}

func (s *pcmWriterSink) Write(frame []sample.Value) error {
	buf := pcmcodec.EncodeFrameValues(s.tc, frame, nil)

	if _, err := s.w.Write(buf); err != nil {
		return fmt.Errorf("wave: writing pcm frame: %w", err)
	}

	s.bytesWritten += uint64(len(buf))

	return nil
}

func (s *pcmWriterSink) Finish() error { return nil }

func (s *pcmWriterSink) Stats() (uint64, uint64) {
	align := uint64(s.tc.BlockAlign())
	if align == 0 {
		return s.bytesWritten, 0
	}

	return s.bytesWritten, s.bytesWritten / align
}

func (s *pcmWriterSink) BlockAlign() uint16                { return s.tc.BlockAlign() }
func (s *pcmWriterSink) ByteRate(sampleRate uint32) uint32 { return s.tc.ByteRate(sampleRate) }

type companderWriterSink struct {
	w            io.Writer
	channels     int
	encode       func(int16) byte
	bytesWritten uint64
}

func (s *companderWriterSink) Write(frame []sample.Value) error {
	buf := make([]byte, len(frame))

	for i, v := range frame {
		buf[i] = s.encode(sample.As[int16](v.ScaleTo(sample.S16)))
	}

	if _, err := s.w.Write(buf); err != nil {
		return fmt.Errorf("wave: writing companded frame: %w", err)
	}

	s.bytesWritten += uint64(len(buf))

	return nil
}

func (s *companderWriterSink) Finish() error { return nil }

func (s *companderWriterSink) Stats() (uint64, uint64) {
	return s.bytesWritten, s.bytesWritten / uint64(s.channels)
}

func (s *companderWriterSink) BlockAlign() uint16 {
	return companding.BlockAlign(uint16(s.channels)) //nolint:gosec // channel counts are small in practice.
}

func (s *companderWriterSink) ByteRate(sampleRate uint32) uint32 {
	return companding.ByteRate(sampleRate, uint16(s.channels)) //nolint:gosec // channel counts are small in practice.
}

// msDefaultInitialDelta seeds every MS ADPCM block's adaptation state,
// since the format carries no cross-block history (spec §4.6). 16 is the
// conventional starting delta real MS-ADPCM encoders use.
const msDefaultInitialDelta int16 = 16

// adpcmWriterSink accumulates interleaved samples until a full block's
// worth have arrived, then encodes one block at a time (spec §4.6/§4.9).
// IMA and YAMAHA carry adaptation state across blocks; MS does not (each
// block's header is self-contained).
type adpcmWriterSink struct {
	w              io.Writer
	variant        adpcm.Variant
	channels       int
	framesPerBlock int
	blockSize      int

	queue []int16

	imaStates    []adpcm.IMAState
	yamahaStates []adpcm.YamahaState

	bytesWritten   uint64
	samplesWritten uint64
}

func newADPCMWriterSink(w io.Writer, variant adpcm.Variant, channels int) *adpcmWriterSink {
	s := &adpcmWriterSink{
		w:              w,
		variant:        variant,
		channels:       channels,
		framesPerBlock: variant.FramesPerBlock(channels),
		blockSize:      variant.BlockSize(channels),
	}

	switch variant {
	case adpcm.IMA:
		s.imaStates = make([]adpcm.IMAState, channels)
	case adpcm.Yamaha:
		s.yamahaStates = make([]adpcm.YamahaState, channels)
		for i := range s.yamahaStates {
			s.yamahaStates[i] = adpcm.NewYamahaState()
		}
	case adpcm.MS:
	}

	return s
}

func (s *adpcmWriterSink) Write(frame []sample.Value) error {
	for _, v := range frame {
		s.queue = append(s.queue, sample.As[int16](v.ScaleTo(sample.S16)))
	}

	for len(s.queue) >= s.framesPerBlock*s.channels {
		if err := s.emitBlock(); err != nil {
			return err
		}
	}

	return nil
}

func (s *adpcmWriterSink) emitBlock() error {
	idx := 0
	next := func() (int16, bool) {
		if idx >= len(s.queue) {
			return 0, false
		}

		v := s.queue[idx]
		idx++

		return v, true
	}

	var block []byte

	switch s.variant {
	case adpcm.MS:
		block = adpcm.EncodeMSBlock(s.channels, 0, msDefaultInitialDelta, next)
	case adpcm.IMA:
		block = adpcm.EncodeIMABlock(s.channels, s.imaStates, next)
	case adpcm.Yamaha:
		block = adpcm.EncodeYamahaBlock(s.channels, s.yamahaStates, next)
	}

	s.queue = s.queue[idx:]

	if _, err := s.w.Write(block); err != nil {
		return fmt.Errorf("wave: writing adpcm block: %w", err)
	}

	s.bytesWritten += uint64(len(block))
	s.samplesWritten += uint64(s.framesPerBlock)

	return nil
}

// Finish flushes a final, possibly short block; the ADPCM block encoders
// already pad any missing samples with silence (spec's "decode-and-discard
// remainder" counterpart on the write side).
func (s *adpcmWriterSink) Finish() error {
	if len(s.queue) == 0 {
		return nil
	}

	return s.emitBlock()
}

func (s *adpcmWriterSink) Stats() (uint64, uint64) { return s.bytesWritten, s.samplesWritten }
func (s *adpcmWriterSink) BlockAlign() uint16      { return uint16(s.blockSize) } //nolint:gosec // block sizes are small.

func (s *adpcmWriterSink) ByteRate(sampleRate uint32) uint32 {
	return uint32(uint64(sampleRate) * uint64(s.blockSize) / uint64(s.framesPerBlock)) //nolint:gosec // bounded in practice.
}

// adpcmFormatTag returns the fmt-chunk format_tag for an ADPCM variant.
func adpcmFormatTag(v adpcm.Variant) (uint16, error) {
	switch v {
	case adpcm.MS:
		return classify.TagAdpcmMS, nil
	case adpcm.IMA:
		return classify.TagAdpcmIMA, nil
	case adpcm.Yamaha:
		return classify.TagAdpcmYamaha, nil
	default:
		return 0, fmt.Errorf("wave: unknown adpcm variant %d", v)
	}
}

// adpcmCodecExtra encodes the conventional 2-byte samples-per-block field
// real MS/IMA WAV encoders carry in the fmt chunk's cbSize payload. Nothing
// in this module's read path consults it (wave/source.go derives block
// geometry from the format tag and channel count alone); it's carried for
// interoperability with other readers.
func adpcmCodecExtra(v adpcm.Variant, framesPerBlock int) []byte {
	if v == adpcm.Yamaha {
		return nil
	}

	extra := make([]byte, 2)
	binary.LittleEndian.PutUint16(extra, uint16(framesPerBlock)) //nolint:gosec // block frame counts are small.

	return extra
}

type opusWriterSink struct {
	enc *opus.Encoder
}

func (s *opusWriterSink) Write(frame []sample.Value) error {
	buf := make([]int16, len(frame))

	for i, v := range frame {
		buf[i] = sample.As[int16](v.ScaleTo(sample.S16))
	}

	if err := s.enc.Write(buf); err != nil {
		return fmt.Errorf("wave: writing opus frame: %w", err)
	}

	return nil
}

func (s *opusWriterSink) Finish() error {
	if err := s.enc.Finish(); err != nil {
		return fmt.Errorf("wave: finishing opus stream: %w", err)
	}

	return nil
}

func (s *opusWriterSink) Stats() (uint64, uint64) { return s.enc.Stats() }
func (s *opusWriterSink) BlockAlign() uint16      { return s.enc.BlockAlign() }

func (s *opusWriterSink) ByteRate(sampleRate uint32) uint32 {
	bytesWritten, samplesWritten := s.enc.Stats()
	if samplesWritten == 0 {
		return 0
	}

	return uint32(bytesWritten * uint64(sampleRate) / samplesWritten) //nolint:gosec // bounded in practice.
}
