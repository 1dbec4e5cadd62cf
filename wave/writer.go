package wave

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/farcloser/wavecraft/adpcm"
	"github.com/farcloser/wavecraft/chunkio"
	"github.com/farcloser/wavecraft/classify"
	"github.com/farcloser/wavecraft/companding"
	"github.com/farcloser/wavecraft/opus"
	"github.com/farcloser/wavecraft/pcmcodec"
	"github.com/farcloser/wavecraft/sample"
	"github.com/farcloser/wavecraft/waveerr"
)

type writerState uint8

const (
	stateHeaded writerState = iota
	stateStreaming
	stateFinished
)

const (
	// ds64ReserveSize is the fixed portion of a ds64 body (riffSize,
	// dataSize, sampleCount, tableLength) with an empty overflow table —
	// spec §4.9's "at least 28 bytes of JUNK reserved by default".
	ds64ReserveSize = 28

	maxChunkSize32   = 0xFFFFFFFE
	rf64SizeSentinel = 0xFFFFFFFF
)

// stagedMeta is the writer's staging area for inherited/attached optional
// chunks, written out after the data chunk at Finish (spec §4.9's metadata
// inheritance). LIST-INFO-to-codec-comment-key mapping for FLAC/Vorbis
// encoders named in spec §4.9 doesn't apply here: this module only
// implements FLAC/Vorbis/MP3 decode, never encode (§4.7 non-goal).
type stagedMeta struct {
	Info *chunkio.ListInfo
	Adtl *chunkio.ListAdtl
	Bext *chunkio.BextChunk
	Smpl *chunkio.SmplChunk
	Inst *chunkio.InstChunk
	Cue  *chunkio.CueChunk
	Plst *chunkio.PlstChunk
	Acid *chunkio.AcidChunk
	Trkn *chunkio.TrknChunk
	Axml *chunkio.AxmlChunk
	Ixml *chunkio.IxmlChunk
	ID3  *chunkio.RawID3
}

// Writer drives the envelope/fmt/data state machine described in spec
// §4.9 (C9): Headed (envelope, fmt placeholder, data offset recorded) folds
// into the constructor's return value here, since nothing observable
// happens between "data header written" and "first sample accepted" — the
// states a caller can actually see are Streaming and Finished.
type Writer struct {
	ws     io.WriteSeeker
	policy FileSizePolicy
	state  writerState

	riffSizeOffset int64
	reservedOffset int64 // offset of the reserved ds64/JUNK chunk's ID bytes; 0 if none.
	isRF64         bool

	fmtChunk         chunkio.FmtChunk
	byteRateOffset   int64
	blockAlignOffset int64

	dataSizeOffset int64
	dataOffset     int64

	sink     encodeSink
	channels int

	meta stagedMeta
}

// openEnvelope writes the RIFF/RF64 envelope, the WAVE flag, and — per
// policy — a ds64 chunk (ForceUse4GBFormat) or a reservable JUNK slot
// (AllowLargerThan4GB) sized to later hold one (spec §4.9).
func openEnvelope(ws io.WriteSeeker, policy FileSizePolicy, channels uint16) (*Writer, error) {
	if channels == 0 {
		return nil, &waveerr.InvalidArguments{Message: "channels must be at least 1"}
	}

	isRF64 := policy == ForceUse4GBFormat

	flag := "RIFF"
	if isRF64 {
		flag = "RF64"
	}

	if _, err := ws.Write([]byte(flag)); err != nil {
		return nil, fmt.Errorf("wave: writing envelope flag: %w", err)
	}

	riffSizeOffset, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("wave: reading cursor: %w", err)
	}

	placeholder := uint32(0)
	if isRF64 {
		placeholder = rf64SizeSentinel
	}

	var sizeBuf [4]byte

	binary.LittleEndian.PutUint32(sizeBuf[:], placeholder)

	if _, err := ws.Write(sizeBuf[:]); err != nil {
		return nil, fmt.Errorf("wave: writing envelope size placeholder: %w", err)
	}

	if _, err := ws.Write([]byte("WAVE")); err != nil {
		return nil, fmt.Errorf("wave: writing WAVE flag: %w", err)
	}

	w := &Writer{
		ws:             ws,
		policy:         policy,
		state:          stateHeaded,
		riffSizeOffset: riffSizeOffset,
		isRF64:         isRF64,
		channels:       int(channels),
	}

	switch {
	case isRF64:
		if err := w.reserveDS64Slot("ds64"); err != nil {
			return nil, err
		}
	case policy == AllowLargerThan4GB:
		if err := w.reserveDS64Slot("JUNK"); err != nil {
			return nil, err
		}
	}

	return w, nil
}

func (w *Writer) reserveDS64Slot(id string) error {
	reservedOffset, err := w.ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("wave: reading cursor: %w", err)
	}

	if err := writeChunkHeader(w.ws, id, ds64ReserveSize); err != nil {
		return err
	}

	if _, err := w.ws.Write(make([]byte, ds64ReserveSize)); err != nil {
		return fmt.Errorf("wave: writing %q reservation: %w", id, err)
	}

	w.reservedOffset = reservedOffset

	return nil
}

func writeChunkHeader(w io.Writer, id string, size uint32) error {
	var hdr [8]byte

	copy(hdr[0:4], id)
	binary.LittleEndian.PutUint32(hdr[4:8], size)

	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("wave: writing %q chunk header: %w", id, err)
	}

	return nil
}

// writeFmtAndData writes the fmt chunk and the data chunk's placeholder
// header, records every offset Finish will later patch, and moves the
// writer into its streaming state.
func (w *Writer) writeFmtAndData(fmtChunk chunkio.FmtChunk, sink encodeSink) error {
	var buf bytes.Buffer

	if _, err := fmtChunk.WriteTo(&buf); err != nil {
		return fmt.Errorf("wave: encoding fmt chunk: %w", err)
	}

	if err := writeChunkHeader(w.ws, "fmt ", uint32(buf.Len())); err != nil { //nolint:gosec // fmt chunk is at most 40 bytes.
		return err
	}

	fmtBodyOffset, err := w.ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("wave: reading cursor: %w", err)
	}

	if _, err := w.ws.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("wave: writing fmt chunk body: %w", err)
	}

	if buf.Len()%2 == 1 {
		if _, err := w.ws.Write([]byte{0}); err != nil {
			return fmt.Errorf("wave: writing fmt chunk pad byte: %w", err)
		}
	}

	w.fmtChunk = fmtChunk
	w.byteRateOffset = fmtBodyOffset + 8
	w.blockAlignOffset = fmtBodyOffset + 12

	dataHeaderOffset, err := w.ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("wave: reading cursor: %w", err)
	}

	if err := writeChunkHeader(w.ws, "data", 0); err != nil {
		return err
	}

	w.dataSizeOffset = dataHeaderOffset + 4
	w.dataOffset = dataHeaderOffset + 8
	w.sink = sink
	w.state = stateStreaming

	return nil
}

// NewPCMWriter opens a writer for uncompressed PCM (spec §4.5/§4.9).
func NewPCMWriter(ws io.WriteSeeker, spec Spec, policy FileSizePolicy) (*Writer, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	target, err := spec.WaveSampleType()
	if err != nil {
		return nil, err
	}

	tc, err := pcmcodec.NewTranscoder(target, spec.Channels, spec.ChannelMask)
	if err != nil {
		return nil, &waveerr.InvalidArguments{Message: err.Error()}
	}

	w, err := openEnvelope(ws, policy, spec.Channels)
	if err != nil {
		return nil, err
	}

	fmtChunk := pcmcodec.BuildFmtChunk(tc, spec.SampleRate, spec.ChannelMask)
	sink := &pcmWriterSink{w: w.ws, tc: tc}

	if err := w.writeFmtAndData(fmtChunk, sink); err != nil {
		return nil, err
	}

	return w, nil
}

// CompandingLaw selects between the two companding codecs C7 implements.
type CompandingLaw uint8

// Recognized companding laws.
const (
	ALaw CompandingLaw = iota
	MuLaw
)

// NewCompandedWriter opens a writer for A-law or μ-law companded audio
// (spec §4.8).
func NewCompandedWriter(
	ws io.WriteSeeker, channels uint16, sampleRate uint32, law CompandingLaw, policy FileSizePolicy,
) (*Writer, error) {
	w, err := openEnvelope(ws, policy, channels)
	if err != nil {
		return nil, err
	}

	var (
		tag    uint16
		encode func(int16) byte
	)

	switch law {
	case ALaw:
		tag, encode = classify.TagALaw, companding.EncodeALaw
	case MuLaw:
		tag, encode = classify.TagMULaw, companding.EncodeMuLaw
	default:
		return nil, &waveerr.InvalidArguments{Message: fmt.Sprintf("unknown companding law %d", law)}
	}

	fmtChunk := chunkio.FmtChunk{
		FormatTag:     tag,
		Channels:      channels,
		SampleRate:    sampleRate,
		ByteRate:      companding.ByteRate(sampleRate, channels),
		BlockAlign:    companding.BlockAlign(channels),
		BitsPerSample: 8,
	}

	sink := &companderWriterSink{w: w.ws, channels: int(channels), encode: encode}

	if err := w.writeFmtAndData(fmtChunk, sink); err != nil {
		return nil, err
	}

	return w, nil
}

// NewADPCMWriter opens a writer for one of the three ADPCM variants (spec
// §4.6/§4.9).
func NewADPCMWriter(
	ws io.WriteSeeker, channels uint16, sampleRate uint32, variant adpcm.Variant, policy FileSizePolicy,
) (*Writer, error) {
	tag, err := adpcmFormatTag(variant)
	if err != nil {
		return nil, &waveerr.InvalidArguments{Message: err.Error()}
	}

	w, err := openEnvelope(ws, policy, channels)
	if err != nil {
		return nil, err
	}

	blockSize := variant.BlockSize(int(channels))
	framesPerBlock := variant.FramesPerBlock(int(channels))

	fmtChunk := chunkio.FmtChunk{
		FormatTag:     tag,
		Channels:      channels,
		SampleRate:    sampleRate,
		ByteRate:      uint32(uint64(sampleRate) * uint64(blockSize) / uint64(framesPerBlock)), //nolint:gosec
		BlockAlign:    uint16(blockSize),                                                       //nolint:gosec // block sizes are small.
		BitsPerSample: 4,
		CodecExtra:    adpcmCodecExtra(variant, framesPerBlock),
	}

	sink := newADPCMWriterSink(w.ws, variant, int(channels))

	if err := w.writeFmtAndData(fmtChunk, sink); err != nil {
		return nil, err
	}

	return w, nil
}

// NewOpusWriter opens a writer backed by an Opus encoder, the one codec
// family with a real two-way binding in this module (spec §4.7).
func NewOpusWriter(
	ws io.WriteSeeker, channels uint16, sampleRate uint32, samplesPerEncode int, policy FileSizePolicy,
) (*Writer, error) {
	w, err := openEnvelope(ws, policy, channels)
	if err != nil {
		return nil, err
	}

	enc, err := opus.NewEncoder(w.ws, int(sampleRate), int(channels), samplesPerEncode)
	if err != nil {
		return nil, fmt.Errorf("wave: creating opus encoder: %w", err)
	}

	fmtChunk := chunkio.FmtChunk{
		FormatTag:  classify.TagOpus,
		Channels:   channels,
		SampleRate: sampleRate,
		BlockAlign: enc.BlockAlign(),
	}

	sink := &opusWriterSink{enc: enc}

	if err := w.writeFmtAndData(fmtChunk, sink); err != nil {
		return nil, err
	}

	return w, nil
}

// WriteFrame writes one interleaved frame of channels samples.
func (w *Writer) WriteFrame(frame []sample.Value) error {
	if w.state == stateFinished {
		return &waveerr.AlreadyFinished{}
	}

	if w.state != stateStreaming {
		return fmt.Errorf("wave: writer not ready for samples")
	}

	if len(frame) != w.channels {
		return &waveerr.WrongChannels{Want: w.channels, Got: len(frame)}
	}

	return w.sink.Write(frame) //nolint:wrapcheck // sinks already wrap their own errors.
}

// WriteChannels writes a batch given as one slice per channel (spec §4.9's
// batch entry point); all channel slices must share the same length.
func (w *Writer) WriteChannels(channels [][]sample.Value) error {
	if len(channels) != w.channels {
		return &waveerr.WrongChannels{Want: w.channels, Got: len(channels)}
	}

	if len(channels) == 0 {
		return nil
	}

	frames := len(channels[0])

	for _, ch := range channels {
		if len(ch) != frames {
			return &waveerr.TruncatedSamples{}
		}
	}

	frame := make([]sample.Value, len(channels))

	for i := 0; i < frames; i++ {
		for c := range channels {
			frame[c] = channels[c][i]
		}

		if err := w.WriteFrame(frame); err != nil {
			return err
		}
	}

	return nil
}

// InheritFrom copies a parsed reader's optional metadata chunks into this
// writer's staging set, skipping any slot already populated unless
// overwrite is requested (spec §4.9).
func (w *Writer) InheritFrom(snap Snapshot, overwrite bool) {
	if snap.Info != nil && (overwrite || w.meta.Info == nil) {
		w.meta.Info = snap.Info
	}

	if snap.Adtl != nil && (overwrite || w.meta.Adtl == nil) {
		w.meta.Adtl = snap.Adtl
	}

	if snap.Bext != nil && (overwrite || w.meta.Bext == nil) {
		w.meta.Bext = snap.Bext
	}

	if snap.Smpl != nil && (overwrite || w.meta.Smpl == nil) {
		w.meta.Smpl = snap.Smpl
	}

	if snap.Inst != nil && (overwrite || w.meta.Inst == nil) {
		w.meta.Inst = snap.Inst
	}

	if snap.Cue != nil && (overwrite || w.meta.Cue == nil) {
		w.meta.Cue = snap.Cue
	}

	if snap.Plst != nil && (overwrite || w.meta.Plst == nil) {
		w.meta.Plst = snap.Plst
	}

	if snap.Acid != nil && (overwrite || w.meta.Acid == nil) {
		w.meta.Acid = snap.Acid
	}

	if snap.Trkn != nil && (overwrite || w.meta.Trkn == nil) {
		w.meta.Trkn = snap.Trkn
	}

	if snap.Axml != nil && (overwrite || w.meta.Axml == nil) {
		w.meta.Axml = snap.Axml
	}

	if snap.Ixml != nil && (overwrite || w.meta.Ixml == nil) {
		w.meta.Ixml = snap.Ixml
	}

	if snap.ID3 != nil && (overwrite || w.meta.ID3 == nil) {
		w.meta.ID3 = snap.ID3
	}
}

// Finish drains the encoder, patches byte_rate/block_align/data-size, and —
// if the data size exceeds 4 GiB and the policy permits — upgrades the
// envelope to RF64 in place before appending staged metadata chunks and
// patching the final riff/ds64 size fields (spec §4.9). Idempotent.
func (w *Writer) Finish() error {
	if w.state == stateFinished {
		return nil
	}

	if w.state != stateStreaming {
		return fmt.Errorf("wave: finish called before streaming began")
	}

	if err := w.sink.Finish(); err != nil {
		return fmt.Errorf("wave: finishing encoder: %w", err)
	}

	bytesWritten, samplesWritten := w.sink.Stats()

	if bytesWritten%2 == 1 {
		if _, err := w.ws.Write([]byte{0}); err != nil {
			return fmt.Errorf("wave: writing data chunk pad byte: %w", err)
		}
	}

	if bytesWritten > maxChunkSize32 && w.policy == NeverLargerThan4GB {
		return &waveerr.NotPreparedFor4GBFile{DataSize: bytesWritten}
	}

	needsRF64 := w.isRF64 || bytesWritten > maxChunkSize32

	if err := w.patchU32(w.byteRateOffset, w.sink.ByteRate(w.fmtChunk.SampleRate)); err != nil {
		return err
	}

	if err := w.patchU16(w.blockAlignOffset, w.sink.BlockAlign()); err != nil {
		return err
	}

	if needsRF64 && !w.isRF64 {
		if w.reservedOffset == 0 {
			return &waveerr.NotPreparedFor4GBFile{DataSize: bytesWritten}
		}

		if err := w.upgradeToRF64(); err != nil {
			return err
		}

		w.isRF64 = true
	}

	if needsRF64 {
		if err := w.patchU32(w.dataSizeOffset, rf64SizeSentinel); err != nil {
			return err
		}
	} else {
		if err := w.patchU32(w.dataSizeOffset, uint32(bytesWritten)); err != nil { //nolint:gosec // guarded above.
			return err
		}
	}

	if err := w.writeMetadata(); err != nil {
		return err
	}

	finalEnd, err := w.ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("wave: locating final end of stream: %w", err)
	}

	if needsRF64 {
		d := chunkio.DS64Chunk{RiffSize: uint64(finalEnd - 8), DataSize: bytesWritten, SampleCount: samplesWritten}

		if err := w.patchDS64(d); err != nil {
			return err
		}

		if err := w.patchU32(w.riffSizeOffset, rf64SizeSentinel); err != nil {
			return err
		}
	} else {
		if err := w.patchU32(w.riffSizeOffset, uint32(finalEnd-8)); err != nil { //nolint:gosec // bounded by needsRF64 check.
			return err
		}
	}

	w.state = stateFinished

	return nil
}

// upgradeToRF64 replaces the envelope flag and the reserved JUNK chunk's ID
// with RF64/ds64, in place (spec §4.9).
func (w *Writer) upgradeToRF64() error {
	cur, err := w.ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("wave: reading cursor: %w", err)
	}

	if _, err := w.ws.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("wave: seeking to envelope flag: %w", err)
	}

	if _, err := w.ws.Write([]byte("RF64")); err != nil {
		return fmt.Errorf("wave: upgrading envelope flag: %w", err)
	}

	if _, err := w.ws.Seek(w.reservedOffset, io.SeekStart); err != nil {
		return fmt.Errorf("wave: seeking to reserved chunk: %w", err)
	}

	if _, err := w.ws.Write([]byte("ds64")); err != nil {
		return fmt.Errorf("wave: upgrading reserved chunk to ds64: %w", err)
	}

	if _, err := w.ws.Seek(cur, io.SeekStart); err != nil {
		return fmt.Errorf("wave: restoring cursor: %w", err)
	}

	return nil
}

func (w *Writer) writeMetadata() error {
	writers := []struct {
		id   string
		body chunkWriterTo
	}{
		{"LIST", metaOrNil(w.meta.Info)},
		{"LIST", metaOrNil(w.meta.Adtl)},
		{"bext", metaOrNil(w.meta.Bext)},
		{"smpl", metaOrNil(w.meta.Smpl)},
		{"cue ", metaOrNil(w.meta.Cue)},
		{"plst", metaOrNil(w.meta.Plst)},
		{"acid", metaOrNil(w.meta.Acid)},
		{"axml", metaOrNil(w.meta.Axml)},
		{"iXML", metaOrNil(w.meta.Ixml)},
		{"id3 ", metaOrNil(w.meta.ID3)},
	}

	for _, entry := range writers {
		if entry.body == nil {
			continue
		}

		if err := w.writeChunkWriterTo(entry.id, entry.body); err != nil {
			return err
		}
	}

	if w.meta.Inst != nil {
		if err := w.writeRawChunk("inst", w.meta.Inst.Bytes()); err != nil {
			return err
		}
	}

	if w.meta.Trkn != nil {
		if err := w.writeRawChunk("trkn", w.meta.Trkn.Bytes()); err != nil {
			return err
		}
	}

	return nil
}

// chunkWriterTo is the shape every fixed-format metadata chunk body
// implements; metaOrNil below type-erases a typed *T into this interface
// without the caller needing to repeat a nil check per field.
type chunkWriterTo interface {
	WriteTo(io.Writer) (int64, error)
}

func metaOrNil[T chunkWriterTo](p *T) chunkWriterTo {
	if p == nil {
		return nil
	}

	return *p
}

func (w *Writer) writeChunkWriterTo(id string, body chunkWriterTo) error {
	var buf bytes.Buffer

	if _, err := body.WriteTo(&buf); err != nil {
		return fmt.Errorf("wave: encoding %q chunk: %w", id, err)
	}

	return w.writeRawChunk(id, buf.Bytes())
}

func (w *Writer) writeRawChunk(id string, body []byte) error {
	if err := writeChunkHeader(w.ws, id, uint32(len(body))); err != nil { //nolint:gosec // metadata chunks are small.
		return err
	}

	if _, err := w.ws.Write(body); err != nil {
		return fmt.Errorf("wave: writing %q chunk body: %w", id, err)
	}

	if len(body)%2 == 1 {
		if _, err := w.ws.Write([]byte{0}); err != nil {
			return fmt.Errorf("wave: writing %q chunk pad byte: %w", id, err)
		}
	}

	return nil
}

func (w *Writer) patchU16(offset int64, v uint16) error {
	return w.withPatch(offset, func() error {
		var buf [2]byte

		binary.LittleEndian.PutUint16(buf[:], v)
		_, err := w.ws.Write(buf[:])

		return err //nolint:wrapcheck // wrapped by withPatch.
	})
}

func (w *Writer) patchU32(offset int64, v uint32) error {
	return w.withPatch(offset, func() error {
		var buf [4]byte

		binary.LittleEndian.PutUint32(buf[:], v)
		_, err := w.ws.Write(buf[:])

		return err //nolint:wrapcheck // wrapped by withPatch.
	})
}

func (w *Writer) patchDS64(d chunkio.DS64Chunk) error {
	return w.withPatch(w.reservedOffset+8, func() error {
		_, err := d.WriteTo(w.ws)

		return err //nolint:wrapcheck // wrapped by withPatch.
	})
}

// withPatch seeks to offset, runs fn, then restores the writer's prior
// cursor position — every Finish-time patch is a detour from the
// otherwise strictly sequential write path.
func (w *Writer) withPatch(offset int64, fn func() error) error {
	cur, err := w.ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("wave: reading cursor: %w", err)
	}

	if _, err := w.ws.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("wave: seeking to patch offset %d: %w", offset, err)
	}

	if err := fn(); err != nil {
		return fmt.Errorf("wave: patching offset %d: %w", offset, err)
	}

	if _, err := w.ws.Seek(cur, io.SeekStart); err != nil {
		return fmt.Errorf("wave: restoring cursor: %w", err)
	}

	return nil
}
