package chunkio

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/farcloser/wavecraft/classify"
)

// FmtChunk is the parsed body of a "fmt " chunk, covering the three shapes
// spec §6 recognizes: the 16-byte legacy form, the 18-byte form with a
// zero-length extension, and the 40-byte WAVEFORMATEXTENSIBLE form.
type FmtChunk struct {
	FormatTag      uint16
	Channels       uint16
	SampleRate     uint32
	ByteRate       uint32
	BlockAlign     uint16
	BitsPerSample  uint16
	ValidBitsPerSample uint16
	ChannelMask    uint32
	SubFormat      classify.GUID
	Extension      classify.ExtensionKind
	CodecExtra     []byte // Raw cbSize payload for MP3/IMA/MS/Vorbis-header extensions.
}

const (
	fmtLegacySize     = 16
	fmtWithCbSize     = 18
	fmtExtensibleSize = 40
)

// ParseFmt decodes a fmt chunk body of the given declared size.
func ParseFmt(body []byte) (FmtChunk, error) {
	if len(body) < fmtLegacySize {
		return FmtChunk{}, &ErrInvalidData{Reason: fmt.Sprintf("fmt chunk too short: %d bytes", len(body))}
	}

	var f FmtChunk

	f.FormatTag = binary.LittleEndian.Uint16(body[0:2])
	f.Channels = binary.LittleEndian.Uint16(body[2:4])
	f.SampleRate = binary.LittleEndian.Uint32(body[4:8])
	f.ByteRate = binary.LittleEndian.Uint32(body[8:12])
	f.BlockAlign = binary.LittleEndian.Uint16(body[12:14])
	f.BitsPerSample = binary.LittleEndian.Uint16(body[14:16])
	f.Extension = classify.NoExtension

	if len(body) < fmtWithCbSize {
		return f, nil
	}

	cbSize := binary.LittleEndian.Uint16(body[16:18])
	if cbSize == 0 {
		return f, nil
	}

	extra := body[18:]
	if uint16(len(extra)) > cbSize { //nolint:gosec // bounded by chunk size already.
		extra = extra[:cbSize]
	}

	if len(body) >= fmtExtensibleSize && cbSize >= 22 {
		f.Extension = classify.ExtExtensible
		f.ValidBitsPerSample = binary.LittleEndian.Uint16(body[18:20])
		f.ChannelMask = binary.LittleEndian.Uint32(body[20:24])
		f.SubFormat = classify.GUID{
			Data1: binary.LittleEndian.Uint32(body[24:28]),
			Data2: binary.LittleEndian.Uint16(body[28:30]),
			Data3: binary.LittleEndian.Uint16(body[30:32]),
		}
		copy(f.SubFormat.Data4[:], body[32:40])

		return f, nil
	}

	f.CodecExtra = append([]byte(nil), extra...)

	switch f.FormatTag {
	case classify.TagAdpcmMS:
		f.Extension = classify.ExtAdpcmMS
	case classify.TagAdpcmIMA, classify.TagAdpcmIMAAlt:
		f.Extension = classify.ExtAdpcmIMA
	case classify.TagMP3:
		f.Extension = classify.ExtMP3
	case classify.TagVorbis1, classify.TagVorbis2, classify.TagVorbis3:
		f.Extension = classify.ExtVorbisHeader
	case classify.TagVorbis1Ogg, classify.TagVorbis2Ogg:
		f.Extension = classify.ExtOggVorbis
	case classify.TagVorbis3Ogg: // Also TagOpus; the caller disambiguates via container context.
		f.Extension = classify.ExtOggVorbisWithHeader
	}

	return f, nil
}

// WriteTo encodes the fmt chunk in whichever of the three shapes its
// Extension field selects.
func (f FmtChunk) WriteTo(w io.Writer) (int64, error) {
	switch f.Extension {
	case classify.ExtExtensible:
		return f.writeExtensible(w)
	case classify.NoExtension:
		if len(f.CodecExtra) == 0 {
			return f.writeLegacy(w)
		}

		return f.writeWithExtra(w)
	default:
		return f.writeWithExtra(w)
	}
}

func (f FmtChunk) writeLegacy(w io.Writer) (int64, error) {
	buf := make([]byte, fmtLegacySize)
	f.encodeCommon(buf)

	n, err := w.Write(buf)

	return int64(n), wrapWrite(err)
}

func (f FmtChunk) writeWithExtra(w io.Writer) (int64, error) {
	buf := make([]byte, fmtWithCbSize+len(f.CodecExtra))
	f.encodeCommon(buf)
	binary.LittleEndian.PutUint16(buf[16:18], uint16(len(f.CodecExtra))) //nolint:gosec // bounded by caller.
	copy(buf[18:], f.CodecExtra)

	n, err := w.Write(buf)

	return int64(n), wrapWrite(err)
}

func (f FmtChunk) writeExtensible(w io.Writer) (int64, error) {
	buf := make([]byte, fmtExtensibleSize)
	f.encodeCommon(buf)
	binary.LittleEndian.PutUint16(buf[16:18], 22)
	binary.LittleEndian.PutUint16(buf[18:20], f.ValidBitsPerSample)
	binary.LittleEndian.PutUint32(buf[20:24], f.ChannelMask)
	binary.LittleEndian.PutUint32(buf[24:28], f.SubFormat.Data1)
	binary.LittleEndian.PutUint16(buf[28:30], f.SubFormat.Data2)
	binary.LittleEndian.PutUint16(buf[30:32], f.SubFormat.Data3)
	copy(buf[32:40], f.SubFormat.Data4[:])

	n, err := w.Write(buf)

	return int64(n), wrapWrite(err)
}

func (f FmtChunk) encodeCommon(buf []byte) {
	binary.LittleEndian.PutUint16(buf[0:2], f.FormatTag)
	binary.LittleEndian.PutUint16(buf[2:4], f.Channels)
	binary.LittleEndian.PutUint32(buf[4:8], f.SampleRate)
	binary.LittleEndian.PutUint32(buf[8:12], f.ByteRate)
	binary.LittleEndian.PutUint16(buf[12:14], f.BlockAlign)
	binary.LittleEndian.PutUint16(buf[14:16], f.BitsPerSample)
}

func wrapWrite(err error) error {
	if err != nil {
		return fmt.Errorf("chunkio: writing fmt chunk: %w", err)
	}

	return nil
}
