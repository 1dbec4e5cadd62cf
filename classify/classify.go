// Package classify maps a fmt chunk's format_tag (and, for the extensible
// variant, its sub-format GUID) to a CanonicalCodec identity (spec §4.3).
package classify

import "fmt"

// Format tag constants (spec §6), 16-bit little-endian on disk.
const (
	TagPCM        uint16 = 0x0001
	TagAdpcmMS    uint16 = 0x0002
	TagIEEEFloat  uint16 = 0x0003
	TagALaw       uint16 = 0x0006
	TagMULaw      uint16 = 0x0007
	TagAdpcmIMA   uint16 = 0x0011
	TagAdpcmIMAAlt uint16 = 0x0017
	TagAdpcmYamaha uint16 = 0x0020
	TagMP3        uint16 = 0x0055
	TagVorbis1    uint16 = 0x674F
	TagVorbis2    uint16 = 0x6750
	TagVorbis3    uint16 = 0x6751
	TagVorbis1Ogg uint16 = 0x676F
	TagVorbis2Ogg uint16 = 0x6770
	TagVorbis3Ogg uint16 = 0x6771
	TagOpus       uint16 = 0x6771 // Shared numeric value with TagVorbis3Ogg; disambiguated by extension shape.
	TagFLAC       uint16 = 0xF1AC
	TagExtensible uint16 = 0xFFFE
)

// CanonicalCodec is the resolved, container-independent codec identity.
type CanonicalCodec uint8

// Canonical codec identities.
const (
	Unknown CanonicalCodec = iota
	PCMInt
	PCMFloat
	ALaw
	MULaw
	AdpcmMS
	AdpcmIMA
	AdpcmYamaha
	MP3
	Vorbis
	Opus
	FLAC
)

// String returns the codec's short name.
func (c CanonicalCodec) String() string {
	switch c {
	case PCMInt:
		return "pcm-int"
	case PCMFloat:
		return "pcm-float"
	case ALaw:
		return "a-law"
	case MULaw:
		return "mu-law"
	case AdpcmMS:
		return "adpcm-ms"
	case AdpcmIMA:
		return "adpcm-ima"
	case AdpcmYamaha:
		return "adpcm-yamaha"
	case MP3:
		return "mp3"
	case Vorbis:
		return "vorbis"
	case Opus:
		return "opus"
	case FLAC:
		return "flac"
	default:
		return "unknown"
	}
}

// GUID is a WAVEFORMATEXTENSIBLE sub-format GUID: data1 (LE u32), data2 (LE
// u16), data3 (LE u16), data4 (8 raw bytes).
type GUID struct {
	Data1 uint32
	Data2 uint16
	Data3 uint16
	Data4 [8]byte
}

// guidTail is the fixed tail shared by every KSDATAFORMAT_SUBTYPE_* GUID the
// extensible format recognizes.
var guidTail = [8]byte{0x80, 0x00, 0x00, 0xaa, 0x00, 0x38, 0x9b, 0x71}

// SubFormatPCM and SubFormatIEEEFloat are the two sub-format GUIDs the
// extensible fmt chunk may carry (spec §6); they share the fixed tail and
// differ only in Data1.
var (
	SubFormatPCM       = GUID{Data1: 1, Data2: 0, Data3: 0x0010, Data4: guidTail}
	SubFormatIEEEFloat = GUID{Data1: 3, Data2: 0, Data3: 0x0010, Data4: guidTail}
)

// ErrUnrecognizedGUID is returned when an extensible sub-format GUID has
// the recognized tail but an unrecognized Data1, or a wholly different tail.
type ErrUnrecognizedGUID struct {
	GUID GUID
}

func (e *ErrUnrecognizedGUID) Error() string {
	return fmt.Sprintf("classify: unrecognized extensible sub-format GUID %+v", e.GUID)
}

// FromGUID resolves an extensible sub-format GUID to a canonical codec.
func FromGUID(g GUID) (CanonicalCodec, error) {
	if g.Data4 != guidTail || g.Data2 != 0 || g.Data3 != 0x0010 {
		return Unknown, &ErrUnrecognizedGUID{GUID: g}
	}

	switch g.Data1 {
	case 1:
		return PCMInt, nil
	case 3:
		return PCMFloat, nil
	default:
		return Unknown, &ErrUnrecognizedGUID{GUID: g}
	}
}

// ExtensionKind distinguishes the fmt-chunk extension payloads that feed
// classification. chunkio.FmtChunk records one in its Extension field, so
// classify needs no import of chunkio.
type ExtensionKind uint8

// Recognized extension kinds.
const (
	NoExtension ExtensionKind = iota
	ExtAdpcmMS
	ExtAdpcmIMA
	ExtMP3
	ExtVorbisHeader
	ExtOggVorbis
	ExtOggVorbisWithHeader
	ExtExtensible
)

// ErrUnsupportedFormat is returned for a format_tag/extension combination
// that classify does not recognize at all.
type ErrUnsupportedFormat struct {
	FormatTag uint16
}

func (e *ErrUnsupportedFormat) Error() string {
	return fmt.Sprintf("classify: unsupported format_tag 0x%04X", e.FormatTag)
}

// Classify resolves a fmt chunk's (format_tag, extension) pair to a
// CanonicalCodec (spec §4.3's table). guid is only consulted when kind is
// ExtExtensible.
func Classify(formatTag uint16, kind ExtensionKind, guid GUID) (CanonicalCodec, error) {
	switch formatTag {
	case TagPCM:
		return PCMInt, nil
	case TagIEEEFloat:
		return PCMFloat, nil
	case TagALaw:
		return ALaw, nil
	case TagMULaw:
		return MULaw, nil
	case TagAdpcmMS:
		return AdpcmMS, nil
	case TagAdpcmIMA, TagAdpcmIMAAlt:
		return AdpcmIMA, nil
	case TagAdpcmYamaha:
		return AdpcmYamaha, nil
	case TagMP3:
		return MP3, nil
	case TagFLAC:
		return FLAC, nil
	case TagVorbis1, TagVorbis2, TagVorbis3, TagVorbis1Ogg, TagVorbis2Ogg:
		return Vorbis, nil
	case TagVorbis3Ogg: // TagOpus shares this numeric value.
		if kind == ExtOggVorbisWithHeader || kind == ExtOggVorbis || kind == ExtVorbisHeader {
			return Vorbis, nil
		}

		return Opus, nil
	case TagExtensible:
		if kind != ExtExtensible {
			return Unknown, &ErrUnsupportedFormat{FormatTag: formatTag}
		}

		return FromGUID(guid)
	default:
		return Unknown, &ErrUnsupportedFormat{FormatTag: formatTag}
	}
}

// ChannelMaskPopcountValid reports whether a channel mask is either zero
// (unspecified layout) or has exactly `channels` bits set, the invariant
// spec §3/§6 requires of every Spec.
func ChannelMaskPopcountValid(mask uint32, channels uint16) bool {
	if mask == 0 {
		return true
	}

	var count uint16
	for m := mask; m != 0; m &= m - 1 {
		count++
	}

	return count == channels
}

// Speaker position bits, low to high (spec §6).
const (
	SpeakerFL uint32 = 1 << iota
	SpeakerFR
	SpeakerFC
	SpeakerLFE
	SpeakerBL
	SpeakerBR
	SpeakerFLC
	SpeakerFRC
	SpeakerBC
	SpeakerSL
	SpeakerSR
	SpeakerTC
	SpeakerTFL
	SpeakerTFC
	SpeakerTFR
	SpeakerTBL
	SpeakerTBC
	SpeakerTBR
)

// DefaultChannelMask returns the conventional speaker layout for a given
// channel count, or 0 (unspecified) for counts with no standard layout.
func DefaultChannelMask(channels uint16) uint32 {
	switch channels {
	case 1:
		return SpeakerFC
	case 2:
		return SpeakerFL | SpeakerFR
	case 4:
		return SpeakerFL | SpeakerFR | SpeakerBL | SpeakerBR
	case 6:
		return SpeakerFL | SpeakerFR | SpeakerFC | SpeakerLFE | SpeakerBL | SpeakerBR
	case 8:
		return SpeakerFL | SpeakerFR | SpeakerFC | SpeakerLFE | SpeakerBL | SpeakerBR | SpeakerFLC | SpeakerFRC
	default:
		return 0
	}
}
