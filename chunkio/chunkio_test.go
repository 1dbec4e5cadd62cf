package chunkio_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/farcloser/wavecraft/chunkio"
	"github.com/farcloser/wavecraft/classify"
)

func TestFmtChunkLegacyRoundTrip(t *testing.T) {
	t.Parallel()

	f := chunkio.FmtChunk{
		FormatTag:     classify.TagPCM,
		Channels:      2,
		SampleRate:    44100,
		ByteRate:      176400,
		BlockAlign:    4,
		BitsPerSample: 16,
	}

	var buf bytes.Buffer

	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	require.Len(t, buf.Bytes(), 16)

	got, err := chunkio.ParseFmt(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, f.FormatTag, got.FormatTag)
	require.Equal(t, f.Channels, got.Channels)
	require.Equal(t, f.SampleRate, got.SampleRate)
	require.Equal(t, classify.NoExtension, got.Extension)
}

func TestFmtChunkExtensibleRoundTrip(t *testing.T) {
	t.Parallel()

	f := chunkio.FmtChunk{
		FormatTag:          classify.TagExtensible,
		Channels:           6,
		SampleRate:         48000,
		ByteRate:           48000 * 6 * 3,
		BlockAlign:         18,
		BitsPerSample:      24,
		ValidBitsPerSample: 24,
		ChannelMask:        classify.DefaultChannelMask(6),
		SubFormat:          classify.SubFormatPCM,
		Extension:          classify.ExtExtensible,
	}

	var buf bytes.Buffer

	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	require.Len(t, buf.Bytes(), 40)

	got, err := chunkio.ParseFmt(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, classify.ExtExtensible, got.Extension)
	require.Equal(t, f.ChannelMask, got.ChannelMask)
	require.Equal(t, f.SubFormat, got.SubFormat)

	codec, err := classify.FromGUID(got.SubFormat)
	require.NoError(t, err)
	require.Equal(t, classify.PCMInt, codec)
}

func TestDS64RoundTrip(t *testing.T) {
	t.Parallel()

	d := chunkio.DS64Chunk{
		RiffSize:    1 << 40,
		DataSize:    1 << 39,
		SampleCount: 123456789,
		Table:       []chunkio.DS64TableEntry{{ID: "smpl", Size: 999}},
	}

	var buf bytes.Buffer

	_, err := d.WriteTo(&buf)
	require.NoError(t, err)

	got, err := chunkio.ParseDS64(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, d.RiffSize, got.RiffSize)
	require.Equal(t, d.DataSize, got.DataSize)

	size, ok := got.Lookup("smpl")
	require.True(t, ok)
	require.Equal(t, uint64(999), size)
}

func TestBextRoundTrip(t *testing.T) {
	t.Parallel()

	b := chunkio.BextChunk{
		Description:          "field recording",
		Originator:           "wavecraft",
		OriginatorReference:  "WVCR00001",
		OriginationDate:      "2026-08-01",
		OriginationTime:      "12:00:00",
		TimeReference:        48000 * 3600,
		LoudnessValue:        -230,
		MaxTruePeakLevel:     -10,
		CodingHistory:        "A=PCM,F=48000,W=24,M=stereo",
	}

	var buf bytes.Buffer

	_, err := b.WriteTo(&buf)
	require.NoError(t, err)

	got, err := chunkio.ParseBext(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, b.Description, got.Description)
	require.Equal(t, b.Originator, got.Originator)
	require.Equal(t, b.TimeReference, got.TimeReference)
	require.Equal(t, b.LoudnessValue, got.LoudnessValue)
	require.Equal(t, uint16(2), got.Version)
	require.Equal(t, b.CodingHistory, got.CodingHistory)
}

func TestNewBextGeneratesUniqueOriginatorReference(t *testing.T) {
	t.Parallel()

	a := chunkio.NewBext("take 1", "wavecraft")
	b := chunkio.NewBext("take 1", "wavecraft")

	require.Len(t, a.OriginatorReference, 32)
	require.NotContains(t, a.OriginatorReference, "-")
	require.NotEqual(t, a.OriginatorReference, b.OriginatorReference)
	require.NotEqual(t, a.UMID, b.UMID)

	// The UMID's material number occupies the last 16 bytes; the leading
	// 48 are left zeroed since no house SMPTE-330M prefix exists here.
	require.Equal(t, make([]byte, 48), a.UMID[:48])
	require.NotEqual(t, make([]byte, 16), a.UMID[48:])
}

func TestSmplRoundTrip(t *testing.T) {
	t.Parallel()

	s := chunkio.SmplChunk{
		MIDIUnityNote: 60,
		Loops: []chunkio.SampleLoop{
			{CuePointID: 1, Start: 100, End: 200, PlayCount: 0},
		},
	}

	var buf bytes.Buffer

	_, err := s.WriteTo(&buf)
	require.NoError(t, err)

	got, err := chunkio.ParseSmpl(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, s.MIDIUnityNote, got.MIDIUnityNote)
	require.Len(t, got.Loops, 1)
	require.Equal(t, uint32(200), got.Loops[0].End)
}

func TestCueAndPlstRoundTrip(t *testing.T) {
	t.Parallel()

	c := chunkio.CueChunk{Points: []chunkio.CuePoint{
		{ID: 1, Position: 1000, DataChunkID: "data", SampleOffset: 1000},
	}}

	var cueBuf bytes.Buffer

	_, err := c.WriteTo(&cueBuf)
	require.NoError(t, err)

	gotCue, err := chunkio.ParseCue(cueBuf.Bytes())
	require.NoError(t, err)
	require.Len(t, gotCue.Points, 1)
	require.Equal(t, "data", gotCue.Points[0].DataChunkID)

	p := chunkio.PlstChunk{Segments: []chunkio.PlaylistSegment{{CuePointID: 1, Length: 500, NumRepeats: 3}}}

	var plstBuf bytes.Buffer

	_, err = p.WriteTo(&plstBuf)
	require.NoError(t, err)

	gotPlst, err := chunkio.ParsePlst(plstBuf.Bytes())
	require.NoError(t, err)
	require.Len(t, gotPlst.Segments, 1)
	require.Equal(t, uint32(3), gotPlst.Segments[0].NumRepeats)
}

func TestListInfoRoundTrip(t *testing.T) {
	t.Parallel()

	info := chunkio.ListInfo{
		Keys: []string{chunkio.InfoINAM, chunkio.InfoIART},
		Values: map[string]string{
			chunkio.InfoINAM: "Track One",
			chunkio.InfoIART: "Someone",
		},
	}

	var buf bytes.Buffer

	_, err := info.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, "INFO", string(buf.Bytes()[0:4]))

	got, err := chunkio.ParseListInfo(buf.Bytes()[4:])
	require.NoError(t, err)

	title, ok := got.Get(chunkio.InfoINAM)
	require.True(t, ok)
	require.Equal(t, "Track One", title)
}

func TestListAdtlRoundTrip(t *testing.T) {
	t.Parallel()

	l := chunkio.ListAdtl{
		Labels:  []chunkio.AdtlLabel{{CuePointID: 1, Text: "verse"}},
		Regions: []chunkio.AdtlRegion{{CuePointID: 1, SampleLength: 4000, PurposeID: "rgn ", Text: "chorus"}},
	}

	var buf bytes.Buffer

	_, err := l.WriteTo(&buf)
	require.NoError(t, err)

	got, err := chunkio.ParseListAdtl(buf.Bytes()[4:])
	require.NoError(t, err)
	require.Len(t, got.Labels, 1)
	require.Equal(t, "verse", got.Labels[0].Text)
	require.Len(t, got.Regions, 1)
	require.Equal(t, "chorus", got.Regions[0].Text)
}

func TestAcidRoundTrip(t *testing.T) {
	t.Parallel()

	a := chunkio.AcidChunk{
		TypeOfFile: chunkio.AcidOneShot | chunkio.AcidRootNoteSet,
		RootNote:   60,
		NumBeats:   16,
		Tempo:      128.0,
	}

	var buf bytes.Buffer

	_, err := a.WriteTo(&buf)
	require.NoError(t, err)

	got, err := chunkio.ParseAcid(buf.Bytes())
	require.NoError(t, err)
	require.Equal(t, a.Tempo, got.Tempo)
	require.Equal(t, a.NumBeats, got.NumBeats)
}

func TestSeenSetDuplicateSingleton(t *testing.T) {
	t.Parallel()

	s := chunkio.NewSeenSet()

	dup, err := s.Observe("fmt ")
	require.False(t, dup)
	require.NoError(t, err)

	dup, err = s.Observe("fmt ")
	require.True(t, dup)
	require.Error(t, err)

	dup, err = s.Observe("LIST")
	require.False(t, dup)
	require.NoError(t, err)
}

func TestJunkAndRawID3Passthrough(t *testing.T) {
	t.Parallel()

	j := chunkio.NewJunk(10)
	require.Len(t, j.Data, 10)

	raw := chunkio.ParseRawID3([]byte{0xff, 0xfb, 0x90})
	require.Equal(t, []byte{0xff, 0xfb, 0x90}, raw.Data)
}
