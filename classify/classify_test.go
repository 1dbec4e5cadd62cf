package classify_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/farcloser/wavecraft/classify"
)

func TestClassifyTable(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		tag  uint16
		kind classify.ExtensionKind
		want classify.CanonicalCodec
	}{
		{"pcm", classify.TagPCM, classify.NoExtension, classify.PCMInt},
		{"ieee-float", classify.TagIEEEFloat, classify.NoExtension, classify.PCMFloat},
		{"alaw", classify.TagALaw, classify.NoExtension, classify.ALaw},
		{"mulaw", classify.TagMULaw, classify.NoExtension, classify.MULaw},
		{"adpcm-ms", classify.TagAdpcmMS, classify.ExtAdpcmMS, classify.AdpcmMS},
		{"adpcm-ima", classify.TagAdpcmIMA, classify.ExtAdpcmIMA, classify.AdpcmIMA},
		{"adpcm-ima-alt", classify.TagAdpcmIMAAlt, classify.ExtAdpcmIMA, classify.AdpcmIMA},
		{"adpcm-yamaha", classify.TagAdpcmYamaha, classify.NoExtension, classify.AdpcmYamaha},
		{"mp3", classify.TagMP3, classify.ExtMP3, classify.MP3},
		{"flac", classify.TagFLAC, classify.NoExtension, classify.FLAC},
		{"vorbis-1", classify.TagVorbis1, classify.NoExtension, classify.Vorbis},
		{"opus", classify.TagOpus, classify.NoExtension, classify.Opus},
		{"vorbis-3-with-header", classify.TagVorbis3Ogg, classify.ExtOggVorbisWithHeader, classify.Vorbis},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := classify.Classify(tc.tag, tc.kind, classify.GUID{})
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestClassifyExtensibleGUID(t *testing.T) {
	t.Parallel()

	codec, err := classify.Classify(classify.TagExtensible, classify.ExtExtensible, classify.SubFormatPCM)
	require.NoError(t, err)
	require.Equal(t, classify.PCMInt, codec)

	codec, err = classify.Classify(classify.TagExtensible, classify.ExtExtensible, classify.SubFormatIEEEFloat)
	require.NoError(t, err)
	require.Equal(t, classify.PCMFloat, codec)

	_, err = classify.Classify(classify.TagExtensible, classify.ExtExtensible, classify.GUID{Data1: 99, Data2: 0, Data3: 0x10, Data4: [8]byte{0x80, 0, 0, 0xaa, 0, 0x38, 0x9b, 0x71}})
	require.Error(t, err)
}

func TestChannelMaskPopcountValid(t *testing.T) {
	t.Parallel()

	require.True(t, classify.ChannelMaskPopcountValid(0, 6))
	require.True(t, classify.ChannelMaskPopcountValid(classify.DefaultChannelMask(2), 2))
	require.False(t, classify.ChannelMaskPopcountValid(classify.DefaultChannelMask(2), 3))
}
