package vorbis_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/farcloser/wavecraft/vorbis"
)

func TestFormatTagForInBand(t *testing.T) {
	t.Parallel()

	require.Equal(t, uint16(0x674F), vorbis.FormatTagFor(vorbis.HeaderInBand, false))
	require.Equal(t, uint16(0x676F), vorbis.FormatTagFor(vorbis.HeaderInBand, true))
}

func TestFormatTagForExtension(t *testing.T) {
	t.Parallel()

	require.Equal(t, uint16(0x6751), vorbis.FormatTagFor(vorbis.HeaderInExtension, false))
	require.Equal(t, uint16(0x6771), vorbis.FormatTagFor(vorbis.HeaderInExtension, true))
}

func TestFormatTagForStrippedOgg(t *testing.T) {
	t.Parallel()

	require.Equal(t, uint16(0x6750), vorbis.FormatTagFor(vorbis.HeaderStrippedOgg, false))
}
