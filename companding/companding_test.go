package companding_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/farcloser/wavecraft/companding"
)

func TestALawRoundTripApproximates(t *testing.T) {
	t.Parallel()

	for _, s := range []int16{0, 1, -1, 100, -100, 4000, -4000, 16000, -16000, 32000, -32000} {
		encoded := companding.EncodeALaw(s)
		decoded := companding.DecodeALaw(encoded)
		require.InDelta(t, s, decoded, 400)
	}
}

func TestMuLawRoundTripApproximates(t *testing.T) {
	t.Parallel()

	for _, s := range []int16{0, 1, -1, 100, -100, 4000, -4000, 16000, -16000, 32000, -32000} {
		encoded := companding.EncodeMuLaw(s)
		decoded := companding.DecodeMuLaw(encoded)
		require.InDelta(t, s, decoded, 1500)
	}
}

func TestALawSilenceRoundTrips(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 0, companding.DecodeALaw(companding.EncodeALaw(0)), 16)
}

func TestBlockAlignAndByteRate(t *testing.T) {
	t.Parallel()

	require.Equal(t, uint16(2), companding.BlockAlign(2))
	require.Equal(t, uint32(88200), companding.ByteRate(44100, 2))
}
