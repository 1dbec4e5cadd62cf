package adpcm_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/farcloser/wavecraft/adpcm"
)

func sineSamples(n int, amplitude float64) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(amplitude * math.Sin(float64(i)*0.05))
	}

	return out
}

func TestIMABlockRoundTripApproximates(t *testing.T) {
	t.Parallel()

	channels := 2
	frames := adpcm.IMA.FramesPerBlock(channels)
	src := sineSamples(frames*channels, 8000)

	i := 0
	next := func() (int16, bool) {
		if i >= len(src) {
			return 0, false
		}

		s := src[i]
		i++

		return s, true
	}

	states := make([]adpcm.IMAState, channels)
	block := adpcm.EncodeIMABlock(channels, states, next)
	require.Len(t, block, adpcm.IMA.BlockSize(channels))

	var decoded []int16

	err := adpcm.DecodeIMABlock(channels, block, func(s int16) { decoded = append(decoded, s) })
	require.NoError(t, err)
	require.Len(t, decoded, frames*channels)

	// Skip the initial ramp-up window: the fresh encoder state starts the
	// step index at its smallest value, so the first handful of nibbles lag
	// a fast swing before the adaptive step catches up.
	for idx := 20; idx < len(decoded); idx++ {
		require.InDelta(t, src[idx], decoded[idx], 3000)
	}
}

func TestMSBlockRoundTripApproximates(t *testing.T) {
	t.Parallel()

	channels := 2
	frames := adpcm.MS.FramesPerBlock(channels)
	src := sineSamples(frames*channels, 8000)

	i := 0
	next := func() (int16, bool) {
		if i >= len(src) {
			return 0, false
		}

		s := src[i]
		i++

		return s, true
	}

	block := adpcm.EncodeMSBlock(channels, 0, 16, next)
	require.Len(t, block, adpcm.MS.BlockSize(channels))

	var decoded []int16

	err := adpcm.DecodeMSBlock(channels, block, func(s int16) { decoded = append(decoded, s) })
	require.NoError(t, err)
	require.Len(t, decoded, frames*channels)

	for idx := 20; idx < len(decoded); idx++ {
		require.InDelta(t, src[idx], decoded[idx], 3000)
	}
}

func TestMSBlockBadPredictorIndex(t *testing.T) {
	t.Parallel()

	block := make([]byte, adpcm.MS.BlockSize(1))
	block[0] = 200 // Well beyond the 7-entry table.

	err := adpcm.DecodeMSBlock(1, block, func(int16) {})

	var badIdx *adpcm.ErrBadPredictorIndex

	require.ErrorAs(t, err, &badIdx)
}

func TestYamahaBlockRoundTripApproximates(t *testing.T) {
	t.Parallel()

	channels := 1
	frames := adpcm.Yamaha.FramesPerBlock(channels)
	src := sineSamples(frames, 8000)

	i := 0
	next := func() (int16, bool) {
		if i >= len(src) {
			return 0, false
		}

		s := src[i]
		i++

		return s, true
	}

	states := []adpcm.YamahaState{adpcm.NewYamahaState()}
	block := adpcm.EncodeYamahaBlock(channels, states, next)
	require.Len(t, block, adpcm.Yamaha.BlockSize(channels))

	decodeStates := []adpcm.YamahaState{adpcm.NewYamahaState()}

	var decoded []int16

	err := adpcm.DecodeYamahaBlock(channels, decodeStates, block, func(s int16) { decoded = append(decoded, s) })
	require.NoError(t, err)
	require.Len(t, decoded, frames)

	for idx := 20; idx < len(decoded); idx++ {
		require.InDelta(t, src[idx], decoded[idx], 3000)
	}
}

func TestShortBlockErrors(t *testing.T) {
	t.Parallel()

	err := adpcm.DecodeIMABlock(2, make([]byte, 4), func(int16) {})

	var short *adpcm.ErrShortBlock

	require.ErrorAs(t, err, &short)
}
