package pcmcodec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/farcloser/wavecraft/classify"
	"github.com/farcloser/wavecraft/pcmcodec"
	"github.com/farcloser/wavecraft/sample"
)

func TestNewTranscoderRefusalMatrix(t *testing.T) {
	t.Parallel()

	_, err := pcmcodec.NewTranscoder(sample.U16, 2, 0)
	require.Error(t, err)

	_, err = pcmcodec.NewTranscoder(sample.S8, 2, 0)
	require.Error(t, err)

	_, err = pcmcodec.NewTranscoder(sample.S16, 2, 0)
	require.NoError(t, err)

	_, err = pcmcodec.NewTranscoder(sample.U16, 2, classify.DefaultChannelMask(2))
	require.NoError(t, err)
}

func TestNewTranscoderChannelMaskMismatch(t *testing.T) {
	t.Parallel()

	_, err := pcmcodec.NewTranscoder(sample.S16, 3, classify.DefaultChannelMask(2))
	require.Error(t, err)
}

func TestEncodeDecodeFrameRoundTrip(t *testing.T) {
	t.Parallel()

	tc, err := pcmcodec.NewTranscoder(sample.S24, 2, 0)
	require.NoError(t, err)

	frame := []int16{1234, -5678}

	buf := pcmcodec.EncodeFrame(tc, frame, nil)
	require.Len(t, buf, 6)

	decoded := pcmcodec.DecodeFrame[int16](tc, buf)
	require.Equal(t, frame, decoded)
}

func TestEncodeDecodeFrameValuesRoundTrip(t *testing.T) {
	t.Parallel()

	tc, err := pcmcodec.NewTranscoder(sample.S16, 2, 0)
	require.NoError(t, err)

	frame := []sample.Value{sample.Of(int16(1234)), sample.Of(int16(-5678))}

	buf := pcmcodec.EncodeFrameValues(tc, frame, nil)
	require.Len(t, buf, 4)

	decoded := pcmcodec.DecodeFrameValues(tc, buf)
	require.Len(t, decoded, 2)
	require.Equal(t, int16(1234), sample.As[int16](decoded[0]))
	require.Equal(t, int16(-5678), sample.As[int16](decoded[1]))
}

func TestBuildFmtChunkSelectsTag(t *testing.T) {
	t.Parallel()

	pcm, err := pcmcodec.NewTranscoder(sample.S16, 2, 0)
	require.NoError(t, err)

	f := pcmcodec.BuildFmtChunk(pcm, 44100, 0)
	require.Equal(t, classify.TagPCM, f.FormatTag)

	flt, err := pcmcodec.NewTranscoder(sample.F32, 2, 0)
	require.NoError(t, err)

	f = pcmcodec.BuildFmtChunk(flt, 44100, 0)
	require.Equal(t, classify.TagIEEEFloat, f.FormatTag)

	ext, err := pcmcodec.NewTranscoder(sample.S24, 6, classify.DefaultChannelMask(6))
	require.NoError(t, err)

	f = pcmcodec.BuildFmtChunk(ext, 48000, classify.DefaultChannelMask(6))
	require.Equal(t, classify.TagExtensible, f.FormatTag)
	require.Equal(t, classify.SubFormatPCM, f.SubFormat)
}

func TestBlockAlignAndByteRate(t *testing.T) {
	t.Parallel()

	tc, err := pcmcodec.NewTranscoder(sample.S16, 2, 0)
	require.NoError(t, err)

	require.Equal(t, uint16(4), tc.BlockAlign())
	require.Equal(t, uint32(44100*4), tc.ByteRate(44100))
}
