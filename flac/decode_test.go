package flac

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/farcloser/wavecraft/sample"
)

func TestBitsToType(t *testing.T) {
	t.Parallel()

	cases := []struct {
		bits int
		want sample.Type
	}{
		{8, sample.S8},
		{16, sample.S16},
		{24, sample.S24},
		{32, sample.S32},
	}

	for _, c := range cases {
		got, err := bitsToType(c.bits)
		require.NoError(t, err)
		require.Equal(t, c.want, got)
	}
}

func TestBitsToTypeRejectsUnsupported(t *testing.T) {
	t.Parallel()

	_, err := bitsToType(20)
	require.ErrorIs(t, err, ErrUnsupportedBitDepth)
}

func TestBlockAlignIsOne(t *testing.T) {
	t.Parallel()

	require.Equal(t, uint16(1), BlockAlign())
}

func TestFormatTagIsFLAC(t *testing.T) {
	t.Parallel()

	require.Equal(t, uint16(0xF1AC), FormatTag())
}
