package opus_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/farcloser/wavecraft/blockio"
	"github.com/farcloser/wavecraft/opus"
)

func TestNewEncoderRejectsOutOfRangeChannels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	_, err := opus.NewEncoder(&buf, 48000, 0, opus.DefaultSamplesPerEncode)

	var chanErr *blockio.ErrChannelsUnsupported

	require.ErrorAs(t, err, &chanErr)
}

func TestNewEncoderAcceptsStereo(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	enc, err := opus.NewEncoder(&buf, 48000, 2, opus.DefaultSamplesPerEncode)
	require.NoError(t, err)
	require.Equal(t, uint16(opus.DefaultSamplesPerEncode), enc.BlockAlign())
}

func TestNewDecoderRejectsOutOfRangeChannels(t *testing.T) {
	t.Parallel()

	_, err := opus.NewDecoder(48000, 0, func() ([]byte, error) { return nil, io.EOF })

	var chanErr *blockio.ErrChannelsUnsupported

	require.ErrorAs(t, err, &chanErr)
}

func TestFormatTagIsOpus(t *testing.T) {
	t.Parallel()

	require.Equal(t, uint16(0x6771), opus.FormatTag())
}
