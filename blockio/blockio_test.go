package blockio_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/farcloser/wavecraft/blockio"
)

func TestBufferedEncoderFlushesOnFullAndFinish(t *testing.T) {
	t.Parallel()

	var (
		buf        bytes.Buffer
		flushCalls int
	)

	enc := blockio.NewBufferedEncoder(&buf, 4, func(chunk []int16) ([]byte, error) {
		flushCalls++

		out := make([]byte, len(chunk))
		for i, s := range chunk {
			out[i] = byte(s)
		}

		return out, nil
	})

	require.NoError(t, enc.Write([]int16{1, 2, 3, 4, 5}))
	require.Equal(t, 1, flushCalls)

	require.NoError(t, enc.Finish())
	require.Equal(t, 2, flushCalls)

	require.NoError(t, enc.Finish()) // Idempotent.
	require.Equal(t, 2, flushCalls)

	bytesWritten, samplesWritten := enc.Stats()
	require.Equal(t, uint64(5), bytesWritten)
	require.Equal(t, uint64(5), samplesWritten)
}

func TestBufferedEncoderErrorShortCircuits(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	wantErr := errors.New("codec exploded")

	enc := blockio.NewBufferedEncoder(&buf, 2, func([]int16) ([]byte, error) {
		return nil, wantErr
	})

	err := enc.Write([]int16{1, 2})
	require.Error(t, err)
	require.ErrorIs(t, err, wantErr)
}

func TestValidateChannels(t *testing.T) {
	t.Parallel()

	require.NoError(t, blockio.ValidateChannels("flac", 2, 1, 8))

	err := blockio.ValidateChannels("mp3", 3, 1, 2)

	var chanErr *blockio.ErrChannelsUnsupported

	require.ErrorAs(t, err, &chanErr)
}

func TestDownmixAndDuplicate(t *testing.T) {
	t.Parallel()

	require.Equal(t, int16(15), blockio.Downmix(int16(10), int16(20)))
	require.Equal(t, int32(15), blockio.Downmix(int32(10), int32(20)))

	l, r := blockio.Duplicate(int16(42))
	require.Equal(t, int16(42), l)
	require.Equal(t, int16(42), r)
}

func TestBufferedDecoderPullsAcrossChunks(t *testing.T) {
	t.Parallel()

	chunks := [][]int16{{1, 2, 3}, {4, 5}, {6, 7, 8, 9}}
	i := 0

	dec := blockio.NewBufferedDecoder(func() ([]int16, error) {
		if i >= len(chunks) {
			return nil, io.EOF
		}

		c := chunks[i]
		i++

		return c, nil
	})

	out := make([]int16, 5)

	n, err := dec.Read(out)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, []int16{1, 2, 3, 4, 5}, out)

	n, err = dec.Read(out)
	require.NoError(t, err)
	require.Equal(t, 4, n)

	_, err = dec.Read(out)
	require.ErrorIs(t, err, io.EOF)
}
