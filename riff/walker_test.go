package riff_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/farcloser/wavecraft/riff"
)

func buildChunk(id string, body []byte) []byte {
	var buf bytes.Buffer

	buf.WriteString(id)

	var sz [4]byte

	binary.LittleEndian.PutUint32(sz[:], uint32(len(body))) //nolint:gosec // test helper.
	buf.Write(sz[:])
	buf.Write(body)

	if len(body)%2 == 1 {
		buf.WriteByte(0)
	}

	return buf.Bytes()
}

func TestWalkerAlignment(t *testing.T) {
	t.Parallel()

	var data []byte
	data = append(data, buildChunk("fmt ", make([]byte, 16))...)
	data = append(data, buildChunk("odd ", []byte{1, 2, 3})...)
	data = append(data, buildChunk("data", make([]byte, 4))...)

	w := riff.NewSeekable(bytes.NewReader(data), int64(len(data)))

	var offsets []int64

	for {
		hdr, err := w.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		require.NoError(t, err)
		offsets = append(offsets, hdr.Offset)

		require.Equal(t, int64(0), riff.Align2(hdr.Offset+8+int64(hdr.Size))%2)
	}

	require.Len(t, offsets, 3)
}

func TestWalkerNonSeekableDiscardsUnreadBody(t *testing.T) {
	t.Parallel()

	var data []byte
	data = append(data, buildChunk("JUNK", make([]byte, 10))...)
	data = append(data, buildChunk("data", []byte{9, 9, 9, 9})...)

	w := riff.NewStreaming(bytes.NewReader(data), int64(len(data)))

	hdr, err := w.Next()
	require.NoError(t, err)
	require.Equal(t, "JUNK", hdr.ID)
	// Body is never read from w.BodyReader() here; Next must skip it anyway.

	hdr, err = w.Next()
	require.NoError(t, err)
	require.Equal(t, "data", hdr.ID)

	body, err := io.ReadAll(w.BodyReader())
	require.NoError(t, err)
	require.Equal(t, []byte{9, 9, 9, 9}, body)
}

func TestWalkerBadChunkSizeIsAdvisory(t *testing.T) {
	t.Parallel()

	data := buildChunk("data", make([]byte, 100))
	data = data[:20] // Truncate the envelope so the declared size overruns it.

	w := riff.NewSeekable(bytes.NewReader(data), int64(len(data)))

	hdr, err := w.Next()

	var badSize *riff.ErrBadChunkSize

	require.ErrorAs(t, err, &badSize)
	require.Equal(t, "data", hdr.ID)
	require.Equal(t, uint64(12), hdr.Size)
}

func TestWalkerIncompleteFile(t *testing.T) {
	t.Parallel()

	data := []byte{0, 0, 0, 0, 0, 0, 0, 0}

	w := riff.NewSeekable(bytes.NewReader(data), int64(len(data)))

	_, err := w.Next()

	var incomplete *riff.ErrIncompleteFile

	require.ErrorAs(t, err, &incomplete)
}
