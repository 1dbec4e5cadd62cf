package mp3

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsValidFrameHeader(t *testing.T) {
	t.Parallel()

	// MPEG1 Layer III, 128kbps, 44100Hz, stereo.
	require.True(t, isValidFrameHeader([]byte{0xFF, 0xFB, 0x90, 0x00}))
	require.False(t, isValidFrameHeader([]byte{0x00, 0xFB, 0x90, 0x00}))
	require.False(t, isValidFrameHeader([]byte{0xFF, 0xFB, 0xF0, 0x00})) // bitrate 1111 invalid.
}

func TestFindSyncWord(t *testing.T) {
	t.Parallel()

	data := append([]byte{0x00, 0x01, 0x02}, 0xFF, 0xFB, 0x90, 0x00, 0x00)
	require.Equal(t, 3, findSyncWord(data))

	require.Equal(t, -1, findSyncWord([]byte{0x00, 0x01, 0x02}))
}

func TestGetSideInfoSize(t *testing.T) {
	t.Parallel()

	// MPEG1 stereo -> 32.
	require.Equal(t, 32, getSideInfoSize([]byte{0xFF, 0xFB, 0x90, 0x00}))
	// MPEG1 mono (channel bits 11) -> 17.
	require.Equal(t, 17, getSideInfoSize([]byte{0xFF, 0xFB, 0x90, 0xC0}))
}

func TestFindLAMETag(t *testing.T) {
	t.Parallel()

	xing := append([]byte("Xing"), 0x00, 0x00, 0x00, 0x00)
	xing = append(xing, []byte("LAME3.100")...)

	require.Equal(t, 8, findLAMETag(xing))
}

func TestSkipID3v2(t *testing.T) {
	t.Parallel()

	tag := append([]byte("ID3"), 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x0A)
	tag = append(tag, make([]byte, 10)...)
	tag = append(tag, 0xFF, 0xFB, 0x90, 0x00)

	r := bytes.NewReader(tag)

	n := skipID3v2(r)
	require.Equal(t, 20, n)

	rest := make([]byte, 4)
	_, err := r.Read(rest)
	require.NoError(t, err)
	require.Equal(t, []byte{0xFF, 0xFB, 0x90, 0x00}, rest)
}

func TestApplyGaplessTrimmingNoInfo(t *testing.T) {
	t.Parallel()

	buf := []byte{1, 2, 3, 4}
	require.Equal(t, buf, applyGaplessTrimming(buf, gaplessInfo{}))
}

func TestApplyGaplessTrimmingTrimsStart(t *testing.T) {
	t.Parallel()

	// One stereo 16-bit frame of silence per sample; delay trims decoderDelay+delay samples.
	const delay = 5

	total := decoderDelay + delay + 10
	buf := make([]byte, total*bytesPerFrame)

	for i := range 10 {
		buf[(decoderDelay+delay+i)*bytesPerFrame] = byte(i + 1)
	}

	out := applyGaplessTrimming(buf, gaplessInfo{delay: delay})
	require.Len(t, out, 10*bytesPerFrame)
	require.Equal(t, byte(1), out[0])
}

func TestBlockAlignSelectsBySampleRate(t *testing.T) {
	t.Parallel()

	require.Equal(t, uint16(lowSampleRateBlockAlign), BlockAlign(22050))
	require.Equal(t, uint16(lowSampleRateBlockAlign), BlockAlign(28000))
	require.Equal(t, uint16(highSampleRateBlockAlign), BlockAlign(44100))
}

func TestFormatTagIsMP3(t *testing.T) {
	t.Parallel()

	require.Equal(t, uint16(0x0055), FormatTag())
}
