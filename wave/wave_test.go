package wave_test

import (
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/farcloser/wavecraft/adpcm"
	"github.com/farcloser/wavecraft/sample"
	"github.com/farcloser/wavecraft/wave"
)

// memFile is a minimal in-memory io.WriteSeeker/io.ReadSeeker, standing in
// for the on-disk file both Writer and Reader expect.
type memFile struct {
	buf []byte
	pos int64
}

func (m *memFile) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}

	copy(m.buf[m.pos:end], p)
	m.pos = end

	return len(p), nil
}

func (m *memFile) Read(p []byte) (int, error) {
	if m.pos >= int64(len(m.buf)) {
		return 0, io.EOF
	}

	n := copy(p, m.buf[m.pos:])
	m.pos += int64(n)

	return n, nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		m.pos = offset
	case io.SeekCurrent:
		m.pos += offset
	case io.SeekEnd:
		m.pos = int64(len(m.buf)) + offset
	}

	return m.pos, nil
}

func stereoFixture(t *testing.T, frames int) *memFile {
	t.Helper()

	spec := wave.Spec{
		Channels:      2,
		SampleRate:    44100,
		BitsPerSample: 16,
		SampleFormat:  wave.FormatInt,
	}

	f := &memFile{}

	w, err := wave.NewPCMWriter(f, spec, wave.AllowLargerThan4GB)
	require.NoError(t, err)

	for i := range frames {
		l := sample.Of(int16(i))      //nolint:gosec // test fixture, small index values.
		r := sample.Of(int16(-i - 1)) //nolint:gosec // test fixture, small index values.
		require.NoError(t, w.WriteFrame([]sample.Value{l, r}))
	}

	require.NoError(t, w.Finish())

	f.pos = 0

	return f
}

// TestPCMRoundTrip covers E1: write N frames of 16-bit stereo PCM, read
// them back through the frame iterator, and confirm every value survives.
func TestPCMRoundTrip(t *testing.T) {
	t.Parallel()

	const frames = 64

	f := stereoFixture(t, frames)

	reader, err := wave.Open(f)
	require.NoError(t, err)

	defer reader.Close()

	require.Equal(t, uint16(2), reader.Snapshot.Spec.Channels)
	require.Equal(t, uint32(44100), reader.Snapshot.Spec.SampleRate)

	it, err := reader.Frames()
	require.NoError(t, err)

	for i := range frames {
		frame, err := it.Next()
		require.NoError(t, err)
		require.Equal(t, int16(i), sample.As[int16](frame[0]))    //nolint:gosec
		require.Equal(t, int16(-i-1), sample.As[int16](frame[1])) //nolint:gosec
	}

	_, err = it.Next()
	require.ErrorIs(t, err, io.EOF)
}

// TestMonoIteratorAverages covers E2: the mono iterator downmixes a
// two-channel frame to the arithmetic mean of its channels.
func TestMonoIteratorAverages(t *testing.T) {
	t.Parallel()

	f := stereoFixture(t, 8)

	reader, err := wave.Open(f)
	require.NoError(t, err)

	defer reader.Close()

	it, err := reader.Mono()
	require.NoError(t, err)

	v, err := it.Next()
	require.NoError(t, err)
	// frame 0 is (0, -1); mean is -0.5, which the int16 round-trip rounds
	// half away from zero to -1.
	require.InDelta(t, 0, sample.As[int16](v), 1)
}

// TestStereoIteratorDuplicatesMono covers E3: a mono source's stereo
// iterator duplicates the single channel into both left and right.
func TestStereoIteratorDuplicatesMono(t *testing.T) {
	t.Parallel()

	spec := wave.Spec{
		Channels:      1,
		SampleRate:    8000,
		BitsPerSample: 16,
		SampleFormat:  wave.FormatInt,
	}

	f := &memFile{}

	w, err := wave.NewPCMWriter(f, spec, wave.NeverLargerThan4GB)
	require.NoError(t, err)
	require.NoError(t, w.WriteFrame([]sample.Value{sample.Of(int16(1234))}))
	require.NoError(t, w.Finish())

	f.pos = 0

	reader, err := wave.Open(f)
	require.NoError(t, err)

	defer reader.Close()

	it, err := reader.Stereo()
	require.NoError(t, err)

	pair, err := it.Next()
	require.NoError(t, err)
	require.Equal(t, pair.Left, pair.Right)
	require.Equal(t, int16(1234), sample.As[int16](pair.Left))
}

// TestStereoIteratorRejectsMultichannel covers E4: constructing a stereo
// iterator over more than two channels fails immediately.
func TestStereoIteratorRejectsMultichannel(t *testing.T) {
	t.Parallel()

	spec := wave.Spec{
		Channels:      4,
		SampleRate:    48000,
		BitsPerSample: 16,
		SampleFormat:  wave.FormatInt,
	}

	f := &memFile{}

	w, err := wave.NewPCMWriter(f, spec, wave.NeverLargerThan4GB)
	require.NoError(t, err)
	require.NoError(t, w.WriteFrame(make([]sample.Value, 4)))
	require.NoError(t, w.Finish())

	f.pos = 0

	reader, err := wave.Open(f)
	require.NoError(t, err)

	defer reader.Close()

	_, err = reader.Stereo()
	require.Error(t, err)
}

// TestFrameIteratorNthSeeksPCM covers E5: Nth on a PCM source (a
// FrameSeeker) jumps directly to the target frame rather than decoding
// every skipped one, and nth(0) behaves like Next.
func TestFrameIteratorNthSeeksPCM(t *testing.T) {
	t.Parallel()

	const frames = 32

	f := stereoFixture(t, frames)

	reader, err := wave.Open(f)
	require.NoError(t, err)

	defer reader.Close()

	it, err := reader.Frames()
	require.NoError(t, err)

	frame, err := it.Nth(10)
	require.NoError(t, err)
	require.Equal(t, int16(10), sample.As[int16](frame[0])) //nolint:gosec

	frame, err = it.Nth(0)
	require.NoError(t, err)
	require.Equal(t, int16(11), sample.As[int16](frame[0])) //nolint:gosec
}

// TestIndependentIteratorCursors covers E6: two iterators minted from the
// same reader advance independently even though both ultimately read
// through the same shared underlying handle.
func TestIndependentIteratorCursors(t *testing.T) {
	t.Parallel()

	f := stereoFixture(t, 16)

	reader, err := wave.Open(f)
	require.NoError(t, err)

	defer reader.Close()

	first, err := reader.Frames()
	require.NoError(t, err)

	second, err := reader.Frames()
	require.NoError(t, err)

	_, err = first.Next()
	require.NoError(t, err)

	_, err = first.Next()
	require.NoError(t, err)

	frame, err := second.Next()
	require.NoError(t, err)
	require.Equal(t, int16(0), sample.As[int16](frame[0])) //nolint:gosec
}

func TestWriterRejectsZeroChannels(t *testing.T) {
	t.Parallel()

	spec := wave.Spec{Channels: 0, SampleRate: 8000, BitsPerSample: 16, SampleFormat: wave.FormatInt}

	_, err := wave.NewPCMWriter(&memFile{}, spec, wave.NeverLargerThan4GB)
	require.Error(t, err)
}

// TestADPCMNthMatchesSequentialDecode covers E7: an ADPCM source's Nth
// takes the block-aligned-seek-plus-reset-states fast path rather than
// generic decode-and-discard, but both paths run the same deterministic
// decoder, so jumping straight to a frame must produce exactly the sample
// a full sequential decode would have produced at that position.
func TestADPCMNthMatchesSequentialDecode(t *testing.T) {
	t.Parallel()

	framesPerBlock := adpcm.IMA.FramesPerBlock(1)
	totalFrames := framesPerBlock*3 + framesPerBlock/2 // spans a partial final block

	f := &memFile{}

	w, err := wave.NewADPCMWriter(f, 1, 8000, adpcm.IMA, wave.NeverLargerThan4GB)
	require.NoError(t, err)

	for i := range totalFrames {
		v := int16(8000 * math.Sin(float64(i)*0.05))
		require.NoError(t, w.WriteFrame([]sample.Value{sample.Of(v)}))
	}

	require.NoError(t, w.Finish())

	f.pos = 0

	reader, err := wave.Open(f)
	require.NoError(t, err)

	defer reader.Close()

	targets := []int{37, framesPerBlock + 5}

	sequential, err := reader.Frames()
	require.NoError(t, err)

	atTarget := make(map[int]sample.Value, len(targets))
	want := targets[len(targets)-1]

	for i := 0; i <= want; i++ {
		frame, err := sequential.Next()
		require.NoError(t, err)

		for _, target := range targets {
			if i == target {
				atTarget[target] = frame[0]
			}
		}
	}

	for _, target := range targets {
		seeking, err := reader.Frames()
		require.NoError(t, err)

		jumped, err := seeking.Nth(uint64(target)) //nolint:gosec
		require.NoError(t, err)

		require.Equal(t, atTarget[target], jumped[0])
	}
}
