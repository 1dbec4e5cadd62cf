package sample_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/farcloser/wavecraft/sample"
)

func TestScaleFromWidenNarrowRoundTrip(t *testing.T) {
	t.Parallel()

	cases := []int16{0, 1, -1, 16000, -16000, 32767, -32768}

	for _, v := range cases {
		widened := sample.ScaleFrom[int32](v)
		narrowed := sample.ScaleFrom[int16](widened)
		require.Equal(t, v, narrowed, "widen-then-narrow should round-trip for %d", v)
	}
}

func TestScaleFromSignedUnsignedOffset(t *testing.T) {
	t.Parallel()

	require.Equal(t, uint8(128), sample.ScaleFrom[uint8](int8(0)))
	require.Equal(t, uint8(0), sample.ScaleFrom[uint8](int8(-128)))
	require.Equal(t, uint8(255), sample.ScaleFrom[uint8](int8(127)))
}

func TestScaleFromIntFloatSaturates(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 1.0, sample.ScaleFrom[float32](int16(32767)), 1e-4)
	require.InDelta(t, -1.0, sample.ScaleFrom[float32](int16(-32768)), 1e-4)
	require.InDelta(t, 0.0, sample.ScaleFrom[float32](int16(0)), 1e-4)

	back := sample.ScaleFrom[int16](float32(1.0))
	require.Equal(t, int16(32767), back)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	for _, typ := range []sample.Type{
		sample.S8, sample.S16, sample.S24, sample.S32, sample.S64,
		sample.U8, sample.U16, sample.U24, sample.U32, sample.U64,
		sample.F32, sample.F64,
	} {
		buf := make([]byte, typ.BytesPerSample())

		var v sample.Value
		switch {
		case typ.IsFloat():
			v = sample.Of(float64(0.5)).ScaleTo(typ)
		case typ.IsSigned():
			v = sample.Of(int64(-5)).ScaleTo(typ)
		default:
			v = sample.Of(uint64(5)).ScaleTo(typ)
		}

		sample.Encode(typ, v, buf)
		decoded := sample.Decode(typ, buf)
		require.Equal(t, v, decoded, "round trip for %s", typ)
	}
}

func TestInt24WireDispatch(t *testing.T) {
	t.Parallel()

	require.Equal(t, sample.S24, sample.TypeOf[sample.Int24]())
	require.Equal(t, sample.S32, sample.TypeOf[int32]())

	buf := make([]byte, 3)
	sample.EncodeWire(sample.Int24(-1), buf)
	require.Equal(t, []byte{0xFF, 0xFF, 0xFF}, buf)
	require.Equal(t, sample.Int24(-1), sample.DecodeWire[sample.Int24](buf))
}
