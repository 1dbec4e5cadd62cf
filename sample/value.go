package sample

import "math"

// Value is a shape-erased sample: the runtime counterpart of a generic
// Wire value, used wherever a caller needs to carry a sample across a
// dispatch boundary without knowing its shape ahead of time (the reader's
// chunk registry, the block-adapter mono-downmix/stereo-duplicate paths).
type Value struct {
	Type Type
	i    int64
	u    uint64
	f    float64
}

// Wire is the closed set of Go types a generic sample-shape caller may be
// parameterized by. Int24/Uint24 are distinct named types so TypeOf can
// disambiguate them from the 32-bit shapes at compile time.
type Wire interface {
	~int8 | ~int16 | Int24 | int32 | ~int64 |
		~uint8 | ~uint16 | Uint24 | uint32 | ~uint64 |
		~float32 | ~float64
}

// TypeOf resolves the canonical shape of a generic Wire type parameter by
// inspecting its runtime type tag once per call site, exactly the dispatch
// pattern spec §4.4/§9 describes: "a generic caller with sample type S
// inspects S's type tag at runtime and routes to the matching entrypoint."
func TypeOf[T Wire]() Type {
	var zero T

	switch any(zero).(type) {
	case int8:
		return S8
	case int16:
		return S16
	case Int24:
		return S24
	case int32:
		return S32
	case int64:
		return S64
	case uint8:
		return U8
	case uint16:
		return U16
	case Uint24:
		return U24
	case uint32:
		return U32
	case uint64:
		return U64
	case float32:
		return F32
	case float64:
		return F64
	default:
		panic("sample: TypeOf called with unsupported Wire type")
	}
}

// Of lifts a concrete wire sample into a shape-erased Value.
func Of[T Wire](v T) Value {
	t := TypeOf[T]()

	switch x := any(v).(type) {
	case int8:
		return Value{Type: t, i: int64(x)}
	case int16:
		return Value{Type: t, i: int64(x)}
	case Int24:
		return Value{Type: t, i: int64(x)}
	case int32:
		return Value{Type: t, i: int64(x)}
	case int64:
		return Value{Type: t, i: x}
	case uint8:
		return Value{Type: t, u: uint64(x)}
	case uint16:
		return Value{Type: t, u: uint64(x)}
	case Uint24:
		return Value{Type: t, u: uint64(x)}
	case uint32:
		return Value{Type: t, u: uint64(x)}
	case uint64:
		return Value{Type: t, u: x}
	case float32:
		return Value{Type: t, f: float64(x)}
	case float64:
		return Value{Type: t, f: x}
	default:
		panic("sample: Of called with unsupported Wire type")
	}
}

// As lowers a shape-erased Value back into a concrete wire sample. The
// caller must request the Value's own Type; use ScaleTo/CastTo first to
// change shape.
func As[T Wire](v Value) T {
	var zero T

	switch any(zero).(type) {
	case int8:
		return any(int8(v.i)).(T) //nolint:forcetypeassert // T is the switched-on type.
	case int16:
		return any(int16(v.i)).(T) //nolint:forcetypeassert
	case Int24:
		return any(Int24(v.i)).(T) //nolint:forcetypeassert
	case int32:
		return any(int32(v.i)).(T) //nolint:forcetypeassert
	case int64:
		return any(v.i).(T) //nolint:forcetypeassert
	case uint8:
		return any(uint8(v.u)).(T) //nolint:forcetypeassert
	case uint16:
		return any(uint16(v.u)).(T) //nolint:forcetypeassert
	case Uint24:
		return any(Uint24(v.u)).(T) //nolint:forcetypeassert
	case uint32:
		return any(uint32(v.u)).(T) //nolint:forcetypeassert
	case uint64:
		return any(v.u).(T) //nolint:forcetypeassert
	case float32:
		return any(float32(v.f)).(T) //nolint:forcetypeassert
	case float64:
		return any(v.f).(T) //nolint:forcetypeassert
	default:
		panic("sample: As called with unsupported Wire type")
	}
}

// fullScale returns the magnitude used to map a float sample to/from the
// signed integer range of width bits (2^(width-1) - 1, e.g. 32767 for 16-bit).
func fullScale(width int) float64 {
	return float64(int64(1)<<(width-1) - 1)
}

func midpoint(width int) int64 {
	return int64(1) << (width - 1)
}

// ScaleTo performs the lossless-widen / scaling-narrow conversion described
// in spec §4.4: bit-replicating widen for same-signedness integers,
// top-bits truncation for narrowing, mid-range offset for signed<->unsigned,
// and divide/multiply-by-full-scale with ±1.0 saturation for int<->float.
func (v Value) ScaleTo(target Type) Value {
	if v.Type == target {
		return v
	}

	switch {
	case (v.Type.IsSigned() || v.Type.IsUnsigned()) && target.IsFloat():
		return scaleIntToFloat(v, target)
	case v.Type.IsFloat() && (target.IsSigned() || target.IsUnsigned()):
		return scaleFloatToInt(v, target)
	case v.Type.IsFloat() && target.IsFloat():
		return Value{Type: target, f: v.f}
	default:
		return scaleIntToInt(v, target)
	}
}

func scaleIntToFloat(v Value, target Type) Value {
	srcWidth := v.Type.BitsPerSample()

	var signed float64
	if v.Type.IsSigned() {
		signed = float64(v.i)
	} else {
		signed = float64(int64(v.u) - midpoint(srcWidth))
	}

	f := signed / fullScale(srcWidth)
	f = math.Max(-1.0, math.Min(1.0, f))

	return Value{Type: target, f: f}
}

func scaleFloatToInt(v Value, target Type) Value {
	dstWidth := target.BitsPerSample()
	scaled := v.f * fullScale(dstWidth)

	if target.IsSigned() {
		lo, hi := -fullScale(dstWidth)-1, fullScale(dstWidth)
		scaled = math.Max(lo, math.Min(hi, scaled))

		return Value{Type: target, i: int64(math.Round(scaled))}
	}

	unsigned := scaled + float64(midpoint(dstWidth))
	unsigned = math.Max(0, math.Min(float64(uint64(1)<<dstWidth-1), unsigned))

	return Value{Type: target, u: uint64(math.Round(unsigned))}
}

// maskBits returns the low width bits of v as an unsigned bit pattern.
func maskBits(v int64, width int) uint64 {
	return uint64(v) & (uint64(1)<<width - 1)
}

// tileBits widens an srcWidth-bit pattern to dstWidth bits by repeating it
// (bit-replication), or narrows it by taking the top dstWidth bits.
func tileBits(pattern uint64, srcWidth, dstWidth int) uint64 {
	if dstWidth <= srcWidth {
		return pattern >> (srcWidth - dstWidth)
	}

	var result uint64

	filled := 0
	for filled < dstWidth {
		remaining := dstWidth - filled

		take := srcWidth
		if take > remaining {
			take = remaining
		}

		chunk := pattern >> (srcWidth - take)
		result = (result << take) | chunk
		filled += take
	}

	return result
}

// signExtend reinterprets the low width bits of v as a two's-complement
// signed value.
func signExtend(v uint64, width int) int64 {
	shift := 64 - width

	return int64(v<<shift) >> shift
}

func scaleIntToInt(v Value, target Type) Value {
	srcWidth := v.Type.BitsPerSample()
	dstWidth := target.BitsPerSample()

	var centered int64
	if v.Type.IsSigned() {
		centered = v.i
	} else {
		centered = int64(v.u) - midpoint(srcWidth)
	}

	pattern := maskBits(centered, srcWidth)

	var resultPattern uint64
	if dstWidth >= srcWidth {
		resultPattern = tileBits(pattern, srcWidth, dstWidth)
	} else {
		resultPattern = maskBits(centered>>(srcWidth-dstWidth), dstWidth)
	}

	centeredResult := signExtend(resultPattern, dstWidth)

	if target.IsSigned() {
		return Value{Type: target, i: centeredResult}
	}

	return Value{Type: target, u: uint64(centeredResult + midpoint(dstWidth))}
}

// CastTo performs a direct numeric cast with no range rescaling: integers
// are sign/zero extended or truncated, floats are widened/narrowed, and
// int<->float conversions reinterpret the numeric value (not its proportion
// of full scale).
func (v Value) CastTo(target Type) Value {
	if v.Type == target {
		return v
	}

	switch {
	case target.IsFloat():
		if v.Type.IsFloat() {
			return Value{Type: target, f: v.f}
		}

		if v.Type.IsSigned() {
			return Value{Type: target, f: float64(v.i)}
		}

		return Value{Type: target, f: float64(v.u)}
	case v.Type.IsFloat():
		if target.IsSigned() {
			return Value{Type: target, i: int64(v.f)}
		}

		return Value{Type: target, u: uint64(v.f)}
	case target.IsSigned():
		if v.Type.IsSigned() {
			return Value{Type: target, i: v.i}
		}

		return Value{Type: target, i: int64(v.u)}
	default:
		if v.Type.IsSigned() {
			return Value{Type: target, u: uint64(v.i)}
		}

		return Value{Type: target, u: v.u}
	}
}

// ScaleFrom is the free-function, generic-in-both-directions form of
// Value.ScaleTo: convert a wire sample of shape S into shape O.
func ScaleFrom[O, S Wire](v S) O {
	return As[O](Of(v).ScaleTo(TypeOf[O]()))
}

// CastFrom is the generic form of Value.CastTo.
func CastFrom[O, S Wire](v S) O {
	return As[O](Of(v).CastTo(TypeOf[O]()))
}
