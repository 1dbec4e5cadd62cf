package sample

import (
	"encoding/binary"
	"math"
)

// Encode writes v's little-endian on-disk representation into dst, which
// must be at least t.BytesPerSample() long. 24-bit shapes write three
// bytes; no shape is ever padded.
func Encode(t Type, v Value, dst []byte) {
	switch t {
	case S8:
		dst[0] = byte(int8(v.i))
	case U8:
		dst[0] = byte(uint8(v.u))
	case S16:
		binary.LittleEndian.PutUint16(dst, uint16(int16(v.i)))
	case U16:
		binary.LittleEndian.PutUint16(dst, uint16(v.u))
	case S24:
		put24(dst, uint32(v.i))
	case U24:
		put24(dst, uint32(v.u))
	case S32:
		binary.LittleEndian.PutUint32(dst, uint32(v.i))
	case U32:
		binary.LittleEndian.PutUint32(dst, uint32(v.u))
	case S64:
		binary.LittleEndian.PutUint64(dst, uint64(v.i))
	case U64:
		binary.LittleEndian.PutUint64(dst, v.u)
	case F32:
		binary.LittleEndian.PutUint32(dst, math.Float32bits(float32(v.f)))
	case F64:
		binary.LittleEndian.PutUint64(dst, math.Float64bits(v.f))
	default:
		panic("sample: Encode called with unsupported type")
	}
}

// Decode reads a little-endian on-disk sample of shape t from src, which
// must be at least t.BytesPerSample() long.
func Decode(t Type, src []byte) Value {
	switch t {
	case S8:
		return Value{Type: t, i: int64(int8(src[0]))}
	case U8:
		return Value{Type: t, u: uint64(src[0])}
	case S16:
		return Value{Type: t, i: int64(int16(binary.LittleEndian.Uint16(src)))}
	case U16:
		return Value{Type: t, u: uint64(binary.LittleEndian.Uint16(src))}
	case S24:
		return Value{Type: t, i: int64(signExtend(uint64(get24(src)), 24))}
	case U24:
		return Value{Type: t, u: uint64(get24(src))}
	case S32:
		return Value{Type: t, i: int64(int32(binary.LittleEndian.Uint32(src)))}
	case U32:
		return Value{Type: t, u: uint64(binary.LittleEndian.Uint32(src))}
	case S64:
		return Value{Type: t, i: int64(binary.LittleEndian.Uint64(src))}
	case U64:
		return Value{Type: t, u: binary.LittleEndian.Uint64(src)}
	case F32:
		return Value{Type: t, f: float64(math.Float32frombits(binary.LittleEndian.Uint32(src)))}
	case F64:
		return Value{Type: t, f: math.Float64frombits(binary.LittleEndian.Uint64(src))}
	default:
		panic("sample: Decode called with unsupported type")
	}
}

func put24(dst []byte, v uint32) {
	dst[0] = byte(v)
	dst[1] = byte(v >> 8)
	dst[2] = byte(v >> 16)
}

func get24(src []byte) uint32 {
	return uint32(src[0]) | uint32(src[1])<<8 | uint32(src[2])<<16
}

// EncodeWire is the generic, shape-inferred form of Encode.
func EncodeWire[T Wire](v T, dst []byte) {
	Encode(TypeOf[T](), Of(v), dst)
}

// DecodeWire is the generic, shape-inferred form of Decode.
func DecodeWire[T Wire](src []byte) T {
	return As[T](Decode(TypeOf[T](), src))
}
