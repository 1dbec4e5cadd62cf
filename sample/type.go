// Package sample implements the twelve canonical WAVE sample shapes shared
// by every codec in wavecraft: lossless little-endian (de)serialization and
// the widening/narrowing/rescaling conversions described in spec §4.4.
package sample

import "fmt"

// Type is the tag of one of the twelve canonical sample shapes.
type Type uint8

// The twelve canonical WaveSampleType shapes.
const (
	S8 Type = iota
	S16
	S24
	S32
	S64
	U8
	U16
	U24
	U32
	U64
	F32
	F64
)

// String returns the shape's short name, e.g. "s24" or "f32".
func (t Type) String() string {
	switch t {
	case S8:
		return "s8"
	case S16:
		return "s16"
	case S24:
		return "s24"
	case S32:
		return "s32"
	case S64:
		return "s64"
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U24:
		return "u24"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	default:
		return fmt.Sprintf("sample.Type(%d)", uint8(t))
	}
}

// BytesPerSample returns the on-disk little-endian width of one sample of
// this shape: 1, 2, 3, 4 or 8 bytes. 24-bit shapes are three bytes, never
// padded to four.
func (t Type) BytesPerSample() int {
	switch t {
	case S8, U8:
		return 1
	case S16, U16:
		return 2
	case S24, U24:
		return 3
	case S32, U32, F32:
		return 4
	case S64, U64, F64:
		return 8
	default:
		panic(fmt.Sprintf("sample: BytesPerSample called with unsupported type %d", uint8(t)))
	}
}

// BitsPerSample returns the shape's declared bit depth (always
// BytesPerSample*8, spelled out separately because fmt chunks carry it as a
// distinct field).
func (t Type) BitsPerSample() int {
	return t.BytesPerSample() * 8
}

// IsSigned reports whether the shape is a signed integer.
func (t Type) IsSigned() bool {
	switch t {
	case S8, S16, S24, S32, S64:
		return true
	default:
		return false
	}
}

// IsUnsigned reports whether the shape is an unsigned integer.
func (t Type) IsUnsigned() bool {
	switch t {
	case U8, U16, U24, U32, U64:
		return true
	default:
		return false
	}
}

// IsFloat reports whether the shape is a floating-point type.
func (t Type) IsFloat() bool {
	return t == F32 || t == F64
}

// Valid reports whether t is one of the twelve recognized shapes.
func (t Type) Valid() bool {
	return t <= F64
}

// Int24 and Uint24 give 24-bit samples their own Go type, distinct from
// Int32/Uint32, so the generic dispatch in TypeOf can tell them apart. Only
// the low 24 bits are meaningful; values are otherwise carried sign- (Int24)
// or zero- (Uint24) extended in the native word.
type Int24 int32

// Uint24 is the unsigned counterpart of Int24.
type Uint24 uint32
