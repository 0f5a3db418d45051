package graph

import (
	"fmt"
	"strings"
)

// ElementType identifies the primitive type of every element of an Op.
type ElementType uint8

const (
	Invalid ElementType = iota
	Pred
	S8
	S16
	S32
	S64
	U8
	U16
	U32
	U64
	F16
	F32
	F64
	Token
	Opaque
)

var elementTypeNames = [...]string{
	Invalid: "invalid",
	Pred:    "pred",
	S8:      "s8",
	S16:     "s16",
	S32:     "s32",
	S64:     "s64",
	U8:      "u8",
	U16:     "u16",
	U32:     "u32",
	U64:     "u64",
	F16:     "f16",
	F32:     "f32",
	F64:     "f64",
	Token:   "token",
	Opaque:  "opaque",
}

func (t ElementType) String() string {
	if int(t) < len(elementTypeNames) {
		return elementTypeNames[t]
	}
	return fmt.Sprintf("ElementType(%d)", uint8(t))
}

// ParseElementType maps a lowercase type name such as "f32" to its ElementType.
func ParseElementType(s string) (ElementType, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for t, n := range elementTypeNames {
		if n == name && ElementType(t) != Invalid {
			return ElementType(t), nil
		}
	}
	return Invalid, fmt.Errorf("unknown element type %q", s)
}

// BitWidth returns the storage width of one element in bits, or 0 for
// types that carry no array data.
func (t ElementType) BitWidth() int {
	switch t {
	case Pred:
		return 1
	case S8, U8:
		return 8
	case S16, U16, F16:
		return 16
	case S32, U32, F32:
		return 32
	case S64, U64, F64:
		return 64
	default:
		return 0
	}
}

// Mask returns the bit mask covering one element of type t.
func (t ElementType) Mask() uint64 {
	w := t.BitWidth()
	if w >= 64 {
		return ^uint64(0)
	}
	return uint64(1)<<w - 1
}

func (t ElementType) IsSigned() bool {
	return t == S8 || t == S16 || t == S32 || t == S64
}

func (t ElementType) IsUnsigned() bool {
	return t == U8 || t == U16 || t == U32 || t == U64
}

func (t ElementType) IsInteger() bool {
	return t.IsSigned() || t.IsUnsigned()
}

func (t ElementType) IsFloat() bool {
	return t == F16 || t == F32 || t == F64
}

// IsArray reports whether values of this type hold element data.
func (t ElementType) IsArray() bool {
	return t == Pred || t.IsInteger() || t.IsFloat()
}

// Unsigned returns the unsigned integer type of the same width as t.
func (t ElementType) Unsigned() ElementType {
	switch t {
	case S8:
		return U8
	case S16:
		return U16
	case S32:
		return U32
	case S64:
		return U64
	}
	return t
}
