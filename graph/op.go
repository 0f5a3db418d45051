package graph

import (
	"fmt"
	"slices"
	"strings"
)

// Kind identifies the operation an Op performs.
type Kind uint8

const (
	KindError Kind = iota
	KindConstant
	KindIota
	KindBroadcast
	KindAdd
	KindSub
	KindMul
	KindRem
	KindMax
	KindOr
	KindXor
	KindShiftLeft
	KindShiftRightLogical
	KindLt
	KindSelect
	KindSqrt
	KindLog
	KindSin
	KindCos
	KindConvert
	KindBitcastConvert
	KindConcat
	KindSlice
	KindReshape
)

var kindNames = [...]string{
	KindError:             "error",
	KindConstant:          "constant",
	KindIota:              "iota",
	KindBroadcast:         "broadcast",
	KindAdd:               "add",
	KindSub:               "subtract",
	KindMul:               "multiply",
	KindRem:               "remainder",
	KindMax:               "maximum",
	KindOr:                "or",
	KindXor:               "xor",
	KindShiftLeft:         "shift-left",
	KindShiftRightLogical: "shift-right-logical",
	KindLt:                "compare-lt",
	KindSelect:            "select",
	KindSqrt:              "sqrt",
	KindLog:               "log",
	KindSin:               "sine",
	KindCos:               "cosine",
	KindConvert:           "convert",
	KindBitcastConvert:    "bitcast-convert",
	KindConcat:            "concatenate",
	KindSlice:             "slice",
	KindReshape:           "reshape",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Op is one immutable node of a computation. Every Op belongs to exactly one
// Builder and may only be combined with Ops of that Builder.
type Op struct {
	b        *Builder
	id       int
	kind     Kind
	shape    Shape
	operands []*Op

	// Constant payload: one raw bit pattern per element, zero-extended.
	literal []uint64

	// Concatenate and slice dimension.
	dim int

	start, limit, stride int64
}

func (o *Op) Builder() *Builder {
	return o.b
}

// ID is the position of the Op in its Builder. Operands always have
// smaller IDs than the Ops that use them.
func (o *Op) ID() int {
	return o.id
}

func (o *Op) Kind() Kind {
	return o.kind
}

func (o *Op) Shape() Shape {
	return o.shape
}

func (o *Op) Type() ElementType {
	return o.shape.Type
}

func (o *Op) Operands() []*Op {
	return slices.Clone(o.operands)
}

// Literal returns the constant payload of a KindConstant Op.
func (o *Op) Literal() []uint64 {
	return slices.Clone(o.literal)
}

// Dimension returns the dimension a concatenate or slice operates on.
func (o *Op) Dimension() int {
	return o.dim
}

// SliceBounds returns the start, limit and stride of a KindSlice Op.
func (o *Op) SliceBounds() (start, limit, stride int64) {
	return o.start, o.limit, o.stride
}

func (o *Op) IsError() bool {
	return o.kind == KindError
}

func (o *Op) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%%%d = %s(", o.id, o.kind)
	for i, x := range o.operands {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%%%d", x.id)
	}
	switch o.kind {
	case KindConstant:
		if len(o.literal) == 1 {
			fmt.Fprintf(&sb, "%#x", o.literal[0])
		} else {
			fmt.Fprintf(&sb, "{%d elements}", len(o.literal))
		}
	case KindConcat:
		fmt.Fprintf(&sb, "; dim=%d", o.dim)
	case KindSlice:
		fmt.Fprintf(&sb, "; dim=%d [%d:%d:%d]", o.dim, o.start, o.limit, o.stride)
	}
	fmt.Fprintf(&sb, ") : %s", o.shape)
	return sb.String()
}
