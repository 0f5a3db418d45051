package graph

import (
	"math"
	"slices"
)

func isNumeric(t ElementType) bool {
	return t.IsInteger() || t == F32 || t == F64
}

func isBitwise(t ElementType) bool {
	return t.IsInteger() || t == Pred
}

func isFloat(t ElementType) bool {
	return t == F32 || t == F64
}

func (b *Builder) constant(shape Shape, bits []uint64) *Op {
	return b.add(&Op{kind: KindConstant, shape: shape, literal: bits})
}

func ConstantU32(b *Builder, v uint32) *Op {
	return b.constant(ScalarShape(U32), []uint64{uint64(v)})
}

func ConstantU64(b *Builder, v uint64) *Op {
	return b.constant(ScalarShape(U64), []uint64{v})
}

func ConstantS32(b *Builder, v int32) *Op {
	return b.constant(ScalarShape(S32), []uint64{uint64(uint32(v))})
}

func ConstantS64(b *Builder, v int64) *Op {
	return b.constant(ScalarShape(S64), []uint64{uint64(v)})
}

func ConstantF32(b *Builder, v float32) *Op {
	return b.constant(ScalarShape(F32), []uint64{uint64(math.Float32bits(v))})
}

func ConstantF64(b *Builder, v float64) *Op {
	return b.constant(ScalarShape(F64), []uint64{math.Float64bits(v)})
}

// Constant creates a shaped constant from one raw bit pattern per element.
// Bits above the element width are discarded.
func Constant(b *Builder, shape Shape, bits []uint64) *Op {
	if !shape.Type.IsArray() {
		return b.reportf(ErrInvalidArgument, "constant of type %s", shape.Type)
	}
	if int64(len(bits)) != shape.Elements() {
		return b.reportf(ErrShapeMismatch, "constant %s given %d elements", shape, len(bits))
	}
	mask := shape.Type.Mask()
	lit := make([]uint64, len(bits))
	for i, v := range bits {
		lit[i] = v & mask
	}
	return b.constant(MakeShape(shape.Type, shape.Dims...), lit)
}

// ScalarLike returns a rank-0 constant holding v converted to x's element type.
func ScalarLike(x *Op, v float64) *Op {
	b, failed, ok := prepare(x)
	if !ok {
		return failed
	}
	t := x.Type()
	var bits uint64
	switch {
	case t == F32:
		bits = uint64(math.Float32bits(float32(v)))
	case t == F64:
		bits = math.Float64bits(v)
	case t.IsSigned():
		bits = uint64(int64(v)) & t.Mask()
	case t.IsUnsigned():
		if v < 0 {
			bits = uint64(int64(v)) & t.Mask()
		} else {
			bits = uint64(v) & t.Mask()
		}
	case t == Pred:
		if v != 0 {
			bits = 1
		}
	default:
		return b.reportf(ErrInvalidArgument, "scalar of type %s", t)
	}
	return b.constant(ScalarShape(t), []uint64{bits})
}

// Iota returns the vector [0, 1, ..., n-1] of type t.
func Iota(b *Builder, t ElementType, n int64) *Op {
	if !isNumeric(t) {
		return b.reportf(ErrInvalidArgument, "iota of type %s", t)
	}
	if n < 0 {
		return b.reportf(ErrInvalidArgument, "iota of negative length %d", n)
	}
	return b.add(&Op{kind: KindIota, shape: MakeShape(t, n)})
}

// Broadcast prepends dims to the shape of x, repeating its elements.
func Broadcast(x *Op, dims ...int64) *Op {
	b, failed, ok := prepare(x)
	if !ok {
		return failed
	}
	for _, d := range dims {
		if d < 0 {
			return b.reportf(ErrInvalidArgument, "broadcast to negative dimension %d", d)
		}
	}
	shape := MakeShape(x.Type(), append(slices.Clone(dims), x.shape.Dims...)...)
	return b.add(&Op{kind: KindBroadcast, shape: shape, operands: []*Op{x}})
}

// broadcastDims returns the common dimensions of shapes, where rank-0
// shapes are compatible with anything.
func broadcastDims(shapes ...Shape) ([]int64, bool) {
	var dims []int64
	have := false
	for _, s := range shapes {
		if s.IsScalar() {
			continue
		}
		if !have {
			dims, have = s.Dims, true
			continue
		}
		if !slices.Equal(dims, s.Dims) {
			return nil, false
		}
	}
	return slices.Clone(dims), true
}

func binary(kind Kind, x, y *Op, accepts func(ElementType) bool) *Op {
	b, failed, ok := prepare(x, y)
	if !ok {
		return failed
	}
	if x.Type() != y.Type() {
		return b.reportf(ErrTypeMismatch, "%s(%s, %s)", kind, x.shape, y.shape)
	}
	if !accepts(x.Type()) {
		return b.reportf(ErrInvalidArgument, "%s does not accept %s", kind, x.Type())
	}
	dims, ok := broadcastDims(x.shape, y.shape)
	if !ok {
		return b.reportf(ErrShapeMismatch, "%s(%s, %s)", kind, x.shape, y.shape)
	}
	t := x.Type()
	if kind == KindLt {
		t = Pred
	}
	return b.add(&Op{kind: kind, shape: Shape{Type: t, Dims: dims}, operands: []*Op{x, y}})
}

func Add(x, y *Op) *Op { return binary(KindAdd, x, y, isNumeric) }
func Sub(x, y *Op) *Op { return binary(KindSub, x, y, isNumeric) }
func Mul(x, y *Op) *Op { return binary(KindMul, x, y, isNumeric) }
func Max(x, y *Op) *Op { return binary(KindMax, x, y, isNumeric) }
func Or(x, y *Op) *Op  { return binary(KindOr, x, y, isBitwise) }
func Xor(x, y *Op) *Op { return binary(KindXor, x, y, isBitwise) }
func Lt(x, y *Op) *Op  { return binary(KindLt, x, y, isNumeric) }

// Rem computes the remainder of x divided by y. A zero divisor yields x.
func Rem(x, y *Op) *Op { return binary(KindRem, x, y, isNumeric) }

// ShiftLeft shifts x left by y bits; shifting by the bit width or more yields 0.
func ShiftLeft(x, y *Op) *Op {
	return binary(KindShiftLeft, x, y, ElementType.IsInteger)
}

// ShiftRightLogical shifts x right by y bits, filling with zeros.
func ShiftRightLogical(x, y *Op) *Op {
	return binary(KindShiftRightLogical, x, y, ElementType.IsInteger)
}

// Select picks onTrue where pred holds and onFalse elsewhere.
func Select(pred, onTrue, onFalse *Op) *Op {
	b, failed, ok := prepare(pred, onTrue, onFalse)
	if !ok {
		return failed
	}
	if pred.Type() != Pred {
		return b.reportf(ErrTypeMismatch, "select predicate is %s", pred.shape)
	}
	if onTrue.Type() != onFalse.Type() {
		return b.reportf(ErrTypeMismatch, "select(%s, %s)", onTrue.shape, onFalse.shape)
	}
	dims, ok := broadcastDims(pred.shape, onTrue.shape, onFalse.shape)
	if !ok {
		return b.reportf(ErrShapeMismatch, "select(%s, %s, %s)", pred.shape, onTrue.shape, onFalse.shape)
	}
	shape := Shape{Type: onTrue.Type(), Dims: dims}
	return b.add(&Op{kind: KindSelect, shape: shape, operands: []*Op{pred, onTrue, onFalse}})
}

func unaryFloat(kind Kind, x *Op) *Op {
	b, failed, ok := prepare(x)
	if !ok {
		return failed
	}
	if !isFloat(x.Type()) {
		return b.reportf(ErrInvalidArgument, "%s does not accept %s", kind, x.Type())
	}
	return b.add(&Op{kind: kind, shape: MakeShape(x.Type(), x.shape.Dims...), operands: []*Op{x}})
}

func Sqrt(x *Op) *Op { return unaryFloat(KindSqrt, x) }
func Log(x *Op) *Op  { return unaryFloat(KindLog, x) }
func Sin(x *Op) *Op  { return unaryFloat(KindSin, x) }
func Cos(x *Op) *Op  { return unaryFloat(KindCos, x) }

// Convert changes the element type of x by value: integers are truncated
// to the target width and floats are rounded toward zero.
func Convert(x *Op, t ElementType) *Op {
	b, failed, ok := prepare(x)
	if !ok {
		return failed
	}
	if !x.Type().IsArray() || !t.IsArray() {
		return b.reportf(ErrInvalidArgument, "convert %s to %s", x.shape, t)
	}
	return b.add(&Op{kind: KindConvert, shape: x.shape.WithType(t), operands: []*Op{x}})
}

// BitcastConvert reinterprets the bits of x as type t of the same width.
func BitcastConvert(x *Op, t ElementType) *Op {
	b, failed, ok := prepare(x)
	if !ok {
		return failed
	}
	if !x.Type().IsArray() || x.Type().BitWidth() != t.BitWidth() {
		return b.reportf(ErrTypeMismatch, "bitcast %s to %s", x.shape, t)
	}
	return b.add(&Op{kind: KindBitcastConvert, shape: x.shape.WithType(t), operands: []*Op{x}})
}

// ConcatInDim joins xs along dimension dim. All operands must share type,
// rank and every other dimension.
func ConcatInDim(b *Builder, xs []*Op, dim int) *Op {
	if len(xs) == 0 {
		return b.reportf(ErrInvalidArgument, "concatenate without operands")
	}
	if xs[0].b != b {
		return b.reportf(ErrBuilderMismatch, "%q and %q", b.name, xs[0].b.name)
	}
	if _, failed, ok := prepare(xs...); !ok {
		return failed
	}
	first := xs[0].shape
	if dim < 0 || dim >= first.Rank() {
		return b.reportf(ErrInvalidArgument, "concatenate dimension %d of %s", dim, first)
	}
	dims := slices.Clone(first.Dims)
	for _, x := range xs[1:] {
		s := x.shape
		if s.Type != first.Type {
			return b.reportf(ErrTypeMismatch, "concatenate %s with %s", first, s)
		}
		if s.Rank() != first.Rank() {
			return b.reportf(ErrShapeMismatch, "concatenate %s with %s", first, s)
		}
		for i := range s.Dims {
			if i != dim && s.Dims[i] != first.Dims[i] {
				return b.reportf(ErrShapeMismatch, "concatenate %s with %s", first, s)
			}
		}
		dims[dim] += s.Dims[dim]
	}
	return b.add(&Op{
		kind:     KindConcat,
		shape:    Shape{Type: first.Type, Dims: dims},
		operands: slices.Clone(xs),
		dim:      dim,
	})
}

// SliceInDim keeps indices start, start+stride, ... below limit of
// dimension dim.
func SliceInDim(x *Op, start, limit, stride int64, dim int) *Op {
	b, failed, ok := prepare(x)
	if !ok {
		return failed
	}
	s := x.shape
	if dim < 0 || dim >= s.Rank() {
		return b.reportf(ErrInvalidArgument, "slice dimension %d of %s", dim, s)
	}
	if start < 0 || limit < start || limit > s.Dims[dim] || stride < 1 {
		return b.reportf(ErrInvalidArgument, "slice [%d:%d:%d] of %s", start, limit, stride, s)
	}
	dims := slices.Clone(s.Dims)
	dims[dim] = (limit - start + stride - 1) / stride
	return b.add(&Op{
		kind:     KindSlice,
		shape:    Shape{Type: s.Type, Dims: dims},
		operands: []*Op{x},
		dim:      dim,
		start:    start,
		limit:    limit,
		stride:   stride,
	})
}

// Reshape reinterprets x with new dimensions holding the same element count.
func Reshape(x *Op, dims ...int64) *Op {
	b, failed, ok := prepare(x)
	if !ok {
		return failed
	}
	shape := MakeShape(x.Type(), dims...)
	for _, d := range dims {
		if d < 0 {
			return b.reportf(ErrInvalidArgument, "reshape to %s", shape)
		}
	}
	if shape.Elements() != x.shape.Elements() {
		return b.reportf(ErrShapeMismatch, "reshape %s to %s", x.shape, shape)
	}
	return b.add(&Op{kind: KindReshape, shape: shape, operands: []*Op{x}})
}
