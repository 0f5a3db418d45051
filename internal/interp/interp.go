// Package interp evaluates graph programs on the host. It is the reference
// backend used by the CLI and the tests; it favours clarity over speed.
package interp

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"github.com/lox/tensorprng/graph"
)

var ErrErrorOp = errors.New("program contains an error op")

// Interpreter executes graph Ops.
type Interpreter struct {
	logger zerolog.Logger
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger sets the logger used for per-evaluation debug output.
func WithLogger(logger zerolog.Logger) Option {
	return func(in *Interpreter) {
		in.logger = logger
	}
}

func New(opts ...Option) *Interpreter {
	in := &Interpreter{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Evaluate computes roots with a default Interpreter.
func Evaluate(roots ...*graph.Op) ([]*Literal, error) {
	return New().Evaluate(roots...)
}

// Evaluate computes the value of every root. Shared subexpressions are
// computed once, and intermediate values are released as soon as their last
// consumer has run.
func (in *Interpreter) Evaluate(roots ...*graph.Op) ([]*Literal, error) {
	if len(roots) == 0 {
		return nil, nil
	}
	b := roots[0].Builder()
	for _, r := range roots[1:] {
		if r.Builder() != b {
			return nil, graph.ErrBuilderMismatch
		}
	}
	if err := b.Err(); err != nil {
		return nil, fmt.Errorf("graph %q: %w", b.Name(), err)
	}

	// Mark every Op reachable from the roots and count its consumers.
	uses := make(map[int]int)
	needed := make(map[int]*graph.Op)
	stack := slices.Clone(roots)
	for len(stack) > 0 {
		op := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := needed[op.ID()]; seen {
			continue
		}
		needed[op.ID()] = op
		for _, x := range op.Operands() {
			uses[x.ID()]++
			stack = append(stack, x)
		}
	}
	isRoot := make(map[int]bool, len(roots))
	for _, r := range roots {
		isRoot[r.ID()] = true
	}

	order := make([]int, 0, len(needed))
	for id := range needed {
		order = append(order, id)
	}
	slices.Sort(order)

	values := make(map[int]*Literal, len(order))
	for _, id := range order {
		op := needed[id]
		lit, err := in.eval(op, values)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", op, err)
		}
		values[id] = lit
		for _, x := range op.Operands() {
			uses[x.ID()]--
			if uses[x.ID()] == 0 && !isRoot[x.ID()] {
				delete(values, x.ID())
			}
		}
	}

	in.logger.Debug().
		Str("graph", b.Name()).
		Int("ops", len(order)).
		Int("roots", len(roots)).
		Msg("evaluated program")

	out := make([]*Literal, len(roots))
	for i, r := range roots {
		out[i] = values[r.ID()]
	}
	return out, nil
}

func (in *Interpreter) eval(op *graph.Op, values map[int]*Literal) (*Literal, error) {
	shape := op.Shape()
	operands := op.Operands()
	args := make([]*Literal, len(operands))
	for i, x := range operands {
		args[i] = values[x.ID()]
	}
	n := shape.Elements()
	out := &Literal{shape: shape}

	switch op.Kind() {
	case graph.KindError:
		return nil, ErrErrorOp

	case graph.KindConstant:
		out.bits = op.Literal()

	case graph.KindIota:
		if !supported(shape.Type) {
			return nil, fmt.Errorf("iota of %s is not supported", shape.Type)
		}
		out.bits = make([]uint64, n)
		for i := range out.bits {
			if shape.Type.IsFloat() {
				out.bits[i] = fromFloat(shape.Type, float64(i))
			} else {
				out.bits[i] = uint64(i) & shape.Type.Mask()
			}
		}

	case graph.KindBroadcast:
		src := args[0].bits
		out.bits = make([]uint64, n)
		if len(src) > 0 {
			for i := range out.bits {
				out.bits[i] = src[i%len(src)]
			}
		}

	case graph.KindLt:
		less, err := lessFunc(operands[0].Type())
		if err != nil {
			return nil, err
		}
		x, y := args[0], args[1]
		out.bits = make([]uint64, n)
		for i := range out.bits {
			if less(at(x, i), at(y, i)) {
				out.bits[i] = 1
			}
		}

	case graph.KindAdd, graph.KindSub, graph.KindMul, graph.KindRem, graph.KindMax,
		graph.KindOr, graph.KindXor, graph.KindShiftLeft, graph.KindShiftRightLogical:
		f, err := binaryFunc(op.Kind(), shape.Type)
		if err != nil {
			return nil, err
		}
		x, y := args[0], args[1]
		out.bits = make([]uint64, n)
		for i := range out.bits {
			out.bits[i] = f(at(x, i), at(y, i))
		}

	case graph.KindSelect:
		pred, onTrue, onFalse := args[0], args[1], args[2]
		out.bits = make([]uint64, n)
		for i := range out.bits {
			if at(pred, i) != 0 {
				out.bits[i] = at(onTrue, i)
			} else {
				out.bits[i] = at(onFalse, i)
			}
		}

	case graph.KindSqrt, graph.KindLog, graph.KindSin, graph.KindCos:
		f, err := unaryFunc(op.Kind(), shape.Type)
		if err != nil {
			return nil, err
		}
		out.bits = make([]uint64, n)
		for i, v := range args[0].bits {
			out.bits[i] = f(v)
		}

	case graph.KindConvert:
		from := operands[0].Type()
		if !supported(from) || !supported(shape.Type) {
			return nil, fmt.Errorf("convert %s to %s is not supported", from, shape.Type)
		}
		out.bits = make([]uint64, n)
		for i, v := range args[0].bits {
			out.bits[i] = convert(from, shape.Type, v)
		}

	case graph.KindBitcastConvert, graph.KindReshape:
		out.bits = slices.Clone(args[0].bits)

	case graph.KindConcat:
		out.bits = concat(args, op.Dimension())

	case graph.KindSlice:
		start, limit, stride := op.SliceBounds()
		out.bits = slice(args[0], op.Dimension(), start, limit, stride, n)

	default:
		return nil, fmt.Errorf("unknown op kind %s", op.Kind())
	}
	return out, nil
}

// at indexes x, broadcasting rank-0 literals.
func at(x *Literal, i int) uint64 {
	if x.shape.IsScalar() {
		return x.bits[0]
	}
	return x.bits[i]
}

// blockSize returns the number of elements spanned by one step of dim.
func blockSize(dims []int64, dim int) int64 {
	n := int64(1)
	for _, d := range dims[dim+1:] {
		n *= d
	}
	return n
}

func outerSize(dims []int64, dim int) int64 {
	n := int64(1)
	for _, d := range dims[:dim] {
		n *= d
	}
	return n
}

func concat(args []*Literal, dim int) []uint64 {
	var total int
	for _, a := range args {
		total += len(a.bits)
	}
	out := make([]uint64, 0, total)
	outer := outerSize(args[0].shape.Dims, dim)
	for o := int64(0); o < outer; o++ {
		for _, a := range args {
			chunk := a.shape.Dims[dim] * blockSize(a.shape.Dims, dim)
			out = append(out, a.bits[o*chunk:(o+1)*chunk]...)
		}
	}
	return out
}

func slice(x *Literal, dim int, start, limit, stride, n int64) []uint64 {
	dims := x.shape.Dims
	inner := blockSize(dims, dim)
	outer := outerSize(dims, dim)
	out := make([]uint64, 0, n)
	for o := int64(0); o < outer; o++ {
		for j := start; j < limit; j += stride {
			base := (o*dims[dim] + j) * inner
			out = append(out, x.bits[base:base+inner]...)
		}
	}
	return out
}
