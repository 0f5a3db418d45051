// Package graph is a small symbolic tensor-expression builder. Operations
// only describe a computation; nothing is evaluated while the graph is built.
package graph

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/rs/zerolog"
)

var (
	ErrShapeMismatch   = errors.New("shape mismatch")
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrBuilderMismatch = errors.New("operands belong to different builders")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Builder owns a sequence of Ops. The first error reported while building is
// kept and returned by Err; Ops created after that point may be error Ops.
type Builder struct {
	name   string
	ops    []*Op
	err    error
	logger zerolog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger used to report build errors at debug level.
func WithLogger(logger zerolog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

func NewBuilder(name string, opts ...Option) *Builder {
	b := &Builder{
		name:   name,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) Name() string {
	return b.name
}

func (b *Builder) Logger() zerolog.Logger {
	return b.logger
}

// Err returns the first error reported on the builder, if any.
func (b *Builder) Err() error {
	return b.err
}

// Len returns the number of Ops created so far.
func (b *Builder) Len() int {
	return len(b.ops)
}

// Ops returns the Ops in creation order, which is also a valid
// evaluation order.
func (b *Builder) Ops() []*Op {
	return slices.Clone(b.ops)
}

// ReportError records err (unless an earlier error is already recorded) and
// returns an error Op standing in for the failed operation.
func (b *Builder) ReportError(err error) *Op {
	if b.err == nil {
		b.err = err
	}
	b.logger.Debug().Err(err).Str("builder", b.name).Int("op", len(b.ops)).Msg("graph error")
	return b.add(&Op{kind: KindError, shape: Shape{Type: Invalid}})
}

func (b *Builder) reportf(base error, format string, args ...any) *Op {
	return b.ReportError(fmt.Errorf("%w: "+format, append([]any{base}, args...)...))
}

func (b *Builder) add(op *Op) *Op {
	op.b = b
	op.id = len(b.ops)
	b.ops = append(b.ops, op)
	return op
}

// Dump writes a textual listing of every Op to w.
func (b *Builder) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "graph %q {\n", b.name)
	for _, op := range b.ops {
		fmt.Fprintf(bw, "  %s\n", op)
	}
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

// prepare resolves the shared builder of xs. When an operand is an error Op
// or the operands come from different builders, it returns a replacement
// error Op and ok=false.
func prepare(xs ...*Op) (b *Builder, failed *Op, ok bool) {
	b = xs[0].b
	for _, x := range xs[1:] {
		if x.b != b {
			return b, b.reportf(ErrBuilderMismatch, "%q and %q", b.name, x.b.name), false
		}
	}
	for _, x := range xs {
		if x.IsError() {
			return b, b.add(&Op{kind: KindError, shape: Shape{Type: Invalid}}), false
		}
	}
	return b, nil, true
}
