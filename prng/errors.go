package prng

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lox/tensorprng/graph"
)

var (
	// ErrUnsupportedElementType is matched by every UnsupportedElementTypeError.
	ErrUnsupportedElementType = errors.New("unsupported element type")
	ErrUnknownAlgorithm       = errors.New("unknown algorithm")
)

// UnsupportedElementTypeError reports a request for an element type that an
// operation cannot produce. No counter values are consumed when it is
// returned.
type UnsupportedElementTypeError struct {
	Operation string
	Type      graph.ElementType
	Supported []graph.ElementType
}

func (e *UnsupportedElementTypeError) Error() string {
	names := make([]string, len(e.Supported))
	for i, t := range e.Supported {
		names[i] = t.String()
	}
	return fmt.Sprintf("types other than %s are not implemented by %s; got %s",
		strings.Join(names, ", "), e.Operation, e.Type)
}

func (e *UnsupportedElementTypeError) Unwrap() error {
	return ErrUnsupportedElementType
}

var bitTypes = []graph.ElementType{graph.F32, graph.U32, graph.S32, graph.U64, graph.S64}

// unsupported builds the error together with an Output that echoes the
// unadvanced state.
func unsupported(op string, state *graph.Op, t graph.ElementType, supported ...graph.ElementType) (Output, error) {
	err := &UnsupportedElementTypeError{Operation: op, Type: t, Supported: supported}
	logger := state.Builder().Logger()
	logger.Debug().
		Str("operation", op).
		Stringer("type", t).
		Msg("rejected element type")
	return Output{State: state}, err
}
