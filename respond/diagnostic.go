package respond

import (
	"errors"
	"fmt"
	"runtime/debug"

	pkgerrors "github.com/pkg/errors"
)

// PanicError carries a value recovered from a panicking handler.
type PanicError struct {
	Value interface{}
	Stack []byte
}

// NewPanicError captures the stack of the panicking goroutine. Call it from
// the deferred function that recovered.
func NewPanicError(value interface{}) *PanicError {
	return &PanicError{
		Value: value,
		Stack: debug.Stack(),
	}
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes a panicked error, so panic(err) is classified like err.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// Trace renders err with the most detailed stack found: the stack of a
// recovered panic, or else the deepest github.com/pkg/errors stack in the
// chain.
func Trace(err error) string {
	text := err.Error()

	var panicErr *PanicError
	if errors.As(err, &panicErr) {
		return text + "\n\n" + string(panicErr.Stack)
	}

	var deepest stackTracer
	for e := err; e != nil; e = errors.Unwrap(e) {
		if st, ok := e.(stackTracer); ok {
			deepest = st
		}
	}
	if deepest == nil {
		return text
	}
	return fmt.Sprintf("%s%+v", text, deepest.StackTrace())
}
