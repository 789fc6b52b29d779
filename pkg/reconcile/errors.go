package reconcile

import (
	"errors"
	"fmt"

	rerrors "github.com/vango-dev/reflow/internal/errors"
	"github.com/vango-dev/reflow/pkg/vdom"
)

var (
	// ErrRefCountMismatch is returned when a component allocates a
	// different number of refs than on its previous render.
	ErrRefCountMismatch = errors.New("reconcile: ref count mismatch")

	// ErrTextRerender is returned when a text node is asked to update in
	// place.
	ErrTextRerender = errors.New("reconcile: text node cannot rerender")

	// ErrAddress is returned when a key path or index path does not
	// resolve in the current tree. It is recoverable.
	ErrAddress = errors.New("reconcile: path does not address a node")

	// ErrHandlerPanic is returned by Invoke and Dispatch when the function
	// they ran panicked.
	ErrHandlerPanic = errors.New("reconcile: event handler panicked")

	// ErrNotRendered is returned when the scheduler has no tree.
	ErrNotRendered = errors.New("reconcile: scheduler not rendered")
)

// RenderError reports a panic raised by a render function or a ref
// cleanup. The pass that raised it is abandoned.
type RenderError struct {
	// Path is the traversal path active when the panic happened.
	Path vdom.Path
	// Value is the value passed to panic.
	Value any
	// Stack is the goroutine stack at the time of the panic.
	Stack []byte

	coded *rerrors.Error
}

func newRenderError(path vdom.Path, value any, stack []byte) *RenderError {
	coded := rerrors.New("E105").WithPath(path.String()).WithStack(stack)
	if err, ok := value.(error); ok {
		coded.Wrap(err)
	}
	return &RenderError{Path: path, Value: value, Stack: stack, coded: coded}
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("reconcile: render panic at %s: %v", e.Path, e.Value)
}

// Unwrap returns the coded error, which in turn wraps the panic value when
// it is an error.
func (e *RenderError) Unwrap() error {
	return e.coded
}

// fatalError carries an invariant violation through a panic to the pass
// boundary, where it is returned unchanged instead of being reported as a
// render panic.
type fatalError struct {
	err error
}

func fatal(code string, path vdom.Path, sentinel error) fatalError {
	return fatalError{err: rerrors.New(code).WithPath(path.String()).Wrap(sentinel)}
}

func addressError(path string, detail string) error {
	e := rerrors.New("E104").WithPath(path).Wrap(ErrAddress)
	if detail != "" {
		e.WithDetail(detail)
	}
	return e
}
