package canvas

import (
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// Failure kinds returned by New and Center. Callers test them with errors.Is.
var (
	ErrConnectionFailed            = errors.New("connection failed")
	ErrNoMatchingVisual            = errors.New("no matching visual")
	ErrWindowCreationFailed        = errors.New("window creation failed")
	ErrContextCreationFailed       = errors.New("graphics context creation failed")
	ErrRenderContextCreationFailed = errors.New("render context creation failed")
)

// ErrMisuse is the panic value class for lifecycle violations, such as Run
// before Open or any call after Close.
var ErrMisuse = errors.New("canvas misuse")

// ErrClosed is returned by Do once the canvas has been closed.
var ErrClosed = errors.New("canvas closed")

// ErrNotRunning is returned by Do between event loops, once a loop has
// owned the canvas.
var ErrNotRunning = errors.New("canvas event loop not running")

var errNoDisplay = errors.New("dialer returned no display")

// ConnectionError reports which display could not be reached.
type ConnectionError struct {
	Display string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot connect to display %q: %v", e.Display, e.Err)
}

func (e *ConnectionError) Unwrap() []error {
	return []error{ErrConnectionFailed, e.Err}
}

func connectionFailed(display string, err error) error {
	return &ConnectionError{Display: display, Err: err}
}

// misuse panics with a stack-carrying error that wraps ErrMisuse.
func misuse(format string, args ...any) {
	err := fmt.Errorf("%w: %s", ErrMisuse, fmt.Sprintf(format, args...))
	panic(goerrors.Wrap(err, 2))
}
