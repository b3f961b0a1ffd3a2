package capability

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidParameters is reported when a node's parameters payload is not
// a flat key/value mapping.
var ErrInvalidParameters = errors.New("capability parameters must be expressed as a mapping")

// ErrUnexpectedParameters is reported when parameters were supplied but the
// capability declares no argument slots at all. Silently dropping
// caller-supplied configuration is treated as a caller error.
var ErrUnexpectedParameters = errors.New("capability does not accept parameters but configuration was provided")

// ErrNotInvocable is reported when a registered handler is neither an
// invocable value nor a factory that yields one.
var ErrNotInvocable = errors.New("capability is neither invocable nor instantiable")

// LoadError is returned when a capability reference cannot be resolved to a
// registered handler.
type LoadError struct {
	Message string
}

func (e *LoadError) Error() string { return e.Message }

func newLoadError(format string, args ...any) *LoadError {
	return &LoadError{Message: fmt.Sprintf(format, args...)}
}

// TimeoutError is returned when a bounded invocation exceeds its wall-clock
// deadline. It carries the configured duration so callers can surface it.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("capability invocation exceeded the %s timeout", e.Timeout)
}

// UnexpectedError wraps a panic raised by a capability handler. Such
// failures are downgraded to a regular error so a misbehaving capability
// can never crash the host process.
type UnexpectedError struct {
	Message string
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("capability raised an unexpected error: %s", e.Message)
}
