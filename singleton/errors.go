package singleton

import (
	"errors"
	"fmt"

	apperrors "github.com/kbukum/lazykit/errors"
)

var (
	// ErrClosed is matched (via errors.Is) by the error Get returns after Close.
	ErrClosed = apperrors.New(apperrors.ErrCodeProviderClosed, "singleton: provider closed")

	// ErrNilConstructor is the cause of the INVALID_INPUT error New returns
	// when no constructor is given.
	ErrNilConstructor = errors.New("singleton: nil constructor")

	// ErrConstructorPanic wraps a value recovered from a panicking constructor.
	ErrConstructorPanic = errors.New("singleton: constructor panicked")
)

// ConstructionError reports a failed construction. It is never cached:
// the provider stays uninitialized and the next Get tries again.
type ConstructionError struct {
	// Provider is the provider name.
	Provider string
	// Attempt is the provider-wide construction attempt number, starting at 1.
	Attempt int64
	// Err is what the constructor returned (or the recovered panic).
	Err error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("singleton: construct %s (attempt %d): %v", e.Provider, e.Attempt, e.Err)
}

// Unwrap exposes the constructor error and a CONSTRUCTION_FAILED AppError,
// so both errors.Is(err, cause) and apperrors.IsCode work.
func (e *ConstructionError) Unwrap() []error {
	return []error{e.AppError(), e.Err}
}

// AppError converts the failure into the shared error type.
func (e *ConstructionError) AppError() *apperrors.AppError {
	return apperrors.ConstructionFailed(e.Provider, nil).WithDetail("attempt", e.Attempt)
}

// IsConstructionError reports whether err carries a ConstructionError.
func IsConstructionError(err error) bool {
	var ce *ConstructionError
	return errors.As(err, &ce)
}
