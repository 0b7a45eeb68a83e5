package singleton

import (
	"context"
	"fmt"

	"github.com/kbukum/lazykit/resilience"
)

// Constructor builds the value a Provider owns. ctx belongs to whichever
// caller won the race to construct; a constructor may honor it, but a
// Provider never cancels a running construction itself.
type Constructor[T any] func(ctx context.Context) (T, error)

// Func adapts an infallible zero-argument factory.
func Func[T any](fn func() T) Constructor[T] {
	if fn == nil {
		return nil
	}
	return func(context.Context) (T, error) {
		return fn(), nil
	}
}

// FuncErr adapts a zero-argument factory that can fail.
func FuncErr[T any](fn func() (T, error)) Constructor[T] {
	if fn == nil {
		return nil
	}
	return func(context.Context) (T, error) {
		return fn()
	}
}

// withRetry retries construct in place. Exhausted retries surface as one
// failed construction.
func withRetry[T any](construct Constructor[T], cfg resilience.RetryConfig) Constructor[T] {
	return func(ctx context.Context) (T, error) {
		return resilience.Retry(ctx, cfg, func(ctx context.Context, _ int) (T, error) {
			return construct(ctx)
		})
	}
}

// call runs construct, turning a panic into an error.
func call[T any](ctx context.Context, construct Constructor[T]) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v = zero
			err = fmt.Errorf("%w: %v", ErrConstructorPanic, r)
		}
	}()
	return construct(ctx)
}
