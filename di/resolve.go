package di

import (
	"context"
	"fmt"
	"reflect"

	apperrors "github.com/kbukum/lazykit/errors"
	"github.com/kbukum/lazykit/singleton"
)

// Resolve returns the instance registered under key, constructing it on
// first use.
//
// Errors: NOT_FOUND when key is unknown, TYPE_MISMATCH when the provider's
// type is not assignable to T, otherwise whatever the provider's Get
// returned (a *singleton.ConstructionError or singleton.ErrClosed).
//
// Example:
//
//	settings, err := di.Resolve[*Settings](ctx, c, "settings")
//	if err != nil {
//	    return fmt.Errorf("resolving settings: %w", err)
//	}
func Resolve[T any](ctx context.Context, c *Container, key string) (T, error) {
	var zero T
	r, ok := c.lookup(key)
	if !ok {
		return zero, apperrors.NotFound("provider", key)
	}

	if p, ok := r.p.(*singleton.Provider[T]); ok {
		return p.Get(ctx)
	}

	want := reflect.TypeFor[T]()
	if !r.typ.AssignableTo(want) {
		return zero, apperrors.TypeMismatch(key, r.typ.String(), want.String())
	}
	instance, err := r.get(ctx)
	if err != nil {
		return zero, err
	}
	result, ok := instance.(T)
	if !ok {
		return zero, apperrors.TypeMismatch(key, fmt.Sprintf("%T", instance), want.String())
	}
	return result, nil
}

// MustResolve is like Resolve but panics on error. Use it during wiring,
// where a missing dependency is a programming error.
func MustResolve[T any](ctx context.Context, c *Container, key string) T {
	v, err := Resolve[T](ctx, c, key)
	if err != nil {
		panic(fmt.Sprintf("di: failed to resolve %s: %v", key, err))
	}
	return v
}

// TryResolve returns the zero value and false on any error. Use it when a
// dependency is optional.
//
// Example:
//
//	if cache, ok := di.TryResolve[*Cache](ctx, c, "cache"); ok {
//	    cache.Warm()
//	}
func TryResolve[T any](ctx context.Context, c *Container, key string) (T, bool) {
	v, err := Resolve[T](ctx, c, key)
	if err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// ProviderOf returns the typed provider registered under key.
func ProviderOf[T any](c *Container, key string) (*singleton.Provider[T], error) {
	r, ok := c.lookup(key)
	if !ok {
		return nil, apperrors.NotFound("provider", key)
	}
	p, ok := r.p.(*singleton.Provider[T])
	if !ok {
		return nil, apperrors.TypeMismatch(key, r.typ.String(), reflect.TypeFor[T]().String())
	}
	return p, nil
}
