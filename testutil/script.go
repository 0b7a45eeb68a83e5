package testutil

import (
	"context"
	"sync"
	"sync/atomic"
)

// Script is a constructor that fails according to a fixed script. Call n
// (1-based) returns failures[n-1] when that entry exists and is non-nil;
// every other call builds a value with build(n).
type Script[T any] struct {
	build    func(n int64) T
	failures []error

	calls atomic.Int64
	mu    sync.Mutex
	built []T
}

// NewScript creates a scripted constructor.
func NewScript[T any](build func(n int64) T, failures ...error) *Script[T] {
	return &Script[T]{build: build, failures: failures}
}

// Construct has the shape of singleton.Constructor and can be passed as
// one directly.
func (s *Script[T]) Construct(context.Context) (T, error) {
	n := s.calls.Add(1)
	if i := int(n - 1); i < len(s.failures) && s.failures[i] != nil {
		var zero T
		return zero, s.failures[i]
	}
	v := s.build(n)
	s.mu.Lock()
	s.built = append(s.built, v)
	s.mu.Unlock()
	return v, nil
}

// Calls returns how many times Construct ran.
func (s *Script[T]) Calls() int64 {
	return s.calls.Load()
}

// Built returns the values produced so far, in call order.
func (s *Script[T]) Built() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.built))
	copy(out, s.built)
	return out
}
