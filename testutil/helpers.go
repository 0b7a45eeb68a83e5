package testutil

import (
	"context"
	"testing"
)

// Lifecycle is the start/stop surface shared by components and anything
// else a test needs to bring up. component.Component satisfies it.
type Lifecycle interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// CleanupFunc is a function that performs cleanup, typically stopping a component.
type CleanupFunc func() error

// Setup starts c and returns a cleanup function that stops it.
//
// Example:
//
//	cleanup, err := testutil.Setup(ctx, lazyPool)
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer cleanup()
func Setup(ctx context.Context, c Lifecycle) (CleanupFunc, error) {
	if err := c.Start(ctx); err != nil {
		return nil, err
	}
	return func() error {
		return c.Stop(ctx)
	}, nil
}

// THelper provides testing.T integration for easier test setup.
type THelper struct {
	t   testing.TB
	ctx context.Context
}

// T wraps a testing.TB to provide helper methods.
//
// Example:
//
//	func TestMyFeature(t *testing.T) {
//	    testutil.T(t).Setup(lazyPool)
//	    // stopped automatically when the test ends
//	}
func T(t testing.TB) *THelper {
	return &THelper{
		t:   t,
		ctx: context.Background(),
	}
}

// WithContext sets a custom context for the helper.
func (h *THelper) WithContext(ctx context.Context) *THelper {
	h.ctx = ctx
	return h
}

// Setup starts c and registers its Stop with t.Cleanup.
func (h *THelper) Setup(c Lifecycle) {
	h.t.Helper()
	if err := c.Start(h.ctx); err != nil {
		h.t.Fatalf("failed to start %s: %v", c.Name(), err)
	}

	h.t.Cleanup(func() {
		if err := c.Stop(h.ctx); err != nil {
			h.t.Errorf("failed to stop %s: %v", c.Name(), err)
		}
	})
}
