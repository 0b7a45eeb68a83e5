package main

import (
	"context"
	"testing"

	"github.com/kbukum/lazykit/logger"
	"github.com/kbukum/lazykit/singleton"
)

func TestDemonstrateRetry(t *testing.T) {
	p := singleton.MustNew(flakyConstructor(2), singleton.WithLogger(logger.NewNop()))
	if err := demonstrateRetry(context.Background(), logger.NewNop(), p); err != nil {
		t.Fatalf("demonstrateRetry failed: %v", err)
	}
	st := p.Stats()
	if st.Failures != 2 || st.Constructions != 1 {
		t.Errorf("expected 2 failures and 1 construction, got %+v", st)
	}
}

func TestDemonstrateRetryNeverSucceeds(t *testing.T) {
	p := singleton.MustNew(flakyConstructor(10), singleton.WithLogger(logger.NewNop()))
	if err := demonstrateRetry(context.Background(), logger.NewNop(), p); err == nil {
		t.Error("expected error when the provider never succeeds")
	}
}

func TestHammer(t *testing.T) {
	nop := singleton.WithLogger(logger.NewNop())
	settings := singleton.MustNew(singleton.Func(func() *Settings { return loadSettings("x") }), nop)
	pool := singleton.MustNew(singleton.FuncErr(func() (*ConnPool, error) { return newConnPool(0) }),
		nop, singleton.WithStrategy(singleton.Synchronized))

	if err := hammer(context.Background(), logger.NewNop(), 50, settings, pool); err != nil {
		t.Fatalf("hammer failed: %v", err)
	}
	c := pool.MustGet(context.Background())
	if c.acquired.Load() != 50 || c.Size() != 1 {
		t.Errorf("unexpected pool state: acquired=%d size=%d", c.acquired.Load(), c.Size())
	}
	if err := pool.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !c.closed.Load() {
		t.Error("expected pool closed")
	}
}
