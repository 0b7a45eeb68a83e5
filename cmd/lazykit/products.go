package main

import (
	"errors"
	"sync/atomic"
	"time"
)

// Settings is an immutable snapshot of process settings.
type Settings struct {
	Region   string
	LoadedAt time.Time
}

func loadSettings(region string) *Settings {
	return &Settings{Region: region, LoadedAt: time.Now()}
}

// ConnPool stands in for an expensive shared resource. It can only be
// built through newConnPool, so callers go through its provider.
type ConnPool struct {
	size     int
	acquired atomic.Int64
	closed   atomic.Bool
}

func newConnPool(size int) (*ConnPool, error) {
	if size < 1 {
		size = 1
	}
	// simulate dial latency so racing workers pile up on the lock
	time.Sleep(20 * time.Millisecond)
	return &ConnPool{size: size}, nil
}

// Acquire counts a checkout.
func (p *ConnPool) Acquire() {
	p.acquired.Add(1)
}

// Size returns the configured pool size.
func (p *ConnPool) Size() int { return p.size }

// Close releases the pool. It is called once, by the provider.
func (p *ConnPool) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return errors.New("pool already closed")
	}
	return nil
}

// Token is produced by a constructor that fails a few times first.
type Token struct {
	Value string
}
