package di

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"sync"

	apperrors "github.com/kbukum/lazykit/errors"
	"github.com/kbukum/lazykit/logger"
	"github.com/kbukum/lazykit/singleton"
)

// provider is the type-erased view of a *singleton.Provider[T].
type provider interface {
	Name() string
	ID() string
	Strategy() singleton.Strategy
	State() singleton.State
	Stats() singleton.Stats
	Close() error
}

type registration struct {
	key   string
	typ   reflect.Type
	p     provider
	get   func(ctx context.Context) (any, error)
	order int
}

// RegistrationInfo describes a registered provider for introspection.
type RegistrationInfo struct {
	Key        string
	Type       string
	ProviderID string
	Strategy   singleton.Strategy
	State      singleton.State
	Stats      singleton.Stats
}

// Option configures a Container.
type Option func(*Container)

// WithProviderOptions sets options applied to every provider created by
// ProvideFunc, before the per-call options.
func WithProviderOptions(opts ...singleton.Option) Option {
	return func(c *Container) { c.providerOpts = append(c.providerOpts, opts...) }
}

// WithLogger sets the container logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Container) { c.log = l }
}

// Container maps keys to singleton providers.
type Container struct {
	mu           sync.RWMutex
	entries      map[string]*registration
	next         int
	closed       bool
	providerOpts []singleton.Option
	log          *logger.Logger
}

// NewContainer creates an empty container.
func NewContainer(opts ...Option) *Container {
	c := &Container{
		entries: make(map[string]*registration),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Get("di")
	}
	return c
}

// Provide registers p under key. The container takes ownership: Close
// closes p.
func Provide[T any](c *Container, key string, p *singleton.Provider[T]) error {
	if key == "" {
		return apperrors.InvalidInput("key", "di: empty key")
	}
	if p == nil {
		return apperrors.InvalidInput("provider", "di: nil provider")
	}
	return c.add(&registration{
		key: key,
		typ: reflect.TypeFor[T](),
		p:   p,
		get: func(ctx context.Context) (any, error) { return p.Get(ctx) },
	})
}

// ProvideFunc creates a provider named key for construct and registers it.
// With the Eager strategy the construction error is returned here.
func ProvideFunc[T any](c *Container, key string, construct singleton.Constructor[T], opts ...singleton.Option) error {
	c.mu.RLock()
	_, exists := c.entries[key]
	base := c.providerOpts
	c.mu.RUnlock()
	if exists {
		return apperrors.AlreadyExists("provider", key)
	}

	all := make([]singleton.Option, 0, len(base)+len(opts)+1)
	all = append(all, singleton.WithName(key))
	all = append(all, base...)
	all = append(all, opts...)
	p, err := singleton.New(construct, all...)
	if err != nil {
		return err
	}
	if err := Provide(c, key, p); err != nil {
		_ = p.Close()
		return err
	}
	return nil
}

func (c *Container) add(r *registration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return apperrors.New(apperrors.ErrCodeProviderClosed, "di: container closed")
	}
	if _, exists := c.entries[r.key]; exists {
		return apperrors.AlreadyExists("provider", r.key)
	}
	r.order = c.next
	c.next++
	c.entries[r.key] = r

	c.log.WithProvider(r.key, r.p.ID(), string(r.p.Strategy())).Debug("provider registered")
	return nil
}

func (c *Container) lookup(key string) (*registration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.entries[key]
	return r, ok
}

// Has reports whether key is registered.
func (c *Container) Has(key string) bool {
	_, ok := c.lookup(key)
	return ok
}

// Registrations lists every registration sorted by key.
func (c *Container) Registrations() []RegistrationInfo {
	c.mu.RLock()
	infos := make([]RegistrationInfo, 0, len(c.entries))
	for _, r := range c.entries {
		infos = append(infos, RegistrationInfo{
			Key:        r.key,
			Type:       r.typ.String(),
			ProviderID: r.p.ID(),
			Strategy:   r.p.Strategy(),
			State:      r.p.State(),
			Stats:      r.p.Stats(),
		})
	}
	c.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos
}

// Remove unregisters key and closes its provider. Removing an unknown key
// returns NOT_FOUND.
func (c *Container) Remove(key string) error {
	c.mu.Lock()
	r, ok := c.entries[key]
	if ok {
		delete(c.entries, key)
	}
	c.mu.Unlock()

	if !ok {
		return apperrors.NotFound("provider", key)
	}
	c.log.Debug("provider removed", logger.Fields(logger.FieldProvider, key))
	return r.p.Close()
}

// Close closes every provider in reverse registration order and joins
// their errors. Further registrations fail; resolving a closed provider
// returns an error matching singleton.ErrClosed.
func (c *Container) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	regs := make([]*registration, 0, len(c.entries))
	for _, r := range c.entries {
		regs = append(regs, r)
	}
	c.mu.Unlock()

	sort.Slice(regs, func(i, j int) bool { return regs[i].order > regs[j].order })

	var errs []error
	for _, r := range regs {
		if err := r.p.Close(); err != nil {
			c.log.Error("provider close failed", logger.Fields(
				logger.FieldProvider, r.key,
				logger.FieldError, err.Error(),
			))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
