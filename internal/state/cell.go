package state

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/popcorn/internal/shared"
)

// Cell holds a value of type T mirrored to a [Store] under a fixed key.
type Cell[T any] struct {
	ctx      context.Context
	store    Store
	key      string
	validate func(T) error
	logger   *log.Logger

	mu     sync.Mutex
	value  T
	loaded bool
}

// Option configures a [Cell].
type Option[T any] func(*Cell[T])

// WithValidator rejects stored values that decode but do not have the expected shape.
func WithValidator[T any](fn func(T) error) Option[T] {
	return func(c *Cell[T]) { c.validate = fn }
}

// WithLogger sets the logger used to report load and persist failures.
func WithLogger[T any](l *log.Logger) Option[T] {
	return func(c *Cell[T]) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a cell for key, loading the stored value or falling back to initial.
//
// Load failures are logged and never returned. ctx is used for every store call the cell makes.
func New[T any](ctx context.Context, store Store, key string, initial T, opts ...Option[T]) *Cell[T] {
	c := &Cell[T]{
		ctx:    ctx,
		store:  store,
		key:    key,
		logger: shared.NopLogger(),
		value:  initial,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = shared.WithLogger(c.logger, "cell", key)

	if v, ok := c.load(); ok {
		c.value = v
		c.loaded = true
	}
	return c
}

func (c *Cell[T]) load() (T, bool) {
	var zero T

	raw, ok, err := c.store.Get(c.ctx, c.key)
	if err != nil {
		c.logger.Warn("failed to read stored value, using initial value", "error", err)
		return zero, false
	}
	if !ok || raw == "" {
		return zero, false
	}

	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		c.logger.Warn("stored value is not valid, using initial value", "error", err)
		return zero, false
	}
	if c.validate != nil {
		if err := c.validate(v); err != nil {
			c.logger.Warn("stored value has unexpected shape, using initial value", "error", err)
			return zero, false
		}
	}
	return v, true
}

// Key returns the store key.
func (c *Cell[T]) Key() string {
	return c.key
}

// Restored reports whether the current value came from the store rather than the initial value.
func (c *Cell[T]) Restored() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set replaces the current value and writes it to the store.
//
// The value stays current even when persisting fails; the returned error wraps [shared.ErrPersist].
func (c *Cell[T]) Set(v T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setLocked(v)
}

// Update applies fn to the latest value, stores the result and returns it.
//
// fn must be pure; it runs with the cell locked.
func (c *Cell[T]) Update(fn func(old T) T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := fn(c.value)
	return next, c.setLocked(next)
}

func (c *Cell[T]) setLocked(v T) error {
	c.value = v

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", shared.ErrPersist, c.key, err)
	}
	if err := c.store.Set(c.ctx, c.key, string(data)); err != nil {
		c.logger.Error("failed to persist value", "error", err)
		return fmt.Errorf("%w: %s: %v", shared.ErrPersist, c.key, err)
	}
	return nil
}
