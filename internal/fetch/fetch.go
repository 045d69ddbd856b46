package fetch

import (
	"context"
	"errors"
	"sync"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/popcorn/internal/shared"
)

// DefaultMinQueryLength is used when [Options.MinQueryLength] is zero.
const DefaultMinQueryLength = 3

// GenericErrorMessage is the default description of a failed fetch.
const GenericErrorMessage = "Something went wrong with fetching movies!"

// FetchFunc retrieves results for query. It must return promptly once ctx is cancelled.
type FetchFunc[T any] func(ctx context.Context, query string) (T, error)

// State is a snapshot of a controller.
type State[T any] struct {
	Query   string
	Results T
	Loading bool
	Error   string // empty when there is no error
	Cycle   uint64 // generation of the cycle that produced this state
}

// Options configures a [Controller].
type Options struct {
	// MinQueryLength is the rune count below which no fetch is issued. Zero means [DefaultMinQueryLength].
	MinQueryLength int
	// Describe turns a fetch error into the message stored in [State.Error].
	Describe func(error) string
	Logger   *log.Logger
	// Name labels log lines.
	Name string
}

// Controller runs at most one live fetch cycle for the most recently observed query.
type Controller[T any] struct {
	fetch    FetchFunc[T]
	base     context.Context
	minLen   int
	describe func(error) string
	logger   *log.Logger

	mu         sync.Mutex
	state      State[T]
	generation uint64
	cancel     context.CancelFunc
	closed     bool

	updates chan State[T]
	wg      sync.WaitGroup
}

// New creates a controller. Cycles derive their context from ctx, so cancelling ctx cancels any in-flight fetch.
func New[T any](ctx context.Context, fn FetchFunc[T], opts Options) *Controller[T] {
	if opts.MinQueryLength <= 0 {
		opts.MinQueryLength = DefaultMinQueryLength
	}
	if opts.Describe == nil {
		opts.Describe = func(error) string { return GenericErrorMessage }
	}
	if opts.Logger == nil {
		opts.Logger = shared.NopLogger()
	}
	if opts.Name == "" {
		opts.Name = "fetch"
	}

	return &Controller[T]{
		fetch:    fn,
		base:     ctx,
		minLen:   opts.MinQueryLength,
		describe: opts.Describe,
		logger:   shared.WithLogger(opts.Logger, "controller", opts.Name),
		updates:  make(chan State[T], 1),
	}
}

// Observe starts a new cycle for query, cancelling the previous one. It never blocks on the network.
//
// After [Controller.Close] it does nothing.
func (c *Controller[T]) Observe(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.cancelLocked()
	c.generation++
	gen := c.generation

	if utf8.RuneCountInString(query) < c.minLen {
		var zero T
		c.state = State[T]{Query: query, Results: zero, Cycle: gen}
		c.publishLocked()
		return
	}

	ctx, cancel := context.WithCancel(c.base)
	c.cancel = cancel

	c.state.Query = query
	c.state.Loading = true
	c.state.Error = ""
	c.state.Cycle = gen
	c.publishLocked()

	c.wg.Add(1)
	go c.run(ctx, gen, shared.GenerateID(), query)
}

func (c *Controller[T]) run(ctx context.Context, gen uint64, cycleID, query string) {
	defer c.wg.Done()

	logger := c.logger.With("cycle", cycleID, "query", query)
	logger.Debug("fetch started")

	results, err := c.fetch(ctx, query)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || gen != c.generation {
		logger.Debug("discarding superseded response", "error", err)
		return
	}

	c.cancelLocked()
	c.state.Loading = false

	switch {
	case err == nil:
		c.state.Results = results
		c.state.Error = ""
		logger.Debug("fetch applied")
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		// Only reachable when the base context was cancelled: the consumer is tearing down.
		logger.Debug("fetch cancelled")
	default:
		c.state.Error = c.describe(err)
		logger.Warn("fetch failed", "error", err)
	}

	c.publishLocked()
}

// State returns the current snapshot.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Updates delivers the newest state after every change. It is closed by [Controller.Close].
func (c *Controller[T]) Updates() <-chan State[T] {
	return c.updates
}

// Await blocks until the current cycle settles (is no longer loading) and returns its state.
func (c *Controller[T]) Await(ctx context.Context) (State[T], error) {
	for {
		if s := c.State(); !s.Loading {
			return s, nil
		}
		select {
		case <-ctx.Done():
			return c.State(), ctx.Err()
		case _, ok := <-c.updates:
			if !ok {
				return c.State(), nil
			}
		}
	}
}

// Close cancels the in-flight cycle, waits for its goroutine and closes [Controller.Updates]. Later calls do nothing.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cancelLocked()
	c.mu.Unlock()

	c.wg.Wait()
	close(c.updates)
}

func (c *Controller[T]) cancelLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// publishLocked replaces any unread snapshot with the current state.
func (c *Controller[T]) publishLocked() {
	s := c.state
	select {
	case c.updates <- s:
		return
	default:
	}
	select {
	case <-c.updates:
	default:
	}
	select {
	case c.updates <- s:
	default:
	}
}
