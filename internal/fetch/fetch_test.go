package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/popcorn/internal/models"
	"github.com/desertthunder/popcorn/internal/services"
	tu "github.com/desertthunder/popcorn/internal/testing"
)

// gatedFetcher returns "<query>-result" once the gate for that query is released, ignoring cancellation.
type gatedFetcher struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
	ctxs  map[string]context.Context
	calls []string
}

func newGatedFetcher(queries ...string) *gatedFetcher {
	g := &gatedFetcher{gates: map[string]chan struct{}{}, ctxs: map[string]context.Context{}}
	for _, q := range queries {
		g.gates[q] = make(chan struct{})
	}
	return g
}

func (g *gatedFetcher) fetch(ctx context.Context, query string) ([]string, error) {
	g.mu.Lock()
	g.calls = append(g.calls, query)
	g.ctxs[query] = ctx
	gate := g.gates[query]
	g.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return []string{query + "-result"}, nil
}

func (g *gatedFetcher) release(query string) { close(g.gates[query]) }

func (g *gatedFetcher) ctx(t *testing.T, query string) context.Context {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		g.mu.Lock()
		ctx := g.ctxs[query]
		g.mu.Unlock()
		if ctx != nil {
			return ctx
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("fetch for %q never started", query)
	return nil
}

func (g *gatedFetcher) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

func await[T any](t *testing.T, c *Controller[T]) State[T] {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s, err := c.Await(ctx)
	if err != nil {
		t.Fatalf("controller did not settle: %v", err)
	}
	return s
}

func TestController(t *testing.T) {
	t.Run("short queries never fetch", func(t *testing.T) {
		g := newGatedFetcher()
		c := New[[]string](context.Background(), g.fetch, Options{})
		defer c.Close()

		for _, q := range []string{"", "a", "ab", "é!"} {
			c.Observe(q)
			s := c.State()
			if len(s.Results) != 0 || s.Loading || s.Error != "" {
				t.Errorf("Observe(%q) state = %+v, want empty idle state", q, s)
			}
			if s.Query != q {
				t.Errorf("expected query %q, got %q", q, s.Query)
			}
		}

		if n := g.callCount(); n != 0 {
			t.Errorf("expected no fetch calls, got %d", n)
		}
	})

	t.Run("short query clears previous results", func(t *testing.T) {
		g := newGatedFetcher()
		c := New[[]string](context.Background(), g.fetch, Options{})
		defer c.Close()

		c.Observe("alien")
		if s := await(t, c); len(s.Results) != 1 {
			t.Fatalf("expected results for alien, got %+v", s)
		}

		c.Observe("al")
		if s := c.State(); len(s.Results) != 0 || s.Loading {
			t.Errorf("expected cleared state, got %+v", s)
		}
	})

	t.Run("loading is published before the fetch completes", func(t *testing.T) {
		g := newGatedFetcher("matrix")
		c := New[[]string](context.Background(), g.fetch, Options{})
		defer c.Close()

		c.Observe("matrix")

		select {
		case s := <-c.Updates():
			if !s.Loading || s.Error != "" || s.Query != "matrix" {
				t.Errorf("expected loading state for matrix, got %+v", s)
			}
		case <-time.After(time.Second):
			t.Fatal("no update published")
		}

		g.release("matrix")
		s := await(t, c)
		if s.Loading || len(s.Results) != 1 || s.Results[0] != "matrix-result" {
			t.Errorf("unexpected settled state %+v", s)
		}
	})

	t.Run("superseded response arriving late is discarded", func(t *testing.T) {
		g := newGatedFetcher("alien", "aliens")
		c := New[[]string](context.Background(), g.fetch, Options{})
		defer c.Close()

		c.Observe("alien")
		first := g.ctx(t, "alien")
		c.Observe("aliens")

		if first.Err() == nil {
			t.Error("expected the first cycle's context to be cancelled")
		}

		g.release("aliens")
		s := await(t, c)
		if s.Results[0] != "aliens-result" {
			t.Fatalf("expected aliens results, got %+v", s)
		}

		g.release("alien")
		c.wg.Wait()

		s = c.State()
		if s.Query != "aliens" || len(s.Results) != 1 || s.Results[0] != "aliens-result" || s.Loading {
			t.Errorf("stale response overwrote state: %+v", s)
		}
	})

	t.Run("superseded response arriving first is discarded", func(t *testing.T) {
		g := newGatedFetcher("alien", "aliens")
		c := New[[]string](context.Background(), g.fetch, Options{})
		defer c.Close()

		c.Observe("alien")
		g.ctx(t, "alien")
		c.Observe("aliens")

		g.release("alien")
		g.release("aliens")
		c.wg.Wait()

		s := c.State()
		if s.Results[0] != "aliens-result" || s.Loading {
			t.Errorf("expected aliens results, got %+v", s)
		}
	})

	t.Run("not found is reported", func(t *testing.T) {
		fn := func(ctx context.Context, q string) ([]string, error) {
			return nil, fmt.Errorf("%w: %s", services.ErrMovieNotFound, q)
		}
		c := New[[]string](context.Background(), fn, Options{Describe: DescribeMovieError})
		defer c.Close()

		c.Observe("qwertyuiop")
		s := await(t, c)

		if s.Error != "Movie not found." {
			t.Errorf("expected 'Movie not found.', got %q", s.Error)
		}
		if len(s.Results) != 0 || s.Loading {
			t.Errorf("unexpected state %+v", s)
		}
	})

	t.Run("transport failure is reported", func(t *testing.T) {
		fn := func(ctx context.Context, q string) ([]string, error) {
			return nil, errors.New("connection reset by peer")
		}
		c := New[[]string](context.Background(), fn, Options{Describe: DescribeMovieError})
		defer c.Close()

		c.Observe("matrix")
		s := await(t, c)

		if s.Error != "Something went wrong with fetching movies!" {
			t.Errorf("expected generic message, got %q", s.Error)
		}
		if s.Loading {
			t.Error("expected loading to be false")
		}
	})

	t.Run("error keeps previous results", func(t *testing.T) {
		fail := false
		fn := func(ctx context.Context, q string) ([]string, error) {
			if fail {
				return nil, errors.New("boom")
			}
			return []string{q}, nil
		}
		c := New[[]string](context.Background(), fn, Options{})
		defer c.Close()

		c.Observe("heat")
		await(t, c)

		fail = true
		c.Observe("heat2")
		s := await(t, c)
		if s.Error != GenericErrorMessage || len(s.Results) != 1 || s.Results[0] != "heat" {
			t.Errorf("unexpected state %+v", s)
		}
	})

	t.Run("next cycle clears error", func(t *testing.T) {
		calls := 0
		fn := func(ctx context.Context, q string) ([]string, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("boom")
			}
			return []string{q}, nil
		}
		c := New[[]string](context.Background(), fn, Options{})
		defer c.Close()

		c.Observe("heat")
		if s := await(t, c); s.Error == "" {
			t.Fatal("expected first cycle to fail")
		}

		c.Observe("heats")
		if s := await(t, c); s.Error != "" || s.Results[0] != "heats" {
			t.Errorf("unexpected state %+v", s)
		}
	})

	t.Run("cancellation is not an error", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		fn := func(ctx context.Context, q string) ([]string, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		c := New[[]string](ctx, fn, Options{})
		defer c.Close()

		c.Observe("matrix")
		cancel()
		s := await(t, c)

		if s.Error != "" {
			t.Errorf("cancellation surfaced as error %q", s.Error)
		}
		if s.Loading {
			t.Error("expected loading to be false")
		}
	})

	t.Run("close cancels in-flight fetch and closes updates", func(t *testing.T) {
		g := newGatedFetcher()
		fn := func(ctx context.Context, q string) ([]string, error) {
			g.mu.Lock()
			g.ctxs[q] = ctx
			g.mu.Unlock()
			<-ctx.Done()
			return nil, ctx.Err()
		}
		c := New[[]string](context.Background(), fn, Options{})

		c.Observe("matrix")
		inflight := g.ctx(t, "matrix")
		c.Close()

		if inflight.Err() == nil {
			t.Error("expected in-flight context to be cancelled")
		}

		for range c.Updates() {
		}

		c.Observe("matrix reloaded")
		if s := c.State(); s.Query != "matrix" {
			t.Errorf("Observe after Close changed state: %+v", s)
		}

		c.Close()
	})

	t.Run("updates keep only the newest snapshot", func(t *testing.T) {
		c := New[[]string](context.Background(), newGatedFetcher().fetch, Options{})
		defer c.Close()

		c.Observe("a")
		c.Observe("ab")
		c.Observe("x")

		select {
		case s := <-c.Updates():
			if s.Query != "x" {
				t.Errorf("expected newest snapshot for x, got %q", s.Query)
			}
		default:
			t.Fatal("expected a pending update")
		}

		select {
		case s := <-c.Updates():
			t.Errorf("expected no further updates, got %+v", s)
		default:
		}
	})

	t.Run("custom minimum length", func(t *testing.T) {
		g := newGatedFetcher()
		c := New[[]string](context.Background(), g.fetch, Options{MinQueryLength: 1})
		defer c.Close()

		c.Observe("x")
		await(t, c)
		if g.callCount() != 1 {
			t.Errorf("expected one fetch, got %d", g.callCount())
		}
	})
}

func TestDescribeMovieError(t *testing.T) {
	tc := []struct {
		name string
		err  error
		want string
	}{
		{name: "not found", err: services.ErrMovieNotFound, want: "Movie not found."},
		{name: "wrapped not found", err: fmt.Errorf("search: %w", services.ErrMovieNotFound), want: "Movie not found."},
		{name: "other", err: errors.New("dial tcp: timeout"), want: "Something went wrong with fetching movies!"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := DescribeMovieError(tt.err); got != tt.want {
				t.Errorf("DescribeMovieError() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMovieControllers(t *testing.T) {
	t.Run("search change aborts the physical request", func(t *testing.T) {
		rt := tu.NewBlockingRoundTripper()
		svc := services.NewOMDbService(services.OMDbOpts{
			APIKey:     "k",
			BaseURL:    "http://omdb.test/",
			HTTPClient: &http.Client{Transport: rt},
		})

		c := NewMovieSearch(context.Background(), svc, nil)
		defer c.Close()

		c.Observe("inception")
		time.Sleep(10 * time.Millisecond)
		c.Observe("interstellar")

		select {
		case q := <-rt.Aborted:
			if !strings.Contains(q, "s=inception") {
				t.Errorf("expected inception request to be aborted, got %s", q)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("superseded request was not aborted")
		}

		if s := c.State(); s.Query != "interstellar" || !s.Loading || s.Error != "" {
			t.Errorf("unexpected state %+v", s)
		}
	})

	t.Run("detail fetches by ID", func(t *testing.T) {
		svc := &tu.MockMovieService{
			MovieFunc: func(ctx context.Context, id string) (*models.MovieDetail, error) {
				return &models.MovieDetail{ID: id, Title: "Up"}, nil
			},
		}

		c := NewMovieDetail(context.Background(), svc, nil)
		defer c.Close()

		c.Observe("tt1049413")
		s := await(t, c)
		if s.Results == nil || s.Results.ID != "tt1049413" || s.Results.Title != "Up" {
			t.Errorf("unexpected detail state %+v", s)
		}

		c.Observe("")
		if s := c.State(); s.Results != nil {
			t.Errorf("expected deselect to clear detail, got %+v", s.Results)
		}
	})
}
