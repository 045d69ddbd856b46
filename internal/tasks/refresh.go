package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/popcorn/internal/models"
	"github.com/desertthunder/popcorn/internal/services"
	"github.com/desertthunder/popcorn/internal/shared"
)

const (
	defaultWorkers = 4
	maxWorkers     = 10
)

// RefreshOpts configures [RefreshEngine.Refresh].
type RefreshOpts struct {
	NumWorkers int // Concurrent detail requests (default: 4, max: 10)
}

// EntryRefresh is the outcome for one watched entry.
type EntryRefresh struct {
	ID      string
	Title   string
	Entry   models.WatchedEntry // refreshed entry, zero on error
	Change  string              // empty when nothing changed
	Error   error
	Changed bool
}

// RefreshResult summarizes a refresh run.
type RefreshResult struct {
	Total   int
	Changed int
	Failed  int
	Results []EntryRefresh // in watched list order
}

// Apply returns old with every successfully refreshed entry replaced. Entries missing from old are not re-added.
func (r *RefreshResult) Apply(old models.WatchedList) models.WatchedList {
	fresh := make(map[string]models.WatchedEntry, len(r.Results))
	for _, res := range r.Results {
		if res.Error == nil {
			fresh[res.ID] = res.Entry
		}
	}

	out := make(models.WatchedList, len(old))
	for i, e := range old {
		if f, ok := fresh[e.ID]; ok {
			f.UserRating = e.UserRating
			f.RatingRevisionCount = e.RatingRevisionCount
			e = f
		}
		out[i] = e
	}
	return out
}

// RefreshEngine re-fetches watched movies from a [services.MovieService].
type RefreshEngine struct {
	movies services.MovieService
	logger *log.Logger
}

// NewRefreshEngine creates a new [RefreshEngine].
func NewRefreshEngine(movies services.MovieService, logger *log.Logger) *RefreshEngine {
	if logger == nil {
		logger = shared.NopLogger()
	}
	return &RefreshEngine{movies: movies, logger: shared.WithLogger(logger, "task", "refresh")}
}

type refreshJob struct {
	index int
	entry models.WatchedEntry
}

// Refresh fetches the current OMDb record of every entry in list using a worker pool.
//
// Individual failures are recorded in the result; the error is only set when the service is missing or ctx is cancelled.
func (e *RefreshEngine) Refresh(ctx context.Context, prog chan<- ProgressUpdate, list models.WatchedList, opts RefreshOpts) (*RefreshResult, error) {
	if e.movies == nil {
		return nil, fmt.Errorf("%w: movie service not initialized", shared.ErrServiceUnavailable)
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = defaultWorkers
	}
	if opts.NumWorkers > maxWorkers {
		opts.NumWorkers = maxWorkers
	}

	result := &RefreshResult{Total: len(list), Results: make([]EntryRefresh, len(list))}

	jobs := make(chan refreshJob, len(list))
	done := make(chan refreshJob, len(list))
	for i, entry := range list {
		jobs <- refreshJob{index: i, entry: entry}
	}
	close(jobs)

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.worker(ctx, &wg, jobs, done, result)
	}

	go func() {
		wg.Wait()
		close(done)
	}()

	completed := 0
	for job := range done {
		completed++
		r := result.Results[job.index]
		switch {
		case r.Error != nil:
			result.Failed++
			e.logger.Warn("refresh failed", "id", r.ID, "error", r.Error)
		case r.Changed:
			result.Changed++
			e.logger.Info("entry changed", "id", r.ID, "change", r.Change)
		}
		e.sendProgress(prog, fetchedDetailUpdate(completed, len(list), r))
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	e.sendProgress(prog, mergeUpdate(result))
	return result, nil
}

// worker fetches details for jobs until the channel drains or ctx is cancelled.
//
// Each job writes only its own slot of result.Results.
func (e *RefreshEngine) worker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan refreshJob, done chan<- refreshJob, result *RefreshResult) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		result.Results[job.index] = e.refreshEntry(ctx, job.entry)
		done <- job
	}
}

func (e *RefreshEngine) refreshEntry(ctx context.Context, old models.WatchedEntry) EntryRefresh {
	r := EntryRefresh{ID: old.ID, Title: old.Title}

	detail, err := e.movies.Movie(ctx, old.ID)
	if err != nil {
		r.Error = err
		return r
	}

	fresh, err := models.NewWatchedEntry(*detail, old.UserRating, old.RatingRevisionCount)
	if err != nil {
		r.Error = err
		return r
	}

	r.Entry = fresh
	r.Title = fresh.Title
	r.Change = describeChange(old, fresh)
	r.Changed = r.Change != ""
	return r
}

// sendProgress sends a non-blocking progress update.
func (e *RefreshEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
