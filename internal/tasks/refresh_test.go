package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/popcorn/internal/models"
	"github.com/desertthunder/popcorn/internal/services"
	"github.com/desertthunder/popcorn/internal/shared"
	tu "github.com/desertthunder/popcorn/internal/testing"
)

func watchedFixture() models.WatchedList {
	return models.WatchedList{
		{ID: "tt1375666", Title: "Inception", Year: "2010", ExternalRating: 8.7, RuntimeMinutes: 148, UserRating: 9, RatingRevisionCount: 2},
		{ID: "tt0816692", Title: "Interstellar", Year: "2014", ExternalRating: 8.6, RuntimeMinutes: 169, UserRating: 7},
		{ID: "tt0000001", Title: "Gone", Year: "1900", ExternalRating: 5, UserRating: 3},
	}
}

func fixtureService() *tu.MockMovieService {
	details := map[string]*models.MovieDetail{
		"tt1375666": {ID: "tt1375666", Title: "Inception", Year: "2010", IMDbRating: "8.8", Runtime: "148 min"},
		"tt0816692": {ID: "tt0816692", Title: "Interstellar", Year: "2014", IMDbRating: "8.6", Runtime: "169 min"},
	}
	return &tu.MockMovieService{
		MovieFunc: func(ctx context.Context, id string) (*models.MovieDetail, error) {
			if d, ok := details[id]; ok {
				return d, nil
			}
			return nil, services.ErrMovieNotFound
		},
	}
}

func TestRefreshEngine_Refresh(t *testing.T) {
	t.Run("records changes and failures in list order", func(t *testing.T) {
		engine := NewRefreshEngine(fixtureService(), nil)
		prog := make(chan ProgressUpdate, 10)

		result, err := engine.Refresh(context.Background(), prog, watchedFixture(), RefreshOpts{NumWorkers: 2})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.Total != 3 || result.Changed != 1 || result.Failed != 1 {
			t.Errorf("unexpected counts %+v", result)
		}
		if result.Results[0].ID != "tt1375666" || !result.Results[0].Changed {
			t.Errorf("expected first entry changed, got %+v", result.Results[0])
		}
		if result.Results[0].Change != "IMDb rating 8.7 → 8.8" {
			t.Errorf("unexpected change %q", result.Results[0].Change)
		}
		if result.Results[1].Changed {
			t.Errorf("expected second entry unchanged, got %+v", result.Results[1])
		}
		if !errors.Is(result.Results[2].Error, services.ErrMovieNotFound) {
			t.Errorf("expected not found error, got %v", result.Results[2].Error)
		}

		close(prog)
		var updates []ProgressUpdate
		for u := range prog {
			updates = append(updates, u)
		}
		if len(updates) != 4 {
			t.Fatalf("expected 4 progress updates, got %d", len(updates))
		}
		if last := updates[len(updates)-1]; last.Phase != MergeResults {
			t.Errorf("expected merge update last, got %v", last.Phase)
		}
	})

	t.Run("nil service", func(t *testing.T) {
		engine := NewRefreshEngine(nil, nil)
		_, err := engine.Refresh(context.Background(), nil, watchedFixture(), RefreshOpts{})
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("empty list", func(t *testing.T) {
		engine := NewRefreshEngine(fixtureService(), nil)
		result, err := engine.Refresh(context.Background(), nil, nil, RefreshOpts{})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Total != 0 || len(result.Results) != 0 {
			t.Errorf("unexpected result %+v", result)
		}
	})

	t.Run("worker pool limits", func(t *testing.T) {
		var active, peak int32
		svc := &tu.MockMovieService{
			MovieFunc: func(ctx context.Context, id string) (*models.MovieDetail, error) {
				n := atomic.AddInt32(&active, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&active, -1)
				return &models.MovieDetail{ID: id, Title: id, IMDbRating: "7.0"}, nil
			},
		}

		list := models.WatchedList{}
		for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
			list = append(list, models.WatchedEntry{ID: id, Title: id, UserRating: 5})
		}

		engine := NewRefreshEngine(svc, nil)
		if _, err := engine.Refresh(context.Background(), nil, list, RefreshOpts{NumWorkers: 50}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if peak > maxWorkers {
			t.Errorf("expected at most %d concurrent requests, got %d", maxWorkers, peak)
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		engine := NewRefreshEngine(fixtureService(), nil)
		_, err := engine.Refresh(ctx, nil, watchedFixture(), RefreshOpts{})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("progress never blocks", func(t *testing.T) {
		engine := NewRefreshEngine(fixtureService(), nil)
		prog := make(chan ProgressUpdate)

		done := make(chan struct{})
		go func() {
			engine.Refresh(context.Background(), prog, watchedFixture(), RefreshOpts{})
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("refresh blocked on an unread progress channel")
		}
	})
}

func TestRefreshResult_Apply(t *testing.T) {
	engine := NewRefreshEngine(fixtureService(), nil)
	result, err := engine.Refresh(context.Background(), nil, watchedFixture(), RefreshOpts{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	t.Run("keeps user fields", func(t *testing.T) {
		got := result.Apply(watchedFixture())
		if got[0].ExternalRating != 8.8 {
			t.Errorf("expected refreshed rating, got %v", got[0].ExternalRating)
		}
		if got[0].UserRating != 9 || got[0].RatingRevisionCount != 2 {
			t.Errorf("expected user fields kept, got %+v", got[0])
		}
		if got[2].ExternalRating != 5 {
			t.Errorf("expected failed entry untouched, got %+v", got[2])
		}
	})

	t.Run("does not re-add removed entries", func(t *testing.T) {
		current := watchedFixture().Remove("tt1375666")
		got := result.Apply(current)
		if len(got) != 2 || got.Contains("tt1375666") {
			t.Errorf("expected removed entry to stay removed, got %+v", got)
		}
	})

	t.Run("does not alias the input", func(t *testing.T) {
		in := watchedFixture()
		result.Apply(in)
		if in[0].ExternalRating != 8.7 {
			t.Error("expected input unchanged")
		}
	})
}

func TestPhaseString(t *testing.T) {
	if FetchDetails.String() != "fetch_details" || MergeResults.String() != "merge_results" {
		t.Error("unexpected phase names")
	}
	if Phase(99).String() != "" {
		t.Error("expected empty name for unknown phase")
	}
}
