package models

import (
	"fmt"
	"slices"
)

const (
	MinUserRating = 1
	MaxUserRating = 10
)

// WatchedEntry is a movie the user watched together with their rating.
type WatchedEntry struct {
	ID                  string  `json:"imdbID"`
	Title               string  `json:"title"`
	Year                string  `json:"year"`
	PosterURL           string  `json:"poster"`
	ExternalRating      float64 `json:"imdbRating"`
	RuntimeMinutes      int     `json:"runtime"`
	UserRating          int     `json:"userRating"`
	RatingRevisionCount int     `json:"countRatingDecision"`
}

// NewWatchedEntry builds an entry from a fetched detail record.
//
// revisions counts how many times the user picked a new rating before adding the movie, the first pick included.
// A runtime OMDb does not report is stored as 0.
func NewWatchedEntry(detail MovieDetail, userRating, revisions int) (WatchedEntry, error) {
	if detail.ID == "" {
		return WatchedEntry{}, fmt.Errorf("movie ID is empty")
	}
	if err := ValidateUserRating(userRating); err != nil {
		return WatchedEntry{}, err
	}
	runtime, _ := detail.RuntimeMinutes()

	return WatchedEntry{
		ID:                  detail.ID,
		Title:               detail.Title,
		Year:                detail.Year,
		PosterURL:           detail.PosterURL,
		ExternalRating:      detail.Rating(),
		RuntimeMinutes:      runtime,
		UserRating:          userRating,
		RatingRevisionCount: revisions,
	}, nil
}

// ValidateUserRating checks r is within [MinUserRating, MaxUserRating].
func ValidateUserRating(r int) error {
	if r < MinUserRating || r > MaxUserRating {
		return fmt.Errorf("user rating must be between %d and %d, got %d", MinUserRating, MaxUserRating, r)
	}
	return nil
}

// WatchedList is the user's watched collection in insertion order, unique by ID.
//
// Methods never modify the receiver; mutations return a new slice so they can be used as state cell updaters.
type WatchedList []WatchedEntry

// Add returns the list with entry appended, or the list unchanged if the ID is already present.
func (w WatchedList) Add(entry WatchedEntry) WatchedList {
	if w.Contains(entry.ID) {
		return w
	}
	out := make(WatchedList, 0, len(w)+1)
	out = append(out, w...)
	return append(out, entry)
}

// Remove returns the list without the entry for id.
func (w WatchedList) Remove(id string) WatchedList {
	out := make(WatchedList, 0, len(w))
	for _, e := range w {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

// Contains reports whether id is in the list.
func (w WatchedList) Contains(id string) bool {
	_, ok := w.Find(id)
	return ok
}

// Find returns the entry for id.
func (w WatchedList) Find(id string) (WatchedEntry, bool) {
	i := slices.IndexFunc(w, func(e WatchedEntry) bool { return e.ID == id })
	if i < 0 {
		return WatchedEntry{}, false
	}
	return w[i], true
}

// Validate reports duplicate IDs, empty IDs and out of range ratings.
//
// Used when loading the list from storage so a corrupted value falls back to an empty list.
func (w WatchedList) Validate() error {
	seen := make(map[string]struct{}, len(w))
	for i, e := range w {
		if e.ID == "" {
			return fmt.Errorf("entry %d has an empty ID", i)
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("duplicate entry for %s", e.ID)
		}
		seen[e.ID] = struct{}{}
		if err := ValidateUserRating(e.UserRating); err != nil {
			return fmt.Errorf("entry %s: %w", e.ID, err)
		}
	}
	return nil
}

// WatchedSummary aggregates a [WatchedList].
type WatchedSummary struct {
	Count             int     `json:"count"`
	AvgExternalRating float64 `json:"avgImdbRating"`
	AvgUserRating     float64 `json:"avgUserRating"`
	AvgRuntime        float64 `json:"avgRuntime"`
}

// Summary computes counts and averages. Averages of an empty list are 0.
func (w WatchedList) Summary() WatchedSummary {
	s := WatchedSummary{Count: len(w)}
	if len(w) == 0 {
		return s
	}

	var external, user, runtime float64
	for _, e := range w {
		external += e.ExternalRating
		user += float64(e.UserRating)
		runtime += float64(e.RuntimeMinutes)
	}

	n := float64(len(w))
	s.AvgExternalRating = external / n
	s.AvgUserRating = user / n
	s.AvgRuntime = runtime / n
	return s
}
