package tasks

import (
	"fmt"

	"github.com/desertthunder/popcorn/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchDetails Phase = iota
	MergeResults
)

func (p Phase) String() string {
	switch p {
	case FetchDetails:
		return "fetch_details"
	case MergeResults:
		return "merge_results"
	default:
		return ""
	}
}

func fetchedDetailUpdate(step, total int, r EntryRefresh) ProgressUpdate {
	msg := fmt.Sprintf("Refreshed %s", r.Title)
	if r.Error != nil {
		msg = fmt.Sprintf("Failed to refresh %s: %v", r.ID, r.Error)
	}
	return ProgressUpdate{Phase: FetchDetails, Step: step, Total: total, Message: msg, Data: r}
}

func mergeUpdate(result *RefreshResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MergeResults,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("%d changed, %d failed of %d", result.Changed, result.Failed, result.Total),
	}
}

func describeChange(old models.WatchedEntry, fresh models.WatchedEntry) string {
	switch {
	case old.ExternalRating != fresh.ExternalRating:
		return fmt.Sprintf("IMDb rating %.1f → %.1f", old.ExternalRating, fresh.ExternalRating)
	case old.RuntimeMinutes != fresh.RuntimeMinutes:
		return fmt.Sprintf("runtime %d → %d min", old.RuntimeMinutes, fresh.RuntimeMinutes)
	case old.Title != fresh.Title:
		return fmt.Sprintf("title %q → %q", old.Title, fresh.Title)
	default:
		return ""
	}
}
