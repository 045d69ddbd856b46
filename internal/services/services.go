// package services defines interface MovieService for querying movie databases over HTTP
package services

import (
	"context"

	"github.com/desertthunder/popcorn/internal/models"
)

// MovieService defines the interface for movie database providers.
type MovieService interface {
	// Search returns titles matching query in provider order.
	Search(ctx context.Context, query string) ([]models.SearchResult, error)

	// Movie returns the full record for a single title ID.
	Movie(ctx context.Context, id string) (*models.MovieDetail, error)

	// Name returns the name of the service (e.g., "OMDb")
	Name() string
}
