package fetch

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/popcorn/internal/models"
	"github.com/desertthunder/popcorn/internal/services"
)

// NotFoundMessage is shown when OMDb has no match for the query.
const NotFoundMessage = "Movie not found."

// DescribeMovieError maps OMDb errors to user facing messages.
func DescribeMovieError(err error) string {
	if errors.Is(err, services.ErrMovieNotFound) {
		return NotFoundMessage
	}
	return GenericErrorMessage
}

// NewMovieSearch returns a controller searching titles through svc.
func NewMovieSearch(ctx context.Context, svc services.MovieService, logger *log.Logger) *Controller[[]models.SearchResult] {
	return New[[]models.SearchResult](ctx, svc.Search, Options{
		MinQueryLength: DefaultMinQueryLength,
		Describe:       DescribeMovieError,
		Logger:         logger,
		Name:           "search",
	})
}

// NewMovieDetail returns a controller fetching the full record of the observed title ID.
//
// Selecting another title cancels the pending detail request.
func NewMovieDetail(ctx context.Context, svc services.MovieService, logger *log.Logger) *Controller[*models.MovieDetail] {
	return New[*models.MovieDetail](ctx, svc.Movie, Options{
		MinQueryLength: 1,
		Describe:       DescribeMovieError,
		Logger:         logger,
		Name:           "detail",
	})
}
