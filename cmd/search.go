package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/desertthunder/popcorn/internal/fetch"
	"github.com/desertthunder/popcorn/internal/formatter"
	"github.com/desertthunder/popcorn/internal/models"
	"github.com/desertthunder/popcorn/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search runs a single query through a search controller and prints the results.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}
	if utf8.RuneCountInString(query) < fetch.DefaultMinQueryLength {
		return fmt.Errorf("%w: query must be at least %d characters", shared.ErrInvalidArgument, fetch.DefaultMinQueryLength)
	}

	controller := fetch.NewMovieSearch(ctx, r.movies, r.logger)
	defer controller.Close()

	controller.Observe(query)
	s, err := controller.Await(ctx)
	if err != nil {
		return err
	}
	if s.Error != "" {
		return errors.New(s.Error)
	}

	r.logger.Debug("search complete", "query", query, "results", len(s.Results))

	switch {
	case cmd.Bool("json"):
		return r.writeJSON(s.Results, cmd.Bool("pretty"))
	case r.tables:
		return r.writePlain("%s\n", formatter.SearchTable(s.Results))
	default:
		for _, result := range s.Results {
			r.writePlain("%s\t%s\t%s\n", result.ID, result.Title, result.Year)
		}
		return nil
	}
}

// Show fetches the full record of a title and prints it.
func (r *Runner) Show(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}

	detail, err := r.fetchDetail(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(detail, cmd.Bool("pretty")); err != nil {
			return err
		}
	} else {
		r.writeDetail(detail)
	}

	if cmd.Bool("open") {
		url := shared.IMDbURL(detail.ID)
		if err := r.openURL(url); err != nil {
			return err
		}
		r.logger.Info("opened browser", "url", url)
	}
	return nil
}

// fetchDetail loads one title through a detail controller.
func (r *Runner) fetchDetail(ctx context.Context, id string) (*models.MovieDetail, error) {
	controller := fetch.NewMovieDetail(ctx, r.movies, r.logger)
	defer controller.Close()

	controller.Observe(id)
	s, err := controller.Await(ctx)
	if err != nil {
		return nil, err
	}
	if s.Error != "" {
		return nil, errors.New(s.Error)
	}
	if s.Results == nil {
		return nil, errors.New(fetch.NotFoundMessage)
	}
	return s.Results, nil
}

func (r *Runner) writeDetail(d *models.MovieDetail) {
	r.writePlainHeader(fmt.Sprintf("%s (%s)", d.Title, d.Year))
	r.writePlain("ID:        %s\n", d.ID)
	r.writePlain("Released:  %s\n", d.Released)
	r.writePlain("Runtime:   %s\n", d.Runtime)
	r.writePlain("Genre:     %s\n", d.Genre)
	r.writePlain("IMDb:      %s\n", d.IMDbRating)
	r.writePlain("Director:  %s\n", d.Director)
	r.writePlain("Starring:  %s\n", d.Actors)
	if plot := strings.TrimSpace(d.Plot); plot != "" {
		r.writePlainln("%s", plot)
	}
}
