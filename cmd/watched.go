package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/popcorn/internal/formatter"
	"github.com/desertthunder/popcorn/internal/models"
	"github.com/desertthunder/popcorn/internal/shared"
	"github.com/desertthunder/popcorn/internal/tasks"
	"github.com/urfave/cli/v3"
)

// WatchedList prints the watched list.
func (r *Runner) WatchedList(ctx context.Context, cmd *cli.Command) error {
	cell, err := r.watchedCell(ctx, cmd)
	if err != nil {
		return err
	}
	list := cell.Get()

	switch {
	case cmd.Bool("json"):
		return r.writeJSON(list, cmd.Bool("pretty"))
	case r.tables:
		return r.writePlain("%s\n", formatter.WatchedTable(list))
	default:
		for _, e := range list {
			r.writePlain("%s\t%s\t%s\t%.1f\t%d\t%s\n",
				e.ID, e.Title, e.Year, e.ExternalRating, e.UserRating, formatter.FormatRuntime(e.RuntimeMinutes))
		}
		return nil
	}
}

// WatchedAdd fetches a title and appends it to the watched list with the given rating.
func (r *Runner) WatchedAdd(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}
	rating := cmd.Int("rating")
	if err := models.ValidateUserRating(rating); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	cell, err := r.watchedCell(ctx, cmd)
	if err != nil {
		return err
	}
	if cell.Get().Contains(id) {
		return fmt.Errorf("%w: %s is already in the watched list", shared.ErrInvalidArgument, id)
	}

	detail, err := r.fetchDetail(ctx, id)
	if err != nil {
		return err
	}

	entry, err := models.NewWatchedEntry(*detail, rating, 1)
	if err != nil {
		return err
	}

	if _, err := cell.Update(func(old models.WatchedList) models.WatchedList { return old.Add(entry) }); err != nil {
		return err
	}

	r.logger.Info("added to watched list", "id", entry.ID, "rating", rating)
	return r.writePlain("✓ Added %s (%s) rated %d/10\n", entry.Title, entry.Year, rating)
}

// WatchedRemove deletes a title from the watched list.
func (r *Runner) WatchedRemove(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}

	cell, err := r.watchedCell(ctx, cmd)
	if err != nil {
		return err
	}
	if !cell.Get().Contains(id) {
		return fmt.Errorf("%w: %s is not in the watched list", shared.ErrInvalidArgument, id)
	}

	if _, err := cell.Update(func(old models.WatchedList) models.WatchedList { return old.Remove(id) }); err != nil {
		return err
	}

	r.logger.Info("removed from watched list", "id", id)
	return r.writePlain("✓ Removed %s\n", id)
}

// WatchedSummary prints counts and averages of the watched list.
func (r *Runner) WatchedSummary(ctx context.Context, cmd *cli.Command) error {
	cell, err := r.watchedCell(ctx, cmd)
	if err != nil {
		return err
	}
	s := cell.Get().Summary()

	if cmd.Bool("json") {
		return r.writeJSON(s, true)
	}

	r.writePlainHeader("Movies you watched")
	r.writePlain("Movies:              %d\n", s.Count)
	r.writePlain("Average IMDb rating: %.2f\n", s.AvgExternalRating)
	r.writePlain("Average your rating: %.2f\n", s.AvgUserRating)
	r.writePlain("Average runtime:     %.2f min\n", s.AvgRuntime)
	return nil
}

// WatchedExport writes the watched list to a file.
func (r *Runner) WatchedExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	cell, err := r.watchedCell(ctx, cmd)
	if err != nil {
		return err
	}

	path, err := formatter.WriteExport(cell.Get(), format, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("exported watched list", "path", path, "format", format)
	return r.writePlain("✓ Exported %d movies to %s\n", len(cell.Get()), path)
}

// WatchedRefresh re-fetches every watched movie and stores updated IMDb ratings and runtimes.
func (r *Runner) WatchedRefresh(ctx context.Context, cmd *cli.Command) error {
	cell, err := r.watchedCell(ctx, cmd)
	if err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()

	engine := tasks.NewRefreshEngine(r.movies, r.logger)
	result, err := engine.Refresh(ctx, progress, cell.Get(), tasks.RefreshOpts{NumWorkers: cmd.Int("workers")})
	close(progress)
	<-printed
	if err != nil {
		return err
	}

	if _, err := cell.Update(result.Apply); err != nil {
		return err
	}

	for _, res := range result.Results {
		switch {
		case res.Error != nil:
			r.writePlain("✗ %s: %v\n", res.ID, res.Error)
		case res.Changed:
			r.writePlain("✓ %s: %s\n", res.Title, res.Change)
		}
	}
	return r.writePlain("Refreshed %d movies: %d changed, %d failed\n", result.Total, result.Changed, result.Failed)
}
