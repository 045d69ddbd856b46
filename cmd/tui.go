package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/popcorn/internal/shared"
	"github.com/desertthunder/popcorn/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive movie browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if !r.isTerminal(os.Stdin.Fd()) {
		return fmt.Errorf("%w: tui needs an interactive terminal", shared.ErrServiceUnavailable)
	}
	if r.movies == nil {
		return fmt.Errorf("%w: movie service not initialized", shared.ErrServiceUnavailable)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, r.logger.GetLevel())
	r.SetLogger(fileLogger)

	cell, err := r.watchedCell(ctx, cmd)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, r.movies, cell, r.logger)
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	if err := model.Err(); err != nil {
		r.logger.Warn("tui exited after an error", "error", err)
	}
	return nil
}
