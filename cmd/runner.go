package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/popcorn/internal/models"
	"github.com/desertthunder/popcorn/internal/repositories"
	"github.com/desertthunder/popcorn/internal/services"
	"github.com/desertthunder/popcorn/internal/shared"
	"github.com/desertthunder/popcorn/internal/state"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Dependencies left nil in [RunnerOpts] are built from the resolved config in [Runner.Before].
type Runner struct {
	config     *shared.Config
	movies     services.MovieService
	ownsMovies bool
	store      state.Store
	db         *sql.DB
	lock       *shared.StoreLock
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	tables     bool
	openURL    func(url string) error
	isTerminal func(fd uintptr) bool
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Movies     services.MovieService
	Store      state.Store
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		movies:     opts.Movies,
		store:      opts.Store,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		tables:     writesToTerminal(opts.Output),
		openURL:    shared.OpenBrowser,
		isTerminal: func(fd uintptr) bool { return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) },
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, searchCommand, showCommand, watchedCommand, storeCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before resolves the config and builds the movie service before any command runs.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if r.config == nil {
		config, err := shared.ResolveConfig(cmd.String("config"))
		if err != nil {
			return ctx, err
		}
		r.config = config
	}

	level := shared.ParseLogLevel(r.config.Log.Level)
	if cmd.Bool("debug") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)

	if r.movies == nil {
		r.movies = r.newMovieService()
		r.ownsMovies = true
	}

	return ctx, nil
}

func (r *Runner) newMovieService() services.MovieService {
	client := *r.httpClient
	client.Timeout = r.config.OMDb.Timeout()
	return services.NewOMDbService(services.OMDbOpts{
		APIKey:            r.config.OMDb.APIKey,
		BaseURL:           r.config.OMDb.BaseURL,
		HTTPClient:        &client,
		RequestsPerSecond: r.config.OMDb.RequestsPerSecond,
		Logger:            r.logger,
	})
}

// After releases the store and its lock.
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	var errs []error
	if r.db != nil {
		errs = append(errs, r.db.Close())
		r.db = nil
		r.store = nil
	}
	if r.lock != nil {
		errs = append(errs, r.lock.Release())
		r.lock = nil
	}
	return errors.Join(errs...)
}

// SetLogger replaces the runner's logger. A movie service built by the runner is rebuilt to log through l.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	if r.ownsMovies {
		r.movies = r.newMovieService()
	}
}

// openStore returns the configured store, opening the SQLite database under an exclusive lock on first use.
//
// With --ephemeral the store lives in memory and nothing is written to disk.
func (r *Runner) openStore(cmd *cli.Command) (state.Store, error) {
	if r.store != nil {
		return r.store, nil
	}
	if cmd.Bool("ephemeral") {
		r.logger.Debug("using in-memory store")
		r.store = state.NewMemoryStore()
		return r.store, nil
	}

	lock, err := shared.AcquireLock(r.config.Database.LockPath())
	if err != nil {
		return nil, err
	}

	db, err := shared.OpenStore(r.config.Database)
	if err != nil {
		lock.Release()
		return nil, err
	}

	r.lock = lock
	r.db = db
	r.store = repositories.NewLocalStorageRepository(db)
	r.logger.Debug("opened store", "path", r.config.Database.Path)
	return r.store, nil
}

// watchedCell loads the watched list from the store.
func (r *Runner) watchedCell(ctx context.Context, cmd *cli.Command) (*state.Cell[models.WatchedList], error) {
	store, err := r.openStore(cmd)
	if err != nil {
		return nil, err
	}

	return state.New(ctx, store, r.config.Storage.WatchedKey, models.WatchedList{},
		state.WithValidator(models.WatchedList.Validate),
		state.WithLogger[models.WatchedList](r.logger),
	), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

// writesToTerminal reports whether w is an interactive terminal, in which case tables are rendered.
func writesToTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
