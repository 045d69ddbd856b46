// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// searchCommand runs a one-shot title search
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "search",
		Aliases: []string{"s"},
		Usage:   "Search OMDb for movies by title",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Search,
	}
}

// showCommand prints the details of a single title
func showCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Show movie details by IMDb ID",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "id",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the IMDb page in the browser",
			},
		},
		Action: r.Show,
	}
}

// watchedCommand manages the persisted watched list
func watchedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "watched",
		Aliases: []string{"w"},
		Usage:   "Manage the list of movies you watched",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List watched movies",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.WatchedList,
			},
			{
				Name:  "add",
				Usage: "Fetch a movie and add it with your rating",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "rating",
						Aliases:  []string{"r"},
						Usage:    "Your rating from 1 to 10",
						Required: true,
					},
				},
				Action: r.WatchedAdd,
			},
			{
				Name:    "remove",
				Aliases: []string{"rm"},
				Usage:   "Remove a movie from the watched list",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.WatchedRemove,
			},
			{
				Name:  "summary",
				Usage: "Show counts and averages of the watched list",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.WatchedSummary,
			},
			{
				Name:  "refresh",
				Usage: "Re-fetch IMDb ratings and runtimes of watched movies",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent requests (max 10)",
						Value: 4,
					},
				},
				Action: r.WatchedRefresh,
			},
			{
				Name:  "export",
				Usage: "Export the watched list to CSV, Markdown or text",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (csv, md, txt)",
						Value:   "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
				},
				Action: r.WatchedExport,
			},
		},
	}
}

// storeCommand inspects the local key-value store
func storeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "store",
		Usage: "Inspect the local store",
		Commands: []*cli.Command{
			{
				Name:   "keys",
				Usage:  "List stored keys",
				Action: r.StoreKeys,
			},
			{
				Name:  "delete",
				Usage: "Delete a stored key",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "key",
					},
				},
				Action: r.StoreDelete,
			},
		},
	}
}

// tuiCommand launches the interactive browser
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Launch the interactive movie browser",
		Action: r.TUI,
	}
}
