// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// filterFlags are shared by every command that narrows the track list.
func filterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "title",
			Aliases: []string{"T"},
			Usage:   "Pattern to filter by track title",
		},
		&cli.StringFlag{
			Name:    "artist",
			Aliases: []string{"A"},
			Usage:   "Pattern to filter by track artist",
		},
		&cli.BoolFlag{
			Name:  "i",
			Usage: "Case insensitive matching",
		},
	}
}

// sliceFlags narrow a selection to its first or last N tracks.
func sliceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "first",
			Aliases: []string{"f"},
			Usage:   "Only the first N tracks",
		},
		&cli.IntFlag{
			Name:    "last",
			Aliases: []string{"l"},
			Usage:   "Only the last N tracks",
		},
	}
}

// downloadedFlags gate a selection on local file presence.
func downloadedFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "downloaded",
			Aliases: []string{"D"},
			Usage:   "Only tracks with a local file",
		},
		&cli.BoolFlag{
			Name:  "not-downloaded",
			Usage: "Only tracks without a local file",
		},
	}
}

// fetchFlags apply to commands that run the download engine.
func fetchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "plain",
			Usage: "Log progress instead of the interactive view",
		},
		&cli.BoolFlag{
			Name:    "yes",
			Aliases: []string{"y"},
			Usage:   "Answer yes to every prompt",
		},
	}
}

// syncCommand reconciles the catalog against the local file store and
// downloads whatever is missing.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "sync",
		Aliases: []string{"s"},
		Usage:   "Sync from database to directory",
		Flags: append(append([]cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Override the root directory",
			},
		}, filterFlags()...), fetchFlags()...),
		Action: r.Sync,
	}
}

// addCommand submits new source ids or URLs to the catalog.
func addCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Aliases:   []string{"a"},
		Usage:     "Add source ids or URLs to the database",
		ArgsUsage: "[ids...]",
		Flags: append([]cli.Flag{
			&cli.BoolFlag{
				Name:  "replace-all",
				Usage: "Replace every duplicate without prompting",
			},
			&cli.BoolFlag{
				Name:  "skip-all",
				Usage: "Skip every duplicate without prompting",
			},
		}, fetchFlags()...),
		Action: r.Add,
	}
}

// removeCommand deletes matching tracks from the catalog.
func removeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "rm",
		Aliases: []string{"r"},
		Usage:   "Remove tracks from the database",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "pattern"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "artist",
				Aliases: []string{"A"},
				Usage:   "Pattern to filter by track artist",
			},
			&cli.BoolFlag{
				Name:  "i",
				Usage: "Case insensitive matching",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Answer yes to every prompt",
			},
		},
		Action: r.Remove,
	}
}

// queryCommand lists tracks from the catalog.
func queryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "query",
		Aliases: []string{"q"},
		Usage:   "Query tracks from the database",
		Flags: append(append(append([]cli.Flag{
			&cli.BoolFlag{
				Name:    "files",
				Aliases: []string{"F"},
				Usage:   "List filenames instead of titles",
			},
			&cli.BoolFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "Show the number of matching tracks",
			},
		}, filterFlags()...), sliceFlags()...), downloadedFlags()...),
		Action: r.Query,
	}
}

// playlistCommand groups playlist operations.
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"p"},
		Usage:   "View, edit, and export playlists",
		Commands: []*cli.Command{
			{
				Name:      "sync",
				Usage:     "Download missing tracks from playlists",
				ArgsUsage: "[name-pattern]",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "playlist"},
				},
				Flags:  fetchFlags(),
				Action: r.PlaylistSync,
			},
			{
				Name:      "add",
				Usage:     "Add matching tracks to a playlist",
				ArgsUsage: "NAME",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "playlist"},
				},
				Flags:  append(append(filterFlags(), sliceFlags()...), downloadedFlags()...),
				Action: r.PlaylistAdd,
			},
			{
				Name:      "rm",
				Usage:     "Remove matching tracks from a playlist",
				ArgsUsage: "NAME",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "playlist"},
				},
				Flags:  append(append(filterFlags(), sliceFlags()...), downloadedFlags()...),
				Action: r.PlaylistRemove,
			},
			{
				Name:      "query",
				Usage:     "List tracks in a playlist",
				ArgsUsage: "NAME",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "playlist"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "files",
						Aliases: []string{"F"},
						Usage:   "List filenames instead of titles",
					},
				},
				Action: r.PlaylistQuery,
			},
			{
				Name:   "list",
				Usage:  "List all playlists",
				Action: r.PlaylistList,
			},
			{
				Name:      "export",
				Usage:     "Export a playlist to an m3u file",
				ArgsUsage: "NAME",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "playlist"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
				},
				Action: r.PlaylistExport,
			},
		},
	}
}

// historyCommand lists recent fetch runs from the journal.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recent fetch runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to show",
				Value: 10,
			},
		},
		Action: r.History,
	}
}

// setupCommand initializes the config file and fetch journal.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file and fetch journal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}
