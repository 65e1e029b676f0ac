// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// inputFlags selects the files to pair.
func inputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "audio",
			Aliases: []string{"a"},
			Usage:   "Audio file or directory (repeatable)",
		},
		&cli.StringSliceFlag{
			Name:    "transcripts",
			Aliases: []string{"t"},
			Usage:   "Transcript file or directory (repeatable)",
		},
		&cli.StringFlag{
			Name:    "mode",
			Aliases: []string{"m"},
			Usage:   "Pairing strategy: auto or positional (default from config)",
		},
	}
}

// outputFlags controls where run files are written.
func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Usage:   "Output directory for artifacts, report, and manifest (default from config)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Report format: text, json, csv, or markdown (default from config)",
		},
		&cli.BoolFlag{
			Name:  "zip",
			Usage: "Also pack the artifacts into <run id>.zip",
		},
	}
}

// runFlags tune a batch run.
func runFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "preflight",
			Usage: "Probe the health endpoint before submitting",
		},
		&cli.BoolFlag{
			Name:  "no-history",
			Usage: "Do not record the run in the history database",
		},
	}
}

func flags(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// batchCommand handles batch alignment
func batchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "Align audio files against their transcripts",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Submit every matched pair, one at a time",
				Flags: flags(inputFlags(), outputFlags(), runFlags(), []cli.Flag{
					&cli.BoolFlag{
						Name:  "tui",
						Usage: "Run inside the interactive terminal UI",
					},
				}),
				Action: r.BatchRun,
			},
			{
				Name:  "match",
				Usage: "Preview how files would be paired",
				Flags: flags(inputFlags(), []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				}),
				Action: r.BatchMatch,
			},
		},
	}
}

// historyCommand handles recorded runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "history",
		Aliases: []string{"runs"},
		Usage:   "Inspect and re-export recorded runs",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recorded runs, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of runs to return",
						Value: 20,
					},
					&cli.StringFlag{
						Name:  "status",
						Usage: "Only runs with this status (completed, cancelled)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show the results of one run",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "run", UsageText: "run ID, ID prefix, or sequence number"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.HistoryShow,
			},
			{
				Name:  "export",
				Usage: "Write the artifacts, report, and manifest of a recorded run",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "run", UsageText: "run ID, ID prefix, or sequence number"},
				},
				Flags:  outputFlags(),
				Action: r.HistoryExport,
			},
		},
	}
}

// healthCommand probes the alignment service
func healthCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "health",
		Usage:  "Check that the alignment service is reachable",
		Action: r.Health,
	}
}

// setupCommand handles setup operations for configuration, database, and endpoint headers.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write a configuration template",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the latest migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "endpoint",
				Usage: "Import extra request headers from browser DevTools",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "curl",
						Usage: "cURL command from browser DevTools (Copy as cURL)",
					},
					&cli.StringFlag{
						Name:  "curl-file",
						Usage: "Path to .sh file containing cURL command",
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Output path for the headers file (default: endpoint.headers_path or ./headers.json)",
					},
				},
				Action: r.SetupEndpoint,
			},
		},
	}
}

// watchCommand aligns files as they land in a directory
func watchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Align new pairs as they appear in a directory",
		Flags: flags([]cli.Flag{
			&cli.StringFlag{
				Name:     "dir",
				Aliases:  []string{"d"},
				Usage:    "Directory to watch for audio files",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "transcripts",
				Usage: "Directory holding the transcripts (default: --dir)",
			},
			&cli.StringFlag{
				Name:    "mode",
				Aliases: []string{"m"},
				Usage:   "Pairing strategy: auto or positional (default from config)",
			},
			&cli.DurationFlag{
				Name:  "quiet",
				Usage: "How long the directory must stay unchanged before a batch starts (default from config)",
			},
		}, outputFlags(), runFlags()),
		Action: r.Watch,
	}
}

// tuiCommand returns the top-level TUI command, an alias for batch run --tui.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive TUI for a batch run",
		Flags:   flags(inputFlags(), outputFlags(), runFlags()),
		Action:  r.TUI,
	}
}
