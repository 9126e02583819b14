// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/desertthunder/unilink/internal/formatter"
	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format (json, css, txt)",
		Value:   string(formatter.FormatJSON),
	}
}

// paletteCommand handles palette extraction
func paletteCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "palette",
		Aliases: []string{"p"},
		Usage:   "Extract color palettes from artwork",
		Commands: []*cli.Command{
			{
				Name:  "extract",
				Usage: "Extract the full palette from an image URL, data URI or file",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "url"},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "canvas-size",
						Usage: "Side of the square canvas the image is scaled to",
					},
					&cli.IntFlag{
						Name:  "clusters",
						Usage: "Number of median cut clusters",
					},
					&cli.FloatFlag{
						Name:  "center-bias",
						Usage: "Weight multiplier for the central region",
					},
					&cli.FloatFlag{
						Name:  "min-saturation",
						Usage: "Minimum saturation for the vibrant role",
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Image load timeout",
					},
					formatFlag(),
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to this file instead of stdout",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print JSON output",
						Value: true,
					},
					&cli.BoolFlag{
						Name:  "swatches",
						Usage: "Render color swatches instead of structured output",
					},
				},
				Action: r.PaletteExtract,
			},
			{
				Name:  "dominant",
				Usage: "Print the dominant color subset for an image",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "url"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.PaletteDominant,
			},
			{
				Name:  "brand",
				Usage: "Print the fallback brand palette",
				Flags: []cli.Flag{
					formatFlag(),
					&cli.BoolFlag{
						Name:  "swatches",
						Usage: "Render color swatches",
					},
				},
				Action: r.PaletteBrand,
			},
			{
				Name:  "bulk",
				Usage: "Extract palettes for every URL in a file, one per line",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "File with one image URL per line",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory (default: palettes_{timestamp})",
					},
					formatFlag(),
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent workers (max 10)",
						Value: 5,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Image fetches per second",
						Value: 5,
					},
					configFlag(),
				},
				Action: r.PaletteBulk,
			},
		},
	}
}

// convertCommand resolves a music link and extracts its artwork palette
func convertCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "convert",
		Usage: "Convert a Spotify, Deezer or image link into an artwork palette",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "link"},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "count",
				Usage: "Estimated playlist track count for the match counter",
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Show the interactive progress view",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the conversion as JSON",
			},
			configFlag(),
		},
		Action: r.Convert,
	}
}

// simulateCommand runs the progress simulator against a fake API call
func simulateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "Dry run the conversion progress simulator",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Usage:   "Content type (track, album, artist, playlist)",
				Value:   "track",
			},
			&cli.IntFlag{
				Name:  "count",
				Usage: "Estimated playlist track count",
			},
			&cli.DurationFlag{
				Name:  "api-delay",
				Usage: "How long the fake API call takes",
				Value: 1500 * time.Millisecond,
			},
			&cli.DurationFlag{
				Name:  "step-delay",
				Usage: "Replace every scripted step duration with this delay",
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Show the interactive progress view",
			},
		},
		Action: r.Simulate,
	}
}

// cacheCommand manages persisted palettes
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the persisted palette cache",
		Commands: []*cli.Command{
			{
				Name:  "prune",
				Usage: "Delete palettes older than the max age",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "max-age",
						Usage: "Delete rows not updated within this window (default: cache.max_age)",
					},
					configFlag(),
				},
				Action: r.CachePrune,
			},
			{
				Name:  "stats",
				Usage: "Show how many palettes are stored and how many are stale",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					configFlag(),
				},
				Action: r.CacheStats,
			},
		},
	}
}

// setupCommand handles setup operations for the database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Write a config.toml from the built-in defaults",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
		},
	}
}

// serveCommand starts the palette HTTP service
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the palette HTTP service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default: server.host)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (default: server.port)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the health endpoint in a browser once listening",
			},
			configFlag(),
		},
		Action: r.Serve,
	}
}
