package main

import (
	"context"

	"github.com/desertthunder/unilink/internal/server"
	"github.com/desertthunder/unilink/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the palette HTTP service until ctx is canceled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	cfg := r.config.Server
	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = cmd.Int("port")
	}

	svc, closeStore := r.newConversionService(false)
	defer closeStore()

	srv := server.New(server.Opts{
		Converter: svc,
		Config:    cfg,
		Timings:   progressTimings(r.config.Progress),
		Logger:    shared.WithLogger(r.logger, "component", "server"),
	})

	if cmd.Bool("open") {
		url := srv.URL() + "/health"
		if err := shared.OpenBrowser(url); err != nil {
			r.logger.Warn("failed to open browser", "url", url, "error", err)
		}
	}

	r.writePlain("Serving palettes on %s\n", srv.URL())
	return srv.ListenAndServe(ctx)
}
