package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/unilink/internal/palette"
	"github.com/desertthunder/unilink/internal/progress"
	"github.com/desertthunder/unilink/internal/services"
	"github.com/desertthunder/unilink/internal/shared"
	"github.com/desertthunder/unilink/internal/ui"
	"github.com/urfave/cli/v3"
)

// tuiLogPath receives log output while the TUI owns the terminal.
const tuiLogPath = "./tmp/unilink-tui.log"

type convertFunc = ui.ConvertFunc

// Convert resolves a music link to its artwork and extracts the palette, racing the real work against the
// progress simulator.
func (r *Runner) Convert(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfig(cmd); err != nil {
		return err
	}

	raw := cmd.StringArg("link")
	if raw == "" {
		return fmt.Errorf("%w: link is required", shared.ErrMissingArgument)
	}
	link, err := services.ParseLink(raw)
	if err != nil {
		return err
	}

	count := cmd.Int("count")
	if count < 0 {
		return fmt.Errorf("%w: count must not be negative", shared.ErrInvalidArgument)
	}

	useTUI := cmd.Bool("tui")
	if useTUI {
		if err := r.useFileLogger(); err != nil {
			return err
		}
	}

	svc, closeStore := r.newConversionService(true)
	defer closeStore()

	sim := r.newSimulator(link.ContentType, count, 0)
	convert := func(ctx context.Context) (*services.Conversion, error) {
		return svc.Convert(ctx, raw)
	}

	r.logger.Info("converting link", "platform", link.Platform, "type", link.ContentType, "id", link.ID)

	var result *services.Conversion
	if useTUI {
		result, err = r.runTUI(ctx, link, sim, convert)
	} else {
		result, err = r.runPlain(ctx, sim, convert)
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}
	return r.writeConversion(result, !useTUI)
}

// Simulate runs the simulator against a fake API call that finishes after --api-delay.
func (r *Runner) Simulate(ctx context.Context, cmd *cli.Command) error {
	ct, err := progress.ParseContentType(cmd.String("type"))
	if err != nil {
		return err
	}

	count := cmd.Int("count")
	if count < 0 {
		return fmt.Errorf("%w: count must not be negative", shared.ErrInvalidArgument)
	}

	useTUI := cmd.Bool("tui")
	if useTUI {
		if err := r.useFileLogger(); err != nil {
			return err
		}
	}

	link := services.Link{Raw: "simulated", Platform: "simulated", ContentType: ct}
	delay := cmd.Duration("api-delay")
	sim := r.newSimulator(ct, count, cmd.Duration("step-delay"))
	fake := func(ctx context.Context) (*services.Conversion, error) {
		select {
		case <-time.After(delay):
			return &services.Conversion{Link: link, Palette: palette.BrandPalette()}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	r.logger.Info("simulating conversion", "type", ct, "count", count, "api_delay", delay)

	start := time.Now()
	if useTUI {
		_, err = r.runTUI(ctx, link, sim, fake)
	} else {
		_, err = r.runPlain(ctx, sim, fake)
	}
	if err != nil {
		return err
	}

	state := sim.State()
	r.writePlain("✓ Simulated %s in %s (%s, %.0f%%)\n", ct, time.Since(start).Round(time.Millisecond), state.StepLabel(), state.Progress)
	return nil
}

func (r *Runner) newSimulator(ct progress.ContentType, count int, baseDelay time.Duration) *progress.Simulator {
	return progress.NewSimulator(progress.SimulationConfig{
		ContentType:    ct,
		EstimatedCount: count,
		BaseDelay:      baseDelay,
		Timings:        progressTimings(r.config.Progress),
		Logger:         shared.WithLogger(r.logger, "component", "simulator"),
	})
}

// runPlain logs each step transition while the conversion runs and returns once the simulator reaches 100%.
func (r *Runner) runPlain(ctx context.Context, sim *progress.Simulator, convert convertFunc) (*services.Conversion, error) {
	type outcome struct {
		result *services.Conversion
		err    error
	}

	sim.Start(ctx)
	defer sim.Stop()

	outcomes := make(chan outcome, 1)
	go func() {
		result, err := convert(ctx)
		if err == nil {
			sim.Complete()
		}
		outcomes <- outcome{result, err}
	}()

	var (
		result   *services.Conversion
		received bool
		lastStep = -1
		lastMsg  string
	)
	for {
		select {
		case st := <-sim.Updates():
			if st.CurrentStep == lastStep && st.StatusMessage == lastMsg {
				continue
			}
			lastStep, lastMsg = st.CurrentStep, st.StatusMessage
			r.logger.Info(st.StatusMessage, "step", st.StepLabel(), "progress", fmt.Sprintf("%.0f%%", st.Progress))

		case out := <-outcomes:
			if out.err != nil {
				return nil, out.err
			}
			result, received = out.result, true
			outcomes = nil

		case <-sim.Done():
			if !received {
				result = (<-outcomes).result
			}
			st := sim.State()
			r.logger.Info(st.StatusMessage, "elapsed", time.Duration(st.ElapsedMs)*time.Millisecond)
			return result, nil

		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (r *Runner) writeConversion(c *services.Conversion, swatches bool) error {
	r.writePlainHeader(fmt.Sprintf("%s %s", c.Link.Platform, c.Link.ContentType))
	r.writePlain("Artwork: %s\n", c.ArtworkURL)
	if c.Cached {
		r.writePlain("Palette served from cache\n")
	}
	if swatches {
		r.writePlain("\n%s\n", ui.Swatches(c.Palette))
		return nil
	}
	return r.writePlain("Dominant: %s (confidence %.2f)\n", c.Palette.Dominant, c.Palette.Confidence)
}
