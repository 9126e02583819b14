package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/unilink/internal/progress"
	"github.com/desertthunder/unilink/internal/services"
	"github.com/desertthunder/unilink/internal/shared"
	"github.com/desertthunder/unilink/internal/ui"
)

// useFileLogger redirects logs to a file to avoid interfering with TUI rendering.
func (r *Runner) useFileLogger() error {
	fileLogger, err := shared.NewFileLogger(tuiLogPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)
	return nil
}

// runTUI shows the conversion in the interactive progress view.
func (r *Runner) runTUI(ctx context.Context, link services.Link, sim *progress.Simulator, convert convertFunc) (*services.Conversion, error) {
	model := ui.NewConvertModel(ctx, link, sim, convert)
	p := tea.NewProgram(model, tea.WithContext(ctx))

	final, err := p.Run()
	sim.Stop()
	if err != nil {
		return nil, fmt.Errorf("error running TUI: %w", err)
	}

	m, ok := final.(*ui.ConvertModel)
	if !ok {
		return nil, fmt.Errorf("unexpected TUI model %T", final)
	}
	if m.Err() != nil {
		return nil, m.Err()
	}
	if m.Result() == nil {
		return nil, fmt.Errorf("conversion interrupted: %w", context.Canceled)
	}
	return m.Result(), nil
}
