package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	progressbar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/unilink/internal/progress"
	"github.com/desertthunder/unilink/internal/services"
)

const maxBarWidth = 60

// ConvertFunc performs the real conversion the simulator races against.
type ConvertFunc func(ctx context.Context) (*services.Conversion, error)

// ConvertModel renders a simulated conversion run and, once it completes, the resulting palette.
//
// The conversion runs as a command; when it returns successfully the simulator is told the API is done and
// catches up to 100%. A failed conversion stops the simulator and shows the error.
type ConvertModel struct {
	ctx     context.Context
	link    services.Link
	sim     *progress.Simulator
	convert ConvertFunc

	bar     progressbar.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	state    progress.ProgressState
	result   *services.Conversion
	err      error
	finished bool
}

// NewConvertModel creates the model. The simulator must not be started yet; Init starts it.
func NewConvertModel(ctx context.Context, link services.Link, sim *progress.Simulator, convert ConvertFunc) *ConvertModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = NewStyle("#7D56F4")

	return &ConvertModel{
		ctx:     ctx,
		link:    link,
		sim:     sim,
		convert: convert,
		bar:     progressbar.New(progressbar.WithGradient("#5668F4", "#C456F4"), progressbar.WithWidth(40)),
		spinner: s,
		help:    help.New(),
		keys:    newKeyMap(),
		state:   sim.State(),
	}
}

// Init starts the simulator and the conversion.
func (m *ConvertModel) Init() tea.Cmd {
	m.sim.Start(m.ctx)
	return tea.Batch(m.spinner.Tick, m.runConversion(), m.waitForState())
}

// Update handles incoming messages and updates the model state.
func (m *ConvertModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = max(min(msg.Width-4, maxBarWidth), 10)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			m.sim.Stop()
			return m, tea.Quit
		case key.Matches(msg, m.keys.help):
			m.help.ShowAll = !m.help.ShowAll
		}
		return m, nil

	case spinner.TickMsg:
		if m.finished || m.err != nil {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *ConvertModel) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgStateUpdate:
		m.state = msg.data.(progress.ProgressState)
		return m, m.waitForState()

	case MsgSimulationDone:
		m.state = msg.data.(progress.ProgressState)
		m.finished = true
		return m, nil

	case MsgConversionDone:
		out := msg.data.(conversionOutcome)
		if out.err != nil {
			m.err = out.err
			m.sim.Stop()
			return m, nil
		}
		m.result = out.result
	}
	return m, nil
}

func (m *ConvertModel) runConversion() tea.Cmd {
	return func() tea.Msg {
		result, err := m.convert(m.ctx)
		if err == nil {
			m.sim.Complete()
		}
		return conversionDoneMsg(result, err)
	}
}

// waitForState blocks until the next simulator snapshot or the end of the run.
func (m *ConvertModel) waitForState() tea.Cmd {
	updates, done := m.sim.Updates(), m.sim.Done()
	return func() tea.Msg {
		select {
		case st := <-updates:
			return stateUpdateMsg(st)
		case <-done:
			return simulationDoneMsg(m.sim.State())
		case <-m.ctx.Done():
			return nil
		}
	}
}

// Result returns the conversion once it has succeeded.
func (m *ConvertModel) Result() *services.Conversion {
	return m.result
}

// Err returns the conversion error, if any.
func (m *ConvertModel) Err() error {
	return m.err
}

// View renders the UI based on the current state.
func (m *ConvertModel) View() string {
	var b strings.Builder

	b.WriteString(styles.title.Render(fmt.Sprintf("Converting %s %s", m.link.Platform, m.link.ContentType)))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(styles.err.Render(fmt.Sprintf("Conversion failed: %v", m.err)))
		b.WriteString("\n\n")
		b.WriteString(m.help.View(m.keys))
		return b.String()
	}

	status := m.state.StatusMessage
	switch {
	case m.finished:
		b.WriteString(styles.ok.Render("✓ " + status))
	case m.state.IsWaitingForAPI:
		b.WriteString(fmt.Sprintf("%s %s", m.spinner.View(), styles.warn.Render(status)))
	default:
		b.WriteString(fmt.Sprintf("%s %s", m.spinner.View(), status))
	}
	b.WriteString("\n\n")

	b.WriteString(m.bar.ViewAs(m.state.Fraction()))
	b.WriteString("\n")
	b.WriteString(styles.help.Render(m.state.StepLabel()))

	if m.state.EstimatedCount > 0 {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("Matched %d / %d tracks", m.state.MatchedCount, m.state.EstimatedCount))
	}

	if m.finished && m.result != nil {
		b.WriteString("\n\n")
		b.WriteString(Swatches(m.result.Palette))
		b.WriteString("\n")
		b.WriteString(styles.help.Render(m.result.ArtworkURL))
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}
