package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/unilink/internal/palette"
	"github.com/desertthunder/unilink/internal/progress"
	"github.com/desertthunder/unilink/internal/services"
)

var testPalette = palette.ColorPalette{
	Dominant:      "#1e2a4a",
	Vibrant:       "#e04a3a",
	Muted:         "#6a7080",
	Dark:          "#101522",
	Light:         "#f0e8d8",
	Complementary: "#4a3e1e",
	Analogous:     [2]string{"#1e3e4a", "#2a1e4a"},
	Confidence:    0.8,
}

func fastTimings() progress.Timings {
	return progress.Timings{
		Tick:           2 * time.Millisecond,
		StepFloor:      5 * time.Millisecond,
		CompressedMin:  2 * time.Millisecond,
		CompressedMax:  4 * time.Millisecond,
		RapidInterval:  3 * time.Millisecond,
		ParkedRelease:  3 * time.Millisecond,
		SlowThreshold:  time.Second,
		MatchStart:     5 * time.Millisecond,
		MatchPeriodMin: time.Millisecond,
		MatchPeriodMax: 2 * time.Millisecond,
	}
}

func newTestModel(t *testing.T, ct progress.ContentType, count int, convert ConvertFunc) *ConvertModel {
	t.Helper()
	sim := progress.NewSimulator(progress.SimulationConfig{ContentType: ct, EstimatedCount: count, Timings: fastTimings()})
	t.Cleanup(sim.Stop)

	link := services.Link{Platform: services.Spotify, ContentType: ct, ID: "x"}
	return NewConvertModel(context.Background(), link, sim, convert)
}

func okConvert(_ context.Context) (*services.Conversion, error) {
	return &services.Conversion{ArtworkURL: "https://i.scdn.co/image/x", Palette: testPalette}, nil
}

// drive runs the model's message loop by hand until the simulator finishes or the deadline passes.
func drive(t *testing.T, m *ConvertModel) {
	t.Helper()

	m.Init()
	if msg := m.runConversion()(); msg != nil {
		m.Update(msg)
	}

	deadline := time.Now().Add(3 * time.Second)
	cmd := m.waitForState()
	for !m.finished && time.Now().Before(deadline) {
		msg := cmd()
		_, next := m.Update(msg)
		if next == nil {
			break
		}
		cmd = next
	}
	if !m.finished {
		t.Fatal("simulation did not finish")
	}
}

func TestConvertModelCompletes(t *testing.T) {
	m := newTestModel(t, progress.Album, 0, okConvert)
	drive(t, m)

	if m.Result() == nil || m.Err() != nil {
		t.Fatalf("expected a result, got %v / %v", m.Result(), m.Err())
	}
	if !m.state.IsComplete || m.state.Progress != 100 {
		t.Errorf("expected completed state, got %+v", m.state)
	}

	view := m.View()
	for _, want := range []string{"Converting spotify album", progress.CompleteMessage, "#1e2a4a", "confidence 0.80", "https://i.scdn.co/image/x"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestConvertModelPlaylistCounter(t *testing.T) {
	m := newTestModel(t, progress.Playlist, 7, okConvert)
	drive(t, m)

	if view := m.View(); !strings.Contains(view, "Matched 7 / 7 tracks") {
		t.Errorf("expected match counter, got:\n%s", view)
	}
}

func TestConvertModelFailure(t *testing.T) {
	m := newTestModel(t, progress.Track, 0, func(context.Context) (*services.Conversion, error) {
		return nil, errors.New("artwork not found")
	})

	m.Init()
	m.Update(m.runConversion()())

	if m.Err() == nil {
		t.Fatal("expected error")
	}
	if m.sim.APIComplete() {
		t.Error("failed conversion must not complete the simulator")
	}
	if view := m.View(); !strings.Contains(view, "Conversion failed: artwork not found") {
		t.Errorf("expected failure view, got:\n%s", view)
	}
}

func TestConvertModelKeys(t *testing.T) {
	m := newTestModel(t, progress.Track, 0, okConvert)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
	if cmd != nil {
		t.Error("help toggle should not return a command")
	}
	if !m.help.ShowAll {
		t.Error("expected full help after ?")
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestConvertModelWindowSize(t *testing.T) {
	m := newTestModel(t, progress.Track, 0, okConvert)

	m.Update(tea.WindowSizeMsg{Width: 200, Height: 40})
	if m.bar.Width != maxBarWidth {
		t.Errorf("expected bar width %d, got %d", maxBarWidth, m.bar.Width)
	}

	m.Update(tea.WindowSizeMsg{Width: 8, Height: 40})
	if m.bar.Width != 10 {
		t.Errorf("expected minimum bar width 10, got %d", m.bar.Width)
	}
}

func TestSwatches(t *testing.T) {
	out := Swatches(testPalette)
	for _, want := range []string{"#1e2a4a", "#e04a3a", "#2a1e4a", "dominant", "analog 2", "confidence 0.80"} {
		if !strings.Contains(out, want) {
			t.Errorf("swatches missing %q:\n%s", want, out)
		}
	}

	if fallback := Swatches(palette.BrandPalette()); !strings.Contains(fallback, "Fallback palette") {
		t.Errorf("expected fallback note, got:\n%s", fallback)
	}
}

func TestSwatchContainsHex(t *testing.T) {
	for _, hex := range []string{"#000000", "#ffffff", "not-a-color"} {
		if !strings.Contains(Swatch(hex), hex) {
			t.Errorf("swatch should be labeled %q", hex)
		}
	}

	t.Run("long labels stay on one line", func(t *testing.T) {
		hex := "definitely-not-a-color"
		got := Swatch(hex)
		if lines := strings.Count(got, "\n") + 1; lines != 1 {
			t.Errorf("swatch wrapped onto %d lines: %q", lines, got)
		}
		if w := lipgloss.Width(got); w < len(hex) {
			t.Errorf("swatch width = %d, want at least %d", w, len(hex))
		}
	})
}
