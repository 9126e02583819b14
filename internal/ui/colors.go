package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/unilink/internal/palette"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// swatchWidth is the minimum block width of one color in [Swatches]. Longer text widens the block.
const swatchWidth = 10

// Swatch renders hex as a background-colored block labeled with the hex code in a readable foreground.
func Swatch(hex string) string {
	fg := "#ffffff"
	if rgb, err := palette.ParseHex(hex); err == nil && rgb.HSL().L > 0.6 {
		fg = "#000000"
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(hex)).
		Foreground(lipgloss.Color(fg)).
		Width(max(swatchWidth, lipgloss.Width(hex))).
		Align(lipgloss.Center).
		Render(hex)
}

// Swatches renders every role of p as a labeled row of color blocks.
func Swatches(p palette.ColorPalette) string {
	roles := []struct{ name, hex string }{
		{"dominant", p.Dominant},
		{"vibrant", p.Vibrant},
		{"muted", p.Muted},
		{"dark", p.Dark},
		{"light", p.Light},
		{"complement", p.Complementary},
		{"analog 1", p.Analogous[0]},
		{"analog 2", p.Analogous[1]},
	}

	blocks := make([]string, len(roles))
	for i, r := range roles {
		label := styles.help.Width(max(swatchWidth, lipgloss.Width(r.name))).Align(lipgloss.Center).Render(r.name)
		blocks[i] = lipgloss.JoinVertical(lipgloss.Center, Swatch(r.hex), label)
	}

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, blocks...))
	b.WriteString("\n")

	if p.IsFallback() {
		b.WriteString(styles.warn.Render("Fallback palette: the artwork could not be analyzed"))
	} else {
		b.WriteString(styles.help.Render(fmt.Sprintf("confidence %.2f", p.Confidence)))
	}
	return b.String()
}
