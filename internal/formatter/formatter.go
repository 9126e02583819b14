// package formatter renders palettes as JSON, CSS custom properties or plain text, and writes bulk manifests
package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/unilink/internal/palette"
	"github.com/desertthunder/unilink/internal/shared"
)

// Format names an output format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSS  Format = "css"
	FormatText Format = "txt"
)

// Formats lists the supported output formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatCSS, FormatText}
}

// ParseFormat resolves a format name. An empty name is JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSS, FormatText:
		return f, nil
	case "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want json, css or txt)", shared.ErrInvalidArgument, s)
	}
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatCSS:
		return ".css"
	case FormatText:
		return ".txt"
	default:
		return ".json"
	}
}

type role struct {
	name string
	hex  string
}

func roles(p palette.ColorPalette) []role {
	return []role{
		{"dominant", p.Dominant},
		{"vibrant", p.Vibrant},
		{"muted", p.Muted},
		{"dark", p.Dark},
		{"light", p.Light},
		{"complementary", p.Complementary},
		{"analogous-1", p.Analogous[0]},
		{"analogous-2", p.Analogous[1]},
	}
}

// MarshalJSON encodes v with two-space indentation when pretty is set.
func MarshalJSON(v any, pretty bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// ToCSS renders p as custom properties on :root, e.g. --palette-dominant: #1e2a4a;
func ToCSS(p palette.ColorPalette) []byte {
	var buf bytes.Buffer

	buf.WriteString(":root {\n")
	for _, r := range roles(p) {
		fmt.Fprintf(&buf, "  --palette-%s: %s;\n", r.name, r.hex)
	}
	fmt.Fprintf(&buf, "  --palette-confidence: %.2f;\n", p.Confidence)
	buf.WriteString("}\n")

	return buf.Bytes()
}

// ToText renders p as aligned "role  #hex" lines followed by the confidence.
func ToText(p palette.ColorPalette) []byte {
	var buf bytes.Buffer

	for _, r := range roles(p) {
		fmt.Fprintf(&buf, "%-14s %s\n", r.name, r.hex)
	}
	fmt.Fprintf(&buf, "%-14s %.2f\n", "confidence", p.Confidence)
	if p.IsFallback() {
		fmt.Fprintf(&buf, "%-14s %s\n", "source", "fallback")
	}

	return buf.Bytes()
}

// Render encodes p in format f.
func Render(p palette.ColorPalette, f Format, pretty bool) ([]byte, error) {
	switch f {
	case FormatCSS:
		return ToCSS(p), nil
	case FormatText:
		return ToText(p), nil
	case FormatJSON, "":
		return MarshalJSON(p, pretty)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, f)
	}
}

// WritePalette renders p and writes it to path.
func WritePalette(p palette.ColorPalette, f Format, path string) error {
	data, err := Render(p, f, true)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write palette file: %w", err)
	}
	return nil
}

// ManifestEntry describes one input of a bulk extraction.
type ManifestEntry struct {
	URL        string  `json:"url"`
	File       string  `json:"file,omitempty"`
	Dominant   string  `json:"dominant,omitempty"`
	Confidence float64 `json:"confidence"`
	Fallback   bool    `json:"fallback"`
	Cached     bool    `json:"cached"`
	Error      string  `json:"error,omitempty"`
}

// Manifest summarizes a bulk extraction.
type Manifest struct {
	GeneratedAt     time.Time       `json:"generatedAt"`
	Format          Format          `json:"format"`
	OutputDirectory string          `json:"outputDirectory"`
	Total           int             `json:"total"`
	Succeeded       int             `json:"succeeded"`
	Fallbacks       int             `json:"fallbacks"`
	Failed          int             `json:"failed"`
	Entries         []ManifestEntry `json:"entries"`
}

// WriteManifest writes m as indented JSON to path, creating the parent directory.
func WriteManifest(m *Manifest, path string) error {
	if m == nil {
		return fmt.Errorf("%w: manifest is nil", shared.ErrInvalidArgument)
	}

	data, err := MarshalJSON(m, true)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
