package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestGenerateID(t *testing.T) {
	seen := make(map[string]bool)
	for range 50 {
		id := GenerateID()
		if _, err := uuid.Parse(id); err != nil {
			t.Fatalf("GenerateID() = %q, not a valid uuid: %v", id, err)
		}
		if seen[id] {
			t.Fatalf("GenerateID() returned duplicate %q", id)
		}
		seen[id] = true
	}
}

func TestLoggers(t *testing.T) {
	t.Run("NewLogger writes key value pairs", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewLogger(buf)
		WithLogger(logger, "component", "palette").Info("extracted", "confidence", 0.5)

		out := buf.String()
		if !strings.Contains(out, "component=palette") {
			t.Errorf("expected child logger fields in output, got %q", out)
		}
		if !strings.Contains(out, "confidence=0.5") {
			t.Errorf("expected log fields in output, got %q", out)
		}
	})

	t.Run("NewFileLogger creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "tui.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger() error = %v", err)
		}
		logger.Info("hello")

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if !strings.Contains(string(data), "hello") {
			t.Errorf("log file missing message, got %q", string(data))
		}
	})

	t.Run("DiscardLogger is usable", func(t *testing.T) {
		DiscardLogger().Warn("dropped")
	})
}
