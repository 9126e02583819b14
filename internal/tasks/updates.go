package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	QueueImages Phase = iota
	ExtractPalette
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case QueueImages:
		return "queue_images"
	case ExtractPalette:
		return "extract_palette"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func queueUpdate(step, total int, url string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   QueueImages,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Queued: %s", step, total, url),
	}
}

func extractedUpdate(step, total int, res PaletteResult) ProgressUpdate {
	var msg string
	switch {
	case res.Error != nil:
		msg = fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.URL, res.Error)
	case res.Fallback():
		msg = fmt.Sprintf("[%d/%d] ~ %s (fallback palette)", step, total, res.URL)
	default:
		msg = fmt.Sprintf("[%d/%d] ✓ %s %s (confidence %.2f)", step, total, res.URL, res.Palette.Dominant, res.Palette.Confidence)
	}

	return ProgressUpdate{
		Phase:   ExtractPalette,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    res,
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Writing manifest: %s", path),
	}
}
