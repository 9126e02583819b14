package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/unilink/internal/progress"
	"github.com/desertthunder/unilink/internal/services"
	"github.com/desertthunder/unilink/internal/shared"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error(), Code: errorCode(err)})
}

// errorCode maps sentinel errors to stable machine-readable codes.
func errorCode(err error) string {
	switch {
	case errors.Is(err, shared.ErrMissingArgument), errors.Is(err, shared.ErrInvalidArgument):
		return "invalid_request"
	case errors.Is(err, shared.ErrUnsupportedLink):
		return "unsupported_link"
	case errors.Is(err, shared.ErrNotImplemented):
		return "not_implemented"
	case errors.Is(err, shared.ErrMissingCredentials):
		return "missing_credentials"
	case errors.Is(err, shared.ErrArtworkNotFound), errors.Is(err, shared.ErrNotFound):
		return "not_found"
	case errors.Is(err, shared.ErrAPIRequest), errors.Is(err, shared.ErrTimeout):
		return "upstream_error"
	default:
		return "internal"
	}
}

// PaletteHandler serves palettes for image URLs.
//
// It always answers 200 with a palette for a present url; a failed extraction yields the brand palette with
// confidence 0.
type PaletteHandler struct {
	conv   Converter
	logger *log.Logger
}

func NewPaletteHandler(conv Converter, logger *log.Logger) *PaletteHandler {
	return &PaletteHandler{conv: conv, logger: logger}
}

func (h *PaletteHandler) Routes() []string {
	return []string{"/api/palette", "/api/palette/dominant"}
}

func (h *PaletteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	imageURL := r.URL.Query().Get("url")
	if imageURL == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: url query parameter is required", shared.ErrMissingArgument))
		return
	}

	p, cached, err := h.conv.Palette(r.Context(), imageURL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	w.Header().Set("X-Palette-Cache", cacheStatus(cached))
	if p.IsFallback() {
		h.logger.Warn("served fallback palette", "url", imageURL)
	}

	if r.URL.Path == "/api/palette/dominant" {
		writeJSON(w, http.StatusOK, p.DominantColor())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func cacheStatus(cached bool) string {
	if cached {
		return "hit"
	}
	return "miss"
}

// ConvertHandler streams a simulated progress run as Server-Sent Events while the real conversion executes.
//
// Events:
//   - progress: a progress.ProgressState snapshot
//   - result: the services.Conversion, sent after the simulator reaches 100
//   - error: an error body when the conversion fails
type ConvertHandler struct {
	conv    Converter
	timings progress.Timings
	logger  *log.Logger
}

func NewConvertHandler(conv Converter, timings progress.Timings, logger *log.Logger) *ConvertHandler {
	return &ConvertHandler{conv: conv, timings: timings, logger: logger}
}

func (h *ConvertHandler) Routes() []string {
	return []string{"/api/convert"}
}

type conversionOutcome struct {
	conv *services.Conversion
	err  error
}

func (h *ConvertHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	raw := r.URL.Query().Get("link")
	link, err := services.ParseLink(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	count := 0
	if c := r.URL.Query().Get("count"); c != "" {
		count, err = strconv.Atoi(c)
		if err != nil || count < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("%w: count must be a non-negative integer", shared.ErrInvalidArgument))
			return
		}
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	send := func(event string, v any) {
		data, err := json.Marshal(v)
		if err != nil {
			h.logger.Error("failed to encode event", "event", event, "error", err)
			return
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
		flusher.Flush()
	}

	ctx := r.Context()
	sim := progress.NewSimulator(progress.SimulationConfig{
		ContentType:    link.ContentType,
		EstimatedCount: count,
		Timings:        h.timings,
		Logger:         h.logger,
	})
	sim.Start(ctx)
	defer sim.Stop()

	done := sim.Done()

	outcomes := make(chan conversionOutcome, 1)
	go func() {
		conv, err := h.conv.Convert(ctx, raw)
		outcomes <- conversionOutcome{conv: conv, err: err}
		if err == nil {
			sim.Complete()
		}
	}()

	var result *services.Conversion
	for {
		select {
		case st := <-sim.Updates():
			send("progress", st)
		case out := <-outcomes:
			if out.err != nil {
				h.logger.Warn("conversion failed", "link", raw, "error", out.err)
				send("error", errorBody{Error: out.err.Error(), Code: errorCode(out.err)})
				return
			}
			result = out.conv
			outcomes = nil
		case <-done:
			if result == nil {
				out := <-outcomes
				result = out.conv
			}
			send("progress", sim.State())
			send("result", result)
			return
		case <-ctx.Done():
			h.logger.Debug("client went away", "link", raw, "error", context.Cause(ctx))
			return
		}
	}
}
