package server

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func teapot() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
}

func TestRouterMiddlewareOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	router := NewBasicRouter()
	router.Use(mark("first"), mark("second"))
	router.Handle(http.MethodGet, "/x", teapot())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("expected 418, got %d", rec.Code)
	}
	if strings.Join(order, ",") != "first,second" {
		t.Errorf("unexpected middleware order %v", order)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	handler := RequestLogger(log.New(&buf))(teapot())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/palette", nil))

	out := buf.String()
	for _, want := range []string{"request", "path=/api/palette", "status=418", "method=GET"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q: %s", want, out)
		}
	}
}

func TestStatusRecorderFlushes(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec, status: http.StatusOK}

	var w http.ResponseWriter = sr
	f, ok := w.(http.Flusher)
	if !ok {
		t.Fatal("statusRecorder should implement http.Flusher")
	}
	f.Flush()
	if !rec.Flushed {
		t.Error("expected flush to reach the underlying writer")
	}
}

func TestRecoverer(t *testing.T) {
	handler := Recoverer(log.New(&bytes.Buffer{}))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		allowed    []string
		method     string
		origin     string
		preflight  bool
		wantOrigin string
		wantStatus int
	}{
		{"allowed origin", []string{"http://localhost:5173"}, http.MethodGet, "http://localhost:5173", false, "http://localhost:5173", http.StatusTeapot},
		{"disallowed origin", []string{"http://localhost:5173"}, http.MethodGet, "http://evil.test", false, "", http.StatusTeapot},
		{"wildcard", []string{"*"}, http.MethodGet, "http://any.test", false, "http://any.test", http.StatusTeapot},
		{"no origin", []string{"*"}, http.MethodGet, "", false, "", http.StatusTeapot},
		{"preflight", []string{"http://localhost:5173"}, http.MethodOptions, "http://localhost:5173", true, "http://localhost:5173", http.StatusNoContent},
		{"plain options", []string{"*"}, http.MethodOptions, "", false, "", http.StatusTeapot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/palette", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			}

			rec := httptest.NewRecorder()
			CORS(tt.allowed)(teapot()).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("expected allow origin %q, got %q", tt.wantOrigin, got)
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	t.Run("limits per client", func(t *testing.T) {
		limiter := NewClientLimiter(1, 1)
		handler := RateLimit(limiter)(teapot())

		request := func(addr string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = addr
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			return rec
		}

		if rec := request("10.0.0.1:1234"); rec.Code != http.StatusTeapot {
			t.Errorf("first request should pass, got %d", rec.Code)
		}
		rec := request("10.0.0.1:5678")
		if rec.Code != http.StatusTooManyRequests {
			t.Errorf("second request should be limited, got %d", rec.Code)
		}
		if rec.Header().Get("Retry-After") != "1" {
			t.Error("expected Retry-After header")
		}
		if rec := request("10.0.0.2:1234"); rec.Code != http.StatusTeapot {
			t.Errorf("other clients should pass, got %d", rec.Code)
		}
		if limiter.Clients() != 2 {
			t.Errorf("expected 2 tracked clients, got %d", limiter.Clients())
		}
	})

	t.Run("idle clients are pruned", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		limiter := NewClientLimiter(1, 1)
		limiter.now = func() time.Time { return now }
		limiter.lastSweep = now

		for i := range 50 {
			limiter.Allow(fmt.Sprintf("10.0.1.%d", i))
		}
		if got := limiter.Clients(); got != 50 {
			t.Fatalf("expected 50 tracked clients, got %d", got)
		}

		now = now.Add(clientIdleTTL / 2)
		limiter.Allow("10.0.0.9")

		now = now.Add(clientIdleTTL/2 + time.Second)
		if !limiter.Allow("10.0.0.9") {
			t.Error("refilled client should pass")
		}
		if got := limiter.Clients(); got != 1 {
			t.Errorf("expected only the active client to remain, got %d", got)
		}
	})

	t.Run("pruned client starts with a full bucket", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		limiter := NewClientLimiter(1, 1)
		limiter.now = func() time.Time { return now }
		limiter.lastSweep = now

		if !limiter.Allow("10.0.0.1") {
			t.Fatal("first request should pass")
		}
		if limiter.Allow("10.0.0.1") {
			t.Fatal("second request should be limited")
		}

		now = now.Add(clientIdleTTL)
		if !limiter.Allow("10.0.0.1") {
			t.Error("client should pass after going idle")
		}
		if limiter.Allow("10.0.0.1") {
			t.Error("pruning must not grant more than the burst")
		}
	})

	t.Run("disabled", func(t *testing.T) {
		limiter := NewClientLimiter(0, 0)
		for range 5 {
			if !limiter.Allow("10.0.0.1") {
				t.Fatal("disabled limiter should allow everything")
			}
		}
	})
}
