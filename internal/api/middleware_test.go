package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
)

// captureLogs routes the default logger to a JSON buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

// logEntries decodes one JSON object per logged line.
func logEntries(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var e map[string]any
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("decoding log line %q: %v", line, err)
		}
		out = append(out, e)
	}
	return out
}

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		path      string
		status    int // 0 leaves the status implicit
		wantCode  int
		wantLevel string
	}{
		{name: "implicit ok", method: http.MethodGet, path: "/api/sources", wantCode: http.StatusOK, wantLevel: "INFO"},
		{name: "run accepted", method: http.MethodPost, path: "/api/runs", status: http.StatusAccepted, wantCode: http.StatusAccepted, wantLevel: "INFO"},
		{name: "run in progress", method: http.MethodPost, path: "/api/runs", status: http.StatusConflict, wantCode: http.StatusConflict, wantLevel: "INFO"},
		{name: "store down", method: http.MethodGet, path: "/api/records", status: http.StatusServiceUnavailable, wantCode: http.StatusServiceUnavailable, wantLevel: "WARN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)
			handler := middleware.RequestID(RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.status != 0 {
					w.WriteHeader(tt.status)
				}
			})))

			r := httptest.NewRequest(tt.method, tt.path+"?limit=5", nil)
			r.Header.Set(middleware.RequestIDHeader, "run-trigger-7")
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}

			entries := logEntries(t, buf)
			if len(entries) != 1 {
				t.Fatalf("logged %d entries, want 1", len(entries))
			}
			e := entries[0]
			want := map[string]any{
				"level":      tt.wantLevel,
				"msg":        "http request",
				"request_id": "run-trigger-7",
				"method":     tt.method,
				"path":       tt.path,
				"status":     float64(tt.wantCode),
			}
			for k, v := range want {
				if e[k] != v {
					t.Errorf("%s = %v, want %v", k, e[k], v)
				}
			}
			if _, ok := e["duration"]; !ok {
				t.Error("duration not logged")
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	t.Run("panic becomes logged 500", func(t *testing.T) {
		buf := captureLogs(t)
		handler := middleware.RequestID(Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("record lister exploded")
		})))

		r := httptest.NewRequest(http.MethodGet, "/api/records", nil)
		r.Header.Set(middleware.RequestIDHeader, "records-1")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
		}
		entries := logEntries(t, buf)
		if len(entries) != 1 {
			t.Fatalf("logged %d entries, want 1", len(entries))
		}
		e := entries[0]
		if e["level"] != "ERROR" || e["panic"] != "record lister exploded" || e["request_id"] != "records-1" {
			t.Errorf("log entry = %v", e)
		}
		if stack, _ := e["stack"].(string); stack == "" {
			t.Error("stack not logged")
		}
	})

	t.Run("no panic passes through silently", func(t *testing.T) {
		buf := captureLogs(t)
		handler := Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"ok"}`))
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		if w.Code != http.StatusOK || w.Body.String() != `{"status":"ok"}` {
			t.Errorf("response = %d %q", w.Code, w.Body.String())
		}
		if buf.Len() != 0 {
			t.Errorf("unexpected log output: %s", buf.String())
		}
	})
}

func TestCORS(t *testing.T) {
	tests := []struct {
		method     string
		wantCode   int
		wantCalled bool
	}{
		{method: http.MethodGet, wantCode: http.StatusOK, wantCalled: true},
		{method: http.MethodPost, wantCode: http.StatusAccepted, wantCalled: true},
		{method: http.MethodOptions, wantCode: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			called := false
			handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				if r.Method == http.MethodPost {
					w.WriteHeader(http.StatusAccepted)
				}
			}))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(tt.method, "/api/runs", nil))

			if w.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", w.Code, tt.wantCode)
			}
			if called != tt.wantCalled {
				t.Errorf("handler called = %v, want %v", called, tt.wantCalled)
			}
			headers := map[string]string{
				"Access-Control-Allow-Origin":  "*",
				"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
				"Access-Control-Allow-Headers": "Content-Type",
			}
			for h, want := range headers {
				if got := w.Header().Get(h); got != want {
					t.Errorf("%s = %q, want %q", h, got, want)
				}
			}
		})
	}
}
