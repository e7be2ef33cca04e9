package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ayusman/fluidportrait/internal/app"
)

const indexHTML = "<html><body>portrait</body></html>"

func staticDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(indexHTML), 0644); err != nil {
		t.Fatalf("write index.html: %v", err)
	}
	return dir
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return body
}

func TestServer_Routes(t *testing.T) {
	tests := []struct {
		name       string
		portrait   bool
		static     bool
		method     string
		path       string
		body       string
		wantStatus int
		check      func(t *testing.T, rec *httptest.ResponseRecorder, p *fakePortrait)
	}{
		{
			name: "health without portrait", method: http.MethodGet, path: "/api/health", wantStatus: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder, _ *fakePortrait) {
				body := decodeBody(t, rec)
				if body["status"] != "ok" {
					t.Errorf("status = %v, want ok", body["status"])
				}
				if _, ok := body["clients"]; ok {
					t.Error("clients reported without an events stream")
				}
			},
		},
		{
			name: "health reports clients", portrait: true, method: http.MethodGet, path: "/api/health", wantStatus: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder, _ *fakePortrait) {
				if got := decodeBody(t, rec)["clients"]; got != float64(0) {
					t.Errorf("clients = %v, want 0", got)
				}
			},
		},
		{name: "health rejects POST", method: http.MethodPost, path: "/api/health", wantStatus: http.StatusMethodNotAllowed},
		{
			name: "themes", method: http.MethodGet, path: "/api/themes", wantStatus: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder, _ *fakePortrait) {
				if themes, _ := decodeBody(t, rec)["themes"].([]interface{}); len(themes) != 5 {
					t.Errorf("themes = %v, want five", themes)
				}
			},
		},
		{
			name: "state", portrait: true, method: http.MethodGet, path: "/api/state", wantStatus: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder, _ *fakePortrait) {
				if got := decodeBody(t, rec)["mode"]; got != "Repel" {
					t.Errorf("mode = %v, want Repel", got)
				}
			},
		},
		{
			name: "actions queue", portrait: true, method: http.MethodPost, path: "/api/actions",
			body: `{"action":"toggle-preview"}`, wantStatus: http.StatusAccepted,
			check: func(t *testing.T, _ *httptest.ResponseRecorder, p *fakePortrait) {
				if got := p.actions(); len(got) != 1 || got[0] != app.ActionTogglePreview {
					t.Errorf("queued actions = %v", got)
				}
			},
		},
		{
			name: "resize queues", portrait: true, method: http.MethodPost, path: "/api/resize",
			body: `{"width":800,"height":450}`, wantStatus: http.StatusAccepted,
			check: func(t *testing.T, _ *httptest.ResponseRecorder, p *fakePortrait) {
				if got := p.resizes(); len(got) != 1 || got[0] != [2]int{800, 450} {
					t.Errorf("resizes = %v, want [[800 450]]", got)
				}
			},
		},
		{
			name: "resize rejects empty canvas", portrait: true, method: http.MethodPost, path: "/api/resize",
			body: `{"width":0,"height":450}`, wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, _ *httptest.ResponseRecorder, p *fakePortrait) {
				if got := p.resizes(); len(got) != 0 {
					t.Errorf("resizes = %v, want none", got)
				}
			},
		},
		{name: "landmarks needs upgrade", portrait: true, method: http.MethodGet, path: "/api/landmarks", wantStatus: http.StatusBadRequest},
		{name: "events needs upgrade", portrait: true, method: http.MethodGet, path: "/api/events", wantStatus: http.StatusBadRequest},
		{name: "state without portrait", method: http.MethodGet, path: "/api/state", wantStatus: http.StatusNotFound},
		{name: "resize without portrait", method: http.MethodPost, path: "/api/resize", body: `{"width":8,"height":8}`, wantStatus: http.StatusNotFound},
		{name: "stream without portrait", method: http.MethodGet, path: "/api/stream", wantStatus: http.StatusNotFound},
		{name: "unknown api path", portrait: true, method: http.MethodGet, path: "/api/nonexistent", wantStatus: http.StatusNotFound},
		{
			name: "static index", static: true, method: http.MethodGet, path: "/", wantStatus: http.StatusOK,
			check: func(t *testing.T, rec *httptest.ResponseRecorder, _ *fakePortrait) {
				if rec.Body.String() != indexHTML {
					t.Errorf("body = %q, want %q", rec.Body.String(), indexHTML)
				}
			},
		},
		{name: "static missing file", static: true, method: http.MethodGet, path: "/missing.css", wantStatus: http.StatusNotFound},
		{name: "root without static dir", method: http.MethodGet, path: "/", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg Config
			p := newFakePortrait()
			p.setSnapshot(app.Snapshot{Mode: "Repel"})
			if tt.portrait {
				cfg.Portrait = p
			}
			if tt.static {
				cfg.StaticDir = staticDir(t)
			}
			s := New(cfg)

			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if tt.check != nil {
				tt.check(t, rec, p)
			}
		})
	}
}

func TestNew_DefaultsEventInterval(t *testing.T) {
	if s := New(Config{}); s.config.EventInterval != DefaultEventInterval {
		t.Errorf("EventInterval = %v, want %v", s.config.EventInterval, DefaultEventInterval)
	}
}
