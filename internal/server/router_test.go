package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/internal/middleware"
	"github.com/akolanti/ChatPDF/internal/session"
)

func TestRouter(t *testing.T) {
	settings := config.Default()
	settings.AuthToken = "secret"
	middleware.Init(settings, session.NewRegistry(nil, settings.Ingest, settings.Sessions))

	mcpCalled := false
	router := NewRouter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mcpCalled = true
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		method string
		path   string
		auth   bool
		want   int
	}{
		{"Health needs no token", http.MethodGet, "/healthz", false, http.StatusOK},
		{"Metrics", http.MethodGet, "/metrics", false, http.StatusOK},
		{"Swagger redirect", http.MethodGet, "/swagger", false, http.StatusMovedPermanently},
		{"Models without token", http.MethodGet, "/models", false, http.StatusUnauthorized},
		{"Models with token", http.MethodGet, "/models", true, http.StatusOK},
		{"MCP without token", http.MethodPost, "/mcp", false, http.StatusUnauthorized},
		{"MCP with token", http.MethodPost, "/mcp", true, http.StatusOK},
		{"Unknown route", http.MethodGet, "/nope", true, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth {
				req.Header.Set("Authorization", "Bearer secret")
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
	if !mcpCalled {
		t.Error("authorized /mcp request never reached the MCP handler")
	}
}

func TestNewHTTPServer_OutlastsSynchronousQuestions(t *testing.T) {
	srv := newHTTPServer(":0", http.NotFoundHandler())
	if srv.WriteTimeout <= config.QueryJobTimeout {
		t.Errorf("write timeout %s would cut off answers that take up to %s", srv.WriteTimeout, config.QueryJobTimeout)
	}
	if srv.ReadTimeout != config.ReadTimeout || srv.IdleTimeout != config.IdleTimeout {
		t.Errorf("unexpected timeouts %+v", srv)
	}
}
