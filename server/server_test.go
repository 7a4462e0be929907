package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/rememberable/config"
	"github.com/tech-arch1tect/rememberable/services/logging"
	"go.uber.org/zap"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host: "localhost",
			Port: "8080",
		},
	}
}

func TestNew(t *testing.T) {
	cfg := testConfig()

	t.Run("with logger", func(t *testing.T) {
		loggerService := logging.NewFromZap(zap.NewNop())
		server := New(cfg, loggerService)

		if server == nil {
			t.Fatal("expected server to be created")
		}
		if server.cfg != cfg {
			t.Error("expected config to be set")
		}
		if server.logger != loggerService {
			t.Error("expected logger to be set")
		}
		if server.echo == nil {
			t.Error("expected echo instance to be created")
		}
	})

	t.Run("without logger", func(t *testing.T) {
		server := New(cfg, nil)

		if server == nil {
			t.Fatal("expected server to be created")
		}
		if server.logger != nil {
			t.Error("expected logger to be nil")
		}
	})
}

func TestServer_Addr(t *testing.T) {
	if got := New(testConfig(), nil).Addr(); got != "localhost:8080" {
		t.Errorf("expected localhost:8080, got %s", got)
	}
}

func TestServer_Routes(t *testing.T) {
	server := New(testConfig(), nil)

	server.Get("/get", func(c echo.Context) error { return c.String(http.StatusOK, "get") })
	server.Post("/post", func(c echo.Context) error { return c.String(http.StatusCreated, "post") })
	api := server.Group("/api")
	api.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })

	tests := []struct {
		method string
		path   string
		status int
		body   string
	}{
		{http.MethodGet, "/get", http.StatusOK, "get"},
		{http.MethodPost, "/post", http.StatusCreated, "post"},
		{http.MethodGet, "/api/ping", http.StatusOK, "pong"},
		{http.MethodGet, "/healthz", http.StatusOK, "{\"status\":\"ok\"}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			server.Echo().ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rec.Code)
			}
			if rec.Body.String() != tt.body {
				t.Errorf("expected body %q, got %q", tt.body, rec.Body.String())
			}
		})
	}
}

func TestServer_RecoversFromPanics(t *testing.T) {
	server := New(testConfig(), nil)
	server.Get("/panic", func(c echo.Context) error { panic("boom") })

	rec := httptest.NewRecorder()
	server.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
}

func TestServer_ShutdownBeforeStart(t *testing.T) {
	if err := New(testConfig(), nil).Shutdown(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConfigureTrustedProxies(t *testing.T) {
	tests := []struct {
		name           string
		trustedProxies []string
		expectedIP     string
	}{
		{"no trusted proxies", nil, "10.0.0.1"},
		{"empty proxy in list", []string{""}, "10.0.0.1"},
		{"invalid proxy", []string{"invalid-proxy"}, "10.0.0.1"},
		{"trusted IPv4 address", []string{"10.0.0.1"}, "203.0.113.7"},
		{"trusted IPv4 CIDR", []string{"10.0.0.0/8"}, "203.0.113.7"},
		{"mixed valid and invalid", []string{"invalid-proxy", "10.0.0.1"}, "203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			configureTrustedProxies(e, tt.trustedProxies, nil)

			if e.IPExtractor == nil {
				t.Fatal("expected IPExtractor to be set")
			}

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			req.Header.Set(echo.HeaderXForwardedFor, "203.0.113.7")

			if got := e.IPExtractor(req); got != tt.expectedIP {
				t.Errorf("expected %s, got %s", tt.expectedIP, got)
			}
		})
	}
}
