package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/linguacast/component"
	apperrors "github.com/kbukum/linguacast/errors"
	"github.com/kbukum/linguacast/logger"
)

func newTestServer(checker func(context.Context) []component.Health) *Server {
	cfg := Config{Host: "127.0.0.1"}
	cfg.ApplyDefaults()
	cfg.Port = 0
	s := New(cfg, logger.Nop())
	s.ApplyDefaults("linguacast", checker)
	return s
}

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, http.NoBody))
	var body map[string]any
	_ = json.Unmarshal(rr.Body.Bytes(), &body)
	return rr, body
}

func TestHealthAggregatesComponents(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []component.Health
		wantCode   int
		wantStatus string
	}{
		{"healthy", []component.Health{{Name: "db", Status: component.StatusHealthy}}, 200, "healthy"},
		{"degraded", []component.Health{{Name: "cache", Status: component.StatusDegraded}}, 200, "degraded"},
		{"unhealthy", []component.Health{
			{Name: "db", Status: component.StatusUnhealthy},
			{Name: "cache", Status: component.StatusDegraded},
		}, 503, "unhealthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(func(context.Context) []component.Health { return tt.statuses })
			rr, body := get(t, s.Handler(), "/health")
			if rr.Code != tt.wantCode || body["status"] != tt.wantStatus {
				t.Errorf("code=%d body=%v", rr.Code, body)
			}
			if rr.Header().Get("X-Request-Id") == "" {
				t.Error("middleware not applied")
			}
		})
	}
}

func TestProbesAndVersion(t *testing.T) {
	s := newTestServer(nil)
	if rr, body := get(t, s.Handler(), "/alive"); rr.Code != 200 || body["status"] != "alive" {
		t.Errorf("alive: %d %v", rr.Code, body)
	}
	if rr, body := get(t, s.Handler(), "/ready"); rr.Code != 200 || body["status"] != "ready" {
		t.Errorf("ready: %d %v", rr.Code, body)
	}
	if rr, body := get(t, s.Handler(), "/version"); rr.Code != 200 || body["version"] == "" {
		t.Errorf("version: %d %v", rr.Code, body)
	}
}

func TestRecoveryCoversRoutes(t *testing.T) {
	s := newTestServer(nil)
	s.GinEngine().GET("/boom", func(*gin.Context) { panic("boom") })
	if rr, _ := get(t, s.Handler(), "/boom"); rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestRespondWithError(t *testing.T) {
	s := newTestServer(nil)
	s.GinEngine().GET("/bad", func(c *gin.Context) { RespondWithError(c, apperrors.InvalidInput("source_lang", "required")) })
	s.GinEngine().GET("/oops", func(c *gin.Context) { RespondWithError(c, errors.New("disk on fire")) })

	if rr, _ := get(t, s.Handler(), "/bad"); rr.Code != http.StatusBadRequest {
		t.Errorf("bad: %d", rr.Code)
	}
	if rr, _ := get(t, s.Handler(), "/oops"); rr.Code != http.StatusInternalServerError {
		t.Errorf("oops: %d", rr.Code)
	}
}

func TestComponentLifecycle(t *testing.T) {
	s := newTestServer(nil)
	sc := NewComponent(s)
	if h := sc.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("health before start = %v", h.Status)
	}
	if err := sc.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer sc.Stop(context.Background())

	if h := sc.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Errorf("health = %v", h.Status)
	}
	resp, err := http.Get("http://" + s.Addr() + "/alive")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("status = %d", resp.StatusCode)
	}

	routes := sc.Routes()
	if len(routes) != 4 || !systemPaths[routes[len(routes)-1].Path] {
		t.Errorf("routes = %+v", routes)
	}
}

func TestFormatHandlerName(t *testing.T) {
	tests := map[string]string{
		"github.com/kbukum/linguacast/api.(*Handlers).Translate-fm":             "Handlers.Translate",
		"github.com/kbukum/linguacast/server/endpoint.Health.func1":             "health",
		"github.com/kbukum/linguacast/server.(*Server).RegisterDefaultEndpoints": "Server.RegisterDefaultEndpoints",
	}
	for in, want := range tests {
		if got := formatHandlerName(in); got != want {
			t.Errorf("formatHandlerName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	c := Config{}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults: %v", err)
	}
	c.Port = 70000
	if c.Validate() == nil {
		t.Error("port out of range must fail")
	}
	c.Port = 80
	c.IdleTimeout = -1
	if c.Validate() == nil {
		t.Error("negative timeout must fail")
	}
}
