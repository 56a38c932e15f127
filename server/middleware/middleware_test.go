package middleware_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/linguacast/auth"
	"github.com/kbukum/linguacast/auth/authctx"
	apperrors "github.com/kbukum/linguacast/errors"
	"github.com/kbukum/linguacast/logger"
	"github.com/kbukum/linguacast/server/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ok(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRecovery(t *testing.T) {
	handler := middleware.Recovery(logger.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("test panic")
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/test", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if body["error"] != "Internal server error" {
		t.Fatalf("unexpected error message: %s", body["error"])
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", http.NoBody))
	if id := rr.Header().Get(middleware.RequestIDHeader); id == "" || id != seen {
		t.Errorf("response id %q, context id %q", id, seen)
	}

	req := httptest.NewRequest("GET", "/", http.NoBody)
	req.Header.Set(middleware.RequestIDHeader, "given")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Header().Get(middleware.RequestIDHeader) != "given" || seen != "given" {
		t.Errorf("existing id not preserved")
	}
}

func TestCORS(t *testing.T) {
	cfg := &middleware.CORSConfig{
		AllowedOrigins:   []string{"http://app.local"},
		AllowedMethods:   []string{"GET"},
		AllowCredentials: true,
	}
	handler := middleware.CORS(cfg)(http.HandlerFunc(ok))

	req := httptest.NewRequest("GET", "/", http.NoBody)
	req.Header.Set("Origin", "http://app.local")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Header().Get("Access-Control-Allow-Origin") != "http://app.local" ||
		rr.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Errorf("headers = %v", rr.Header())
	}

	req = httptest.NewRequest("OPTIONS", "/", http.NoBody)
	req.Header.Set("Origin", "http://app.local")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d", rr.Code)
	}

	req = httptest.NewRequest("GET", "/", http.NoBody)
	req.Header.Set("Origin", "http://evil.local")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("disallowed origin must not get CORS headers")
	}
}

func TestBodySizeLimit(t *testing.T) {
	handler := middleware.BodySizeLimit("8B")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/", strings.NewReader("0123456789")))
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestParseSize(t *testing.T) {
	tests := map[string]int64{
		"10MB": 10 << 20, "512kb": 512 << 10, "1GB": 1 << 30, "42": 42, "": 7, "lots": 7, "-1MB": 7,
	}
	for in, want := range tests {
		if got := middleware.ParseSize(in, 7); got != want {
			t.Errorf("ParseSize(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "debug", Format: "json"}, "test", &buf)
	handler := middleware.RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/translate", http.NoBody))
	if !strings.Contains(buf.String(), `"status":418`) || !strings.Contains(buf.String(), `"level":"warn"`) {
		t.Errorf("log = %s", buf.String())
	}

	buf.Reset()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/health", http.NoBody))
	if buf.Len() != 0 {
		t.Errorf("health probes must not be logged: %s", buf.String())
	}
}

func TestChainOrder(t *testing.T) {
	var order []string
	mw := func(name string) middleware.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	middleware.Chain(mw("a"), mw("b"))(http.HandlerFunc(ok)).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", http.NoBody))
	if strings.Join(order, ",") != "a,b" {
		t.Errorf("order = %v", order)
	}
}

var validator = auth.TokenValidatorFunc(func(_ context.Context, token string) (authctx.User, error) {
	if token == "good" {
		return authctx.User{ID: "user-1"}, nil
	}
	return authctx.User{}, apperrors.InvalidToken()
})

func authRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/me", mw, func(c *gin.Context) {
		c.String(http.StatusOK, authctx.UserID(c.Request.Context()))
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	r := authRouter(middleware.RequireAuth(validator))
	tests := []struct {
		name   string
		header string
		query  string
		status int
		body   string
	}{
		{"header", "Bearer good", "", http.StatusOK, "user-1"},
		{"query", "", "?token=good", http.StatusOK, "user-1"},
		{"missing", "", "", http.StatusUnauthorized, ""},
		{"invalid", "Bearer bad", "", http.StatusUnauthorized, ""},
		{"malformed header", "Basic abc", "", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me"+tt.query, http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			if rr.Code != tt.status {
				t.Fatalf("status = %d", rr.Code)
			}
			if tt.body != "" && rr.Body.String() != tt.body {
				t.Errorf("body = %q", rr.Body.String())
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	r := authRouter(middleware.OptionalAuth(validator))
	for token, want := range map[string]string{"good": "user-1", "bad": "", "": ""} {
		req := httptest.NewRequest("GET", "/me?token="+token, http.NoBody)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK || rr.Body.String() != want {
			t.Errorf("token %q: status=%d body=%q", token, rr.Code, rr.Body.String())
		}
	}
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.GET("/x", middleware.RateLimit(middleware.RateLimitConfig{RequestsPerMinute: 1, Burst: 2}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	codes := make([]int, 3)
	for i := range codes {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest("GET", "/x", http.NoBody))
		codes[i] = rr.Code
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Errorf("codes = %v", codes)
	}
}

type hijackRecorder struct {
	*httptest.ResponseRecorder
	hijacked bool
}

func (h *hijackRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h.hijacked = true
	return nil, nil, errors.New("test")
}

func TestRequestLoggerKeepsHijacker(t *testing.T) {
	rec := &hijackRecorder{ResponseRecorder: httptest.NewRecorder()}
	handler := middleware.RequestLogger(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		h, ok := w.(http.Hijacker)
		if !ok {
			t.Fatal("writer lost http.Hijacker")
		}
		_, _, _ = h.Hijack()
	}))
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/ws/1", http.NoBody))
	if !rec.hijacked {
		t.Error("hijack not forwarded")
	}
}
