package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kbukum/linguacast/logger"
	"github.com/kbukum/linguacast/resilience"
	"github.com/kbukum/linguacast/version"
)

var userAgent = "linguacast/" + version.Version

// Client calls one backend with the configured auth and resilience
// policies. Each attempt passes the rate limiter first, then the breaker.
type Client struct {
	http    *http.Client
	cfg     Config
	breaker *resilience.CircuitBreaker
	limiter *resilience.RateLimiter
}

func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rt := cfg.Transport
	if rt == nil {
		rt = http.DefaultTransport.(*http.Transport).Clone()
	}
	c := &Client{cfg: cfg, http: &http.Client{Transport: rt, Timeout: cfg.Timeout}}
	if cb := cfg.CircuitBreaker; cb != nil {
		c.breaker = resilience.NewCircuitBreaker(*cb)
	}
	if rl := cfg.RateLimiter; rl != nil {
		c.limiter = resilience.NewRateLimiter(*rl)
	}
	return c, nil
}

func (c *Client) BaseURL() string { return c.cfg.BaseURL }

// Do sends req. A non-2xx answer yields the read Response together with
// an *Error describing it.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c.cfg.Retry == nil {
		return c.attempt(ctx, req)
	}
	return resilience.Retry(ctx, *c.cfg.Retry, func() (*Response, error) {
		return c.attempt(ctx, req)
	})
}

// Ping reports whether GET path answers 2xx. It bypasses the breaker so
// health probes do not count as traffic.
func (c *Client) Ping(ctx context.Context, path string) bool {
	resp, err := c.send(ctx, Request{Method: http.MethodGet, Path: path})
	return err == nil && resp.IsSuccess()
}

func (c *Client) attempt(ctx context.Context, req Request) (resp *Response, err error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if c.breaker == nil {
		return c.send(ctx, req)
	}
	err = c.breaker.Execute(func() error {
		resp, err = c.send(ctx, req)
		return err
	})
	return resp, err
}

func (c *Client) send(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.build(ctx, req)
	if err != nil {
		return nil, err
	}
	res, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, NewTimeoutError(err)
		}
		return nil, NewConnectionError(err)
	}
	defer res.Body.Close()

	limit := c.cfg.MaxResponseBytes
	body, err := io.ReadAll(io.LimitReader(res.Body, limit+1))
	switch {
	case err != nil:
		return nil, NewConnectionError(fmt.Errorf("read response body: %w", err))
	case int64(len(body)) > limit:
		return nil, NewValidationError(fmt.Sprintf("response body exceeds %d bytes", limit))
	}

	out := &Response{StatusCode: res.StatusCode, Headers: firstValues(res.Header), Body: body}
	if herr := ClassifyStatusCode(res.StatusCode, body); herr != nil {
		return out, herr
	}
	return out, nil
}

func (c *Client) build(ctx context.Context, req Request) (*http.Request, error) {
	body, contentType, err := encodeBody(req.Body)
	if err != nil {
		return nil, NewValidationError("encode body: " + err.Error())
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.resolve(req.Path), body)
	if err != nil {
		return nil, NewValidationError("create request: " + err.Error())
	}
	if len(req.Query) > 0 {
		q := httpReq.URL.Query()
		for k, v := range req.Query {
			q.Set(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	h := httpReq.Header
	h.Set("User-Agent", userAgent)
	if id := logger.RequestIDFromContext(ctx); id != "" {
		h.Set("X-Request-Id", id)
	}
	for _, set := range []map[string]string{c.cfg.Headers, req.Headers} {
		for k, v := range set {
			h.Set(k, v)
		}
	}
	if contentType != "" && h.Get("Content-Type") == "" {
		h.Set("Content-Type", contentType)
	}

	auth := c.cfg.Auth
	if req.Auth != nil {
		auth = req.Auth
	}
	auth.apply(httpReq)
	return httpReq, nil
}

// resolve joins path to the base URL unless path is already absolute.
func (c *Client) resolve(path string) string {
	if c.cfg.BaseURL == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

func encodeBody(body any) (io.Reader, string, error) {
	switch v := body.(type) {
	case nil:
		return nil, "", nil
	case *MultipartBody:
		return v.encode()
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "application/octet-stream", nil
	case string:
		return strings.NewReader(v), "text/plain", nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(data), "application/json", nil
}

func firstValues(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
