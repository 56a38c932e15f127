// Package mymemory is a translation backend for the MyMemory public API
// (GET /get?q=...&langpair=src|tgt).
package mymemory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/linguacast/httpclient"
	"github.com/kbukum/linguacast/provider"
	"github.com/kbukum/linguacast/translation"
)

const (
	// ProviderName is the registered name for the MyMemory provider.
	ProviderName = "mymemory"

	defaultURL     = "https://api.mymemory.translated.net"
	defaultTimeout = 10 * time.Second
)

// Config holds configuration for the MyMemory provider.
type Config struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Email is sent as "de" and raises the daily quota.
	Email string `yaml:"email" mapstructure:"email"`
	// Transport overrides the HTTP transport. Tests use it.
	Transport http.RoundTripper `yaml:"-" mapstructure:"-"`
}

// Provider implements translation.Provider.
type Provider struct {
	cfg    Config
	client *httpclient.Client
}

var _ translation.Provider = (*Provider)(nil)

// NewProvider creates a MyMemory provider. Requests are not retried here:
// the translator's spacer owns call timing.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	client, err := httpclient.New(httpclient.Config{
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		Headers:   map[string]string{"Accept": "application/json"},
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("mymemory: %w", err)
	}
	return &Provider{cfg: cfg, client: client}, nil
}

// Factory reads base_url, timeout and email.
func Factory() provider.Factory[translation.Provider] {
	return func(m map[string]any) (translation.Provider, error) {
		s := provider.Settings(m)
		p, err := NewProvider(Config{
			BaseURL: s.String("base_url"),
			Timeout: s.Duration("timeout"),
			Email:   s.String("email"),
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

func (p *Provider) Name() string { return ProviderName }

// IsAvailable is always true; MyMemory has no health endpoint and probing
// it would spend quota.
func (p *Provider) IsAvailable(context.Context) bool { return true }

// Execute translates req.Text. HTTP 429, quota warnings and any
// responseStatus other than 200 return an error wrapping
// translation.ErrRateLimited; MyMemory reports throttling through all of
// them.
func (p *Provider) Execute(ctx context.Context, req translation.Request) (*translation.Response, error) {
	query := map[string]string{
		"q":        req.Text,
		"langpair": req.Source + "|" + req.Target,
	}
	if p.cfg.Email != "" {
		query["de"] = p.cfg.Email
	}

	resp, err := p.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: "/get", Query: query})
	if err != nil {
		if httpclient.IsRateLimit(err) {
			return nil, fmt.Errorf("%w: %v", translation.ErrRateLimited, err)
		}
		return nil, err
	}

	var body apiResponse
	if err := resp.JSON(&body); err != nil {
		return nil, fmt.Errorf("mymemory: decode response: %w", err)
	}

	status := int(body.ResponseStatus)
	if status != http.StatusOK || body.QuotaFinished || isQuotaMessage(body.ResponseDetails) || isQuotaMessage(body.ResponseData.TranslatedText) {
		return nil, fmt.Errorf("%w: mymemory status %d: %s", translation.ErrRateLimited, status, body.details())
	}
	return &translation.Response{
		Text:  body.ResponseData.TranslatedText,
		Match: float64(body.ResponseData.Match),
	}, nil
}

type apiResponse struct {
	ResponseData struct {
		TranslatedText string    `json:"translatedText"`
		Match          flexFloat `json:"match"`
	} `json:"responseData"`
	ResponseStatus  flexFloat `json:"responseStatus"`
	ResponseDetails string    `json:"responseDetails"`
	QuotaFinished   bool      `json:"quotaFinished"`
}

func (r apiResponse) details() string {
	if r.ResponseDetails != "" {
		return r.ResponseDetails
	}
	return r.ResponseData.TranslatedText
}

func isQuotaMessage(s string) bool {
	u := strings.ToUpper(s)
	return strings.Contains(u, "MYMEMORY WARNING") || strings.Contains(u, "QUOTA")
}

// flexFloat accepts a JSON number, a quoted number, or null.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("mymemory: not a number: %s", data)
	}
	*f = flexFloat(v)
	return nil
}

var _ json.Unmarshaler = (*flexFloat)(nil)
