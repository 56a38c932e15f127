// Package speecht5 is a synthesis backend for a SpeechT5 HTTP sidecar
// exposing POST /synthesize (JSON in, WAV out) and GET /health.
package speecht5

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kbukum/linguacast/audio"
	"github.com/kbukum/linguacast/httpclient"
	"github.com/kbukum/linguacast/provider"
	"github.com/kbukum/linguacast/synthesis"
)

const (
	// ProviderName is the registered name for the SpeechT5 provider.
	ProviderName = "speecht5"

	defaultURL     = "http://localhost:8389"
	defaultTimeout = 60 * time.Second
)

// Config holds configuration for the SpeechT5 provider.
type Config struct {
	URL     string        `yaml:"url" mapstructure:"url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Transport overrides the HTTP transport. Tests use it.
	Transport http.RoundTripper `yaml:"-" mapstructure:"-"`
}

// Provider implements synthesis.Provider.
type Provider struct {
	cfg    Config
	client *httpclient.Client
}

var _ synthesis.Provider = (*Provider)(nil)

func NewProvider(cfg Config) (*Provider, error) {
	if cfg.URL == "" {
		cfg.URL = defaultURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	client, err := httpclient.New(httpclient.Config{
		BaseURL:   cfg.URL,
		Timeout:   cfg.Timeout,
		Headers:   map[string]string{"Accept": "audio/wav"},
		Transport: cfg.Transport,
	}.Resilient(ProviderName))
	if err != nil {
		return nil, fmt.Errorf("speecht5: %w", err)
	}
	return &Provider{cfg: cfg, client: client}, nil
}

// Factory reads url and timeout.
func Factory() provider.Factory[synthesis.Provider] {
	return func(m map[string]any) (synthesis.Provider, error) {
		s := provider.Settings(m)
		p, err := NewProvider(Config{URL: s.String("url"), Timeout: s.Duration("timeout")})
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

func (p *Provider) Name() string { return ProviderName }

func (p *Provider) IsAvailable(ctx context.Context) bool {
	return p.client.Ping(ctx, "/health")
}

// Execute posts the text and decodes the returned WAV.
func (p *Provider) Execute(ctx context.Context, req synthesis.Request) (*synthesis.Response, error) {
	resp, err := p.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/synthesize",
		Body:   req,
	})
	if err != nil {
		return nil, fmt.Errorf("speecht5: synthesize: %w", err)
	}
	w, err := audio.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("speecht5: %w", err)
	}
	return &synthesis.Response{Audio: w}, nil
}
