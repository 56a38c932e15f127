// Package whisper is a transcription backend for a faster-whisper HTTP
// sidecar exposing POST /transcribe and GET /health.
package whisper

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/linguacast/httpclient"
	"github.com/kbukum/linguacast/provider"
	"github.com/kbukum/linguacast/transcription"
)

const (
	// ProviderName is the registered name for the Whisper provider.
	ProviderName = "whisper"

	defaultURL     = "http://localhost:8387"
	defaultModel   = "small"
	defaultBestOf  = 5
	defaultTimeout = 120 * time.Second
)

// Config holds configuration for the Whisper provider.
type Config struct {
	URL         string        `yaml:"url" mapstructure:"url"`
	Model       string        `yaml:"model" mapstructure:"model"`
	Language    string        `yaml:"language" mapstructure:"language"`
	Device      string        `yaml:"device" mapstructure:"device"`
	ComputeType string        `yaml:"compute_type" mapstructure:"compute_type"`
	BestOf      int           `yaml:"best_of" mapstructure:"best_of"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// Transport overrides the HTTP transport. Tests use it.
	Transport http.RoundTripper `yaml:"-" mapstructure:"-"`
}

// Provider implements transcription.Provider using a faster-whisper sidecar.
type Provider struct {
	cfg    Config
	client *httpclient.Client
}

var _ transcription.Provider = (*Provider)(nil)

// NewProvider creates a Whisper provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.URL == "" {
		cfg.URL = defaultURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.BestOf <= 0 {
		cfg.BestOf = defaultBestOf
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	client, err := httpclient.New(httpclient.Config{
		BaseURL:        cfg.URL,
		Timeout:        cfg.Timeout,
		CircuitBreaker: httpclient.DefaultCircuitBreakerConfig(ProviderName),
		Transport:      cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("whisper: %w", err)
	}
	return &Provider{cfg: cfg, client: client}, nil
}

// Factory returns a provider.Factory that creates Whisper providers from a
// generic config map.
func Factory() provider.Factory[transcription.Provider] {
	return func(m map[string]any) (transcription.Provider, error) {
		s := provider.Settings(m)
		p, err := NewProvider(Config{
			URL:         s.String("url"),
			Model:       s.String("model"),
			Language:    s.String("language"),
			Device:      s.String("device"),
			ComputeType: s.String("compute_type"),
			BestOf:      s.Int("best_of"),
			Timeout:     s.Duration("timeout"),
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the Whisper sidecar is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	return p.client.Ping(ctx, "/health")
}

// Execute uploads the audio and returns the transcription. The request
// language wins over the configured default.
func (p *Provider) Execute(ctx context.Context, req transcription.Request) (*transcription.Response, error) {
	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}
	lang := p.cfg.Language
	if req.Language != "" {
		lang = req.Language
	}

	fields := map[string]string{
		"model":   model,
		"best_of": strconv.Itoa(p.cfg.BestOf),
	}
	if lang != "" {
		fields["language"] = lang
	}
	if p.cfg.Device != "" {
		fields["device"] = p.cfg.Device
	}
	if p.cfg.ComputeType != "" {
		fields["compute_type"] = p.cfg.ComputeType
	}

	resp, err := p.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/transcribe",
		Body: &httpclient.MultipartBody{
			Fields: fields,
			Files: []httpclient.FileField{{
				FieldName: "audio", FileName: "audio.wav", ContentType: "audio/wav", Data: req.Audio,
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("whisper: transcribe: %w", err)
	}

	var result whisperResponse
	if err := resp.JSON(&result); err != nil {
		return nil, fmt.Errorf("whisper: decode response: %w", err)
	}
	return result.toResponse(), nil
}

type whisperResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
}

type whisperSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (r *whisperResponse) toResponse() *transcription.Response {
	segments := make([]transcription.Segment, len(r.Segments))
	for i, seg := range r.Segments {
		segments[i] = transcription.Segment{Start: seg.Start, End: seg.End, Text: strings.TrimSpace(seg.Text)}
	}
	var duration float64
	if len(r.Segments) > 0 {
		duration = r.Segments[len(r.Segments)-1].End
	}
	return &transcription.Response{
		Text:     strings.TrimSpace(r.Text),
		Segments: segments,
		Duration: duration,
		Language: r.Language,
	}
}
