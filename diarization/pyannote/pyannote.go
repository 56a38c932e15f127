// Package pyannote is a diarization backend for a pyannote.audio HTTP
// sidecar exposing POST /diarize and GET /health.
package pyannote

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/kbukum/linguacast/diarization"
	"github.com/kbukum/linguacast/httpclient"
	"github.com/kbukum/linguacast/provider"
)

const (
	// ProviderName is the registered name for the pyannote provider.
	ProviderName = "pyannote"

	defaultURL     = "http://localhost:8388"
	defaultTimeout = 300 * time.Second
)

// Config holds configuration for the pyannote provider.
type Config struct {
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MinSpeakers int           `yaml:"min_speakers" mapstructure:"min_speakers"`
	MaxSpeakers int           `yaml:"max_speakers" mapstructure:"max_speakers"`
	// Token is a Hugging Face access token, sent as a bearer token for the
	// sidecar to load gated models with.
	Token string `yaml:"token" mapstructure:"token"`
	// Transport overrides the HTTP transport. Tests use it.
	Transport http.RoundTripper `yaml:"-" mapstructure:"-"`
}

// Provider implements diarization.Provider.
type Provider struct {
	cfg    Config
	client *httpclient.Client
}

var _ diarization.Provider = (*Provider)(nil)

// NewProvider creates a pyannote provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	hc := httpclient.Config{
		BaseURL:        cfg.BaseURL,
		Timeout:        cfg.Timeout,
		CircuitBreaker: httpclient.DefaultCircuitBreakerConfig(ProviderName),
		Transport:      cfg.Transport,
	}
	if cfg.Token != "" {
		hc.Auth = httpclient.BearerAuth(cfg.Token)
	}
	client, err := httpclient.New(hc)
	if err != nil {
		return nil, fmt.Errorf("pyannote: %w", err)
	}
	return &Provider{cfg: cfg, client: client}, nil
}

// Factory returns a provider.Factory reading base_url, timeout,
// min_speakers, max_speakers and token.
func Factory() provider.Factory[diarization.Provider] {
	return func(m map[string]any) (diarization.Provider, error) {
		s := provider.Settings(m)
		p, err := NewProvider(Config{
			BaseURL:     s.String("base_url"),
			Timeout:     s.Duration("timeout"),
			MinSpeakers: s.Int("min_speakers"),
			MaxSpeakers: s.Int("max_speakers"),
			Token:       s.String("token"),
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	}
}

func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks the sidecar health endpoint.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	return p.client.Ping(ctx, "/health")
}

// Execute uploads the WAV buffer and returns the speaker ranges.
func (p *Provider) Execute(ctx context.Context, req diarization.Request) (*diarization.Response, error) {
	fields := map[string]string{}
	if req.NumSpeakers > 0 {
		fields["num_speakers"] = strconv.Itoa(req.NumSpeakers)
	}
	if minSpk := firstPositive(req.MinSpeakers, p.cfg.MinSpeakers); minSpk > 0 {
		fields["min_speakers"] = strconv.Itoa(minSpk)
	}
	if maxSpk := firstPositive(req.MaxSpeakers, p.cfg.MaxSpeakers); maxSpk > 0 {
		fields["max_speakers"] = strconv.Itoa(maxSpk)
	}
	if req.Language != "" {
		fields["language"] = req.Language
	}

	resp, err := p.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/diarize",
		Body: &httpclient.MultipartBody{
			Fields: fields,
			Files: []httpclient.FileField{{
				FieldName: "audio", FileName: "audio.wav", ContentType: "audio/wav", Data: req.Audio,
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("pyannote: diarize: %w", err)
	}

	var result pyannoteResponse
	if err := resp.JSON(&result); err != nil {
		return nil, fmt.Errorf("pyannote: decode response: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("pyannote: %s", result.Error)
	}
	return result.toResponse(), nil
}

type pyannoteResponse struct {
	Segments    []pyannoteSegment `json:"segments"`
	NumSpeakers int               `json:"num_speakers"`
	Error       string            `json:"error,omitempty"`
}

type pyannoteSegment struct {
	SpeakerID string  `json:"speaker_id"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

func (r *pyannoteResponse) toResponse() *diarization.Response {
	segments := make([]diarization.Segment, len(r.Segments))
	for i, seg := range r.Segments {
		segments[i] = diarization.Segment{Speaker: seg.SpeakerID, Start: seg.StartTime, End: seg.EndTime}
	}
	n := r.NumSpeakers
	if n == 0 && len(segments) > 0 {
		seen := map[string]struct{}{}
		for _, s := range segments {
			seen[s.Speaker] = struct{}{}
		}
		n = len(seen)
	}
	return &diarization.Response{Segments: segments, NumSpeakers: n}
}

func firstPositive(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}
