package synthesis

import (
	"context"
	"strings"

	"github.com/kbukum/linguacast/audio"
	"github.com/kbukum/linguacast/logger"
	"github.com/kbukum/linguacast/provider"
)

// Request holds parameters for a synthesis call.
type Request struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
	// Voice selects a speaker embedding when the backend supports several.
	Voice string `json:"voice,omitempty"`
}

// Response holds synthesized speech.
type Response struct {
	Audio audio.Waveform
}

// Provider is implemented by text-to-speech backends.
type Provider = provider.RequestResponse[Request, *Response]

// NewRegistry creates a registry of synthesis backend factories.
func NewRegistry() *provider.Registry[Provider] {
	return provider.NewRegistry[Provider]()
}

// Synthesizer converts text to speech. The zero value is Unavailable.
type Synthesizer struct {
	backend Provider
	voice   string
	log     *logger.Logger
}

type Option func(*Synthesizer)

func WithVoice(voice string) Option {
	return func(s *Synthesizer) { s.voice = voice }
}

func WithLogger(log *logger.Logger) Option {
	return func(s *Synthesizer) {
		if log != nil {
			s.log = log
		}
	}
}

// Available returns a Synthesizer backed by p.
func Available(p Provider, opts ...Option) Synthesizer {
	s := Synthesizer{backend: p}
	s.apply(opts)
	return s
}

// Unavailable returns a Synthesizer that always produces silence.
func Unavailable(opts ...Option) Synthesizer {
	s := Synthesizer{}
	s.apply(opts)
	return s
}

// Detect probes p once and picks the variant.
func Detect(ctx context.Context, p Provider, opts ...Option) Synthesizer {
	if p == nil || !p.IsAvailable(ctx) {
		s := Unavailable(opts...)
		s.log.Warn("synthesis backend unavailable; responses will carry no audio")
		return s
	}
	return Available(p, opts...)
}

func (s *Synthesizer) apply(opts []Option) {
	s.log = logger.WithComponent("synthesis")
	for _, opt := range opts {
		opt(s)
	}
}

func (s Synthesizer) IsAvailable() bool { return s.backend != nil }

func (s Synthesizer) Name() string {
	if s.backend == nil {
		return "none"
	}
	return s.backend.Name()
}

// Synthesize returns normalized speech for text, or an empty waveform.
func (s Synthesizer) Synthesize(ctx context.Context, text, lang string) audio.Waveform {
	w, _ := s.SynthesizeWithOutcome(ctx, text, lang)
	return w
}

// SynthesizeWithOutcome is Synthesize plus the outcome tag. Blank text is a
// success; a missing or failing backend is degraded.
func (s Synthesizer) SynthesizeWithOutcome(ctx context.Context, text, lang string) (audio.Waveform, provider.Outcome) {
	if strings.TrimSpace(text) == "" {
		return audio.Empty(audio.DefaultSampleRate), provider.OutcomeSuccess
	}
	if s.backend == nil {
		return audio.Empty(audio.DefaultSampleRate), provider.OutcomeDegraded
	}
	resp, err := s.backend.Execute(ctx, Request{Text: text, Language: lang, Voice: s.voice})
	if err != nil || resp == nil {
		if err != nil {
			s.log.WithContext(ctx).Warn("synthesis failed", logger.ErrorFields("synthesize", err))
		}
		return audio.Empty(audio.DefaultSampleRate), provider.OutcomeDegraded
	}
	out := audio.NormalizeWaveform(resp.Audio)
	if out.SampleRate <= 0 {
		out.SampleRate = audio.DefaultSampleRate
	}
	return out, provider.OutcomeSuccess
}
