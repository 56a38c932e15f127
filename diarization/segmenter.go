package diarization

import (
	"context"
	"sort"

	"github.com/kbukum/linguacast/audio"
	"github.com/kbukum/linguacast/logger"
	"github.com/kbukum/linguacast/provider"
)

// Segmenter assigns speakers to audio. The zero value is Unavailable.
type Segmenter struct {
	backend    Provider
	sampleRate int
	language   string
	log        *logger.Logger
}

type Option func(*Segmenter)

// WithSampleRate sets the rate audio is resampled to before submission.
func WithSampleRate(rate int) Option {
	return func(s *Segmenter) {
		if rate > 0 {
			s.sampleRate = rate
		}
	}
}

// WithLanguage passes a language hint to the backend.
func WithLanguage(lang string) Option {
	return func(s *Segmenter) { s.language = lang }
}

func WithLogger(log *logger.Logger) Option {
	return func(s *Segmenter) {
		if log != nil {
			s.log = log
		}
	}
}

// Available returns a Segmenter backed by p.
func Available(p Provider, opts ...Option) Segmenter {
	s := Segmenter{backend: p}
	s.apply(opts)
	return s
}

// Unavailable returns a Segmenter that labels everything default_speaker.
func Unavailable(opts ...Option) Segmenter {
	s := Segmenter{}
	s.apply(opts)
	return s
}

// Detect probes p once and returns Available when it answers, Unavailable
// otherwise.
func Detect(ctx context.Context, p Provider, opts ...Option) Segmenter {
	if p == nil || !p.IsAvailable(ctx) {
		s := Unavailable(opts...)
		s.log.Warn("diarization backend unavailable; using single speaker")
		return s
	}
	return Available(p, opts...)
}

func (s *Segmenter) apply(opts []Option) {
	s.sampleRate = audio.DefaultSampleRate
	s.log = logger.WithComponent("diarization")
	for _, opt := range opts {
		opt(s)
	}
}

// IsAvailable reports which variant s is.
func (s Segmenter) IsAvailable() bool { return s.backend != nil }

// Name returns the backend name, or "none".
func (s Segmenter) Name() string {
	if s.backend == nil {
		return "none"
	}
	return s.backend.Name()
}

// Segment returns at least one segment for w, in time order.
func (s Segmenter) Segment(ctx context.Context, w audio.Waveform) []SpeakerSegment {
	segments, _ := s.SegmentWithOutcome(ctx, w)
	return segments
}

// SegmentWithOutcome is Segment plus the outcome tag. Falling back to a
// single default_speaker segment is degraded, never an error.
func (s Segmenter) SegmentWithOutcome(ctx context.Context, w audio.Waveform) ([]SpeakerSegment, provider.Outcome) {
	if s.backend == nil {
		return fallback(w), provider.OutcomeDegraded
	}
	if w.IsEmpty() {
		return []SpeakerSegment{{Speaker: LabelNoSpeech, Audio: w}}, provider.OutcomeSuccess
	}

	resampled := audio.NormalizeWaveform(audio.Resample(w, s.sampleRate))
	data, err := audio.Encode(resampled)
	if err != nil {
		s.log.WithContext(ctx).Warn("encode for diarization failed", logger.ErrorFields("diarize", err))
		return fallback(w), provider.OutcomeDegraded
	}

	resp, err := s.backend.Execute(ctx, Request{Audio: data, SampleRate: resampled.SampleRate, Language: s.language})
	if err != nil || resp == nil {
		if err != nil {
			s.log.WithContext(ctx).Warn("diarization failed; using single speaker", logger.ErrorFields("diarize", err))
		}
		return fallback(w), provider.OutcomeDegraded
	}
	return mapResponse(resp, resampled), provider.OutcomeSuccess
}

func fallback(w audio.Waveform) []SpeakerSegment {
	return []SpeakerSegment{{Speaker: LabelDefault, Audio: w}}
}

func mapResponse(resp *Response, w audio.Waveform) []SpeakerSegment {
	if len(resp.Segments) == 0 {
		if resp.NumSpeakers == 0 {
			return []SpeakerSegment{{Speaker: LabelNoSpeech, Audio: w}}
		}
		return []SpeakerSegment{{Speaker: LabelSpeechDetected, Audio: w}}
	}

	ranges := append([]Segment(nil), resp.Segments...)
	sort.SliceStable(ranges, func(i, j int) bool { return ranges[i].Start < ranges[j].Start })

	out := make([]SpeakerSegment, 0, len(ranges))
	for _, r := range ranges {
		slice := w.Slice(r.Start, r.End)
		if slice.IsEmpty() {
			continue
		}
		speaker := r.Speaker
		if speaker == "" {
			speaker = LabelSpeechDetected
		}
		out = append(out, SpeakerSegment{Speaker: speaker, Audio: slice})
	}
	if len(out) == 0 {
		return []SpeakerSegment{{Speaker: LabelSpeechDetected, Audio: w}}
	}
	return out
}
