package diarization

import (
	"context"
	"errors"
	"testing"

	"github.com/kbukum/linguacast/audio"
	"github.com/kbukum/linguacast/logger"
	"github.com/kbukum/linguacast/provider"
)

type stubBackend struct {
	resp *Response
	err  error
	got  Request
}

func (s *stubBackend) Name() string                     { return "stub" }
func (s *stubBackend) IsAvailable(context.Context) bool { return s.err == nil }
func (s *stubBackend) Execute(_ context.Context, req Request) (*Response, error) {
	s.got = req
	return s.resp, s.err
}

func ramp(n, rate int) audio.Waveform {
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(i%100) / 200
	}
	return audio.Waveform{Samples: samples, SampleRate: rate}
}

func TestUnavailable(t *testing.T) {
	w := ramp(1600, 16000)
	segs, outcome := Unavailable(WithLogger(logger.Nop())).SegmentWithOutcome(context.Background(), w)
	if len(segs) != 1 || segs[0].Speaker != LabelDefault {
		t.Fatalf("unexpected %+v", segs)
	}
	if segs[0].Audio.Len() != w.Len() || segs[0].Audio.Samples[5] != w.Samples[5] {
		t.Error("input must be passed through unchanged")
	}
	if outcome != provider.OutcomeDegraded {
		t.Errorf("outcome = %s", outcome)
	}
}

func TestAvailable_Ranges(t *testing.T) {
	backend := &stubBackend{resp: &Response{NumSpeakers: 2, Segments: []Segment{
		{Speaker: "B", Start: 0.5, End: 1.0},
		{Speaker: "A", Start: 0, End: 0.5},
	}}}
	s := Available(backend, WithLogger(logger.Nop()))
	segs, outcome := s.SegmentWithOutcome(context.Background(), ramp(48000, 48000))
	if outcome != provider.OutcomeSuccess {
		t.Errorf("outcome = %s", outcome)
	}
	if len(segs) != 2 || segs[0].Speaker != "A" || segs[1].Speaker != "B" {
		t.Fatalf("expected time ordered A,B got %+v", segs)
	}
	if segs[0].Audio.SampleRate != 16000 || segs[0].Audio.Len() != 8000 {
		t.Errorf("segment not sliced from the resampled audio: rate=%d len=%d", segs[0].Audio.SampleRate, segs[0].Audio.Len())
	}
	if backend.got.SampleRate != 16000 || len(backend.got.Audio) == 0 {
		t.Errorf("backend request = %+v", backend.got.SampleRate)
	}
	if _, err := audio.Decode(backend.got.Audio); err != nil {
		t.Errorf("backend must receive a valid wav: %v", err)
	}
}

func TestAvailable_SpeechWithoutRanges(t *testing.T) {
	s := Available(&stubBackend{resp: &Response{NumSpeakers: 1}}, WithLogger(logger.Nop()))
	segs := s.Segment(context.Background(), ramp(3200, 16000))
	if len(segs) != 1 || segs[0].Speaker != LabelSpeechDetected || segs[0].Audio.Len() != 3200 {
		t.Fatalf("unexpected %+v", segs)
	}
}

func TestAvailable_NoSpeech(t *testing.T) {
	s := Available(&stubBackend{resp: &Response{}}, WithLogger(logger.Nop()))
	segs := s.Segment(context.Background(), ramp(32000, 32000))
	if len(segs) != 1 || segs[0].Speaker != LabelNoSpeech {
		t.Fatalf("unexpected %+v", segs)
	}
	if segs[0].Audio.SampleRate != 16000 || segs[0].Audio.Len() != 16000 {
		t.Errorf("no-speech segment must cover the resampled audio")
	}
}

func TestAvailable_ProviderError(t *testing.T) {
	w := ramp(4800, 48000)
	s := Available(&stubBackend{err: errors.New("sidecar down")}, WithLogger(logger.Nop()))
	segs, outcome := s.SegmentWithOutcome(context.Background(), w)
	if len(segs) != 1 || segs[0].Speaker != LabelDefault || segs[0].Audio.SampleRate != 48000 {
		t.Fatalf("expected original waveform under default_speaker, got %+v", segs)
	}
	if outcome != provider.OutcomeDegraded {
		t.Errorf("outcome = %s", outcome)
	}
}

func TestDetect(t *testing.T) {
	ctx := context.Background()
	if !Detect(ctx, &stubBackend{}, WithLogger(logger.Nop())).IsAvailable() {
		t.Error("healthy backend must be available")
	}
	if Detect(ctx, &stubBackend{err: errors.New("x")}, WithLogger(logger.Nop())).IsAvailable() {
		t.Error("unhealthy backend must be unavailable")
	}
	if Detect(ctx, nil, WithLogger(logger.Nop())).Name() != "none" {
		t.Error("nil backend must be unavailable")
	}
}

func TestAvailable_EmptyInputSkipsBackend(t *testing.T) {
	backend := &stubBackend{resp: &Response{NumSpeakers: 1}}
	segs := Available(backend, WithLogger(logger.Nop())).Segment(context.Background(), audio.Empty(16000))
	if len(segs) != 1 || segs[0].Speaker != LabelNoSpeech {
		t.Fatalf("unexpected %+v", segs)
	}
	if backend.got.Audio != nil {
		t.Error("backend must not be called for empty input")
	}
}
