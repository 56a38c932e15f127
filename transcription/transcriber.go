package transcription

import (
	"context"
	"strings"

	"github.com/kbukum/linguacast/audio"
	"github.com/kbukum/linguacast/logger"
	"github.com/kbukum/linguacast/provider"
)

// Transcriber converts waveforms to text through a Provider.
type Transcriber struct {
	backend Provider
	log     *logger.Logger
}

// New returns a Transcriber. A nil backend transcribes everything as "".
func New(backend Provider, log *logger.Logger) *Transcriber {
	if log == nil {
		log = logger.WithComponent("transcription")
	}
	return &Transcriber{backend: backend, log: log}
}

// Name returns the backend name, or "none".
func (t *Transcriber) Name() string {
	if t.backend == nil {
		return "none"
	}
	return t.backend.Name()
}

// Transcribe returns the trimmed transcript of w, or "" when w is silent or
// the backend fails.
func (t *Transcriber) Transcribe(ctx context.Context, w audio.Waveform, languageHint string) string {
	text, _ := t.TranscribeWithOutcome(ctx, w, languageHint)
	return text
}

// TranscribeWithOutcome is Transcribe plus the outcome tag. Silent input is
// a success with empty text.
func (t *Transcriber) TranscribeWithOutcome(ctx context.Context, w audio.Waveform, languageHint string) (string, provider.Outcome) {
	if w.IsSilent() {
		return "", provider.OutcomeSuccess
	}
	if t.backend == nil {
		return "", provider.OutcomeDegraded
	}

	data, err := audio.Encode(audio.NormalizeWaveform(w))
	if err != nil {
		t.log.WithContext(ctx).Warn("encode for transcription failed", logger.ErrorFields("transcribe", err))
		return "", provider.OutcomeDegraded
	}
	resp, err := t.backend.Execute(ctx, Request{Audio: data, Language: languageHint})
	if err != nil || resp == nil {
		if err != nil {
			t.log.WithContext(ctx).Warn("transcription failed", logger.ErrorFields("transcribe", err))
		}
		return "", provider.OutcomeDegraded
	}
	return strings.TrimSpace(resp.Text), provider.OutcomeSuccess
}
