package pipeline

import (
	"context"
	"time"

	"github.com/kbukum/linguacast/audio"
	"github.com/kbukum/linguacast/diarization"
	"github.com/kbukum/linguacast/provider"
)

// Result is the translation of one speaker segment.
type Result struct {
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text"`
	SpeakerLabel   string `json:"speaker_id"`
	// AudioData is a WAV file; it encodes as base64 and as null when empty.
	AudioData []byte `json:"audio_data"`
	Error     string `json:"error,omitempty"`
}

// NoSpeechResult answers runs that produced no transcript.
func NoSpeechResult() Result {
	return Result{SpeakerLabel: diarization.LabelNoSpeech}
}

// ErrorResult answers runs that failed outright.
func ErrorResult(err error) Result {
	return Result{SpeakerLabel: diarization.LabelError, Error: err.Error()}
}

// Request is the input of one run.
type Request struct {
	Audio      audio.Waveform
	SourceLang string
	TargetLang string
	// UserID enables persistence of the results when set.
	UserID string
}

// Response is the output of one run. Result is the first entry of Results,
// or a sentinel when Results is empty.
type Response struct {
	Result  Result           `json:"result"`
	Results []Result         `json:"results"`
	Outcome provider.Outcome `json:"outcome"`
}

// Config bounds a Pipeline.
type Config struct {
	// MaxParallel caps concurrently processed segments of one run.
	MaxParallel int `yaml:"max_parallel" mapstructure:"max_parallel"`
	// PersistTimeout bounds the detached persistence of a run's results.
	PersistTimeout time.Duration `yaml:"persist_timeout" mapstructure:"persist_timeout"`
}

const (
	DefaultMaxParallel    = 4
	DefaultPersistTimeout = 30 * time.Second
)

func (c *Config) ApplyDefaults() {
	if c.MaxParallel <= 0 {
		c.MaxParallel = DefaultMaxParallel
	}
	if c.PersistTimeout <= 0 {
		c.PersistTimeout = DefaultPersistTimeout
	}
}

// Stage contracts. The diarization, transcription, translation and
// synthesis packages satisfy them.
type (
	Segmenter interface {
		SegmentWithOutcome(ctx context.Context, w audio.Waveform) ([]diarization.SpeakerSegment, provider.Outcome)
	}
	Transcriber interface {
		TranscribeWithOutcome(ctx context.Context, w audio.Waveform, languageHint string) (string, provider.Outcome)
	}
	Translator interface {
		TranslateWithOutcome(ctx context.Context, text, src, tgt string) (string, provider.Outcome, error)
	}
	Synthesizer interface {
		SynthesizeWithOutcome(ctx context.Context, text, lang string) (audio.Waveform, provider.Outcome)
	}
)

// Stages groups the stage implementations of a Pipeline.
type Stages struct {
	Segmenter   Segmenter
	Transcriber Transcriber
	Translator  Translator
	Synthesizer Synthesizer
}
