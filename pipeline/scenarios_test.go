package pipeline_test

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kbukum/linguacast/audio"
	"github.com/kbukum/linguacast/diarization"
	apperrors "github.com/kbukum/linguacast/errors"
	"github.com/kbukum/linguacast/logger"
	"github.com/kbukum/linguacast/pipeline"
	"github.com/kbukum/linguacast/resilience"
	"github.com/kbukum/linguacast/synthesis"
	"github.com/kbukum/linguacast/transcription"
	"github.com/kbukum/linguacast/transcription/whisper"
	"github.com/kbukum/linguacast/translation"
	"github.com/kbukum/linguacast/translation/mymemory"
)

// newServicePipeline wires the production stages: no diarization or
// synthesis backend, a whisper sidecar that always hears "Hello" and a
// MyMemory server answering with status and body.
func newServicePipeline(t *testing.T, status int, body string) *pipeline.Pipeline {
	t.Helper()
	stt := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"text": "Hello"})
	}))
	t.Cleanup(stt.Close)
	mt := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(mt.Close)

	stp, err := whisper.NewProvider(whisper.Config{URL: stt.URL})
	if err != nil {
		t.Fatalf("whisper: %v", err)
	}
	mtp, err := mymemory.NewProvider(mymemory.Config{BaseURL: mt.URL})
	if err != nil {
		t.Fatalf("mymemory: %v", err)
	}
	p, err := pipeline.New(pipeline.Config{}, pipeline.Stages{
		Segmenter:   diarization.Unavailable(),
		Transcriber: transcription.New(stp, logger.Nop()),
		Translator:  translation.New(mtp, resilience.NewSpacer(time.Millisecond), translation.WithLogger(logger.Nop())),
		Synthesizer: synthesis.Unavailable(),
	}, pipeline.WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	return p
}

func wav(t *testing.T, amplitude float64) []byte {
	t.Helper()
	w := audio.Waveform{Samples: make([]float32, audio.DefaultSampleRate), SampleRate: audio.DefaultSampleRate}
	for i := range w.Samples {
		w.Samples[i] = float32(amplitude * math.Sin(2*math.Pi*440*float64(i)/float64(w.SampleRate)))
	}
	data, err := audio.Encode(w)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return data
}

const hola = `{"responseStatus":200,"responseData":{"translatedText":"Hola","match":1}}`

func TestServiceStagesSilence(t *testing.T) {
	p := newServicePipeline(t, http.StatusOK, hola)
	for name, data := range map[string][]byte{
		"empty buffer":    nil,
		"one second mute": wav(t, 0),
	} {
		t.Run(name, func(t *testing.T) {
			resp := p.ProcessBytes(context.Background(), data, "en", "es", "")
			if resp.Result.SpeakerLabel != diarization.LabelNoSpeech || len(resp.Results) != 0 {
				t.Errorf("response = %+v", resp)
			}
		})
	}
}

func TestServiceStagesTranslation(t *testing.T) {
	limited := apperrors.RateLimited().Message
	tests := []struct {
		name      string
		status    int
		body      string
		wantText  string
		wantError string
	}{
		{"translated", http.StatusOK, hola, "Hola", ""},
		{"http 429", http.StatusTooManyRequests, `{}`, "Hello", limited},
		{"response status 403", http.StatusOK, `{"responseStatus":403,"responseData":{"translatedText":"INVALID LANGUAGE PAIR"}}`, "Hello", limited},
		{"response status 500", http.StatusOK, `{"responseStatus":"500","responseData":{"translatedText":""}}`, "Hello", limited},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newServicePipeline(t, tt.status, tt.body)
			resp := p.ProcessBytes(context.Background(), wav(t, 0.5), "en", "es", "")
			r := resp.Result
			if r.OriginalText != "Hello" || r.TranslatedText != tt.wantText || r.Error != tt.wantError {
				t.Errorf("result = %+v", r)
			}
			if r.SpeakerLabel != diarization.LabelDefault || r.AudioData != nil {
				t.Errorf("speaker %q, audio %d bytes", r.SpeakerLabel, len(r.AudioData))
			}
		})
	}
}
