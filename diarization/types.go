package diarization

import (
	"github.com/kbukum/linguacast/audio"
	"github.com/kbukum/linguacast/provider"
)

// Speaker labels that are not produced by a diarization model.
const (
	// LabelDefault marks audio that was not diarized.
	LabelDefault = "default_speaker"
	// LabelSpeechDetected marks speech without per-speaker ranges.
	LabelSpeechDetected = "speaker_detected"
	// LabelNoSpeech marks audio in which no speaker was found.
	LabelNoSpeech = "no_speech_detected"
	// LabelError is used by callers for results of a failed run.
	LabelError = "error"
)

// SpeakerSegment is a slice of audio attributed to one speaker.
type SpeakerSegment struct {
	Speaker string
	Audio   audio.Waveform
}

// Request holds parameters for a diarization call.
type Request struct {
	// Audio is a WAV encoded, normalized mono buffer.
	Audio      []byte `json:"-"`
	SampleRate int    `json:"sample_rate"`
	// NumSpeakers is the exact number of speakers (0 = auto-detect).
	NumSpeakers int    `json:"num_speakers,omitempty"`
	MinSpeakers int    `json:"min_speakers,omitempty"`
	MaxSpeakers int    `json:"max_speakers,omitempty"`
	Language    string `json:"language,omitempty"`
}

// Response holds the result of a diarization call.
type Response struct {
	Segments    []Segment `json:"segments"`
	NumSpeakers int       `json:"num_speakers"`
}

// Segment is a speaker-attributed time range in seconds.
type Segment struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// Provider is implemented by diarization backends.
type Provider = provider.RequestResponse[Request, *Response]

// NewRegistry creates a registry of diarization backend factories.
func NewRegistry() *provider.Registry[Provider] {
	return provider.NewRegistry[Provider]()
}
