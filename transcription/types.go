package transcription

import "github.com/kbukum/linguacast/provider"

// Request holds parameters for a transcription call.
type Request struct {
	// Audio is a WAV encoded buffer.
	Audio    []byte `json:"-"`
	Language string `json:"language,omitempty"`
	Model    string `json:"model,omitempty"`
}

// Response holds the result of a transcription call.
type Response struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments,omitempty"`
	// Duration is the audio duration in seconds.
	Duration float64 `json:"duration,omitempty"`
	Language string  `json:"language,omitempty"`
}

// Segment is a time-aligned portion of a transcript.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Provider is implemented by speech-to-text backends.
type Provider = provider.RequestResponse[Request, *Response]

// NewRegistry creates a registry of transcription backend factories.
func NewRegistry() *provider.Registry[Provider] {
	return provider.NewRegistry[Provider]()
}
