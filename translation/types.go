package translation

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/kbukum/linguacast/errors"
	"github.com/kbukum/linguacast/httpclient"
	"github.com/kbukum/linguacast/provider"
)

// MinInterval is the minimum spacing between backend calls.
const MinInterval = time.Second

var (
	// ErrRateLimited means the backend refused the call because of quota or
	// request rate.
	ErrRateLimited = errors.New("translation: rate limited")
	// ErrProvider covers every other backend failure.
	ErrProvider = errors.New("translation: provider failure")
)

// Request holds parameters for a translation call.
type Request struct {
	Text   string `json:"text"`
	Source string `json:"source_lang"`
	Target string `json:"target_lang"`
}

// Response holds the result of a translation call.
type Response struct {
	Text string `json:"translated_text"`
	// Match is the backend's confidence in [0, 1], when reported.
	Match float64 `json:"match,omitempty"`
}

// Provider is implemented by translation backends.
type Provider = provider.RequestResponse[Request, *Response]

// NewRegistry creates a registry of translation backend factories.
func NewRegistry() *provider.Registry[Provider] {
	return provider.NewRegistry[Provider]()
}

// classify converts a backend error into an *apperrors.AppError whose
// cause chain carries ErrRateLimited or ErrProvider.
func classify(backend string, err error) error {
	switch {
	case errors.Is(err, ErrRateLimited):
		return apperrors.RateLimited().WithDetail("provider", backend).WithCause(err)
	case httpclient.IsRateLimit(err):
		return apperrors.RateLimited().
			WithDetail("provider", backend).
			WithCause(fmt.Errorf("%w: %w", ErrRateLimited, err))
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Timeout("translation").WithCause(fmt.Errorf("%w: %w", ErrProvider, err))
	}
	return apperrors.TranslationFailed(backend, fmt.Errorf("%w: %v", ErrProvider, err))
}
