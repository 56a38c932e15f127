package app

import (
	"fmt"

	"github.com/kbukum/linguacast/diarization"
	"github.com/kbukum/linguacast/diarization/pyannote"
	"github.com/kbukum/linguacast/logger"
	"github.com/kbukum/linguacast/observability"
	"github.com/kbukum/linguacast/provider"
	"github.com/kbukum/linguacast/synthesis"
	"github.com/kbukum/linguacast/synthesis/speecht5"
	"github.com/kbukum/linguacast/transcription"
	"github.com/kbukum/linguacast/transcription/whisper"
	"github.com/kbukum/linguacast/translation"
	"github.com/kbukum/linguacast/translation/mymemory"
)

// Registries holds the backend factories of every stage.
type Registries struct {
	Translation   *provider.Registry[translation.Provider]
	Transcription *provider.Registry[transcription.Provider]
	Diarization   *provider.Registry[diarization.Provider]
	Synthesis     *provider.Registry[synthesis.Provider]
}

// DefaultRegistries registers the built-in backends.
func DefaultRegistries() Registries {
	r := Registries{
		Translation:   translation.NewRegistry(),
		Transcription: transcription.NewRegistry(),
		Diarization:   diarization.NewRegistry(),
		Synthesis:     synthesis.NewRegistry(),
	}
	r.Translation.Register(mymemory.ProviderName, mymemory.Factory())
	r.Transcription.Register(whisper.ProviderName, whisper.Factory())
	r.Diarization.Register(pyannote.ProviderName, pyannote.Factory())
	r.Synthesis.Register(speecht5.ProviderName, speecht5.Factory())
	return r
}

// buildProvider creates the configured backend and wraps it with tracing,
// metrics, logging and the configured resilience policies, outermost
// first. Backend "none" yields a nil provider.
func buildProvider[I, O any](
	reg *provider.Registry[provider.RequestResponse[I, O]],
	stage string,
	cfg StageConfig,
	metrics *observability.Metrics,
	log *logger.Logger,
) (provider.RequestResponse[I, O], error) {
	if cfg.Backend == BackendNone {
		log.Info("stage backend disabled", logger.Fields(logger.FieldStage, stage))
		return nil, nil
	}
	p, err := reg.Create(cfg.Backend, cfg.Settings)
	if err != nil {
		return nil, fmt.Errorf("%s provider: %w", stage, err)
	}
	chain := provider.Chain(
		provider.WithTracing[I, O](stage),
		provider.WithMetrics[I, O](metrics),
		provider.WithLogging[I, O](log.WithComponent(stage)),
		provider.WithResilience[I, O](cfg.Resilience),
	)
	return chain(p), nil
}
