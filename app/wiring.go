package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/linguacast/api"
	"github.com/kbukum/linguacast/auth"
	"github.com/kbukum/linguacast/bootstrap"
	"github.com/kbukum/linguacast/component"
	"github.com/kbukum/linguacast/database"
	"github.com/kbukum/linguacast/diarization"
	"github.com/kbukum/linguacast/history"
	"github.com/kbukum/linguacast/logger"
	"github.com/kbukum/linguacast/observability"
	"github.com/kbukum/linguacast/pipeline"
	"github.com/kbukum/linguacast/provider"
	"github.com/kbukum/linguacast/redis"
	"github.com/kbukum/linguacast/resilience"
	"github.com/kbukum/linguacast/server"
	"github.com/kbukum/linguacast/storage"
	"github.com/kbukum/linguacast/synthesis"
	"github.com/kbukum/linguacast/transcription"
	"github.com/kbukum/linguacast/translation"
)

// apiComponent builds the pipeline and mounts the API once the
// infrastructure components it depends on have started. It is registered
// after them and before the HTTP server.
type apiComponent struct {
	cfg        *Config
	registries Registries
	srv        *server.Server
	hub        *api.Hub
	summary    *bootstrap.Summary
	metrics    *observability.Metrics
	log        *logger.Logger

	db       *database.Component
	cache    *redis.Component
	blobs    *storage.Component
	producer history.EventPublisher

	mu       sync.Mutex
	pipeline *pipeline.Pipeline
	stages   []stageStatus
}

type stageStatus struct {
	stage, name string
	available   bool
}

var (
	_ component.Component   = (*apiComponent)(nil)
	_ component.Describable = (*apiComponent)(nil)
)

func (c *apiComponent) Name() string { return "api" }

func (c *apiComponent) Start(ctx context.Context) error {
	translator, err := c.buildTranslator()
	if err != nil {
		return err
	}
	stages, err := c.buildStages(ctx, translator)
	if err != nil {
		return err
	}

	repo, err := c.buildRepository()
	if err != nil {
		return err
	}
	var recorder history.Recorder
	if repo != nil {
		recorder = c.buildArchiver(repo)
	}

	p, err := pipeline.New(c.cfg.Pipeline, stages,
		pipeline.WithRecorder(recorder),
		pipeline.WithMetrics(c.metrics),
		pipeline.WithLogger(c.log.WithComponent("pipeline")),
	)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	var validator auth.TokenValidator
	if c.cfg.Auth.Enabled {
		identity, err := auth.NewIdentity(&c.cfg.Auth.JWT)
		if err != nil {
			return fmt.Errorf("auth: %w", err)
		}
		validator = identity
	}

	handlers, err := api.NewHandlers(c.cfg.API, api.Deps{
		Processor:  p,
		Translator: translator,
		Repo:       repo,
		Recorder:   recorder,
		Validator:  validator,
		Hub:        c.hub,
		Metrics:    c.metrics,
		Logger:     c.log.WithComponent("api"),
	})
	if err != nil {
		return fmt.Errorf("api: %w", err)
	}
	handlers.Register(c.srv.GinEngine())

	c.mu.Lock()
	c.pipeline = p
	c.mu.Unlock()
	for _, s := range c.stages {
		c.summary.TrackProvider(s.stage, s.name, s.available)
	}
	c.log.Info("API mounted", logger.Fields("auth", c.cfg.Auth.Describe(), "history", c.cfg.History.Provider))
	return nil
}

// Stop waits for detached history writes of finished runs.
func (c *apiComponent) Stop(ctx context.Context) error {
	c.mu.Lock()
	p := c.pipeline
	c.mu.Unlock()
	if p == nil {
		return nil
	}
	done := make(chan struct{})
	go func() {
		p.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("pending history writes: %w", ctx.Err())
	}
}

// Health is degraded while an optional stage runs without its backend.
func (c *apiComponent) Health(context.Context) component.Health {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pipeline == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	var missing []string
	for _, s := range c.stages {
		if !s.available {
			missing = append(missing, s.stage)
		}
	}
	if len(missing) > 0 {
		return component.Health{Name: c.Name(), Status: component.StatusDegraded, Message: fmt.Sprintf("degraded stages: %v", missing)}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

func (c *apiComponent) Describe() component.Description {
	return component.Description{Name: "Speech API", Type: "pipeline", Details: fmt.Sprintf("history=%s auth=%s", c.cfg.History.Provider, c.cfg.Auth.Describe())}
}

func (c *apiComponent) buildTranslator() (*translation.Translator, error) {
	tcfg := c.cfg.Providers.Translation
	backend, err := buildProvider(c.registries.Translation, "translation", tcfg.StageConfig, c.metrics, c.log)
	if err != nil {
		return nil, err
	}
	opts := []translation.Option{translation.WithLogger(c.log.WithComponent("translation"))}
	if c.cache != nil {
		if client := c.cache.Client(); client != nil {
			opts = append(opts, translation.WithCache(translation.NewRedisCache(client, tcfg.CacheTTL)))
		}
	}
	c.track("translation", backend.Name(), true)
	return translation.New(backend, resilience.NewSpacer(tcfg.MinInterval), opts...), nil
}

func (c *apiComponent) buildStages(ctx context.Context, translator *translation.Translator) (pipeline.Stages, error) {
	pc := c.cfg.Providers

	asr, err := buildProvider(c.registries.Transcription, "transcription", pc.Transcription, c.metrics, c.log)
	if err != nil {
		return pipeline.Stages{}, err
	}
	transcriber := transcription.New(asr, c.log.WithComponent("transcription"))
	c.track("transcription", transcriber.Name(), asr != nil)

	dia, err := buildProvider(c.registries.Diarization, "diarization", pc.Diarization, c.metrics, c.log)
	if err != nil {
		return pipeline.Stages{}, err
	}
	segmenter := diarization.Detect(ctx, dia, diarization.WithLogger(c.log.WithComponent("diarization")))
	c.track("diarization", segmenter.Name(), segmenter.IsAvailable())

	tts, err := buildProvider(c.registries.Synthesis, "synthesis", pc.Synthesis, c.metrics, c.log)
	if err != nil {
		return pipeline.Stages{}, err
	}
	synthesizer := synthesis.Detect(ctx, tts, synthesis.WithLogger(c.log.WithComponent("synthesis")))
	c.track("synthesis", synthesizer.Name(), synthesizer.IsAvailable())

	return pipeline.Stages{
		Segmenter:   segmenter,
		Transcriber: transcriber,
		Translator:  translator,
		Synthesizer: synthesizer,
	}, nil
}

func (c *apiComponent) buildRepository() (history.Repository, error) {
	switch c.cfg.History.Provider {
	case HistorySupabase:
		return history.NewSupabaseRepository(c.cfg.History.Supabase)
	case HistorySQL:
		if c.db == nil || c.db.DB() == nil {
			return nil, fmt.Errorf("history: sql provider needs a started database")
		}
		return history.NewSQLRepository(c.db.DB()), nil
	default:
		return nil, nil
	}
}

func (c *apiComponent) buildArchiver(repo history.Repository) *history.Archiver {
	opts := []history.Option{history.WithLogger(c.log.WithComponent("history"))}
	if c.blobs != nil && c.blobs.Storage() != nil {
		uploads := provider.Chain(
			provider.WithTracing[storage.UploadRequest, *storage.UploadResponse]("storage"),
			provider.WithMetrics[storage.UploadRequest, *storage.UploadResponse](c.metrics),
			provider.WithResilience[storage.UploadRequest, *storage.UploadResponse](provider.ResilienceConfig{
				Retry: ptr(resilience.DefaultRetryConfig()),
			}),
		)(storage.NewUploadProvider(c.cfg.Storage.Provider, c.blobs.Storage()))
		opts = append(opts, history.WithUploader(uploads), history.WithBlobCleanup(c.blobs.Storage()))
	}
	if c.producer != nil {
		opts = append(opts, history.WithEvents(c.producer, c.cfg.Kafka.Topic))
	}
	return history.NewArchiver(repo, opts...)
}

func (c *apiComponent) track(stage, name string, available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stages = append(c.stages, stageStatus{stage: stage, name: name, available: available})
}
