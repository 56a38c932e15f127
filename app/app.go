// Package app assembles linguacast from configuration: infrastructure
// components, stage backends, the speech pipeline and the HTTP API.
package app

import (
	"context"
	"fmt"

	"github.com/kbukum/linguacast/api"
	"github.com/kbukum/linguacast/bootstrap"
	"github.com/kbukum/linguacast/component"
	"github.com/kbukum/linguacast/database"
	"github.com/kbukum/linguacast/history"
	"github.com/kbukum/linguacast/kafka"
	"github.com/kbukum/linguacast/kafka/producer"
	"github.com/kbukum/linguacast/logger"
	"github.com/kbukum/linguacast/observability"
	"github.com/kbukum/linguacast/redis"
	"github.com/kbukum/linguacast/server"
	"github.com/kbukum/linguacast/storage"

	// Storage backends register themselves with the storage factory.
	_ "github.com/kbukum/linguacast/storage/local"
	_ "github.com/kbukum/linguacast/storage/s3"
	_ "github.com/kbukum/linguacast/storage/supabase"
)

// App is the bootstrapped service.
type App = bootstrap.App[*Config]

// Option customizes New.
type Option func(*options)

type options struct {
	bootstrap  []bootstrap.Option
	registries *Registries
}

// WithBootstrapOptions forwards options to bootstrap.NewApp.
func WithBootstrapOptions(opts ...bootstrap.Option) Option {
	return func(o *options) { o.bootstrap = append(o.bootstrap, opts...) }
}

// WithRegistries replaces the built-in stage backends.
func WithRegistries(r Registries) Option {
	return func(o *options) { o.registries = &r }
}

// New validates cfg and registers every component in start order:
// database, redis, storage, kafka, api, http server, websocket hub.
// Components stop in reverse order, so live sessions close first and
// pending history writes drain before the stores they write to.
func New(ctx context.Context, cfg *Config, opts ...Option) (*App, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	registries := DefaultRegistries()
	if o.registries != nil {
		registries = *o.registries
	}

	a, err := bootstrap.NewApp(cfg, o.bootstrap...)
	if err != nil {
		return nil, err
	}
	log := a.Logger

	shutdownTelemetry, err := observability.Setup(ctx, cfg.Observability, cfg.Name, cfg.Version)
	if err != nil {
		return nil, fmt.Errorf("observability: %w", err)
	}
	a.OnStop(func(ctx context.Context) error { return shutdownTelemetry(ctx) })

	metrics, err := observability.NewMetrics(observability.Meter(cfg.Name))
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	wiring := &apiComponent{
		cfg:        cfg,
		registries: registries,
		summary:    a.Summary,
		metrics:    metrics,
		log:        log,
	}

	if cfg.Database.Enabled {
		wiring.db = database.NewComponent(cfg.Database, log).WithMigrations(history.Migrations, history.MigrationsDir)
		if err := a.RegisterComponent(wiring.db); err != nil {
			return nil, err
		}
	}
	if cfg.Redis.Enabled {
		wiring.cache = redis.NewComponent(cfg.Redis, log)
		if err := a.RegisterComponent(wiring.cache); err != nil {
			return nil, err
		}
	}
	if cfg.Storage.Enabled {
		wiring.blobs = storage.NewComponent(cfg.Storage, log)
		if err := a.RegisterComponent(wiring.blobs); err != nil {
			return nil, err
		}
	}
	if cfg.Kafka.Enabled {
		p, err := producer.NewProducer(cfg.Kafka, log)
		if err != nil {
			return nil, fmt.Errorf("kafka: %w", err)
		}
		events := kafka.NewComponent(cfg.Kafka, log)
		events.SetProducer(p)
		wiring.producer = p
		if err := a.RegisterComponent(events); err != nil {
			return nil, err
		}
	}

	srv := server.New(cfg.Server, log)
	srv.ApplyDefaults(cfg.Name, func(ctx context.Context) []component.Health {
		return a.Components.HealthAll(ctx)
	})
	wiring.srv = srv
	wiring.hub = api.NewHub(log.WithComponent("ws-hub"))

	for _, c := range []component.Component{
		wiring,
		server.NewComponent(srv),
		api.NewHubComponent(wiring.hub),
	} {
		if err := a.RegisterComponent(c); err != nil {
			return nil, err
		}
	}
	a.OnReady(func(context.Context) error {
		log.Info("accepting connections", logger.Fields(
			"addr", srv.Addr(),
			"websocket", "/ws/{client_id}",
			"history", cfg.History.Provider,
		))
		return nil
	})
	return a, nil
}
