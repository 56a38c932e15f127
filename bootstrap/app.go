package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kbukum/linguacast/component"
	"github.com/kbukum/linguacast/logger"
)

const defaultGracefulTimeout = 15 * time.Second

// App runs a service with a typed config C.
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	gracefulTimeout time.Duration
	readyHooks      []Hook
	stopHooks       []Hook
}

// NewApp applies defaults to cfg, validates it and prepares the logger.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	svc := cfg.GetServiceConfig()

	s := settings{gracefulTimeout: defaultGracefulTimeout}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		logger.Init(&svc.Logging)
		s.logger = logger.GetGlobalLogger()
	}

	a := &App[C]{
		Name:            svc.Name,
		Version:         svc.Version,
		Cfg:             cfg,
		Components:      component.NewRegistry(),
		Logger:          s.logger,
		Summary:         NewSummary(svc.Name, svc.Version),
		gracefulTimeout: s.gracefulTimeout,
	}
	a.Components.SetStopTimeout(s.gracefulTimeout)
	if s.summaryOut != nil {
		a.Summary.SetOutput(s.summaryOut)
	}
	return a, nil
}

// RegisterComponent adds c to the lifecycle. Registration order is start
// order.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// ReadyCheck lists the components that are not up as
// "name=status(message)".
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var bad []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status == component.StatusHealthy {
			continue
		}
		entry := h.Name + "=" + string(h.Status)
		if h.Message != "" {
			entry += "(" + h.Message + ")"
		}
		bad = append(bad, entry)
	}
	if len(bad) > 0 {
		return fmt.Errorf("not ready: %s", strings.Join(bad, ", "))
	}
	return nil
}

// Run starts every component, blocks until SIGINT, SIGTERM or the end of
// ctx, then stops them. Components that started before a startup failure
// are stopped before Run returns the error.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.start(ctx); err != nil {
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.gracefulTimeout)
		defer cancel()
		if stopErr := a.Components.StopAll(cleanupCtx); stopErr != nil {
			a.Logger.Warn("cleanup after failed startup", logger.Fields(logger.FieldError, stopErr.Error()))
		}
		return err
	}
	a.WaitForSignal(ctx)
	return a.Shutdown(context.WithoutCancel(ctx))
}

func (a *App[C]) start(ctx context.Context) error {
	began := time.Now()
	a.Logger.Info("starting", logger.Fields("name", a.Name, "version", a.Version))

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("startup: %w", err)
	}
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("running with unhealthy components", logger.Fields(logger.FieldError, err.Error()))
	}
	if err := runHooks(ctx, "ready", a.readyHooks); err != nil {
		return err
	}

	a.Summary.SetStartupDuration(time.Since(began))
	a.Summary.Display(ctx, a.Components)
	return nil
}

// WaitForSignal blocks until SIGINT, SIGTERM or ctx ends. It returns the
// signal, or nil on cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("shutdown signal", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("context done, shutting down")
		return nil
	}
}

// Shutdown runs the stop hooks and then stops the components, all within
// the graceful timeout. The first error is returned.
func (a *App[C]) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.gracefulTimeout)
	defer cancel()

	hookErr := runHooks(ctx, "stop", a.stopHooks)
	if hookErr != nil {
		a.Logger.Error("stop hook failed", logger.Fields(logger.FieldError, hookErr.Error()))
	}
	stopErr := a.Components.StopAll(ctx)
	if stopErr != nil {
		a.Logger.Error("components stopped with errors", logger.Fields(logger.FieldError, stopErr.Error()))
	}
	a.Logger.Info("shutdown complete")
	if hookErr != nil {
		return hookErr
	}
	return stopErr
}
