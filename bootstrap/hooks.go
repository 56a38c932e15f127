package bootstrap

import (
	"context"
	"fmt"
)

// Hook is a lifecycle callback.
type Hook func(ctx context.Context) error

// OnReady registers hooks that run once every component has started.
func (a *App[C]) OnReady(hooks ...Hook) {
	a.readyHooks = append(a.readyHooks, hooks...)
}

// OnStop registers hooks that run at shutdown, before components stop.
func (a *App[C]) OnStop(hooks ...Hook) {
	a.stopHooks = append(a.stopHooks, hooks...)
}

func runHooks(ctx context.Context, phase string, hooks []Hook) error {
	for i, h := range hooks {
		if err := h(ctx); err != nil {
			return fmt.Errorf("%s hook #%d: %w", phase, i+1, err)
		}
	}
	return nil
}
