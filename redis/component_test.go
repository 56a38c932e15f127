package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/linguacast/component"
	"github.com/kbukum/linguacast/logger"
)

func TestComponentLifecycle(t *testing.T) {
	mini := miniredis.RunT(t)
	c := NewComponent(Config{Enabled: true, Addr: mini.Addr()}, logger.Nop())
	ctx := context.Background()

	if h := c.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if err := c.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if c.Client() == nil {
		t.Fatal("expected client after start")
	}
	if h := c.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %+v", h)
	}
	if err := c.Stop(ctx); err != nil {
		t.Fatal(err)
	}
	if c.Describe().Type != "redis" {
		t.Error("unexpected description")
	}
}

func TestComponentStartFailsWhenUnreachable(t *testing.T) {
	mini := miniredis.RunT(t)
	addr := mini.Addr()
	mini.Close()

	c := NewComponent(Config{Enabled: true, Addr: addr, DialTimeout: 200 * time.Millisecond}, logger.Nop())
	if err := c.Start(context.Background()); err == nil {
		t.Fatal("expected start error")
	}
}
