package storage

import (
	"context"
	"fmt"

	"github.com/kbukum/linguacast/component"
	"github.com/kbukum/linguacast/logger"
)

// Component owns the blob store synthesized audio is archived to.
type Component struct {
	cfg   Config
	log   *logger.Logger
	store Storage
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: log.WithComponent("storage")}
}

func (c *Component) Name() string { return "storage" }

// Storage is nil while the component is disabled or stopped.
func (c *Component) Storage() Storage { return c.store }

func (c *Component) Start(context.Context) error {
	if !c.cfg.Enabled {
		c.log.Info("audio archiving disabled")
		return nil
	}
	s, err := New(c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("storage %s: %w", c.cfg.Provider, err)
	}
	c.store = s
	return nil
}

func (c *Component) Stop(context.Context) error {
	c.store = nil
	return nil
}

// Health resolves a URL for a probe key, which exercises the backend's
// configuration without writing anything.
func (c *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	switch {
	case !c.cfg.Enabled:
		h.Message = "disabled"
	case c.store == nil:
		h.Status, h.Message = component.StatusUnhealthy, "not started"
	default:
		if _, err := c.store.URL(ctx, ".health"); err != nil {
			h.Status, h.Message = component.StatusUnhealthy, err.Error()
		}
	}
	return h
}

func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Audio archive",
		Type:    c.cfg.Provider,
		Details: fmt.Sprintf("bucket=%s", c.cfg.Bucket),
	}
}
