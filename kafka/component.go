package kafka

import (
	"context"
	"strings"
	"sync"

	"github.com/kbukum/linguacast/component"
	"github.com/kbukum/linguacast/logger"
)

// ProducerCloser is the part of a producer the component manages.
type ProducerCloser interface {
	Close() error
}

// writeReporter is implemented by producers that remember their last
// write outcome.
type writeReporter interface {
	LastError() error
}

// Component closes the event producer on shutdown and reports it as
// degraded while the latest publish is failing.
type Component struct {
	cfg Config
	log *logger.Logger

	mu       sync.Mutex
	producer ProducerCloser
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: log.WithComponent("kafka")}
}

// SetProducer hands p to the component; Stop closes it.
func (c *Component) SetProducer(p ProducerCloser) {
	c.mu.Lock()
	c.producer = p
	c.mu.Unlock()
}

func (c *Component) Name() string { return "kafka" }

// Start dials nothing. kafka-go connects on the first write.
func (c *Component) Start(context.Context) error {
	c.log.Info("event publishing enabled", logger.Fields("brokers", c.cfg.Brokers, "topic", c.cfg.Topic))
	return nil
}

func (c *Component) Stop(context.Context) error {
	c.mu.Lock()
	p := c.producer
	c.producer = nil
	c.mu.Unlock()
	if p == nil {
		return nil
	}
	return p.Close()
}

func (c *Component) Health(context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	c.mu.Lock()
	p := c.producer
	c.mu.Unlock()
	switch r, ok := p.(writeReporter); {
	case p == nil:
		h.Status, h.Message = component.StatusUnhealthy, "producer not configured"
	case ok && r.LastError() != nil:
		h.Status, h.Message = component.StatusDegraded, "last publish failed: "+r.LastError().Error()
	}
	return h
}

func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Kafka",
		Type:    "kafka",
		Details: strings.Join(c.cfg.Brokers, ",") + " topic=" + c.cfg.Topic,
	}
}
