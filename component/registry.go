package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/linguacast/logger"
)

const defaultStopTimeout = 10 * time.Second

// Registry owns the process components. Start order is registration order;
// stop order is its reverse, limited to the components that did start.
type Registry struct {
	mu          sync.RWMutex
	ordered     []Component
	byName      map[string]int
	running     []bool
	stopTimeout time.Duration
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]int), stopTimeout: defaultStopTimeout}
}

// SetStopTimeout bounds each component's Stop call. Non-positive values are
// ignored.
func (r *Registry) SetStopTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	r.mu.Lock()
	r.stopTimeout = d
	r.mu.Unlock()
}

// Register appends c. Infrastructure must be registered before the
// components that use it.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, dup := r.byName[name]; dup {
		return fmt.Errorf("component %q registered twice", name)
	}
	r.byName[name] = len(r.ordered)
	r.ordered = append(r.ordered, c)
	r.running = append(r.running, false)
	return nil
}

// StartAll starts components until one fails. Whatever started before the
// failure is left running for StopAll.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := logger.WithComponent("lifecycle")
	for i, c := range r.ordered {
		began := time.Now()
		if err := c.Start(ctx); err != nil {
			log.Error("start failed", logger.Fields("target", c.Name(), logger.FieldError, err.Error()))
			return fmt.Errorf("start %s: %w", c.Name(), err)
		}
		r.running[i] = true
		fields := logger.DurationFields("start", time.Since(began))
		fields["target"] = c.Name()
		log.Debug("started", fields)
	}
	log.Info("components running", logger.Fields("count", len(r.ordered)))
	return nil
}

// StopAll stops running components newest first. Every component gets its
// own timeout; all stop errors are returned together.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := logger.WithComponent("lifecycle")
	var errs []error
	for i := len(r.ordered) - 1; i >= 0; i-- {
		if !r.running[i] {
			continue
		}
		c := r.ordered[i]
		if err := r.stopOne(ctx, c); err != nil {
			log.Error("stop failed", logger.Fields("target", c.Name(), logger.FieldError, err.Error()))
			errs = append(errs, fmt.Errorf("stop %s: %w", c.Name(), err))
		} else {
			log.Info("stopped", logger.Fields("target", c.Name()))
		}
		r.running[i] = false
	}
	return errors.Join(errs...)
}

func (r *Registry) stopOne(ctx context.Context, c Component) error {
	ctx, cancel := context.WithTimeout(ctx, r.stopTimeout)
	defer cancel()
	return c.Stop(ctx)
}

// HealthAll probes every component in registration order.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Health, len(r.ordered))
	for i, c := range r.ordered {
		out[i] = c.Health(ctx)
	}
	return out
}

// Get returns the component registered as name, or nil.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.byName[name]
	if !ok {
		return nil
	}
	return r.ordered[i]
}

// All returns the components in registration order.
func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Component(nil), r.ordered...)
}
