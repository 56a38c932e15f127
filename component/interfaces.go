package component

import (
	"context"

	"github.com/kbukum/linguacast/observability"
)

type (
	Health       = observability.Health
	HealthStatus = observability.HealthStatus
)

const (
	StatusHealthy   = observability.HealthStatusUp
	StatusUnhealthy = observability.HealthStatusDown
	StatusDegraded  = observability.HealthStatusDegraded
)

// Component is a piece of infrastructure the registry starts in
// registration order and stops in reverse. Names must be unique.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// Description is one line of the startup summary.
type Description struct {
	Name    string // falls back to Component.Name()
	Type    string // database, redis, storage, kafka, server ...
	Details string // e.g. "linguacast.db pool=10"
	Port    int
}

// Describable components appear in the startup summary.
type Describable interface {
	Describe() Description
}

// Route is one HTTP route listed in the startup summary.
type Route struct {
	Method  string
	Path    string
	Handler string
}

// RouteProvider is implemented by components that serve HTTP.
type RouteProvider interface {
	Routes() []Route
}
