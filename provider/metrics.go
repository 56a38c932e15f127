package provider

import (
	"context"
	"time"

	"github.com/kbukum/linguacast/observability"
)

// WithMetrics records call counts and latency per provider.
func WithMetrics[I, O any](metrics *observability.Metrics) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		if metrics == nil {
			return inner
		}
		return &metricsRR[I, O]{wrapped: wrapped[I, O]{inner}, metrics: metrics}
	}
}

type metricsRR[I, O any] struct {
	wrapped[I, O]
	metrics *observability.Metrics
}

func (m *metricsRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	start := time.Now()
	out, err := m.inner.Execute(ctx, input)
	status := "ok"
	if err != nil {
		status = "error"
		m.metrics.RecordError(ctx, m.inner.Name(), "execute")
	}
	m.metrics.RecordStage(ctx, m.inner.Name(), status, time.Since(start))
	return out, err
}
