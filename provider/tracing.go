package provider

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/linguacast/observability"
)

// WithTracing opens a "{stage}.{provider}" span around each call.
func WithTracing[I, O any](stage string) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &tracingRR[I, O]{wrapped: wrapped[I, O]{inner}, stage: stage}
	}
}

type tracingRR[I, O any] struct {
	wrapped[I, O]
	stage string
}

func (t *tracingRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	ctx, span := observability.StartSpan(ctx, t.stage+"."+t.inner.Name(),
		attribute.String(observability.AttrStage, t.stage),
		attribute.String(observability.AttrProvider, t.inner.Name()),
	)
	defer span.End()

	out, err := t.inner.Execute(ctx, input)
	if err != nil {
		observability.SetSpanError(ctx, err)
	}
	return out, err
}
