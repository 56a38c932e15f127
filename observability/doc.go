// Package observability wires OpenTelemetry tracing and metrics for the
// translation pipeline. Setup installs OTLP/HTTP exporters when enabled;
// otherwise the global no-op providers stay in place and every helper here
// remains safe to call.
//
//	shutdown, err := observability.Setup(ctx, cfg.Observability, "linguacast", version.Version)
//	defer shutdown(context.Background())
//
//	ctx, span := observability.StartSpan(ctx, "pipeline.process")
//	defer span.End()
package observability
