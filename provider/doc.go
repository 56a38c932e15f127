// Package provider defines the backend abstraction every pipeline stage
// talks to. A stage provider is a RequestResponse[I, O]; cross-cutting
// behaviour is layered on with Middleware:
//
//	p := provider.Chain(
//		provider.WithLogging[transcription.Request, transcription.Result](log),
//		provider.WithMetrics[transcription.Request, transcription.Result](metrics),
//		provider.WithTracing[transcription.Request, transcription.Result]("transcription"),
//		provider.WithResilience[transcription.Request, transcription.Result](resCfg),
//	)(whisperClient)
//
// Backends register factories in a Registry keyed by name so configuration
// can choose between them.
package provider
