// Package resilience holds the fault-tolerance primitives shared by the
// pipeline stages and their HTTP clients:
//
//   - Spacer serializes calls and keeps a minimum gap between them
//   - Bulkhead bounds how many segments are processed at once
//   - Retry re-runs transient failures with exponential backoff
//   - CircuitBreaker fails fast while a sidecar is down
//   - RateLimiter is a token bucket for inbound frames
//
// They compose by nesting closures:
//
//	err := breaker.Execute(func() error {
//		return resilience.RetryFunc(ctx, retryCfg, func() error {
//			return spacer.Do(ctx, call)
//		})
//	})
package resilience
