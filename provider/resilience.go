package provider

import (
	"context"

	"github.com/kbukum/linguacast/resilience"
)

// ResilienceConfig selects the policies applied around a provider. Nil
// fields are skipped.
type ResilienceConfig struct {
	CircuitBreaker *resilience.CircuitBreakerConfig `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`
	Retry          *resilience.RetryConfig          `yaml:"retry" mapstructure:"retry"`
	Bulkhead       *resilience.BulkheadConfig       `yaml:"-" mapstructure:"-"`
}

func (c ResilienceConfig) IsEmpty() bool {
	return c.CircuitBreaker == nil && c.Retry == nil && c.Bulkhead == nil
}

// WithResilience applies Bulkhead, then CircuitBreaker, then Retry around
// each call. The breaker sees the final outcome after retries.
func WithResilience[I, O any](cfg ResilienceConfig) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		if cfg.IsEmpty() {
			return inner
		}
		r := &resilientRR[I, O]{wrapped: wrapped[I, O]{inner}, retry: cfg.Retry}
		if cfg.CircuitBreaker != nil {
			cbCfg := *cfg.CircuitBreaker
			if cbCfg.Name == "" {
				cbCfg.Name = inner.Name()
			}
			r.breaker = resilience.NewCircuitBreaker(cbCfg)
		}
		if cfg.Bulkhead != nil {
			r.bulkhead = resilience.NewBulkhead(*cfg.Bulkhead)
		}
		return r
	}
}

type resilientRR[I, O any] struct {
	wrapped[I, O]
	breaker  *resilience.CircuitBreaker
	bulkhead *resilience.Bulkhead
	retry    *resilience.RetryConfig
}

// IsAvailable is false while the breaker is open.
func (r *resilientRR[I, O]) IsAvailable(ctx context.Context) bool {
	if r.breaker != nil && r.breaker.State() == resilience.StateOpen {
		return false
	}
	return r.inner.IsAvailable(ctx)
}

func (r *resilientRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	call := func() (O, error) { return r.inner.Execute(ctx, input) }

	if r.retry != nil {
		attempt := call
		call = func() (O, error) { return resilience.Retry(ctx, *r.retry, attempt) }
	}
	if r.breaker != nil {
		guarded := call
		call = func() (O, error) {
			var out O
			err := r.breaker.Execute(func() error {
				var err error
				out, err = guarded()
				return err
			})
			return out, err
		}
	}
	if r.bulkhead != nil {
		return resilience.ExecuteWithResult(r.bulkhead, ctx, call)
	}
	return call()
}
