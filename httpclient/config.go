package httpclient

import (
	"net/http"
	"time"

	"github.com/kbukum/linguacast/resilience"
	"github.com/kbukum/linguacast/validation"
)

const (
	defaultTimeout          = 30 * time.Second
	defaultMaxResponseBytes = 64 << 20
)

// Config configures a Client. Resilience policies stay off unless set;
// Resilient turns on the pair every hosted backend uses.
type Config struct {
	BaseURL string            `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout time.Duration     `mapstructure:"timeout" validate:"gt=0"`
	Headers map[string]string `mapstructure:"headers"`
	// MaxResponseBytes caps a read response body. Synthesized WAV
	// responses are the largest bodies this client sees.
	MaxResponseBytes int64 `mapstructure:"max_response_bytes" validate:"gt=0"`

	Auth           *AuthConfig                      `mapstructure:"-"`
	Retry          *resilience.RetryConfig          `mapstructure:"-"`
	CircuitBreaker *resilience.CircuitBreakerConfig `mapstructure:"-"`
	RateLimiter    *resilience.RateLimiterConfig    `mapstructure:"-"`
	// Transport replaces the cloned default transport.
	Transport http.RoundTripper `mapstructure:"-"`
}

// Resilient returns a copy of c that retries transient failures and
// trips a breaker named name.
func (c Config) Resilient(name string) Config {
	c.Retry = DefaultRetryConfig()
	c.CircuitBreaker = DefaultCircuitBreakerConfig(name)
	return c
}

func (c *Config) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxResponseBytes == 0 {
		c.MaxResponseBytes = defaultMaxResponseBytes
	}
}

func (c *Config) Validate() error {
	return validation.Validate(c)
}

// DefaultRetryConfig retries only errors classified as retryable.
func DefaultRetryConfig() *resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.RetryIf = IsRetryable
	return &cfg
}

// DefaultCircuitBreakerConfig counts only retryable failures; a 400 from
// a sidecar leaves the circuit closed.
func DefaultCircuitBreakerConfig(name string) *resilience.CircuitBreakerConfig {
	cfg := resilience.DefaultCircuitBreakerConfig(name)
	cfg.IsFailure = IsRetryable
	return &cfg
}
