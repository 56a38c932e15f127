package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/linguacast/errors"
	"github.com/kbukum/linguacast/resilience"
)

// RateLimitConfig configures per-client request limiting.
type RateLimitConfig struct {
	// RequestsPerMinute is the sustained rate per key.
	RequestsPerMinute int `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
	// Burst allows short spikes above the sustained rate.
	Burst int `yaml:"burst" mapstructure:"burst"`
	// KeyFunc extracts the limiting key. Defaults to the user id, then the client IP.
	KeyFunc func(*gin.Context) string `yaml:"-" mapstructure:"-"`
}

// RateLimit applies one token bucket per key. Idle buckets are evicted.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 60
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = UserBasedKey
	}
	limiters := newKeyedLimiters(resilience.RateLimiterConfig{
		Name:  "http",
		Rate:  float64(cfg.RequestsPerMinute) / 60,
		Burst: cfg.Burst,
	})

	return func(c *gin.Context) {
		if !limiters.get(cfg.KeyFunc(c)).Allow() {
			err := apperrors.New(apperrors.ErrCodeRateLimited, "Too many requests. Please slow down.")
			c.AbortWithStatusJSON(err.HTTPStatus, err.ToResponse())
			return
		}
		c.Next()
	}
}

// UserBasedKey uses the authenticated user id, falling back to the client IP.
func UserBasedKey(c *gin.Context) string {
	if uid := c.GetString(ContextKeyUserID); uid != "" {
		return "user:" + uid
	}
	return "ip:" + c.ClientIP()
}

const limiterIdleTTL = 10 * time.Minute

type keyedLimiters struct {
	cfg resilience.RateLimiterConfig

	mu        sync.Mutex
	entries   map[string]*limiterEntry
	lastSweep time.Time
}

type limiterEntry struct {
	rl       *resilience.RateLimiter
	lastSeen time.Time
}

func newKeyedLimiters(cfg resilience.RateLimiterConfig) *keyedLimiters {
	return &keyedLimiters{cfg: cfg, entries: make(map[string]*limiterEntry), lastSweep: time.Now()}
}

func (k *keyedLimiters) get(key string) *resilience.RateLimiter {
	now := time.Now()
	k.mu.Lock()
	defer k.mu.Unlock()

	if now.Sub(k.lastSweep) > limiterIdleTTL {
		for key, e := range k.entries {
			if now.Sub(e.lastSeen) > limiterIdleTTL {
				delete(k.entries, key)
			}
		}
		k.lastSweep = now
	}

	e, ok := k.entries[key]
	if !ok {
		e = &limiterEntry{rl: resilience.NewRateLimiter(k.cfg)}
		k.entries[key] = e
	}
	e.lastSeen = now
	return e.rl
}
