package translation

import (
	"context"
	"encoding/hex"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/kbukum/linguacast/redis"
)

const defaultCacheTTL = 24 * time.Hour

// Cache stores successful translations.
type Cache interface {
	Get(ctx context.Context, req Request) (string, bool, error)
	Set(ctx context.Context, req Request, translated string) error
}

type cachedTranslation struct {
	Text       string    `json:"text"`
	Source     string    `json:"source_lang"`
	Target     string    `json:"target_lang"`
	Translated string    `json:"translated_text"`
	CachedAt   time.Time `json:"cached_at"`
}

// RedisCache is a Cache on a redis.TypedStore.
type RedisCache struct {
	store *redis.TypedStore[cachedTranslation]
	ttl   time.Duration
}

var _ Cache = (*RedisCache)(nil)

// NewRedisCache stores entries under "translation:<hash>" for ttl
// (24h when zero).
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RedisCache{store: redis.NewTypedStore[cachedTranslation](client, "translation"), ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, req Request) (string, bool, error) {
	entry, err := c.store.Load(ctx, cacheKey(req))
	if err != nil || entry == nil {
		return "", false, err
	}
	// Guard against hash collisions.
	if entry.Text != req.Text || entry.Source != req.Source || entry.Target != req.Target {
		return "", false, nil
	}
	return entry.Translated, true, nil
}

func (c *RedisCache) Set(ctx context.Context, req Request, translated string) error {
	return c.store.Save(ctx, cacheKey(req), &cachedTranslation{
		Text:       req.Text,
		Source:     req.Source,
		Target:     req.Target,
		Translated: translated,
		CachedAt:   time.Now().UTC(),
	}, c.ttl)
}

func cacheKey(req Request) string {
	sum := blake2b.Sum256([]byte(strings.Join([]string{req.Source, req.Target, req.Text}, "\x00")))
	return hex.EncodeToString(sum[:])
}
