// Package redis wraps go-redis with the service logger, configuration
// conventions and component lifecycle.
//
// TypedStore stores JSON values under a key prefix; the translation cache
// is built on it:
//
//	store := redis.NewTypedStore[cachedTranslation](client, "translation")
//	_ = store.Save(ctx, key, &entry, 24*time.Hour)
//	got, _ := store.Load(ctx, key) // nil, nil when missing
package redis
