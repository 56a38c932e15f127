package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/kbukum/linguacast/logger"
)

func miniClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := New(Config{Enabled: true, Addr: mr.Addr()}, logger.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

type cachedTranslation struct {
	Text     string   `json:"text"`
	Langs    []string `json:"langs,omitempty"`
	Provider string   `json:"provider"`
}

func TestTypedStoreRoundTripAndDelete(t *testing.T) {
	c, _ := miniClient(t)
	store := NewTypedStore[cachedTranslation](c, "tr")
	ctx := context.Background()

	if got, err := store.Load(ctx, "es:hello"); err != nil || got != nil {
		t.Fatalf("miss = %+v, %v", got, err)
	}
	want := cachedTranslation{Text: "Hola", Langs: []string{"en", "es"}, Provider: "mymemory"}
	if err := store.Save(ctx, "es:hello", &want, 0); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load(ctx, "es:hello")
	if err != nil || got == nil || got.Text != want.Text || len(got.Langs) != 2 {
		t.Fatalf("Load = %+v, %v", got, err)
	}
	if err := store.Delete(ctx, "es:hello"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := store.Load(ctx, "es:hello"); got != nil {
		t.Errorf("after Delete = %+v", got)
	}
}

func TestTypedStoreExpiry(t *testing.T) {
	c, mr := miniClient(t)
	store := NewTypedStore[cachedTranslation](c, "tr")
	ctx := context.Background()

	_ = store.Save(ctx, "k", &cachedTranslation{Text: "x"}, time.Minute)
	if ttl := mr.TTL("tr:k"); ttl != time.Minute {
		t.Errorf("ttl = %v", ttl)
	}
	mr.FastForward(2 * time.Minute)
	if got, err := store.Load(ctx, "k"); err != nil || got != nil {
		t.Errorf("after expiry = %+v, %v", got, err)
	}
}

func TestTypedStoreKeys(t *testing.T) {
	c, mr := miniClient(t)
	ctx := context.Background()
	for ns, want := range map[string]string{"tr": "tr:k", "": "k"} {
		_ = NewTypedStore[cachedTranslation](c, ns).Save(ctx, "k", &cachedTranslation{Text: ns}, 0)
		if !mr.Exists(want) {
			t.Errorf("namespace %q: key %q missing, have %v", ns, want, mr.Keys())
		}
	}
}

func TestTypedStoreCorruptValue(t *testing.T) {
	c, mr := miniClient(t)
	_ = mr.Set("tr:bad", "{not json")
	if _, err := NewTypedStore[cachedTranslation](c, "tr").Load(context.Background(), "bad"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestNewDisabled(t *testing.T) {
	if _, err := New(Config{}, logger.Nop()); !errors.Is(err, ErrDisabled) {
		t.Fatalf("err = %v, want ErrDisabled", err)
	}
}

func TestConfigValidate(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"negative timeout":     func(c *Config) { c.ReadTimeout = -time.Second },
		"address without port": func(c *Config) { c.Addr = "cache" },
		"db out of range":      func(c *Config) { c.DB = 16 },
		"idle above pool":      func(c *Config) { c.MinIdleConns = c.PoolSize + 1 },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := Config{Enabled: true}
			cfg.ApplyDefaults()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}
