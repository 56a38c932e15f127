package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/linguacast/component"
	"github.com/kbukum/linguacast/logger"
)

type memStorage struct {
	objects map[string][]byte
	failURL bool
}

func newMem() *memStorage { return &memStorage{objects: map[string][]byte{}} }

func (m *memStorage) Upload(_ context.Context, p string, r io.Reader, _ string) error {
	data, err := io.ReadAll(r)
	m.objects[p] = data
	return err
}

func (m *memStorage) Delete(_ context.Context, p string) error { delete(m.objects, p); return nil }

func (m *memStorage) URL(_ context.Context, p string) (string, error) {
	if m.failURL {
		return "", errors.New("no url")
	}
	return "mem://" + p, nil
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"disabled", Config{Provider: "ftp"}, false},
		{"local", Config{Enabled: true, Provider: ProviderLocal}, false},
		{"supabase missing key", Config{Enabled: true, Provider: ProviderSupabase, URL: "http://x"}, true},
		{"supabase ok", Config{Enabled: true, Provider: ProviderSupabase, URL: "http://x", Key: "k"}, false},
		{"s3 ok", Config{Enabled: true, Provider: ProviderS3}, false},
		{"unknown", Config{Enabled: true, Provider: "ftp"}, true},
		{"s3 endpoint not a url", Config{Enabled: true, Provider: ProviderS3, Endpoint: "minio"}, true},
		{"s3 half credentials", Config{Enabled: true, Provider: ProviderS3, AccessKey: "a"}, true},
		{"negative timeout", Config{Enabled: true, Timeout: -time.Second}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.ApplyDefaults()
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Bucket != "translations-audio" || cfg.Provider != ProviderLocal {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestNewUnregisteredProvider(t *testing.T) {
	_, err := New(Config{Enabled: true, Provider: ProviderS3}, logger.Nop())
	if err == nil || !strings.Contains(err.Error(), "not registered") {
		t.Fatalf("err = %v", err)
	}
}

func TestFactoryRegistration(t *testing.T) {
	mem := newMem()
	RegisterFactory("mem-test", func(Config, *logger.Logger) (Storage, error) { return mem, nil })
	factoriesMu.RLock()
	_, ok := factories["mem-test"]
	factoriesMu.RUnlock()
	if !ok {
		t.Fatal("factory not registered")
	}
}

func TestUploadProvider(t *testing.T) {
	mem := newMem()
	p := NewUploadProvider("audio", mem)
	if !p.IsAvailable(context.Background()) {
		t.Fatal("expected available")
	}
	resp, err := p.Execute(context.Background(), UploadRequest{Path: "u/1.wav", Data: []byte("RIFF"), ContentType: "audio/wav"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if resp.URL != "mem://u/1.wav" || string(mem.objects["u/1.wav"]) != "RIFF" {
		t.Errorf("resp=%+v objects=%v", resp, mem.objects)
	}

	mem.failURL = true
	if _, err := p.Execute(context.Background(), UploadRequest{Path: "u/2.wav"}); err == nil {
		t.Error("expected url error")
	}
}

func TestComponentDisabled(t *testing.T) {
	c := NewComponent(Config{}, logger.Nop())
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c.Storage() != nil {
		t.Error("disabled component must not create storage")
	}
	if h := c.Health(context.Background()); h.Status != component.StatusHealthy || h.Message != "disabled" {
		t.Errorf("health = %+v", h)
	}
}
