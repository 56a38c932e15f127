package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/linguacast/logger"
	"github.com/kbukum/linguacast/provider"
	"github.com/kbukum/linguacast/resilience"
	"github.com/kbukum/linguacast/translation"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.History.Supabase.URL = "https://project.supabase.co"
	cfg.History.Supabase.Key = "service-key"
	cfg.ApplyDefaults()
	return cfg
}

func TestConfigDefaults(t *testing.T) {
	cfg := validConfig()
	if cfg.Name != ServiceName {
		t.Errorf("name = %q", cfg.Name)
	}
	p := cfg.Providers
	if p.Translation.Backend != "mymemory" || p.Transcription.Backend != "whisper" ||
		p.Diarization.Backend != "pyannote" || p.Synthesis.Backend != "speecht5" {
		t.Errorf("unexpected backends %+v", p)
	}
	if p.Translation.MinInterval != translation.MinInterval {
		t.Errorf("min interval = %v", p.Translation.MinInterval)
	}
	if p.Synthesis.Resilience.CircuitBreaker == nil {
		t.Error("synthesis should default to a circuit breaker")
	}
	if cfg.History.Provider != HistorySupabase {
		t.Errorf("history provider = %q", cfg.History.Provider)
	}
}

func TestConfigFrontendURLJoinsCORSOrigins(t *testing.T) {
	cfg := &Config{FrontendURL: "http://localhost:5173"}
	cfg.ApplyDefaults()
	got := cfg.Server.CORS.AllowedOrigins
	if len(got) != 2 || got[0] != "http://localhost:5173" || got[1] != "*" {
		t.Errorf("origins = %v", got)
	}
	cfg.ApplyDefaults()
	if len(cfg.Server.CORS.AllowedOrigins) != 2 {
		t.Errorf("ApplyDefaults must not add the frontend twice: %v", cfg.Server.CORS.AllowedOrigins)
	}
}

func TestConfigSQLHistoryEnablesDatabase(t *testing.T) {
	cfg := &Config{}
	cfg.History.Provider = HistorySQL
	cfg.Database.DSN = "file::memory:?cache=shared"
	cfg.ApplyDefaults()
	if !cfg.Database.Enabled || !cfg.Database.Migrate {
		t.Fatalf("sql history must enable and migrate the database: %+v", cfg.Database)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing supabase url", func(c *Config) { c.History.Supabase.URL = "" }, "SUPABASE_URL"},
		{"missing supabase key", func(c *Config) { c.History.Supabase.Key = "" }, "SUPABASE_KEY"},
		{"sql without dsn", func(c *Config) { c.History.Provider = HistorySQL }, "database.dsn"},
		{"history disabled", func(c *Config) {
			c.History.Provider = HistoryNone
			c.History.Supabase.URL, c.History.Supabase.Key = "", ""
		}, ""},
		{"unknown history provider", func(c *Config) { c.History.Provider = "mongo" }, "must be one of"},
		{"translation disabled", func(c *Config) { c.Providers.Translation.Backend = BackendNone }, "cannot be"},
		{"optional stage disabled", func(c *Config) { c.Providers.Synthesis.Backend = BackendNone }, ""},
		{"translation retry", func(c *Config) {
			c.Providers.Translation.Resilience.Retry = ptr(resilience.DefaultRetryConfig())
		}, "providers.translation.resilience.retry"},
		{"bad environment", func(c *Config) { c.Environment = "qa" }, "environment"},
		{"auth without secret", func(c *Config) { c.Auth.Enabled = true; c.Auth.JWT.Secret = "" }, "auth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadReadsFileAndAliases(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	yml := `
name: linguacast-test
environment: staging
providers:
  translation:
    backend: mymemory
    min_interval: 2s
    settings:
      base_url: http://translate.local
pipeline:
  max_parallel: 2
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SUPABASE_URL", "https://alias.supabase.co")
	t.Setenv("SUPABASE_KEY", "alias-key")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	cfg.ApplyDefaults()
	if cfg.Name != "linguacast-test" || cfg.Environment != "staging" {
		t.Errorf("service fields not loaded: %+v", cfg.ServiceConfig)
	}
	if cfg.Pipeline.MaxParallel != 2 {
		t.Errorf("max_parallel = %d", cfg.Pipeline.MaxParallel)
	}
	if cfg.Providers.Translation.MinInterval != 2*time.Second {
		t.Errorf("min_interval = %v", cfg.Providers.Translation.MinInterval)
	}
	if got := provider.Settings(cfg.Providers.Translation.Settings).String("base_url"); got != "http://translate.local" {
		t.Errorf("base_url = %q", got)
	}
	if cfg.History.Supabase.URL != "https://alias.supabase.co" || cfg.History.Supabase.Key != "alias-key" {
		t.Errorf("supabase aliases not applied: %+v", cfg.History.Supabase)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

type echoTranslator struct {
	calls int
	err   error
}

func (e *echoTranslator) Name() string                     { return "echo" }
func (e *echoTranslator) IsAvailable(context.Context) bool { return true }
func (e *echoTranslator) Execute(_ context.Context, req translation.Request) (*translation.Response, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return &translation.Response{Text: req.Source + ":" + req.Text}, nil
}

func echoRegistry(backend *echoTranslator) *provider.Registry[translation.Provider] {
	reg := translation.NewRegistry()
	reg.Register("echo", func(map[string]any) (translation.Provider, error) { return backend, nil })
	return reg
}

func TestBuildProviderWrapsBackend(t *testing.T) {
	backend := &echoTranslator{}
	p, err := buildProvider(echoRegistry(backend), "translation", StageConfig{Backend: "echo"}, nil, logger.Nop())
	if err != nil {
		t.Fatalf("buildProvider() = %v", err)
	}
	if p.Name() != "echo" {
		t.Errorf("Name() = %q", p.Name())
	}
	resp, err := p.Execute(context.Background(), translation.Request{Text: "hi", Source: "en", Target: "fr"})
	if err != nil || resp.Text != "en:hi" {
		t.Fatalf("Execute() = %+v, %v", resp, err)
	}
}

func TestBuildProviderAppliesRetry(t *testing.T) {
	backend := &echoTranslator{err: errors.New("unreachable")}
	cfg := StageConfig{
		Backend: "echo",
		Resilience: provider.ResilienceConfig{
			Retry: &resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond},
		},
	}
	p, err := buildProvider(echoRegistry(backend), "translation", cfg, nil, logger.Nop())
	if err != nil {
		t.Fatalf("buildProvider() = %v", err)
	}
	if _, err := p.Execute(context.Background(), translation.Request{Text: "hi"}); err == nil {
		t.Fatal("expected the backend error")
	}
	if backend.calls != 3 {
		t.Errorf("calls = %d, want 3", backend.calls)
	}
}

func TestBuildProviderNoneAndUnknown(t *testing.T) {
	reg := echoRegistry(&echoTranslator{})
	p, err := buildProvider(reg, "translation", StageConfig{Backend: BackendNone}, nil, logger.Nop())
	if err != nil || p != nil {
		t.Fatalf("none backend = %v, %v", p, err)
	}
	if _, err := buildProvider(reg, "translation", StageConfig{Backend: "deepl"}, nil, logger.Nop()); err == nil {
		t.Fatal("expected an error for an unregistered backend")
	}
}

func TestDefaultRegistries(t *testing.T) {
	r := DefaultRegistries()
	checks := map[string][]string{
		"translation":   r.Translation.Names(),
		"transcription": r.Transcription.Names(),
		"diarization":   r.Diarization.Names(),
		"synthesis":     r.Synthesis.Names(),
	}
	want := map[string]string{
		"translation":   "mymemory",
		"transcription": "whisper",
		"diarization":   "pyannote",
		"synthesis":     "speecht5",
	}
	for stage, names := range checks {
		if len(names) != 1 || names[0] != want[stage] {
			t.Errorf("%s registry = %v, want [%s]", stage, names, want[stage])
		}
	}
}
