package app

import (
	"fmt"
	"slices"
	"time"

	"github.com/kbukum/linguacast/api"
	"github.com/kbukum/linguacast/auth"
	"github.com/kbukum/linguacast/config"
	"github.com/kbukum/linguacast/database"
	"github.com/kbukum/linguacast/history"
	"github.com/kbukum/linguacast/kafka"
	"github.com/kbukum/linguacast/observability"
	"github.com/kbukum/linguacast/pipeline"
	"github.com/kbukum/linguacast/provider"
	"github.com/kbukum/linguacast/redis"
	"github.com/kbukum/linguacast/resilience"
	"github.com/kbukum/linguacast/server"
	"github.com/kbukum/linguacast/storage"
	"github.com/kbukum/linguacast/translation"
	"github.com/kbukum/linguacast/validation"
)

// ServiceName is the name config files and env files are discovered by.
const ServiceName = "linguacast"

// History backends.
const (
	HistorySupabase = "supabase"
	HistorySQL      = "sql"
	HistoryNone     = "none"
)

// BackendNone disables an optional stage backend.
const BackendNone = "none"

// Config is the full service configuration.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	// FrontendURL is added to the CORS origins ahead of the configured ones.
	FrontendURL string `yaml:"frontend_url" mapstructure:"frontend_url"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Auth          auth.Config          `yaml:"auth" mapstructure:"auth"`
	API           api.Config           `yaml:"api" mapstructure:"api"`
	Pipeline      pipeline.Config      `yaml:"pipeline" mapstructure:"pipeline"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	Providers     ProvidersConfig      `yaml:"providers" mapstructure:"providers"`
	History       HistoryConfig        `yaml:"history" mapstructure:"history"`
	Database      database.Config      `yaml:"database" mapstructure:"database"`
	Redis         redis.Config         `yaml:"redis" mapstructure:"redis"`
	Storage       storage.Config       `yaml:"storage" mapstructure:"storage"`
	Kafka         kafka.Config         `yaml:"kafka" mapstructure:"kafka"`
}

// ProvidersConfig selects the backend of every pipeline stage.
type ProvidersConfig struct {
	Translation   TranslationConfig `yaml:"translation" mapstructure:"translation"`
	Transcription StageConfig       `yaml:"transcription" mapstructure:"transcription"`
	Diarization   StageConfig       `yaml:"diarization" mapstructure:"diarization"`
	Synthesis     StageConfig       `yaml:"synthesis" mapstructure:"synthesis"`
}

// StageConfig names a registered backend and passes it settings.
type StageConfig struct {
	// Backend is a registered factory name, or "none" for optional stages.
	Backend    string                    `yaml:"backend" mapstructure:"backend" validate:"required"`
	Settings   map[string]any            `yaml:"settings" mapstructure:"settings"`
	Resilience provider.ResilienceConfig `yaml:"resilience" mapstructure:"resilience"`
}

// TranslationConfig adds call spacing and caching to StageConfig.
type TranslationConfig struct {
	StageConfig `yaml:",inline" mapstructure:",squash"`
	// MinInterval spaces calls to the backend.
	MinInterval time.Duration `yaml:"min_interval" mapstructure:"min_interval"`
	// CacheTTL keeps translations in redis when redis is enabled.
	CacheTTL time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// HistoryConfig selects where translation history is stored.
type HistoryConfig struct {
	Provider string                 `yaml:"provider" mapstructure:"provider" validate:"oneof=supabase sql none"`
	Supabase history.SupabaseConfig `yaml:"supabase" mapstructure:"supabase"`
}

func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	if c.FrontendURL != "" && !slices.Contains(c.Server.CORS.AllowedOrigins, c.FrontendURL) {
		c.Server.CORS.AllowedOrigins = append([]string{c.FrontendURL}, c.Server.CORS.AllowedOrigins...)
	}
	c.Auth.ApplyDefaults()
	c.API.ApplyDefaults()
	c.Pipeline.ApplyDefaults()
	c.Observability.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.Kafka.ApplyDefaults()

	if c.Providers.Translation.Backend == "" {
		c.Providers.Translation.Backend = "mymemory"
	}
	if c.Providers.Translation.MinInterval <= 0 {
		c.Providers.Translation.MinInterval = translation.MinInterval
	}
	if c.Providers.Transcription.Backend == "" {
		c.Providers.Transcription.Backend = "whisper"
	}
	if c.Providers.Diarization.Backend == "" {
		c.Providers.Diarization.Backend = "pyannote"
	}
	if c.Providers.Synthesis.Backend == "" {
		c.Providers.Synthesis.Backend = "speecht5"
	}
	if c.Providers.Synthesis.Resilience.IsEmpty() {
		c.Providers.Synthesis.Resilience.CircuitBreaker = ptr(resilience.DefaultCircuitBreakerConfig("synthesis"))
	}

	if c.History.Provider == "" {
		c.History.Provider = HistorySupabase
	}
	if c.History.Provider == HistorySQL {
		c.Database.Enabled = true
		c.Database.Migrate = true
	}
	if c.Storage.Provider == storage.ProviderSupabase {
		if c.Storage.URL == "" {
			c.Storage.URL = c.History.Supabase.URL
		}
		if c.Storage.Key == "" {
			c.Storage.Key = c.History.Supabase.Key
		}
	}
}

// Validate checks every section. Missing persistence credentials abort
// startup.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(c); err != nil {
		return err
	}

	switch c.History.Provider {
	case HistorySupabase:
		if c.History.Supabase.URL == "" || c.History.Supabase.Key == "" {
			return fmt.Errorf("history: supabase url and key are required (set SUPABASE_URL and SUPABASE_KEY)")
		}
	case HistorySQL:
		if c.Database.DSN == "" {
			return fmt.Errorf("history: database.dsn is required for the sql provider")
		}
	}
	if c.Providers.Translation.Backend == BackendNone {
		return fmt.Errorf("providers.translation.backend cannot be %q", BackendNone)
	}
	// Retries would run inside one spacer slot and skip min_interval.
	if c.Providers.Translation.Resilience.Retry != nil {
		return fmt.Errorf("providers.translation.resilience.retry is not supported; calls are spaced by min_interval")
	}

	sections := []struct {
		name string
		fn   func() error
	}{
		{"server", c.Server.Validate},
		{"auth", c.Auth.Validate},
		{"api", c.API.Validate},
		{"observability", c.Observability.Validate},
	}
	for _, s := range sections {
		if err := s.fn(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	if c.Database.Enabled {
		if err := c.Database.Validate(); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if c.Redis.Enabled {
		if err := c.Redis.Validate(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	if c.Storage.Enabled {
		if err := c.Storage.Validate(); err != nil {
			return fmt.Errorf("storage: %w", err)
		}
	}
	if c.Kafka.Enabled {
		if err := c.Kafka.Validate(); err != nil {
			return fmt.Errorf("kafka: %w", err)
		}
	}
	return nil
}

// Load reads the configuration from the config file, the .env file and
// the environment. path overrides config file discovery when set.
func Load(path string) (*Config, error) {
	opts := []config.LoaderOption{
		config.WithEnvAlias("history.supabase.url", "SUPABASE_URL"),
		config.WithEnvAlias("history.supabase.key", "SUPABASE_KEY"),
		config.WithEnvAlias("auth.jwt.secret", "SUPABASE_JWT_SECRET", "JWT_SECRET"),
		config.WithEnvAlias("providers.translation.settings.email", "MYMEMORY_EMAIL"),
		config.WithEnvAlias("providers.diarization.settings.token", "HF_TOKEN"),
		config.WithEnvAlias("frontend_url", "FRONTEND_URL"),
	}
	if path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	var cfg Config
	if err := config.LoadConfig(ServiceName, &cfg, opts...); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func ptr[T any](v T) *T { return &v }
