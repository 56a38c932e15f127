package storage

import (
	"time"

	"github.com/kbukum/linguacast/validation"
)

const (
	ProviderLocal    = "local"
	ProviderS3       = "s3"
	ProviderSupabase = "supabase"
)

const (
	DefaultProvider = ProviderLocal
	DefaultBucket   = "translations-audio"
	DefaultBasePath = "/tmp/linguacast"
	DefaultRegion   = "us-east-1"
	DefaultTimeout  = 30 * time.Second
)

// Config selects a blob backend. Only the fields of the chosen provider
// are read.
type Config struct {
	Enabled  bool   `mapstructure:"enabled"`
	Provider string `mapstructure:"provider" validate:"oneof=local s3 supabase"`
	// Bucket holds synthesized clips; the local backend uses it as a
	// subdirectory of BasePath.
	Bucket string `mapstructure:"bucket" validate:"required"`

	BasePath string `mapstructure:"base_path" validate:"required_if=Provider local"`
	// PublicURL prefixes local object URLs. Empty yields file:// URLs.
	PublicURL string `mapstructure:"public_url" validate:"omitempty,url"`

	Region         string `mapstructure:"region" validate:"required_if=Provider s3"`
	Endpoint       string `mapstructure:"endpoint" validate:"omitempty,url"`
	AccessKey      string `mapstructure:"access_key" validate:"required_with=SecretKey"`
	SecretKey      string `mapstructure:"secret_key" validate:"required_with=AccessKey"`
	ForcePathStyle bool   `mapstructure:"force_path_style"`

	URL string `mapstructure:"url" validate:"required_if=Provider supabase,omitempty,url"`
	Key string `mapstructure:"key" validate:"required_if=Provider supabase"`

	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	if c.Bucket == "" {
		c.Bucket = DefaultBucket
	}
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
}

// Validate checks the fields the selected provider needs. A disabled
// store is always valid.
func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.Validate(c)
}
