package auth

import (
	"fmt"

	"github.com/kbukum/linguacast/auth/jwt"
)

// Config holds authentication settings.
type Config struct {
	// Enabled turns on token validation. When false, authenticated routes
	// answer 401 and optional tokens are ignored.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	JWT jwt.Config `yaml:"jwt" mapstructure:"jwt"`
}

func (c *Config) ApplyDefaults() {
	c.JWT.ApplyDefaults()
}

func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if err := c.JWT.Validate(); err != nil {
		return fmt.Errorf("auth.jwt: %w", err)
	}
	return nil
}

// Describe returns a one-liner for the startup summary, e.g. "JWT(HS256) aud=[authenticated]".
func (c *Config) Describe() string {
	if !c.Enabled {
		return "disabled"
	}
	line := fmt.Sprintf("JWT(%s)", c.JWT.Method)
	if len(c.JWT.Audience) > 0 {
		line += fmt.Sprintf(" aud=%v", c.JWT.Audience)
	}
	return line
}
