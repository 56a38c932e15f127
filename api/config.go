package api

import (
	"errors"
	"time"

	"github.com/kbukum/linguacast/server/middleware"
)

// Config configures the API surface.
type Config struct {
	DefaultSourceLang string `yaml:"default_source_lang" mapstructure:"default_source_lang"`
	DefaultTargetLang string `yaml:"default_target_lang" mapstructure:"default_target_lang"`
	// HistoryLimit caps GET /translations. Zero or less returns everything.
	HistoryLimit int `yaml:"history_limit" mapstructure:"history_limit"`
	// RecordTimeout bounds history writes of /translate.
	RecordTimeout time.Duration `yaml:"record_timeout" mapstructure:"record_timeout"`

	RateLimit middleware.RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	WebSocket WebSocketConfig            `yaml:"websocket" mapstructure:"websocket"`
}

// WebSocketConfig tunes websocket sessions.
type WebSocketConfig struct {
	PingInterval   time.Duration `yaml:"ping_interval" mapstructure:"ping_interval"`
	PongWait       time.Duration `yaml:"pong_wait" mapstructure:"pong_wait"`
	WriteWait      time.Duration `yaml:"write_wait" mapstructure:"write_wait"`
	MaxMessageSize int64         `yaml:"max_message_size" mapstructure:"max_message_size"`
	// QueueSize is the number of received frames waiting for processing.
	QueueSize int `yaml:"queue_size" mapstructure:"queue_size"`
	// FramesPerSecond and FrameBurst limit audio frames per session.
	FramesPerSecond float64 `yaml:"frames_per_second" mapstructure:"frames_per_second"`
	FrameBurst      int     `yaml:"frame_burst" mapstructure:"frame_burst"`
	// AllowedOrigins restricts the Origin header of upgrades. Empty or "*" allows any.
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

func (c *Config) ApplyDefaults() {
	if c.DefaultSourceLang == "" {
		c.DefaultSourceLang = "en"
	}
	if c.DefaultTargetLang == "" {
		c.DefaultTargetLang = "es"
	}
	if c.HistoryLimit == 0 {
		c.HistoryLimit = 100
	}
	if c.RecordTimeout <= 0 {
		c.RecordTimeout = 10 * time.Second
	}
	if c.RateLimit.RequestsPerMinute == 0 {
		c.RateLimit.RequestsPerMinute = 60
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 10
	}
	c.WebSocket.ApplyDefaults()
}

func (c *Config) Validate() error {
	if c.RateLimit.RequestsPerMinute < 0 {
		return errors.New("api.rate_limit.requests_per_minute must be non-negative")
	}
	return c.WebSocket.Validate()
}

func (c *WebSocketConfig) ApplyDefaults() {
	if c.PongWait <= 0 {
		c.PongWait = 60 * time.Second
	}
	if c.PingInterval <= 0 {
		c.PingInterval = c.PongWait * 9 / 10
	}
	if c.WriteWait <= 0 {
		c.WriteWait = 10 * time.Second
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = 25 << 20
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 8
	}
	if c.FramesPerSecond <= 0 {
		c.FramesPerSecond = 5
	}
	if c.FrameBurst <= 0 {
		c.FrameBurst = 10
	}
}

func (c *WebSocketConfig) Validate() error {
	if c.PingInterval >= c.PongWait {
		return errors.New("api.websocket.ping_interval must be shorter than pong_wait")
	}
	return nil
}
