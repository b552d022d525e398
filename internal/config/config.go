// Package config loads stickerbot settings from defaults, an optional YAML
// file, a .env file and the environment, in increasing precedence.
package config

import (
	"time"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Gemini  GeminiConfig  `mapstructure:"gemini"`
	OpenAI  OpenAIConfig  `mapstructure:"openai"`
	Sticker StickerConfig `mapstructure:"sticker"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	LogLevel        string        `mapstructure:"log_level" validate:"oneof=debug info warn warning error"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	// RateLimit is requests per second on /generate; zero disables limiting.
	RateLimit      float64  `mapstructure:"rate_limit" validate:"gte=0"`
	RateBurst      int      `mapstructure:"rate_burst" validate:"gte=0"`
	AllowedOrigins []string `mapstructure:"allowed_origins" validate:"min=1"`
}

// GeminiConfig drives the concept model. APIKeyParam names an SSM parameter
// used when APIKey is empty.
type GeminiConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	APIKeyParam string        `mapstructure:"api_key_param"`
	Model       string        `mapstructure:"model" validate:"required"`
	BaseURL     string        `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type OpenAIConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	APIKeyParam string        `mapstructure:"api_key_param"`
	BaseURL     string        `mapstructure:"base_url" validate:"required,url"`
	Model       string        `mapstructure:"model" validate:"required"`
	Size        string        `mapstructure:"size" validate:"required"`
	Quality     string        `mapstructure:"quality" validate:"required"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type StickerConfig struct {
	BorderRadius  int           `mapstructure:"border_radius" validate:"gte=0,lte=256"`
	Segmenter     string        `mapstructure:"segmenter" validate:"oneof=floodfill rembg none"`
	Tolerance     int           `mapstructure:"tolerance" validate:"gte=0,lte=255"`
	RembgURL      string        `mapstructure:"rembg_url" validate:"required_if=Segmenter rembg,omitempty,url"`
	RembgTimeout  time.Duration `mapstructure:"rembg_timeout" validate:"gt=0"`
	MaxConcurrent int64         `mapstructure:"max_concurrent" validate:"gte=1"`
}

func (c *Config) Credentials() Credentials {
	return Credentials{GeminiKey: c.Gemini.APIKey, OpenAIKey: c.OpenAI.APIKey}
}
