package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/dmorgan81/stickerbot/internal/concept"
	"github.com/dmorgan81/stickerbot/internal/image"
	"github.com/dmorgan81/stickerbot/internal/sticker"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix applies to every setting except the API keys, which keep the
// names the deployment already uses.
const EnvPrefix = "STICKERBOT"

var validate = validator.New()

// Load reads configuration. path may be empty; envFiles default to ".env"
// and missing ones are ignored.
func Load(path string, envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindKeys(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Gemini.APIKey = strings.TrimSpace(cfg.Gemini.APIKey)
	cfg.OpenAI.APIKey = strings.TrimSpace(cfg.OpenAI.APIKey)

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 3*time.Minute)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.rate_limit", 0)
	v.SetDefault("server.rate_burst", 1)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.api_key_param", "")
	v.SetDefault("gemini.model", concept.DefaultGeminiModel)
	v.SetDefault("gemini.base_url", "")
	v.SetDefault("gemini.timeout", time.Minute)

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.api_key_param", "")
	v.SetDefault("openai.base_url", image.DefaultOpenAIURL)
	v.SetDefault("openai.model", image.DefaultModel)
	v.SetDefault("openai.size", image.DefaultSize)
	v.SetDefault("openai.quality", image.DefaultQuality)
	v.SetDefault("openai.timeout", 2*time.Minute)

	v.SetDefault("sticker.border_radius", sticker.DefaultRadius)
	v.SetDefault("sticker.segmenter", "floodfill")
	v.SetDefault("sticker.tolerance", sticker.DefaultTolerance)
	v.SetDefault("sticker.rembg_url", "")
	v.SetDefault("sticker.rembg_timeout", time.Minute)
	v.SetDefault("sticker.max_concurrent", 4)
}

func bindKeys(v *viper.Viper) {
	_ = v.BindEnv("gemini.api_key", "GOOGLE_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("gemini.api_key_param", "GOOGLE_API_KEY_PARAM")
	_ = v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("openai.api_key_param", "OPENAI_API_KEY_PARAM")
	_ = v.BindEnv("server.addr", EnvPrefix+"_SERVER_ADDR", "ADDR")
}
