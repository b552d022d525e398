package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmorgan81/stickerbot/internal/fault"
	"github.com/dmorgan81/stickerbot/internal/log"
	"github.com/dmorgan81/stickerbot/internal/param"
	"github.com/samber/lo"
)

var placeholders = []string{"dummy_key", "your-api-key", "your_api_key", "changeme", "xxx"}

// Credentials are the two upstream API keys. They are checked per request
// so a process with missing keys still starts and answers health probes.
type Credentials struct {
	GeminiKey string
	OpenAIKey string
}

func (c Credentials) Validate() error {
	var errs []error
	if !usable(c.GeminiKey) {
		errs = append(errs, fmt.Errorf("%w: Google API key not configured. Please set GOOGLE_API_KEY environment variable", fault.ErrConfiguration))
	}
	if !usable(c.OpenAIKey) {
		errs = append(errs, fmt.Errorf("%w: OpenAI API key not configured. Please set OPENAI_API_KEY environment variable", fault.ErrConfiguration))
	}
	return errors.Join(errs...)
}

func usable(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	return key != "" && !lo.Contains(placeholders, key)
}

// ResolveSecrets fills empty API keys from the parameter store when a
// parameter path is configured. Lookup failures are logged and leave the key
// empty; the request path reports them as configuration errors.
func (c *Config) ResolveSecrets(ctx context.Context, fetcher param.Fetcher) {
	log := log.FromContextOrDiscard(ctx).WithGroup("config")
	for _, s := range []struct {
		name  string
		path  string
		value *string
	}{
		{"gemini", c.Gemini.APIKeyParam, &c.Gemini.APIKey},
		{"openai", c.OpenAI.APIKeyParam, &c.OpenAI.APIKey},
	} {
		if *s.value != "" || s.path == "" {
			continue
		}
		v, err := fetcher.Fetch(ctx, s.path)
		if err != nil {
			log.Warn("could not fetch api key", "service", s.name, "path", s.path, "error", err)
			continue
		}
		*s.value = strings.TrimSpace(v)
	}
}

// NeedsParameterStore reports whether any key must come from SSM.
func (c *Config) NeedsParameterStore() bool {
	return (c.Gemini.APIKey == "" && c.Gemini.APIKeyParam != "") ||
		(c.OpenAI.APIKey == "" && c.OpenAI.APIKeyParam != "")
}
