package inject

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/dmorgan81/stickerbot/internal/concept"
	"github.com/dmorgan81/stickerbot/internal/config"
	"github.com/dmorgan81/stickerbot/internal/handle"
	"github.com/dmorgan81/stickerbot/internal/handler"
	"github.com/dmorgan81/stickerbot/internal/image"
	"github.com/dmorgan81/stickerbot/internal/log"
	"github.com/dmorgan81/stickerbot/internal/param"
	"github.com/dmorgan81/stickerbot/internal/prompt"
	"github.com/dmorgan81/stickerbot/internal/server"
	"github.com/dmorgan81/stickerbot/internal/sticker"
	"github.com/samber/do"
	"golang.org/x/sync/semaphore"
)

// Setup registers every component. Nothing is built until first invoked, so
// AWS is only contacted when a key has to come from the parameter store.
func Setup(ctx context.Context, cfg *config.Config) *do.Injector {
	log := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		},
	})
	do.ProvideValue(injector, log)

	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return awsconfig.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		return ssm.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[param.Fetcher](injector, param.NewParameterStoreFetcher)

	do.Provide[*config.Config](injector, func(i *do.Injector) (*config.Config, error) {
		if cfg.NeedsParameterStore() {
			fetcher, err := do.Invoke[param.Fetcher](i)
			if err != nil {
				log.Warn("parameter store unavailable", "error", err)
				return cfg, nil
			}
			cfg.ResolveSecrets(ctx, fetcher)
		}
		return cfg, nil
	})

	do.Provide[*prompt.Randomizer](injector, prompt.NewRandomizer)
	do.Provide[*prompt.Templator](injector, prompt.NewTemplator)

	do.Provide[concept.Model](injector, func(i *do.Injector) (concept.Model, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return &concept.GeminiModel{
			Key:     cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			Client:  &http.Client{Timeout: cfg.Gemini.Timeout},
			BaseURL: cfg.Gemini.BaseURL,
		}, nil
	})
	do.Provide[handler.ConceptGenerator](injector, func(i *do.Injector) (handler.ConceptGenerator, error) {
		return concept.NewGenerator(i)
	})

	do.Provide[image.Generator](injector, func(i *do.Injector) (image.Generator, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return &image.OpenAIGenerator{
			Client:  &http.Client{Timeout: cfg.OpenAI.Timeout},
			Key:     cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
			Size:    cfg.OpenAI.Size,
			Quality: cfg.OpenAI.Quality,
		}, nil
	})

	do.Provide[sticker.Segmenter](injector, func(i *do.Injector) (sticker.Segmenter, error) {
		return NewSegmenter(do.MustInvoke[*config.Config](i).Sticker)
	})
	do.Provide[handler.Compositor](injector, func(i *do.Injector) (handler.Compositor, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return &sticker.Compositor{
			Segmenter: do.MustInvoke[sticker.Segmenter](i),
			Radius:    cfg.Sticker.BorderRadius,
			Limiter:   semaphore.NewWeighted(cfg.Sticker.MaxConcurrent),
		}, nil
	})

	do.Provide[*handler.Handler](injector, handler.NewHandler)
	do.Provide[http.Handler](injector, server.NewRouter)
	do.Provide[*handle.URLHandler](injector, handle.NewURLHandler)

	return injector
}

// NewSegmenter picks the background remover named by the sticker settings.
func NewSegmenter(cfg config.StickerConfig) (sticker.Segmenter, error) {
	switch cfg.Segmenter {
	case "", "floodfill":
		return &sticker.FloodFillSegmenter{Tolerance: uint8(cfg.Tolerance)}, nil
	case "rembg":
		return &sticker.RembgSegmenter{Client: &http.Client{Timeout: cfg.RembgTimeout}, URL: cfg.RembgURL}, nil
	case "none":
		return sticker.PassthroughSegmenter{}, nil
	default:
		return nil, fmt.Errorf("unknown segmenter %q", cfg.Segmenter)
	}
}
