package handler

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/dmorgan81/stickerbot/internal/config"
	"github.com/dmorgan81/stickerbot/internal/fault"
	"github.com/dmorgan81/stickerbot/internal/image"
	"github.com/dmorgan81/stickerbot/internal/log"
	"github.com/dmorgan81/stickerbot/internal/prompt"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/samber/lo"
)

const dataURIPrefix = "data:image/png;base64,"

var validate = validator.New()

type Input struct {
	City    string   `json:"city" validate:"required"`
	History []string `json:"history"`
}

type Output struct {
	Prompt  string `json:"prompt"`
	Concept string `json:"concept"`
	Image   string `json:"image"`
}

// ConceptGenerator proposes a short visual concept for a city.
type ConceptGenerator interface {
	Generate(ctx context.Context, city string, theme prompt.Theme, history []string) (string, error)
}

// Compositor turns raw model output into the final sticker PNG.
type Compositor interface {
	Compose(context.Context, []byte) ([]byte, error)
}

type Handler struct {
	credentials config.Credentials
	randomizer  *prompt.Randomizer
	templator   *prompt.Templator
	concepts    ConceptGenerator
	generator   image.Generator
	compositor  Compositor
}

func NewHandler(i *do.Injector) (*Handler, error) {
	return &Handler{
		credentials: do.MustInvoke[*config.Config](i).Credentials(),
		randomizer:  do.MustInvoke[*prompt.Randomizer](i),
		templator:   do.MustInvoke[*prompt.Templator](i),
		concepts:    do.MustInvoke[ConceptGenerator](i),
		generator:   do.MustInvoke[image.Generator](i),
		compositor:  do.MustInvoke[Compositor](i),
	}, nil
}

func (h *Handler) Handle(ctx context.Context, input Input) (Output, error) {
	ctx = log.With(ctx, "generation_id", uuid.NewString())
	log := log.FromContextOrDiscard(ctx).WithGroup("handler").With("city", input.City)
	log.Info("user asked for sticker", "history", len(input.History))

	if err := h.credentials.Validate(); err != nil {
		log.Error("credentials not configured", "error", err)
		return Output{}, err
	}

	input.City = strings.TrimSpace(input.City)
	if err := validate.Struct(input); err != nil {
		return Output{}, fmt.Errorf("%w: city is required", fault.ErrInvalidInput)
	}

	theme := h.randomizer.Theme(ctx)
	concept, err := h.concepts.Generate(ctx, input.City, theme, lo.Compact(input.History))
	if err != nil {
		return Output{}, err
	}

	style := h.randomizer.Style(ctx)
	text, err := h.templator.Sticker(ctx, prompt.StickerParams{Concept: concept, City: input.City, Style: style})
	if err != nil {
		return Output{}, err
	}

	if chars := prompt.NonASCII(text, 5); len(chars) > 0 {
		log.Debug("prompt contains non-ascii characters", "characters", chars)
	}
	text, lossy, err := prompt.Sanitize(text)
	if err != nil {
		return Output{}, err
	}
	if lossy {
		log.Warn("prompt contained non-ascii characters, sanitized to ascii", "length", len(text))
	}
	log.Debug("final prompt", "prompt", strings.TrimSpace(text))

	raw, err := h.generator.Generate(ctx, text)
	if err != nil {
		return Output{}, err
	}

	sticker, err := h.compositor.Compose(ctx, raw)
	if err != nil {
		return Output{}, err
	}
	if len(sticker) == 0 {
		return Output{}, fmt.Errorf("%w: empty result", fault.ErrImageProcessing)
	}

	encoded := base64.StdEncoding.EncodeToString(sticker)
	log.Info("sticker ready", "bytes", len(sticker), "base64_length", len(encoded))

	return Output{
		Prompt:  text,
		Concept: concept,
		Image:   dataURIPrefix + encoded,
	}, nil
}
