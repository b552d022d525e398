package concept

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmorgan81/stickerbot/internal/fault"
	"github.com/dmorgan81/stickerbot/internal/log"
	"github.com/dmorgan81/stickerbot/internal/prompt"
	"github.com/samber/do"
)

// MinWords is the length below which a concept is sent back for expansion.
const MinWords = 10

// Model completes a single text prompt.
type Model interface {
	Complete(context.Context, string) (string, error)
}

type Generator struct {
	model     Model
	templator *prompt.Templator
}

func NewGenerator(i *do.Injector) (*Generator, error) {
	return &Generator{
		model:     do.MustInvoke[Model](i),
		templator: do.MustInvoke[*prompt.Templator](i),
	}, nil
}

func (g *Generator) Generate(ctx context.Context, city string, theme prompt.Theme, history []string) (string, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("concept").With("city", city, "dimension", theme.Dimension)

	text, err := g.templator.Concept(ctx, prompt.ConceptParams{City: city, Theme: theme, History: history})
	if err != nil {
		return "", err
	}
	log.Info("generating concept", "history", len(history))

	concept, err := g.model.Complete(ctx, text)
	if err != nil {
		return "", upstream(err)
	}
	concept = strings.TrimSpace(concept)

	if words := len(strings.Fields(concept)); words < MinWords {
		log.Info("concept too short, expanding", "concept", concept, "words", words)
		text, err := g.templator.Expand(ctx, prompt.ExpandParams{Concept: concept})
		if err != nil {
			return "", err
		}
		if concept, err = g.model.Complete(ctx, text); err != nil {
			return "", upstream(err)
		}
		concept = strings.TrimSpace(concept)
	}

	log.Info("generated concept", "concept", concept)
	return concept, nil
}

func upstream(err error) error {
	if errors.Is(err, fault.ErrUpstreamGeneration) || errors.Is(err, fault.ErrConfiguration) {
		return err
	}
	return fmt.Errorf("%w: concept: %v", fault.ErrUpstreamGeneration, err)
}
