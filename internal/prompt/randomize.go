package prompt

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/dmorgan81/stickerbot/internal/log"
	"github.com/samber/do"
)

type Randomizer struct {
	themes []Theme
	styles []string

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRandomizer(i *do.Injector) (*Randomizer, error) {
	return NewSeededRandomizer(rand.NewSource(time.Now().UTC().UnixNano())), nil
}

// NewSeededRandomizer picks from the built-in catalogs using src.
func NewSeededRandomizer(src rand.Source) *Randomizer {
	return &Randomizer{themes: Themes, styles: Styles, rnd: rand.New(src)}
}

func (r *Randomizer) Theme(ctx context.Context) Theme {
	r.mu.Lock()
	theme := r.themes[r.rnd.Intn(len(r.themes))]
	r.mu.Unlock()

	log.FromContextOrDiscard(ctx).WithGroup("randomizer").Info("picked theme", "dimension", theme.Dimension)
	return theme
}

func (r *Randomizer) Style(ctx context.Context) string {
	r.mu.Lock()
	style := r.styles[r.rnd.Intn(len(r.styles))]
	r.mu.Unlock()

	log.FromContextOrDiscard(ctx).WithGroup("randomizer").Info("picked style", "style", style)
	return style
}
