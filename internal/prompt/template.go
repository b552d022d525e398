package prompt

import (
	"bytes"
	"context"
	"embed"
	"sync"
	"text/template"

	"github.com/dmorgan81/stickerbot/internal/log"
	"github.com/samber/do"
)

//go:embed assets/*.tmpl
var assets embed.FS

type ConceptParams struct {
	City    string
	Theme   Theme
	History []string
}

type ExpandParams struct {
	Concept string
}

type StickerParams struct {
	Concept string
	City    string
	Style   string
}

type Templator struct {
	tmpl *template.Template
	once sync.Once
}

func NewTemplator(i *do.Injector) (*Templator, error) {
	return &Templator{}, nil
}

func (t *Templator) Concept(ctx context.Context, params ConceptParams) (string, error) {
	return t.execute(ctx, "concept.tmpl", params)
}

func (t *Templator) Expand(ctx context.Context, params ExpandParams) (string, error) {
	return t.execute(ctx, "expand.tmpl", params)
}

func (t *Templator) Sticker(ctx context.Context, params StickerParams) (string, error) {
	return t.execute(ctx, "sticker.tmpl", params)
}

func (t *Templator) execute(ctx context.Context, name string, params any) (string, error) {
	t.once.Do(func() {
		t.tmpl = template.Must(template.ParseFS(assets, "assets/*.tmpl"))
	})

	log.FromContextOrDiscard(ctx).WithGroup("templator").Debug("rendering prompt", "template", name)

	var data bytes.Buffer
	if err := t.tmpl.ExecuteTemplate(&data, name, params); err != nil {
		return "", err
	}
	return data.String(), nil
}
