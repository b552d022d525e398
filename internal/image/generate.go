package image

import "context"

type Params struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	Size    string `json:"size,omitempty"`
	Quality string `json:"quality,omitempty"`
	N       int    `json:"n,omitempty"`
}

// Generator turns a text prompt into encoded image bytes.
type Generator interface {
	Generate(context.Context, string) ([]byte, error)
}
