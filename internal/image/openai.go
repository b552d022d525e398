package image

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmorgan81/stickerbot/internal/fault"
	"github.com/dmorgan81/stickerbot/internal/log"
)

const (
	DefaultOpenAIURL = "https://api.openai.com/v1"
	DefaultModel     = "dall-e-3"
	DefaultSize      = "1024x1024"
	DefaultQuality   = "standard"

	maxImageBytes = 32 << 20
)

type OpenAIGenerator struct {
	Client  *http.Client
	Key     string
	BaseURL string
	Model   string
	Size    string
	Quality string
}

type openAIImage struct {
	URL     string `json:"url"`
	B64JSON string `json:"b64_json"`
}

type openAIResponse struct {
	Data  []openAIImage `json:"data"`
	Error *openAIError  `json:"error"`
}

type openAIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

func (e *openAIError) contentPolicy() bool {
	return strings.Contains(strings.ToLower(e.Code+" "+e.Type+" "+e.Message), "content_policy")
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) ([]byte, error) {
	params := Params{
		Model:   g.Model,
		Prompt:  prompt,
		Size:    g.Size,
		Quality: g.Quality,
		N:       1,
	}
	log := log.FromContextOrDiscard(ctx).WithGroup("openai").With("model", params.Model, "size", params.Size)
	log.Info("generating image via openai")

	body, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}

	endpoint := strings.TrimRight(g.BaseURL, "/") + "/images/generations"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Authorization", "Bearer "+g.Key)

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: openai: %v", fault.ErrUpstreamGeneration, err)
	}
	defer resp.Body.Close()

	var out openAIResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxImageBytes)).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: openai returned %s: %v", fault.ErrUpstreamGeneration, resp.Status, err)
	}
	if out.Error != nil {
		if out.Error.contentPolicy() {
			log.Warn("openai rejected prompt", "message", out.Error.Message)
			return nil, fmt.Errorf("%w: %s", fault.ErrContentPolicy, out.Error.Message)
		}
		return nil, fmt.Errorf("%w: openai api error: %s", fault.ErrUpstreamGeneration, out.Error.Message)
	}
	if resp.StatusCode != http.StatusOK || len(out.Data) == 0 {
		return nil, fmt.Errorf("%w: openai returned %s with %d images", fault.ErrUpstreamGeneration, resp.Status, len(out.Data))
	}

	img := out.Data[0]
	if img.B64JSON != "" {
		data, err := base64.StdEncoding.DecodeString(img.B64JSON)
		if err != nil {
			return nil, fmt.Errorf("%w: openai image payload: %v", fault.ErrUpstreamGeneration, err)
		}
		log.Info("received inline image", "bytes", len(data))
		return data, nil
	}
	log.Info("received image url", "url", img.URL)
	return g.download(ctx, img.URL)
}

func (g *OpenAIGenerator) download(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: openai returned neither url nor image data", fault.ErrUpstreamGeneration)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: download image: %v", fault.ErrUpstreamGeneration, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: download image: %s", fault.ErrUpstreamGeneration, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: download image: %v", fault.ErrUpstreamGeneration, err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("%w: download image: larger than %d bytes", fault.ErrUpstreamGeneration, maxImageBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: download image: empty body", fault.ErrUpstreamGeneration)
	}
	log.FromContextOrDiscard(ctx).WithGroup("openai").Info("downloaded image", "bytes", len(data))
	return data, nil
}
