package concept

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/dmorgan81/stickerbot/internal/fault"
	"github.com/dmorgan81/stickerbot/internal/log"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiModel completes prompts with the Gemini API. The client is built on
// first use so a process without a key can still start.
type GeminiModel struct {
	Key   string
	Model string
	// Client carries the request timeout. Nil uses the genai default.
	Client *http.Client
	// BaseURL overrides the Gemini API endpoint when set.
	BaseURL string

	once   sync.Once
	client *genai.Client
	err    error
}

func (m *GeminiModel) Complete(ctx context.Context, text string) (string, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("gemini").With("model", m.Model)

	m.once.Do(func() {
		m.client, m.err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:      m.Key,
			Backend:     genai.BackendGeminiAPI,
			HTTPClient:  m.Client,
			HTTPOptions: genai.HTTPOptions{BaseURL: m.BaseURL},
		})
	})
	if m.err != nil {
		return "", fmt.Errorf("%w: create gemini client: %v", fault.ErrConfiguration, m.err)
	}

	log.Debug("calling gemini", "prompt_length", len(text))
	resp, err := m.client.Models.GenerateContent(ctx, m.Model, genai.Text(text), nil)
	if err != nil {
		return "", err
	}
	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errors.New("gemini returned no response")
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: gemini blocked prompt (%s)", fault.ErrContentPolicy, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini returned no candidates")
	}
	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: gemini stopped for safety", fault.ErrContentPolicy)
	}

	var out strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && part.Text != "" {
			out.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(out.String()) == "" {
		return "", errors.New("gemini returned empty text")
	}
	return out.String(), nil
}
