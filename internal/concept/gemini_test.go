package concept

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmorgan81/stickerbot/internal/fault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "A gondola "},
				nil,
				{Text: "full of pigeons"},
			}},
			FinishReason: genai.FinishReasonStop,
		}},
	}
	got, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, "A gondola full of pigeons", got)
}

func TestResponseTextFailures(t *testing.T) {
	tests := []struct {
		name   string
		resp   *genai.GenerateContentResponse
		policy bool
	}{
		{name: "nil", resp: nil},
		{name: "no candidates", resp: &genai.GenerateContentResponse{}},
		{
			name:   "blocked prompt",
			resp:   &genai.GenerateContentResponse{PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: "SAFETY"}},
			policy: true,
		},
		{
			name: "safety stop",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content:      &genai.Content{},
				FinishReason: genai.FinishReasonSafety,
			}}},
			policy: true,
		},
		{
			name: "blank text",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{{Text: "  "}}},
			}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := responseText(tt.resp)
			require.Error(t, err)
			assert.Equal(t, tt.policy, errors.Is(err, fault.ErrContentPolicy))
		})
	}
}

func TestGeminiModelComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "test-model:generateContent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"A heron on a canal boat"}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	m := &GeminiModel{Key: "k", Model: "test-model", Client: srv.Client(), BaseURL: srv.URL + "/"}
	got, err := m.Complete(context.Background(), "city: Amsterdam")
	require.NoError(t, err)
	assert.Equal(t, "A heron on a canal boat", got)
}

func TestGeminiModelTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	m := &GeminiModel{Key: "k", Model: "test-model", Client: &http.Client{Timeout: 50 * time.Millisecond}, BaseURL: srv.URL + "/"}
	start := time.Now()
	_, err := m.Complete(context.Background(), "city: Amsterdam")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
