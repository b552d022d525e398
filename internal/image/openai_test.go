package image

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmorgan81/stickerbot/internal/fault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGenerator(srv *httptest.Server) *OpenAIGenerator {
	return &OpenAIGenerator{
		Client:  srv.Client(),
		Key:     "sk-test",
		BaseURL: srv.URL + "/v1/",
		Model:   DefaultModel,
		Size:    DefaultSize,
		Quality: DefaultQuality,
	}
}

func TestOpenAIGeneratorDownloadsURL(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/images/generations":
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

			var params Params
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&params))
			assert.Equal(t, Params{
				Model:   "dall-e-3",
				Prompt:  "a sticker",
				Size:    "1024x1024",
				Quality: "standard",
				N:       1,
			}, params)

			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]string{{"url": srv.URL + "/img/1.png"}},
			})
		case "/img/1.png":
			_, _ = w.Write([]byte("png-bytes"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	data, err := newGenerator(srv).Generate(context.Background(), "a sticker")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestOpenAIGeneratorInlineImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"b64_json": base64.StdEncoding.EncodeToString([]byte("inline"))}},
		})
	}))
	defer srv.Close()

	data, err := newGenerator(srv).Generate(context.Background(), "a sticker")
	require.NoError(t, err)
	assert.Equal(t, []byte("inline"), data)
}

func TestOpenAIGeneratorErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		policy  bool
		message string
	}{
		{
			name:    "content policy",
			status:  http.StatusBadRequest,
			body:    `{"error":{"message":"Your request was rejected","type":"invalid_request_error","code":"content_policy_violation"}}`,
			policy:  true,
			message: "content policy violation",
		},
		{
			name:    "api error",
			status:  http.StatusUnauthorized,
			body:    `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`,
			message: "Incorrect API key provided",
		},
		{
			name:    "garbage",
			status:  http.StatusBadGateway,
			body:    `<html>bad gateway</html>`,
			message: "502",
		},
		{
			name:    "no images",
			status:  http.StatusOK,
			body:    `{"data":[]}`,
			message: "0 images",
		},
		{
			name:    "empty url",
			status:  http.StatusOK,
			body:    `{"data":[{}]}`,
			message: "neither url nor image data",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newGenerator(srv).Generate(context.Background(), "a sticker")
			require.Error(t, err)
			assert.ErrorIs(t, err, fault.ErrUpstreamGeneration)
			assert.Equal(t, tt.policy, errors.Is(err, fault.ErrContentPolicy))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestOpenAIGeneratorDownloadFailure(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/images/generations" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": []map[string]string{{"url": srv.URL + "/gone.png"}},
			})
			return
		}
		http.Error(w, "expired", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newGenerator(srv).Generate(context.Background(), "a sticker")
	assert.ErrorIs(t, err, fault.ErrUpstreamGeneration)
	assert.Contains(t, err.Error(), "403")
}
