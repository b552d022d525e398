package sticker

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/dmorgan81/stickerbot/internal/log"
)

const maxRembgResponse = 64 << 20

// RembgSegmenter delegates background removal to a rembg HTTP server
// (`rembg s`), which answers POST /api/remove with a PNG cutout.
type RembgSegmenter struct {
	Client *http.Client
	URL    string
}

func (s *RembgSegmenter) Segment(ctx context.Context, img *image.NRGBA) (*image.NRGBA, error) {
	endpoint := strings.TrimRight(s.URL, "/") + "/api/remove"
	log := log.FromContextOrDiscard(ctx).WithGroup("rembg").With("url", endpoint)
	log.Info("removing background via rembg")

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "input.png")
	if err != nil {
		return nil, err
	}
	if err := png.Encode(part, img); err != nil {
		return nil, err
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("rembg returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRembgResponse))
	if err != nil {
		return nil, err
	}
	out, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("rembg response: %w", err)
	}
	log.Debug("received cutout", "bounds", out.Rect.String())
	return out, nil
}
