// Package sticker turns a raw model bitmap into a die-cut sticker: the
// background is removed, the remaining alpha is dilated into an outline and
// a white layer shaped by that outline is placed underneath the cutout.
package sticker

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/dmorgan81/stickerbot/internal/fault"
	"github.com/dmorgan81/stickerbot/internal/log"
	"golang.org/x/sync/semaphore"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultRadius gives a border roughly 15 pixels wide.
const DefaultRadius = 15

// MaxPixels caps the declared size of an input image. A 1024x1024 model
// output is far below it.
const MaxPixels = 64 << 20

var (
	ErrDecode       = fmt.Errorf("%w: input is not a decodable image", fault.ErrImageProcessing)
	ErrSegmentation = fmt.Errorf("%w: background removal failed", fault.ErrImageProcessing)
	ErrEmptyResult  = fmt.Errorf("%w: empty result", fault.ErrImageProcessing)
)

type Compositor struct {
	Segmenter Segmenter
	Radius    int
	// Limiter bounds how many compositions hold pixel buffers at once. Nil means unbounded.
	Limiter *semaphore.Weighted
}

func (c *Compositor) Compose(ctx context.Context, raw []byte) ([]byte, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("compositor").With("bytes", len(raw), "radius", c.Radius)

	if c.Limiter != nil {
		if err := c.Limiter.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer c.Limiter.Release(1)
	}

	src, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	log.Debug("decoded image", "width", src.Rect.Dx(), "height", src.Rect.Dy())

	cutout, err := c.Segmenter.Segment(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSegmentation, err)
	}
	if cutout == nil || cutout.Rect != src.Rect {
		return nil, fmt.Errorf("%w: segmenter changed image bounds", ErrSegmentation)
	}
	log.Info("removed background")

	var buf bytes.Buffer
	if err := png.Encode(&buf, Outline(cutout, c.Radius)); err != nil {
		return nil, fmt.Errorf("%w: %v", fault.ErrImageProcessing, err)
	}
	if buf.Len() == 0 {
		return nil, ErrEmptyResult
	}
	log.Info("composited sticker", "output_bytes", buf.Len())
	return buf.Bytes(), nil
}

// Decode reads any registered raster format into an NRGBA image anchored at
// the origin. Formats without alpha come out fully opaque.
func Decode(raw []byte) (*image.NRGBA, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrDecode, cfg.Width, cfg.Height, MaxPixels)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return toNRGBA(img), nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return dst
}
