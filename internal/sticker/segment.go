package sticker

import (
	"context"
	"image"
	"image/color"

	"github.com/samber/lo"
)

// Segmenter removes the background of img. The result must have the same
// bounds as img and alpha 0 everywhere outside the subject.
type Segmenter interface {
	Segment(context.Context, *image.NRGBA) (*image.NRGBA, error)
}

// PassthroughSegmenter treats the input as an existing cutout.
type PassthroughSegmenter struct{}

func (PassthroughSegmenter) Segment(_ context.Context, img *image.NRGBA) (*image.NRGBA, error) {
	out := image.NewNRGBA(img.Rect)
	copy(out.Pix, img.Pix)
	return out, nil
}

// DefaultTolerance is the per-channel distance still counted as background.
const DefaultTolerance = 24

// FloodFillSegmenter clears the region connected to the image border whose
// colour matches the background. The background colour is the average of the
// visible corner pixels; the image prompt asks for a flat white backdrop so
// this is usually #FFFFFF. Transparent pixels always count as background.
type FloodFillSegmenter struct {
	Tolerance uint8
}

func (s *FloodFillSegmenter) Segment(ctx context.Context, img *image.NRGBA) (*image.NRGBA, error) {
	out := image.NewNRGBA(img.Rect)
	copy(out.Pix, img.Pix)

	w, h := img.Rect.Dx(), img.Rect.Dy()
	if w == 0 || h == 0 {
		return out, nil
	}

	ref, hasRef := cornerColor(img)
	tol := int(s.Tolerance)
	isBackground := func(i int) bool {
		p := img.Pix[i : i+4]
		if p[3] == 0 {
			return true
		}
		return hasRef &&
			abs(int(p[0])-int(ref.R)) <= tol &&
			abs(int(p[1])-int(ref.G)) <= tol &&
			abs(int(p[2])-int(ref.B)) <= tol
	}

	visited := make([]bool, w*h)
	stack := make([]image.Point, 0, 2*(w+h))
	push := func(x, y int) {
		k := y*w + x
		if visited[k] {
			return
		}
		visited[k] = true
		if isBackground(y*img.Stride + x*4) {
			stack = append(stack, image.Pt(x, y))
		}
	}
	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}

	for n := 0; len(stack) > 0; n++ {
		if n&0xffff == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		o := p.Y*out.Stride + p.X*4
		out.Pix[o], out.Pix[o+1], out.Pix[o+2], out.Pix[o+3] = 0, 0, 0, 0

		if p.X > 0 {
			push(p.X-1, p.Y)
		}
		if p.X < w-1 {
			push(p.X+1, p.Y)
		}
		if p.Y > 0 {
			push(p.X, p.Y-1)
		}
		if p.Y < h-1 {
			push(p.X, p.Y+1)
		}
	}
	return out, nil
}

func cornerColor(img *image.NRGBA) (color.NRGBA, bool) {
	r := img.Rect
	corners := lo.FilterMap([]image.Point{
		r.Min, image.Pt(r.Max.X-1, r.Min.Y), image.Pt(r.Min.X, r.Max.Y-1), r.Max.Sub(image.Pt(1, 1)),
	}, func(p image.Point, _ int) (color.NRGBA, bool) {
		c := img.NRGBAAt(p.X, p.Y)
		return c, c.A > 0
	})
	if len(corners) == 0 {
		return color.NRGBA{}, false
	}
	var sr, sg, sb int
	for _, c := range corners {
		sr += int(c.R)
		sg += int(c.G)
		sb += int(c.B)
	}
	n := len(corners)
	return color.NRGBA{R: uint8(sr / n), G: uint8(sg / n), B: uint8(sb / n), A: 0xff}, true
}

func abs(v int) int {
	return lo.Ternary(v < 0, -v, v)
}
