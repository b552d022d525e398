package sticker

import (
	"image"
)

// AlphaMask copies the alpha channel of img.
func AlphaMask(img *image.NRGBA) *image.Alpha {
	mask := image.NewAlpha(img.Rect)
	w, h := img.Rect.Dx(), img.Rect.Dy()
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+w*4]
		dst := mask.Pix[y*mask.Stride : y*mask.Stride+w]
		for x := range dst {
			dst[x] = src[x*4+3]
		}
	}
	return mask
}

// Dilate applies a square max filter with a (2*radius+1) window. Samples
// outside the mask read as zero, so the result never wraps around the edges.
func Dilate(mask *image.Alpha, radius int) *image.Alpha {
	if radius <= 0 {
		out := image.NewAlpha(mask.Rect)
		copy(out.Pix, mask.Pix)
		return out
	}
	w, h := mask.Rect.Dx(), mask.Rect.Dy()

	// The square window is separable: rows first, then columns.
	rows := image.NewAlpha(mask.Rect)
	for y := 0; y < h; y++ {
		maxFilter(mask.Pix[y*mask.Stride:], 1, rows.Pix[y*rows.Stride:], 1, w, radius)
	}
	out := image.NewAlpha(mask.Rect)
	for x := 0; x < w; x++ {
		maxFilter(rows.Pix[x:], rows.Stride, out.Pix[x:], out.Stride, h, radius)
	}
	return out
}

// maxFilter writes the running maximum of n strided samples from src to dst.
func maxFilter(src []uint8, srcStep int, dst []uint8, dstStep int, n, radius int) {
	for i := 0; i < n; i++ {
		lo, hi := max(i-radius, 0), min(i+radius, n-1)
		var m uint8
		for j := lo; j <= hi && m < 0xff; j++ {
			if v := src[j*srcStep]; v > m {
				m = v
			}
		}
		dst[i*dstStep] = m
	}
}

// Outline dilates the cutout alpha by radius and composites the cutout over a
// white layer whose alpha is the dilated mask.
func Outline(cutout *image.NRGBA, radius int) *image.NRGBA {
	border := Dilate(AlphaMask(cutout), radius)
	out := image.NewNRGBA(cutout.Rect)
	w, h := cutout.Rect.Dx(), cutout.Rect.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*cutout.Stride + x*4
			o := y*out.Stride + x*4
			over(out.Pix[o:o+4], cutout.Pix[i:i+4], border.Pix[y*border.Stride+x])
		}
	}
	return out
}

// over blends a non-premultiplied foreground pixel onto white with alpha ba.
func over(dst, fg []uint8, ba uint8) {
	fa := uint32(fg[3])
	bg := uint32(ba)

	// Both alphas scaled to 255*255.
	a := fa*0xff + bg*(0xff-fa)
	if a == 0 {
		dst[0], dst[1], dst[2], dst[3] = 0, 0, 0, 0
		return
	}
	white := 0xff * bg * (0xff - fa)
	for c := 0; c < 3; c++ {
		dst[c] = uint8((uint32(fg[c])*fa*0xff + white + a/2) / a)
	}
	dst[3] = uint8((a + 0x7f) / 0xff)
}
