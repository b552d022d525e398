package sticker

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var red = color.NRGBA{R: 0xff, A: 0xff}

func squareOnTransparent(size, lo, hi int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := lo; y < hi; y++ {
		for x := lo; x < hi; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestAlphaMask(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	img.SetNRGBA(1, 0, color.NRGBA{R: 10, A: 200})
	img.SetNRGBA(2, 1, color.NRGBA{B: 10, A: 7})

	mask := AlphaMask(img)
	assert.Equal(t, img.Rect, mask.Rect)
	assert.Equal(t, []uint8{0, 200, 0, 0, 0, 7}, mask.Pix)
}

func TestDilate(t *testing.T) {
	mask := image.NewAlpha(image.Rect(0, 0, 9, 9))
	mask.SetAlpha(4, 4, color.Alpha{A: 0xff})
	mask.SetAlpha(0, 0, color.Alpha{A: 0x80})

	out := Dilate(mask, 2)
	for y := 0; y < 9; y++ {
		for x := 0; x < 9; x++ {
			want := uint8(0)
			if x <= 2 && y <= 2 {
				want = 0x80
			}
			if x >= 2 && x <= 6 && y >= 2 && y <= 6 {
				want = 0xff
			}
			assert.Equal(t, want, out.AlphaAt(x, y).A, "(%d,%d)", x, y)
		}
	}
}

func TestDilateNeverShrinks(t *testing.T) {
	mask := image.NewAlpha(image.Rect(0, 0, 32, 20))
	for i := range mask.Pix {
		mask.Pix[i] = uint8((i * 37) % 251)
	}
	for _, radius := range []int{0, 1, 3, 15} {
		out := Dilate(mask, radius)
		require.Equal(t, mask.Rect, out.Rect)
		for i := range mask.Pix {
			assert.GreaterOrEqual(t, out.Pix[i], mask.Pix[i], "radius %d index %d", radius, i)
		}
	}
}

func TestDilateDoesNotWrap(t *testing.T) {
	mask := image.NewAlpha(image.Rect(0, 0, 10, 10))
	mask.SetAlpha(0, 5, color.Alpha{A: 0xff})

	out := Dilate(mask, 3)
	assert.Equal(t, uint8(0xff), out.AlphaAt(3, 5).A)
	assert.Zero(t, out.AlphaAt(4, 5).A)
	assert.Zero(t, out.AlphaAt(9, 5).A)
	assert.Zero(t, out.AlphaAt(5, 9).A)
}

func TestDilateZeroRadiusCopies(t *testing.T) {
	mask := image.NewAlpha(image.Rect(0, 0, 2, 2))
	mask.Pix[3] = 9
	out := Dilate(mask, 0)
	assert.Equal(t, mask.Pix, out.Pix)
	out.Pix[3] = 1
	assert.Equal(t, uint8(9), mask.Pix[3])
}

func TestOutline(t *testing.T) {
	cutout := squareOnTransparent(64, 20, 44, color.NRGBA{R: 12, G: 34, B: 56, A: 0xff})
	cutout.SetNRGBA(20, 20, color.NRGBA{R: 200, G: 0, B: 0, A: 0x80})

	out := Outline(cutout, 5)
	require.Equal(t, cutout.Rect, out.Rect)

	assert.Equal(t, color.NRGBA{R: 12, G: 34, B: 56, A: 0xff}, out.NRGBAAt(30, 30), "foreground untouched")
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, out.NRGBAAt(15, 30), "ring is white")
	assert.Equal(t, color.NRGBA{}, out.NRGBAAt(14, 30), "outside ring is transparent")
	assert.Equal(t, color.NRGBA{}, out.NRGBAAt(0, 0))

	// Half-transparent red over opaque white.
	blended := out.NRGBAAt(20, 20)
	assert.Equal(t, uint8(0xff), blended.A)
	assert.Equal(t, uint8(0xe3), blended.R)
	assert.Equal(t, uint8(0x7f), blended.G)
	assert.Equal(t, blended.G, blended.B)
}

func TestOutlineTransparentWhereBorderIsZero(t *testing.T) {
	cutout := squareOnTransparent(40, 10, 12, red)
	// Colour hidden under zero alpha must not leak.
	cutout.SetNRGBA(39, 39, color.NRGBA{R: 1, G: 2, B: 3})

	out := Outline(cutout, 4)
	border := Dilate(AlphaMask(cutout), 4)
	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			if border.AlphaAt(x, y).A == 0 {
				assert.Equal(t, color.NRGBA{}, out.NRGBAAt(x, y), "(%d,%d)", x, y)
			}
		}
	}
}

func TestOverTranslucentBorder(t *testing.T) {
	dst := make([]uint8, 4)
	over(dst, []uint8{0, 0, 0, 0}, 0x80)
	assert.Equal(t, []uint8{0xff, 0xff, 0xff, 0x80}, dst)

	over(dst, []uint8{9, 8, 7, 0xff}, 0)
	assert.Equal(t, []uint8{9, 8, 7, 0xff}, dst)

	over(dst, []uint8{9, 8, 7, 0}, 0)
	assert.Equal(t, []uint8{0, 0, 0, 0}, dst)
}
