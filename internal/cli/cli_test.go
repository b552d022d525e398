package cli

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("STICKERBOT_CONFIG", "")

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeSquare(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for y := 15; y < 25; y++ {
		for x := 15; x < 25; x++ {
			img.SetNRGBA(x, y, color.NRGBA{B: 0xff, A: 0xff})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestCompose(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	outPath := filepath.Join(dir, "out", "sticker.png")
	writeSquare(t, in)

	stdout, err := execute(t, "compose", in, outPath, "--segmenter", "none", "--radius", "3")
	require.NoError(t, err)
	assert.Contains(t, stdout, "wrote "+outPath)

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 40), img.Bounds())

	assert.Equal(t, color.NRGBA{B: 0xff, A: 0xff}, color.NRGBAModel.Convert(img.At(20, 20)))
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, color.NRGBAModel.Convert(img.At(12, 20)))
	assert.Equal(t, color.NRGBA{}, color.NRGBAModel.Convert(img.At(11, 20)))
}

func TestComposeValidatesFlags(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	writeSquare(t, in)

	_, err := execute(t, "compose", in, filepath.Join(dir, "o.png"), "--segmenter", "rembg")
	assert.ErrorContains(t, err, "--rembg-url")

	_, err = execute(t, "compose", in, filepath.Join(dir, "o.png"), "--radius", "-1")
	assert.ErrorContains(t, err, "--radius")

	_, err = execute(t, "compose", in, filepath.Join(dir, "o.png"), "--segmenter", "magic")
	assert.ErrorContains(t, err, "magic")

	_, err = execute(t, "compose", filepath.Join(dir, "missing.png"), filepath.Join(dir, "o.png"))
	assert.Error(t, err)
}

func TestGenerateWithoutKeys(t *testing.T) {
	_, err := execute(t, "generate", "Tokyo")
	require.Error(t, err)
	assert.ErrorContains(t, err, "GOOGLE_API_KEY")
	assert.ErrorContains(t, err, "OPENAI_API_KEY")
}

func TestGenerateRequiresCity(t *testing.T) {
	_, err := execute(t, "generate")
	assert.Error(t, err)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "new-york", slug(" New York "))
	assert.Equal(t, "são-paulo", slug("São Paulo"))
	assert.Equal(t, "sticker", slug("!!!"))
}
