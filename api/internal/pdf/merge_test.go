package pdf

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var b bytes.Buffer
	require.NoError(t, jpeg.Encode(&b, img, nil))
	return b.Bytes()
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var b bytes.Buffer
	require.NoError(t, png.Encode(&b, img))
	return b.Bytes()
}

func TestMerge_OnePagePerImage(t *testing.T) {
	images := [][]byte{
		encodeJPEG(t, solid(40, 60, color.Black)),
		encodePNG(t, solid(80, 20, color.NRGBA{R: 255, A: 128})),
		encodeJPEG(t, solid(10, 10, color.White)),
	}
	out, skipped, err := Merge(images)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	pages := bytes.Count(out, []byte("/Type /Page")) - bytes.Count(out, []byte("/Type /Pages"))
	assert.Equal(t, 3, pages)
}

func TestMerge_SkipsUndecodable(t *testing.T) {
	out, skipped, err := Merge([][]byte{[]byte("not an image"), encodeJPEG(t, solid(5, 5, color.Black))})
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	assert.NotEmpty(t, out)
}

func TestMerge_NothingUsable(t *testing.T) {
	_, skipped, err := Merge([][]byte{nil, []byte("x")})
	assert.ErrorIs(t, err, ErrNoImages)
	assert.Equal(t, 2, skipped)

	_, _, err = Merge(nil)
	assert.ErrorIs(t, err, ErrNoImages)
}

func TestPreparePage_Size(t *testing.T) {
	p, err := preparePage(encodePNG(t, solid(96, 192, color.White)))
	require.NoError(t, err)
	assert.InDelta(t, 72.0, p.width, 0.001)
	assert.InDelta(t, 144.0, p.height, 0.001)
	_, format, err := image.DecodeConfig(bytes.NewReader(p.jpeg))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}
