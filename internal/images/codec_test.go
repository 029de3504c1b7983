package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"level-thumbnails/pkg/apperrors"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 64 {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidateAndEncodeAcceptsExactDimensions(t *testing.T) {
	codec := NewCodec()

	out, err := codec.ValidateAndEncode(pngBytes(t, ThumbnailWidth, ThumbnailHeight))
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, ThumbnailWidth, decoded.Bounds().Dx())
	assert.Equal(t, ThumbnailHeight, decoded.Bounds().Dy())
}

func TestValidateAndEncodeRejectsWrongDimensions(t *testing.T) {
	codec := NewCodec()

	for _, dims := range [][2]int{{1280, 720}, {1920, 1079}, {1, 1}} {
		_, err := codec.ValidateAndEncode(pngBytes(t, dims[0], dims[1]))
		assert.ErrorIs(t, err, apperrors.ErrInvalidImage, "%dx%d", dims[0], dims[1])
	}
}

func TestValidateAndEncodeRejectsGarbage(t *testing.T) {
	codec := NewCodec()
	_, err := codec.ValidateAndEncode([]byte("definitely not an image"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidImage)
}

func TestResizeDimensions(t *testing.T) {
	codec := NewCodec()
	src := pngBytes(t, ThumbnailWidth, ThumbnailHeight)

	for _, tc := range []struct {
		res  Resolution
		w, h int
	}{
		{ResSmall, 640, 360},
		{ResMedium, 1280, 720},
	} {
		out, err := codec.Resize(src, tc.res)
		require.NoError(t, err)
		decoded, err := png.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, tc.w, decoded.Bounds().Dx())
		assert.Equal(t, tc.h, decoded.Bounds().Dy())
	}
}

func TestParseResolution(t *testing.T) {
	for _, valid := range []string{"high", "medium", "small"} {
		res, ok := ParseResolution(valid)
		assert.True(t, ok)
		assert.Equal(t, Resolution(valid), res)
	}

	_, ok := ParseResolution("huge")
	assert.False(t, ok)
}
