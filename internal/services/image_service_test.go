package services

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

func encodeTestImage(t *testing.T, width, height int, encode func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, encode(&buf, img))
	return buf.Bytes()
}

func TestImageService_Process(t *testing.T) {
	svc := NewImageService(100)

	t.Run("keeps the original bytes and derives a bounded thumbnail", func(t *testing.T) {
		data := encodeTestImage(t, 400, 300, func(buf *bytes.Buffer, img image.Image) error {
			return jpeg.Encode(buf, img, nil)
		})

		result, err := svc.Process(data)
		require.NoError(t, err)
		assert.Equal(t, data, result.Image)
		assert.Nil(t, result.TakenAt, "plain encoded JPEG carries no EXIF")

		require.NotEmpty(t, result.Thumbnail)
		thumb, err := jpeg.Decode(bytes.NewReader(result.Thumbnail))
		require.NoError(t, err)
		bounds := thumb.Bounds()
		assert.LessOrEqual(t, bounds.Dx(), 100)
		assert.LessOrEqual(t, bounds.Dy(), 100)
	})

	t.Run("small image is not upscaled", func(t *testing.T) {
		data := encodeTestImage(t, 40, 30, func(buf *bytes.Buffer, img image.Image) error {
			return jpeg.Encode(buf, img, nil)
		})

		result, err := svc.Process(data)
		require.NoError(t, err)

		thumb, err := jpeg.Decode(bytes.NewReader(result.Thumbnail))
		require.NoError(t, err)
		assert.Equal(t, 40, thumb.Bounds().Dx())
		assert.Equal(t, 30, thumb.Bounds().Dy())
	})

	t.Run("accepts PNG downloads", func(t *testing.T) {
		data := encodeTestImage(t, 50, 50, func(buf *bytes.Buffer, img image.Image) error {
			return png.Encode(buf, img)
		})

		result, err := svc.Process(data)
		require.NoError(t, err)
		assert.Equal(t, data, result.Image)
	})

	t.Run("rejects undecodable bytes", func(t *testing.T) {
		_, err := svc.Process([]byte("definitely not an image"))
		assert.Error(t, err)
	})

	t.Run("rejects an empty body", func(t *testing.T) {
		_, err := svc.Process(nil)
		assert.Error(t, err)
	})
}

func TestNewImageService_DefaultDimension(t *testing.T) {
	svc := NewImageService(0)
	assert.Equal(t, 200, svc.thumbMaxDim)
}
