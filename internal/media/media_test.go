package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"restaurant-order-service/internal/apperr"
	"restaurant-order-service/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessRenditions(t *testing.T) {
	r, err := Process(pngBytes(t, 2400, 1200))
	require.NoError(t, err)
	assert.Equal(t, 2400, r.Width)
	assert.Equal(t, "png", r.Format)

	full, err := jpeg.Decode(bytes.NewReader(r.Full))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(1200, 600), full.Bounds().Size())

	thumb, err := jpeg.Decode(bytes.NewReader(r.Thumb))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(ThumbSide, ThumbSide), thumb.Bounds().Size())
}

func TestProcessKeepsSmallImages(t *testing.T) {
	r, err := Process(pngBytes(t, 400, 200))
	require.NoError(t, err)
	full, err := jpeg.Decode(bytes.NewReader(r.Full))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(400, 200), full.Bounds().Size())
}

func TestSniffAndAllowed(t *testing.T) {
	assert.Equal(t, "image/png", Sniff(pngBytes(t, 2, 2)))
	heif := append([]byte{0, 0, 0, 24}, []byte("ftypheic0000")...)
	assert.Equal(t, "image/heic", Sniff(heif))
	assert.True(t, Allowed("image/JPEG"))
	assert.True(t, Allowed("image/png; charset=binary"))
	assert.False(t, Allowed("text/plain; charset=utf-8"))
	assert.False(t, Allowed("image/svg+xml"))
}

func TestOrientSwapsAxes(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 10))
	assert.Equal(t, image.Pt(10, 40), orient(img, 6).Bounds().Size())
	assert.Equal(t, image.Pt(40, 10), orient(img, 3).Bounds().Size())
	assert.Equal(t, image.Pt(40, 10), orient(img, 1).Bounds().Size())
}

func TestUploaderStoresBothRenditions(t *testing.T) {
	ctx := context.Background()
	objects := storage.NewMemoryStore("http://cdn.local")
	u := NewUploader(objects, 5<<20, zap.NewNop())

	up, err := u.Upload(ctx, "menu", "menu_padthai", pngBytes(t, 800, 800))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(up.URL, "http://cdn.local/menu/menu_padthai/"))
	assert.Equal(t, ThumbURL(up.URL), up.ThumbURL)
	assert.Len(t, objects.Keys(), 2)

	u.Remove(ctx, up.URL)
	assert.Empty(t, objects.Keys())

	u.Remove(ctx, "https://images.example.com/padthai.jpg")
}

func TestUploaderRejects(t *testing.T) {
	ctx := context.Background()
	u := NewUploader(storage.NewMemoryStore("http://cdn.local"), 100, zap.NewNop())

	_, err := u.Upload(ctx, "menu", "x", []byte("hello, this is not an image"))
	assert.True(t, apperr.HasCode(err, apperr.ErrInvalidImage))

	_, err = u.Upload(ctx, "menu", "x", pngBytes(t, 600, 600))
	appErr, ok := apperr.As(err)
	require.True(t, ok, "png of 600x600 should exceed 100 bytes: %v", err)
	assert.Equal(t, 413, appErr.StatusCode)

	_, err = NewUploader(nil, 0, nil).Upload(ctx, "menu", "x", []byte{1})
	assert.True(t, apperr.HasCode(err, apperr.ErrStorageUnavailable))
}
