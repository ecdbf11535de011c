package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/schedmate/internal/config"
	"github.com/BruksfildServices01/schedmate/internal/httperr"
)

type memoryStore struct {
	key, contentType string
	body             []byte
	err              error
}

func (m *memoryStore) Put(_ context.Context, key, contentType string, body []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.key, m.contentType, m.body = key, contentType, body
	return "https://cdn.test/" + key, nil
}

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFitKeepsAspectRatio(t *testing.T) {
	wide := Fit(image.NewRGBA(image.Rect(0, 0, 1024, 512)), LogoSize)
	assert.Equal(t, 256, wide.Bounds().Dx())
	assert.Equal(t, 128, wide.Bounds().Dy())

	tall := Fit(image.NewRGBA(image.Rect(0, 0, 300, 900)), LogoSize)
	assert.Equal(t, 85, tall.Bounds().Dx())
	assert.Equal(t, 256, tall.Bounds().Dy())

	small := image.NewRGBA(image.Rect(0, 0, 64, 32))
	assert.Same(t, small, Fit(small, LogoSize))
}

func TestStoreLogoWritesScaledWebP(t *testing.T) {
	store := &memoryStore{}
	svc := NewLogoService(store, zap.NewNop())

	url, err := svc.StoreLogo(context.Background(), 7, bytes.NewReader(pngOf(t, 800, 400)))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(store.key, "logos/7/"))
	assert.True(t, strings.HasSuffix(store.key, ".webp"))
	assert.Equal(t, "image/webp", store.contentType)
	assert.Equal(t, "https://cdn.test/"+store.key, url)

	cfg, err := webp.DecodeConfig(bytes.NewReader(store.body))
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.Width)
	assert.Equal(t, 128, cfg.Height)
}

func TestStoreLogoRejectsBadInput(t *testing.T) {
	svc := NewLogoService(&memoryStore{}, zap.NewNop())

	_, err := svc.StoreLogo(context.Background(), 1, strings.NewReader("definitely not an image"))
	assert.ErrorIs(t, err, ErrInvalidImage)
	assert.True(t, httperr.IsBusiness(err, "invalid_image"))

	big := bytes.Repeat([]byte{0}, MaxLogoBytes+1)
	_, err = svc.StoreLogo(context.Background(), 1, bytes.NewReader(big))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestStoreLogoPropagatesStorageErrors(t *testing.T) {
	boom := errors.New("bucket gone")
	svc := NewLogoService(&memoryStore{err: boom}, zap.NewNop())

	_, err := svc.StoreLogo(context.Background(), 1, bytes.NewReader(pngOf(t, 32, 32)))
	assert.ErrorIs(t, err, boom)
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "https://cdn.test",
		PublicBaseURL(config.S3Config{PublicBaseURL: "https://cdn.test/", Bucket: "logos"}))
	assert.Equal(t, "http://minio:9000/logos",
		PublicBaseURL(config.S3Config{Endpoint: "http://minio:9000", Bucket: "logos"}))
	assert.Equal(t, "https://logos.s3.eu-west-1.amazonaws.com",
		PublicBaseURL(config.S3Config{Bucket: "logos", Region: "eu-west-1"}))
}
