// Package media turns uploaded business logos into small WebP images and
// stores them in S3 compatible object storage.
package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/BruksfildServices01/schedmate/internal/httperr"
)

const (
	// MaxLogoBytes bounds the upload before decoding.
	MaxLogoBytes = 5 << 20
	// LogoSize is the bounding box logos are scaled into.
	LogoSize = 256

	logoQuality = 85
)

var (
	ErrInvalidImage  = httperr.ErrBusiness("invalid_image")
	ErrImageTooLarge = httperr.ErrBusiness("image_too_large")
)

// ObjectStore writes one object and returns its public URL.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) (string, error)
}

type LogoService struct {
	store ObjectStore
	log   *zap.Logger
}

func NewLogoService(store ObjectStore, log *zap.Logger) *LogoService {
	return &LogoService{store: store, log: log}
}

// StoreLogo decodes a PNG, JPEG or WebP image, scales it to fit
// LogoSize×LogoSize and stores it as WebP under the owner's prefix.
func (s *LogoService) StoreLogo(ctx context.Context, ownerID uint, r io.Reader) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxLogoBytes+1))
	if err != nil {
		return "", fmt.Errorf("read logo: %w", err)
	}
	if len(raw) > MaxLogoBytes {
		return "", ErrImageTooLarge
	}

	body, err := EncodeLogo(bytes.NewReader(raw))
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("logos/%d/%s.webp", ownerID, uuid.NewString())
	url, err := s.store.Put(ctx, key, "image/webp", body)
	if err != nil {
		return "", fmt.Errorf("put logo: %w", err)
	}

	s.log.Info("logo stored",
		zap.Uint("owner_id", ownerID),
		zap.String("key", key),
		zap.Int("bytes", len(body)),
	)
	return url, nil
}

// EncodeLogo returns the WebP encoding of the scaled image.
func EncodeLogo(r io.Reader) ([]byte, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, ErrInvalidImage
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, Fit(src, LogoSize), &webp.Options{Quality: logoQuality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

// Fit scales src down to fit a size×size box, keeping its aspect ratio.
// Images already inside the box are returned unchanged.
func Fit(src image.Image, size int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= size && h <= size {
		return src
	}

	nw, nh := size, size
	if w > h {
		nh = max(1, h*size/w)
	} else {
		nw = max(1, w*size/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
