package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"

	"psocial/internal/models"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	DefaultAvatarMaxBytes     = 2 << 20
	DefaultAvatarMaxDimension = 256
	DefaultAvatarMaxPixels    = 16_000_000
	AvatarWebPQuality         = 75
)

// AvatarEncoder turns an uploaded image into the data URI stored in
// Profile.Avatar. Encoding finishes before SaveProfile is called, so an
// upload never races the profile write it feeds.
type AvatarEncoder struct {
	MaxBytes     int
	MaxDimension int
	// MaxPixels bounds width*height of the source image. It is checked
	// from the header before the raster is allocated.
	MaxPixels int
}

func NewAvatarEncoder(maxBytes, maxDimension int) *AvatarEncoder {
	if maxBytes <= 0 {
		maxBytes = DefaultAvatarMaxBytes
	}
	if maxDimension <= 0 {
		maxDimension = DefaultAvatarMaxDimension
	}
	return &AvatarEncoder{MaxBytes: maxBytes, MaxDimension: maxDimension, MaxPixels: DefaultAvatarMaxPixels}
}

// WithMaxPixels sets the source pixel cap. Non-positive values keep the
// default.
func (e *AvatarEncoder) WithMaxPixels(n int) *AvatarEncoder {
	if n > 0 {
		e.MaxPixels = n
	}
	return e
}

// Encode reads at most MaxBytes from r, rejects images over MaxPixels, scales the image to fit
// MaxDimension and returns it as a data:image/webp;base64 URI.
func (e *AvatarEncoder) Encode(ctx context.Context, r io.Reader) (string, error) {
	content, err := io.ReadAll(io.LimitReader(r, int64(e.MaxBytes)+1))
	if err != nil {
		return "", fmt.Errorf("read avatar: %w", err)
	}
	if len(content) == 0 {
		return "", models.NewValidationError("No file uploaded")
	}
	if len(content) > e.MaxBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %d bytes)", e.MaxBytes))
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}
	maxPixels := e.MaxPixels
	if maxPixels <= 0 {
		maxPixels = DefaultAvatarMaxPixels
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return "", models.NewValidationError(fmt.Sprintf("Image too large (max %d pixels)", maxPixels))
	}

	decoded, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return "", models.NewValidationError("Invalid image file")
	}

	buf := bytes.NewBuffer(nil)
	scaled := resizeToFit(decoded, e.MaxDimension, e.MaxDimension)
	if err := webp.Encode(buf, scaled, &webp.Options{Quality: AvatarWebPQuality}); err != nil {
		return "", models.NewInternalError(fmt.Errorf("encode avatar: %w", err))
	}
	return "data:image/webp;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 || (w <= maxWidth && h <= maxHeight) {
		return src
	}

	scale := min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}
