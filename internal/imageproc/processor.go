// Package imageproc validates and normalizes uploaded images before storage.
package imageproc

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // registers the WebP decoder

	apperrors "imagevault/internal/errors"
)

const (
	// MaxUploadSize is the largest raw payload accepted, checked before decoding.
	MaxUploadSize = 10 * 1024 * 1024
	// MaxWidth and MaxHeight bound the stored resolution.
	MaxWidth  = 1920
	MaxHeight = 1080
	// Quality is the lossy encoder quality. Lossless formats ignore it.
	Quality = 85
	// MaxPixels caps the declared width×height accepted for decoding.
	// Decoders size their pixel buffer from the header, so this is checked
	// before any pixel data is read.
	MaxPixels = 2 * 89478485
)

// encoders maps each allowed content type to its output format. WebP has no
// encoder here and falls back to JPEG.
var encoders = map[string]imaging.Format{
	"image/jpeg": imaging.JPEG,
	"image/jpg":  imaging.JPEG,
	"image/png":  imaging.PNG,
	"image/gif":  imaging.GIF,
}

// AllowedContentTypes lists the declared types accepted for upload.
var AllowedContentTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp"}

// Processed is a normalized image ready for storage.
type Processed struct {
	// Data is the re-encoded image in standard base64 without line breaks.
	Data string
	// Size is the re-encoded byte length, not the upload size.
	Size   int
	Width  int
	Height int
}

// Processor runs the normalization pipeline.
type Processor struct {
	maxBytes int
	quality  int
}

// NewProcessor returns a Processor with the service limits.
func NewProcessor() *Processor {
	return &Processor{maxBytes: MaxUploadSize, quality: Quality}
}

// IsAllowed reports whether contentType is on the allow-list. The match is exact.
func IsAllowed(contentType string) bool {
	for _, t := range AllowedContentTypes {
		if t == contentType {
			return true
		}
	}
	return false
}

// Process validates, checks declared dimensions, decodes, flattens, downscales and re-encodes data.
// Every failure is an *apperrors.ImageError.
func (p *Processor) Process(data []byte, contentType string) (out *Processed, err error) {
	if !IsAllowed(contentType) {
		return nil, apperrors.NewImageError(apperrors.ErrInvalidFileType, nil)
	}
	if len(data) > p.maxBytes {
		return nil, apperrors.NewImageError(apperrors.ErrFileTooLarge, nil)
	}

	// codecs may panic on hostile input
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = apperrors.NewImageError(apperrors.ErrInvalidImageFile, fmt.Errorf("%v", r))
		}
	}()

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewImageError(apperrors.ErrInvalidImageFile, err)
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > MaxPixels {
		return nil, apperrors.NewImageError(apperrors.ErrInvalidImageFile,
			fmt.Errorf("image size (%d pixels) exceeds limit of %d pixels", pixels, int64(MaxPixels)))
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewImageError(apperrors.ErrInvalidImageFile, err)
	}

	if hasAlphaOrPalette(img) {
		img = flatten(img)
	}

	b := img.Bounds()
	if b.Dx() > MaxWidth || b.Dy() > MaxHeight {
		img = imaging.Fit(img, MaxWidth, MaxHeight, imaging.Lanczos)
	}

	format, ok := encoders[contentType]
	if !ok {
		format = imaging.JPEG
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, imaging.JPEGQuality(p.quality)); err != nil {
		return nil, apperrors.NewImageError(apperrors.ErrInvalidImageFile, err)
	}

	b = img.Bounds()
	return &Processed{
		Data:   base64.StdEncoding.EncodeToString(buf.Bytes()),
		Size:   buf.Len(),
		Width:  b.Dx(),
		Height: b.Dy(),
	}, nil
}

func hasAlphaOrPalette(img image.Image) bool {
	switch img.(type) {
	case *image.Paletted, *image.NRGBA, *image.NRGBA64, *image.RGBA, *image.RGBA64, *image.Alpha, *image.Alpha16:
		return true
	}
	return false
}

// flatten drops the alpha channel, keeping the stored color values.
func flatten(img image.Image) image.Image {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}
