// Package storage decodes uploaded images and keeps them on local disk or in S3.
package storage

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
)

const (
	// MaxDimension bounds the longest side of a stored image.
	MaxDimension = 1280
	// MaxPixels bounds the declared size of an upload before it is decoded.
	MaxPixels = 40_000_000
)

var ErrInvalidImage = errors.New("upload a valid image")

// Image is a decoded upload ready to be stored.
type Image struct {
	Img    image.Image
	Format imaging.Format
}

// Ext returns the file extension used when storing the image.
func (i *Image) Ext() string {
	switch i.Format {
	case imaging.JPEG:
		return "jpg"
	default:
		return strings.ToLower(i.Format.String())
	}
}

func (i *Image) ContentType() string {
	return "image/" + strings.ToLower(i.Format.String())
}

// DecodeDataURI accepts "data:image/<fmt>;base64,<payload>" or a bare base64
// payload and returns the decoded image. Anything that is not a real image
// fails with ErrInvalidImage.
func DecodeDataURI(s string) (*Image, error) {
	payload := strings.TrimSpace(s)
	if strings.HasPrefix(payload, "data:") {
		header, data, ok := strings.Cut(payload, ",")
		if !ok || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
			return nil, ErrInvalidImage
		}
		payload = data
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	cfg, name, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidImage, cfg.Width, cfg.Height, MaxPixels)
	}
	format, err := imaging.FormatFromExtension(name)
	if err != nil {
		return nil, fmt.Errorf("%w: unsupported format %s", ErrInvalidImage, name)
	}

	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	b := img.Bounds()
	if b.Dx() > MaxDimension || b.Dy() > MaxDimension {
		img = imaging.Fit(img, MaxDimension, MaxDimension, imaging.Lanczos)
	}

	return &Image{Img: img, Format: format}, nil
}
