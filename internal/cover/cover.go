// Package cover normalizes uploaded item cover images.
package cover

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

const (
	// MaxSide bounds the width and height of a stored cover.
	MaxSide = 800
	// MaxUploadBytes bounds the size of an uploaded cover.
	MaxUploadBytes = 5 << 20
	// MaxPixels bounds the decoded size of an uploaded cover.
	MaxPixels = 24_000_000

	quality = 85
)

var (
	ErrUnsupportedFormat = errors.New("unsupported cover format")
	ErrTooLarge          = errors.New("cover too large")
)

// Cover is a normalized cover image, always JPEG.
type Cover struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// Normalize sniffs r as JPEG or PNG, shrinks it to fit MaxSide and
// re-encodes it as JPEG.
func Normalize(r io.Reader) (*Cover, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading cover: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, ErrTooLarge
	}

	switch mime := http.DetectContentType(data); mime {
	case "image/jpeg", "image/png":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mime)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding cover header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > MaxPixels/cfg.Height {
		return nil, fmt.Errorf("%w: %dx%d pixels", ErrTooLarge, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding cover: %w", err)
	}

	img := shrink(src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encoding cover: %w", err)
	}

	b := img.Bounds()
	return &Cover{Data: buf.Bytes(), MIME: "image/jpeg", Width: b.Dx(), Height: b.Dy()}, nil
}

// Fit scales w x h down so that neither side exceeds limit, keeping the
// aspect ratio. Sizes already within bounds are returned unchanged.
func Fit(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	if w >= h {
		return limit, clampSide(h * limit / w)
	}
	return clampSide(w * limit / h), limit
}

func clampSide(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func shrink(src image.Image) image.Image {
	b := src.Bounds()
	w, h := Fit(b.Dx(), b.Dy(), MaxSide)
	if w == b.Dx() && h == b.Dy() {
		return src
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
