// Package storage fetches logo images from remote and local sources.
package storage

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// MaxLogoBytes caps how much of a logo source is read before decoding.
const MaxLogoBytes = 5 * 1024 * 1024

// LogoSource loads a logo image from one kind of backing store.
type LogoSource interface {
	Fetch(ctx context.Context, ref string) (image.Image, error)
}

func decodeImage(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(io.LimitReader(r, MaxLogoBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}
