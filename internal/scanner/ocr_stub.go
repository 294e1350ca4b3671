//go:build !ocr_tesseract

package scanner

import (
	"context"
	"image"
)

type noOCR struct{}

// NewOCR returns the build's text recognizer. This build has none.
func NewOCR() OCR { return noOCR{} }

func (noOCR) Recognize(context.Context, image.Image) (string, error) {
	return "", ErrOCRUnavailable
}
