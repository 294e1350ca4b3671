package scanner

import (
	"context"
	"errors"
	"image"
)

// ErrOCRUnavailable is returned by builds without a text recognizer.
var ErrOCRUnavailable = errors.New("OCR support not compiled in (build with -tags ocr_tesseract)")

// OCR reads human readable text from an image, typically the caption under
// a linear barcode.
type OCR interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// OCRFunc adapts a function to the OCR interface.
type OCRFunc func(ctx context.Context, img image.Image) (string, error)

func (f OCRFunc) Recognize(ctx context.Context, img image.Image) (string, error) {
	return f(ctx, img)
}
