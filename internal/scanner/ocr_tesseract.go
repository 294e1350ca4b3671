//go:build ocr_tesseract

package scanner

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// captionWhitelist covers the characters linear symbologies can print.
const captionWhitelist = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-.$/+%: "

type tesseractOCR struct{}

// NewOCR returns a Tesseract backed recognizer. Each call gets its own
// client since gosseract clients are not safe for concurrent use.
func NewOCR() OCR { return tesseractOCR{} }

func (tesseractOCR) Recognize(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode for OCR: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetWhitelist(captionWhitelist); err != nil {
		return "", fmt.Errorf("configure OCR: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return "", fmt.Errorf("configure OCR: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("load OCR image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR: %w", err)
	}
	return strings.TrimSpace(text), nil
}
