package scanner

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/anime-shed/barcode-studio-go/internal/logger"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/ean"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qrImage(t *testing.T, text string) image.Image {
	t.Helper()
	q, err := qrcode.New(text, qrcode.Medium)
	require.NoError(t, err)
	return q.Image(256)
}

// padded draws bc scaled onto a white canvas with a quiet zone.
func padded(t *testing.T, bc barcode.Barcode, w, h int) image.Image {
	t.Helper()
	scaled, err := barcode.Scale(bc, w, h)
	require.NoError(t, err)
	canvas := image.NewGray(image.Rect(0, 0, w+80, h+40))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(canvas, scaled.Bounds().Add(image.Pt(40, 20)), scaled, image.Point{}, draw.Over)
	return canvas
}

func blank(w, h int, c color.Color) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func newTestScanner(opts ...Option) *Scanner {
	return New(append([]Option{WithLogger(logger.Discard())}, opts...)...)
}

func TestScan_DecodesGeneratedCodes(t *testing.T) {
	c128, err := code128.Encode("SCAN-128")
	require.NoError(t, err)
	e13, err := ean.Encode("590123412345")
	require.NoError(t, err)

	tests := []struct {
		name     string
		img      image.Image
		wantKind Kind
		wantText string
	}{
		{"qr", qrImage(t, "https://example.com/scan"), KindQR, "https://example.com/scan"},
		{"code128", padded(t, c128, c128.Bounds().Dx()*3, 120), KindCode128, "SCAN-128"},
		{"ean13", padded(t, e13, e13.Bounds().Dx()*3, 120), KindEAN13, "5901234123457"},
	}

	s := newTestScanner()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.Scan(context.Background(), tt.img, Options{TryHarder: true})
			require.NoError(t, err)
			require.NotEmpty(t, res.Symbols)
			assert.Equal(t, tt.wantKind, res.Symbols[0].Kind)
			assert.Equal(t, tt.wantText, res.Symbols[0].Text)
			assert.NotEmpty(t, res.Symbols[0].Points)
		})
	}
}

func TestScan_NothingFound(t *testing.T) {
	s := newTestScanner()
	_, err := s.Scan(context.Background(), blank(200, 200, color.White), Options{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScan_EmptyImage(t *testing.T) {
	s := newTestScanner()
	_, err := s.Scan(context.Background(), image.NewGray(image.Rect(0, 0, 0, 0)), Options{})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestScan_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestScanner().Scan(ctx, qrImage(t, "x"), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

type stubBackend struct {
	symbols []Symbol
	err     error
}

func (b stubBackend) Decode(context.Context, image.Image, Options) ([]Symbol, error) {
	return b.symbols, b.err
}

func TestScan_OCRFallback(t *testing.T) {
	ocr := OCRFunc(func(context.Context, image.Image) (string, error) { return "ABC-123", nil })
	s := newTestScanner(WithBackend(stubBackend{err: ErrNotFound}), WithOCR(ocr))

	res, err := s.Scan(context.Background(), blank(10, 10, color.White), Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Symbols)
	assert.Equal(t, "ABC-123", res.OCRText)
}

func TestScan_OCRUnavailableIsNotFound(t *testing.T) {
	ocr := OCRFunc(func(context.Context, image.Image) (string, error) { return "", ErrOCRUnavailable })
	s := newTestScanner(WithBackend(stubBackend{err: ErrNotFound}), WithOCR(ocr))

	_, err := s.Scan(context.Background(), blank(10, 10, color.White), Options{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScan_BackendFailureIsReturned(t *testing.T) {
	boom := errors.New("boom")
	s := newTestScanner(WithBackend(stubBackend{err: boom}))

	_, err := s.Scan(context.Background(), blank(10, 10, color.White), Options{})
	assert.ErrorIs(t, err, boom)
}

func TestKindLabels(t *testing.T) {
	tests := []struct {
		kind  Kind
		label string
		id    string
	}{
		{KindQR, "QR Code", "qrcode"},
		{KindCode128, "Code 128", "CODE128"},
		{KindUPCA, "UPC-A", "UPC"},
		{KindDataMatrix, "Data Matrix", "datamatrix"},
		{KindUnknown, "Unknown", "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.label, tt.kind.Label())
		assert.Equal(t, tt.id, tt.kind.ID())
	}
}
