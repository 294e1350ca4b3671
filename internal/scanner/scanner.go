// Package scanner decodes barcodes and QR codes from captured images and
// explains failed decodes with capture-quality hints.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/anime-shed/barcode-studio-go/internal/logger"
	"github.com/anime-shed/barcode-studio-go/internal/symbology"

	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned when no symbol could be decoded.
var ErrNotFound = errors.New("no barcode detected in the image")

// Kind is a decodable barcode format.
type Kind int

const (
	KindUnknown Kind = iota
	KindQR
	KindDataMatrix
	KindAztec
	KindPDF417
	KindCode128
	KindCode39
	KindCode93
	KindEAN8
	KindEAN13
	KindUPCA
	KindUPCE
	KindITF
	KindCodabar
)

var kindNames = map[Kind]struct {
	label string
	id    string
}{
	KindQR:         {"QR Code", symbology.QRCode.Wire()},
	KindDataMatrix: {"Data Matrix", symbology.DataMatrix.Wire()},
	KindAztec:      {"Aztec Code", symbology.Aztec.Wire()},
	KindPDF417:     {"PDF417", symbology.PDF417.Wire()},
	KindCode128:    {"Code 128", symbology.Code128.Wire()},
	KindCode39:     {"Code 39", symbology.Code39.Wire()},
	KindCode93:     {"Code 93", symbology.Code93.Wire()},
	KindEAN8:       {"EAN-8", symbology.EAN8.Wire()},
	KindEAN13:      {"EAN-13", symbology.EAN13.Wire()},
	KindUPCA:       {"UPC-A", symbology.UPC.Wire()},
	KindUPCE:       {"UPC-E", "UPCE"},
	KindITF:        {"ITF", symbology.ITF14.Wire()},
	KindCodabar:    {"Codabar", symbology.Codabar.Wire()},
}

// Label is the human readable name, e.g. "QR Code".
func (k Kind) Label() string {
	if n, ok := kindNames[k]; ok {
		return n.label
	}
	return "Unknown"
}

// ID is the generator identifier of the matching symbology where one exists.
func (k Kind) ID() string {
	if n, ok := kindNames[k]; ok {
		return n.id
	}
	return "unknown"
}

// Symbol is one decoded code.
type Symbol struct {
	Kind   Kind
	Text   string
	Points []image.Point
}

// Options tune a decode.
type Options struct {
	TryHarder bool
	Multi     bool
}

// Backend decodes symbols from an image.
type Backend interface {
	Decode(ctx context.Context, img image.Image, opts Options) ([]Symbol, error)
}

// Scanner runs the decoding backend and, when nothing decodes, the optional
// OCR reader over the same image.
type Scanner struct {
	backend Backend
	ocr     OCR
	log     logrus.FieldLogger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithBackend replaces the gozxing backend.
func WithBackend(b Backend) Option {
	return func(s *Scanner) { s.backend = b }
}

// WithOCR sets the text recognizer used as a last resort.
func WithOCR(o OCR) Option {
	return func(s *Scanner) { s.ocr = o }
}

// WithLogger sets the scanner logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Scanner) { s.log = l }
}

// New creates a scanner using gozxing and the build's OCR backend.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		backend: NewGozxingBackend(),
		ocr:     NewOCR(),
		log:     logger.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result is what a scan produced.
type Result struct {
	Symbols []Symbol
	// OCRText is set when the decoders failed and OCR recognised text.
	OCRText string
}

// Scan decodes img. It returns ErrNotFound when neither the decoders nor OCR
// found anything.
func (s *Scanner) Scan(ctx context.Context, img image.Image, opts Options) (*Result, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("scan: empty image")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	symbols, err := s.backend.Decode(ctx, img, opts)
	if err == nil && len(symbols) > 0 {
		return &Result{Symbols: symbols}, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("decode: %w", err)
	}

	if s.ocr == nil {
		return nil, ErrNotFound
	}
	text, ocrErr := s.ocr.Recognize(ctx, img)
	switch {
	case ocrErr == nil && text != "":
		return &Result{OCRText: text}, nil
	case ocrErr != nil && !errors.Is(ocrErr, ErrOCRUnavailable):
		s.log.WithError(ocrErr).Warn("OCR fallback failed")
	}
	return nil, ErrNotFound
}
