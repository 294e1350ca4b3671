// Package generator turns a symbology, a payload and a set of rendering
// options into an encoded image or SVG document.
//
// The pipeline is stateless: a single Pipeline value may serve any number of
// concurrent requests. Expected failures (bad payloads, unknown symbologies,
// invalid options) come back as a Result with Success=false; only
// unexpected failures are returned as errors.
package generator

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	apperrors "github.com/anime-shed/barcode-studio-go/internal/errors"
	"github.com/anime-shed/barcode-studio-go/internal/logger"
	"github.com/anime-shed/barcode-studio-go/internal/symbology"

	"github.com/sirupsen/logrus"
)

// LogoLoader resolves a logo reference (path, URL, blob) into an image.
type LogoLoader interface {
	Load(ctx context.Context, source string) (image.Image, error)
}

// Request is a validated generation request.
type Request struct {
	Symbology symbology.Symbology
	Payload   string
	Format    symbology.Format
	Options   Options
}

// Result is the JSON envelope returned to API clients.
type Result struct {
	Success bool   `json:"success"`
	Type    string `json:"type,omitempty"`
	Format  string `json:"format,omitempty"`
	Data    string `json:"data,omitempty"`
	Note    string `json:"note,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Simulated reports whether the result came from the placeholder fallback.
func (r *Result) Simulated() bool {
	return r != nil && r.Success && r.Note != ""
}

const (
	defaultLogoTimeout = 5 * time.Second
	// DefaultMaxWidth caps the content width of linear codes in pixels.
	DefaultMaxWidth = 16384
)

// Pipeline renders generation requests.
type Pipeline struct {
	logos       LogoLoader
	matrix      MatrixRenderer
	log         logrus.FieldLogger
	logoTimeout time.Duration
	maxWidth    int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogoLoader enables logo overlays for QR codes.
func WithLogoLoader(l LogoLoader) Option {
	return func(p *Pipeline) { p.logos = l }
}

// WithMatrixRenderer substitutes the DataMatrix/PDF417/Aztec capability.
func WithMatrixRenderer(m MatrixRenderer) Option {
	return func(p *Pipeline) { p.matrix = m }
}

// WithLogger sets the logger used for advisories.
func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Pipeline) { p.log = l }
}

// WithLogoTimeout bounds how long a logo load may take.
func WithLogoTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.logoTimeout = d
		}
	}
}

// WithMaxWidth bounds the pixel width of linear codes. Zero or less disables
// the check.
func WithMaxWidth(px int) Option {
	return func(p *Pipeline) { p.maxWidth = px }
}

// New creates a pipeline. Without options it uses the bundled 2D renderer,
// the package logger and no logo support.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		matrix:      NewMatrixRenderer(),
		log:         logger.Logger,
		logoTimeout: defaultLogoTimeout,
		maxWidth:    DefaultMaxWidth,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Generate is the string-typed entry point. It validates the identifiers and
// then renders. An empty format means png.
func (p *Pipeline) Generate(ctx context.Context, symbologyID, payload, format string, opts Options) (*Result, error) {
	if strings.TrimSpace(symbologyID) == "" || payload == "" {
		return failure(symbologyID, format, "Type and data are required"), nil
	}
	if strings.TrimSpace(format) == "" {
		format = string(symbology.FormatPNG)
	}

	f, err := symbology.ParseFormat(format)
	if err != nil {
		return failure(symbologyID, format, "Invalid format. Allowed: "+symbology.AllowedList()), nil
	}

	sym, err := symbology.Parse(symbologyID)
	if err != nil {
		// Unknown identifiers take the linear path, which has no encoder for them.
		return failure(symbologyID, string(f),
			fmt.Sprintf("Invalid data for %s: %v", strings.ToUpper(strings.TrimSpace(symbologyID)), symbology.ErrUnsupported)), nil
	}

	return p.Render(ctx, Request{Symbology: sym, Payload: payload, Format: f, Options: opts})
}

// Render dispatches a typed request to its strategy.
func (p *Pipeline) Render(ctx context.Context, req Request) (*Result, error) {
	typ := req.Symbology.Wire()
	if req.Payload == "" {
		return failure(typ, string(req.Format), "Type and data are required"), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	family := req.Symbology.Family()
	opts, err := req.Options.resolve(family)
	if err != nil {
		return failure(typ, string(req.Format), "Invalid options: "+err.Error()), nil
	}

	var res *Result
	switch family {
	case symbology.FamilyQR:
		res, err = p.renderQR(ctx, req, opts)
	case symbology.FamilyMatrix2D:
		res, err = p.renderMatrix(ctx, req, opts)
	case symbology.FamilyLinear:
		res, err = p.renderLinear(req, opts)
	default:
		err = apperrors.NewUnsupportedSymbologyError("Unsupported barcode family: "+family.String(), nil)
	}

	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) &&
			(appErr.Type == apperrors.ErrorTypeInvalidPayload || appErr.Type == apperrors.ErrorTypeUnsupportedSymbology) {
			p.log.WithFields(logrus.Fields{
				"type":   typ,
				"format": req.Format,
			}).WithError(err).Debug("Generation rejected")
			return failure(typ, string(req.Format), appErr.Message), nil
		}
		return nil, fmt.Errorf("generate %s: %w", typ, err)
	}
	return res, nil
}

func success(typ string, f symbology.Format, data string) *Result {
	return &Result{Success: true, Type: typ, Format: string(f), Data: data}
}

func failure(typ, format, msg string) *Result {
	return &Result{Success: false, Type: typ, Format: format, Error: msg}
}

func invalidData(sym symbology.Symbology, cause error) error {
	return apperrors.NewInvalidPayloadError(fmt.Sprintf("Invalid data for %s: %v", sym, cause), cause)
}
