package generator

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	apperrors "github.com/anime-shed/barcode-studio-go/internal/errors"
	"github.com/anime-shed/barcode-studio-go/internal/symbology"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/aztec"
	"github.com/boombuler/barcode/datamatrix"
	"github.com/boombuler/barcode/pdf417"
	"github.com/sirupsen/logrus"
)

// ErrUnknownBCID is returned by a MatrixRenderer for encoders it lacks.
var ErrUnknownBCID = errors.New("unknown barcode encoder")

// MatrixRequest describes one DataMatrix, PDF417 or Aztec rendering.
type MatrixRequest struct {
	BCID          string
	Text          string
	Width         int
	Height        int
	IncludeText   bool
	TextSize      int
	Scale         int
	PaddingWidth  int
	PaddingHeight int
	Foreground    color.NRGBA
	Background    color.NRGBA
}

// MatrixRenderer is the 2D rendering capability. Implementations must be
// safe for concurrent use.
type MatrixRenderer interface {
	RenderMatrix(ctx context.Context, req MatrixRequest) (image.Image, error)
}

// MatrixRendererFunc adapts a function to MatrixRenderer.
type MatrixRendererFunc func(ctx context.Context, req MatrixRequest) (image.Image, error)

func (f MatrixRendererFunc) RenderMatrix(ctx context.Context, req MatrixRequest) (image.Image, error) {
	return f(ctx, req)
}

const (
	placeholderSize   = 200
	placeholderInset  = 20
	placeholderFont   = 12
	placeholderRunes  = 20
	minMatrixWidth    = 20
	matrixWidthFactor = 10
	matrixTextGap     = 4
	aztecECPercent    = 33
	pdf417Security    = 2
)

var (
	placeholderLabel = color.NRGBA{R: 255, A: 255}
	placeholderBlack = color.NRGBA{A: 255}
	placeholderWhite = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

func bcidFor(sym symbology.Symbology) (string, bool) {
	switch sym {
	case symbology.DataMatrix:
		return "datamatrix", true
	case symbology.PDF417:
		return "pdf417", true
	case symbology.Aztec:
		return "azteccode", true
	}
	return "", false
}

func (p *Pipeline) renderMatrix(ctx context.Context, req Request, o resolved) (*Result, error) {
	bcid, ok := bcidFor(req.Symbology)
	if !ok {
		return nil, apperrors.NewUnsupportedSymbologyError(
			fmt.Sprintf("Invalid data for %s: unsupported 2D barcode type", req.Symbology), nil)
	}

	mreq := MatrixRequest{
		BCID:          bcid,
		Text:          req.Payload,
		Width:         max(int(o.Width*matrixWidthFactor), minMatrixWidth),
		Height:        o.Height,
		IncludeText:   o.DisplayValue,
		TextSize:      o.FontSize,
		Scale:         o.Scale,
		PaddingWidth:  o.Margin,
		PaddingHeight: o.Margin,
		Foreground:    o.Foreground,
		Background:    o.Background,
	}

	typ := req.Symbology.Wire()
	img, err := p.renderMatrixImage(ctx, mreq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		p.log.WithFields(logrus.Fields{
			"type": typ,
			"bcid": bcid,
		}).WithError(err).Warn("2D renderer failed, returning placeholder")

		ph, perr := placeholder(req.Symbology, req.Payload)
		if perr != nil {
			return nil, perr
		}
		// The placeholder is raster only; svg requests get a PNG.
		f := req.Format
		if f.IsVector() {
			f = symbology.FormatPNG
		}
		data, perr := rasterData(ph, f)
		if perr != nil {
			return nil, perr
		}
		res := success(typ, f, data)
		res.Note = fmt.Sprintf("%s generation is simulated. Install proper libraries for production.", typ)
		return res, nil
	}

	if req.Format.IsVector() {
		return success(typ, req.Format, embedRasterSVG(img)), nil
	}
	data, err := rasterData(img, req.Format)
	if err != nil {
		return nil, err
	}
	return success(typ, req.Format, data), nil
}

func (p *Pipeline) renderMatrixImage(ctx context.Context, req MatrixRequest) (img image.Image, err error) {
	if p.matrix == nil {
		return nil, apperrors.NewCapabilityUnavailableError("no 2D renderer configured", nil)
	}
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("2D renderer panic: %v", r)
		}
	}()
	return p.matrix.RenderMatrix(ctx, req)
}

// embedRasterSVG wraps a raster rendering in an SVG document.
func embedRasterSVG(img image.Image) string {
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	doc := newSVG(w, h)
	if data, err := encodeImage(img, symbology.FormatPNG); err == nil {
		doc.image(0, 0, w, h, dataURI("image/png", data))
	}
	return doc.String()
}

// placeholder draws the labelled stand-in used when 2D rendering fails.
func placeholder(sym symbology.Symbology, payload string) (image.Image, error) {
	img := newCanvas(placeholderSize, placeholderSize, placeholderWhite)
	inner := float64(placeholderSize - 2*placeholderInset)
	fillRect(img, placeholderInset, placeholderInset, inner, inner, placeholderBlack)

	centre := placeholderSize / 2
	label := strings.ToUpper(string(sym)) + " PLACEHOLDER"
	if err := drawText(img, label, centre, 30, placeholderFont, placeholderLabel); err != nil {
		return nil, err
	}
	if err := drawText(img, truncateRunes(payload, placeholderRunes), centre, 100, placeholderFont, placeholderWhite); err != nil {
		return nil, err
	}
	return img, nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// boombulerRenderer renders 2D symbols with github.com/boombuler/barcode.
type boombulerRenderer struct{}

// NewMatrixRenderer returns the bundled 2D renderer.
func NewMatrixRenderer() MatrixRenderer {
	return boombulerRenderer{}
}

func (boombulerRenderer) RenderMatrix(ctx context.Context, req MatrixRequest) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		bc  barcode.Barcode
		err error
	)
	switch req.BCID {
	case "datamatrix":
		bc, err = datamatrix.Encode(req.Text)
	case "pdf417":
		bc, err = pdf417.Encode(req.Text, pdf417Security)
	case "azteccode":
		bc, err = aztec.Encode([]byte(req.Text), aztecECPercent, 0)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBCID, req.BCID)
	}
	if err != nil {
		return nil, err
	}

	scale := max(req.Scale, 1)
	b := bc.Bounds()
	symW, symH := b.Dx()*scale, b.Dy()*scale
	scaled, err := barcode.Scale(bc, symW, symH)
	if err != nil {
		return nil, err
	}

	textH := 0
	if req.IncludeText {
		textH = req.TextSize + matrixTextGap
	}
	w := max(symW+2*req.PaddingWidth, req.Width)
	h := max(symH+2*req.PaddingHeight+textH, req.Height)

	img := newCanvas(w, h, req.Background)
	ox := (w - symW) / 2
	oy := (h - symH - textH) / 2
	for y := 0; y < symH; y++ {
		for x := 0; x < symW; x++ {
			if r, _, _, _ := scaled.At(x, y).RGBA(); r < 0x8000 {
				img.SetNRGBA(ox+x, oy+y, req.Foreground)
			}
		}
	}

	if req.IncludeText {
		baseline := oy + symH + matrixTextGap + req.TextSize
		if err := drawText(img, req.Text, w/2, baseline, float64(req.TextSize), req.Foreground); err != nil {
			return nil, err
		}
	}
	return img, nil
}
