package generator

import (
	"errors"
	"fmt"
	"image"
	"math"

	apperrors "github.com/anime-shed/barcode-studio-go/internal/errors"
	"github.com/anime-shed/barcode-studio-go/internal/symbology"

	"github.com/boombuler/barcode"
)

const (
	// Minimum raster canvas for linear codes; larger content grows it.
	linearMinWidth  = 400
	linearMinHeight = 200
	textGap         = 2
)

// linearLayout positions bars and the optional human readable line.
type linearLayout struct {
	modules  []bool
	module   float64
	height   float64
	margin   float64
	fontSize int
	text     string
	width    float64 // content width including margins
	total    float64 // content height including margins and text
}

func newLinearLayout(bc barcode.Barcode, text string, o resolved) linearLayout {
	b := bc.Bounds()
	modules := make([]bool, 0, b.Dx())
	for x := b.Min.X; x < b.Max.X; x++ {
		r, _, _, _ := bc.At(x, b.Min.Y).RGBA()
		modules = append(modules, r < 0x8000)
	}

	l := linearLayout{
		modules: modules,
		module:  o.Width,
		height:  float64(o.Height),
		margin:  float64(o.Margin),
	}
	l.width = float64(len(modules))*l.module + 2*l.margin
	l.total = l.height + 2*l.margin
	if o.DisplayValue && text != "" {
		l.text = text
		l.fontSize = o.FontSize
		l.total += float64(textGap + o.FontSize)
	}
	return l
}

// baseline of the text line relative to the content origin.
func (l linearLayout) baseline() float64 {
	return l.margin + l.height + textGap + float64(l.fontSize)
}

func (p *Pipeline) renderLinear(req Request, o resolved) (*Result, error) {
	bc, err := symbology.EncodeLinear(req.Symbology, req.Payload)
	if errors.Is(err, symbology.ErrUnsupported) {
		return nil, apperrors.NewUnsupportedSymbologyError(
			fmt.Sprintf("Invalid data for %s: %v", req.Symbology, symbology.ErrUnsupported), err)
	}
	if err != nil {
		return nil, invalidData(req.Symbology, err)
	}

	if err := p.checkLinearWidth(req.Symbology, bc, o); err != nil {
		return nil, err
	}

	l := newLinearLayout(bc, displayText(req.Symbology, req.Payload, bc), o)
	typ := req.Symbology.Wire()

	if req.Format.IsVector() {
		return success(typ, req.Format, linearSVG(l, o)), nil
	}

	img, err := linearRaster(l, o)
	if err != nil {
		return nil, err
	}
	data, err := rasterData(img, req.Format)
	if err != nil {
		return nil, err
	}
	return success(typ, req.Format, data), nil
}

// checkLinearWidth rejects codes whose content would be wider than the
// pipeline's maximum. It runs before any canvas or markup is built.
func (p *Pipeline) checkLinearWidth(sym symbology.Symbology, bc barcode.Barcode, o resolved) error {
	if p.maxWidth <= 0 {
		return nil
	}
	w := int(math.Ceil(float64(bc.Bounds().Dx())*o.Width)) + 2*o.Margin
	if w > p.maxWidth {
		return apperrors.NewInvalidPayloadError(
			fmt.Sprintf("Invalid data for %s: barcode would be %d pixels wide (max %d)", sym, w, p.maxWidth), nil)
	}
	return nil
}

// displayText is the human readable line. Retail codes show the full digit
// string including the computed check digit.
func displayText(sym symbology.Symbology, payload string, bc barcode.Barcode) string {
	switch sym {
	case symbology.EAN13, symbology.EAN8, symbology.ITF14:
		return bc.Content()
	case symbology.UPC:
		if c := bc.Content(); len(c) == 13 {
			return c[1:]
		}
	}
	return payload
}

func linearSVG(l linearLayout, o resolved) string {
	doc := newSVG(l.width, l.total)
	doc.rect(0, 0, l.width, l.total, o.Background)
	for i, dark := range l.modules {
		if dark {
			doc.rect(l.margin+float64(i)*l.module, l.margin, l.module, l.height, o.Foreground)
		}
	}
	if l.text != "" {
		doc.text(l.width/2, l.baseline(), l.fontSize, o.Foreground, l.text)
	}
	return doc.String()
}

func linearRaster(l linearLayout, o resolved) (*image.NRGBA, error) {
	w := max(linearMinWidth, int(math.Ceil(l.width)))
	h := max(linearMinHeight, int(math.Ceil(l.total)))
	img := newCanvas(w, h, o.Background)

	ox := math.Floor((float64(w) - l.width) / 2)
	oy := math.Floor((float64(h) - l.total) / 2)

	for i, dark := range l.modules {
		if dark {
			fillRect(img, ox+l.margin+float64(i)*l.module, oy+l.margin, l.module, l.height, o.Foreground)
		}
	}
	if l.text != "" {
		if err := drawText(img, l.text, w/2, int(oy+l.baseline()), float64(l.fontSize), o.Foreground); err != nil {
			return nil, fmt.Errorf("draw text: %w", err)
		}
	}
	return img, nil
}
