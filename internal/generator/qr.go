package generator

import (
	"bytes"
	"context"
	"image"
	"image/draw"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	finderSize = 7
	// logoScale is the logo's share of the symbol edge.
	logoScale = 0.2
	// logoPad is the extra radius cleared around the logo.
	logoPad = 5
	// roundedDivisor sets the data dot radius as cell/roundedDivisor.
	roundedDivisor = 2.4
)

// IsEyeCell reports whether (row, col) lies inside one of the three 7x7
// finder patterns of a count x count QR matrix.
func IsEyeCell(row, col, count int) bool {
	top := row < finderSize
	left := col < finderSize
	return (top && left) ||
		(top && col >= count-finderSize) ||
		(row >= count-finderSize && left)
}

func recoveryLevel(l ECLevel) qrcode.RecoveryLevel {
	switch l {
	case ECLow:
		return qrcode.Low
	case ECQuartile:
		return qrcode.High
	case ECHigh:
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

// qrLayout maps module coordinates to output pixels.
type qrLayout struct {
	count  int
	size   int
	cell   float64
	offset float64
}

func newQRLayout(count, size, margin int) qrLayout {
	cell := float64(size) / float64(count+2*margin)
	return qrLayout{count: count, size: size, cell: cell, offset: float64(margin) * cell}
}

func (l qrLayout) origin(row, col int) (float64, float64) {
	return l.offset + float64(col)*l.cell, l.offset + float64(row)*l.cell
}

func (p *Pipeline) renderQR(ctx context.Context, req Request, o resolved) (*Result, error) {
	q, err := qrcode.New(req.Payload, recoveryLevel(o.ECLevel))
	if err != nil {
		return nil, invalidData(req.Symbology, err)
	}
	q.DisableBorder = true
	modules := q.Bitmap()
	layout := newQRLayout(len(modules), o.Size, o.Margin)

	var logo image.Image
	if o.LogoPath != "" {
		logo = p.loadLogo(ctx, o.LogoPath)
	}

	typ := req.Symbology.Wire()
	if req.Format.IsVector() {
		return success(typ, req.Format, qrSVG(modules, layout, o, logo)), nil
	}

	img := qrRaster(modules, layout, o, logo)
	data, err := rasterData(img, req.Format)
	if err != nil {
		return nil, err
	}
	return success(typ, req.Format, data), nil
}

// loadLogo fetches the logo within the configured timeout. Failures are
// advisory: the code is rendered without a logo.
func (p *Pipeline) loadLogo(ctx context.Context, source string) image.Image {
	fields := logrus.Fields{"logo": source}
	if p.logos == nil {
		p.log.WithFields(fields).Warn("Logo requested but no logo loader is configured")
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, p.logoTimeout)
	defer cancel()

	logo, err := p.logos.Load(ctx, source)
	if err != nil {
		p.log.WithFields(fields).WithError(err).Warn("Failed to add logo")
		return nil
	}
	return logo
}

func qrRaster(modules [][]bool, l qrLayout, o resolved, logo image.Image) image.Image {
	img := newCanvas(l.size, l.size, o.Background)

	for row := range modules {
		for col, dark := range modules[row] {
			if !dark {
				continue
			}
			x, y := l.origin(row, col)
			switch {
			case IsEyeCell(row, col, l.count):
				fillRect(img, x, y, l.cell, l.cell, o.EyeColor)
			case o.DotStyle == DotRounded:
				fillCircle(img, x+l.cell/2, y+l.cell/2, l.cell/roundedDivisor, o.Foreground, draw.Over)
			default:
				fillRect(img, x, y, l.cell, l.cell, o.Foreground)
			}
		}
	}

	if logo == nil {
		return img
	}

	logoSize := int(float64(l.size) * logoScale)
	centre := float64(l.size) / 2
	fillCircle(img, centre, centre, float64(logoSize)/2+logoPad, o.Background, draw.Src)

	fitted := imaging.Fit(logo, logoSize, logoSize, imaging.Lanczos)
	fb := fitted.Bounds()
	pos := image.Pt((l.size-fb.Dx())/2, (l.size-fb.Dy())/2)
	return imaging.Overlay(img, fitted, pos, 1.0)
}

func qrSVG(modules [][]bool, l qrLayout, o resolved, logo image.Image) string {
	size := float64(l.size)
	doc := newSVG(size, size)
	doc.rect(0, 0, size, size, o.Background)

	for row := range modules {
		for col, dark := range modules[row] {
			if !dark {
				continue
			}
			x, y := l.origin(row, col)
			switch {
			case IsEyeCell(row, col, l.count):
				doc.rect(x, y, l.cell, l.cell, o.EyeColor)
			case o.DotStyle == DotRounded:
				doc.circle(x+l.cell/2, y+l.cell/2, l.cell/roundedDivisor, o.Foreground)
			default:
				doc.rect(x, y, l.cell, l.cell, o.Foreground)
			}
		}
	}

	if logo != nil {
		logoSize := int(size * logoScale)
		doc.circle(size/2, size/2, float64(logoSize)/2+logoPad, o.Background)

		fitted := imaging.Fit(logo, logoSize, logoSize, imaging.Lanczos)
		var buf bytes.Buffer
		if err := png.Encode(&buf, fitted); err == nil {
			fb := fitted.Bounds()
			w, h := float64(fb.Dx()), float64(fb.Dy())
			doc.image((size-w)/2, (size-h)/2, w, h, dataURI("image/png", buf.Bytes()))
		}
	}

	return doc.String()
}
