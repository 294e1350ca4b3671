package generator

import (
	"encoding/xml"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// svgDoc accumulates SVG elements for a fixed-size document.
type svgDoc struct {
	b strings.Builder
}

func newSVG(width, height float64) *svgDoc {
	d := &svgDoc{}
	fmt.Fprintf(&d.b, `<svg xmlns="http://www.w3.org/2000/svg" version="1.1" width="%s" height="%s" viewBox="0 0 %s %s">`,
		num(width), num(height), num(width), num(height))
	return d
}

func (d *svgDoc) rect(x, y, w, h float64, c color.NRGBA) {
	fmt.Fprintf(&d.b, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s"%s/>`,
		num(x), num(y), num(w), num(h), svgColor(c), svgOpacity(c))
}

func (d *svgDoc) circle(cx, cy, r float64, c color.NRGBA) {
	fmt.Fprintf(&d.b, `<circle cx="%s" cy="%s" r="%s" fill="%s"%s/>`,
		num(cx), num(cy), num(r), svgColor(c), svgOpacity(c))
}

func (d *svgDoc) text(x, y float64, size int, c color.NRGBA, s string) {
	fmt.Fprintf(&d.b, `<text x="%s" y="%s" text-anchor="middle" font-family="monospace" font-size="%d" fill="%s"%s>%s</text>`,
		num(x), num(y), size, svgColor(c), svgOpacity(c), escapeXML(s))
}

func (d *svgDoc) image(x, y, w, h float64, href string) {
	fmt.Fprintf(&d.b, `<image x="%s" y="%s" width="%s" height="%s" href="%s"/>`,
		num(x), num(y), num(w), num(h), href)
}

func (d *svgDoc) String() string {
	return d.b.String() + "</svg>"
}

// num formats a coordinate with at most two decimals.
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func escapeXML(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
