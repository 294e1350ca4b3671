package generator

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

func newCanvas(w, h int, bg color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	return img
}

// fillRect paints the pixels covered by [x, x+w) x [y, y+h), rounding edges
// to the nearest pixel so adjacent cells tile without gaps.
func fillRect(img draw.Image, x, y, w, h float64, c color.NRGBA) {
	r := image.Rect(
		int(math.Round(x)), int(math.Round(y)),
		int(math.Round(x+w)), int(math.Round(y+h)),
	)
	draw.Draw(img, r.Intersect(img.Bounds()), image.NewUniform(c), image.Point{}, draw.Over)
}

// fillCircle paints every pixel whose centre lies within radius of (cx, cy).
// draw.Over blends like fillRect; draw.Src replaces what is underneath.
func fillCircle(img *image.NRGBA, cx, cy, radius float64, c color.NRGBA, op draw.Op) {
	r := image.Rect(
		int(math.Floor(cx-radius)), int(math.Floor(cy-radius)),
		int(math.Ceil(cx+radius)), int(math.Ceil(cy+radius)),
	).Intersect(img.Bounds())
	if r.Empty() {
		return
	}

	mask := image.NewAlpha(r)
	r2 := radius * radius
	for py := r.Min.Y; py < r.Max.Y; py++ {
		for px := r.Min.X; px < r.Max.X; px++ {
			dx := float64(px) + 0.5 - cx
			dy := float64(py) + 0.5 - cy
			if dx*dx+dy*dy <= r2 {
				mask.SetAlpha(px, py, color.Alpha{A: 0xff})
			}
		}
	}
	draw.DrawMask(img, r, image.NewUniform(c), image.Point{}, mask, r.Min, op)
}

// newFace parses the bundled Go Regular font at the requested size. Faces
// are not safe for concurrent use, so each render gets its own.
func newFace(size float64) (font.Face, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// drawText draws s horizontally centred on cx with its baseline at y.
func drawText(img draw.Image, s string, cx, baseline int, size float64, c color.Color) error {
	face, err := newFace(size)
	if err != nil {
		return err
	}
	defer face.Close()

	d := &font.Drawer{Dst: img, Src: image.NewUniform(c), Face: face}
	w := d.MeasureString(s).Ceil()
	d.Dot = fixed.P(cx-w/2, baseline)
	d.DrawString(s)
	return nil
}
