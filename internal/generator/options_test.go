package generator

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/anime-shed/barcode-studio-go/internal/symbology"
)

func TestResolve_Defaults(t *testing.T) {
	r, err := Options{}.resolve(symbology.FamilyLinear)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if r.Width != DefaultWidth || r.Height != DefaultHeight || r.FontSize != DefaultFontSize {
		t.Errorf("Unexpected linear defaults: %+v", r)
	}
	if !r.DisplayValue || r.Margin != DefaultLinearMargin {
		t.Errorf("Expected displayValue and margin %d, got %+v", DefaultLinearMargin, r)
	}
	if r.Foreground != (color.NRGBA{A: 255}) || r.Background != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("Expected black on white, got %v on %v", r.Foreground, r.Background)
	}
}

func TestResolve_QRDefaults(t *testing.T) {
	r, err := Options{}.resolve(symbology.FamilyQR)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if r.Margin != DefaultQRMargin || r.Size != DefaultSize || r.DotStyle != DotSquare || r.ECLevel != ECMedium {
		t.Errorf("Unexpected QR defaults: %+v", r)
	}
	if r.EyeColor != r.Foreground {
		t.Error("Expected eye color to default to foreground")
	}

	withLogo, _ := Options{LogoPath: "logo.png"}.resolve(symbology.FamilyQR)
	if withLogo.ECLevel != ECHigh {
		t.Errorf("Expected EC level H with a logo, got %s", withLogo.ECLevel)
	}
}

func TestResolve_ExplicitZeroValues(t *testing.T) {
	r, err := Options{DisplayValue: Bool(false), Margin: Int(0)}.resolve(symbology.FamilyLinear)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if r.DisplayValue || r.Margin != 0 {
		t.Errorf("Expected explicit false/0 to be kept, got %+v", r)
	}
}

func TestResolve_NormalisesEnums(t *testing.T) {
	r, err := Options{DotStyle: " Rounded ", ErrorCorrectionLevel: "q"}.resolve(symbology.FamilyQR)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if r.DotStyle != DotRounded || r.ECLevel != ECQuartile {
		t.Errorf("Unexpected normalisation: %+v", r)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
		ok   bool
	}{
		{"#FF0000", color.NRGBA{255, 0, 0, 255}, true},
		{"#f00", color.NRGBA{255, 0, 0, 255}, true},
		{"#00ff0080", color.NRGBA{0, 255, 0, 128}, true},
		{"white", color.NRGBA{255, 255, 255, 255}, true},
		{"#12", color.NRGBA{}, false},
		{"#gggggg", color.NRGBA{}, false},
		{"chartreuse", color.NRGBA{}, false},
	}

	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseColor(%q) error = %v, want ok=%v", tt.in, err, tt.ok)
			continue
		}
		if tt.ok && got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSVGHelpers(t *testing.T) {
	if num(10.2400001) != "10.24" || num(3) != "3" {
		t.Errorf("Unexpected number formatting: %s %s", num(10.2400001), num(3))
	}
	if escapeXML(`<a&"b">`) != "&lt;a&amp;&#34;b&#34;&gt;" {
		t.Errorf("Unexpected escaping: %s", escapeXML(`<a&"b">`))
	}
	if svgOpacity(color.NRGBA{A: 255}) != "" {
		t.Error("Expected no opacity attribute for opaque colors")
	}
}

func TestFillCircle_BlendsLikeFillRect(t *testing.T) {
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	translucent := color.NRGBA{R: 200, G: 0, B: 0, A: 128}

	img := newCanvas(40, 20, white)
	fillRect(img, 0, 0, 20, 20, translucent)
	fillCircle(img, 30, 10, 8, translucent, draw.Over)

	rect := img.NRGBAAt(10, 10)
	dot := img.NRGBAAt(30, 10)
	if rect != dot {
		t.Errorf("Expected circle centre %v to match rect %v", dot, rect)
	}
	if dot == translucent || dot.A != 255 {
		t.Errorf("Expected blended opaque pixel, got %v", dot)
	}
	if img.NRGBAAt(39, 0) != white {
		t.Errorf("Expected corner outside the circle untouched, got %v", img.NRGBAAt(39, 0))
	}
}

func TestFillCircle_SrcReplaces(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	fillRect(img, 0, 0, 10, 10, color.NRGBA{A: 255})
	wash := color.NRGBA{R: 255, G: 255, B: 255, A: 64}
	fillCircle(img, 5, 5, 3, wash, draw.Src)
	if got := img.NRGBAAt(5, 5); got != wash {
		t.Errorf("Expected centre replaced with %v, got %v", wash, got)
	}
}
