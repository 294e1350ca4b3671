package generator

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/anime-shed/barcode-studio-go/internal/symbology"
)

// DotStyle controls how QR data modules are drawn.
type DotStyle string

const (
	DotSquare  DotStyle = "square"
	DotRounded DotStyle = "rounded"
)

// ECLevel is the QR error correction level.
type ECLevel string

const (
	ECLow      ECLevel = "L"
	ECMedium   ECLevel = "M"
	ECQuartile ECLevel = "Q"
	ECHigh     ECLevel = "H"
)

// Options is the rendering options bag. Zero values mean "use the default";
// the pointer fields distinguish an explicit false/0 from unset.
type Options struct {
	Width                float64  `json:"width,omitempty"`
	Height               int      `json:"height,omitempty"`
	DisplayValue         *bool    `json:"displayValue,omitempty"`
	FontSize             int      `json:"fontSize,omitempty"`
	Margin               *int     `json:"margin,omitempty"`
	Size                 int      `json:"size,omitempty"`
	Foreground           string   `json:"foreground,omitempty"`
	Background           string   `json:"background,omitempty"`
	EyeColor             string   `json:"eyeColor,omitempty"`
	DotStyle             DotStyle `json:"dotStyle,omitempty"`
	LogoPath             string   `json:"logoPath,omitempty"`
	ErrorCorrectionLevel ECLevel  `json:"errorCorrectionLevel,omitempty"`
	Scale                int      `json:"scale,omitempty"`
}

// Defaults per family.
const (
	DefaultWidth        = 2.0
	DefaultHeight       = 100
	DefaultFontSize     = 20
	DefaultSize         = 256
	DefaultScale        = 3
	DefaultLinearMargin = 10
	DefaultQRMargin     = 2
	DefaultMatrixMargin = 10
	DefaultForeground   = "#000000"
	DefaultBackground   = "#FFFFFF"
)

// resolved is Options with every default applied and colors parsed.
type resolved struct {
	Width        float64
	Height       int
	DisplayValue bool
	FontSize     int
	Margin       int
	Size         int
	Foreground   color.NRGBA
	Background   color.NRGBA
	EyeColor     color.NRGBA
	DotStyle     DotStyle
	LogoPath     string
	ECLevel      ECLevel
	Scale        int
}

// Bool is a helper for building Options literals.
func Bool(b bool) *bool { return &b }

// Int is a helper for building Options literals.
func Int(i int) *int { return &i }

func (o Options) resolve(family symbology.Family) (resolved, error) {
	r := resolved{
		Width:        o.Width,
		Height:       o.Height,
		DisplayValue: true,
		FontSize:     o.FontSize,
		Size:         o.Size,
		DotStyle:     DotStyle(strings.ToLower(strings.TrimSpace(string(o.DotStyle)))),
		LogoPath:     strings.TrimSpace(o.LogoPath),
		ECLevel:      ECLevel(strings.ToUpper(string(o.ErrorCorrectionLevel))),
		Scale:        o.Scale,
	}

	if r.Width == 0 {
		r.Width = DefaultWidth
	}
	if r.Height == 0 {
		r.Height = DefaultHeight
	}
	if o.DisplayValue != nil {
		r.DisplayValue = *o.DisplayValue
	}
	if r.FontSize == 0 {
		r.FontSize = DefaultFontSize
	}
	if r.Size == 0 {
		r.Size = DefaultSize
	}
	if r.Scale == 0 {
		r.Scale = DefaultScale
	}
	if o.Margin != nil {
		r.Margin = *o.Margin
	} else {
		switch family {
		case symbology.FamilyQR:
			r.Margin = DefaultQRMargin
		case symbology.FamilyMatrix2D:
			r.Margin = DefaultMatrixMargin
		default:
			r.Margin = DefaultLinearMargin
		}
	}
	if r.DotStyle == "" {
		r.DotStyle = DotSquare
	}
	if r.ECLevel == "" {
		if r.LogoPath != "" {
			r.ECLevel = ECHigh
		} else {
			r.ECLevel = ECMedium
		}
	}

	if r.Width < 0 || r.Height < 0 || r.FontSize < 0 || r.Size < 0 || r.Scale < 0 || r.Margin < 0 {
		return resolved{}, fmt.Errorf("numeric options must not be negative")
	}
	switch r.DotStyle {
	case DotSquare, DotRounded:
	default:
		return resolved{}, fmt.Errorf("unknown dotStyle %q", o.DotStyle)
	}
	switch r.ECLevel {
	case ECLow, ECMedium, ECQuartile, ECHigh:
	default:
		return resolved{}, fmt.Errorf("unknown errorCorrectionLevel %q", o.ErrorCorrectionLevel)
	}

	var err error
	if r.Foreground, err = ParseColor(orDefault(o.Foreground, DefaultForeground)); err != nil {
		return resolved{}, fmt.Errorf("foreground: %w", err)
	}
	if r.Background, err = ParseColor(orDefault(o.Background, DefaultBackground)); err != nil {
		return resolved{}, fmt.Errorf("background: %w", err)
	}
	r.EyeColor = r.Foreground
	if strings.TrimSpace(o.EyeColor) != "" {
		if r.EyeColor, err = ParseColor(o.EyeColor); err != nil {
			return resolved{}, fmt.Errorf("eyeColor: %w", err)
		}
	}

	return r, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}
