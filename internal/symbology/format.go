package symbology

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported output formats.
var ErrUnknownFormat = errors.New("unknown output format")

// Format is an output encoding for a generated code.
type Format string

const (
	FormatPNG  Format = "png"
	FormatSVG  Format = "svg"
	FormatJPG  Format = "jpg"
	FormatJPEG Format = "jpeg"
	FormatGIF  Format = "gif"
	FormatWEBP Format = "webp"
	FormatPDF  Format = "pdf"
)

// AllowedFormats lists the output formats accepted at the API boundary.
var AllowedFormats = []Format{FormatPNG, FormatSVG, FormatJPG, FormatJPEG, FormatGIF, FormatWEBP, FormatPDF}

// ParseFormat normalises and validates an output format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, allowed := range AllowedFormats {
		if f == allowed {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// AllowedList renders AllowedFormats as "png, svg, ...".
func AllowedList() string {
	names := make([]string, len(AllowedFormats))
	for i, f := range AllowedFormats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// MIMEType returns the media type of the encoded output.
func (f Format) MIMEType() string {
	switch f {
	case FormatJPG, FormatJPEG:
		return "image/jpeg"
	case FormatWEBP:
		return "image/webp"
	case FormatGIF:
		return "image/gif"
	case FormatSVG:
		return "image/svg+xml"
	case FormatPDF:
		return "application/pdf"
	default:
		return "image/png"
	}
}

// IsVector reports whether the format is emitted as inline markup.
func (f Format) IsVector() bool { return f == FormatSVG }

// Extension is the file extension including the dot.
func (f Format) Extension() string {
	if f == FormatJPEG {
		return ".jpg"
	}
	return "." + string(f)
}

// MIMETypeFor maps a free-form format name to a media type; anything
// unrecognised is treated as png.
func MIMETypeFor(format string) string {
	return Format(strings.ToLower(strings.TrimSpace(format))).MIMEType()
}
