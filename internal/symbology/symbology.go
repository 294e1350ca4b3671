// Package symbology defines the closed sets of barcode symbologies and output
// formats the generator understands, plus the few encoders that no upstream
// barcode library ships (MSI and Pharmacode).
package symbology

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownSymbology is returned by Parse for identifiers outside the catalog.
var ErrUnknownSymbology = errors.New("unknown symbology")

// Symbology is a barcode encoding scheme. The zero value is not valid.
type Symbology string

const (
	Code128    Symbology = "CODE128"
	Code39     Symbology = "CODE39"
	EAN13      Symbology = "EAN13"
	EAN8       Symbology = "EAN8"
	UPC        Symbology = "UPC"
	Code93     Symbology = "CODE93"
	ITF14      Symbology = "ITF14"
	MSI        Symbology = "MSI"
	Pharmacode Symbology = "PHARMACODE"
	Codabar    Symbology = "CODABAR"

	QRCode     Symbology = "QRCODE"
	DataMatrix Symbology = "DATAMATRIX"
	PDF417     Symbology = "PDF417"
	Aztec      Symbology = "AZTEC"
)

// Family selects the rendering strategy for a symbology.
type Family int

const (
	FamilyLinear Family = iota
	FamilyQR
	FamilyMatrix2D
)

func (f Family) String() string {
	switch f {
	case FamilyQR:
		return "qr"
	case FamilyMatrix2D:
		return "2d"
	default:
		return "1d"
	}
}

type info struct {
	wire        string
	label       string
	description string
	family      Family
}

var catalog = map[Symbology]info{
	Code128:    {"CODE128", "Code 128", "High-density linear barcode", FamilyLinear},
	Code39:     {"CODE39", "Code 39", "Alphanumeric barcode", FamilyLinear},
	EAN13:      {"EAN13", "EAN-13", "European Article Number", FamilyLinear},
	EAN8:       {"EAN8", "EAN-8", "Short version of EAN-13", FamilyLinear},
	UPC:        {"UPC", "UPC-A", "Universal Product Code", FamilyLinear},
	Code93:     {"CODE93", "Code 93", "Compact alphanumeric barcode", FamilyLinear},
	ITF14:      {"ITF14", "ITF-14", "Interleaved 2 of 5", FamilyLinear},
	MSI:        {"MSI", "MSI", "Modified Plessey", FamilyLinear},
	Pharmacode: {"pharmacode", "Pharmacode", "Pharmaceutical barcode", FamilyLinear},
	Codabar:    {"codabar", "Codabar", "Variable-width barcode", FamilyLinear},
	QRCode:     {"qrcode", "QR Code", "Quick Response code", FamilyQR},
	DataMatrix: {"datamatrix", "Data Matrix", "2D matrix barcode", FamilyMatrix2D},
	PDF417:     {"pdf417", "PDF417", "Portable Data File", FamilyMatrix2D},
	Aztec:      {"aztec", "Aztec Code", "2D matrix barcode", FamilyMatrix2D},
}

// ordered is the catalog order used by All.
var ordered = []Symbology{
	Code128, Code39, EAN13, EAN8, UPC, Code93, ITF14, MSI, Pharmacode, Codabar,
	QRCode, DataMatrix, PDF417, Aztec,
}

// Parse resolves an identifier case-insensitively.
func Parse(s string) (Symbology, error) {
	sym := Symbology(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := catalog[sym]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSymbology, s)
	}
	return sym, nil
}

// All returns every supported symbology in catalog order.
func All() []Symbology {
	out := make([]Symbology, len(ordered))
	copy(out, ordered)
	return out
}

// Family classifies the symbology. QRCODE is its own family; DATAMATRIX,
// PDF417 and AZTEC are 2D matrix codes; everything else is linear.
func (s Symbology) Family() Family {
	switch s {
	case QRCode:
		return FamilyQR
	case DataMatrix, PDF417, Aztec:
		return FamilyMatrix2D
	default:
		return FamilyLinear
	}
}

// String returns the canonical upper-case identifier.
func (s Symbology) String() string { return string(s) }

// Wire is the identifier echoed back to API clients as the result type.
func (s Symbology) Wire() string {
	if i, ok := catalog[s]; ok {
		return i.wire
	}
	return strings.ToLower(string(s))
}

func (s Symbology) Label() string       { return catalog[s].label }
func (s Symbology) Description() string { return catalog[s].description }
