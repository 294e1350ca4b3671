package symbology

import (
	"errors"
	"fmt"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/codabar"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/code39"
	"github.com/boombuler/barcode/code93"
	"github.com/boombuler/barcode/ean"
	"github.com/boombuler/barcode/twooffive"
)

// ErrUnsupported is returned when a symbology has no linear encoder.
var ErrUnsupported = errors.New("unsupported symbology")

// EncodeLinear encodes content as a one-dimensional barcode. The returned
// barcode is one module per pixel wide and one pixel tall.
//
// Retail codes (EAN, UPC, ITF-14) accept input with or without the trailing
// check digit; a supplied check digit is recomputed, not verified.
func EncodeLinear(sym Symbology, content string) (barcode.Barcode, error) {
	switch sym {
	case Code128:
		return code128.Encode(content)
	case Code39:
		return code39.Encode(strings.ToUpper(content), false, false)
	case Code93:
		return code93.Encode(strings.ToUpper(content), true, false)
	case EAN13:
		if err := requireDigits(content, 12, 13); err != nil {
			return nil, err
		}
		return ean.Encode(content[:12])
	case EAN8:
		if err := requireDigits(content, 7, 8); err != nil {
			return nil, err
		}
		return ean.Encode(content[:7])
	case UPC:
		// UPC-A is an EAN-13 with a leading zero.
		if err := requireDigits(content, 11, 12); err != nil {
			return nil, err
		}
		return ean.Encode("0" + content[:11])
	case ITF14:
		digits, err := itf14Digits(content)
		if err != nil {
			return nil, err
		}
		return twooffive.Encode(digits, true)
	case Codabar:
		return codabar.Encode(codabarFrame(content))
	case MSI:
		return EncodeMSI(content)
	case Pharmacode:
		return EncodePharmacode(content)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, sym)
	}
}

func requireDigits(content string, lengths ...int) error {
	if !isDigits(content) {
		return fmt.Errorf("%q must contain only digits", content)
	}
	for _, l := range lengths {
		if len(content) == l {
			return nil
		}
	}
	want := make([]string, len(lengths))
	for i, l := range lengths {
		want[i] = fmt.Sprint(l)
	}
	return fmt.Errorf("expected %s digits, got %d", strings.Join(want, " or "), len(content))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// itf14Digits returns the 13 data digits followed by their GS1 check digit.
func itf14Digits(content string) (string, error) {
	if err := requireDigits(content, 13, 14); err != nil {
		return "", err
	}
	data := content[:13]
	return data + string(rune('0'+gs1CheckDigit(data))), nil
}

// gs1CheckDigit computes the mod-10 check digit used by EAN/ITF. Weights
// alternate 3,1 starting from the rightmost data digit.
func gs1CheckDigit(digits string) int {
	sum := 0
	for i := 0; i < len(digits); i++ {
		d := int(digits[len(digits)-1-i] - '0')
		if i%2 == 0 {
			sum += d * 3
		} else {
			sum += d
		}
	}
	return (10 - sum%10) % 10
}

// codabarFrame wraps content in A...A start/stop characters unless it
// already carries them.
func codabarFrame(content string) string {
	up := strings.ToUpper(content)
	if len(up) >= 2 && isCodabarGuard(up[0]) && isCodabarGuard(up[len(up)-1]) {
		return up
	}
	return "A" + up + "A"
}

func isCodabarGuard(c byte) bool {
	return c >= 'A' && c <= 'D'
}
