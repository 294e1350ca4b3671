package symbology

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/utils"
)

const (
	kindMSI        = "MSI"
	kindPharmacode = "Pharmacode"

	pharmacodeMin = 3
	pharmacodeMax = 131070
)

// EncodeMSI encodes digits as MSI (Modified Plessey) without a check digit.
// Start "110", each BCD bit as "110" (one) or "100" (zero), stop "1001".
func EncodeMSI(content string) (barcode.Barcode, error) {
	if !isDigits(content) {
		return nil, fmt.Errorf("%q must contain only digits", content)
	}

	bits := utils.NewBitList(0)
	addPattern(bits, "110")
	for _, r := range content {
		d := int(r - '0')
		for shift := 3; shift >= 0; shift-- {
			if d&(1<<shift) != 0 {
				addPattern(bits, "110")
			} else {
				addPattern(bits, "100")
			}
		}
	}
	addPattern(bits, "1001")

	return utils.New1DCode(kindMSI, content, bits), nil
}

// EncodePharmacode encodes an integer in [3, 131070] as a one-track
// Laetus pharmacode. Bars are emitted right to left: even values produce a
// wide bar, odd values a narrow one, each followed by a two module gap.
func EncodePharmacode(content string) (barcode.Barcode, error) {
	n, err := strconv.Atoi(strings.TrimSpace(content))
	if err != nil {
		return nil, fmt.Errorf("%q is not a number", content)
	}
	if n < pharmacodeMin || n > pharmacodeMax {
		return nil, fmt.Errorf("value must be between %d and %d, got %d", pharmacodeMin, pharmacodeMax, n)
	}

	var pattern string
	for n != 0 {
		if n%2 == 0 {
			pattern = "11100" + pattern
			n = (n - 2) / 2
		} else {
			pattern = "100" + pattern
			n = (n - 1) / 2
		}
	}
	pattern = strings.TrimSuffix(pattern, "00")

	bits := utils.NewBitList(0)
	addPattern(bits, pattern)
	return utils.New1DCode(kindPharmacode, strings.TrimSpace(content), bits), nil
}

func addPattern(bits *utils.BitList, pattern string) {
	for i := 0; i < len(pattern); i++ {
		bits.AddBit(pattern[i] == '1')
	}
}
