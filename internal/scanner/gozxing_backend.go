package scanner

import (
	"context"
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/aztec"
	"github.com/makiuchi-d/gozxing/datamatrix"
	"github.com/makiuchi-d/gozxing/multi"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/pdf417"
	"github.com/makiuchi-d/gozxing/qrcode"
)

type gozxingBackend struct{}

// NewGozxingBackend returns the pure Go decoding backend.
func NewGozxingBackend() Backend { return gozxingBackend{} }

// Decode tries every supported reader in turn. Readers keep internal state,
// so a fresh chain is built per call.
func (gozxingBackend) Decode(ctx context.Context, img image.Image, opts Options) (symbols []Symbol, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			symbols, err = nil, fmt.Errorf("decoder panic: %v", r)
		}
	}()

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("binarize: %w", err)
	}

	hints := make(map[gozxing.DecodeHintType]interface{})
	if opts.TryHarder {
		hints[gozxing.DecodeHintType_TRY_HARDER] = true
	}

	reader := newReaderChain()
	var results []*gozxing.Result
	if opts.Multi {
		results, err = multi.NewGenericMultipleBarcodeReader(reader).DecodeMultiple(bmp, hints)
	} else {
		var r *gozxing.Result
		if r, err = reader.Decode(bmp, hints); err == nil {
			results = []*gozxing.Result{r}
		}
	}
	if err != nil || len(results) == 0 {
		return nil, ErrNotFound
	}

	out := make([]Symbol, 0, len(results))
	for _, r := range results {
		out = append(out, Symbol{
			Kind:   kindFromZXing(r.GetBarcodeFormat()),
			Text:   r.GetText(),
			Points: pointsOf(r.GetResultPoints()),
		})
	}
	return out, nil
}

// readerChain is a gozxing.Reader that returns the first successful decode.
type readerChain struct {
	readers []gozxing.Reader
}

// UPC-A precedes EAN-13 so zero-prefixed codes are reported as UPC-A.
func newReaderChain() *readerChain {
	return &readerChain{readers: []gozxing.Reader{
		qrcode.NewQRCodeReader(),
		datamatrix.NewDataMatrixReader(),
		aztec.NewAztecReader(),
		pdf417.NewPDF417Reader(),
		oned.NewCode128Reader(),
		oned.NewCode39Reader(),
		oned.NewCode93Reader(),
		oned.NewUPCAReader(),
		oned.NewEAN13Reader(),
		oned.NewEAN8Reader(),
		oned.NewUPCEReader(),
		oned.NewITFReader(),
		oned.NewCodaBarReader(),
	}}
}

func (c *readerChain) DecodeWithoutHints(bmp *gozxing.BinaryBitmap) (*gozxing.Result, error) {
	return c.Decode(bmp, nil)
}

func (c *readerChain) Decode(bmp *gozxing.BinaryBitmap, hints map[gozxing.DecodeHintType]interface{}) (*gozxing.Result, error) {
	lastErr := ErrNotFound
	for _, r := range c.readers {
		res, err := r.Decode(bmp, hints)
		if err == nil && res != nil {
			return res, nil
		}
		if err != nil {
			lastErr = err
		}
	}
	return nil, lastErr
}

func (c *readerChain) Reset() {
	for _, r := range c.readers {
		r.Reset()
	}
}

func kindFromZXing(f gozxing.BarcodeFormat) Kind {
	switch f {
	case gozxing.BarcodeFormat_QR_CODE:
		return KindQR
	case gozxing.BarcodeFormat_DATA_MATRIX:
		return KindDataMatrix
	case gozxing.BarcodeFormat_AZTEC:
		return KindAztec
	case gozxing.BarcodeFormat_PDF_417:
		return KindPDF417
	case gozxing.BarcodeFormat_CODE_128:
		return KindCode128
	case gozxing.BarcodeFormat_CODE_39:
		return KindCode39
	case gozxing.BarcodeFormat_CODE_93:
		return KindCode93
	case gozxing.BarcodeFormat_EAN_8:
		return KindEAN8
	case gozxing.BarcodeFormat_EAN_13:
		return KindEAN13
	case gozxing.BarcodeFormat_UPC_A:
		return KindUPCA
	case gozxing.BarcodeFormat_UPC_E:
		return KindUPCE
	case gozxing.BarcodeFormat_ITF:
		return KindITF
	case gozxing.BarcodeFormat_CODABAR:
		return KindCodabar
	default:
		return KindUnknown
	}
}

func pointsOf(pts []gozxing.ResultPoint) []image.Point {
	if len(pts) == 0 {
		return nil
	}
	out := make([]image.Point, 0, len(pts))
	for _, p := range pts {
		if p == nil {
			continue
		}
		out = append(out, image.Pt(int(p.GetX()), int(p.GetY())))
	}
	return out
}
