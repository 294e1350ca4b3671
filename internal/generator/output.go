package generator

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/anime-shed/barcode-studio-go/internal/symbology"

	"github.com/HugoSmits86/nativewebp"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

const jpegQuality = 92

func init() {
	// pdfcpu otherwise creates a config directory under the user's home.
	api.DisableConfigDir()
}

// encodeImage writes img in the given raster format (or a single page PDF).
func encodeImage(img image.Image, f symbology.Format) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch f {
	case symbology.FormatPNG, symbology.FormatSVG:
		err = png.Encode(&buf, img)
	case symbology.FormatJPG, symbology.FormatJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	case symbology.FormatGIF:
		err = gif.Encode(&buf, img, &gif.Options{NumColors: 256, Drawer: draw.Src})
	case symbology.FormatWEBP:
		err = nativewebp.Encode(&buf, img, nil)
	case symbology.FormatPDF:
		err = encodePDF(&buf, img)
	default:
		return nil, fmt.Errorf("no encoder for format %q", f)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", f, err)
	}
	return buf.Bytes(), nil
}

// encodePDF places a PNG rendering of img on a single PDF page.
func encodePDF(w io.Writer, img image.Image) error {
	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return err
	}
	imp := pdfcpu.DefaultImportConfig()
	conf := model.NewDefaultConfiguration()
	return api.ImportImages(nil, w, []io.Reader{bytes.NewReader(pngBuf.Bytes())}, imp, conf)
}

// dataURI builds a self-contained data: URI.
func dataURI(mime string, b []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(b)
}

// rasterData encodes img and wraps it as a data URI of the format's media type.
func rasterData(img image.Image, f symbology.Format) (string, error) {
	b, err := encodeImage(img, f)
	if err != nil {
		return "", err
	}
	return dataURI(f.MIMEType(), b), nil
}
