package generator

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"

	"github.com/anime-shed/barcode-studio-go/internal/symbology"
)

func TestBCIDFor(t *testing.T) {
	tests := map[symbology.Symbology]string{
		symbology.DataMatrix: "datamatrix",
		symbology.PDF417:     "pdf417",
		symbology.Aztec:      "azteccode",
	}
	for sym, want := range tests {
		if got, ok := bcidFor(sym); !ok || got != want {
			t.Errorf("bcidFor(%s) = %q, want %q", sym, got, want)
		}
	}
	if _, ok := bcidFor(symbology.QRCode); ok {
		t.Error("Expected no 2D encoder for QRCODE")
	}
}

func TestRenderMatrix_TranslatesOptions(t *testing.T) {
	var got MatrixRequest
	capture := MatrixRendererFunc(func(ctx context.Context, req MatrixRequest) (image.Image, error) {
		got = req
		return image.NewNRGBA(image.Rect(0, 0, 10, 10)), nil
	})
	p := newTestPipeline(WithMatrixRenderer(capture))

	res, err := p.Generate(context.Background(), "aztec", "payload", "png", Options{Width: 1, FontSize: 14, DisplayValue: Bool(false)})
	if err != nil || !res.Success {
		t.Fatalf("Expected success, got %+v (%v)", res, err)
	}
	if got.BCID != "azteccode" || got.Text != "payload" {
		t.Errorf("Unexpected request: %+v", got)
	}
	if got.Width != minMatrixWidth {
		t.Errorf("Expected width clamped to %d, got %d", minMatrixWidth, got.Width)
	}
	if got.Height != DefaultHeight || got.Scale != DefaultScale || got.TextSize != 14 || got.IncludeText {
		t.Errorf("Unexpected option translation: %+v", got)
	}
	if got.PaddingWidth != DefaultMatrixMargin || got.PaddingHeight != DefaultMatrixMargin {
		t.Errorf("Expected padding %d, got %d/%d", DefaultMatrixMargin, got.PaddingWidth, got.PaddingHeight)
	}

	if _, err := p.Generate(context.Background(), "datamatrix", "x", "png", Options{Width: 3}); err != nil {
		t.Fatal(err)
	}
	if got.Width != 30 {
		t.Errorf("Expected width 30, got %d", got.Width)
	}
}

func TestRenderMatrix_FallbackOnPanic(t *testing.T) {
	panicking := MatrixRendererFunc(func(ctx context.Context, req MatrixRequest) (image.Image, error) {
		panic("boom")
	})
	p := newTestPipeline(WithMatrixRenderer(panicking))

	res, err := p.Generate(context.Background(), "pdf417", "data", "png", Options{})
	if err != nil || !res.Success || res.Note == "" {
		t.Errorf("Expected placeholder result, got %+v (%v)", res, err)
	}
}

func TestRenderMatrix_FallbackWithoutRenderer(t *testing.T) {
	p := newTestPipeline(WithMatrixRenderer(nil))

	res, err := p.Generate(context.Background(), "datamatrix", "data", "svg", Options{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !res.Success || res.Format != "png" {
		t.Errorf("Expected png placeholder for svg request, got %+v", res)
	}
	if res.Note != "datamatrix generation is simulated. Install proper libraries for production." {
		t.Errorf("Unexpected note: %q", res.Note)
	}
}

func TestRenderMatrix_PlaceholderUsesRequestedRasterFormat(t *testing.T) {
	p := newTestPipeline(WithMatrixRenderer(failingMatrix()))

	res, _ := p.Generate(context.Background(), "aztec", "data", "gif", Options{})
	if !res.Success || res.Format != "gif" || !strings.HasPrefix(res.Data, "data:image/gif;base64,") {
		t.Errorf("Expected gif placeholder, got %.80v", res)
	}
}

func TestRenderMatrix_SVGWrapsRaster(t *testing.T) {
	res, err := newTestPipeline().Generate(context.Background(), "datamatrix", "svg wrap", "svg", Options{})
	if err != nil || !res.Success {
		t.Fatalf("Expected success, got %+v (%v)", res, err)
	}
	if !strings.HasPrefix(res.Data, "<svg") || !strings.Contains(res.Data, `href="data:image/png;base64,`) {
		t.Errorf("Expected svg with embedded png, got %.80q", res.Data)
	}
}

func TestBoombulerRenderer(t *testing.T) {
	r := NewMatrixRenderer()
	for _, bcid := range []string{"datamatrix", "pdf417", "azteccode"} {
		img, err := r.RenderMatrix(context.Background(), MatrixRequest{
			BCID:          bcid,
			Text:          "Hello 2D",
			Width:         20,
			Height:        100,
			Scale:         3,
			PaddingWidth:  10,
			PaddingHeight: 10,
			Foreground:    placeholderBlack,
			Background:    placeholderWhite,
		})
		if err != nil {
			t.Errorf("%s: unexpected error: %v", bcid, err)
			continue
		}
		if b := img.Bounds(); b.Dy() < 100 || b.Dx() < 20 {
			t.Errorf("%s: expected minimum canvas, got %v", bcid, b)
		}
	}

	if _, err := r.RenderMatrix(context.Background(), MatrixRequest{BCID: "maxicode", Text: "x"}); !errors.Is(err, ErrUnknownBCID) {
		t.Errorf("Expected ErrUnknownBCID, got %v", err)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("héllo wörld and more text", 5); got != "héllo" {
		t.Errorf("Expected héllo, got %q", got)
	}
	if got := truncateRunes("short", 20); got != "short" {
		t.Errorf("Expected short, got %q", got)
	}
}
