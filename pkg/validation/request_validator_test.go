package validation

import (
	"strings"
	"testing"

	apperrors "github.com/anime-shed/barcode-studio-go/internal/errors"
	"github.com/anime-shed/barcode-studio-go/internal/generator"
	"github.com/anime-shed/barcode-studio-go/pkg/models"
)

func TestValidateGenerate(t *testing.T) {
	v := NewRequestValidator(DefaultLimits())

	tests := []struct {
		name    string
		req     models.GenerateRequest
		wantErr string
	}{
		{"valid", models.GenerateRequest{Type: "qrcode", Data: "x", Format: "svg"}, ""},
		{"default format", models.GenerateRequest{Type: "EAN13", Data: "123"}, ""},
		{"unknown type passes to pipeline", models.GenerateRequest{Type: "maxicode", Data: "x"}, ""},
		{"missing type", models.GenerateRequest{Data: "x"}, "Type and data are required"},
		{"missing data", models.GenerateRequest{Type: "qrcode"}, "Type and data are required"},
		{"bad format", models.GenerateRequest{Type: "qrcode", Data: "x", Format: "bmp"}, "Invalid format. Allowed: png, svg, jpg, jpeg, gif, webp, pdf"},
		{"size too small", models.GenerateRequest{Type: "qrcode", Data: "x", Options: generator.Options{Size: 8}}, "size must be between"},
		{"size too large", models.GenerateRequest{Type: "qrcode", Data: "x", Options: generator.Options{Size: 100000}}, "size must be between"},
		{"negative margin", models.GenerateRequest{Type: "qrcode", Data: "x", Options: generator.Options{Margin: generator.Int(-2)}}, "margin"},
		{"data too long", models.GenerateRequest{Type: "CODE128", Data: strings.Repeat("A", 900000), Options: generator.Options{Width: 20}}, "data must be at most 8192 characters"},
		{"data at limit", models.GenerateRequest{Type: "qrcode", Data: strings.Repeat("é", 8192)}, ""},
		{"bad logo url", models.GenerateRequest{Type: "qrcode", Data: "x", Options: generator.Options{LogoPath: "https://"}}, "URL must have a valid host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateGenerate(tt.req)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Expected error containing %q, got %v", tt.wantErr, err)
			}
			if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}

func TestValidateBatch(t *testing.T) {
	v := NewRequestValidator(Limits{MinSize: 64, MaxSize: 2048, MaxDimension: 2048, BatchMaxItems: 2})

	if err := v.ValidateBatch(models.BatchRequest{}); err == nil {
		t.Error("Expected error for empty batch")
	}
	items := []models.GenerateRequest{{Type: "qrcode", Data: "a"}, {Type: "qrcode", Data: "b"}}
	if err := v.ValidateBatch(models.BatchRequest{Items: items}); err != nil {
		t.Errorf("Expected batch of 2 to pass, got %v", err)
	}
	if err := v.ValidateBatch(models.BatchRequest{Items: append(items, items[0])}); err == nil {
		t.Error("Expected error for oversized batch")
	}
}
