package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	apperrors "github.com/anime-shed/barcode-studio-go/internal/errors"
	"github.com/anime-shed/barcode-studio-go/internal/symbology"
	"github.com/anime-shed/barcode-studio-go/pkg/models"
)

// Limits bounds what a single generation request may ask for.
type Limits struct {
	MinSize       int
	MaxSize       int
	MaxDimension  int
	MaxDataLength int
	BatchMaxItems int
}

// DefaultLimits mirrors the configuration defaults.
func DefaultLimits() Limits {
	return Limits{MinSize: 64, MaxSize: 2048, MaxDimension: 2048, MaxDataLength: 8192, BatchMaxItems: 50}
}

// RequestValidator checks generation requests at the API boundary.
type RequestValidator struct {
	limits Limits
	urls   *URLValidator
}

func NewRequestValidator(limits Limits) *RequestValidator {
	return &RequestValidator{limits: limits, urls: NewURLValidator()}
}

// ValidateGenerate rejects requests the transport answers with 400. The
// messages match what API clients have always received.
func (v *RequestValidator) ValidateGenerate(req models.GenerateRequest) error {
	if strings.TrimSpace(req.Type) == "" || req.Data == "" {
		return apperrors.NewValidationError("Type and data are required", nil)
	}
	if n := utf8.RuneCountInString(req.Data); v.limits.MaxDataLength > 0 && n > v.limits.MaxDataLength {
		return apperrors.NewValidationError(
			fmt.Sprintf("data must be at most %d characters (got %d)", v.limits.MaxDataLength, n), nil)
	}
	if req.Format != "" {
		if _, err := symbology.ParseFormat(req.Format); err != nil {
			return apperrors.NewValidationError("Invalid format. Allowed: "+symbology.AllowedList(), err)
		}
	}
	return v.ValidateOptions(req)
}

// ValidateOptions checks numeric ranges that would otherwise let a client
// request arbitrarily large images.
func (v *RequestValidator) ValidateOptions(req models.GenerateRequest) error {
	o := req.Options
	if o.Size != 0 && (o.Size < v.limits.MinSize || o.Size > v.limits.MaxSize) {
		return apperrors.NewValidationError(
			fmt.Sprintf("size must be between %d and %d", v.limits.MinSize, v.limits.MaxSize), nil)
	}
	if o.Height < 0 || o.Height > v.limits.MaxDimension {
		return apperrors.NewValidationError(
			fmt.Sprintf("height must be between 0 and %d", v.limits.MaxDimension), nil)
	}
	if o.Width < 0 || o.Width > 20 {
		return apperrors.NewValidationError("width must be between 0 and 20", nil)
	}
	if o.FontSize < 0 || o.FontSize > 200 {
		return apperrors.NewValidationError("fontSize must be between 0 and 200", nil)
	}
	if o.Scale < 0 || o.Scale > 20 {
		return apperrors.NewValidationError("scale must be between 0 and 20", nil)
	}
	if o.Margin != nil && (*o.Margin < 0 || *o.Margin > 200) {
		return apperrors.NewValidationError("margin must be between 0 and 200", nil)
	}
	if logo := strings.TrimSpace(o.LogoPath); strings.HasPrefix(logo, "http://") || strings.HasPrefix(logo, "https://") {
		if err := v.urls.ValidateLogoURL(logo); err != nil {
			return err
		}
	}
	return nil
}

// ValidateBatch checks the batch envelope; items are validated one by one
// by the caller so that a bad item does not fail its neighbours.
func (v *RequestValidator) ValidateBatch(req models.BatchRequest) error {
	if len(req.Items) == 0 {
		return apperrors.NewValidationError("items are required", nil)
	}
	if len(req.Items) > v.limits.BatchMaxItems {
		return apperrors.NewValidationError(
			fmt.Sprintf("too many items: %d (max %d)", len(req.Items), v.limits.BatchMaxItems), nil)
	}
	return nil
}
