package validation

import (
	"github.com/anime-shed/barcode-studio-go/pkg/models"
)

// QualityThresholds defines when a scan capture is considered poor
type QualityThresholds struct {
	// Sharpness
	MinLaplacianVariance float64

	// Mean grey level, 0-255
	MinBrightness float64
	MaxBrightness float64

	// Resolution
	MinWidth  int
	MinHeight int
}

// DefaultQualityThresholds returns the default scan thresholds
func DefaultQualityThresholds() QualityThresholds {
	return QualityThresholds{
		MinLaplacianVariance: 100.0,
		MinBrightness:        60.0,
		MaxBrightness:        220.0,
		MinWidth:             50,
		MinHeight:            20,
	}
}

// QualityValidator turns capture metrics into user-facing hints
type QualityValidator struct {
	thresholds QualityThresholds
}

// NewQualityValidator creates a new quality validator with default thresholds
func NewQualityValidator() *QualityValidator {
	return &QualityValidator{
		thresholds: DefaultQualityThresholds(),
	}
}

// NewQualityValidatorWithThresholds creates a quality validator with custom thresholds
func NewQualityValidatorWithThresholds(thresholds QualityThresholds) *QualityValidator {
	return &QualityValidator{
		thresholds: thresholds,
	}
}

// CaptureMetrics are the measurements a hint is derived from
type CaptureMetrics struct {
	Width        int
	Height       int
	LaplacianVar float64
	Brightness   float64
	// FinderLike is set when the capture appears to contain QR finder patterns
	FinderLike bool
}

// ValidateScanQuality explains why a capture may not have decoded
func (qv *QualityValidator) ValidateScanQuality(m CaptureMetrics) []models.QualityHint {
	var hints []models.QualityHint

	if m.Width < qv.thresholds.MinWidth || m.Height < qv.thresholds.MinHeight {
		hints = append(hints, models.QualityHint{
			Type:        "low_resolution",
			Message:     "Image is too small. Move closer to the code or use a higher resolution.",
			Severity:    "error",
			ActualValue: float64(m.Width * m.Height),
			Threshold:   float64(qv.thresholds.MinWidth * qv.thresholds.MinHeight),
		})
	}

	if m.LaplacianVar < qv.thresholds.MinLaplacianVariance {
		hints = append(hints, models.QualityHint{
			Type:        "blurriness",
			Message:     "Image is blurry. Hold the camera steady and focus on the code.",
			Severity:    "error",
			ActualValue: m.LaplacianVar,
			Threshold:   qv.thresholds.MinLaplacianVariance,
		})
	}

	if m.Brightness < qv.thresholds.MinBrightness {
		hints = append(hints, models.QualityHint{
			Type:        "too_dark",
			Message:     "Image is too dark. Add more light.",
			Severity:    "warning",
			ActualValue: m.Brightness,
			Threshold:   qv.thresholds.MinBrightness,
		})
	} else if m.Brightness > qv.thresholds.MaxBrightness {
		hints = append(hints, models.QualityHint{
			Type:        "too_bright",
			Message:     "Image is too bright. Avoid glare and direct flash.",
			Severity:    "warning",
			ActualValue: m.Brightness,
			Threshold:   qv.thresholds.MaxBrightness,
		})
	}

	if m.FinderLike {
		hints = append(hints, models.QualityHint{
			Type:     "qr_detected",
			Message:  "A QR code seems to be present but could not be read. Try a sharper, straighter photo.",
			Severity: "info",
		})
	}

	return hints
}

// ConvertHintsToMessages flattens hints to their messages
func ConvertHintsToMessages(hints []models.QualityHint) []string {
	var messages []string
	for _, h := range hints {
		messages = append(messages, h.Message)
	}
	return messages
}

// HasCriticalIssues checks if there are any error severity hints
func HasCriticalIssues(hints []models.QualityHint) bool {
	for _, h := range hints {
		if h.Severity == "error" {
			return true
		}
	}
	return false
}
