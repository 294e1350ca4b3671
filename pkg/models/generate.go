package models

import "github.com/anime-shed/barcode-studio-go/internal/generator"

// GenerateRequest is the body of POST /api/generate and one item of a batch.
type GenerateRequest struct {
	Type    string            `json:"type"`
	Data    string            `json:"data"`
	Format  string            `json:"format,omitempty"`
	Options generator.Options `json:"options,omitempty"`
}

// BatchRequest is the body of POST /api/generate/batch.
type BatchRequest struct {
	Items []GenerateRequest `json:"items"`
}

// BatchResponse holds one result per request, in request order.
type BatchResponse struct {
	Results           []*generator.Result `json:"results"`
	ProcessingTimeSec float64             `json:"processing_time_sec"`
}

// TypeInfo describes one selectable symbology.
type TypeInfo struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// TypesResponse is the /api/types catalog keyed by "1d" and "2d".
type TypesResponse map[string][]TypeInfo

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status  string                 `json:"status"`
	Version string                 `json:"version"`
	Time    string                 `json:"time"`
	Stats   map[string]interface{} `json:"stats,omitempty"`
}
