package models

// ScanRequest carries the optional form fields sent with a scan upload.
type ScanRequest struct {
	ExpectedText string `form:"expected" json:"expected,omitempty"`
	TryHarder    bool   `form:"tryHarder" json:"try_harder,omitempty"`
	Multi        bool   `form:"multi" json:"multi,omitempty"`
}

// Point is a corner or finder location in image pixels.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ScannedSymbol is one decoded code.
type ScannedSymbol struct {
	Type   string  `json:"type"`
	Format string  `json:"format"`
	Data   string  `json:"data"`
	Points []Point `json:"points,omitempty"`
	Source string  `json:"source"` // "decoder" or "ocr"
}

// QualityHint flags a capture problem that may explain a failed decode.
type QualityHint struct {
	Type        string  `json:"type"`
	Message     string  `json:"message"`
	Severity    string  `json:"severity"`
	ActualValue float64 `json:"actual_value,omitempty"`
	Threshold   float64 `json:"threshold,omitempty"`
}

// TextMatch compares the decoded text with what the caller expected.
type TextMatch struct {
	Expected       string  `json:"expected"`
	Exact          bool    `json:"exact"`
	Similarity     float64 `json:"similarity"`
	WordErrorRate  float64 `json:"word_error_rate"`
	EditDistance   int     `json:"edit_distance"`
	MatchThreshold float64 `json:"match_threshold"`
	Matched        bool    `json:"matched"`
}

// ScanResponse is the body returned by POST /api/scan. The first decoded
// symbol is mirrored into Type and Data.
type ScanResponse struct {
	Success           bool            `json:"success"`
	Type              string          `json:"type,omitempty"`
	Data              string          `json:"data,omitempty"`
	Location          []Point         `json:"location,omitempty"`
	Symbols           []ScannedSymbol `json:"symbols,omitempty"`
	Note              string          `json:"note,omitempty"`
	Error             string          `json:"error,omitempty"`
	Quality           []QualityHint   `json:"quality,omitempty"`
	Match             *TextMatch      `json:"match,omitempty"`
	ProcessingTimeSec float64         `json:"processing_time_sec"`
}
