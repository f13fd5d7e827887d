package model

// Extraction method values reported in ExtractionResult
const (
	ExtractionMethodOracle   = "oracle"
	ExtractionMethodFallback = "fallback"
)

// ExtractionResult represents the outcome of one extraction pass over an utterance
type ExtractionResult struct {
	Requirements     *UserRequirements `json:"requirements"`
	Method           string            `json:"extraction_method"`
	Confidence       float64           `json:"confidence"`
	ExtractedFields  []string          `json:"extracted_fields,omitempty"`
	ValidationIssues []string          `json:"validation_issues,omitempty"`
}

// HasExtracted reports whether the pass picked up any new field values
func (r *ExtractionResult) HasExtracted() bool {
	return len(r.ExtractedFields) > 0
}

// Adjustment intent types
const (
	AdjustmentNone     = "none"
	AdjustmentPartial  = "partial"
	AdjustmentComplete = "complete"
)

// AdjustmentIntent represents a detected wish to change already-collected preferences
type AdjustmentIntent struct {
	Type           string   `json:"intent_type"`
	FieldsToChange []string `json:"fields_to_change,omitempty"`
	KeepExisting   bool     `json:"keep_existing"`
	Confidence     float64  `json:"confidence"`
	Reason         string   `json:"reason,omitempty"`
}

// FuneralHome represents one recommendation parsed from a provider result
type FuneralHome struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Location string  `json:"location"`
	Rating   float64 `json:"rating"`
	Price    string  `json:"price"`
}
