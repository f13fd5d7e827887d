package service

import (
	"context"

	"github.com/AndreCurotec/funeral-home-agent/internal/model"
)

// AIClient is the interface for the LLM extraction backend
type AIClient interface {
	// ExtractRequirements pulls raw requirement values out of an utterance.
	// Returned values are unvalidated strings; callers must validate them.
	ExtractRequirements(ctx context.Context, message string, current *model.UserRequirements, recentContext []string) (*AIExtractionResponse, error)

	// DetectAdjustment classifies whether the user wants to change
	// already-collected preferences, and which fields.
	DetectAdjustment(ctx context.Context, message string, current *model.UserRequirements) (*AIAdjustmentResponse, error)

	// IsEnabled returns whether the client is configured and ready
	IsEnabled() bool
}

// AIExtractionResponse carries raw field values extracted by the model.
// Empty string means the field was not mentioned.
type AIExtractionResponse struct {
	Location    string  `json:"location,omitempty"`
	ServiceType string  `json:"service_type,omitempty"`
	Timeframe   string  `json:"timeframe,omitempty"`
	Preference  string  `json:"preference,omitempty"`
	Confidence  float64 `json:"confidence,omitempty"`
	Notes       string  `json:"notes,omitempty"`
}

// AIAdjustmentResponse carries the model's adjustment-intent classification
type AIAdjustmentResponse struct {
	IntentType     string   `json:"intent_type"`
	FieldsToChange []string `json:"fields_to_change,omitempty"`
	KeepExisting   bool     `json:"keep_existing,omitempty"`
	Confidence     float64  `json:"confidence,omitempty"`
	Reason         string   `json:"reason,omitempty"`
}

// Ensure OpenAIClient implements AIClient
var _ AIClient = (*OpenAIClient)(nil)
