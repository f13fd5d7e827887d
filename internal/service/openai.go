package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/AndreCurotec/funeral-home-agent/internal/config"
	"github.com/AndreCurotec/funeral-home-agent/internal/model"
	"github.com/AndreCurotec/funeral-home-agent/internal/utils"
)

// Per-call output budgets; the oracle replies are small JSON objects
const (
	extractionMaxTokens = 300
	adjustmentMaxTokens = 200
)

// OpenAIClient handles OpenAI-compatible API interactions
type OpenAIClient struct {
	config     *config.OpenAIConfig
	httpClient *http.Client
}

// NewOpenAIClient creates a new OpenAI-compatible client
func NewOpenAIClient(cfg *config.OpenAIConfig) *OpenAIClient {
	return &OpenAIClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// IsEnabled returns whether the client is configured and ready
func (c *OpenAIClient) IsEnabled() bool {
	return c != nil && c.config.Enabled
}

// ChatCompletionRequest represents a chat completion request
type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ChatMessage represents a single message in the conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat specifies the format of the response
type ResponseFormat struct {
	Type string `json:"type"` // "json_object" or "text"
}

// ChatCompletionResponse represents the API response
type ChatCompletionResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// ChatCompletion performs a chat completion request
func (c *OpenAIClient) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	if !c.config.Enabled {
		return nil, fmt.Errorf("OpenAI API is not enabled (missing API key)")
	}

	// Use configured model if not specified
	if req.Model == "" {
		req.Model = c.config.ChatModel
	}
	if req.Temperature == 0 && c.config.ChatTemperature > 0 {
		req.Temperature = c.config.ChatTemperature
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", c.config.APIBase)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.config.APIKey))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &result, nil
}

// ExtractRequirements uses the model to pull requirement values out of an utterance
func (c *OpenAIClient) ExtractRequirements(ctx context.Context, message string, current *model.UserRequirements, recentContext []string) (*AIExtractionResponse, error) {
	if !c.config.Enabled {
		return nil, &OracleError{Op: "extract_requirements", Err: fmt.Errorf("OpenAI API is not enabled")}
	}

	contextStr := ""
	if len(recentContext) > 0 {
		lines := make([]string, 0, len(recentContext))
		for _, msg := range recentContext {
			lines = append(lines, "- "+msg)
		}
		contextStr = strings.Join(lines, "\n")
	}

	systemPrompt := fmt.Sprintf(`You are an expert at extracting funeral home service requirements from natural language.

CURRENT INFORMATION ALREADY COLLECTED:
- Location: %s
- Service Type: %s
- Timeframe: %s
- Preference: %s

RECENT CONVERSATION CONTEXT:
%s

EXTRACTION RULES:
1. Location: Extract city, state, or full address. Examples: "Austin TX", "Miami Florida", "New York", "Los Angeles, California"
2. Service Type: Must be exactly one of:
   - "cremation_memorial" (cremation with memorial service)
   - "traditional_funeral" (full funeral service with burial)
   - "direct_burial" (simple burial without ceremony)
   - "direct_cremation" (simple cremation without ceremony)
3. Timeframe: Must be exactly one of:
   - "immediately" (urgent, ASAP, right away)
   - "within_next_four_weeks" (soon, within a month)
   - "likely_within_six_months" (planning ahead, this year)
   - "planning_for_the_future" (just exploring, not urgent)
4. Preference: Must be exactly one of:
   - "cheapest" (budget-focused, affordable, low cost)
   - "nearest" (location-focused, convenient, close by)

SPECIAL INSTRUCTIONS:
- If user is correcting previous information, extract the correction
- If multiple values are mentioned for same field, pick the most recent/emphasized one
- Don't extract if information is unclear or contradictory
- ONLY extract fields that are clearly mentioned by the user
- Do NOT include fields with "NOT_SET", "null", or empty values
- If a field is not mentioned, simply omit it from the response

Return JSON with ONLY the fields that are clearly provided:
{"location": "Austin TX", "confidence": 0.9, "notes": "user provided location only"}`,
		promptValue(current.LocationValue()),
		promptEnum(current.ServiceType),
		promptEnum(current.Timeframe),
		promptEnum(current.Preference),
		contextStr,
	)

	req := ChatCompletionRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Extract requirements from: '%s'", message)},
		},
		MaxTokens:      extractionMaxTokens,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	resp, err := c.ChatCompletion(ctx, req)
	if err != nil {
		return nil, &OracleError{Op: "extract_requirements", Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &OracleError{Op: "extract_requirements", Err: fmt.Errorf("no choices in response")}
	}

	var result AIExtractionResponse
	content := resp.Choices[0].Message.Content
	if err := utils.ParseAIJSON(content, &result); err != nil {
		log.Printf("Failed to parse extraction response, content: %s", content)
		return nil, &OracleError{Op: "extract_requirements", Err: err}
	}

	if result.Confidence == 0 {
		result.Confidence = 0.8
	}

	return &result, nil
}

// DetectAdjustment uses the model to classify preference-adjustment intent
func (c *OpenAIClient) DetectAdjustment(ctx context.Context, message string, current *model.UserRequirements) (*AIAdjustmentResponse, error) {
	if !c.config.Enabled {
		return nil, &OracleError{Op: "detect_adjustment", Err: fmt.Errorf("OpenAI API is not enabled")}
	}

	systemPrompt := fmt.Sprintf(`You are analyzing a user message to detect preference adjustment intent for a funeral home search.

CURRENT USER REQUIREMENTS:
- Location: %s
- Service Type: %s
- Timeframe: %s
- Preference: %s

TASK: Analyze if the user wants to change any of their current preferences and identify what specifically they want to change.

RETURN JSON FORMAT:
{
    "intent_type": "none|partial|complete",
    "fields_to_change": ["location", "service_type", "timeframe", "preference"],
    "keep_existing": true|false,
    "confidence": 0.0-1.0,
    "reason": "explanation of detected intent"
}

INTENT TYPES:
- "none": No preference changes detected
- "partial": User wants to change specific fields while keeping others
- "complete": User wants to start over completely

EXAMPLES:
"Change location to Miami" -> {"intent_type": "partial", "fields_to_change": ["location"], "keep_existing": true}
"I want cheapest instead" -> {"intent_type": "partial", "fields_to_change": ["preference"], "keep_existing": true}
"Start over completely" -> {"intent_type": "complete", "fields_to_change": [], "keep_existing": false}`,
		promptValue(current.LocationValue()),
		promptEnum(current.ServiceType),
		promptEnum(current.Timeframe),
		promptEnum(current.Preference),
	)

	req := ChatCompletionRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Analyze this message: '%s'", message)},
		},
		MaxTokens:      adjustmentMaxTokens,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	resp, err := c.ChatCompletion(ctx, req)
	if err != nil {
		return nil, &OracleError{Op: "detect_adjustment", Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &OracleError{Op: "detect_adjustment", Err: fmt.Errorf("no choices in response")}
	}

	var result AIAdjustmentResponse
	content := resp.Choices[0].Message.Content
	if err := utils.ParseAIJSON(content, &result); err != nil {
		log.Printf("Failed to parse adjustment response, content: %s", content)
		return nil, &OracleError{Op: "detect_adjustment", Err: err}
	}

	return &result, nil
}

// promptValue renders an optional string for prompt display
func promptValue(v string) string {
	if v == "" {
		return "NOT SET"
	}
	return v
}

// promptEnum renders an optional enum value for prompt display
func promptEnum[T ~string](v *T) string {
	if v == nil {
		return "NOT SET"
	}
	return string(*v)
}
