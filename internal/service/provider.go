package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AndreCurotec/funeral-home-agent/internal/config"
	"github.com/AndreCurotec/funeral-home-agent/internal/model"
)

// FuneralHomeProvider is the outbound boundary to the funeral home search API
type FuneralHomeProvider interface {
	// SearchPage fetches one page of candidates. It returns ErrNoMoreResults
	// when the provider signals that the criteria are exhausted; an empty slice
	// without error just means this page contributed nothing.
	SearchPage(ctx context.Context, req *model.UserRequirements, page int) ([]model.FuneralHome, error)

	// UpdateQuote pushes the collected criteria to the quote endpoint.
	UpdateQuote(ctx context.Context, req *model.UserRequirements) error
}

// EazewellClient talks to the Eazewell staging API
type EazewellClient struct {
	config     *config.EazewellConfig
	httpClient *http.Client
}

var _ FuneralHomeProvider = (*EazewellClient)(nil)

// NewEazewellClient creates a client for the configured Eazewell environment
func NewEazewellClient(cfg *config.EazewellConfig) *EazewellClient {
	return &EazewellClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// eazewellRequest is the envelope both endpoints expect: caller identity under
// "call" and endpoint arguments under "args"
type eazewellRequest struct {
	Call eazewellCall `json:"call"`
	Args interface{}  `json:"args"`
}

type eazewellCall struct {
	RetellLLMDynamicVariables eazewellCallVariables `json:"retell_llm_dynamic_variables"`
}

type eazewellCallVariables struct {
	UserNumber string `json:"user_number"`
}

type funeralHomeSearchArgs struct {
	Location    string `json:"location"`
	ServiceType string `json:"service_type"`
	Page        int    `json:"page"`
	GetCheapest bool   `json:"get_cheapest"`
}

type quoteArgs struct {
	ServiceType       string `json:"service_type"`
	Timeframe         string `json:"timeframe"`
	City              string `json:"city"`
	State             string `json:"state"`
	ContactPreference string `json:"contact_preference"`
}

// funeralHomeSearchResponse is the object form of a search reply. The endpoint
// hands back at most one candidate per page as a formatted description string.
type funeralHomeSearchResponse struct {
	Location       string `json:"location"`
	NewFuneralHome string `json:"new_funeral_home"`
}

// SearchPage fetches one page of funeral home candidates
func (c *EazewellClient) SearchPage(ctx context.Context, req *model.UserRequirements, page int) ([]model.FuneralHome, error) {
	if req.Location == nil || req.ServiceType == nil || req.Preference == nil {
		return nil, fmt.Errorf("location, service type, and preference are required for funeral home search")
	}

	body := eazewellRequest{
		Call: eazewellCall{RetellLLMDynamicVariables: eazewellCallVariables{UserNumber: c.config.TestPhone}},
		Args: funeralHomeSearchArgs{
			Location:    *req.Location,
			ServiceType: string(*req.ServiceType),
			Page:        page,
			GetCheapest: *req.Preference == model.PreferenceCheapest,
		},
	}

	status, respBody, err := c.post(ctx, "/ai-assistant/funeral-homes", body)
	if err != nil {
		return nil, &ProviderError{Op: "search_funeral_homes", Page: page, Err: err}
	}

	switch status {
	case http.StatusOK:
		return parseSearchBody(respBody)
	case http.StatusNotFound:
		// Test user missing from staging, serve deterministic mock data
		log.Printf("⚠️ Provider returned 404, serving mock funeral homes (page %d)", page)
		return c.mockFuneralHomes(req, page)
	default:
		return nil, &ProviderError{Op: "search_funeral_homes", Page: page, Err: fmt.Errorf("unexpected status %d: %s", status, truncateBody(respBody))}
	}
}

// UpdateQuote pushes the collected criteria to the quote endpoint. A 404 means
// the test user is absent from the staging database and is not an error.
func (c *EazewellClient) UpdateQuote(ctx context.Context, req *model.UserRequirements) error {
	if !req.IsComplete() {
		return ErrIncompleteRequirements
	}

	body := eazewellRequest{
		Call: eazewellCall{RetellLLMDynamicVariables: eazewellCallVariables{UserNumber: c.config.TestPhone}},
		Args: quoteArgs{
			ServiceType:       string(*req.ServiceType),
			Timeframe:         string(*req.Timeframe),
			City:              extractCity(*req.Location),
			State:             extractState(*req.Location),
			ContactPreference: "phone",
		},
	}

	status, respBody, err := c.post(ctx, "/ai-assistant/quote", body)
	if err != nil {
		return &ProviderError{Op: "update_quote", Err: err}
	}

	switch status {
	case http.StatusOK:
		log.Printf("Quote updated successfully: %s", truncateBody(respBody))
		return nil
	case http.StatusNotFound:
		log.Printf("Test user not found in staging database, skipping quote update")
		return nil
	default:
		return &ProviderError{Op: "update_quote", Err: fmt.Errorf("unexpected status %d: %s", status, truncateBody(respBody))}
	}
}

// post sends a JSON request and returns status plus raw body
func (c *EazewellClient) post(ctx context.Context, path string, payload interface{}) (int, []byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.config.BaseURL + path
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqBody))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, respBody, nil
}

// parseSearchBody handles both reply shapes: a JSON object carrying one
// candidate string, or a direct JSON array of funeral homes
func parseSearchBody(body []byte) ([]model.FuneralHome, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var homes []model.FuneralHome
		if err := json.Unmarshal(trimmed, &homes); err != nil {
			return nil, &ProviderError{Op: "search_funeral_homes", Err: fmt.Errorf("failed to decode result list: %w", err)}
		}
		return homes, nil
	}

	var result funeralHomeSearchResponse
	if err := json.Unmarshal(trimmed, &result); err != nil {
		return nil, &ProviderError{Op: "search_funeral_homes", Err: fmt.Errorf("failed to decode result: %w", err)}
	}

	if result.NewFuneralHome == "" {
		// Object without a candidate string marks the end of the result set
		return nil, ErrNoMoreResults
	}

	home := parseFuneralHomeLine(result.NewFuneralHome)
	if home == nil {
		log.Printf("⚠️ Could not parse funeral home description: %s", result.NewFuneralHome)
		return nil, nil
	}
	return []model.FuneralHome{*home}, nil
}

// parseFuneralHomeLine parses a candidate description of the form
// "ID - 123 | ABC Funeral Home In City, rating: 4.5, and estimated price of $3,500".
// Returns nil when the line does not follow the expected shape.
func parseFuneralHomeLine(line string) *model.FuneralHome {
	parts := strings.Split(line, " | ")
	if len(parts) < 2 {
		return nil
	}

	id := strings.TrimSpace(strings.ReplaceAll(strings.TrimSpace(parts[0]), "ID - ", ""))
	details := strings.TrimSpace(parts[1])

	nameLocation := strings.TrimSpace(strings.Split(details, ", rating:")[0])
	name := nameLocation
	location := "Unknown"
	if strings.Contains(nameLocation, " In ") {
		segments := strings.SplitN(nameLocation, " In ", 2)
		name = strings.TrimSpace(segments[0])
		location = strings.TrimSpace(segments[1])
	}

	var rating float64
	if strings.Contains(details, ", rating:") {
		ratingPart := strings.Split(strings.Split(details, ", rating:")[1], ",")[0]
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(ratingPart), 64); err == nil {
			rating = parsed
		}
	}

	price := "N/A"
	if strings.Contains(details, "estimated price of ") {
		price = strings.TrimSpace(strings.SplitN(details, "estimated price of ", 2)[1])
	}

	return &model.FuneralHome{
		ID:       id,
		Name:     name,
		Location: location,
		Rating:   rating,
		Price:    price,
	}
}

// mockFuneralHomes yields a small deterministic result set keyed by page, used
// when the staging API has no data for the test user. Pages beyond the set are
// exhausted.
func (c *EazewellClient) mockFuneralHomes(req *model.UserRequirements, page int) ([]model.FuneralHome, error) {
	city := extractCity(req.LocationValue())

	lines := []string{
		fmt.Sprintf("ID - %d01 | %s Memorial Services In %s, rating: 4.5, and estimated price of $3,200", page, city, city),
		fmt.Sprintf("ID - %d02 | Peaceful Rest Funeral Home In %s, rating: 4.2, and estimated price of $2,800", page, city),
		fmt.Sprintf("ID - %d03 | Eternal Care Services In %s, rating: 4.7, and estimated price of $3,500", page, city),
	}

	if page < 1 || page > len(lines) {
		return nil, ErrNoMoreResults
	}

	home := parseFuneralHomeLine(lines[page-1])
	if home == nil {
		return nil, ErrNoMoreResults
	}
	return []model.FuneralHome{*home}, nil
}

// stateAbbreviations folds the state part of "City, State" down to its postal code
var stateAbbreviations = map[string]string{
	"Texas":      "TX",
	"Florida":    "FL",
	"California": "CA",
	"New York":   "NY",
	"Illinois":   "IL",
}

// extractCity returns the city part of a "City, State" location
func extractCity(location string) string {
	if strings.Contains(location, ",") {
		return strings.TrimSpace(strings.Split(location, ",")[0])
	}
	return strings.TrimSpace(location)
}

// extractState returns the state part of a "City, State" location, abbreviated
// when recognized, or empty when the location has no state part
func extractState(location string) string {
	if !strings.Contains(location, ",") {
		return ""
	}
	parts := strings.Split(location, ",")
	state := strings.TrimSpace(parts[len(parts)-1])
	if abbr, ok := stateAbbreviations[state]; ok {
		return abbr
	}
	return state
}

func truncateBody(body []byte) string {
	const limit = 200
	s := string(body)
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
