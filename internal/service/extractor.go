package service

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/AndreCurotec/funeral-home-agent/internal/model"
)

// usStates lists state names and abbreviations accepted as location evidence
var usStates = []string{
	"texas", "tx", "california", "ca", "florida", "fl", "new york", "ny",
	"illinois", "il", "pennsylvania", "pa", "ohio", "oh", "georgia", "ga",
	"north carolina", "nc", "michigan", "mi", "new jersey", "nj", "virginia", "va",
	"washington", "wa", "arizona", "az", "massachusetts", "ma", "tennessee", "tn",
	"indiana", "in", "maryland", "md", "missouri", "mo", "wisconsin", "wi",
	"colorado", "co", "minnesota", "mn", "south carolina", "sc", "alabama", "al",
}

// nonLocationPhrases are conversational fragments that must never pass as a location
var nonLocationPhrases = []string{
	"show me more", "more options", "see more", "other options",
	"different", "change", "adjust", "help", "what can you",
	"hello", "hi", "thanks", "thank you", "yes", "no",
	"i want", "i need", "looking for", "cremation", "burial",
	"funeral", "immediately", "asap", "cheapest", "nearest",
	"budget", "affordable", "convenient",
}

// locationNormalizations maps common raw spellings to canonical "City, ST" form
var locationNormalizations = map[string]string{
	"austin texas":     "Austin, TX",
	"austin tx":        "Austin, TX",
	"miami florida":    "Miami, FL",
	"miami fl":         "Miami, FL",
	"new york":         "New York, NY",
	"los angeles":      "Los Angeles, CA",
	"chicago illinois": "Chicago, IL",
	"chicago il":       "Chicago, IL",
}

// locationPatterns pull candidate locations out of free text for the keyword fallback
var locationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:in|at|near|from|live in|located in)\s+([a-zA-Z][a-zA-Z\s,.-]+?)(?:\s|$|[,.])`),
	regexp.MustCompile(`(?i)^([a-zA-Z][a-zA-Z\s,.-]+?)\s*(?:area|region)?\s*$`),
	regexp.MustCompile(`(?i)([a-zA-Z]+\s*,\s*[a-zA-Z]{2,})`),
	regexp.MustCompile(`(?i)([a-zA-Z]{3,}\s+(?:texas|tx|california|ca|florida|fl|new york|ny))\b`),
}

// correctionPatterns spot a user revising something they said earlier
var correctionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:actually|wait|no|sorry|i meant|let me correct|change that to|instead of)`),
	regexp.MustCompile(`(?:not|it's not|that's wrong|that's incorrect)`),
	regexp.MustCompile(`(?:i said|i want|i need) (.+?) (?:not|instead)`),
}

// adjustmentResetPhrases signal a full restart of the search
var adjustmentResetPhrases = []string{"start over", "completely different", "all different", "reset", "new search"}

// adjustmentFieldKeywords map mentioned topics to the requirement field they adjust
var adjustmentFieldKeywords = []struct {
	Field    string
	Keywords []string
}{
	{"location", []string{"location", "city", "place", "area", "move to", "change location", "different city"}},
	{"service_type", []string{"service", "cremation", "burial", "funeral", "different service", "change service"}},
	{"timeframe", []string{"timeframe", "timeline", "when", "time", "urgency", "immediately", "later", "change time"}},
	{"preference", []string{"preference", "cheapest", "nearest", "budget", "price", "cost", "distance", "affordable"}},
}

// InformationExtractor turns free-form user messages into structured requirement
// updates. The AI model is tried first; a deterministic keyword pass covers for it
// whenever the model is unavailable or misbehaves.
type InformationExtractor struct {
	ai AIClient
}

// NewInformationExtractor creates an extractor backed by the given AI client
func NewInformationExtractor(ai AIClient) *InformationExtractor {
	return &InformationExtractor{ai: ai}
}

// Extract pulls requirement values from a user message. It never fails: any AI
// error degrades to the keyword fallback, so the caller always gets a result.
func (e *InformationExtractor) Extract(ctx context.Context, message string, current *model.UserRequirements, recentContext []string) *model.ExtractionResult {
	if e.ai != nil && e.ai.IsEnabled() {
		resp, err := e.ai.ExtractRequirements(ctx, message, current, recentContext)
		if err == nil {
			return e.applyExtraction(current, resp)
		}
		log.Printf("⚠️ AI extraction failed, using keyword fallback: %v", err)
	}
	return e.fallbackExtraction(message, current)
}

// applyExtraction validates the AI response field by field and applies the values
// that survive onto a copy of the current requirements
func (e *InformationExtractor) applyExtraction(current *model.UserRequirements, resp *AIExtractionResponse) *model.ExtractionResult {
	updated := current.Clone()
	var extracted []string
	var issues []string

	if !model.IsAbsentValue(resp.Location) {
		location := strings.TrimSpace(resp.Location)
		if isValidLocation(location) {
			normalized := normalizeLocation(location)
			updated.Location = &normalized
			extracted = append(extracted, "location")
		} else {
			issues = append(issues, fmt.Sprintf("Invalid location format: %s", location))
		}
	}

	if !model.IsAbsentValue(resp.ServiceType) {
		if st, ok := model.ParseServiceType(resp.ServiceType); ok {
			updated.ServiceType = &st
			extracted = append(extracted, "service_type")
		} else {
			issues = append(issues, fmt.Sprintf("Invalid service type: %s", resp.ServiceType))
		}
	}

	if !model.IsAbsentValue(resp.Timeframe) {
		if tf, ok := model.ParseTimeframe(resp.Timeframe); ok {
			updated.Timeframe = &tf
			extracted = append(extracted, "timeframe")
		} else {
			issues = append(issues, fmt.Sprintf("Invalid timeframe: %s", resp.Timeframe))
		}
	}

	if !model.IsAbsentValue(resp.Preference) {
		if pref, ok := model.ParsePreference(resp.Preference); ok {
			updated.Preference = &pref
			extracted = append(extracted, "preference")
		} else {
			issues = append(issues, fmt.Sprintf("Invalid preference: %s", resp.Preference))
		}
	}

	confidence := resp.Confidence
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}

	return &model.ExtractionResult{
		Requirements:     updated,
		Method:           model.ExtractionMethodOracle,
		Confidence:       confidence,
		ExtractedFields:  extracted,
		ValidationIssues: issues,
	}
}

// fallbackExtraction runs the deterministic keyword pass. Unlike the AI path it
// never overwrites a field that already has a value.
func (e *InformationExtractor) fallbackExtraction(message string, current *model.UserRequirements) *model.ExtractionResult {
	updated := current.Clone()
	var extracted []string

	messageLower := strings.ToLower(message)

	if updated.Location == nil {
		for _, pattern := range locationPatterns {
			match := pattern.FindStringSubmatch(message)
			if match == nil {
				continue
			}
			location := strings.TrimSpace(match[1])
			if isValidLocation(location) {
				normalized := normalizeLocation(location)
				updated.Location = &normalized
				extracted = append(extracted, "location")
				break
			}
		}
	}

	if updated.ServiceType == nil {
		for _, entry := range model.ServiceTypeKeywords {
			if matchAnyKeyword(messageLower, entry.Keywords) {
				st := entry.Value
				updated.ServiceType = &st
				extracted = append(extracted, "service_type")
				break
			}
		}
	}

	if updated.Timeframe == nil {
		for _, entry := range model.TimeframeKeywords {
			if matchAnyKeyword(messageLower, entry.Keywords) {
				tf := entry.Value
				updated.Timeframe = &tf
				extracted = append(extracted, "timeframe")
				break
			}
		}
	}

	if updated.Preference == nil {
		for _, entry := range model.PreferenceKeywords {
			if matchAnyKeyword(messageLower, entry.Keywords) {
				pref := entry.Value
				updated.Preference = &pref
				extracted = append(extracted, "preference")
				break
			}
		}
	}

	return &model.ExtractionResult{
		Requirements:    updated,
		Method:          model.ExtractionMethodFallback,
		Confidence:      0.6,
		ExtractedFields: extracted,
	}
}

// DetectAdjustmentIntent classifies whether the user wants to change collected
// preferences. AI classification is tried first, keyword detection covers errors
// and malformed intent types.
func (e *InformationExtractor) DetectAdjustmentIntent(ctx context.Context, message string, current *model.UserRequirements) *model.AdjustmentIntent {
	if e.ai != nil && e.ai.IsEnabled() {
		resp, err := e.ai.DetectAdjustment(ctx, message, current)
		if err == nil {
			intent := &model.AdjustmentIntent{
				Type:           resp.IntentType,
				FieldsToChange: resp.FieldsToChange,
				KeepExisting:   resp.KeepExisting,
				Confidence:     resp.Confidence,
				Reason:         resp.Reason,
			}
			switch intent.Type {
			case model.AdjustmentNone, model.AdjustmentPartial, model.AdjustmentComplete:
				return intent
			}
			log.Printf("⚠️ AI adjustment detection returned unknown intent %q, using keyword fallback", resp.IntentType)
		} else {
			log.Printf("⚠️ AI adjustment detection failed, using keyword fallback: %v", err)
		}
	}
	return fallbackAdjustmentDetection(message)
}

// fallbackAdjustmentDetection classifies adjustment intent from keywords alone
func fallbackAdjustmentDetection(message string) *model.AdjustmentIntent {
	messageLower := strings.ToLower(message)

	intent := &model.AdjustmentIntent{
		Type:         model.AdjustmentNone,
		KeepExisting: true,
		Confidence:   0.6,
		Reason:       "Keyword-based detection",
	}

	if matchAnyKeyword(messageLower, adjustmentResetPhrases) {
		intent.Type = model.AdjustmentComplete
		intent.KeepExisting = false
		intent.Reason = "Complete reset requested"
		return intent
	}

	var fields []string
	for _, entry := range adjustmentFieldKeywords {
		if matchAnyKeyword(messageLower, entry.Keywords) {
			fields = append(fields, entry.Field)
		}
	}
	if len(fields) > 0 {
		intent.Type = model.AdjustmentPartial
		intent.FieldsToChange = fields
		intent.Reason = fmt.Sprintf("Detected changes for: %s", strings.Join(fields, ", "))
	}

	return intent
}

// DetectCorrection reports whether the message looks like the user is correcting
// previously provided information
func (e *InformationExtractor) DetectCorrection(message string) bool {
	messageLower := strings.ToLower(message)
	for _, pattern := range correctionPatterns {
		if pattern.MatchString(messageLower) {
			return true
		}
	}
	return false
}

// isValidLocation filters out values that clearly are not place names
func isValidLocation(location string) bool {
	locationLower := strings.ToLower(strings.TrimSpace(location))

	if len(locationLower) < 2 {
		return false
	}

	if matchAnyKeyword(locationLower, nonLocationPhrases) {
		return false
	}

	hasState := false
	for _, state := range usStates {
		if containsWord(locationLower, state) {
			hasState = true
			break
		}
	}
	hasComma := strings.Contains(location, ",")
	hasMultipleWords := len(strings.Fields(location)) >= 2

	return hasState || hasComma || hasMultipleWords
}

// normalizeLocation canonicalizes well-known spellings and title-cases the rest
func normalizeLocation(location string) string {
	location = strings.TrimSpace(location)

	if normalized, ok := locationNormalizations[strings.ToLower(location)]; ok {
		return normalized
	}

	return cases.Title(language.English).String(location)
}

// matchAnyKeyword reports whether any keyword matches the lowercased text
func matchAnyKeyword(textLower string, keywords []string) bool {
	for _, keyword := range keywords {
		if matchKeyword(textLower, keyword) {
			return true
		}
	}
	return false
}

// matchKeyword matches multi-word phrases as substrings and single words on word
// boundaries, so "hi" does not fire inside "Chicago"
func matchKeyword(textLower, keyword string) bool {
	if strings.Contains(keyword, " ") {
		return strings.Contains(textLower, keyword)
	}
	return containsWord(textLower, keyword)
}

// containsWord reports whether word occurs in text delimited by non-word characters
func containsWord(text, word string) bool {
	for start := 0; ; {
		i := strings.Index(text[start:], word)
		if i < 0 {
			return false
		}
		begin := start + i
		end := begin + len(word)
		beforeOK := begin == 0 || !isWordChar(text[begin-1])
		afterOK := end == len(text) || !isWordChar(text[end])
		if beforeOK && afterOK {
			return true
		}
		start = begin + 1
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}
