package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/AndreCurotec/funeral-home-agent/internal/model"
)

// Keyword sets for routing replies while results are on screen. Adjustment
// keywords run before satisfaction so "no, not really" counts as a change
// request rather than agreement.
var resultsAdjustmentKeywords = []string{"different", "change", "adjust", "modify", "not satisfied", "no", "not really", "try something else"}

var satisfiedKeywords = []string{"yes", "satisfied", "good", "great", "perfect", "thanks", "thank you", "looks good", "that works"}

// TurnResult is everything one processed utterance produces
type TurnResult struct {
	Response     string
	FuneralHomes []model.FuneralHome
	Completed    bool
	Extraction   *model.ExtractionResult
}

// ConversationManager orchestrates one dialogue turn: intent routing,
// extraction, state transitions, and result fetching. Every turn mutates the
// session it is given and always yields a response string.
type ConversationManager struct {
	classifier  *IntentClassifier
	extractor   *InformationExtractor
	responder   *ResponseGenerator
	recommender *RecommendationService
}

// NewConversationManager wires the conversation pipeline together
func NewConversationManager(extractor *InformationExtractor, recommender *RecommendationService) *ConversationManager {
	return &ConversationManager{
		classifier:  NewIntentClassifier(extractor),
		extractor:   extractor,
		responder:   NewResponseGenerator(),
		recommender: recommender,
	}
}

// ProcessTurn handles one user utterance against its session
func (m *ConversationManager) ProcessTurn(ctx context.Context, session *model.ConversationSession, message string) *TurnResult {
	session.AddMessage(model.RoleUser, message)

	cls := m.classifier.Classify(ctx, message, session.Requirements)

	var (
		response   string
		extraction *model.ExtractionResult
		showMore   bool
	)

	switch cls.Intent {
	case IntentHelp:
		response = m.responder.Help()
	case IntentGreeting:
		response = m.responder.Welcome()
	case IntentShowMore:
		showMore = true
		response = m.handleShowMore(session, message)
	case IntentAdjustment:
		response = m.handleAdjustment(ctx, session, message, cls.Adjustment)
	default:
		extraction, response = m.handleExtraction(ctx, session, message)
	}

	// Fetch results whenever a completed criteria set has the dialogue at the
	// results stage. Help and greeting turns are informational and must not
	// consume unseen results.
	var homes []model.FuneralHome
	if session.Requirements.IsComplete() && session.State == model.StateShowingResults &&
		cls.Intent != IntentHelp && cls.Intent != IntentGreeting {
		homes = m.fetchHomes(ctx, session, showMore)
		if len(homes) == 0 && !showMore {
			response = m.responder.NoResults(session.Requirements)
		}
	}

	session.AddMessage(model.RoleBot, response)

	return &TurnResult{
		Response:     response,
		FuneralHomes: homes,
		Completed:    session.Requirements.IsComplete(),
		Extraction:   extraction,
	}
}

// handleShowMore acknowledges a more-options request at the results stage; in
// any other state the utterance is answered like a normal turn, minus
// extraction
func (m *ConversationManager) handleShowMore(session *model.ConversationSession, message string) string {
	if session.State == model.StateShowingResults {
		return m.responder.MoreOptions(session.Requirements, len(session.ShownFuneralHomes))
	}
	return m.routeByState(session, message, nil)
}

// handleAdjustment applies a detected preference-adjustment intent
func (m *ConversationManager) handleAdjustment(ctx context.Context, session *model.ConversationSession, message string, intent *model.AdjustmentIntent) string {
	switch intent.Type {
	case model.AdjustmentComplete:
		session.Requirements = &model.UserRequirements{}
		session.ResetSearch()
		session.State = model.StateCollectingInfo
		return m.responder.CompleteReset()

	case model.AdjustmentPartial:
		return m.handlePartialAdjustment(ctx, session, message, intent.FieldsToChange)

	default:
		session.State = model.StateCollectingInfo
		return m.responder.AdjustmentResponse(session.Requirements)
	}
}

// handlePartialAdjustment re-extracts values and applies only the fields the
// user named, leaving everything else untouched
func (m *ConversationManager) handlePartialAdjustment(ctx context.Context, session *model.ConversationSession, message string, fieldsToChange []string) string {
	extraction := m.extractor.Extract(ctx, message, session.Requirements, session.RecentUserMessages())
	updated := extraction.Requirements

	old := session.Requirements.Clone()
	var changes []string

	for _, field := range fieldsToChange {
		switch field {
		case "location":
			if updated.Location != nil && !equalPtr(updated.Location, session.Requirements.Location) {
				session.Requirements.Location = updated.Location
				changes = append(changes, fmt.Sprintf("📍 Location → %s", *updated.Location))
			}
		case "service_type":
			if updated.ServiceType != nil && !equalPtr(updated.ServiceType, session.Requirements.ServiceType) {
				session.Requirements.ServiceType = updated.ServiceType
				changes = append(changes, fmt.Sprintf("⚱️ Service → %s", strings.ReplaceAll(string(*updated.ServiceType), "_", " ")))
			}
		case "timeframe":
			if updated.Timeframe != nil && !equalPtr(updated.Timeframe, session.Requirements.Timeframe) {
				session.Requirements.Timeframe = updated.Timeframe
				changes = append(changes, fmt.Sprintf("⏰ Timeframe → %s", strings.ReplaceAll(string(*updated.Timeframe), "_", " ")))
			}
		case "preference":
			if updated.Preference != nil && !equalPtr(updated.Preference, session.Requirements.Preference) {
				session.Requirements.Preference = updated.Preference
				changes = append(changes, fmt.Sprintf("💰 Preference → %s", *updated.Preference))
			}
		}
	}

	if shouldResetSearch(old, session.Requirements) {
		session.ResetSearch()
	}

	if len(changes) == 0 {
		session.State = model.StateAdjustingPreferences
		return m.responder.PartialAdjustmentClarify(session.Requirements)
	}

	if session.Requirements.IsComplete() {
		session.State = model.StateShowingResults
		return m.responder.PartialAdjustmentComplete(changes, session.Requirements)
	}
	session.State = model.StateCollectingInfo
	return m.responder.PartialAdjustmentIncomplete(changes, session.Requirements)
}

// handleExtraction runs the generic extraction path and routes the reply by the
// resulting state
func (m *ConversationManager) handleExtraction(ctx context.Context, session *model.ConversationSession, message string) (*model.ExtractionResult, string) {
	if m.extractor.DetectCorrection(message) {
		log.Printf("Correction intent detected, extraction will overwrite as needed")
	}

	old := session.Requirements.Clone()
	result := m.extractor.Extract(ctx, message, session.Requirements, session.RecentUserMessages())
	session.Requirements = result.Requirements

	if shouldResetSearch(old, session.Requirements) {
		// New criteria invalidate previously shown results
		session.ResetSearch()
		session.State = model.StateCollectingInfo
	}

	return result, m.routeByState(session, message, realValidationIssues(result.ValidationIssues))
}

// routeByState renders the reply for a non-special turn given the current state
func (m *ConversationManager) routeByState(session *model.ConversationSession, message string, issues []string) string {
	switch session.State {
	case model.StateCollectingInfo:
		return m.routeCollecting(session, issues)
	case model.StateShowingResults:
		return m.routeShowingResults(session, message)
	case model.StateAdjustingPreferences:
		// Re-open collection with the current criteria on display
		session.State = model.StateCollectingInfo
		return m.responder.AdjustmentResponse(session.Requirements)
	default:
		return m.responder.CompletedState()
	}
}

// routeCollecting surfaces validation issues, promotes to the results stage on
// completeness, or prompts for the first missing field
func (m *ConversationManager) routeCollecting(session *model.ConversationSession, issues []string) string {
	if len(issues) > 0 {
		return m.responder.ValidationIssues(session.Requirements, issues)
	}
	if session.Requirements.IsComplete() {
		session.State = model.StateShowingResults
		return m.responder.Completion(session.Requirements)
	}
	return m.responder.CollectionPrompt(session.Requirements)
}

// routeShowingResults reads the user's verdict on the shown options
func (m *ConversationManager) routeShowingResults(session *model.ConversationSession, message string) string {
	messageLower := strings.ToLower(message)

	if matchAnyKeyword(messageLower, resultsAdjustmentKeywords) {
		session.State = model.StateAdjustingPreferences
		return m.responder.AdjustmentPrompt()
	}
	if matchAnyKeyword(messageLower, satisfiedKeywords) {
		session.State = model.StateCompleted
		return m.responder.Farewell()
	}
	return m.responder.ResultsClarify()
}

// fetchHomes pulls recommendations, swallowing errors into an empty batch
func (m *ConversationManager) fetchHomes(ctx context.Context, session *model.ConversationSession, showMore bool) []model.FuneralHome {
	var (
		homes []model.FuneralHome
		err   error
	)
	if showMore {
		homes, err = m.recommender.GetMoreRecommendations(ctx, session)
	} else {
		homes, err = m.recommender.GetRecommendations(ctx, session)
	}
	if err != nil {
		log.Printf("⚠️ Error getting funeral homes: %v", err)
		return nil
	}
	return homes
}

// shouldResetSearch reports whether the change between two requirement sets
// invalidates previously shown results. Timeframe changes alone never do, the
// result set does not depend on it.
func shouldResetSearch(old, updated *model.UserRequirements) bool {
	if !equalPtr(old.Location, updated.Location) {
		return true
	}
	if !equalPtr(old.ServiceType, updated.ServiceType) {
		return true
	}
	return !equalPtr(old.Preference, updated.Preference)
}

// realValidationIssues drops sentinel noise so only actionable problems are
// surfaced to the user
func realValidationIssues(issues []string) []string {
	var real []string
	for _, issue := range issues {
		if strings.Contains(issue, "NOT_SET") || strings.Contains(strings.ToLower(issue), "none") {
			continue
		}
		real = append(real, issue)
	}
	return real
}

// equalPtr compares two optional values, treating nil as equal only to nil
func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
