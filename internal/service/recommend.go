package service

import (
	"context"
	"errors"
	"log"

	"github.com/AndreCurotec/funeral-home-agent/internal/model"
)

// defaultResultCount is how many fresh recommendations one request aims for
const defaultResultCount = 3

// maxExtraPages bounds how far past the starting cursor one collection walks
const maxExtraPages = 10

// RecommendationService pages through provider results, skipping funeral homes
// the session has already seen and recording every new one it hands out.
type RecommendationService struct {
	provider    FuneralHomeProvider
	resultCount int
}

// NewRecommendationService creates a recommendation service targeting
// resultCount fresh results per request
func NewRecommendationService(provider FuneralHomeProvider, resultCount int) *RecommendationService {
	if resultCount <= 0 {
		resultCount = defaultResultCount
	}
	return &RecommendationService{
		provider:    provider,
		resultCount: resultCount,
	}
}

// GetRecommendations fetches a fresh batch of funeral homes for a completed
// requirement set. The quote update is best-effort: its failure never blocks
// the search.
func (s *RecommendationService) GetRecommendations(ctx context.Context, session *model.ConversationSession) ([]model.FuneralHome, error) {
	if !session.Requirements.IsComplete() {
		return nil, ErrIncompleteRequirements
	}

	if err := s.provider.UpdateQuote(ctx, session.Requirements); err != nil {
		log.Printf("⚠️ Quote update failed: %v", err)
	}

	return s.collect(ctx, session), nil
}

// GetMoreRecommendations fetches additional funeral homes beyond the ones the
// session has already seen, without touching the quote
func (s *RecommendationService) GetMoreRecommendations(ctx context.Context, session *model.ConversationSession) ([]model.FuneralHome, error) {
	if !session.Requirements.IsComplete() {
		return nil, ErrIncompleteRequirements
	}

	log.Printf("[DEBUG] Getting more recommendations for session %s, already shown: %v", session.SessionID, session.ShownFuneralHomes)

	return s.collect(ctx, session), nil
}

// collect walks provider pages until enough unseen results are gathered, the
// provider reports exhaustion, the page bound is hit, or a provider error stops
// the walk early. Errors never escape: callers get whatever was accumulated.
func (s *RecommendationService) collect(ctx context.Context, session *model.ConversationSession) []model.FuneralHome {
	collected := make([]model.FuneralHome, 0, s.resultCount)

	// Resume past pages likely consumed by earlier requests
	startPage := 1
	if len(session.ShownFuneralHomes) > 0 {
		startPage = len(session.ShownFuneralHomes) + 1
	}
	maxPages := startPage + maxExtraPages

	page := startPage
	for len(collected) < s.resultCount && page <= maxPages {
		homes, err := s.provider.SearchPage(ctx, session.Requirements, page)
		if err != nil {
			if errors.Is(err, ErrNoMoreResults) {
				break
			}
			log.Printf("⚠️ Error fetching funeral homes page %d: %v", page, err)
			break
		}

		for _, home := range homes {
			if session.HasShown(home.ID) {
				continue
			}
			collected = append(collected, home)
			// Record immediately so a later request can never repeat it
			session.MarkShown(home.ID)
			if len(collected) >= s.resultCount {
				break
			}
		}

		page++
	}

	session.CurrentPage = page

	return collected
}

// HasMoreOptions reports whether further results are likely available. Past six
// shown homes the well is assumed to be running dry.
func (s *RecommendationService) HasMoreOptions(session *model.ConversationSession) bool {
	return len(session.ShownFuneralHomes) < 6
}
