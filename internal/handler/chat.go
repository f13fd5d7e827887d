package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/AndreCurotec/funeral-home-agent/internal/model"
	"github.com/AndreCurotec/funeral-home-agent/internal/repository"
	"github.com/AndreCurotec/funeral-home-agent/internal/service"
)

// turnLogTimeout bounds the background analytics write
const turnLogTimeout = 5 * time.Second

// ChatHandler handles the conversational HTTP surface
type ChatHandler struct {
	store       repository.SessionStore
	manager     *service.ConversationManager
	recommender *service.RecommendationService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(store repository.SessionStore, manager *service.ConversationManager, recommender *service.RecommendationService) *ChatHandler {
	return &ChatHandler{
		store:       store,
		manager:     manager,
		recommender: recommender,
	}
}

// Chat handles POST /chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = newSessionID()
	}

	// Turns for the same session must not interleave
	release := h.store.Lock(sessionID)
	defer release()

	session, err := h.store.GetOrCreate(c.Request.Context(), sessionID)
	if err != nil {
		log.Printf("⚠️ Error loading session %s: %v", sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred processing your message"})
		return
	}

	started := time.Now()
	result := h.manager.ProcessTurn(c.Request.Context(), session, req.Message)

	if err := h.store.Save(c.Request.Context(), session); err != nil {
		log.Printf("⚠️ Error saving session %s: %v", sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "An error occurred processing your message"})
		return
	}

	h.logTurn(session, req.Message, result, time.Since(started))

	c.JSON(http.StatusOK, h.buildResponse(session, result))
}

func (h *ChatHandler) buildResponse(session *model.ConversationSession, result *service.TurnResult) model.ChatResponse {
	requirements := session.Requirements
	status := &model.RequirementsStatus{
		Location:        requirements.Location,
		ServiceType:     requirements.ServiceType,
		Timeframe:       requirements.Timeframe,
		Preference:      requirements.Preference,
		MissingFields:   requirements.MissingFields(),
		State:           session.State,
		ShownHomesCount: len(session.ShownFuneralHomes),
		HasMoreOptions:  h.recommender.HasMoreOptions(session),
	}
	return model.ChatResponse{
		Response:           result.Response,
		SessionID:          session.SessionID,
		IsComplete:         result.Completed,
		FuneralHomes:       result.FuneralHomes,
		RequirementsStatus: status,
	}
}

// logTurn records the turn in the background when the store supports it
func (h *ChatHandler) logTurn(session *model.ConversationSession, message string, result *service.TurnResult, elapsed time.Duration) {
	logger, ok := h.store.(repository.TurnLogger)
	if !ok {
		return
	}

	entry := repository.TurnLogEntry{
		SessionID:      session.SessionID,
		UserMessage:    message,
		BotResponse:    result.Response,
		State:          session.State,
		ResultCount:    len(result.FuneralHomes),
		ResponseTimeMs: int(elapsed.Milliseconds()),
	}
	if result.Extraction != nil {
		entry.ExtractionMethod = result.Extraction.Method
		entry.ExtractedFields = result.Extraction.ExtractedFields
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), turnLogTimeout)
		defer cancel()
		if err := logger.LogTurn(ctx, entry); err != nil {
			log.Printf("⚠️ Failed to log turn: %v", err)
		}
	}()
}

// newSessionID generates an id for requests that omit one
func newSessionID() string {
	return "session_" + strings.ReplaceAll(uuid.New().String(), "-", "")
}
