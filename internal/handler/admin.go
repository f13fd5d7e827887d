package handler

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AndreCurotec/funeral-home-agent/internal/model"
	"github.com/AndreCurotec/funeral-home-agent/internal/repository"
)

// AdminHandler serves the debug and maintenance endpoints
type AdminHandler struct {
	store      repository.SessionStore
	sessionTTL time.Duration
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(store repository.SessionStore, sessionTTL time.Duration) *AdminHandler {
	return &AdminHandler{
		store:      store,
		sessionTTL: sessionTTL,
	}
}

// Sessions handles GET /debug/sessions
func (h *AdminHandler) Sessions(c *gin.Context) {
	summaries, err := h.store.ListSummaries(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list sessions: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.DebugSessionsResponse{
		TotalSessions: len(summaries),
		Sessions:      summaries,
	})
}

// Cleanup handles POST /admin/cleanup
func (h *AdminHandler) Cleanup(c *gin.Context) {
	evicted, err := h.store.EvictOlderThan(c.Request.Context(), h.sessionTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clean up sessions: " + err.Error()})
		return
	}

	remaining, err := h.store.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count sessions: " + err.Error()})
		return
	}

	log.Printf("🧹 Cleaned up %d old sessions, %d remaining", evicted, remaining)
	c.JSON(http.StatusOK, model.CleanupResponse{
		Message:           fmt.Sprintf("Cleaned up %d old sessions", evicted),
		RemainingSessions: remaining,
	})
}
