package model

// ChatRequest represents a chat turn request
type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id,omitempty"`
}

// RequirementsStatus mirrors collected requirements for the frontend
type RequirementsStatus struct {
	Location        *string           `json:"location"`
	ServiceType     *ServiceType      `json:"service_type"`
	Timeframe       *Timeframe        `json:"timeframe"`
	Preference      *Preference       `json:"preference"`
	MissingFields   []string          `json:"missing_fields"`
	State           ConversationState `json:"state"`
	ShownHomesCount int               `json:"shown_homes_count"`
	HasMoreOptions  bool              `json:"has_more_options"`
}

// ChatResponse represents a chat turn response
type ChatResponse struct {
	Response           string              `json:"response"`
	SessionID          string              `json:"session_id"`
	IsComplete         bool                `json:"is_complete"`
	FuneralHomes       []FuneralHome       `json:"funeral_homes,omitempty"`
	RequirementsStatus *RequirementsStatus `json:"requirements_status,omitempty"`
}

// DebugSessionsResponse lists active sessions for the debug endpoint
type DebugSessionsResponse struct {
	TotalSessions int              `json:"total_sessions"`
	Sessions      []SessionSummary `json:"sessions"`
}

// CleanupResponse reports the result of an admin cleanup run
type CleanupResponse struct {
	Message           string `json:"message"`
	RemainingSessions int    `json:"remaining_sessions"`
}
