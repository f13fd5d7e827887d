package model

import "time"

// ConversationState represents where the dialogue currently is
type ConversationState string

const (
	StateCollectingInfo       ConversationState = "collecting_info"
	StateShowingResults       ConversationState = "showing_results"
	StateAdjustingPreferences ConversationState = "adjusting_preferences"
	StateCompleted            ConversationState = "completed"
)

// Message roles in conversation history
const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// maxHistoryEntries bounds conversation history; older entries are dropped
const maxHistoryEntries = 100

// recent-context window: scan this many trailing entries, keep this many user turns
const (
	contextScanWindow = 6
	contextUserLimit  = 3
)

// ChatMessage represents one entry in the conversation history
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationSession holds all per-conversation state
type ConversationSession struct {
	SessionID         string            `json:"session_id"`
	UserPhone         string            `json:"user_phone"`
	State             ConversationState `json:"state"`
	Requirements      *UserRequirements `json:"requirements"`
	ShownFuneralHomes []string          `json:"shown_funeral_homes"`
	CurrentPage       int               `json:"current_page"`
	History           []ChatMessage     `json:"conversation_history"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// NewConversationSession creates a fresh session in the collecting state
func NewConversationSession(sessionID, userPhone string) *ConversationSession {
	now := time.Now()
	return &ConversationSession{
		SessionID:         sessionID,
		UserPhone:         userPhone,
		State:             StateCollectingInfo,
		Requirements:      &UserRequirements{},
		ShownFuneralHomes: []string{},
		CurrentPage:       1,
		History:           []ChatMessage{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// AddMessage appends a message to conversation history and stamps the session
func (s *ConversationSession) AddMessage(role, content string) {
	s.History = append(s.History, ChatMessage{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	if len(s.History) > maxHistoryEntries {
		s.History = s.History[len(s.History)-maxHistoryEntries:]
	}
	s.UpdatedAt = time.Now()
}

// RecentUserMessages returns the most recent user utterances for oracle context
func (s *ConversationSession) RecentUserMessages() []string {
	start := len(s.History) - contextScanWindow
	if start < 0 {
		start = 0
	}
	var user []string
	for _, msg := range s.History[start:] {
		if msg.Role == RoleUser {
			user = append(user, msg.Content)
		}
	}
	if len(user) > contextUserLimit {
		user = user[len(user)-contextUserLimit:]
	}
	return user
}

// ResetSearch clears pagination state so previously shown homes can reappear.
// State transitions are decided by the conversation manager, not here.
func (s *ConversationSession) ResetSearch() {
	s.ShownFuneralHomes = []string{}
	s.CurrentPage = 1
}

// MarkShown records funeral home IDs the user has already seen
func (s *ConversationSession) MarkShown(ids ...string) {
	for _, id := range ids {
		if !s.HasShown(id) {
			s.ShownFuneralHomes = append(s.ShownFuneralHomes, id)
		}
	}
	s.UpdatedAt = time.Now()
}

// HasShown reports whether a funeral home ID was already shown in this session
func (s *ConversationSession) HasShown(id string) bool {
	for _, shown := range s.ShownFuneralHomes {
		if shown == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the session
func (s *ConversationSession) Clone() *ConversationSession {
	c := *s
	c.Requirements = s.Requirements.Clone()
	c.ShownFuneralHomes = append([]string{}, s.ShownFuneralHomes...)
	c.History = append([]ChatMessage{}, s.History...)
	return &c
}

// SessionSummary is the debug listing for one session
type SessionSummary struct {
	SessionID       string            `json:"session_id"`
	State           ConversationState `json:"state"`
	HasCompleteInfo bool              `json:"has_complete_info"`
	ShownHomesCount int               `json:"shown_homes_count"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Summary produces the debug view of this session
func (s *ConversationSession) Summary() SessionSummary {
	return SessionSummary{
		SessionID:       s.SessionID,
		State:           s.State,
		HasCompleteInfo: s.Requirements.IsComplete(),
		ShownHomesCount: len(s.ShownFuneralHomes),
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}
