package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AndreCurotec/funeral-home-agent/internal/model"
)

// SessionStore is the persistence boundary for conversation sessions. Reads
// hand out deep copies and Save writes the whole session back, so a turn that
// fails midway never leaves a half-mutated session behind.
type SessionStore interface {
	// GetOrCreate returns the session for the id, creating it when absent
	GetOrCreate(ctx context.Context, sessionID string) (*model.ConversationSession, error)

	// Save persists the full session state
	Save(ctx context.Context, session *model.ConversationSession) error

	// ListSummaries returns the debug view of every stored session
	ListSummaries(ctx context.Context) ([]model.SessionSummary, error)

	// EvictOlderThan removes sessions idle longer than age, returning how many
	EvictOlderThan(ctx context.Context, age time.Duration) (int, error)

	// Count returns the number of stored sessions
	Count(ctx context.Context) (int, error)

	// Lock serializes turn processing for one session id; the returned func
	// releases it. Turns for the same session must never interleave.
	Lock(sessionID string) func()
}

// sessionLocks hands out one mutex per session id
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: map[string]*sync.Mutex{}}
}

// Lock acquires the per-session mutex, creating it on first use
func (l *sessionLocks) Lock(sessionID string) func() {
	l.mu.Lock()
	lock, ok := l.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[sessionID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// MemorySessionStore keeps sessions in process memory. It is the default
// backend; sessions do not survive a restart.
type MemorySessionStore struct {
	mu        sync.RWMutex
	sessions  map[string]*model.ConversationSession
	userPhone string

	*sessionLocks
}

var _ SessionStore = (*MemorySessionStore)(nil)

// NewMemorySessionStore creates an empty in-memory store. New sessions are
// created with the given user phone.
func NewMemorySessionStore(userPhone string) *MemorySessionStore {
	return &MemorySessionStore{
		sessions:     map[string]*model.ConversationSession{},
		userPhone:    userPhone,
		sessionLocks: newSessionLocks(),
	}
}

// GetOrCreate returns a copy of the stored session, creating it when absent
func (s *MemorySessionStore) GetOrCreate(_ context.Context, sessionID string) (*model.ConversationSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.sessions[sessionID]; ok {
		existing.UpdatedAt = time.Now()
		return existing.Clone(), nil
	}

	session := model.NewConversationSession(sessionID, s.userPhone)
	s.sessions[sessionID] = session.Clone()
	return session, nil
}

// Save stores a copy of the session, stamping its update time
func (s *MemorySessionStore) Save(_ context.Context, session *model.ConversationSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := session.Clone()
	stored.UpdatedAt = time.Now()
	s.sessions[session.SessionID] = stored
	return nil
}

// ListSummaries returns the debug view of all sessions, oldest first
func (s *MemorySessionStore) ListSummaries(_ context.Context) ([]model.SessionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]model.SessionSummary, 0, len(s.sessions))
	for _, session := range s.sessions {
		summaries = append(summaries, session.Summary())
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.Before(summaries[j].CreatedAt)
	})
	return summaries, nil
}

// EvictOlderThan drops sessions whose last activity is older than age
func (s *MemorySessionStore) EvictOlderThan(_ context.Context, age time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-age)
	evicted := 0
	for id, session := range s.sessions {
		if session.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted, nil
}

// Count returns the number of stored sessions
func (s *MemorySessionStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}
