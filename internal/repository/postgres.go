package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/AndreCurotec/funeral-home-agent/internal/model"
)

// PostgresSessionStore persists conversation sessions in PostgreSQL so they
// survive restarts. Requirements, shown home ids and history live in JSONB
// columns.
type PostgresSessionStore struct {
	db        *sqlx.DB
	userPhone string

	*sessionLocks
}

var _ SessionStore = (*PostgresSessionStore)(nil)

// NewPostgresSessionStore connects to PostgreSQL and prepares the schema
func NewPostgresSessionStore(dsn string, maxConn, maxIdleConn int, userPhone string) (*PostgresSessionStore, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
	if !strings.Contains(dsn, "?") {
		dsn += "?prefer_simple_protocol=true"
	} else {
		dsn += "&prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute) // Shorter lifetime to avoid stale connections
	db.SetConnMaxIdleTime(2 * time.Minute) // Close idle connections sooner

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresSessionStore{
		db:           db,
		userPhone:    userPhone,
		sessionLocks: newSessionLocks(),
	}
	if err := store.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database connection
func (s *PostgresSessionStore) Close() error {
	return s.db.Close()
}

func (s *PostgresSessionStore) ensureSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS chat_sessions (
			session_id TEXT PRIMARY KEY,
			user_phone TEXT NOT NULL DEFAULT '',
			state TEXT NOT NULL DEFAULT 'collecting_info',
			requirements JSONB NOT NULL DEFAULT '{}',
			shown_funeral_homes JSONB NOT NULL DEFAULT '[]',
			current_page INT NOT NULL DEFAULT 1,
			conversation_history JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_chat_sessions_updated_at ON chat_sessions (updated_at);

		CREATE TABLE IF NOT EXISTS turn_logs (
			id BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL,
			user_message TEXT NOT NULL,
			bot_response TEXT NOT NULL,
			state TEXT NOT NULL,
			extraction_method TEXT,
			extracted_fields JSONB,
			result_count INT NOT NULL DEFAULT 0,
			response_time_ms INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// sessionRow maps a chat_sessions row
type sessionRow struct {
	SessionID    string             `db:"session_id"`
	UserPhone    string             `db:"user_phone"`
	State        string             `db:"state"`
	Requirements requirementsColumn `db:"requirements"`
	ShownHomes   idListColumn       `db:"shown_funeral_homes"`
	CurrentPage  int                `db:"current_page"`
	History      historyColumn      `db:"conversation_history"`
	CreatedAt    time.Time          `db:"created_at"`
	UpdatedAt    time.Time          `db:"updated_at"`
}

func rowFromSession(session *model.ConversationSession) sessionRow {
	row := sessionRow{
		SessionID:   session.SessionID,
		UserPhone:   session.UserPhone,
		State:       string(session.State),
		ShownHomes:  idListColumn(session.ShownFuneralHomes),
		CurrentPage: session.CurrentPage,
		History:     historyColumn(session.History),
		CreatedAt:   session.CreatedAt,
		UpdatedAt:   session.UpdatedAt,
	}
	if session.Requirements != nil {
		row.Requirements = requirementsColumn(*session.Requirements)
	}
	return row
}

func (r sessionRow) toSession() *model.ConversationSession {
	requirements := model.UserRequirements(r.Requirements)
	session := &model.ConversationSession{
		SessionID:         r.SessionID,
		UserPhone:         r.UserPhone,
		State:             model.ConversationState(r.State),
		Requirements:      &requirements,
		ShownFuneralHomes: []string(r.ShownHomes),
		CurrentPage:       r.CurrentPage,
		History:           []model.ChatMessage(r.History),
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
	if session.ShownFuneralHomes == nil {
		session.ShownFuneralHomes = []string{}
	}
	if session.History == nil {
		session.History = []model.ChatMessage{}
	}
	return session
}

// GetOrCreate loads the session row, inserting a fresh one when absent
func (s *PostgresSessionStore) GetOrCreate(ctx context.Context, sessionID string) (*model.ConversationSession, error) {
	var row sessionRow
	query := `
		SELECT session_id, user_phone, state, requirements, shown_funeral_homes,
		       current_page, conversation_history, created_at, updated_at
		FROM chat_sessions
		WHERE session_id = $1
	`
	err := s.db.GetContext(ctx, &row, query, sessionID)
	if err == nil {
		return row.toSession(), nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	session := model.NewConversationSession(sessionID, s.userPhone)
	if err := s.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Save upserts the full session state
func (s *PostgresSessionStore) Save(ctx context.Context, session *model.ConversationSession) error {
	row := rowFromSession(session)
	query := `
		INSERT INTO chat_sessions (
			session_id, user_phone, state, requirements, shown_funeral_homes,
			current_page, conversation_history, created_at, updated_at
		)
		VALUES (:session_id, :user_phone, :state, :requirements, :shown_funeral_homes,
		        :current_page, :conversation_history, :created_at, NOW())
		ON CONFLICT (session_id) DO UPDATE SET
			user_phone = EXCLUDED.user_phone,
			state = EXCLUDED.state,
			requirements = EXCLUDED.requirements,
			shown_funeral_homes = EXCLUDED.shown_funeral_homes,
			current_page = EXCLUDED.current_page,
			conversation_history = EXCLUDED.conversation_history,
			updated_at = NOW()
	`
	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// ListSummaries returns the debug view of all sessions, oldest first
func (s *PostgresSessionStore) ListSummaries(ctx context.Context) ([]model.SessionSummary, error) {
	var rows []sessionRow
	query := `
		SELECT session_id, user_phone, state, requirements, shown_funeral_homes,
		       current_page, conversation_history, created_at, updated_at
		FROM chat_sessions
		ORDER BY created_at
	`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	summaries := make([]model.SessionSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, row.toSession().Summary())
	}
	return summaries, nil
}

// EvictOlderThan drops sessions whose last activity is older than age
func (s *PostgresSessionStore) EvictOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := time.Now().Add(-age)
	result, err := s.db.ExecContext(ctx, `DELETE FROM chat_sessions WHERE updated_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to evict sessions: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count evicted sessions: %w", err)
	}
	return int(affected), nil
}

// Count returns the number of stored sessions
func (s *PostgresSessionStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM chat_sessions`); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

// TurnLogEntry captures one processed turn for analytics
type TurnLogEntry struct {
	SessionID        string
	UserMessage      string
	BotResponse      string
	State            model.ConversationState
	ExtractionMethod string
	ExtractedFields  []string
	ResultCount      int
	ResponseTimeMs   int
}

// TurnLogger is implemented by stores that record turn analytics
type TurnLogger interface {
	LogTurn(ctx context.Context, entry TurnLogEntry) error
}

// LogTurn records a processed turn
func (s *PostgresSessionStore) LogTurn(ctx context.Context, entry TurnLogEntry) error {
	query := `
		INSERT INTO turn_logs (session_id, user_message, bot_response, state, extraction_method, extracted_fields, result_count, response_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.SessionID,
		entry.UserMessage,
		entry.BotResponse,
		string(entry.State),
		entry.ExtractionMethod,
		idListColumn(entry.ExtractedFields),
		entry.ResultCount,
		entry.ResponseTimeMs,
	)
	if err != nil {
		return fmt.Errorf("failed to log turn: %w", err)
	}
	return nil
}

// requirementsColumn stores UserRequirements as JSONB
type requirementsColumn model.UserRequirements

// Value implements driver.Valuer
func (r requirementsColumn) Value() (driver.Value, error) {
	return json.Marshal(model.UserRequirements(r))
}

// Scan implements sql.Scanner
func (r *requirementsColumn) Scan(value interface{}) error {
	if value == nil {
		*r = requirementsColumn{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return json.Unmarshal([]byte(value.(string)), r)
	}
	return json.Unmarshal(bytes, r)
}

// idListColumn stores a list of funeral home ids as JSONB
type idListColumn []string

// Value implements driver.Valuer
func (l idListColumn) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal([]string(l))
}

// Scan implements sql.Scanner
func (l *idListColumn) Scan(value interface{}) error {
	if value == nil {
		*l = idListColumn{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return json.Unmarshal([]byte(value.(string)), l)
	}
	return json.Unmarshal(bytes, l)
}

// historyColumn stores conversation messages as JSONB
type historyColumn []model.ChatMessage

// Value implements driver.Valuer
func (h historyColumn) Value() (driver.Value, error) {
	if h == nil {
		return json.Marshal([]model.ChatMessage{})
	}
	return json.Marshal([]model.ChatMessage(h))
}

// Scan implements sql.Scanner
func (h *historyColumn) Scan(value interface{}) error {
	if value == nil {
		*h = historyColumn{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return json.Unmarshal([]byte(value.(string)), h)
	}
	return json.Unmarshal(bytes, h)
}
