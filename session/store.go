package session

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"orbchat/stream"
)

// Store persists conversation history in a local SQLite database.
type Store struct {
	db *sql.DB
}

// Message is one persisted transcript entry.
type Message struct {
	ID        string
	SessionID string
	Role      string
	Content   string
	CreatedAt time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	mode       TEXT NOT NULL,
	started_at REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL REFERENCES sessions(id),
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, created_at);
`

// OpenStore opens (and if needed creates) the history database at path.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordSession registers a session id the first time it is seen.
func (s *Store) RecordSession(id string, mode stream.Mode) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions (id, mode, started_at)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, string(mode), unixFloat(time.Now()))
	if err != nil {
		return fmt.Errorf("record session: %w", err)
	}
	return nil
}

// AppendMessage stores one transcript entry under a session.
func (s *Store) AppendMessage(sessionID, role, content string) error {
	_, err := s.db.Exec(`
		INSERT INTO messages (id, session_id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, uuid.New().String(), sessionID, role, content, unixFloat(time.Now()))
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// MessagesForSession returns a session's transcript in chronological order.
func (s *Store) MessagesForSession(sessionID string) ([]Message, error) {
	rows, err := s.db.Query(`
		SELECT id, session_id, role, content, created_at
		FROM messages
		WHERE session_id = ?
		ORDER BY created_at ASC, id ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		var createdAt float64
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.CreatedAt = timeFromUnix(createdAt)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func unixFloat(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
