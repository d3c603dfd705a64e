package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

// Store persists per-conversation dialogue state: slot values, the turn
// log, and session activity used by the idle sweeper. Plan instances
// themselves are never persisted; a restart starts conversations clean.
type Store struct {
	DB *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	queries := []string{
		`CREATE TABLE IF NOT EXISTS slots (
			chat_id TEXT,
			slot TEXT,
			value TEXT,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (chat_id, slot)
		);`,
		`CREATE TABLE IF NOT EXISTS turns (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chat_id TEXT,
			role TEXT,
			content TEXT,
			intent TEXT,
			action TEXT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			chat_id TEXT PRIMARY KEY,
			active_plan TEXT,
			last_active DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return nil, err
		}
	}

	return &Store{DB: db}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// SaveSlot upserts a slot value. Values are stored as JSON so booleans and
// numbers survive the round trip.
func (s *Store) SaveSlot(chatID, slot string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("store: encode slot %s: %w", slot, err)
	}
	query := `INSERT INTO slots (chat_id, slot, value, updated_at) VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT(chat_id, slot) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	_, err = s.DB.Exec(query, chatID, slot, string(encoded))
	return err
}

// LoadSlots returns every stored slot value for a conversation.
func (s *Store) LoadSlots(chatID string) (map[string]any, error) {
	rows, err := s.DB.Query(`SELECT slot, value FROM slots WHERE chat_id = ?`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make(map[string]any)
	for rows.Next() {
		var slot, raw string
		if err := rows.Scan(&slot, &raw); err != nil {
			return nil, err
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			// Rows written before JSON encoding was introduced hold bare text.
			value = raw
		}
		slots[slot] = value
	}
	return slots, rows.Err()
}

// ClearSlots drops all slot values for a conversation.
func (s *Store) ClearSlots(chatID string) error {
	_, err := s.DB.Exec(`DELETE FROM slots WHERE chat_id = ?`, chatID)
	return err
}

// LogTurn appends one turn to the conversation log.
func (s *Store) LogTurn(chatID, role, content, intent, action string) error {
	query := `INSERT INTO turns (chat_id, role, content, intent, action) VALUES (?, ?, ?, ?, ?)`
	_, err := s.DB.Exec(query, chatID, role, content, intent, action)
	return err
}

// RecentTurns returns up to limit turns for a conversation, oldest first.
func (s *Store) RecentTurns(chatID string, limit int) ([]Turn, error) {
	query := `SELECT role, content, intent, action FROM turns WHERE chat_id = ? ORDER BY id DESC LIMIT ?`
	rows, err := s.DB.Query(query, chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.Role, &t.Content, &t.Intent, &t.Action); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to get chronological order
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// Turn is one logged exchange step.
type Turn struct {
	Role    string
	Content string
	Intent  string
	Action  string
}

// TouchSession records conversation activity and the currently active plan
// name ("" when none).
func (s *Store) TouchSession(chatID, activePlan string) error {
	query := `INSERT INTO sessions (chat_id, active_plan, last_active) VALUES (?, ?, datetime('now'))
		ON CONFLICT(chat_id) DO UPDATE SET active_plan = excluded.active_plan, last_active = excluded.last_active`
	_, err := s.DB.Exec(query, chatID, activePlan)
	return err
}

// IdleSessions returns the chat IDs of sessions with an active plan whose
// last activity is older than the threshold.
func (s *Store) IdleSessions(threshold time.Duration) ([]string, error) {
	query := `SELECT chat_id FROM sessions
		WHERE active_plan != ''
		AND (julianday('now') - julianday(last_active)) * 86400 >= ?`
	rows, err := s.DB.Query(query, threshold.Seconds())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []string
	for rows.Next() {
		var chatID string
		if err := rows.Scan(&chatID); err != nil {
			return nil, err
		}
		chats = append(chats, chatID)
	}
	return chats, rows.Err()
}
