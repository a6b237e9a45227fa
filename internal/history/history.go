// Package history persists the conversation between users and the analysis
// agent. Each analysis appends a user turn and an agent turn atomically, so
// readers never observe a question without its answer.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Turn is one entry of the conversation.
type Turn struct {
	ID        int64          `json:"id"`
	Role      string         `json:"role"` // "user" or "agent"
	Content   string         `json:"content"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"timestamp"`
}

// Store persists conversation turns in SQLite.
type Store struct {
	db *sql.DB
}

// New wraps an existing database handle and applies the schema. The caller
// retains ownership of db.
func New(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate history: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS chat_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		data TEXT,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_chat_history_created ON chat_history(created_at);
	`)
	return err
}

// Append stores turns in order inside a single transaction. Either all turns
// are persisted or none are.
func (s *Store) Append(ctx context.Context, turns ...Turn) error {
	if len(turns) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	for _, t := range turns {
		var data any
		if len(t.Data) > 0 {
			encoded, err := json.Marshal(t.Data)
			if err != nil {
				return fmt.Errorf("encode turn data: %w", err)
			}
			data = string(encoded)
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO chat_history (role, content, data) VALUES (?, ?, ?)",
			t.Role, t.Content, data); err != nil {
			return fmt.Errorf("insert turn: %w", err)
		}
	}

	return tx.Commit()
}

// List returns the most recent limit turns in chronological order, oldest
// first. A non-positive limit defaults to 50.
func (s *Store) List(ctx context.Context, limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, role, content, data, created_at FROM chat_history
		ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	turns := make([]Turn, 0, limit)
	for rows.Next() {
		var t Turn
		var data sql.NullString
		if err := rows.Scan(&t.ID, &t.Role, &t.Content, &data, &t.CreatedAt); err != nil {
			return nil, err
		}
		if data.Valid && data.String != "" {
			if err := json.Unmarshal([]byte(data.String), &t.Data); err != nil {
				return nil, fmt.Errorf("decode turn %d data: %w", t.ID, err)
			}
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Rows came newest first; flip to chronological order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// Clear removes every turn. Clearing an empty history is not an error.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM chat_history"); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
