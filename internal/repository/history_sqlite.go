package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Hkishore1/ClaimsRAG/internal/entity"
)

// HistoryRepository defines the interface for conversation history persistence
type HistoryRepository interface {
	AddTurn(ctx context.Context, sessionID, role, text string) (*entity.ConversationTurn, error)
	GetRecent(ctx context.Context, sessionID string, limit int) ([]*entity.ConversationTurn, error)
	Clear(ctx context.Context, sessionID string) error
	ListSessions(ctx context.Context) ([]string, error)
}

var _ HistoryRepository = &HistorySQLite{}

// HistorySQLite implements HistoryRepository using SQLite
type HistorySQLite struct {
	db *sql.DB
}

func NewHistorySQLite(db *sql.DB) *HistorySQLite {
	return &HistorySQLite{db: db}
}

func (r *HistorySQLite) AddTurn(
	ctx context.Context,
	sessionID string,
	role string,
	text string,
) (*entity.ConversationTurn, error) {
	turn := &entity.ConversationTurn{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO chat_history (id, session_id, role, text, ts) VALUES (?, ?, ?, ?, ?)`,
		turn.ID, turn.SessionID, turn.Role, turn.Text, turn.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("add turn: %w", err)
	}

	return turn, nil
}

// GetRecent returns up to limit turns for the session, most recent first.
func (r *HistorySQLite) GetRecent(
	ctx context.Context,
	sessionID string,
	limit int,
) ([]*entity.ConversationTurn, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, session_id, role, text, ts
		 FROM chat_history
		 WHERE session_id = ?
		 ORDER BY ts DESC, rowid DESC
		 LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("get recent turns: %w", err)
	}
	defer rows.Close()

	turns := make([]*entity.ConversationTurn, 0, limit)
	for rows.Next() {
		var turn entity.ConversationTurn
		if err := rows.Scan(&turn.ID, &turn.SessionID, &turn.Role, &turn.Text, &turn.Timestamp); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, &turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}

	return turns, nil
}

func (r *HistorySQLite) Clear(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM chat_history WHERE session_id = ?`,
		sessionID,
	); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (r *HistorySQLite) ListSessions(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT session_id FROM chat_history GROUP BY session_id ORDER BY MAX(ts) DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		sessions = append(sessions, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	return sessions, nil
}
