package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/softclay/ana-bridge/internal/biz/domain"
	"github.com/softclay/ana-bridge/internal/biz/repo"
)

// controlRepo implements the chat-control repository
type controlRepo struct {
	db *sql.DB
}

// newControlRepo creates the control repository on a shared database
func newControlRepo(db *sql.DB) (repo.ControlRepo, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS chat_controls (
			chat_id TEXT PRIMARY KEY,
			active INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat_controls table: %w", err)
	}
	return &controlRepo{db: db}, nil
}

// Get gets the control record for a chat
func (r *controlRepo) Get(ctx context.Context, chatID string) (*domain.ChatControl, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT chat_id, active, updated_at
		FROM chat_controls
		WHERE chat_id = ?
	`, chatID)

	var control domain.ChatControl
	var active int
	var updatedAt int64
	err := row.Scan(&control.ChatID, &active, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query control: %w", err)
	}

	control.Active = active != 0
	control.UpdatedAt = time.Unix(updatedAt, 0)
	return &control, nil
}

// Save saves a control record
func (r *controlRepo) Save(ctx context.Context, control *domain.ChatControl) error {
	active := 0
	if control.Active {
		active = 1
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO chat_controls (chat_id, active, updated_at)
		VALUES (?, ?, ?)
	`, control.ChatID, active, control.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save control: %w", err)
	}
	return nil
}

// Close is a no-op; the shared database is closed by Repositories
func (r *controlRepo) Close() error {
	return nil
}
