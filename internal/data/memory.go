package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/softclay/ana-bridge/internal/biz/domain"
	"github.com/softclay/ana-bridge/internal/biz/repo"
)

// memoryRepo implements the sender-memory repository
type memoryRepo struct {
	db *sql.DB
}

// newMemoryRepo creates the memory repository on a shared database
func newMemoryRepo(db *sql.DB) (repo.MemoryRepo, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS sender_memories (
			sender_id TEXT PRIMARY KEY,
			jealousy INTEGER NOT NULL DEFAULT 0,
			last_trigger_at INTEGER NOT NULL DEFAULT 0,
			last_trigger_text TEXT NOT NULL DEFAULT '',
			history TEXT NOT NULL DEFAULT '[]',
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create sender_memories table: %w", err)
	}
	return &memoryRepo{db: db}, nil
}

// Get gets the memory record for a sender. A malformed history column
// is recovered as an empty history rather than surfaced as an error.
func (r *memoryRepo) Get(ctx context.Context, senderID string) (*domain.SenderMemory, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT sender_id, jealousy, last_trigger_at, last_trigger_text, history, updated_at
		FROM sender_memories
		WHERE sender_id = ?
	`, senderID)

	mem, err := scanMemory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query memory: %w", err)
	}
	return mem, nil
}

// Save saves a memory record
func (r *memoryRepo) Save(ctx context.Context, mem *domain.SenderMemory) error {
	history, err := json.Marshal(mem.History)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}

	var triggerAt int64
	if !mem.LastTriggerAt.IsZero() {
		triggerAt = mem.LastTriggerAt.Unix()
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO sender_memories
			(sender_id, jealousy, last_trigger_at, last_trigger_text, history, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		mem.SenderID,
		mem.Jealousy,
		triggerAt,
		mem.LastTriggerText,
		string(history),
		mem.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save memory: %w", err)
	}
	return nil
}

// ListAll lists all memory records
func (r *memoryRepo) ListAll(ctx context.Context) ([]*domain.SenderMemory, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT sender_id, jealousy, last_trigger_at, last_trigger_text, history, updated_at
		FROM sender_memories
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list memories: %w", err)
	}
	defer rows.Close()

	var result []*domain.SenderMemory
	for rows.Next() {
		mem, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan memory: %w", err)
		}
		result = append(result, mem)
	}
	return result, rows.Err()
}

// Close is a no-op; the shared database is closed by Repositories
func (r *memoryRepo) Close() error {
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemory(row rowScanner) (*domain.SenderMemory, error) {
	var mem domain.SenderMemory
	var triggerAt, updatedAt int64
	var history string

	err := row.Scan(&mem.SenderID, &mem.Jealousy, &triggerAt, &mem.LastTriggerText, &history, &updatedAt)
	if err != nil {
		return nil, err
	}

	if triggerAt > 0 {
		mem.LastTriggerAt = time.Unix(triggerAt, 0)
	}
	mem.UpdatedAt = time.Unix(updatedAt, 0)

	if err := json.Unmarshal([]byte(history), &mem.History); err != nil {
		// Corrupt stored history: fall back to an empty one
		mem.History = nil
	}
	return &mem, nil
}
