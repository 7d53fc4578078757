package repo

import (
	"context"

	"github.com/softclay/ana-bridge/internal/biz/domain"
)

// ControlRepo is the chat-control repository interface
// Responsible for per-chat activation persistence (SQLite)
type ControlRepo interface {
	// Get gets the control record for a chat; nil when none exists
	Get(ctx context.Context, chatID string) (*domain.ChatControl, error)

	// Save saves a control record (create or update)
	Save(ctx context.Context, control *domain.ChatControl) error

	// Close closes the underlying store
	Close() error
}

// MemoryRepo is the sender-memory repository interface
// Responsible for per-sender affect state and history persistence (SQLite)
type MemoryRepo interface {
	// Get gets the memory record for a sender; nil when none exists.
	// A malformed stored record is recovered as a default empty record,
	// never surfaced as an error.
	Get(ctx context.Context, senderID string) (*domain.SenderMemory, error)

	// Save saves a memory record (create or update)
	Save(ctx context.Context, memory *domain.SenderMemory) error

	// ListAll lists all memory records (for the /chats debug endpoint)
	ListAll(ctx context.Context) ([]*domain.SenderMemory, error)

	// Close closes the underlying store
	Close() error
}
