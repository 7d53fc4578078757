package data

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/softclay/ana-bridge/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// Repositories contains all persistence repositories
type Repositories struct {
	Control repo.ControlRepo
	Memory  repo.MemoryRepo

	db *sql.DB
}

// NewRepositories opens the state database and creates all repositories
func NewRepositories(dbPath string) (*Repositories, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	controlRepo, err := newControlRepo(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	memoryRepo, err := newMemoryRepo(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Repositories{
		Control: controlRepo,
		Memory:  memoryRepo,
		db:      db,
	}, nil
}

// Close closes the shared database
func (r *Repositories) Close() error {
	return r.db.Close()
}
