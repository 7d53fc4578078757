package gateway

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// CredStore persists rotated transport credentials. The gateway emits
// a creds.update frame whenever the session keys change; losing one
// means re-pairing, so writes go through a temp file and rename.
type CredStore struct {
	path string
}

// NewCredStore creates a store writing to the given file path
func NewCredStore(path string) *CredStore {
	return &CredStore{path: path}
}

// Save writes the credential payload to disk
func (s *CredStore) Save(raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create creds directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0600); err != nil {
		return fmt.Errorf("write creds: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename creds: %w", err)
	}
	return nil
}

// Load reads the stored credential payload, nil when none exists
func (s *CredStore) Load() (json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read creds: %w", err)
	}
	return data, nil
}
