package store

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Slot keys for the persisted state. Each slot maps to one JSON file.
const (
	SlotChatHistory = "chat_history"
	SlotUserProfile = "user_profile"
)

// Store persists JSON-serializable values in per-slot files under a data
// directory. Read and write failures never reach the caller; in-memory state
// remains the source of truth.
type Store struct {
	dir string
}

// New ensures the data directory exists and returns a Store rooted there.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Load reads a slot into out. It reports false when the slot is missing or its
// contents cannot be parsed; the caller supplies the default in both cases.
func (s *Store) Load(slot string, out any) bool {
	data, err := os.ReadFile(s.path(slot))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[store] failed to read slot %s: %v", slot, err)
		}
		return false
	}

	if err := json.Unmarshal(data, out); err != nil {
		log.Printf("[store] slot %s is corrupt, treating as absent: %v", slot, err)
		return false
	}
	return true
}

// Save writes a slot atomically via a temp file rename. Failures are logged
// and swallowed so a full disk never crashes a mutation.
func (s *Store) Save(slot string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("[store] failed to marshal slot %s: %v", slot, err)
		return
	}

	tmp := s.path(slot) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		log.Printf("[store] failed to write slot %s: %v", slot, err)
		return
	}
	if err := os.Rename(tmp, s.path(slot)); err != nil {
		log.Printf("[store] failed to commit slot %s: %v", slot, err)
	}
}

func (s *Store) path(slot string) string {
	return filepath.Join(s.dir, slot+".json")
}
