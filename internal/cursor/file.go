package cursor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"transferScope/internal/model"
)

type fileEntry struct {
	Block     uint64 `json:"block_number"`
	Index     uint   `json:"log_index"`
	UpdatedAt string `json:"updated_at"`
}

// FileStore keeps all pair cursors in a single JSON file. Writes go through a
// temp file and rename so a crash mid-write cannot corrupt the stored state.
type FileStore struct {
	path string

	mu      sync.Mutex
	entries map[string]fileEntry
	loaded  bool
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func pairKey(chain, contract string) string {
	return chain + ":" + contract
}

func (s *FileStore) Load(_ context.Context, chain, contract string) (model.OrderingKey, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return model.OrderingKey{}, false, err
	}

	entry, ok := s.entries[pairKey(chain, contract)]
	if !ok {
		return model.OrderingKey{}, false, nil
	}
	return model.OrderingKey{Block: entry.Block, Index: entry.Index}, true, nil
}

func (s *FileStore) Save(_ context.Context, chain, contract string, key model.OrderingKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return err
	}

	s.entries[pairKey(chain, contract)] = fileEntry{
		Block:     key.Block,
		Index:     key.Index,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}

	return s.flush()
}

func (s *FileStore) ensureLoaded() error {
	if s.loaded {
		return nil
	}

	s.entries = make(map[string]fileEntry)
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.loaded = true
			return nil
		}
		return fmt.Errorf("read cursor file: %w", err)
	}

	if err := json.Unmarshal(data, &s.entries); err != nil {
		return fmt.Errorf("parse cursor file: %w", err)
	}

	s.loaded = true
	return nil
}

func (s *FileStore) flush() error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cursor dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cursor file: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write cursor tmp: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename cursor file: %w", err)
	}

	return nil
}
