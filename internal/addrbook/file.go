package addrbook

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LoadFile reads the label database and returns a snapshot. A missing file is
// an empty book, matching the first-run behavior of the enrichment process.
func LoadFile(path string, exchanges []string) (*Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(nil, exchanges), nil
		}
		return nil, fmt.Errorf("read address book: %w", err)
	}

	var labels map[string]map[string]string
	if err := json.Unmarshal(data, &labels); err != nil {
		return nil, fmt.Errorf("parse address book: %w", err)
	}

	return New(labels, exchanges), nil
}

// SaveFile writes the label database. Used by the enrichment tooling, not by
// the monitoring cycle itself.
func SaveFile(path string, labels map[string]map[string]string) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create address book dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(labels, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal address book: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write address book tmp: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename address book: %w", err)
	}

	return nil
}
