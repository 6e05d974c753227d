// Package checksum persists the map from source file path to last-known
// content digest that drives change detection.
package checksum

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

// Map associates canonical absolute source paths with hex digests.
type Map map[string]string

// Get returns the stored digest for path. Unseen paths yield the empty
// string, which never equals a real hex digest, so an unseen file always
// compares as changed.
func (m Map) Get(path string) string {
	return m[path]
}

// Store owns the checksum document on disk. The document is loaded fresh at
// the start of each cycle and overwritten whole once at the end.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore returns a store bound to the document at path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger.With("component", "checksum")}
}

// Path returns the location of the checksum document.
func (s *Store) Path() string { return s.path }

// Load reads the checksum document. A missing document is initialized to an
// empty map and persisted. An unreadable document is a fatal condition for
// the caller; no partial recovery is attempted.
func (s *Store) Load() (Map, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("checksum document missing; initializing empty map", "path", s.path)
		m := Map{}
		if err := s.Save(m); err != nil {
			return nil, err
		}
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read checksums: %w", err)
	}

	var m Map
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse checksums %s: %w", s.path, err)
	}
	if m == nil {
		m = Map{}
	}
	return m, nil
}

// Save overwrites the full document.
func (s *Store) Save(m Map) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode checksums: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create checksum directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write checksums: %w", err)
	}
	return nil
}

// Reset replaces the document with an empty map.
func (s *Store) Reset() error {
	s.logger.Info("resetting checksum map", "path", s.path)
	return s.Save(Map{})
}
