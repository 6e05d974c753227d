package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// ErrItemNotListed reports a remove for a path absent from items_to_backup.
var ErrItemNotListed = errors.New("path is not in the backup list")

// Store owns the configuration document on disk. Every operation performs a
// fresh load-modify-save cycle; there is no cached in-process state, so
// concurrent writers follow last-write-wins semantics.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore returns a store bound to the document at path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger.With("component", "config")}
}

// Path returns the location of the config document.
func (s *Store) Path() string { return s.path }

// Dir returns the directory holding the config document. The checksum
// document, log file, and history database live beside it.
func (s *Store) Dir() string { return filepath.Dir(s.path) }

// Load reads the configuration document. A missing document is synthesized
// from defaults and persisted before returning. A document that is not valid
// TOML is a fatal error. Fields with the wrong type or an invalid value are
// healed to their defaults, warned about, and the corrected document is
// written back, so any load can rewrite the file.
func (s *Store) Load() (*Config, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := Default(s.Dir())
		s.logger.Warn("config document missing; writing defaults", "path", s.path)
		if err := s.Save(&cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Decode into a plain document first so a wrong-typed field surfaces as a
	// healable correction rather than a fatal decode error.
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", s.path, err)
	}
	cfg, healed := decode(raw, s.Dir())
	healed = append(healed, cfg.heal(s.Dir())...)

	if len(healed) > 0 {
		for _, correction := range healed {
			s.logger.Warn("healed config field", "path", s.path, "correction", correction)
		}
		if err := s.Save(&cfg); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// Save writes the full document, replacing whatever is on disk.
func (s *Store) Save(cfg *Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(s.Dir(), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// AddItem canonicalizes path, verifies it exists on disk, and appends it to
// items_to_backup. Returns the canonical path and whether the document
// changed; adding an already-listed path is reported, not an error.
func (s *Store) AddItem(path string) (string, bool, error) {
	canonical, err := canonicalExisting(path)
	if err != nil {
		return "", false, err
	}

	cfg, err := s.Load()
	if err != nil {
		return "", false, err
	}
	for _, item := range cfg.ItemsToBackup {
		if item == canonical {
			return canonical, false, nil
		}
	}
	cfg.ItemsToBackup = append(cfg.ItemsToBackup, canonical)
	if err := s.Save(cfg); err != nil {
		return "", false, err
	}
	s.logger.Info("added backup item", "path", canonical)
	return canonical, true, nil
}

// RemoveItem canonicalizes path and removes it from items_to_backup.
func (s *Store) RemoveItem(path string) (string, error) {
	canonical, err := canonicalExisting(path)
	if err != nil {
		return "", err
	}

	cfg, err := s.Load()
	if err != nil {
		return "", err
	}
	kept := cfg.ItemsToBackup[:0]
	found := false
	for _, item := range cfg.ItemsToBackup {
		if item == canonical {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		return canonical, ErrItemNotListed
	}
	cfg.ItemsToBackup = kept
	if err := s.Save(cfg); err != nil {
		return "", err
	}
	s.logger.Info("removed backup item", "path", canonical)
	return canonical, nil
}

// SetInterval updates the seconds between backup cycles.
func (s *Store) SetInterval(seconds int) error {
	if seconds < 1 {
		return fmt.Errorf("interval must be a positive number of seconds, got %d", seconds)
	}
	cfg, err := s.Load()
	if err != nil {
		return err
	}
	cfg.Interval = seconds
	if err := s.Save(cfg); err != nil {
		return err
	}
	s.logger.Info("updated backup interval", "seconds", seconds)
	return nil
}

// SetDestination records a new backup destination. The directory itself is
// prepared by the destination migrator, not here.
func (s *Store) SetDestination(path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("backup destination must be an absolute path, got %q", path)
	}
	cfg, err := s.Load()
	if err != nil {
		return err
	}
	cfg.BackupDestination = filepath.Clean(path)
	if err := s.Save(cfg); err != nil {
		return err
	}
	s.logger.Info("updated backup destination", "path", cfg.BackupDestination)
	return nil
}

// canonicalExisting resolves path to a canonical absolute path and requires
// it to exist on disk.
func canonicalExisting(path string) (string, error) {
	expanded, err := ExpandPath(path)
	if err != nil {
		return "", err
	}
	canonical, err := filepath.EvalSymlinks(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("path %q does not exist", expanded)
		}
		return "", fmt.Errorf("resolve path %q: %w", expanded, err)
	}
	return canonical, nil
}
