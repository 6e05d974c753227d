// Package migrate relocates the backup tree to a new destination and clears
// the current one.
package migrate

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"backupd/internal/checksum"
	"backupd/internal/config"
	"backupd/internal/fileutil"
	"backupd/internal/pathresolve"
)

// Migrator moves or clears the backup tree and resets checksum state so the
// next cycle repopulates the destination from scratch.
type Migrator struct {
	configs   *config.Store
	checksums *checksum.Store
	logger    *slog.Logger
}

// New returns a migrator over the given stores.
func New(configs *config.Store, checksums *checksum.Store, logger *slog.Logger) *Migrator {
	return &Migrator{
		configs:   configs,
		checksums: checksums,
		logger:    logger.With("component", "migrate"),
	}
}

// ChangeDestination moves every file from the current destination into
// newPath, deletes the old tree, resets the checksum map, and persists the
// new destination. A per-file move failure is logged and skipped; the old
// tree is still deleted afterwards, so partial completion is an observable
// outcome. The old destination must exist as a directory or the operation
// aborts with no side effects.
func (m *Migrator) ChangeDestination(newPath string) error {
	canonical, err := pathresolve.Canonical(newPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(canonical, 0o755); err != nil {
		return fmt.Errorf("create destination %s: %w", canonical, err)
	}

	cfg, err := m.configs.Load()
	if err != nil {
		return err
	}
	old := cfg.BackupDestination
	info, err := os.Stat(old)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("current backup destination %q does not exist as a directory", old)
	}
	oldCanonical, err := pathresolve.Canonical(old)
	if err != nil {
		return err
	}
	if oldCanonical == canonical {
		return fmt.Errorf("new destination %q is the current destination", canonical)
	}

	walkErr := filepath.WalkDir(old, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			m.logger.Warn("skipping unreadable entry during migration", "path", path, "error", err)
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(old, path)
		if err != nil {
			m.logger.Warn("skipping file during migration", "path", path, "error", err)
			return nil
		}
		target := filepath.Join(canonical, rel)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			m.logger.Warn("skipping file during migration", "path", path, "error", err)
			return nil
		}
		if err := fileutil.MoveFile(path, target); err != nil {
			m.logger.Warn("skipping file during migration", "path", path, "error", err)
			return nil
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("walk old destination: %w", walkErr)
	}

	// Anything that failed to move is lost with the old tree.
	if err := os.RemoveAll(old); err != nil {
		return fmt.Errorf("remove old destination %s: %w", old, err)
	}
	if err := m.checksums.Reset(); err != nil {
		return err
	}
	if err := m.configs.SetDestination(canonical); err != nil {
		return err
	}
	m.logger.Info("backup destination migrated", "from", old, "to", canonical)
	return nil
}

// ClearDestination deletes everything inside the backup destination and
// resets the checksum map. The destination directory itself remains.
func (m *Migrator) ClearDestination() error {
	cfg, err := m.configs.Load()
	if err != nil {
		return err
	}
	dest := cfg.BackupDestination
	info, err := os.Stat(dest)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("backup destination %q does not exist as a directory", dest)
	}

	entries, err := os.ReadDir(dest)
	if err != nil {
		return fmt.Errorf("read destination %s: %w", dest, err)
	}
	for _, entry := range entries {
		path := filepath.Join(dest, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			m.logger.Warn("failed to remove entry", "path", path, "error", err)
		}
	}
	if err := m.checksums.Reset(); err != nil {
		return err
	}
	m.logger.Info("backup destination cleared", "path", dest)
	return nil
}
