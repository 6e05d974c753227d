// Package restore copies the backup tree out into an arbitrary target
// directory.
package restore

import (
	"fmt"
	"log/slog"
	"os"

	"backupd/internal/config"
	"backupd/internal/fileutil"
	"backupd/internal/pathresolve"
)

// Executor performs whole-tree restores. The backup tree is read-only from
// its perspective; files at the target are overwritten.
type Executor struct {
	configs *config.Store
	logger  *slog.Logger
}

// New returns an executor over the given config store.
func New(configs *config.Store, logger *slog.Logger) *Executor {
	return &Executor{configs: configs, logger: logger.With("component", "restore")}
}

// Paste copies every file under the backup destination into targetDir,
// preserving relative structure. The target must already exist as a
// directory. There is no selective restore; the whole tree is copied.
func (e *Executor) Paste(targetDir string) error {
	canonical, err := pathresolve.Canonical(targetDir)
	if err != nil {
		return err
	}
	info, err := os.Stat(canonical)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("target %q does not exist as a directory", canonical)
	}

	cfg, err := e.configs.Load()
	if err != nil {
		return err
	}
	source, err := os.Stat(cfg.BackupDestination)
	if err != nil || !source.IsDir() {
		return fmt.Errorf("backup destination %q does not exist as a directory", cfg.BackupDestination)
	}

	if err := fileutil.CopyTree(cfg.BackupDestination, canonical); err != nil {
		return fmt.Errorf("restore backup tree: %w", err)
	}
	e.logger.Info("restored backup tree", "from", cfg.BackupDestination, "to", canonical)
	return nil
}
