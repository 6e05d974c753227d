// Package engine runs one backup cycle: resolve the watch list, diff file
// digests against the checksum map, and mirror changed files into the
// backup destination.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"backupd/internal/checksum"
	"backupd/internal/config"
	"backupd/internal/fileutil"
	"backupd/internal/pathresolve"
)

// Summary reports what a single cycle did.
type Summary struct {
	FilesSeen    int
	FilesCopied  int
	FilesSkipped int
	BytesCopied  int64
}

// Engine performs scan/diff/copy cycles. Per-file failures are logged and
// skipped; the surrounding batch always continues.
type Engine struct {
	checksums *checksum.Store
	resolver  *pathresolve.Resolver
	logger    *slog.Logger
}

// New returns an engine using the given stores.
func New(checksums *checksum.Store, resolver *pathresolve.Resolver, logger *slog.Logger) *Engine {
	return &Engine{
		checksums: checksums,
		resolver:  resolver,
		logger:    logger.With("component", "engine"),
	}
}

// RunCycle executes one cycle against cfg. The updated checksum map is
// persisted exactly once, after the full file list has been processed; a
// crash mid-batch only repeats work on the next cycle, it never loses data.
// Cancellation is observed between files, and the map accumulated so far is
// persisted before returning.
func (e *Engine) RunCycle(ctx context.Context, cfg *config.Config) (Summary, error) {
	var sum Summary

	files, err := e.resolver.Resolve(cfg.ItemsToBackup)
	if err != nil {
		return sum, err
	}
	sums, err := e.checksums.Load()
	if err != nil {
		return sum, err
	}

	for _, file := range files {
		if ctx.Err() != nil {
			if saveErr := e.checksums.Save(sums); saveErr != nil {
				e.logger.Error("persist checksums on cancel", "error", saveErr)
			}
			return sum, ctx.Err()
		}
		sum.FilesSeen++

		digest, err := fileutil.HashFile(file)
		if err != nil {
			e.logger.Warn("skipping unreadable file", "path", file, "error", err)
			sum.FilesSkipped++
			continue
		}
		if digest == sums.Get(file) {
			continue
		}

		copied, err := e.copyChanged(file, cfg.BackupDestination)
		if err != nil {
			e.logger.Warn("skipping file", "path", file, "error", err)
			sum.FilesSkipped++
			continue
		}
		sums[file] = digest
		sum.FilesCopied++
		sum.BytesCopied += copied
		e.logger.Info("backed up file", "path", file, "bytes", copied)
	}

	if err := e.checksums.Save(sums); err != nil {
		return sum, err
	}
	return sum, nil
}

// copyChanged mirrors file under the destination root and returns the bytes
// written.
func (e *Engine) copyChanged(file, destRoot string) (int64, error) {
	dst := DestinationPath(destRoot, file)
	if info, err := os.Stat(dst); err == nil && info.IsDir() {
		return 0, errors.New("destination exists as a directory")
	}
	if fileutil.SameFile(file, dst) {
		return 0, errors.New("source and destination are the same file")
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, err
	}
	info, err := os.Stat(file)
	if err != nil {
		return 0, err
	}
	if err := fileutil.CopyFile(file, dst); err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// DestinationPath mirrors src's absolute path, minus its root separator,
// under the backup destination root.
func DestinationPath(destRoot, src string) string {
	rel, err := filepath.Rel(string(filepath.Separator), src)
	if err != nil {
		rel = filepath.Base(src)
	}
	return filepath.Join(destRoot, rel)
}
