// Package daemon owns the backup process lifecycle: single-instance
// enforcement, the pid marker, and the scan/sleep loop driving the engine.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/gofrs/flock"

	"backupd/internal/config"
	"backupd/internal/engine"
	"backupd/internal/history"
)

// ErrAlreadyRunning indicates another daemon instance holds the lock.
var ErrAlreadyRunning = errors.New("another backupd instance is already running")

// Daemon runs the backup loop. A flock held for the daemon's lifetime closes
// the start-start race; the pid marker exists so the CLI can signal the
// process.
type Daemon struct {
	configs  *config.Store
	engine   *engine.Engine
	history  *history.Store
	logger   *slog.Logger
	lock     *flock.Flock
	lockPath string
	pidPath  string
}

// New constructs a daemon. runtimeDir holds the lock file and pid marker;
// production passes the OS temp directory.
func New(configs *config.Store, eng *engine.Engine, hist *history.Store, logger *slog.Logger, lockPath, pidPath string) *Daemon {
	return &Daemon{
		configs:  configs,
		engine:   eng,
		history:  hist,
		logger:   logger.With("component", "daemon"),
		lock:     flock.New(lockPath),
		lockPath: lockPath,
		pidPath:  pidPath,
	}
}

// Run executes the daemon loop until ctx is cancelled. Each iteration
// reloads the configuration, runs one engine cycle, records it in the
// history journal, and sleeps for the configured interval. The pid marker is
// removed and the lock released on every exit path.
func (d *Daemon) Run(ctx context.Context) error {
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", d.lockPath, err)
	}
	if !ok {
		return ErrAlreadyRunning
	}
	defer func() {
		if err := d.lock.Unlock(); err != nil {
			d.logger.Warn("release daemon lock", "error", err)
		}
	}()

	if err := os.WriteFile(d.pidPath, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		return fmt.Errorf("write pid marker %s: %w", d.pidPath, err)
	}
	defer func() {
		if err := os.Remove(d.pidPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			d.logger.Warn("remove pid marker", "error", err)
		}
	}()

	d.logger.Info("backup daemon started", "pid", os.Getpid(), "lock", d.lockPath)

	for {
		cfg, err := d.configs.Load()
		if err != nil {
			return err
		}

		cycle := d.beginCycle(ctx)
		sum, err := d.engine.RunCycle(ctx, cfg)
		d.finishCycle(cycle, sum, err)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				d.logger.Info("backup daemon stopping")
				return nil
			}
			return err
		}

		d.logger.Info("backup cycle complete",
			"seen", sum.FilesSeen,
			"copied", sum.FilesCopied,
			"skipped", sum.FilesSkipped,
			"bytes", sum.BytesCopied,
			"next_in_seconds", cfg.Interval,
		)

		select {
		case <-ctx.Done():
			d.logger.Info("backup daemon stopping")
			return nil
		case <-time.After(time.Duration(cfg.Interval) * time.Second):
		}
	}
}

// beginCycle opens a journal row. Journal failures never fail a cycle.
func (d *Daemon) beginCycle(ctx context.Context) *history.Cycle {
	if d.history == nil {
		return nil
	}
	cycle, err := d.history.Begin(ctx)
	if err != nil {
		d.logger.Warn("record cycle start", "error", err)
		return nil
	}
	return cycle
}

func (d *Daemon) finishCycle(cycle *history.Cycle, sum engine.Summary, runErr error) {
	if cycle == nil || d.history == nil {
		return
	}
	cycle.FilesSeen = sum.FilesSeen
	cycle.FilesCopied = sum.FilesCopied
	cycle.FilesSkipped = sum.FilesSkipped
	cycle.BytesCopied = sum.BytesCopied
	if runErr != nil {
		cycle.ErrorMessage = runErr.Error()
	}
	// The run context may already be cancelled; the journal write still goes
	// through on its own context.
	if err := d.history.Finish(context.Background(), cycle); err != nil {
		d.logger.Warn("record cycle finish", "error", err)
	}
}
