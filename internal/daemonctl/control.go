// Package daemonctl controls the daemon from the CLI process: detached
// launch, pid-marker inspection, and signal delivery.
package daemonctl

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// ErrAlreadyRunning indicates the pid marker reports a running daemon.
var ErrAlreadyRunning = errors.New("daemon already running")

// ErrNotRunning indicates no pid marker was found.
var ErrNotRunning = errors.New("daemon is not running")

// ErrMarkerInvalid indicates the pid marker holds something other than a pid.
// Start and Stop treat such a marker as stale residue and remove it.
var ErrMarkerInvalid = errors.New("pid marker is unreadable")

// PIDFilePath returns the pid-marker location in the shared OS temp dir.
func PIDFilePath() string {
	return filepath.Join(os.TempDir(), "backupd.pid")
}

// LockFilePath returns the daemon lock-file location.
func LockFilePath() string {
	return filepath.Join(os.TempDir(), "backupd.lock")
}

// ReadPID parses the pid marker at path. A missing marker yields
// ErrNotRunning; an empty marker reads as pid 0 with no error.
func ReadPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, ErrNotRunning
	}
	if err != nil {
		return 0, fmt.Errorf("read pid marker %s: %w", path, err)
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return 0, nil
	}
	pid, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("%w: %s holds %q", ErrMarkerInvalid, path, trimmed)
	}
	return pid, nil
}

// clearMarker removes the pid marker, tolerating a concurrent removal.
func clearMarker(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove pid marker %s: %w", path, err)
	}
	return nil
}

// Start launches a detached daemon process by re-executing the current
// binary's run command. Starting is refused while the pid marker holds a
// value.
func Start(executablePath, configPath string) error {
	pid, err := ReadPID(PIDFilePath())
	switch {
	case err == nil && pid > 0:
		return fmt.Errorf("%w (pid %d)", ErrAlreadyRunning, pid)
	case errors.Is(err, ErrMarkerInvalid):
		if err := clearMarker(PIDFilePath()); err != nil {
			return err
		}
	case err != nil && !errors.Is(err, ErrNotRunning):
		return err
	}

	if strings.TrimSpace(executablePath) == "" {
		return errors.New("resolve executable: executable path is empty")
	}
	args := []string{"run"}
	if cfg := strings.TrimSpace(configPath); cfg != "" {
		args = append(args, "--config", cfg)
	}

	proc := exec.Command(executablePath, args...)
	proc.Stdin = nil
	proc.Stdout = nil
	proc.Stderr = nil
	if err := proc.Start(); err != nil {
		return fmt.Errorf("launch daemon: %w", err)
	}
	return proc.Process.Release()
}

// Stop signals the daemon recorded in the pid marker with SIGTERM and
// removes the marker regardless of whether delivery succeeded. A missing
// marker yields ErrNotRunning so callers can warn instead of fail; an
// unparseable marker is removed and reported as ErrMarkerInvalid.
func Stop() (int, error) {
	pidPath := PIDFilePath()
	pid, err := ReadPID(pidPath)
	if errors.Is(err, ErrMarkerInvalid) {
		if removeErr := clearMarker(pidPath); removeErr != nil {
			return 0, removeErr
		}
		return 0, err
	}
	if err != nil {
		return 0, err
	}

	var signalErr error
	if pid > 0 {
		signalErr = unix.Kill(pid, unix.SIGTERM)
	}
	if err := clearMarker(pidPath); err != nil {
		return pid, err
	}
	if signalErr != nil {
		return pid, fmt.Errorf("signal daemon pid %d: %w", pid, signalErr)
	}
	return pid, nil
}
