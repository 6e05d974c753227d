package restore

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"backupd/internal/config"
)

func setupExecutor(t *testing.T) (*Executor, string) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	stateDir := t.TempDir()
	configs := config.NewStore(filepath.Join(stateDir, "config.toml"), logger)

	cfg, err := configs.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if err := os.MkdirAll(cfg.BackupDestination, 0o755); err != nil {
		t.Fatalf("create destination: %v", err)
	}
	return New(configs, logger), cfg.BackupDestination
}

func TestPasteCopiesWholeTree(t *testing.T) {
	executor, dest := setupExecutor(t)
	nested := filepath.Join(dest, "var", "log")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(nested, "syslog"), []byte("entries"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	target := t.TempDir()
	if err := executor.Paste(target); err != nil {
		t.Fatalf("Paste: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(target, "var", "log", "syslog"))
	if err != nil {
		t.Fatalf("restored file missing: %v", err)
	}
	if string(data) != "entries" {
		t.Fatalf("unexpected content %q", data)
	}
	// Backup tree is untouched.
	if _, err := os.Stat(filepath.Join(nested, "syslog")); err != nil {
		t.Fatalf("backup tree modified: %v", err)
	}
}

func TestPasteRequiresExistingTarget(t *testing.T) {
	executor, _ := setupExecutor(t)
	if err := executor.Paste(filepath.Join(t.TempDir(), "ghost")); err == nil {
		t.Fatal("expected error for missing target")
	}
}

func TestPasteRequiresExistingDestination(t *testing.T) {
	executor, dest := setupExecutor(t)
	if err := os.RemoveAll(dest); err != nil {
		t.Fatalf("remove destination: %v", err)
	}
	if err := executor.Paste(t.TempDir()); err == nil {
		t.Fatal("expected error for missing backup destination")
	}
}
