package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func testConfigPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "config.toml")
}

func TestListShowsEmptyConfiguration(t *testing.T) {
	configPath := testConfigPath(t)
	out, err := runCLI(t, configPath, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "No paths are being backed up") {
		t.Fatalf("unexpected list output: %q", out)
	}
	if !strings.Contains(out, "Interval:    300s") {
		t.Fatalf("default interval missing: %q", out)
	}
}

func TestAddListRemoveRoundTrip(t *testing.T) {
	configPath := testConfigPath(t)
	watched := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(watched, []byte("n"), 0o644); err != nil {
		t.Fatalf("write watched file: %v", err)
	}

	out, err := runCLI(t, configPath, "add", watched)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "Added") {
		t.Fatalf("unexpected add output: %q", out)
	}

	out, err = runCLI(t, configPath, "add", watched)
	if err != nil {
		t.Fatalf("repeat add: %v", err)
	}
	if !strings.Contains(out, "already in the backup list") {
		t.Fatalf("unexpected repeat add output: %q", out)
	}

	out, err = runCLI(t, configPath, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "notes.txt") {
		t.Fatalf("added path missing from list: %q", out)
	}

	out, err = runCLI(t, configPath, "remove", watched)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !strings.Contains(out, "Removed") {
		t.Fatalf("unexpected remove output: %q", out)
	}

	if _, err = runCLI(t, configPath, "remove", watched); err == nil {
		t.Fatal("expected error removing unlisted path")
	}
}

func TestAddRejectsMissingPath(t *testing.T) {
	configPath := testConfigPath(t)
	if _, err := runCLI(t, configPath, "add", filepath.Join(t.TempDir(), "ghost")); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestSetIntervalCommand(t *testing.T) {
	configPath := testConfigPath(t)

	out, err := runCLI(t, configPath, "set-interval", "120")
	if err != nil {
		t.Fatalf("set-interval: %v", err)
	}
	if !strings.Contains(out, "Backup interval set to 120s") {
		t.Fatalf("unexpected output: %q", out)
	}

	if _, err := runCLI(t, configPath, "set-interval", "0"); err == nil {
		t.Fatal("expected rejection of zero interval")
	}
	if _, err := runCLI(t, configPath, "set-interval", "soon"); err == nil {
		t.Fatal("expected rejection of non-numeric interval")
	}
}

func TestSetIntervalUnderscoreAlias(t *testing.T) {
	configPath := testConfigPath(t)
	out, err := runCLI(t, configPath, "set_interval", "90")
	if err != nil {
		t.Fatalf("set_interval: %v", err)
	}
	if !strings.Contains(out, "Backup interval set to 90s") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestClearDestinationCommand(t *testing.T) {
	configPath := testConfigPath(t)
	dest := filepath.Join(filepath.Dir(configPath), "backup")
	if err := os.MkdirAll(dest, 0o755); err != nil {
		t.Fatalf("create destination: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dest, "stale.txt"), []byte("s"), 0o644); err != nil {
		t.Fatalf("seed destination: %v", err)
	}

	out, err := runCLI(t, configPath, "clear-destination")
	if err != nil {
		t.Fatalf("clear-destination: %v", err)
	}
	if !strings.Contains(out, "Backup destination cleared") {
		t.Fatalf("unexpected output: %q", out)
	}
	entries, err := os.ReadDir(dest)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("destination not emptied: %v", entries)
	}
}

func TestPasteCommand(t *testing.T) {
	configPath := testConfigPath(t)
	dest := filepath.Join(filepath.Dir(configPath), "backup")
	if err := os.MkdirAll(dest, 0o755); err != nil {
		t.Fatalf("create destination: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dest, "saved.txt"), []byte("payload"), 0o644); err != nil {
		t.Fatalf("seed destination: %v", err)
	}

	target := t.TempDir()
	out, err := runCLI(t, configPath, "paste", target)
	if err != nil {
		t.Fatalf("paste: %v", err)
	}
	if !strings.Contains(out, "Restored backup tree") {
		t.Fatalf("unexpected output: %q", out)
	}
	data, err := os.ReadFile(filepath.Join(target, "saved.txt"))
	if err != nil {
		t.Fatalf("restored file missing: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestLogsCommand(t *testing.T) {
	configPath := testConfigPath(t)
	logPath := filepath.Join(filepath.Dir(configPath), "backupd.log")
	if err := os.WriteFile(logPath, []byte("first\nsecond\nthird\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	out, err := runCLI(t, configPath, "logs", "--lines", "2")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if strings.Contains(out, "first") {
		t.Fatalf("tail included trimmed line: %q", out)
	}
	if !strings.Contains(out, "second") || !strings.Contains(out, "third") {
		t.Fatalf("unexpected logs output: %q", out)
	}
}

func TestLogsCommandNoFile(t *testing.T) {
	configPath := testConfigPath(t)
	out, err := runCLI(t, configPath, "logs")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if !strings.Contains(out, "No log entries yet") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestHistoryCommandEmpty(t *testing.T) {
	configPath := testConfigPath(t)
	out, err := runCLI(t, configPath, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No backup cycles recorded yet") {
		t.Fatalf("unexpected output: %q", out)
	}
}
