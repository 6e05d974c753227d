package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConsoleFormatIncludesComponentAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "console", Console: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	logger.With("component", "engine").Info("backed up file", "path", "/etc/hosts", "bytes", 42)

	line := buf.String()
	if !strings.Contains(line, "INFO engine: backed up file") {
		t.Fatalf("unexpected line %q", line)
	}
	if !strings.Contains(line, "path=/etc/hosts") || !strings.Contains(line, "bytes=42") {
		t.Fatalf("attrs missing from %q", line)
	}
}

func TestConsoleQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Console: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Warn("healed config field", "correction", "reset to default value")
	if !strings.Contains(buf.String(), `correction="reset to default value"`) {
		t.Fatalf("value not quoted: %q", buf.String())
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "json", Console: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Debug("cycle complete", "copied", 3)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v (%q)", err, buf.String())
	}
	if record["msg"] != "cycle complete" {
		t.Fatalf("unexpected msg %v", record["msg"])
	}
	if record["level"] != "debug" {
		t.Fatalf("unexpected level %v", record["level"])
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("timestamp key missing: %v", record)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Console: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("quiet")
	logger.Warn("loud")
	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Fatalf("info leaked through warn level: %q", out)
	}
	if !strings.Contains(out, "loud") {
		t.Fatalf("warn suppressed: %q", out)
	}
}

func TestFileOutputAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "backupd.log")
	logger, err := New(Options{Console: nil, FilePath: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Info("first")

	again, err := New(Options{Console: nil, FilePath: path})
	if err != nil {
		t.Fatalf("New again: %v", err)
	}
	again.Info("second")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "first") || !strings.Contains(string(data), "second") {
		t.Fatalf("log file missing entries: %q", data)
	}
}

func TestRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
