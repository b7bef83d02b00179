package logging

import (
	"os"
	"testing"
)

func TestNewLogger_CreatesDirAndLogger(t *testing.T) {
	dir := t.TempDir()
	log, err := NewLogger(dir, "debug")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("log dir missing: %v", err)
	}

	log.Info("test_message_from_logging_test")
}

func TestNewLogger_BadLevelFallsBackToInfo(t *testing.T) {
	log, err := NewLogger(t.TempDir(), "not-a-level")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer func() { _ = log.Sync() }()
	if log.Core().Enabled(-1) { // -1 == debug
		t.Fatalf("expected debug to be disabled at fallback info level")
	}
}
