package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWithWriter_JSONOutsideLocal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewWithWriter(&buf, "production", " DEBUG ")
	if err != nil {
		t.Fatalf("NewWithWriter() error = %v", err)
	}
	if logger.GetLevel() != zerolog.DebugLevel {
		t.Fatalf("expected debug level, got %s", logger.GetLevel())
	}

	componentLogger := Component(logger, "gateway")
	componentLogger.Debug().Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["service"] != "transpop" || entry["component"] != "gateway" || entry["message"] != "hello" {
		t.Fatalf("unexpected log entry: %v", entry)
	}
}

func TestNewWithWriter_ConsoleInLocal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewWithWriter(&buf, "local", "info")
	if err != nil {
		t.Fatalf("NewWithWriter() error = %v", err)
	}
	logger.Info().Msg("started")
	logger.Debug().Msg("hidden")

	out := buf.String()
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Fatalf("expected console output, got %q", out)
	}
	if !strings.Contains(out, "started") || strings.Contains(out, "hidden") {
		t.Fatalf("unexpected console output %q", out)
	}
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	if _, err := New("local", "loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
