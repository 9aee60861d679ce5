package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Format: "json", Output: &buf, Component: "indexer"})

	log.Info().Msg("hidden")
	log.Warn().Str("file", "A.java").Msg("skipped")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("invalid JSON log line: %v", err)
	}
	if entry["level"] != "warn" || entry["component"] != "indexer" || entry["file"] != "A.java" {
		t.Errorf("entry = %v", entry)
	}
}

func TestNewConsoleAndLevelFallback(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "nonsense", Format: "console", Output: &buf})

	log.Debug().Msg("not shown")
	log.Info().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "not shown") {
		t.Error("debug line should be filtered at the fallback info level")
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("info line missing: %q", out)
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: "debug", Format: "json", Output: &buf})
	l := Component(base, "resolver")
	l.Debug().Msg("x")
	if !strings.Contains(buf.String(), `"component":"resolver"`) {
		t.Errorf("missing component field: %s", buf.String())
	}
}
