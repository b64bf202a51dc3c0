package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestInfoWritesJSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Info("record.admitted", map[string]any{"name": "Claudia", "age": 42})

	var payload map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &payload); err != nil {
		t.Fatalf("decode log json: %v (%q)", err, buf.String())
	}
	for _, key := range []string{"ts", "level", "msg", "name", "age"} {
		if _, ok := payload[key]; !ok {
			t.Fatalf("missing log field: %s", key)
		}
	}
	if payload["level"] != "info" {
		t.Fatalf("unexpected level: %v", payload["level"])
	}
	if payload["msg"] != "record.admitted" {
		t.Fatalf("unexpected msg: %v", payload["msg"])
	}
}

func TestErrorFieldRendersMessage(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()

	Error("store.failed", map[string]any{"error": errors.New("boom")})

	if !strings.Contains(buf.String(), "boom") {
		t.Fatalf("expected error text in log line, got %q", buf.String())
	}
}

func TestInitLevelFiltersLowerLevels(t *testing.T) {
	var buf bytes.Buffer
	restore := SetOutput(&buf)
	defer restore()
	Init(Config{Level: "error"})
	defer Init(Config{})

	Info("dropped", nil)
	Warn("dropped too", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected no output below error level, got %q", buf.String())
	}
	Error("kept", nil)
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("expected error line, got %q", buf.String())
	}
}
