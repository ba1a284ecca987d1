package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandlerFormatsRecord(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("command executed",
		String(FieldComponent, "queue"),
		String(FieldCommandKind, "REQUEST_PAUSE"),
		Int("attempts", 1),
	)

	out := buf.String()
	if !strings.Contains(out, "INFO") {
		t.Errorf("missing level label: %q", out)
	}
	if !strings.Contains(out, "[queue]") {
		t.Errorf("missing component prefix: %q", out)
	}
	if !strings.Contains(out, "command_kind=REQUEST_PAUSE") {
		t.Errorf("missing attr: %q", out)
	}
	if !strings.Contains(out, "attempts=1") {
		t.Errorf("missing int attr: %q", out)
	}
}

func TestConsoleHandlerLevelGate(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("quiet")
	if buf.Len() != 0 {
		t.Errorf("info record emitted below level gate: %q", buf.String())
	}
	logger.Warn("loud")
	if !strings.Contains(buf.String(), "loud") {
		t.Errorf("warn record missing: %q", buf.String())
	}
}

func TestJSONHandlerKeys(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newJSONHandler(&buf, lvl))

	logger.Info("snapshot published", String(FieldSessionID, "s-1"))

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	if record["msg"] != "snapshot published" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record["level"] != "info" {
		t.Errorf("level = %v", record["level"])
	}
	if record["session_id"] != "s-1" {
		t.Errorf("session_id = %v", record["session_id"])
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	ctx := WithSessionID(context.Background(), "s-42")
	ctx = WithCommand(ctx, "c-7", "SHOW_AGENT")

	WithContext(ctx, logger).Info("dispatched")

	out := buf.String()
	for _, want := range []string{"session_id=s-42", "command_id=c-7", "command_kind=SHOW_AGENT"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewComponentLoggerNilBase(t *testing.T) {
	logger := NewComponentLogger(nil, "actuator")
	logger.Info("must not panic")
}
