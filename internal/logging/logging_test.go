package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLevelFromString(t *testing.T) {
	cases := map[string]slog.Level{
		"error":   slog.LevelError,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		" debug ": slog.LevelDebug,
		"":        slog.LevelInfo,
		"info":    slog.LevelInfo,
	}
	for in, want := range cases {
		if got := LevelFromString(in); got != want {
			t.Fatalf("level %q: got %v want %v", in, got, want)
		}
	}
}

func TestNewWithWriterFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "warn")
	l.Info("hidden")
	l.Warn("shown", "document_id", "d1")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "document_id=d1") {
		t.Fatalf("unexpected log output: %q", out)
	}
}
