package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLevelFromString(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"error":   slog.LevelError,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"info":    slog.LevelInfo,
		"":        slog.LevelDebug,
		"trace":   slog.LevelDebug,
	}
	for in, want := range cases {
		if got := levelFromString(in); got != want {
			t.Fatalf("levelFromString(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestOpenAppendsToDailyFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	day := time.Date(2025, time.March, 4, 10, 0, 0, 0, time.UTC)

	for _, msg := range []string{"first run", "second run"} {
		logger, closeFn, err := Open("info", dir, day)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		logger.Info(msg)
		logger.Debug("hidden")
		if err := closeFn(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}

	raw, err := os.ReadFile(filepath.Join(dir, "2025-03-04.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	content := string(raw)
	if !strings.Contains(content, "first run") || !strings.Contains(content, "second run") {
		t.Fatalf("log file lost entries: %q", content)
	}
	if strings.Contains(content, "hidden") {
		t.Fatalf("debug entry written at info level: %q", content)
	}
}

func TestOpenWithoutDir(t *testing.T) {
	t.Parallel()

	logger, closeFn, err := Open("error", "", time.Now())
	if err != nil || logger == nil {
		t.Fatalf("Open without dir: %v", err)
	}
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
