package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestFileLoggerWritesEntry(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "test.log")

	l, err := NewFileLogger(&Config{
		LogFilePath: logPath,
		MaxFileSize: 1024 * 1024,
		MaxBackups:  1,
		Level:       LevelDebug,
	})
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	defer l.Close()

	l.Info("presentation loaded", String("path", "deck.pptx"), Int("slides", 12))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	content := string(data)

	if !strings.Contains(content, "[INFO]") {
		t.Errorf("log entry missing level: %q", content)
	}
	if !strings.Contains(content, "presentation loaded") {
		t.Errorf("log entry missing message: %q", content)
	}
	if !strings.Contains(content, "path=deck.pptx") || !strings.Contains(content, "slides=12") {
		t.Errorf("log entry missing fields: %q", content)
	}
}

func TestFileLoggerLevelFilter(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "test.log")

	l, err := NewFileLogger(&Config{
		LogFilePath: logPath,
		MaxFileSize: 1024 * 1024,
		MaxBackups:  1,
		Level:       LevelWarn,
	})
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	defer l.Close()

	l.Debug("should be filtered")
	l.Info("should also be filtered")
	l.Warn("should appear")

	data, _ := os.ReadFile(logPath)
	content := string(data)

	if strings.Contains(content, "filtered") {
		t.Errorf("filtered levels written: %q", content)
	}
	if !strings.Contains(content, "should appear") {
		t.Errorf("warn entry missing: %q", content)
	}
}

func TestFileLoggerRotation(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "rotate.log")

	l, err := NewFileLogger(&Config{
		LogFilePath: logPath,
		MaxFileSize: 200,
		MaxBackups:  2,
		Level:       LevelDebug,
	})
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	defer l.Close()

	for i := 0; i < 20; i++ {
		l.Info("filler entry to force a rotation before too long")
	}

	if _, err := os.Stat(logPath + ".1"); err != nil {
		t.Errorf("expected at least one rotated backup file: %v", err)
	}
}

func TestGlobalLoggerFallsBackToNoop(t *testing.T) {
	SetGlobalLogger(nil)

	// Must not panic even though nothing is initialized.
	Debug("noop")
	Info("noop")
	Warn("noop")
	Error("noop", nil)
}

func TestErrField(t *testing.T) {
	f := Err(nil)
	if f.Key != "error" || f.Value != nil {
		t.Errorf("Err(nil) = %+v", f)
	}

	f = Err(os.ErrNotExist)
	if f.Value != os.ErrNotExist.Error() {
		t.Errorf("Err(os.ErrNotExist).Value = %v", f.Value)
	}
}
