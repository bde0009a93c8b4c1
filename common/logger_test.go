package common

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("LogLevel.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := &AppLogger{level: LevelWarn}
	logger.SetOutput(&buf)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	output := buf.String()

	if strings.Contains(output, "debug message") {
		t.Error("debug message should have been filtered out")
	}
	if strings.Contains(output, "info message") {
		t.Error("info message should have been filtered out")
	}
	if !strings.Contains(output, "warn message") {
		t.Error("warn message should have been logged")
	}
	if !strings.Contains(output, "error message") {
		t.Error("error message should have been logged")
	}
}

func TestLoggerFormatting(t *testing.T) {
	var buf bytes.Buffer
	logger := &AppLogger{level: LevelDebug}
	logger.SetOutput(&buf)

	logger.Info("connecting to %s as %d", "us1234", 42)

	output := buf.String()
	if !strings.Contains(output, "connecting to us1234 as 42") {
		t.Errorf("formatted message missing from output: %q", output)
	}
	if !strings.Contains(output, "[INFO]") {
		t.Errorf("level tag missing from output: %q", output)
	}
}

func TestLoggerCallerInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := &AppLogger{level: LevelDebug}
	logger.SetOutput(&buf)

	logger.Info("caller test")

	if !strings.Contains(buf.String(), "logger_test.go") {
		t.Errorf("expected caller file in output, got %q", buf.String())
	}
}

func TestIsSymlinkMissingPath(t *testing.T) {
	if isSymlink("/nonexistent/path/that/does/not/exist") {
		t.Error("isSymlink should return false for a missing path")
	}
}
