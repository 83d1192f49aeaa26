package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetLevel(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		expected logrus.Level
	}{
		{"debug", "debug", logrus.DebugLevel},
		{"info", "info", logrus.InfoLevel},
		{"warn", "warn", logrus.WarnLevel},
		{"error", "error", logrus.ErrorLevel},
		{"unknown falls back to info", "verbose", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetLevel(tt.level)
			if Logger.GetLevel() != tt.expected {
				t.Errorf("expected level %v, got %v", tt.expected, Logger.GetLevel())
			}
		})
	}

	// Restore default
	SetLevel("info")
}

func TestInit_CreatesLogFile(t *testing.T) {
	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "logs", "camsight.log")

	if err := Init("debug", logFile); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer Logger.SetOutput(os.Stderr)

	Info("hello from test")

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello from test") {
		t.Error("log file does not contain logged message")
	}
}

func TestInit_NoFile(t *testing.T) {
	if err := Init("info", ""); err != nil {
		t.Errorf("Init without file should not fail: %v", err)
	}
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	Logger.SetOutput(&buf)
	defer Logger.SetOutput(os.Stderr)

	Component("camera").Info("opened device")

	out := buf.String()
	if !strings.Contains(out, "camera") {
		t.Errorf("expected component field in output, got: %s", out)
	}
	if !strings.Contains(out, "opened device") {
		t.Errorf("expected message in output, got: %s", out)
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	Logger.SetOutput(&buf)
	defer Logger.SetOutput(os.Stderr)

	WithFields(Fields{"demo": "handdist", "frame": 42}).Info("processed")

	out := buf.String()
	if !strings.Contains(out, "handdist") {
		t.Errorf("expected field value in output, got: %s", out)
	}
}
