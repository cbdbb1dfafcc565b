package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestInit(t *testing.T) {
	defer logrus.SetOutput(os.Stderr)
	defer logrus.SetLevel(logrus.InfoLevel)

	dir := t.TempDir()
	if err := Init("debug", "text", dir); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if logrus.GetLevel() != logrus.DebugLevel {
		t.Errorf("expected debug level, got %s", logrus.GetLevel())
	}

	logrus.Info("hello")
	if _, err := os.Stat(filepath.Join(dir, "app.log")); err != nil {
		t.Errorf("expected log file to be created: %v", err)
	}
}

func TestInitRejectsBadValues(t *testing.T) {
	if err := Init("loud", "json", ""); err == nil {
		t.Error("expected error for unknown level")
	}
	if err := Init("info", "xml", ""); err == nil {
		t.Error("expected error for unknown format")
	}
}
