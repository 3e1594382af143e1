package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestInitAndLoggingToFile(t *testing.T) {
	tempDir := t.TempDir()
	logPath := filepath.Join(tempDir, "nested", "redqueen.log")

	if err := Init(logPath); err != nil {
		t.Fatalf("Init error: %v", err)
	}
	t.Cleanup(func() {
		_ = Close()
	})

	LogEvent("hello %s", "world")
	LogResult("compression/bench_zstd[best-text]", "zstd", "best", []float64{0.2, 0.1}, map[string][]float64{"ratio": {3, 5}})
	_ = Close()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "hello world") {
		t.Fatalf("expected LogEvent content, got: %s", content)
	}
	if !strings.Contains(content, "ratio=4") {
		t.Fatalf("expected quality summary, got: %s", content)
	}
	if !strings.Contains(content, "rounds=2") {
		t.Fatalf("expected rounds field, got: %s", content)
	}
}

func TestFormatQualityVariants(t *testing.T) {
	if got := formatQuality(nil); got != "quality={}" {
		t.Fatalf("nil quality: %s", got)
	}
	got := formatQuality(map[string][]float64{"ratio": {2, 4}, "bytes": {10}, "empty": nil})
	if got != "bytes=10 empty=n/a ratio=3" {
		t.Fatalf("unexpected format: %s", got)
	}
}

func TestSetLevel(t *testing.T) {
	previous := logrus.GetLevel()
	t.Cleanup(func() { logrus.SetLevel(previous) })

	if err := SetLevel("debug"); err != nil {
		t.Fatalf("SetLevel: %v", err)
	}
	if logrus.GetLevel() != logrus.DebugLevel {
		t.Fatalf("expected debug level, got %s", logrus.GetLevel())
	}
	if err := SetLevel(""); err != nil {
		t.Fatalf("empty level: %v", err)
	}
	if logrus.GetLevel() != logrus.DebugLevel {
		t.Fatalf("empty level changed the level to %s", logrus.GetLevel())
	}
	if err := SetLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestCloseWithoutFile(t *testing.T) {
	var buf bytes.Buffer
	logrus.SetOutput(&buf)
	t.Cleanup(func() { logrus.SetOutput(os.Stderr) })

	if err := Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	LogEvent("still here")
	if !strings.Contains(buf.String(), "still here") {
		t.Fatalf("expected output to stay on the current writer, got: %s", buf.String())
	}
}
