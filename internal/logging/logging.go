package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu      sync.Mutex
	logFile *os.File
)

// Init routes the standard logrus logger to stdout and, when logPath is set,
// appends to that file as well.
func Init(logPath string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	var writers []io.Writer
	writers = append(writers, os.Stdout)

	if logPath != "" {
		if dir := filepath.Dir(logPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		logFile = file
		writers = append(writers, logFile)
	}

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetOutput(io.MultiWriter(writers...))
	return nil
}

// SetLevel parses a logrus level name ("debug", "info", ...) and applies it.
// An empty name keeps the current level.
func SetLevel(level string) error {
	level = strings.TrimSpace(level)
	if level == "" {
		return nil
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	return nil
}

// Close detaches and closes the log file opened by Init.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	logrus.SetOutput(os.Stderr)
	err := logFile.Close()
	logFile = nil
	return err
}

// LogEvent logs a formatted message at info level.
func LogEvent(format string, args ...any) {
	logrus.Info(fmt.Sprintf(format, args...))
}

// LogResult logs the summary of one finished benchmark.
func LogResult(id, tool, algorithm string, timings []float64, quality map[string][]float64) {
	fields := logrus.Fields{
		"id":        id,
		"tool":      valueOrUnknown(tool),
		"algorithm": valueOrUnknown(algorithm),
		"rounds":    len(timings),
	}
	if len(timings) > 0 {
		fields["min"] = slices.Min(timings)
	}
	logrus.WithFields(fields).Info("benchmark recorded " + formatQuality(quality))
}

func valueOrUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return "unknown"
	}
	return s
}

// formatQuality renders the mean of every metric as "name=value" pairs sorted
// by name.
func formatQuality(quality map[string][]float64) string {
	if len(quality) == 0 {
		return "quality={}"
	}
	names := make([]string, 0, len(quality))
	for name := range quality {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		values := quality[name]
		if len(values) == 0 {
			parts = append(parts, name+"=n/a")
			continue
		}
		var sum float64
		for _, v := range values {
			sum += v
		}
		parts = append(parts, name+"="+strconv.FormatFloat(sum/float64(len(values)), 'g', 6, 64))
	}
	return strings.Join(parts, " ")
}
