// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mwiater/redqueen/internal/fixture"
	"go.yaml.in/yaml/v3"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// legacyConfigPath is the working-directory fallback for the configuration file.
	legacyConfigPath = "redqueen.json"
	// defaultResultsDir is where result files are written when the config omits it.
	defaultResultsDir = "redqueenData/results"
	// defaultReportPath is where the HTML report is written when the config omits it.
	defaultReportPath = "redqueenData/reports/report.html"
	defaultLogFile    = "redqueen.log"
	defaultLogLevel   = "info"
)

// ErrConfigNotFound is returned by Load when no configuration file exists.
var ErrConfigNotFound = errors.New("no configuration file found")

// Config represents the top-level application configuration.
type Config struct {
	Debug           bool          `json:"debug" yaml:"debug"`
	LogFile         string        `json:"logFile,omitempty" yaml:"logFile,omitempty"`
	LogLevel        string        `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`
	ResultsDir      string        `json:"resultsDir,omitempty" yaml:"resultsDir,omitempty"`
	StorePath       string        `json:"storePath,omitempty" yaml:"storePath,omitempty"`
	ReportPath      string        `json:"reportPath,omitempty" yaml:"reportPath,omitempty"`
	ReportReference string        `json:"reportReference,omitempty" yaml:"reportReference,omitempty"`
	MetricsAddr     string        `json:"metricsAddr,omitempty" yaml:"metricsAddr,omitempty"`
	TraceExporter   string        `json:"traceExporter,omitempty" yaml:"traceExporter,omitempty"`
	Fixture         FixtureConfig `json:"fixture" yaml:"fixture"`
	Suites          []SuiteConfig `json:"suites,omitempty" yaml:"suites,omitempty"`
	ConfigPath      string        `json:"-" yaml:"-"`
}

// FixtureConfig holds the measurement parameters. Durations use
// time.ParseDuration syntax; empty values keep the fixture defaults.
type FixtureConfig struct {
	DisableGC  *bool  `json:"disableGC,omitempty" yaml:"disableGC,omitempty"`
	MinTime    string `json:"minTime,omitempty" yaml:"minTime,omitempty"`
	MaxTime    string `json:"maxTime,omitempty" yaml:"maxTime,omitempty"`
	SlowLimit  string `json:"slowLimit,omitempty" yaml:"slowLimit,omitempty"`
	SlowRounds int    `json:"slowRounds,omitempty" yaml:"slowRounds,omitempty"`
}

// SuiteConfig selects and parameterizes one benchmark suite.
type SuiteConfig struct {
	Name     string   `json:"name" yaml:"name"`
	Tools    []string `json:"tools,omitempty" yaml:"tools,omitempty"`
	Sizes    []int    `json:"sizes,omitempty" yaml:"sizes,omitempty"`
	InputDir string   `json:"inputDir,omitempty" yaml:"inputDir,omitempty"`
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return defaultLogFile
}

// LogLevelName returns the configured logrus level, "debug" when Debug is set.
func (c Config) LogLevelName() string {
	if c.Debug {
		return "debug"
	}
	if lvl := strings.TrimSpace(c.LogLevel); lvl != "" {
		return lvl
	}
	return defaultLogLevel
}

// ResultsPath returns the directory result files are written to.
func (c Config) ResultsPath() string {
	if dir := strings.TrimSpace(c.ResultsDir); dir != "" {
		return dir
	}
	return defaultResultsDir
}

// ReportFilePath returns the HTML report destination.
func (c Config) ReportFilePath() string {
	if path := strings.TrimSpace(c.ReportPath); path != "" {
		return path
	}
	return defaultReportPath
}

// FixtureSettings converts the fixture section into a fixture.Config layered
// over fixture.DefaultConfig and validates it.
func (c Config) FixtureSettings() (fixture.Config, error) {
	cfg := fixture.DefaultConfig()
	if c.Fixture.DisableGC != nil {
		cfg.DisableGC = *c.Fixture.DisableGC
	}
	for _, field := range []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"minTime", c.Fixture.MinTime, &cfg.MinTime},
		{"maxTime", c.Fixture.MaxTime, &cfg.MaxTime},
		{"slowLimit", c.Fixture.SlowLimit, &cfg.SlowLimit},
	} {
		if strings.TrimSpace(field.value) == "" {
			continue
		}
		d, err := time.ParseDuration(strings.TrimSpace(field.value))
		if err != nil {
			return fixture.Config{}, fmt.Errorf("fixture.%s: %w", field.name, err)
		}
		*field.dst = d
	}
	if c.Fixture.SlowRounds != 0 {
		cfg.SlowRounds = c.Fixture.SlowRounds
	}
	if err := cfg.Validate(); err != nil {
		return fixture.Config{}, err
	}
	return cfg, nil
}

// Load reads the application configuration from the specified path, with fallback to a legacy path.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	config, err := loadFromPath(path)
	if err == nil {
		if _, err := config.FixtureSettings(); err != nil {
			return Config{}, fmt.Errorf("invalid config %q: %w", path, err)
		}
		config.ConfigPath = path
		return config, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		if path == DefaultConfigPath {
			config, legacyErr := loadFromPath(legacyConfigPath)
			if legacyErr == nil {
				config.ConfigPath = legacyConfigPath
				return config, nil
			}
			if errors.Is(legacyErr, os.ErrNotExist) {
				return Config{}, fmt.Errorf("%w (searched %q and %q)", ErrConfigNotFound, DefaultConfigPath, legacyConfigPath)
			}
			return Config{}, fmt.Errorf("could not read config file %q: %w", legacyConfigPath, legacyErr)
		}
		return Config{}, fmt.Errorf("%w at %q", ErrConfigNotFound, path)
	}

	return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
}

// loadFromPath decodes a JSON or YAML file depending on its extension.
func loadFromPath(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var config Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, err
		}
	default:
		if err := json.Unmarshal(data, &config); err != nil {
			return Config{}, err
		}
	}
	return config, nil
}
