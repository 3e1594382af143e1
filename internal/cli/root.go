// internal/cli/root.go
package redqueen

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/mwiater/redqueen/internal/appconfig"
	"github.com/mwiater/redqueen/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
	appVersion    = "dev"
	appCommit     = "none"
	appDate       = "unknown"
)

// overrideKeys are the string settings flags and REDQUEEN_* variables may override.
var overrideKeys = []string{"logFile", "logLevel", "resultsDir", "storePath", "reportPath", "reportReference", "metricsAddr", "traceExporter"}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:          "redqueen",
	Short:        "redqueen: adaptive benchmarks for compression and JSON libraries",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		currentConfig = &cfg

		if err := logging.Init(currentConfig.LogFilePath()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if err := logging.SetLevel(currentConfig.LogLevelName()); err != nil {
			return fmt.Errorf("invalid log level %q: %w", currentConfig.LogLevelName(), err)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate)

	defer logging.Close()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (JSON or YAML)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("logFile", "", "path to the log file")
	rootCmd.PersistentFlags().String("logLevel", "", "log level (trace, debug, info, warn, error)")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("logFile", rootCmd.PersistentFlags().Lookup("logFile"))
	_ = viper.BindPFlag("logLevel", rootCmd.PersistentFlags().Lookup("logLevel"))
}

// initConfig loads a .env file, if present, and enables REDQUEEN_* overrides.
func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "warning: unable to read .env: %v\n", err)
	}
	viper.SetEnvPrefix("REDQUEEN")
	viper.AutomaticEnv()
}

// loadConfig reads the config file and layers flag and environment overrides
// on top. A missing file is only an error when --config was given explicitly.
func loadConfig(cmd *cobra.Command) (appconfig.Config, error) {
	cfg, err := appconfig.Load(cfgFile)
	if err != nil {
		if !errors.Is(err, appconfig.ErrConfigNotFound) || cmd.Flags().Changed("config") {
			return appconfig.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = appconfig.Config{}
	}
	applyOverrides(&cfg)
	if _, err := cfg.FixtureSettings(); err != nil {
		return appconfig.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyOverrides(cfg *appconfig.Config) {
	if viper.IsSet("debug") {
		cfg.Debug = viper.GetBool("debug")
	}
	targets := map[string]*string{
		"logFile":         &cfg.LogFile,
		"logLevel":        &cfg.LogLevel,
		"resultsDir":      &cfg.ResultsDir,
		"storePath":       &cfg.StorePath,
		"reportPath":      &cfg.ReportPath,
		"reportReference": &cfg.ReportReference,
		"metricsAddr":     &cfg.MetricsAddr,
		"traceExporter":   &cfg.TraceExporter,
	}
	for _, key := range overrideKeys {
		if viper.IsSet(key) {
			*targets[key] = viper.GetString(key)
		}
	}
}

// GetConfig returns the loaded application configuration for other packages.
func GetConfig() *appconfig.Config {
	return currentConfig
}

// config returns the loaded configuration or an empty one before the root
// pre-run has happened.
func config() *appconfig.Config {
	if currentConfig == nil {
		return &appconfig.Config{}
	}
	return currentConfig
}

// DebugEnabled returns true if debug mode is enabled.
func DebugEnabled() bool { return viper.GetBool("debug") }

// SetVersionInfo allows the main package to inject build-time variables.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}
