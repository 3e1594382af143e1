package redqueen

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mwiater/redqueen/internal/appconfig"
	"github.com/mwiater/redqueen/internal/logging"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlag(cmdFlag string) {
	flag := rootCmd.PersistentFlags().Lookup(cmdFlag)
	if flag == nil {
		return
	}
	_ = flag.Value.Set(flag.DefValue)
	flag.Changed = false
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func useConfigFile(t *testing.T, path string) {
	t.Helper()
	prev := cfgFile
	cfgFile = path
	t.Cleanup(func() {
		cfgFile = prev
		currentConfig = nil
		_ = logging.Close()
	})
	for _, name := range []string{"debug", "logFile", "logLevel"} {
		resetFlag(name)
	}
}

// TestRootCmd verifies running the root command with an invalid subcommand reports an error.
func TestRootCmd(t *testing.T) {
	b := new(bytes.Buffer)
	rootCmd.SetOut(b)
	rootCmd.SetErr(b)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetArgs([]string{"nonexistent"})
	_, err := rootCmd.ExecuteC()

	require.Error(t, err)
	assert.Contains(t, b.String(), `unknown command "nonexistent" for "redqueen"`)
}

func TestPersistentPreRunEUsesFlagValues(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "redqueen.log")
	configPath := writeTempConfig(t, `{"resultsDir": "from-file", "logLevel": "warn"}`)
	useConfigFile(t, configPath)

	_ = rootCmd.PersistentFlags().Set("debug", "true")
	_ = rootCmd.PersistentFlags().Set("logFile", logPath)
	t.Cleanup(func() {
		resetFlag("debug")
		resetFlag("logFile")
	})

	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, []string{}))

	require.NotNil(t, GetConfig())
	assert.Equal(t, configPath, GetConfig().ConfigPath)
	assert.True(t, GetConfig().Debug)
	assert.Equal(t, logPath, GetConfig().LogFilePath())
	assert.Equal(t, "from-file", GetConfig().ResultsPath())
	assert.Equal(t, "debug", GetConfig().LogLevelName())
	assert.FileExists(t, logPath)
}

func TestEnvironmentOverridesConfigFile(t *testing.T) {
	dir := t.TempDir()
	configPath := writeTempConfig(t, `{"resultsDir": "from-file", "logFile": "`+filepath.ToSlash(filepath.Join(dir, "a.log"))+`"}`)
	useConfigFile(t, configPath)
	t.Setenv("REDQUEEN_RESULTSDIR", "from-env")
	t.Setenv("REDQUEEN_STOREPATH", filepath.Join(dir, "runs.db"))
	initConfig()

	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, nil))

	assert.Equal(t, "from-env", GetConfig().ResultsPath())
	assert.Equal(t, filepath.Join(dir, "runs.db"), GetConfig().StorePath)
	assert.True(t, viper.IsSet("resultsDir"))
}

func TestMissingDefaultConfigUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	useConfigFile(t, appconfig.DefaultConfigPath)

	cfg, err := loadConfig(rootCmd)
	require.NoError(t, err)
	assert.Empty(t, cfg.ConfigPath)
	assert.Equal(t, "redqueenData/results", cfg.ResultsPath())
}

func TestInvalidFixtureConfigIsRejected(t *testing.T) {
	useConfigFile(t, writeTempConfig(t, `{"fixture": {"maxTime": "soon"}}`))

	err := rootCmd.PersistentPreRunE(rootCmd, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "fixture.maxTime")
}

func TestListCommands(t *testing.T) {
	var out bytes.Buffer
	runListCommands(&out, rootCmd)

	text := out.String()
	assert.True(t, strings.HasPrefix(text, "Commands and Subcommands:"))
	for _, path := range []string{"redqueen run", "redqueen list suites", "redqueen list runs", "redqueen show config", "redqueen report", "redqueen compare", "redqueen inspect", "redqueen serve"} {
		assert.Contains(t, text, path)
	}
	assert.NotContains(t, text, "completion")
}

func TestShowConfig(t *testing.T) {
	useConfigFile(t, writeTempConfig(t, `{"logFile": "`+filepath.ToSlash(filepath.Join(t.TempDir(), "x.log"))+`", "storePath": "runs.db"}`))
	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, nil))

	var out bytes.Buffer
	showConfigCmd.SetOut(&out)
	t.Cleanup(func() { showConfigCmd.SetOut(nil) })
	showConfigCmd.Run(showConfigCmd, nil)

	assert.Contains(t, out.String(), "Config file: "+cfgFile)
	assert.Contains(t, out.String(), "runs.db")
	assert.Contains(t, out.String(), "Suites:          (all)")
}
