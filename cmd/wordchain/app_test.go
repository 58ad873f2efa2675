package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/bastiangx/wordchain/internal/logger"
	"github.com/bastiangx/wordchain/pkg/config"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.FatalLevel)
}

func withFlags(t *testing.T, cfgPath, sources string) {
	t.Helper()
	oldCfg, oldSources := flagConfig, flagSources
	flagConfig, flagSources = cfgPath, sources
	t.Cleanup(func() { flagConfig, flagSources = oldCfg, oldSources })
}

func TestNewAppSeedsAndLoads(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[sources]\nwatch = false\n"), 0644))
	withFlags(t, cfgPath, filepath.Join(root, "sources"))

	a, err := newApp(context.Background())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "sources"), a.sourcesDir)
	s := a.engine.Stats()
	assert.Equal(t, 2, s.Sources)
	assert.True(t, s.Trained)

	suggestions, _ := a.engine.PredictNextWords("it is a truth universally", 3)
	require.NotEmpty(t, suggestions)
	assert.Equal(t, "acknowledged", suggestions[0].Word)

	// watching is off, so this returns immediately
	assert.NoError(t, a.watch(context.Background()))
}

func TestNewAppWithoutSeeding(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[sources]\nseed_samples = false\n"), 0644))
	withFlags(t, cfgPath, filepath.Join(root, "missing"))

	a, err := newApp(context.Background())
	require.NoError(t, err)
	assert.False(t, a.engine.Model().Trained())
	assert.NoDirExists(t, filepath.Join(root, "missing"))
}

func TestConfigCommandPrintsActiveConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[server]\naddr = \":9999\"\n"), 0644))
	withFlags(t, cfgPath, "")

	var out bytes.Buffer
	configCmd.SetOut(&out)
	defer configCmd.SetOut(nil)

	require.NoError(t, runConfig(configCmd, nil))
	assert.Contains(t, out.String(), cfgPath)
	assert.Contains(t, out.String(), `addr = ":9999"`)
}

func setConfigFlag(t *testing.T, name, value string) {
	t.Helper()
	f := configCmd.Flags().Lookup(name)
	def := f.DefValue
	require.NoError(t, configCmd.Flags().Set(name, value))
	t.Cleanup(func() {
		_ = f.Value.Set(def)
		f.Changed = false
	})
}

func TestConfigCommandUpdatesFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[server]\naddr = \":9999\"\n"), 0644))
	withFlags(t, cfgPath, "")
	setConfigFlag(t, "max-suggestions", "10")
	setConfigFlag(t, "watch", "false")

	var out bytes.Buffer
	configCmd.SetOut(&out)
	defer configCmd.SetOut(nil)
	require.NoError(t, runConfig(configCmd, nil))

	cfg, err := config.LoadConfig(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Server.MaxSuggestions)
	assert.Equal(t, 3, cfg.Server.DefaultSuggestions)
	assert.False(t, cfg.Sources.Watch)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Contains(t, out.String(), "max_suggestions = 10")
}

func TestConfigCommandRuntimeInfoInDebug(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[server]\naddr = \":9999\"\n"), 0644))
	withFlags(t, cfgPath, "")
	flagDebug = true
	defer func() { flagDebug = false }()

	var out bytes.Buffer
	configCmd.SetOut(&out)
	defer configCmd.SetOut(nil)
	require.NoError(t, runConfig(configCmd, nil))

	assert.Contains(t, out.String(), "# os: "+runtime.GOOS)
	assert.Contains(t, out.String(), "# config_dir: ")
	assert.Contains(t, out.String(), `addr = ":9999"`)
}

func TestComponentLoggerUsesConfig(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stdout)
	level := log.GetLevel()
	log.SetLevel(log.InfoLevel)
	defer log.SetLevel(level)

	cfg := config.DefaultConfig()
	cfg.Log.Format = "json"

	componentLogger(cfg, "engine").Info("loaded")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "loaded", entry["msg"])
	assert.NotContains(t, entry, "time")

	buf.Reset()
	flagDebug = true
	defer func() { flagDebug = false }()
	componentLogger(cfg, "engine").Debug("hidden")
	assert.Empty(t, buf.String(), "level follows the global level")

	componentLogger(cfg, "engine").Info("stamped")
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Contains(t, entry, "time")
}
