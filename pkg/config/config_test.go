package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.FatalLevel)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestInitConfigCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.FileExists(t, path)

	again, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
[server]
addr = ":8080"
max_suggestions = 8

[sources]
dir = "/srv/corpora"
extensions = [".txt", ".md"]
watch = false
debounce_ms = 100
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 8, cfg.Server.MaxSuggestions)
	assert.Equal(t, 3, cfg.Server.DefaultSuggestions)
	assert.Equal(t, "/srv/corpora", cfg.Sources.Dir)
	assert.Equal(t, []string{".txt", ".md"}, cfg.Sources.Extensions)
	assert.False(t, cfg.Sources.Watch)
	assert.True(t, cfg.Sources.SeedSamples)
	assert.Equal(t, 100*time.Millisecond, cfg.Sources.Debounce())
	assert.Equal(t, 5, cfg.CLI.DefaultSuggestions)
}

func TestLoadConfigPartialRecovery(t *testing.T) {
	// max_suggestions has the wrong type, which fails strict decoding
	path := writeConfig(t, `
[server]
addr = "0.0.0.0:9000"
max_suggestions = "lots"

[sources]
seed_samples = false

[cli]
default_suggestions = 7
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
	assert.Equal(t, 20, cfg.Server.MaxSuggestions)
	assert.False(t, cfg.Sources.SeedSamples)
	assert.Equal(t, 7, cfg.CLI.DefaultSuggestions)
}

func TestLoadConfigUnparseable(t *testing.T) {
	path := writeConfig(t, "[server\naddr = ")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Server:  ServerConfig{DefaultSuggestions: 50, MaxSuggestions: 10},
		Sources: SourcesConfig{DebounceMs: -1},
	}
	cfg.Validate()

	assert.Equal(t, "127.0.0.1:5000", cfg.Server.Addr)
	assert.Equal(t, 3, cfg.Server.DefaultSuggestions)
	assert.Equal(t, 10, cfg.Server.MaxSuggestions)
	assert.Equal(t, 4096, cfg.Server.MaxTextLength)
	assert.Equal(t, "sources", cfg.Sources.Dir)
	assert.Equal(t, []string{".txt"}, cfg.Sources.Extensions)
	assert.Equal(t, 250, cfg.Sources.DebounceMs)
	assert.Equal(t, 4, cfg.Sources.ReadWorkers)
	assert.Equal(t, 5, cfg.CLI.DefaultSuggestions)
}

func TestLoadConfigWithPriorityCustomPath(t *testing.T) {
	path := writeConfig(t, "[server]\naddr = \":7000\"\n")

	cfg, used, err := LoadConfigWithPriority(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, ":7000", cfg.Server.Addr)
}

func TestLoadConfigLogFormat(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "[log]\nformat = \"json\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Log.Format)

	cfg, err = LoadConfig(writeConfig(t, "[log]\nformat = \"xml\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Log.Format)

	// strict decoding fails on cli, the log section still survives
	cfg, err = LoadConfig(writeConfig(t, "[cli]\ndefault_suggestions = \"many\"\n\n[log]\nformat = \"logfmt\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "logfmt", cfg.Log.Format)
	assert.Equal(t, 5, cfg.CLI.DefaultSuggestions)
}

func TestUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	cfg := DefaultConfig()
	n, watch := 6, false
	require.NoError(t, cfg.Update(path, &n, nil, &watch))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 6, loaded.Server.DefaultSuggestions)
	assert.False(t, loaded.Sources.Watch)
}

func TestRebuildConfigFile(t *testing.T) {
	path := writeConfig(t, "[server]\naddr = \":1\"\n")

	got, err := RebuildConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server.Addr, cfg.Server.Addr)
}
