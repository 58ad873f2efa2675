/*
Package config manages TOML config for WordChain services.

The file has four sections:

	[server]   HTTP address and request limits
	[sources]  corpus directory, extensions, live reload
	[cli]      interactive prompt defaults
	[log]      component log format

A file that fails strict decoding is re-read loosely and every well-formed
known key is kept; the rest fall back to DefaultConfig.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bastiangx/wordchain/internal/utils"
	"github.com/charmbracelet/log"
)

// FileName is the config file created in the config directory.
const FileName = "config.toml"

// Config holds the entire config structure
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Sources SourcesConfig `toml:"sources"`
	CLI     CliConfig     `toml:"cli"`
	Log     LogConfig     `toml:"log"`
}

// ServerConfig has HTTP and IPC request options.
type ServerConfig struct {
	Addr               string `toml:"addr"`
	DefaultSuggestions int    `toml:"default_suggestions"`
	MaxSuggestions     int    `toml:"max_suggestions"`
	MaxTextLength      int    `toml:"max_text_length"`
}

// SourcesConfig holds corpus directory options.
type SourcesConfig struct {
	Dir         string   `toml:"dir"`
	Extensions  []string `toml:"extensions"`
	Watch       bool     `toml:"watch"`
	DebounceMs  int      `toml:"debounce_ms"`
	SeedSamples bool     `toml:"seed_samples"`
	ReadWorkers int      `toml:"read_workers"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultSuggestions int `toml:"default_suggestions"`
}

// LogConfig holds component logger options.
type LogConfig struct {
	// Format is one of text, json or logfmt.
	Format string `toml:"format"`
}

// Debounce returns the watcher debounce as a duration.
func (s SourcesConfig) Debounce() time.Duration {
	return time.Duration(s.DebounceMs) * time.Millisecond
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:               "127.0.0.1:5000",
			DefaultSuggestions: 3,
			MaxSuggestions:     20,
			MaxTextLength:      4096,
		},
		Sources: SourcesConfig{
			Dir:         "sources",
			Extensions:  []string{".txt"},
			Watch:       true,
			DebounceMs:  250,
			SeedSamples: true,
			ReadWorkers: 4,
		},
		CLI: CliConfig{
			DefaultSuggestions: 5,
		},
		Log: LogConfig{
			Format: "text",
		},
	}
}

// Validate clamps values that would make the services misbehave back to
// their defaults.
func (c *Config) Validate() {
	def := DefaultConfig()
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Server.MaxSuggestions < 1 {
		log.Warnf("server.max_suggestions %d is invalid, using %d", c.Server.MaxSuggestions, def.Server.MaxSuggestions)
		c.Server.MaxSuggestions = def.Server.MaxSuggestions
	}
	if c.Server.DefaultSuggestions < 1 || c.Server.DefaultSuggestions > c.Server.MaxSuggestions {
		log.Warnf("server.default_suggestions %d is invalid, using %d", c.Server.DefaultSuggestions, min(def.Server.DefaultSuggestions, c.Server.MaxSuggestions))
		c.Server.DefaultSuggestions = min(def.Server.DefaultSuggestions, c.Server.MaxSuggestions)
	}
	if c.Server.MaxTextLength < 1 {
		c.Server.MaxTextLength = def.Server.MaxTextLength
	}
	if c.Sources.Dir == "" {
		c.Sources.Dir = def.Sources.Dir
	}
	if len(c.Sources.Extensions) == 0 {
		c.Sources.Extensions = def.Sources.Extensions
	}
	if c.Sources.DebounceMs < 0 {
		c.Sources.DebounceMs = def.Sources.DebounceMs
	}
	if c.Sources.ReadWorkers < 1 {
		c.Sources.ReadWorkers = def.Sources.ReadWorkers
	}
	if c.CLI.DefaultSuggestions < 1 {
		c.CLI.DefaultSuggestions = def.CLI.DefaultSuggestions
	}
	switch c.Log.Format {
	case "text", "json", "logfmt":
	default:
		log.Warnf("log.format %q is invalid, using %q", c.Log.Format, def.Log.Format)
		c.Log.Format = def.Log.Format
	}
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	pr, err := utils.NewPathResolver()
	if err != nil {
		return "", err
	}
	return pr.GetConfigPath(FileName)
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/wordchain/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	configDir := filepath.Dir(defaultPath)
	if status := utils.CheckDirStatus(configDir); !status.Writable {
		if status.Exists && utils.FileExists(defaultPath) {
			log.Warnf("Config directory %s is read-only, loading without changes", configDir)
			config, err := LoadConfig(defaultPath)
			if err != nil {
				return DefaultConfig(), "", nil
			}
			return config, defaultPath, nil
		}
		log.Warnf("Config directory %s is not writable. Using builtin defaults...", configDir)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	config.Validate()
	return config, nil
}

// tryPartialParse attempts to parse a TOML file
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if serverSection, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(serverSection, &config.Server)
	}
	if sourcesSection, ok := utils.ExtractSection(tempConfig, "sources"); ok {
		extractSourcesConfig(sourcesSection, &config.Sources)
	}
	if cliSection, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(cliSection, &config.CLI)
	}
	if logSection, ok := utils.ExtractSection(tempConfig, "log"); ok {
		if val, ok := utils.ExtractString(logSection, "format"); ok {
			config.Log.Format = val
		}
	}
	config.Validate()
	return config, nil
}

func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractString(data, "addr"); ok {
		server.Addr = val
	}
	if val, ok := utils.ExtractInt64(data, "default_suggestions"); ok {
		server.DefaultSuggestions = val
	}
	if val, ok := utils.ExtractInt64(data, "max_suggestions"); ok {
		server.MaxSuggestions = val
	}
	if val, ok := utils.ExtractInt64(data, "max_text_length"); ok {
		server.MaxTextLength = val
	}
}

func extractSourcesConfig(data map[string]any, sources *SourcesConfig) {
	if val, ok := utils.ExtractString(data, "dir"); ok {
		sources.Dir = val
	}
	if val, ok := utils.ExtractStrings(data, "extensions"); ok {
		sources.Extensions = val
	}
	if val, ok := utils.ExtractBool(data, "watch"); ok {
		sources.Watch = val
	}
	if val, ok := utils.ExtractInt64(data, "debounce_ms"); ok {
		sources.DebounceMs = val
	}
	if val, ok := utils.ExtractBool(data, "seed_samples"); ok {
		sources.SeedSamples = val
	}
	if val, ok := utils.ExtractInt64(data, "read_workers"); ok {
		sources.ReadWorkers = val
	}
}

func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "default_suggestions"); ok {
		cli.DefaultSuggestions = val
	}
}

// RebuildConfigFile force creates a new config.toml at path, or at the
// default location when path is empty.
func RebuildConfigFile(path string) (string, error) {
	if path == "" {
		var err error
		if path, err = GetDefaultConfigPath(); err != nil {
			return "", err
		}
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return "", fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := SaveConfig(DefaultConfig(), path); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		return "builtin defaults"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}

// Update changes the server limits and saves to file
func (c *Config) Update(configPath string, defaultSuggestions, maxSuggestions *int, watch *bool) error {
	if defaultSuggestions != nil {
		c.Server.DefaultSuggestions = *defaultSuggestions
	}
	if maxSuggestions != nil {
		c.Server.MaxSuggestions = *maxSuggestions
	}
	if watch != nil {
		c.Sources.Watch = *watch
	}
	c.Validate()
	return SaveConfig(c, configPath)
}
