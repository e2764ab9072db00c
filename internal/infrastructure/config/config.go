// Package config loads host configuration from a JSON file with
// environment overrides and sensible CLAP defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config holds everything the host needs at startup. Zero values are
// replaced by defaults in Load, so a partial config file is fine.
type Config struct {
	// PluginDirs are the directories scanned for plugin libraries.
	PluginDirs []string `json:"plugin_dirs"`

	// Audio configuration handed to activate.
	SampleRate float64 `json:"sample_rate"`
	MinFrames  uint32  `json:"min_frames"`
	MaxFrames  uint32  `json:"max_frames"`

	LogLevel string `json:"log_level"`
}

// Default returns the built-in configuration: the standard CLAP search
// paths and a 48kHz / 32..4096 frame audio setup.
func Default() *Config {
	return &Config{
		PluginDirs: defaultPluginDirs(),
		SampleRate: 48000,
		MinFrames:  32,
		MaxFrames:  4096,
		LogLevel:   "info",
	}
}

// Load reads configuration from configPath, falling back to
// CLAPHOST_CONFIG_PATH and then ~/.claphost/config.json. A missing
// file is not an error; a malformed one is. Environment variables
// CLAPHOST_PLUGIN_DIR, CLAPHOST_SAMPLE_RATE and CLAPHOST_LOG_LEVEL
// override the file.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath == "" {
		configPath = os.Getenv("CLAPHOST_CONFIG_PATH")
	}
	if configPath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configPath = filepath.Join(home, ".claphost", "config.json")
		}
	}

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", configPath, err)
			}
		}
	}

	if dir := os.Getenv("CLAPHOST_PLUGIN_DIR"); dir != "" {
		cfg.PluginDirs = append([]string{dir}, cfg.PluginDirs...)
	}
	if rate := os.Getenv("CLAPHOST_SAMPLE_RATE"); rate != "" {
		parsed, err := strconv.ParseFloat(rate, 64)
		if err != nil {
			return nil, fmt.Errorf("parse CLAPHOST_SAMPLE_RATE: %w", err)
		}
		cfg.SampleRate = parsed
	}
	if level := os.Getenv("CLAPHOST_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills anything a partial config file left at zero.
func (c *Config) applyDefaults() {
	def := Default()
	if len(c.PluginDirs) == 0 {
		c.PluginDirs = def.PluginDirs
	}
	if c.SampleRate <= 0 {
		c.SampleRate = def.SampleRate
	}
	if c.MinFrames == 0 {
		c.MinFrames = def.MinFrames
	}
	if c.MaxFrames == 0 {
		c.MaxFrames = def.MaxFrames
	}
	if c.MaxFrames < c.MinFrames {
		c.MaxFrames = c.MinFrames
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

// defaultPluginDirs returns the standard CLAP plugin locations for
// this machine.
func defaultPluginDirs() []string {
	dirs := []string{}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".clap"))
	}
	dirs = append(dirs, "/usr/lib/clap", "/usr/local/lib/clap")
	return dirs
}
