// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// configEnv names the environment variable consulted when --config is not
// given. There is no other discovery: without either, defaults apply.
const configEnv = "VPKTOOL_CONFIG"

// Config holds settings shared by every subcommand. Flags given on the
// command line override the file.
type Config struct {
	// LogLevel is one of debug, info, warn, error.
	// Default: warn
	LogLevel string `yaml:"log_level"`

	// LegacyPaths applies the classic 256-byte name limit when building
	// entry paths.
	LegacyPaths bool `yaml:"legacy_paths"`

	// Color controls diff coloring: auto, always or never.
	// Default: auto
	Color string `yaml:"color"`
}

// defaultConfig returns the settings used when no file is loaded.
func defaultConfig() Config {
	return Config{
		LogLevel: "warn",
		Color:    "auto",
	}
}

// loadConfig reads the file at path, or at $VPKTOOL_CONFIG if path is empty,
// on top of the defaults.
func loadConfig(path string, getenv func(string) string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = getenv(configEnv)
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// validate checks enumerated fields.
func (c Config) validate() error {
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("color must be auto, always or never, got %q", c.Color)
	}
	return nil
}

// parseLevel converts a level name to a slog.Level.
func parseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", name)
	}
	return level, nil
}
