// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suprsokr/go-vpk/internal/testutil"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    Config
		wantErr string
	}{
		{
			name:    "empty file keeps defaults",
			content: "",
			want:    defaultConfig(),
		},
		{
			name:    "all fields",
			content: "log_level: debug\nlegacy_paths: true\ncolor: never\n",
			want:    Config{LogLevel: "debug", LegacyPaths: true, Color: "never"},
		},
		{
			name:    "partial",
			content: "color: always\n",
			want:    Config{LogLevel: "warn", Color: "always"},
		},
		{
			name:    "bad level",
			content: "log_level: chatty\n",
			wantErr: "invalid log level",
		},
		{
			name:    "bad color",
			content: "color: sometimes\n",
			wantErr: "color must be",
		},
		{
			name:    "not yaml",
			content: "log_level: [\n",
			wantErr: "parse config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := testutil.WriteFile(t, "vpktool.yaml", []byte(tt.content))
			cfg, err := loadConfig(path, noEnv)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg)
		})
	}
}

func TestLoadConfigSources(t *testing.T) {
	t.Parallel()

	fromEnv := testutil.WriteFile(t, "env.yaml", []byte("color: never\n"))
	fromFlag := testutil.WriteFile(t, "flag.yaml", []byte("color: always\n"))
	getenv := func(key string) string {
		if key == configEnv {
			return fromEnv
		}
		return ""
	}

	cfg, err := loadConfig("", noEnv)
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)

	cfg, err = loadConfig("", getenv)
	require.NoError(t, err)
	assert.Equal(t, "never", cfg.Color)

	cfg, err = loadConfig(fromFlag, getenv)
	require.NoError(t, err)
	assert.Equal(t, "always", cfg.Color)

	_, err = loadConfig("/does/not/exist.yaml", noEnv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
	} {
		got, err := parseLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := parseLevel("")
	assert.Error(t, err)
}
