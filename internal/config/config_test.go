// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubeduai/tutor-tui/internal/nav"
)

func TestDefault_values(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "http://localhost:3000/api", cfg.Chat.BaseURL)
	assert.Equal(t, 1, cfg.Chat.MaxRetries)
	assert.Equal(t, 2.0, cfg.Chat.RequestsPerSecond)
	assert.Empty(t, cfg.Modules.Enabled)
	assert.True(t, cfg.Analytics.Enabled)
	assert.Equal(t, "student", cfg.Profile.UserRole)
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.True(t, cfg.UI.ShowIntent)
}

func TestLoadFromPath_toml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
version = "2.0.0"

[chat]
base_url = "https://api.hubedu.ai/v1"
max_retries = 3
requests_per_second = 5.0

[modules]
enabled = ["exam-mode", "essay-grading"]

[profile]
user_role = "teacher"
school_plan = "premium"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "2.0.0", cfg.Version)
	assert.Equal(t, "https://api.hubedu.ai/v1", cfg.Chat.BaseURL)
	assert.Equal(t, 3, cfg.Chat.MaxRetries)
	assert.Equal(t, 5.0, cfg.Chat.RequestsPerSecond)
	assert.Equal(t, []string{"exam-mode", "essay-grading"}, cfg.Modules.Enabled)
	assert.Equal(t, "teacher", cfg.Profile.UserRole)
	assert.Equal(t, "premium", cfg.Profile.SchoolPlan)
	// Omitted sections keep their defaults
	assert.Equal(t, "dark", cfg.UI.Theme)
}

func TestLoadFromPath_json(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
  "chat": {"base_url": "http://localhost:8080/api"},
  "modules": {"enabled": ["calculator"]}
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/api", cfg.Chat.BaseURL)
	assert.Equal(t, []string{"calculator"}, cfg.Modules.Enabled)
	// Missing numeric values are filled from defaults
	assert.Equal(t, 2.0, cfg.Chat.RequestsPerSecond)
}

func TestLoadFromPath_unknown_module_rejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[modules]
enabled = ["exam-mode", "flight-simulator"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flight-simulator")
}

func TestFillDefaults_clamps(t *testing.T) {
	tests := []struct {
		name        string
		retries     int
		rps         float64
		wantRetries int
		wantRPS     float64
	}{
		{"negative_retries_clamped_to_zero", -1, 2, 0, 2},
		{"excessive_retries_clamped_to_five", 10, 2, 5, 2},
		{"zero_rps_gets_default", 1, 0, 1, 2},
		{"excessive_rps_clamped", 1, 1000, 1, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Chat.MaxRetries = tt.retries
			cfg.Chat.RequestsPerSecond = tt.rps
			fillDefaults(cfg)
			assert.Equal(t, tt.wantRetries, cfg.Chat.MaxRetries)
			assert.Equal(t, tt.wantRPS, cfg.Chat.RequestsPerSecond)
		})
	}
}

func TestValidate_errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad_base_url",
			mutate:  func(c *Config) { c.Chat.BaseURL = "not a url" },
			wantErr: "chat.base_url",
		},
		{
			name:    "unknown_module",
			mutate:  func(c *Config) { c.Modules.Enabled = []string{"astrology"} },
			wantErr: "modules.enabled",
		},
		{
			name:    "bad_theme",
			mutate:  func(c *Config) { c.UI.Theme = "neon" },
			wantErr: "ui.theme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_defaults_pass(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("TUTORTUI_BASE_URL", "https://staging.hubedu.ai/api")
	t.Setenv("TUTORTUI_MAX_RETRIES", "4")
	t.Setenv("TUTORTUI_MODULES", "exam-mode, calculator")
	t.Setenv("TUTORTUI_ANALYTICS", "false")
	t.Setenv("TUTORTUI_SCHOOL_PLAN", "basic")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "https://staging.hubedu.ai/api", cfg.Chat.BaseURL)
	assert.Equal(t, 4, cfg.Chat.MaxRetries)
	assert.Equal(t, []string{"exam-mode", "calculator"}, cfg.Modules.Enabled)
	assert.False(t, cfg.Analytics.Enabled)
	assert.Equal(t, "basic", cfg.Profile.SchoolPlan)
}

func TestEnabledModules(t *testing.T) {
	cfg := Default()
	assert.Nil(t, cfg.EnabledModules())

	cfg.Modules.Enabled = []string{"exam-mode", "weather"}
	assert.Equal(t, []nav.ModuleID{nav.ModuleExamMode, nav.ModuleWeather}, cfg.EnabledModules())
}

func TestSaveTOML_roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Chat.MaxRetries = 2
	cfg.Modules.Enabled = []string{"essay-grading"}
	require.NoError(t, SaveTOML(cfg, path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Chat.MaxRetries)
	assert.Equal(t, []string{"essay-grading"}, loaded.Modules.Enabled)

	// The atomic write leaves no temp files behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "config.toml", entries[0].Name())
}

func TestWatcher_reloads_on_change(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[modules]\nenabled = [\"exam-mode\"]\n"), 0600))

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(path, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch())

	require.NoError(t, os.WriteFile(path, []byte("[modules]\nenabled = [\"essay-grading\"]\n"), 0600))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, []string{"essay-grading"}, cfg.Modules.Enabled)
	case <-time.After(5 * time.Second):
		t.Fatal("config change was not picked up")
	}
}

func TestWatcher_invalid_reload_keeps_previous(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ui]\ntheme = \"light\"\n"), 0600))

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(path, func(cfg *Config) { reloaded <- cfg })
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch())

	// Broken TOML never reaches the callback
	require.NoError(t, os.WriteFile(path, []byte("[ui\ntheme =\n"), 0600))

	select {
	case cfg := <-reloaded:
		t.Fatalf("unexpected reload with config: %+v", cfg)
	case <-time.After(1 * time.Second):
	}
}
