// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/hubeduai/tutor-tui/internal/nav"
	"github.com/hubeduai/tutor-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete tutortui configuration.
type Config struct {
	// General settings
	Version string `toml:"version" json:"version"`

	// Chat backend configuration
	Chat ChatConfig `toml:"chat" json:"chat"`

	// Feature module configuration
	Modules ModulesConfig `toml:"modules" json:"modules"`

	// Navigation analytics configuration
	Analytics AnalyticsConfig `toml:"analytics" json:"analytics"`

	// Student profile stamped onto analytics records
	Profile ProfileConfig `toml:"profile" json:"profile"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`
}

// ChatConfig contains streaming chat backend configuration.
type ChatConfig struct {
	// BaseURL is the base URL of the chat API
	BaseURL string `toml:"base_url" json:"base_url"`
	// MaxRetries is how many times a failed request is retried
	// before giving up. Clamped to 0-5.
	MaxRetries int `toml:"max_retries" json:"max_retries"`
	// RequestsPerSecond throttles outgoing sends. Clamped to 0.1-100.
	RequestsPerSecond float64 `toml:"requests_per_second" json:"requests_per_second"`
}

// ModulesConfig controls which feature modules the student can reach.
type ModulesConfig struct {
	// Enabled lists the module IDs navigation may route to.
	// An empty list enables every module.
	Enabled []string `toml:"enabled" json:"enabled"`
}

// AnalyticsConfig contains navigation analytics configuration.
type AnalyticsConfig struct {
	// Enabled controls whether navigation records are persisted
	Enabled bool `toml:"enabled" json:"enabled"`
	// Path is the SQLite database path (empty = ~/.tutortui/analytics.db)
	Path string `toml:"path" json:"path"`
}

// ProfileConfig identifies the student for analytics records.
type ProfileConfig struct {
	// UserRole is the role reported on navigation records (e.g. "student")
	UserRole string `toml:"user_role" json:"user_role"`
	// SchoolPlan is the subscription plan reported on navigation records
	SchoolPlan string `toml:"school_plan" json:"school_plan"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// ShowIntent displays the resolved intent banner under the input
	ShowIntent bool `toml:"show_intent" json:"show_intent"`
	// CompactMode uses a more compact UI layout
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
	// VimMode enables vim-style modal editing
	VimMode bool `toml:"vim_mode" json:"vim_mode"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Chat: ChatConfig{
			BaseURL:           "http://localhost:3000/api",
			MaxRetries:        1,
			RequestsPerSecond: 2,
		},

		Modules: ModulesConfig{
			Enabled: nil, // all modules
		},

		Analytics: AnalyticsConfig{
			Enabled: true,
			Path:    "", // resolved lazily under the config dir
		},

		Profile: ProfileConfig{
			UserRole:   "student",
			SchoolPlan: "",
		},

		UI: UIConfig{
			Theme:       "dark",
			ShowIntent:  true,
			CompactMode: false,
			VimMode:     false,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the tutortui configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".tutortui"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// AnalyticsPath returns the resolved analytics database path.
func (c *Config) AnalyticsPath() (string, error) {
	if c.Analytics.Path != "" {
		return c.Analytics.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "analytics.db"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	// Try TOML first
	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finish(cfg)
			}
		}
	}

	// Try JSON as fallback
	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				return finish(cfg)
			}
		}
	}

	cfg, err = finish(cfg)
	if err != nil {
		return nil, err
	}

	// Return defaults (with any load error for informational purposes)
	return cfg, loadErr
}

// LoadFromPath loads configuration from a specific file path with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		// Default to TOML
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finish(cfg)
}

// finish applies env overrides, fills defaults, and validates.
func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// fillDefaults fills in any missing values with defaults and clamps
// numeric settings into their valid ranges.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}

	// Chat
	if cfg.Chat.BaseURL == "" {
		cfg.Chat.BaseURL = defaults.Chat.BaseURL
	}
	if cfg.Chat.MaxRetries < 0 {
		cfg.Chat.MaxRetries = 0
	}
	if cfg.Chat.MaxRetries > 5 {
		cfg.Chat.MaxRetries = 5
	}
	if cfg.Chat.RequestsPerSecond <= 0 {
		cfg.Chat.RequestsPerSecond = defaults.Chat.RequestsPerSecond
	}
	if cfg.Chat.RequestsPerSecond > 100 {
		cfg.Chat.RequestsPerSecond = 100
	}

	// Profile
	if cfg.Profile.UserRole == "" {
		cfg.Profile.UserRole = defaults.Profile.UserRole
	}

	// UI
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash,
// and keeps the hot-reload watcher from ever reading a half-written file.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer

	// Header comment
	fmt.Fprintln(&buf, "# tutortui configuration file")
	fmt.Fprintln(&buf, "# Generated by tutortui - edit with care")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Validate chat base URL
	if c.Chat.BaseURL != "" {
		if u, err := url.Parse(c.Chat.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "chat.base_url",
				Message: fmt.Sprintf("invalid URL '%s'", c.Chat.BaseURL),
			})
		}
	}

	// Validate enabled module IDs against the known set
	known := make(map[string]bool, len(nav.AllModules()))
	for _, id := range nav.AllModules() {
		known[string(id)] = true
	}
	for _, name := range c.Modules.Enabled {
		if !known[name] {
			errs = append(errs, ValidationError{
				Field:   "modules.enabled",
				Message: fmt.Sprintf("unknown module '%s'", name),
			})
		}
	}

	// Validate theme
	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - TUTORTUI_BASE_URL: overrides chat.base_url
//   - TUTORTUI_MAX_RETRIES: overrides chat.max_retries
//   - TUTORTUI_MODULES: comma-separated list overriding modules.enabled
//   - TUTORTUI_ANALYTICS: set to "0" or "false" to disable analytics
//   - TUTORTUI_ANALYTICS_PATH: overrides analytics.path
//   - TUTORTUI_USER_ROLE: overrides profile.user_role
//   - TUTORTUI_SCHOOL_PLAN: overrides profile.school_plan
//   - TUTORTUI_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if baseURL := os.Getenv("TUTORTUI_BASE_URL"); baseURL != "" {
		c.Chat.BaseURL = baseURL
	}

	if retries := os.Getenv("TUTORTUI_MAX_RETRIES"); retries != "" {
		if n, err := strconv.Atoi(retries); err == nil {
			c.Chat.MaxRetries = n
		}
	}

	if modules := os.Getenv("TUTORTUI_MODULES"); modules != "" {
		var enabled []string
		for _, name := range strings.Split(modules, ",") {
			if name = strings.TrimSpace(name); name != "" {
				enabled = append(enabled, name)
			}
		}
		c.Modules.Enabled = enabled
	}

	if analytics := os.Getenv("TUTORTUI_ANALYTICS"); analytics != "" {
		c.Analytics.Enabled = analytics != "0" && strings.ToLower(analytics) != "false"
	}

	if path := os.Getenv("TUTORTUI_ANALYTICS_PATH"); path != "" {
		c.Analytics.Path = path
	}

	if role := os.Getenv("TUTORTUI_USER_ROLE"); role != "" {
		c.Profile.UserRole = role
	}

	if plan := os.Getenv("TUTORTUI_SCHOOL_PLAN"); plan != "" {
		c.Profile.SchoolPlan = plan
	}

	if theme := os.Getenv("TUTORTUI_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}

// =============================================================================
// MODULE HELPERS
// =============================================================================

// EnabledModules converts the configured module names into typed IDs.
// Returns nil when every module is enabled.
func (c *Config) EnabledModules() []nav.ModuleID {
	if len(c.Modules.Enabled) == 0 {
		return nil
	}
	ids := make([]nav.ModuleID, 0, len(c.Modules.Enabled))
	for _, name := range c.Modules.Enabled {
		ids = append(ids, nav.ModuleID(name))
	}
	return ids
}
