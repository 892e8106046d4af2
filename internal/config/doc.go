// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management
// for tutortui.
//
// Supports both TOML and JSON configuration formats, with sensible
// defaults, environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - ChatConfig: Streaming chat backend settings
//   - ModulesConfig: Feature module enable/disable list
//   - AnalyticsConfig: Navigation analytics storage settings
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (TUTORTUI_*)
//   - ~/.tutortui/config.toml
//   - ~/.tutortui/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	baseURL := cfg.Chat.BaseURL
//	enabled := cfg.Modules.Enabled
//
// The enabled-module list can be hot reloaded at runtime with Watch,
// which re-reads the file on change and hands the fresh Config to a
// callback.
package config
