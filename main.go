// tutortui - terminal chat shell for the HubEdu tutoring assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hubeduai/tutor-tui/internal/analytics"
	"github.com/hubeduai/tutor-tui/internal/chat"
	"github.com/hubeduai/tutor-tui/internal/config"
	"github.com/hubeduai/tutor-tui/internal/nav"
	"github.com/hubeduai/tutor-tui/internal/orchestrator"
	"github.com/hubeduai/tutor-tui/internal/ui"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (default ~/.tutortui/config.toml)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("tutortui %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	// ---- Configuration ----
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromPath(configPath)
		if err != nil {
			return err
		}
	} else {
		cfg, err = config.Load()
		if cfg == nil {
			return err
		}
		if err != nil {
			// Unreadable file falls back to defaults
			log.Printf("CONFIG: %v (using defaults)", err)
		} else if tomlPath, perr := config.ConfigPathTOML(); perr == nil {
			// First run: write the defaults out so there is a file to
			// edit and for the watcher to pick up.
			if _, statErr := os.Stat(tomlPath); os.IsNotExist(statErr) {
				if serr := config.Save(cfg); serr != nil {
					log.Printf("CONFIG: could not write default config: %v", serr)
				}
			}
		}
	}

	// ---- Analytics store ----
	var store nav.Store
	if cfg.Analytics.Enabled {
		if err := config.EnsureConfigDir(); err != nil {
			return err
		}
		path, err := cfg.AnalyticsPath()
		if err != nil {
			return err
		}
		sqlStore, err := analytics.NewSQLiteStore(path)
		if err != nil {
			log.Printf("ANALYTICS: sqlite unavailable, falling back to memory: %v", err)
			store = analytics.NewMemoryStore()
		} else {
			store = sqlStore
			defer sqlStore.Close()
		}
	} else {
		store = analytics.NewMemoryStore()
	}

	// ---- Navigation controller ----
	controller := nav.NewController(nav.Config{
		Enabled:    cfg.EnabledModules(),
		Store:      store,
		UserRole:   cfg.Profile.UserRole,
		SchoolPlan: cfg.Profile.SchoolPlan,
	})
	defer controller.Close()

	// ---- Chat client ----
	client := chat.NewClient(chat.Config{
		BaseURL:           cfg.Chat.BaseURL,
		MaxRetries:        cfg.Chat.MaxRetries,
		RequestsPerSecond: cfg.Chat.RequestsPerSecond,
	})

	// ---- Orchestrator + shell ----
	orch := orchestrator.New(client, controller, nil)
	shell := ui.New(orch, cfg.UI.ShowIntent)

	// ---- Config hot reload (enabled-module list) ----
	watchPath := configPath
	if watchPath == "" {
		watchPath, _ = config.ConfigPathTOML()
	}
	if watchPath != "" {
		if _, statErr := os.Stat(watchPath); statErr == nil {
			watcher, werr := config.NewWatcher(watchPath, func(fresh *config.Config) {
				controller.SetEnabled(fresh.EnabledModules())
			})
			if werr != nil {
				log.Printf("CONFIG: watcher unavailable: %v", werr)
			} else if werr := watcher.Watch(); werr != nil {
				log.Printf("CONFIG: watch failed: %v", werr)
				watcher.Close()
			} else {
				defer watcher.Close()
			}
		}
	}

	program := tea.NewProgram(shell, tea.WithAltScreen())
	_, err = program.Run()
	return err
}
