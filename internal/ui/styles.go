// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// COLORS
// =============================================================================

// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.

// Cyan - brand color, user highlights
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Purple - tutor messages, accents
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Emerald - resolved intents, success states
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Rose - errors
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// TextMuted - hints, timestamps, help line
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

// Overlay - borders, separators
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

// =============================================================================
// STYLES
// =============================================================================

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Cyan).
			Padding(0, 1)

	userLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Cyan)

	tutorLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Purple)

	systemLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(TextMuted)

	intentBannerStyle = lipgloss.NewStyle().
				Foreground(Emerald).
				Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(Rose).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(TextMuted).
			Padding(0, 1)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Overlay).
			Padding(0, 1)
)
