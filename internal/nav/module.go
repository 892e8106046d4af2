// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package nav validates routing decisions against the enabled module
// set and turns them into panel changes plus dwell-time analytics.
package nav

// =============================================================================
// MODULE ID
// =============================================================================

// ModuleID identifies a routable feature panel.
type ModuleID string

const (
	ModuleAuto           ModuleID = "auto"
	ModuleTopicExplainer ModuleID = "topic-explainer"
	ModuleExamMode       ModuleID = "exam-mode"
	ModuleEssayGrading   ModuleID = "essay-grading"
	ModuleCalculator     ModuleID = "calculator"
	ModuleCalendar       ModuleID = "calendar"
	ModuleTranslator     ModuleID = "translator"
	ModuleTimer          ModuleID = "timer"
	ModuleWeather        ModuleID = "weather"
	ModuleBookSearch     ModuleID = "book-search"
	ModuleNewsSearch     ModuleID = "news-search"
	ModuleGifSearch      ModuleID = "gif-search"
	ModuleWorldBank      ModuleID = "world-bank"
)

// String returns the module identifier.
func (m ModuleID) String() string {
	return string(m)
}

// AllModules lists every routable module, excluding the auto fallback.
func AllModules() []ModuleID {
	return []ModuleID{
		ModuleTopicExplainer,
		ModuleExamMode,
		ModuleEssayGrading,
		ModuleCalculator,
		ModuleCalendar,
		ModuleTranslator,
		ModuleTimer,
		ModuleWeather,
		ModuleBookSearch,
		ModuleNewsSearch,
		ModuleGifSearch,
		ModuleWorldBank,
	}
}

// ParseModuleID translates a server/classifier module identifier to a
// ModuleID. Unknown identifiers translate to the auto fallback, never
// to an error.
func ParseModuleID(s string) ModuleID {
	for _, m := range AllModules() {
		if string(m) == s {
			return m
		}
	}
	return ModuleAuto
}
