// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package intent classifies free-text user messages into routing intents.
//
// Two interchangeable strategies are provided: an ordered first-match
// pattern classifier and a weighted-keyword scorer. Both are pure
// functions with no I/O. The context-aware router wraps the weighted
// scorer with a recent-turns fallback for low-confidence results.
package intent

// =============================================================================
// INTENT TYPE
// =============================================================================

// Type identifies which module a message likely concerns.
type Type int

const (
	TypeGeneral Type = iota
	TypeTopicExplainer
	TypeExamMode
	TypeEssayGrading
	TypeCalculator
	TypeCalendar
	TypeTranslator
	TypeTimer
	TypeWeather
	TypeBookSearch
	TypeNewsSearch
	TypeGifSearch
	TypeWorldBank
)

// String returns the wire identifier of the intent type.
func (t Type) String() string {
	switch t {
	case TypeTopicExplainer:
		return "topic-explainer"
	case TypeExamMode:
		return "exam-mode"
	case TypeEssayGrading:
		return "essay-grading"
	case TypeCalculator:
		return "calculator"
	case TypeCalendar:
		return "calendar"
	case TypeTranslator:
		return "translator"
	case TypeTimer:
		return "timer"
	case TypeWeather:
		return "weather"
	case TypeBookSearch:
		return "book-search"
	case TypeNewsSearch:
		return "news-search"
	case TypeGifSearch:
		return "gif-search"
	case TypeWorldBank:
		return "world-bank"
	default:
		return "general"
	}
}

// ModuleID returns the navigation module identifier for this intent.
// General has no panel of its own and maps to the auto fallback.
func (t Type) ModuleID() string {
	if t == TypeGeneral {
		return "auto"
	}
	return t.String()
}

// =============================================================================
// SOURCE TYPE
// =============================================================================

// Source records which strategy produced a classification.
type Source int

const (
	SourceFallback Source = iota
	SourcePatternMatch
	SourceWeightedScore
	SourceContextBoost
)

// String returns the human-readable name of the source.
func (s Source) String() string {
	switch s {
	case SourcePatternMatch:
		return "pattern-match"
	case SourceWeightedScore:
		return "weighted-score"
	case SourceContextBoost:
		return "context-boost"
	default:
		return "fallback"
	}
}

// =============================================================================
// INTENT RESULT
// =============================================================================

// SlotNotIdentified is the display-safe sentinel used when an intent
// requires a slot but none could be extracted.
const SlotNotIdentified = "não identificado"

// Intent is a classification result. Ephemeral, recomputed per
// submission, never persisted.
type Intent struct {
	Type       Type
	Confidence float64
	Slot       string
	Source     Source
}

// fallbackIntent is the result used whenever no strategy can commit.
func fallbackIntent() Intent {
	return Intent{
		Type:       TypeGeneral,
		Confidence: 0.5,
		Source:     SourceFallback,
	}
}
