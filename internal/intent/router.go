// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package intent

import "strings"

// =============================================================================
// CONTEXT-AWARE ROUTING
// =============================================================================

// contextWindow is how many recent turns the router inspects when the
// base classification is unsure.
const contextWindow = 3

// boostConfidence is assigned to context-boosted results. It clears
// the threshold but stays below a direct keyword hit, so the boost is
// visible in the result.
const boostConfidence = 0.7

// confidenceThreshold is the score below which the router consults
// conversation context.
const confidenceThreshold = 0.6

// Cue terms for context boosting, in normalized form.
var (
	examTerms  = []string{"simulado", "enem", "vestibular", "prova", "questao", "gabarito"}
	essayTerms = []string{"redacao", "dissertativ", "argumentativ", "corrigir", "tese"}
	topicTerms = []string{"explica", "aula", "materia", "como funciona", "duvida", "estudar"}
)

// Route classifies text with conversation context as a fallback.
//
// The weighted classification is computed first; a confident result
// (>= 0.6) is returned unchanged. Otherwise the last three turns are
// inspected for exam, essay, or topic cues, in that order, and the
// intent is boosted to 0.7 when one applies. Short follow-ups like
// "e a segunda parte?" classify as general on their own but stay in
// the module the student was just using. The router never raises
// confidence it cannot justify: with no cues the low-confidence
// result passes through as-is.
func Route(text string, recentTurns []string) Intent {
	result := ClassifyWeighted(text)
	if result.Confidence >= confidenceThreshold {
		return result
	}

	if len(recentTurns) == 0 {
		return result
	}

	start := 0
	if len(recentTurns) > contextWindow {
		start = len(recentTurns) - contextWindow
	}
	context := Normalize(strings.Join(recentTurns[start:], " "))

	switch {
	case containsAny(context, examTerms) && !containsAny(context, essayTerms):
		return Intent{Type: TypeExamMode, Confidence: boostConfidence, Source: SourceContextBoost}
	case containsAny(context, essayTerms):
		return Intent{Type: TypeEssayGrading, Confidence: boostConfidence, Source: SourceContextBoost}
	case containsAny(context, topicTerms):
		return Intent{Type: TypeTopicExplainer, Confidence: boostConfidence, Source: SourceContextBoost}
	}

	return result
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
