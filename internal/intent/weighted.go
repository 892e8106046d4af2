// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package intent

import "strings"

// =============================================================================
// WEIGHTED KEYWORD SCORING
// =============================================================================

// keywordWeight is one scoring keyword. Keywords are written in
// normalized form (lower-case, no diacritics) and matched as
// substrings of the normalized text.
type keywordWeight struct {
	keyword string
	weight  float64
}

// weightedEntry groups the keywords for one intent.
type weightedEntry struct {
	intentType Type
	keywords   []keywordWeight
	hasSlot    bool
}

// weightedEntries is an explicit ordered slice rather than a map:
// the argmax tie break resolves to the EARLIEST entry, so enumeration
// order must be fixed and deterministic.
var weightedEntries = []weightedEntry{
	{
		intentType: TypeExamMode,
		keywords: []keywordWeight{
			{"simulado", 6},
			{"enem", 5},
			{"vestibular", 5},
			{"prova", 3},
			{"questao", 2},
			{"questoes", 2},
			{"gabarito", 3},
			{"alternativa", 2},
		},
	},
	{
		intentType: TypeEssayGrading,
		keywords: []keywordWeight{
			{"redacao", 6},
			{"corrigir", 4},
			{"correcao", 4},
			{"dissertativ", 4},
			{"argumentativ", 3},
			{"tese", 2},
			{"nota", 1},
		},
	},
	{
		intentType: TypeWeather,
		keywords: []keywordWeight{
			{"clima", 6},
			{"previsao", 5},
			{"chover", 4},
			{"temperatura", 4},
		},
		hasSlot: true,
	},
	{
		intentType: TypeTranslator,
		keywords: []keywordWeight{
			{"traduz", 6},
			{"traducao", 6},
			{"ingles", 2},
			{"espanhol", 2},
		},
		hasSlot: true,
	},
	{
		intentType: TypeCalculator,
		keywords: []keywordWeight{
			{"calculadora", 6},
			{"calcular", 5},
			{"calcule", 5},
			{"porcentagem", 3},
		},
	},
	{
		intentType: TypeCalendar,
		keywords: []keywordWeight{
			{"calendario", 6},
			{"agenda", 4},
			{"inscricao", 3},
			{"cronograma", 4},
		},
	},
	{
		intentType: TypeTimer,
		keywords: []keywordWeight{
			{"timer", 6},
			{"cronometro", 6},
			{"pomodoro", 6},
			{"minutos", 2},
		},
	},
	{
		intentType: TypeBookSearch,
		keywords: []keywordWeight{
			{"livro", 5},
			{"leitura", 3},
			{"literatura", 3},
			{"obra", 2},
		},
		hasSlot: true,
	},
	{
		intentType: TypeNewsSearch,
		keywords: []keywordWeight{
			{"noticia", 5},
			{"atualidades", 4},
			{"jornal", 3},
		},
		hasSlot: true,
	},
	{
		intentType: TypeGifSearch,
		keywords: []keywordWeight{
			{"gif", 6},
			{"figurinha", 5},
		},
		hasSlot: true,
	},
	{
		intentType: TypeWorldBank,
		keywords: []keywordWeight{
			{"pib", 5},
			{"banco mundial", 6},
			{"indicador", 3},
		},
		hasSlot: true,
	},
	{
		intentType: TypeTopicExplainer,
		keywords: []keywordWeight{
			{"explica", 5},
			{"explique", 5},
			{"o que e", 3},
			{"como funciona", 4},
			{"aula", 3},
			{"ensina", 3},
			{"materia", 2},
			{"estudar", 2},
			{"duvida", 2},
		},
		hasSlot: true,
	},
}

// ClassifyWeighted runs the weighted-keyword strategy. Each intent is
// scored as the sum of weights of its keywords present in the
// normalized text; the argmax wins, with ties resolved to the earliest
// entry in weightedEntries. A zero maximum falls back to general at
// confidence 0.5; otherwise confidence = min(score/10, 1).
func ClassifyWeighted(text string) Intent {
	normalized := Normalize(text)

	var best *weightedEntry
	var bestScore float64

	for i := range weightedEntries {
		entry := &weightedEntries[i]
		score := 0.0
		for _, kw := range entry.keywords {
			if strings.Contains(normalized, kw.keyword) {
				score += kw.weight
			}
		}
		// Strict > keeps the earliest entry on ties
		if score > bestScore {
			bestScore = score
			best = entry
		}
	}

	if best == nil || bestScore == 0 {
		return fallbackIntent()
	}

	confidence := bestScore / 10
	if confidence > 1 {
		confidence = 1
	}

	result := Intent{
		Type:       best.intentType,
		Confidence: confidence,
		Source:     SourceWeightedScore,
	}
	if best.hasSlot {
		result.Slot = ExtractSlot(best.intentType, text)
	}
	return result
}
