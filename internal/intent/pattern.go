// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package intent

import (
	"regexp"
	"strings"
)

// =============================================================================
// PATTERN RULES
// =============================================================================

// patternRule binds an intent to its match patterns. Patterns run
// against normalized text (lower-cased, diacritics stripped), so they
// are written accent-free.
type patternRule struct {
	intentType Type
	patterns   []*regexp.Regexp
	confidence float64
	hasSlot    bool
}

// patternRules is evaluated in order and the first match wins.
// ORDER IS PRIORITY: specific utility intents (weather, translator,
// calculator) come before the broad study intents, and exam/essay come
// before topic-explainer, so "simulado de matematica" routes to the
// simulator rather than the explainer.
var patternRules = []patternRule{
	{
		intentType: TypeWeather,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bclima\b`),
			regexp.MustCompile(`\btempo (?:em|de|do|da|no|na)\b`),
			regexp.MustCompile(`\bprevisao\b`),
			regexp.MustCompile(`vai chover`),
		},
		confidence: 0.9,
		hasSlot:    true,
	},
	{
		intentType: TypeTranslator,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\btraduz[a-z]*\b`),
			regexp.MustCompile(`\btraducao\b`),
			regexp.MustCompile(`como (?:se )?diz .* em (?:ingles|espanhol|frances)`),
		},
		confidence: 0.9,
		hasSlot:    true,
	},
	{
		intentType: TypeCalculator,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bcalculadora\b`),
			regexp.MustCompile(`\bcalcul[ae]r?\b`),
			regexp.MustCompile(`quanto (?:e|da|vale) \d`),
		},
		confidence: 0.85,
	},
	{
		intentType: TypeTimer,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\btimer\b`),
			regexp.MustCompile(`\bcronometro\b`),
			regexp.MustCompile(`\bpomodoro\b`),
			regexp.MustCompile(`marca[r]? \d+ minutos`),
		},
		confidence: 0.85,
	},
	{
		intentType: TypeCalendar,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bcalendario\b`),
			regexp.MustCompile(`\bagenda\b`),
			regexp.MustCompile(`datas? d[aeo] (?:prova|inscricao|enem)`),
		},
		confidence: 0.85,
	},
	{
		intentType: TypeBookSearch,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\blivros?\b`),
			regexp.MustCompile(`indica[a-z]* (?:de )?leitura`),
			regexp.MustCompile(`obras? literari`),
		},
		confidence: 0.8,
		hasSlot:    true,
	},
	{
		intentType: TypeNewsSearch,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bnoticias?\b`),
			regexp.MustCompile(`\batualidades\b`),
		},
		confidence: 0.8,
		hasSlot:    true,
	},
	{
		intentType: TypeGifSearch,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bgifs?\b`),
			regexp.MustCompile(`\bfigurinhas?\b`),
		},
		confidence: 0.8,
		hasSlot:    true,
	},
	{
		intentType: TypeWorldBank,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bpib\b`),
			regexp.MustCompile(`banco mundial`),
			regexp.MustCompile(`indicadores? (?:economicos?|d[oe] pais)`),
		},
		confidence: 0.8,
		hasSlot:    true,
	},
	{
		intentType: TypeExamMode,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bsimulados?\b`),
			regexp.MustCompile(`\benem\b`),
			regexp.MustCompile(`\bvestibular\b`),
			regexp.MustCompile(`questo(?:es|ao) de prova`),
		},
		confidence: 0.9,
	},
	{
		intentType: TypeEssayGrading,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bredac(?:ao|oes)\b`),
			regexp.MustCompile(`corrig[a-z]* (?:meu|minha|o|a) texto`),
			regexp.MustCompile(`\bdissertativ[oa]\b`),
			regexp.MustCompile(`nota da redacao`),
		},
		confidence: 0.9,
	},
	{
		intentType: TypeTopicExplainer,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\bexplic[a-z]+\b`),
			regexp.MustCompile(`o que (?:e|sao|significa)`),
			regexp.MustCompile(`como funciona`),
			regexp.MustCompile(`\baula (?:de|sobre)\b`),
			regexp.MustCompile(`me ensin[ae]`),
		},
		confidence: 0.8,
		hasSlot:    true,
	},
}

// ClassifyPattern runs the ordered first-match pattern strategy.
// No match returns the general fallback at confidence 0.5.
func ClassifyPattern(text string) Intent {
	normalized := Normalize(text)

	for _, rule := range patternRules {
		for _, re := range rule.patterns {
			if re.MatchString(normalized) {
				result := Intent{
					Type:       rule.intentType,
					Confidence: rule.confidence,
					Source:     SourcePatternMatch,
				}
				if rule.hasSlot {
					result.Slot = ExtractSlot(rule.intentType, text)
				}
				return result
			}
		}
	}

	return fallbackIntent()
}

// =============================================================================
// SLOT EXTRACTION
// =============================================================================

// slotPatterns capture the topic/city/search term for slot-bearing
// intents. They run against the ORIGINAL text so the extracted value
// keeps its casing and accents. Ordered: first capture wins.
var slotPatterns = map[Type][]*regexp.Regexp{
	TypeWeather: {
		regexp.MustCompile(`(?i)(?:clima|tempo|previsão|previsao)\s+(?:em|de|do|da|no|na)\s+([\p{L}][\p{L} ]*)`),
		regexp.MustCompile(`(?i)(?:vai chover)\s+(?:em|no|na)\s+([\p{L}][\p{L} ]*)`),
	},
	TypeTranslator: {
		regexp.MustCompile(`(?i)traduz[a-zê]*\s+(?:a palavra\s+|a frase\s+)?"?([^"?.!]+)"?`),
		regexp.MustCompile(`(?i)como (?:se )?diz\s+"?([^"?.!]+?)"?\s+em\s+\p{L}+`),
	},
	TypeTopicExplainer: {
		regexp.MustCompile(`(?i)expli(?:ca|que)\s+(?:o que (?:é|e|são|sao)\s+)?(?:sobre\s+)?([\p{L}0-9][\p{L}0-9 ]*)`),
		regexp.MustCompile(`(?i)o que (?:é|e|são|sao|significa)\s+([\p{L}0-9][\p{L}0-9 ]*)`),
		regexp.MustCompile(`(?i)aula (?:de|sobre)\s+([\p{L}0-9][\p{L}0-9 ]*)`),
		regexp.MustCompile(`(?i)me ensin[ae]\s+(?:sobre\s+)?([\p{L}0-9][\p{L}0-9 ]*)`),
	},
	TypeBookSearch: {
		regexp.MustCompile(`(?i)livros?\s+(?:de|do|da|sobre)\s+([\p{L}0-9][\p{L}0-9 ]*)`),
	},
	TypeNewsSearch: {
		regexp.MustCompile(`(?i)not[íi]cias?\s+(?:de|do|da|sobre)\s+([\p{L}0-9][\p{L}0-9 ]*)`),
	},
	TypeGifSearch: {
		regexp.MustCompile(`(?i)gifs?\s+(?:de|do|da|sobre)\s+([\p{L}0-9][\p{L}0-9 ]*)`),
	},
	TypeWorldBank: {
		regexp.MustCompile(`(?i)(?:pib|indicadores?)\s+(?:de|do|da)\s+([\p{L}][\p{L} ]*)`),
	},
}

// ExtractSlot pulls the slot value for an intent from the original
// (non-normalized) text. Returns SlotNotIdentified when no capture
// pattern matches, never an empty string.
func ExtractSlot(t Type, original string) string {
	for _, re := range slotPatterns[t] {
		if m := re.FindStringSubmatch(original); m != nil {
			slot := strings.TrimSpace(m[1])
			if slot != "" {
				return slot
			}
		}
	}
	return SlotNotIdentified
}
