// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package intent

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks removes combining marks after NFD decomposition, so
// "redação" and "redacao" normalize to the same form.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lower-cases the input and strips diacritics. All matching
// runs against normalized text; slot extraction runs against the
// original so extracted values keep their casing and accents.
func Normalize(s string) string {
	out, _, err := transform.String(stripMarks, strings.ToLower(s))
	if err != nil {
		// Transform failures only occur on invalid UTF-8; fall back to
		// the lower-cased input rather than dropping the message.
		return strings.ToLower(s)
	}
	return out
}
