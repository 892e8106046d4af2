// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxRunes int
		want     string
	}{
		{"shorter_than_max", "redação", 10, "redação"},
		{"exactly_max", "prova", 5, "prova"},
		{"truncated_with_ellipsis", "fotossíntese explicada", 10, "fotossí..."},
		{"accented_runes_not_split", "atenção", 6, "ate..."},
		{"tiny_max_no_ellipsis", "simulado", 2, "si"},
		{"zero_max", "simulado", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateRunes(tt.input, tt.maxRunes))
		})
	}
}

func TestTruncateWidth_double_width(t *testing.T) {
	// Each CJK rune occupies two columns
	assert.Equal(t, "日本", TruncateWidth("日本", 4))
	got := TruncateWidth("日本語テキスト", 8)
	assert.LessOrEqual(t, StringWidth(got), 8)
	assert.Contains(t, got, "...")

	// Plain ASCII behaves like rune truncation
	assert.Equal(t, "abc...", TruncateWidth("abcdefgh", 6))
}

func TestStringWidth(t *testing.T) {
	assert.Equal(t, 5, StringWidth("prova"))
	assert.Equal(t, 4, StringWidth("日本"))
}

func TestPadRight(t *testing.T) {
	assert.Equal(t, "abc  ", PadRight("abc", 5))
	assert.Equal(t, "abc", PadRight("abc", 2))
}

func TestAtomicWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.txt")

	require.NoError(t, AtomicWriteFile(path, []byte("conteúdo"), 0600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "conteúdo", string(data))

	// Overwrite replaces atomically
	require.NoError(t, AtomicWriteFile(path, []byte("novo"), 0600))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "novo", string(data))
}
