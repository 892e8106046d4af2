// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package analytics

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubeduai/tutor-tui/internal/nav"
)

func makeRecord(i int) nav.Record {
	return nav.Record{
		ModuleID:   nav.ModuleExamMode,
		Kind:       nav.EventEnter,
		Timestamp:  time.Now(),
		UserRole:   "student",
		SchoolPlan: fmt.Sprintf("plan-%d", i),
	}
}

// =============================================================================
// MEMORY STORE TESTS
// =============================================================================

func TestMemoryStore_append_and_recent(t *testing.T) {
	store := NewMemoryStore()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Append(makeRecord(i)))
	}

	recent, err := store.Recent(3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	// Oldest first within the window
	assert.Equal(t, "plan-2", recent[0].SchoolPlan)
	assert.Equal(t, "plan-4", recent[2].SchoolPlan)
}

func TestMemoryStore_bounded_to_max_records(t *testing.T) {
	store := NewMemoryStore()

	for i := 0; i < nav.MaxRecords+20; i++ {
		require.NoError(t, store.Append(makeRecord(i)))
	}

	assert.Equal(t, nav.MaxRecords, store.Len())

	recent, err := store.Recent(nav.MaxRecords)
	require.NoError(t, err)
	// The 20 oldest were evicted
	assert.Equal(t, "plan-20", recent[0].SchoolPlan)
}

func TestMemoryStore_recent_more_than_stored(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Append(makeRecord(0)))

	recent, err := store.Recent(10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

// =============================================================================
// SQLITE STORE TESTS
// =============================================================================

func TestSQLiteStore_roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analytics.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	rec := nav.Record{
		ModuleID:          nav.ModuleEssayGrading,
		Kind:              nav.EventExit,
		Timestamp:         time.Now().Truncate(time.Millisecond),
		UserRole:          "student",
		SchoolPlan:        "premium",
		SessionDurationMs: 42_000,
	}
	require.NoError(t, store.Append(rec))

	recent, err := store.Recent(1)
	require.NoError(t, err)
	require.Len(t, recent, 1)

	got := recent[0]
	assert.Equal(t, nav.ModuleEssayGrading, got.ModuleID)
	assert.Equal(t, nav.EventExit, got.Kind)
	assert.Equal(t, "student", got.UserRole)
	assert.Equal(t, "premium", got.SchoolPlan)
	assert.Equal(t, int64(42_000), got.SessionDurationMs)
	assert.Equal(t, int64(42), got.DwellSeconds())
}

func TestSQLiteStore_trims_to_max_records(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analytics.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	for i := 0; i < nav.MaxRecords+10; i++ {
		require.NoError(t, store.Append(makeRecord(i)))
	}

	recent, err := store.Recent(nav.MaxRecords * 2)
	require.NoError(t, err)
	assert.Len(t, recent, nav.MaxRecords)
	assert.Equal(t, "plan-10", recent[0].SchoolPlan)
}

func TestSQLiteStore_persists_across_reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analytics.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(makeRecord(1)))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	recent, err := reopened.Recent(10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}
