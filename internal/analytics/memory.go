// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package analytics provides bounded stores for navigation records.
// Both implementations satisfy the nav.Store port and keep only the
// 100 most recent entries.
package analytics

import (
	"sync"

	"github.com/hubeduai/tutor-tui/internal/nav"
)

// =============================================================================
// IN-MEMORY STORE
// =============================================================================

// MemoryStore is a bounded in-memory ring of navigation records.
// Used as the default store and as the test fake.
type MemoryStore struct {
	mu      sync.Mutex
	records []nav.Record
	max     int
}

// NewMemoryStore creates an in-memory store bounded to nav.MaxRecords.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{max: nav.MaxRecords}
}

// Append adds a record, evicting the oldest when full.
func (s *MemoryStore) Append(rec nav.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	if len(s.records) > s.max {
		s.records = s.records[len(s.records)-s.max:]
	}
	return nil
}

// Recent returns up to n most recent records, oldest first.
func (s *MemoryStore) Recent(n int) ([]nav.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n > len(s.records) {
		n = len(s.records)
	}
	out := make([]nav.Record, n)
	copy(out, s.records[len(s.records)-n:])
	return out, nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
