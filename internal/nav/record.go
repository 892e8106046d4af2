// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package nav

import "time"

// =============================================================================
// ANALYTICS RECORDS
// =============================================================================

// EventKind distinguishes enter and exit records.
type EventKind string

const (
	EventEnter EventKind = "enter"
	EventExit  EventKind = "exit"
)

// Record is one analytics entry for a module transition.
// SessionDurationMs is only set on exit records.
type Record struct {
	ModuleID          ModuleID  `json:"module_id"`
	Kind              EventKind `json:"kind"`
	Timestamp         time.Time `json:"timestamp"`
	UserRole          string    `json:"user_role,omitempty"`
	SchoolPlan        string    `json:"school_plan,omitempty"`
	SessionDurationMs int64     `json:"session_duration_ms,omitempty"`
}

// DwellSeconds returns the dwell time in whole seconds.
func (r Record) DwellSeconds() int64 {
	return r.SessionDurationMs / 1000
}

// Store is the persistence port for analytics records. Implementations
// keep at most the 100 most recent entries and must tolerate
// fire-and-forget usage: callers never block on Append errors.
type Store interface {
	Append(rec Record) error
	Recent(n int) ([]Record, error)
	Close() error
}

// MaxRecords is the retention bound all Store implementations enforce.
const MaxRecords = 100
