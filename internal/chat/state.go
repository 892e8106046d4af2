// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

// =============================================================================
// SEND STATE MACHINE
// =============================================================================

// State tracks one send call through its lifecycle:
// idle -> requesting -> retrying(n) -> streaming -> finalizing -> done,
// with failed reachable from requesting, retrying, and streaming.
type State int

const (
	StateIdle State = iota
	StateRequesting
	StateRetrying
	StateStreaming
	StateFinalizing
	StateDone
	StateFailed
)

// String returns the human-readable name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateRetrying:
		return "retrying"
	case StateStreaming:
		return "streaming"
	case StateFinalizing:
		return "finalizing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal returns true for done and failed.
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}
