// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrCancelled indicates the request was superseded by a newer send
	// on the same conversation. Not a failure from the user's view.
	ErrCancelled = errors.New("request cancelled")

	// ErrNoText indicates an empty submission.
	ErrNoText = errors.New("message text is empty")
)

// APIError represents a non-2xx response from the generation endpoint.
// Application errors are terminal and never retried.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("generation endpoint error (HTTP %d): %s", e.Status, e.Message)
}

// StreamError represents an error that occurred mid-stream, preserving
// any partial content received before the failure.
type StreamError struct {
	Partial string
	Err     error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Partial != "" {
		return fmt.Sprintf("stream error (partial content received: %d chars): %v", len(e.Partial), e.Err)
	}
	return fmt.Sprintf("stream error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *StreamError) Unwrap() error {
	return e.Err
}
