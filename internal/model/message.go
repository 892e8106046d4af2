// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hubeduai/tutor-tui/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Tutor"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// ATTACHMENT TYPES
// =============================================================================

// FileRef references a file attached to a user message.
type FileRef struct {
	Name string `json:"name"`
	Size int64  `json:"size,omitempty"`
	MIME string `json:"mime,omitempty"`
}

// ImageRef references an image attached to a user message.
type ImageRef struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single turn in a conversation.
//
// While IsStreaming is true the content may only grow; once the stream is
// finalized the message is immutable. The streaming fields are guarded by
// mu: a superseded stream may still be appending from its reader goroutine
// when the replacing send freezes the message.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content
	Content string `json:"content"`

	// Streaming state (not persisted)
	// PERFORMANCE: strings.Builder avoids quadratic allocations during streaming
	mu            sync.Mutex      `json:"-"`
	IsStreaming   bool            `json:"-"`
	streamContent strings.Builder `json:"-"`

	// Token statistics
	TokenCount int `json:"token_count,omitempty"`

	// Generation metadata (for assistant messages, from response headers)
	Provider      string `json:"provider,omitempty"`
	Model         string `json:"model,omitempty"`
	Module        string `json:"module,omitempty"`
	Complexity    string `json:"complexity,omitempty"`
	RoutingTier   string `json:"routing_tier,omitempty"`
	RoutingReason string `json:"routing_reason,omitempty"`

	// Attachments (for user messages)
	Attachment *FileRef  `json:"attachment,omitempty"`
	Image      *ImageRef `json:"image,omitempty"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates a new empty assistant message in streaming state.
// This is the placeholder appended before the first byte of a response arrives,
// so the UI always has a response slot to render into.
func NewAssistantMessage() *Message {
	return &Message{
		ID:          uuid.NewString(),
		Role:        RoleAssistant,
		Timestamp:   time.Now(),
		IsStreaming: true,
	}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) *Message {
	return NewMessage(RoleSystem, content)
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// AppendChunk appends a decoded chunk to a streaming message.
// A no-op once the message has been finalized or frozen, so a
// superseded reader racing the freeze cannot resurrect content.
func (m *Message) AppendChunk(chunk string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IsStreaming {
		m.streamContent.WriteString(chunk)
	}
}

// FinalizeStream completes streaming, merging accumulated content and
// stamping the final token count. Calling it twice is harmless.
func (m *Message) FinalizeStream(tokenCount int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.IsStreaming {
		return
	}

	m.Content = m.streamContent.String()
	m.streamContent.Reset()
	m.IsStreaming = false
	m.TokenCount = tokenCount
}

// AbortStream freezes a streaming message without discarding partial content.
// Used on terminal failure so the user keeps whatever arrived.
func (m *Message) AbortStream() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.IsStreaming {
		return
	}
	m.Content = m.streamContent.String()
	m.streamContent.Reset()
	m.IsStreaming = false
}

// GetDisplayContent returns the content to display (streaming or final).
func (m *Message) GetDisplayContent() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IsStreaming {
		return m.streamContent.String()
	}
	return m.Content
}

// Snapshot returns a copy of the message that is safe to read while the
// original is still being streamed into. The copy carries the streaming
// content accumulated so far; the two diverge from that point on.
func (m *Message) Snapshot() *Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := &Message{
		ID:            m.ID,
		Role:          m.Role,
		Timestamp:     m.Timestamp,
		Content:       m.Content,
		IsStreaming:   m.IsStreaming,
		TokenCount:    m.TokenCount,
		Provider:      m.Provider,
		Model:         m.Model,
		Module:        m.Module,
		Complexity:    m.Complexity,
		RoutingTier:   m.RoutingTier,
		RoutingReason: m.RoutingReason,
		Attachment:    m.Attachment,
		Image:         m.Image,
	}
	if m.IsStreaming {
		cp.streamContent.WriteString(m.streamContent.String())
	}
	return cp
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	return util.TruncateRunes(m.GetDisplayContent(), maxLen)
}

// IsEmpty returns true if the message has no content.
func (m *Message) IsEmpty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Content) == 0 && m.streamContent.Len() == 0
}

// EstimateTokens gives a rough estimate of token count.
// Uses the approximation of ~4 characters per token.
func (m *Message) EstimateTokens() int {
	content := m.GetDisplayContent()
	return (len(content) + 3) / 4
}

// SetMetadata attaches response metadata to the message. Called once per
// stream as soon as headers are available, not deferred to completion, so
// the UI can show which module answered before the text finishes.
func (m *Message) SetMetadata(provider, model, module, complexity, tier, reason string) {
	m.Provider = provider
	m.Model = model
	m.Module = module
	m.Complexity = complexity
	m.RoutingTier = tier
	m.RoutingReason = reason
}
