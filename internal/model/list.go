// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "sync"

// MaxConversations bounds the in-memory conversation list.
const MaxConversations = 50

// =============================================================================
// CONVERSATION LIST
// =============================================================================

// ConversationList holds the ordered set of known conversations,
// newest first. Safe for concurrent use.
type ConversationList struct {
	mu    sync.RWMutex
	items []*Conversation
}

// NewConversationList creates an empty conversation list.
func NewConversationList() *ConversationList {
	return &ConversationList{
		items: make([]*Conversation, 0),
	}
}

// Upsert inserts a conversation, or updates it in place if a conversation
// with the same ID already exists. Repeated upserts of the same
// conversation never create duplicates.
func (l *ConversationList) Upsert(conv *Conversation) {
	if conv == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for i, existing := range l.items {
		if existing.ID == conv.ID {
			l.items[i] = conv
			return
		}
	}

	// New conversations go to the front
	l.items = append([]*Conversation{conv}, l.items...)
	if len(l.items) > MaxConversations {
		l.items = l.items[:MaxConversations]
	}
}

// Get returns the conversation with the given ID, or nil.
func (l *ConversationList) Get(id string) *Conversation {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, conv := range l.items {
		if conv.ID == id {
			return conv
		}
	}
	return nil
}

// Remove deletes a conversation by ID. Returns true if it was present.
func (l *ConversationList) Remove(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, conv := range l.items {
		if conv.ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of conversations.
func (l *ConversationList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Metas returns listing metadata for all conversations, newest first.
func (l *ConversationList) Metas() []ConversationMeta {
	l.mu.RLock()
	defer l.mu.RUnlock()

	metas := make([]ConversationMeta, 0, len(l.items))
	for _, conv := range l.items {
		metas = append(metas, conv.GetMeta())
	}
	return metas
}
