// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package orchestrator composes the streaming client, the intent
// router, and the navigation controller. On each submission the chat
// send and the intent routing run concurrently; neither subsystem
// knows about the other.
package orchestrator

import (
	"context"
	"strings"

	"github.com/hubeduai/tutor-tui/internal/chat"
	"github.com/hubeduai/tutor-tui/internal/intent"
	"github.com/hubeduai/tutor-tui/internal/model"
	"github.com/hubeduai/tutor-tui/internal/nav"
)

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// RouteFunc resolves an intent from text plus recent turns.
// Defaults to intent.Route.
type RouteFunc func(text string, recentTurns []string) intent.Intent

// Orchestrator owns the active conversation and wires submissions to
// the chat client and the intent router.
type Orchestrator struct {
	client *chat.Client
	nav    *nav.Controller
	route  RouteFunc

	// OnIntentResolved is the callback surface feature panels
	// subscribe to. Invoked once per submission as soon as routing
	// resolves, after the navigation controller has been notified.
	OnIntentResolved func(intent.Intent)

	active *model.Conversation
}

// New creates an orchestrator. A nil route falls back to intent.Route.
func New(client *chat.Client, controller *nav.Controller, route RouteFunc) *Orchestrator {
	if route == nil {
		route = intent.Route
	}
	return &Orchestrator{
		client: client,
		nav:    controller,
		route:  route,
	}
}

// Active returns the active conversation, or nil before the first
// submission.
func (o *Orchestrator) Active() *model.Conversation {
	return o.active
}

// NewConversation starts a fresh active conversation.
func (o *Orchestrator) NewConversation() *model.Conversation {
	o.active = model.NewConversation()
	return o.active
}

// Submit sends the text on the active conversation (created lazily)
// while routing its intent concurrently. The resolved intent goes to
// the navigation controller and the OnIntentResolved callback; chat
// errors propagate to the caller, routing never errors.
func (o *Orchestrator) Submit(ctx context.Context, text string) (*chat.Result, error) {
	if o.active == nil {
		o.active = model.NewConversation()
	}
	conv := o.active

	// Routing sees the turns before this submission
	turns := recentUserTurns(conv, 3)

	// Navigation and the panel callback fire as soon as routing
	// resolves, while the response is still streaming; the panel must
	// not wait for the full answer.
	routed := make(chan struct{})
	go func() {
		defer close(routed)
		resolved := o.route(text, turns)
		if o.nav != nil {
			o.nav.RequestModule(nav.ParseModuleID(resolved.Type.ModuleID()))
		}
		if o.OnIntentResolved != nil {
			o.OnIntentResolved(resolved)
		}
	}()

	result, err := o.client.Send(ctx, chat.Request{
		Conversation: conv,
		Text:         text,
		ModuleHint:   conv.Module,
	})

	<-routed
	return result, err
}

// recentUserTurns collects up to n most recent user message texts,
// oldest first.
func recentUserTurns(conv *model.Conversation, n int) []string {
	var turns []string
	for _, msg := range conv.Messages {
		if msg.Role == model.RoleUser && strings.TrimSpace(msg.Content) != "" {
			turns = append(turns, msg.Content)
		}
	}
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	return turns
}
