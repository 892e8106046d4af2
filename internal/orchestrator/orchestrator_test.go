// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubeduai/tutor-tui/internal/analytics"
	"github.com/hubeduai/tutor-tui/internal/chat"
	"github.com/hubeduai/tutor-tui/internal/intent"
	"github.com/hubeduai/tutor-tui/internal/nav"
)

type stubTransport struct {
	mu   sync.Mutex
	fail bool
	body string
}

func (t *stubTransport) Do(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fail {
		return nil, errors.New("connection refused")
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(t.body)),
	}, nil
}

// transportFunc adapts a function to chat.Doer.
type transportFunc func(*http.Request) (*http.Response, error)

func (f transportFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

// blockingBody yields one chunk, then holds the stream open until
// released.
type blockingBody struct {
	sent    bool
	release chan struct{}
}

func (b *blockingBody) Read(p []byte) (int, error) {
	if !b.sent {
		b.sent = true
		return copy(p, "parte um"), nil
	}
	<-b.release
	return 0, io.EOF
}

func (b *blockingBody) Close() error { return nil }

func newTestOrchestrator(transport chat.Doer, store nav.Store) (*Orchestrator, *nav.Controller) {
	client := chat.NewClient(chat.Config{
		Transport:         transport,
		RequestsPerSecond: 1000,
	})
	controller := nav.NewController(nav.Config{Store: store})
	return New(client, controller, nil), controller
}

func TestSubmit_routes_intent_and_streams(t *testing.T) {
	transport := &stubTransport{body: "O simulado tem 90 questões."}
	store := analytics.NewMemoryStore()
	orch, controller := newTestOrchestrator(transport, store)

	var resolved []intent.Intent
	orch.OnIntentResolved = func(in intent.Intent) { resolved = append(resolved, in) }

	result, err := orch.Submit(context.Background(), "quero um simulado do enem")
	require.NoError(t, err)
	assert.Equal(t, "O simulado tem 90 questões.", result.FullText)

	require.Len(t, resolved, 1)
	assert.Equal(t, intent.TypeExamMode, resolved[0].Type)
	assert.Equal(t, nav.ModuleExamMode, controller.Current())

	// Enter record was written for the routed module
	recent, err := store.Recent(10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, nav.ModuleExamMode, recent[0].ModuleID)
}

func TestSubmit_routes_while_response_still_streaming(t *testing.T) {
	release := make(chan struct{})
	transport := transportFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     make(http.Header),
			Body:       &blockingBody{release: release},
		}, nil
	})
	orch, controller := newTestOrchestrator(transport, nil)

	resolved := make(chan intent.Intent, 1)
	orch.OnIntentResolved = func(in intent.Intent) { resolved <- in }

	done := make(chan error, 1)
	go func() {
		_, err := orch.Submit(context.Background(), "quero um simulado do enem")
		done <- err
	}()

	// The panel hears about the route while the body is still open
	select {
	case in := <-resolved:
		assert.Equal(t, intent.TypeExamMode, in.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("intent not delivered while the response was streaming")
	}
	assert.Equal(t, nav.ModuleExamMode, controller.Current())

	close(release)
	require.NoError(t, <-done)
}

func TestSubmit_chat_error_propagates_intent_still_resolves(t *testing.T) {
	transport := &stubTransport{fail: true}
	orch, controller := newTestOrchestrator(transport, nil)

	var resolved []intent.Intent
	orch.OnIntentResolved = func(in intent.Intent) { resolved = append(resolved, in) }

	_, err := orch.Submit(context.Background(), "corrige minha redação")
	require.Error(t, err)

	// Routing never errors and still reaches the panels
	require.Len(t, resolved, 1)
	assert.Equal(t, intent.TypeEssayGrading, resolved[0].Type)
	assert.Equal(t, nav.ModuleEssayGrading, controller.Current())
}

func TestSubmit_general_intent_keeps_current_module(t *testing.T) {
	transport := &stubTransport{body: "olá!"}
	orch, controller := newTestOrchestrator(transport, nil)

	_, err := orch.Submit(context.Background(), "bom dia")
	require.NoError(t, err)

	// General maps to auto, which is the controller's initial state
	assert.Equal(t, nav.ModuleAuto, controller.Current())
}

func TestSubmit_context_boost_uses_prior_turns(t *testing.T) {
	transport := &stubTransport{body: "claro!"}
	orch, controller := newTestOrchestrator(transport, nil)

	_, err := orch.Submit(context.Background(), "quero fazer um simulado do enem")
	require.NoError(t, err)

	var last intent.Intent
	orch.OnIntentResolved = func(in intent.Intent) { last = in }

	// Short follow-up is ambiguous on its own; the prior exam turn
	// keeps the student in exam mode.
	_, err = orch.Submit(context.Background(), "e a segunda parte?")
	require.NoError(t, err)

	assert.Equal(t, intent.TypeExamMode, last.Type)
	assert.Equal(t, intent.SourceContextBoost, last.Source)
	assert.Equal(t, nav.ModuleExamMode, controller.Current())
}

func TestSubmit_creates_conversation_lazily(t *testing.T) {
	transport := &stubTransport{body: "oi"}
	orch, _ := newTestOrchestrator(transport, nil)

	assert.Nil(t, orch.Active())

	_, err := orch.Submit(context.Background(), "olá")
	require.NoError(t, err)

	conv := orch.Active()
	require.NotNil(t, conv)
	assert.Equal(t, 2, conv.MessageCount())

	// The same conversation carries the next turn
	_, err = orch.Submit(context.Background(), "tudo bem?")
	require.NoError(t, err)
	assert.Same(t, conv, orch.Active())
	assert.Equal(t, 4, conv.MessageCount())
}

func TestNewConversation_replaces_active(t *testing.T) {
	transport := &stubTransport{body: "oi"}
	orch, _ := newTestOrchestrator(transport, nil)

	_, err := orch.Submit(context.Background(), "olá")
	require.NoError(t, err)
	first := orch.Active()

	second := orch.NewConversation()
	assert.NotSame(t, first, second)
	assert.Same(t, second, orch.Active())
}
