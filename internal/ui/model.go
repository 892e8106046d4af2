// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui provides the terminal shell for tutortui: a text input,
// a scrollback viewport with glamour-rendered tutor messages, and a
// banner showing the resolved intent for each submission.
package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/hubeduai/tutor-tui/internal/intent"
	"github.com/hubeduai/tutor-tui/internal/orchestrator"
)

// =============================================================================
// MESSAGES
// =============================================================================

// submitDoneMsg signals that a Submit call returned.
type submitDoneMsg struct {
	err error
}

// intentMsg carries an intent resolved by the orchestrator.
type intentMsg struct {
	in intent.Intent
}

// streamTickMsg drives viewport refreshes while a response streams.
type streamTickMsg struct{}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat shell.
type Model struct {
	orch *orchestrator.Orchestrator

	input    textinput.Model
	viewport viewport.Model
	spin     spinner.Model
	renderer *glamour.TermRenderer

	intentCh   chan intent.Intent
	lastIntent *intent.Intent

	showIntent bool
	sending    bool
	err        error

	width  int
	height int
	ready  bool
}

// New creates the shell model and hooks the orchestrator's intent
// callback into the Bubble Tea message loop.
func New(orch *orchestrator.Orchestrator, showIntent bool) *Model {
	input := textinput.New()
	input.Placeholder = "Pergunte alguma coisa..."
	input.Focus()
	input.CharLimit = 4000

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(Purple)

	m := &Model{
		orch:       orch,
		input:      input,
		spin:       spin,
		intentCh:   make(chan intent.Intent, 8),
		showIntent: showIntent,
	}

	// Resolved intents arrive from the Submit goroutine; dropping one
	// when the channel is full only skips a banner update.
	orch.OnIntentResolved = func(in intent.Intent) {
		select {
		case m.intentCh <- in:
		default:
		}
	}

	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitIntent(m.intentCh))
}

// waitIntent blocks on the intent channel and re-arms after each
// delivery.
func waitIntent(ch chan intent.Intent) tea.Cmd {
	return func() tea.Msg {
		return intentMsg{in: <-ch}
	}
}

// streamTick refreshes the viewport at ~30fps while streaming.
func streamTick() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(time.Time) tea.Msg {
		return streamTickMsg{}
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.refreshViewport()
		m.ready = true

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+n":
			if !m.sending {
				m.orch.NewConversation()
				m.lastIntent = nil
				m.err = nil
				m.refreshViewport()
			}
			return m, nil
		case "enter":
			if cmd := m.submit(); cmd != nil {
				return m, cmd
			}
			return m, nil
		}

	case submitDoneMsg:
		m.sending = false
		m.err = msg.err
		m.refreshViewport()
		m.viewport.GotoBottom()

	case intentMsg:
		in := msg.in
		m.lastIntent = &in
		cmds = append(cmds, waitIntent(m.intentCh))

	case streamTickMsg:
		if m.sending {
			m.refreshViewport()
			m.viewport.GotoBottom()
			cmds = append(cmds, streamTick())
		}

	case spinner.TickMsg:
		if m.sending {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit kicks off a send for the current input text, or returns nil
// when there is nothing to send.
func (m *Model) submit() tea.Cmd {
	if m.sending {
		return nil
	}
	text := m.input.Value()
	if text == "" {
		return nil
	}

	m.sending = true
	m.err = nil
	m.input.Reset()

	orch := m.orch
	send := func() tea.Msg {
		_, err := orch.Submit(context.Background(), text)
		return submitDoneMsg{err: err}
	}

	return tea.Batch(send, m.spin.Tick, streamTick())
}

// resize recomputes layout and rebuilds the markdown renderer for the
// new wrap width.
func (m *Model) resize() {
	// header + banner + input box + help
	chrome := 6
	vh := m.height - chrome
	if vh < 3 {
		vh = 3
	}
	m.viewport.Width = m.width
	m.viewport.Height = vh
	m.input.Width = m.width - 6

	wrap := m.width - 4
	if wrap < 20 {
		wrap = 20
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err == nil {
		m.renderer = renderer
	}
}
