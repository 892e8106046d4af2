// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"strings"

	"github.com/hubeduai/tutor-tui/internal/intent"
	"github.com/hubeduai/tutor-tui/internal/model"
	"github.com/hubeduai/tutor-tui/internal/util"
)

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "carregando..."
	}

	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.bannerView())
	b.WriteString("\n")
	b.WriteString(inputBoxStyle.Width(m.width - 2).Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter envia · ctrl+n nova conversa · esc sai"))

	return b.String()
}

// headerView renders the title bar with the conversation title.
func (m *Model) headerView() string {
	title := "HubEdu Tutor"
	if conv := m.orch.Active(); conv != nil && conv.GetTitle() != "" {
		title = fmt.Sprintf("HubEdu Tutor · %s", conv.GetTitle())
	}
	return headerStyle.Render(util.TruncateWidth(title, m.width-2))
}

// bannerView renders the resolved-intent line, the spinner while a
// response streams, or the last error.
func (m *Model) bannerView() string {
	if m.err != nil {
		return errorStyle.Render(util.TruncateWidth("erro: "+m.err.Error(), m.width-2))
	}
	if m.sending {
		return intentBannerStyle.Render(m.spin.View() + " pensando...")
	}
	if m.showIntent && m.lastIntent != nil {
		line := formatIntent(*m.lastIntent)
		if via := m.answeredBy(); via != "" {
			line += " · via " + via
		}
		return intentBannerStyle.Render(util.TruncateWidth(line, m.width-2))
	}
	return ""
}

// answeredBy returns the module the server reported for the last
// completed answer, or "" when there is none yet.
func (m *Model) answeredBy() string {
	conv := m.orch.Active()
	if conv == nil {
		return ""
	}
	last := conv.GetLastAssistantMessage()
	if last == nil {
		return ""
	}
	snap := last.Snapshot()
	if snap.IsStreaming || snap.Module == "" || snap.Module == "auto" {
		return ""
	}
	return snap.Module
}

// formatIntent renders an intent as "◆ exam-mode · 85%" with the slot
// appended when one was extracted.
func formatIntent(in intent.Intent) string {
	s := fmt.Sprintf("◆ %s · %d%%", in.Type, int(in.Confidence*100))
	if in.Slot != "" && in.Slot != intent.SlotNotIdentified {
		s += " · " + in.Slot
	}
	return s
}

// refreshViewport re-renders the conversation into the viewport. The
// render walks a clone so the send goroutine can keep streaming into
// the live messages underneath it.
func (m *Model) refreshViewport() {
	conv := m.orch.Active()
	if conv == nil {
		m.viewport.SetContent(helpStyle.Render("Envie uma mensagem para começar."))
		return
	}
	m.viewport.SetContent(m.renderConversation(conv.Clone()))
}

// renderConversation renders every message in order. Finalized tutor
// messages go through the markdown renderer; streaming ones render as
// plain text with a cursor so partial markdown never flickers.
func (m *Model) renderConversation(conv *model.Conversation) string {
	var b strings.Builder

	for _, msg := range conv.Messages {
		if msg.IsEmpty() && !msg.IsStreaming {
			continue
		}

		b.WriteString(roleLabel(msg.Role))
		b.WriteString("\n")

		content := msg.GetDisplayContent()
		switch {
		case msg.IsStreaming:
			b.WriteString(content)
			b.WriteString("▌")
		case msg.Role == model.RoleAssistant && m.renderer != nil:
			if rendered, err := m.renderer.Render(content); err == nil {
				b.WriteString(strings.TrimRight(rendered, "\n"))
			} else {
				b.WriteString(content)
			}
		default:
			b.WriteString(content)
		}
		b.WriteString("\n\n")
	}

	return b.String()
}

func roleLabel(role model.Role) string {
	switch role {
	case model.RoleUser:
		return userLabelStyle.Render(role.DisplayName())
	case model.RoleAssistant:
		return tutorLabelStyle.Render(role.DisplayName())
	default:
		return systemLabelStyle.Render(role.DisplayName())
	}
}
