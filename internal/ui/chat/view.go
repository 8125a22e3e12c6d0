// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/showcase-chat/internal/model"
	"github.com/jeranaias/showcase-chat/internal/ui/styles"
	"github.com/jeranaias/showcase-chat/internal/util"
)

const (
	headerHeight = 2 // title row + border
	bottomHeight = 4 // indicator, error, input border, input
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := m.renderHeader()
	if !m.authenticated() {
		return lipgloss.JoinVertical(lipgloss.Left, header, m.renderLoginPrompt())
	}

	main := m.viewport.View()
	body := main
	if m.showSidebar() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(m.viewportHeight()), main)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		body,
		m.renderIndicator(),
		m.renderError(),
		m.renderInput(),
		m.help.View(m.keys),
	)
}

// =============================================================================
// LAYOUT HELPERS
// =============================================================================

func (m Model) showSidebar() bool {
	return m.theme.GetLayoutMode() != styles.LayoutNarrow
}

func (m Model) mainWidth() int {
	w := m.width
	if w <= 0 {
		w = 80
	}
	if m.showSidebar() {
		w -= m.sidebarWidth + 1
	}
	return max(20, w)
}

func (m Model) viewportHeight() int {
	h := m.height
	if h <= 0 {
		h = 24
	}
	helpHeight := lipgloss.Height(m.help.View(m.keys))
	return max(3, h-headerHeight-bottomHeight-helpHeight)
}

// refreshViewport re-renders the log. The view follows new content when
// follow is set or the user was already at the bottom.
func (m *Model) refreshViewport(follow bool) {
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderLog())
	if follow || atBottom {
		m.viewport.GotoBottom()
	}
}

// =============================================================================
// HEADER
// =============================================================================

func (m Model) renderHeader() string {
	width := max(20, m.width)

	left := m.theme.HeaderBrand.Render("AI chat")
	if !m.store.IsDraft() {
		title := model.DefaultTitle
		if i := model.IndexOf(m.store.List(), m.store.Active()); i >= 0 {
			title = m.store.List()[i].DisplayTitle()
		}
		left += "  " + m.theme.HeaderTitle.Render(util.TruncateWidth(title, width/2))
	}

	var right string
	if m.profile.Name != "" {
		right = m.theme.ProfileName.Render(m.profile.Name)
	}
	if m.profile.Email != "" {
		right += " " + m.theme.ProfileEmail.Render("<"+m.profile.Email+">")
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

// =============================================================================
// SIDEBAR
// =============================================================================

func (m Model) renderSidebar(height int) string {
	w := m.sidebarWidth
	itemWidth := w - 2

	newLabel := "+ New chat"
	var newLine string
	if m.store.IsDraft() {
		newLine = m.theme.SidebarItemActive.Width(itemWidth).Render(newLabel)
	} else {
		newLine = m.theme.SidebarNew.Width(itemWidth).Render(newLabel)
	}

	list := m.store.List()
	items := make([]string, 0, len(list))
	for i, c := range list {
		marker := "  "
		if m.focus == focusSidebar && i == m.cursor {
			marker = "> "
		}
		title := util.TruncateWidth(c.DisplayTitle(), itemWidth-3)
		style := m.theme.SidebarItem
		if c.ID == m.store.Active() {
			style = m.theme.SidebarItemActive
		}
		items = append(items, style.Width(itemWidth).Render(marker+title))
	}
	if len(items) == 0 {
		hint := "No chats yet"
		if m.loadingList {
			hint = "Loading..."
		}
		items = append(items, m.theme.HelpDesc.Render("  "+hint))
	}

	// Keep the cursor visible when the list is taller than the pane.
	room := max(1, height-3)
	if len(items) > room {
		start := min(max(0, m.cursor-room/2), len(items)-room)
		items = items[start : start+room]
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.SidebarTitle.Render("Chats"),
		newLine,
		strings.Join(items, "\n"),
	)
	return m.theme.Sidebar.Width(w).Height(height).Render(content)
}

// =============================================================================
// MESSAGE LOG
// =============================================================================

func (m *Model) renderLog() string {
	w := m.viewport.Width
	msgs := m.store.Log().Messages()
	if len(msgs) == 0 {
		text := emptyStateText
		if m.loadingMessages {
			text = "Loading messages..."
		}
		pad := max(0, m.viewport.Height/2-1)
		return strings.Repeat("\n", pad) + m.theme.EmptyState.Width(w).Render(text)
	}

	parts := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		parts = append(parts, m.renderMessage(msg, w))
	}
	return strings.Join(parts, "\n\n")
}

func (m *Model) renderMessage(msg model.Message, width int) string {
	bodyWidth := max(10, width-2)
	text, revealing := m.revealed(msg)

	if msg.IsUser() {
		label := m.theme.UserLabel.Render(msg.Sender.DisplayName())
		return label + "\n" + m.theme.UserBubble.Width(bodyWidth).Render(text)
	}

	label := m.theme.AssistantLabel.Render(msg.Sender.DisplayName())
	if !revealing && m.renderMarkdown && text != "" {
		text = m.markdown(msg, bodyWidth-2)
	}
	return label + "\n" + m.theme.AssistantBubble.Width(bodyWidth).Render(text)
}

// markdown renders a finished assistant message, reusing the previous
// rendering when neither content nor width changed.
func (m *Model) markdown(msg model.Message, width int) string {
	if r, ok := m.rendered[msg.ID]; ok && r.content == msg.Content && r.width == width {
		return r.out
	}
	out := styles.RenderMarkdown(msg.Content, width)
	m.rendered[msg.ID] = renderedMessage{content: msg.Content, width: width, out: out}
	return out
}

// =============================================================================
// BOTTOM AREA
// =============================================================================

func (m Model) renderIndicator() string {
	if !m.flight.Busy() {
		return ""
	}
	return m.theme.Typing.Render(m.spinner.View() + " " + typingText)
}

func (m Model) renderError() string {
	if m.err == "" {
		return ""
	}
	return m.theme.ErrorLine.Render(styles.StatusIndicators.Error+" "+m.err) +
		m.theme.HelpDesc.Render("  (Esc to dismiss)")
}

func (m Model) renderInput() string {
	width := m.mainWidth()
	if m.showSidebar() {
		width += m.sidebarWidth + 1
	}

	if m.pendingDelete != nil {
		prompt := fmt.Sprintf(confirmDeleteFmt, m.pendingDelete.DisplayTitle())
		return m.theme.ConfirmBox.Render(styles.RenderWarning(prompt))
	}
	if m.flight.Busy() {
		return m.theme.InputContainer.Width(width).Render(m.theme.InputLocked.Render(processingText))
	}
	return m.theme.InputContainer.Width(width).Render(m.input.View())
}

func (m Model) renderLoginPrompt() string {
	width := max(20, m.width)
	lines := []string{
		styles.RenderWarning(loginPromptText),
		m.theme.HelpDesc.Render(loginHintText),
	}
	if m.err != "" {
		lines = append(lines, "", m.renderError())
	}
	box := lipgloss.JoinVertical(lipgloss.Center, lines...)
	return lipgloss.Place(width, max(3, m.height-headerHeight), lipgloss.Center, lipgloss.Center, box)
}
