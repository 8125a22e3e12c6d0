// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"log"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/showcase-chat/internal/model"
	"github.com/jeranaias/showcase-chat/internal/transport"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		if !m.flight.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	// Conversations
	case conversationsLoadedMsg:
		return m.handleConversationsLoaded(msg), nil

	case messagesLoadedMsg:
		return m.handleMessagesLoaded(msg), nil

	case deletedMsg:
		return m.handleDeleted(msg), nil

	// Submission
	case streamOpenedMsg:
		return m.handleStreamOpened(msg)

	case replyMsg:
		return m.handleReply(msg)

	case historyReplayMsg:
		return m.handleHistoryReplay(msg)

	case typingTickMsg:
		return m.handleTypingTick(msg)

	// Auth
	case authChangedMsg:
		return m.handleAuthChanged(msg)
	}

	return m, nil
}

// =============================================================================
// LAYOUT
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) Model {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)
	m.help.Width = msg.Width

	m.viewport.Width = m.mainWidth()
	m.viewport.Height = m.viewportHeight()
	m.input.Width = max(10, m.mainWidth()-4)
	m.ready = true

	m.refreshViewport(false)
	return m
}

// =============================================================================
// KEYS
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.cancelMgr.cancel()
		return m, tea.Quit
	}

	if !m.authenticated() {
		return m, nil
	}

	// The delete gate swallows every key until answered.
	if m.pendingDelete != nil {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			target := *m.pendingDelete
			m.pendingDelete = nil
			log.Printf("[chat] deleting conversation %s", target.ID)
			return m, deleteCmd(m.ctx, m.backend, target.ID)
		case key.Matches(msg, m.keys.Deny):
			m.pendingDelete = nil
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Cancel):
		return m.handleEscape()

	case key.Matches(msg, m.keys.Focus):
		if m.focus == focusInput {
			m.focus = focusSidebar
			m.input.Blur()
			return m, nil
		}
		m.focus = focusInput
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.New):
		m = m.createDraft()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Reload):
		m.loadingList = true
		return m, loadConversationsCmd(m.ctx, m.backend)

	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	list := m.store.List()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(list)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Submit):
		if len(list) == 0 {
			return m, nil
		}
		m.focus = focusInput
		focusCmd := m.input.Focus()
		id := list[m.cursor].ID
		if id == m.store.Active() {
			return m, focusCmd
		}
		var cmd tea.Cmd
		m, cmd = m.selectConversation(id)
		return m, tea.Batch(cmd, focusCmd)
	case key.Matches(msg, m.keys.Delete):
		if len(list) == 0 {
			return m, nil
		}
		target := list[m.cursor]
		m.pendingDelete = &target
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Input is read-only while a submission is in flight.
	if m.flight.Busy() {
		return m, nil
	}
	if key.Matches(msg, m.keys.Submit) {
		return m.submit()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleEscape answers Esc: skip the typing effect, else cancel the
// request, else dismiss the error line.
func (m Model) handleEscape() (tea.Model, tea.Cmd) {
	if m.typing != nil {
		return m.skipReplay()
	}
	if m.flight.Busy() && m.cancelMgr.active() {
		m.cancelMgr.cancel()
		return m, nil
	}
	m.err = ""
	return m, nil
}

// =============================================================================
// SESSION STORE OPERATIONS
// =============================================================================

// selectConversation makes id active and fetches its history.
func (m Model) selectConversation(id model.ID) (Model, tea.Cmd) {
	m = m.abandonReplay()
	gen := m.store.Select(id)
	if i := model.IndexOf(m.store.List(), id); i >= 0 {
		m.cursor = i
	}
	m.loadingMessages = true
	m.refreshViewport(true)
	return m, loadMessagesCmd(m.ctx, m.backend, id, gen, false)
}

// createDraft switches to an unsaved conversation without contacting the
// backend.
func (m Model) createDraft() Model {
	m = m.abandonReplay()
	m.store.Draft()
	m.loadingMessages = false
	m.focus = focusInput
	m.refreshViewport(true)
	return m
}

func (m Model) handleConversationsLoaded(msg conversationsLoadedMsg) Model {
	m.loadingList = false
	if msg.Err != nil {
		log.Printf("[chat] list conversations: %v", msg.Err)
		m.err = transport.UserMessage("Failed to load chat history", msg.Err)
		m.store.Replace(nil)
	} else {
		m.store.Replace(msg.Conversations)
	}
	if i := model.IndexOf(m.store.List(), m.store.Active()); i >= 0 {
		m.cursor = i
	}
	m.clampCursor()
	return m
}

func (m Model) handleMessagesLoaded(msg messagesLoadedMsg) Model {
	// A late answer for a conversation the user has left is dropped.
	if !m.store.Owns(msg.ID, msg.Gen) {
		return m
	}
	m.loadingMessages = false
	if msg.Err != nil {
		log.Printf("[chat] get messages %s: %v", msg.ID, msg.Err)
		m.err = transport.UserMessage("Failed to load messages", msg.Err)
		m.refreshViewport(false)
		return m
	}
	if !msg.Reconcile {
		m.err = ""
	}
	m.store.Log().Reconcile(msg.Messages)
	m.refreshViewport(!msg.Reconcile)
	return m
}

func (m Model) handleDeleted(msg deletedMsg) Model {
	if msg.Err != nil {
		log.Printf("[chat] delete %s: %v", msg.ID, msg.Err)
		m.err = transport.UserMessage("Failed to delete chat", msg.Err)
		return m
	}
	if m.store.Active() == msg.ID {
		m = m.abandonReplay()
	}
	if m.store.Remove(msg.ID) {
		m.loadingMessages = false
	}
	m.err = ""
	m.clampCursor()
	m.refreshViewport(true)
	return m
}

func (m *Model) clampCursor() {
	n := len(m.store.List())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
