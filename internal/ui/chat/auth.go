// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/showcase-chat/internal/auth"
	"github.com/jeranaias/showcase-chat/internal/model"
	"github.com/jeranaias/showcase-chat/internal/transport"
)

// handleAuthChanged re-gates the screen after a login or logout in another
// process.
func (m Model) handleAuthChanged(msg authChangedMsg) (tea.Model, tea.Cmd) {
	if msg.closed {
		return m, nil
	}
	next := waitForAuthCmd(m.authCh)
	change := msg.Change.Resolve(m.token)

	if change.Err != nil || !change.Credentials.Valid() {
		if m.authenticated() {
			log.Printf("[chat] credentials removed, locking chat")
		}
		return m.lock(), next
	}

	// Same token: only the profile changed.
	if m.authenticated() && m.activeToken != "" && change.Credentials.Token == m.activeToken {
		m.profile = change.Credentials.Redacted()
		return m, next
	}

	if m.connect == nil {
		return m, next
	}
	backend, err := m.connect(change.Credentials)
	if err != nil {
		m.err = transport.UserMessage("Failed to connect", err)
		return m, next
	}

	m = m.lock()
	m.backend = backend
	m.activeToken = change.Credentials.Token
	m.profile = change.Credentials.Redacted()
	m.loadingList = true
	m.err = ""
	log.Printf("[chat] credentials loaded for %q", m.profile.Name)
	return m, tea.Batch(next, loadConversationsCmd(m.ctx, m.backend))
}

// lock drops the backend and every piece of per-user state.
func (m Model) lock() Model {
	m.cancelMgr.cancel()
	m = m.abandonReplay()
	if m.flight.Busy() {
		m.flight.End(m.flight.Seq())
	}
	m.store.Replace(nil)
	m.store.Draft()
	m.backend = nil
	m.activeToken = ""
	m.profile = auth.Credentials{}
	m.pendingDelete = nil
	m.cursor = 0
	m.loadingList = false
	m.loadingMessages = false
	m.rendered = make(map[model.ID]renderedMessage)
	m.refreshViewport(true)
	return m
}
