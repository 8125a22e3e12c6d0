// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/showcase-chat/internal/model"
	"github.com/jeranaias/showcase-chat/internal/session"
	"github.com/jeranaias/showcase-chat/internal/transport"
	"github.com/jeranaias/showcase-chat/internal/typing"
)

const submitFailed = "Failed to create chat or message"

// =============================================================================
// SUBMISSION
// =============================================================================

// submit sends the input text. Empty input, or a submission while another
// is in flight, is a no-op.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || !m.authenticated() {
		return m, nil
	}

	owner := m.store.Active()
	seq, ok := m.flight.Begin(owner, m.store.Generation())
	if !ok {
		return m, nil
	}

	m.err = ""
	m.input.Reset()

	// The optimistic insert precedes the request.
	m.flight.Advance(seq, session.PhaseAwaiting)
	pending := m.store.Log().AppendProvisional(model.SenderUser, text)
	m.pendingUser = pending.ID
	m.pendingText = text
	m.refreshViewport(true)

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancelMgr.set(cancel)

	log.Printf("[chat] submit seq=%d conversation=%q", seq, owner)
	return m, tea.Batch(openCmd(ctx, m.backend, seq, owner, text), m.spinner.Tick)
}

func (m Model) handleStreamOpened(msg streamOpenedMsg) (tea.Model, tea.Cmd) {
	if !m.flight.Advance(msg.Seq, session.PhaseStreaming) {
		msg.Stream.Close()
		return m, nil
	}
	return m, readReplyCmd(msg.Seq, msg.Stream)
}

func (m Model) handleReply(msg replyMsg) (tea.Model, tea.Cmd) {
	if msg.Seq != m.flight.Seq() || !m.flight.Busy() {
		return m, nil
	}
	m.cancelMgr.cancel()
	owner, gen := m.flight.Owner()

	if msg.Err != nil {
		m.flight.End(msg.Seq)
		if m.store.Owns(owner, gen) {
			m.store.Log().Remove(m.pendingUser)
			if m.input.Value() == "" {
				m.input.SetValue(m.pendingText)
				m.input.CursorEnd()
			}
		}
		if !errors.Is(msg.Err, context.Canceled) {
			log.Printf("[chat] submit seq=%d failed: %v", msg.Seq, msg.Err)
			m.err = transport.UserMessage(submitFailed, msg.Err)
		}
		m.refreshViewport(true)
		return m, nil
	}

	reply := msg.Reply
	if reply == nil {
		reply = &transport.Reply{}
	}
	conv := model.Conversation{ID: reply.ChatID, Title: reply.Title}
	created := owner.IsZero()
	m.store.Register(conv)
	if created && m.store.Adopt(conv.ID, gen) {
		m.flight.Rebind(msg.Seq, conv.ID)
		owner = conv.ID
		if i := model.IndexOf(m.store.List(), conv.ID); i >= 0 {
			m.cursor = i
		}
	}

	// The user moved to another conversation while the reply was in
	// flight. The conversation is registered above; its log is not ours.
	if !m.store.Owns(owner, gen) {
		m.flight.End(msg.Seq)
		return m, nil
	}

	text := replyText(reply)
	if strings.TrimSpace(text) == "" {
		return m, historyReplayCmd(m.ctx, m.backend, msg.Seq, owner)
	}

	placeholder := model.Message{
		ID:          model.NewProvisionalID(),
		Sender:      model.SenderAssistant,
		Content:     text,
		Provisional: true,
		CreatedAt:   time.Now(),
	}
	m.store.Log().Append(placeholder)
	return m.startReplay(msg.Seq, placeholder.ID, created)
}

// handleHistoryReplay replays the newest assistant message after a reply
// that carried no text.
func (m Model) handleHistoryReplay(msg historyReplayMsg) (tea.Model, tea.Cmd) {
	if msg.Seq != m.flight.Seq() || !m.flight.Busy() {
		return m, nil
	}
	owner, gen := m.flight.Owner()
	if !m.store.Owns(owner, gen) {
		m.flight.End(msg.Seq)
		return m, nil
	}
	if msg.Err != nil {
		m.flight.End(msg.Seq)
		m.err = transport.UserMessage("Failed to load messages", msg.Err)
		return m, nil
	}

	history := model.SortByID(msg.Messages)
	newest := -1
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Sender == model.SenderAssistant {
			newest = i
			break
		}
	}
	if newest < 0 {
		m.store.Log().Reconcile(history)
		m.flight.End(msg.Seq)
		m.refreshViewport(true)
		return m, nil
	}

	reply := history[newest]
	rest := append(history[:newest:newest], history[newest+1:]...)
	m.store.Log().Reconcile(rest)
	m.store.Log().Append(reply)
	return m.startReplay(msg.Seq, reply.ID, false)
}

// =============================================================================
// TYPING REPLAY
// =============================================================================

// startReplay reveals the log message msgID one character per tick.
func (m Model) startReplay(seq uint64, msgID model.ID, created bool) (tea.Model, tea.Cmd) {
	target, ok := m.store.Log().Find(msgID)
	if !ok {
		m.flight.End(seq)
		return m, nil
	}
	m.flight.Advance(seq, session.PhaseReplaying)
	owner, gen := m.flight.Owner()
	m.typing = &typingState{
		seq:     seq,
		owner:   owner,
		gen:     gen,
		msgID:   msgID,
		reveal:  typing.NewReveal(target.Content),
		created: created,
	}
	m.refreshViewport(true)
	return m, typingTickCmd(m.interval, m.tick())
}

func (m Model) tick() typingTickMsg {
	t := m.typing
	return typingTickMsg{Seq: t.seq, Owner: t.owner, Gen: t.gen, MsgID: t.msgID}
}

func (m Model) handleTypingTick(msg typingTickMsg) (tea.Model, tea.Cmd) {
	t := m.typing
	if t == nil || t.seq != msg.Seq || t.msgID != msg.MsgID {
		return m, nil
	}
	// Ownership is checked before every write.
	if !m.store.Owns(msg.Owner, msg.Gen) {
		m = m.abandonReplay()
		return m, nil
	}

	slice, ok := t.reveal.Next()
	if !ok {
		return m.finishReplay()
	}
	t.shown = slice
	m.refreshViewport(false)
	return m, typingTickCmd(m.interval, m.tick())
}

// skipReplay shows the full reply at once.
func (m Model) skipReplay() (tea.Model, tea.Cmd) {
	t := m.typing
	t.reveal.Stop()
	t.shown = t.reveal.Text()
	return m.finishReplay()
}

// finishReplay ends the submission and reconciles the optimistic records
// with the server history.
func (m Model) finishReplay() (tea.Model, tea.Cmd) {
	t := m.typing
	m.typing = nil
	m.flight.End(t.seq)
	m.refreshViewport(true)

	cmds := []tea.Cmd{loadMessagesCmd(m.ctx, m.backend, t.owner, t.gen, true)}
	if t.created {
		cmds = append(cmds, loadConversationsCmd(m.ctx, m.backend))
	}
	return m, tea.Batch(cmds...)
}

// abandonReplay stops the running reveal, if any, without touching the
// log. A submission that is still waiting on the network is left alone.
func (m Model) abandonReplay() Model {
	if m.typing == nil {
		return m
	}
	m.typing.reveal.Stop()
	if m.flight.Phase() == session.PhaseReplaying {
		m.flight.End(m.typing.seq)
	}
	m.typing = nil
	return m
}
