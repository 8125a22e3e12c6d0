// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/showcase-chat/internal/model"
	"github.com/jeranaias/showcase-chat/internal/transport"
)

// =============================================================================
// FAKE BACKEND
// =============================================================================

type openCall struct {
	ID   model.ID
	Text string
}

type fakeBackend struct {
	mu            sync.Mutex
	conversations []model.Conversation
	history       map[model.ID][]model.Message
	opens         []openCall
	deletes       []model.ID
	gets          []model.ID

	// reply builds the response to an Open call.
	reply   func(id model.ID, text string) (*transport.Reply, error)
	openErr error
	listErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{history: make(map[model.ID][]model.Message)}
}

func (f *fakeBackend) ListConversations(ctx context.Context) ([]model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.Conversation, len(f.conversations))
	copy(out, f.conversations)
	return out, nil
}

func (f *fakeBackend) GetMessages(ctx context.Context, id model.ID) ([]model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets = append(f.gets, id)
	return append([]model.Message(nil), f.history[id]...), nil
}

func (f *fakeBackend) Open(ctx context.Context, id model.ID, text string) (ReplyStream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opens = append(f.opens, openCall{ID: id, Text: text})
	if f.openErr != nil {
		return nil, f.openErr
	}
	if f.reply == nil {
		chatID := id
		if chatID.IsZero() {
			chatID = "99"
		}
		return &fakeStream{reply: &transport.Reply{Text: "ok", ChatID: chatID}}, nil
	}
	r, err := f.reply(id, text)
	return &fakeStream{reply: r, err: err}, nil
}

func (f *fakeBackend) DeleteConversation(ctx context.Context, id model.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	return nil
}

func (f *fakeBackend) openCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.opens)
}

type fakeStream struct {
	reply *transport.Reply
	err   error
}

func (s *fakeStream) Reply() (*transport.Reply, error) { return s.reply, s.err }
func (s *fakeStream) Close() error                     { return nil }

// =============================================================================
// HARNESS
// =============================================================================

// harness drives a Model the way the Bubble Tea runtime would, one command
// at a time, so tests can interleave their own events.
type harness struct {
	t     *testing.T
	m     Model
	queue []tea.Cmd
}

func newHarness(t *testing.T, b Backend) *harness {
	t.Helper()
	m := New(Options{
		Backend:        b,
		TypingInterval: time.Millisecond,
	})
	return wrap(t, m)
}

// wrap sizes m and stops cursor blinking so focus changes do not queue
// timed blink commands.
func wrap(t *testing.T, m Model) *harness {
	m.input.Cursor.SetMode(cursor.CursorStatic)
	h := &harness{t: t, m: m}
	h.send(tea.WindowSizeMsg{Width: 120, Height: 40})
	return h
}

// send delivers msg to Update and queues the returned command.
func (h *harness) send(msg tea.Msg) {
	h.t.Helper()
	next, cmd := h.m.Update(msg)
	h.m = next.(Model)
	if cmd != nil {
		h.queue = append(h.queue, cmd)
	}
}

func (h *harness) key(k tea.KeyType) {
	h.send(tea.KeyMsg{Type: k})
}

func (h *harness) runes(s string) {
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

// submit types text into the input and presses Enter.
func (h *harness) submit(text string) {
	h.m.input.SetValue(text)
	h.key(tea.KeyEnter)
}

// step runs the next queued command and delivers its message. Framework
// messages (cursor blink, spinner) are dropped so the queue settles.
func (h *harness) step() (tea.Msg, bool) {
	for len(h.queue) > 0 {
		cmd := h.queue[0]
		h.queue = h.queue[1:]
		msg := cmd()
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, c := range batch {
				if c != nil {
					h.queue = append(h.queue, c)
				}
			}
			continue
		}
		if !ours(msg) {
			continue
		}
		h.send(msg)
		return msg, true
	}
	return nil, false
}

// runUntil steps until stop returns true for a delivered message.
func (h *harness) runUntil(stop func(tea.Msg) bool) {
	h.t.Helper()
	for i := 0; i < 10000; i++ {
		msg, ok := h.step()
		if !ok {
			h.t.Fatal("queue drained before the expected message")
		}
		if stop(msg) {
			return
		}
	}
	h.t.Fatal("command loop did not settle")
}

// drain runs every queued command to completion.
func (h *harness) drain() {
	h.t.Helper()
	for i := 0; i < 10000; i++ {
		if _, ok := h.step(); !ok {
			return
		}
	}
	h.t.Fatal("command loop did not settle")
}

func ours(msg tea.Msg) bool {
	switch msg.(type) {
	case conversationsLoadedMsg, messagesLoadedMsg, deletedMsg,
		streamOpenedMsg, replyMsg, historyReplayMsg, typingTickMsg, authChangedMsg:
		return true
	}
	return false
}

// logOf flattens the active log to (sender, content) pairs.
func logOf(m Model) [][2]string {
	var out [][2]string
	for _, msg := range m.store.Log().Messages() {
		out = append(out, [2]string{string(msg.Sender), msg.Content})
	}
	return out
}
