// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/showcase-chat/internal/auth"
	"github.com/jeranaias/showcase-chat/internal/model"
	"github.com/jeranaias/showcase-chat/internal/transport"
)

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// loadConversationsCmd fetches the conversation list.
func loadConversationsCmd(ctx context.Context, b Backend) tea.Cmd {
	return func() tea.Msg {
		list, err := b.ListConversations(ctx)
		return conversationsLoadedMsg{Conversations: list, Err: err}
	}
}

// loadMessagesCmd fetches the history of id for generation gen.
func loadMessagesCmd(ctx context.Context, b Backend, id model.ID, gen uint64, reconcile bool) tea.Cmd {
	return func() tea.Msg {
		msgs, err := b.GetMessages(ctx, id)
		return messagesLoadedMsg{ID: id, Gen: gen, Messages: msgs, Err: err, Reconcile: reconcile}
	}
}

// deleteCmd deletes id on the backend.
func deleteCmd(ctx context.Context, b Backend, id model.ID) tea.Cmd {
	return func() tea.Msg {
		return deletedMsg{ID: id, Err: b.DeleteConversation(ctx, id)}
	}
}

// openCmd starts submission seq. It returns when headers arrive.
func openCmd(ctx context.Context, b Backend, seq uint64, owner model.ID, text string) tea.Cmd {
	return func() tea.Msg {
		stream, err := b.Open(ctx, owner, text)
		if err != nil {
			return replyMsg{Seq: seq, Err: err}
		}
		return streamOpenedMsg{Seq: seq, Stream: stream}
	}
}

// readReplyCmd reads stream to completion.
func readReplyCmd(seq uint64, stream ReplyStream) tea.Cmd {
	return func() tea.Msg {
		reply, err := stream.Reply()
		return replyMsg{Seq: seq, Reply: reply, Err: err}
	}
}

// historyReplayCmd fetches the history of id after a reply without text.
func historyReplayCmd(ctx context.Context, b Backend, seq uint64, id model.ID) tea.Cmd {
	return func() tea.Msg {
		msgs, err := b.GetMessages(ctx, id)
		return historyReplayMsg{Seq: seq, Messages: msgs, Err: err}
	}
}

// typingTickCmd schedules the next reveal step.
func typingTickCmd(interval time.Duration, tick typingTickMsg) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return tick
	})
}

// waitForAuthCmd delivers the next token file change.
func waitForAuthCmd(ch <-chan auth.Change) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		change, ok := <-ch
		return authChangedMsg{Change: change, closed: !ok}
	}
}

// replyText returns the text to reveal for reply.
func replyText(r *transport.Reply) string {
	if r == nil {
		return ""
	}
	return r.Text
}
