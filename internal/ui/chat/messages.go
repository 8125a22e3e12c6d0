// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/showcase-chat/internal/auth"
	"github.com/jeranaias/showcase-chat/internal/model"
	"github.com/jeranaias/showcase-chat/internal/transport"
)

// =============================================================================
// CONVERSATION MESSAGES
// =============================================================================

// conversationsLoadedMsg delivers the conversation list.
type conversationsLoadedMsg struct {
	Conversations []model.Conversation
	Err           error
}

// messagesLoadedMsg delivers the history of a conversation. ID and Gen are
// the ownership the fetch was started under.
type messagesLoadedMsg struct {
	ID       model.ID
	Gen      uint64
	Messages []model.Message
	Err      error

	// Reconcile merges into the current log instead of replacing it.
	Reconcile bool
}

// deletedMsg reports the outcome of a confirmed delete.
type deletedMsg struct {
	ID  model.ID
	Err error
}

// =============================================================================
// SUBMISSION MESSAGES
// =============================================================================

// streamOpenedMsg signals that response headers arrived for submission Seq.
type streamOpenedMsg struct {
	Seq    uint64
	Stream ReplyStream
}

// replyMsg delivers the fully ingested reply for submission Seq.
type replyMsg struct {
	Seq   uint64
	Reply *transport.Reply
	Err   error
}

// historyReplayMsg delivers the history fetched after a reply that carried
// no text. The newest assistant message is replayed from it.
type historyReplayMsg struct {
	Seq      uint64
	Messages []model.Message
	Err      error
}

// typingTickMsg advances the reveal of MsgID. Owner and Gen identify the
// conversation the reveal belongs to.
type typingTickMsg struct {
	Seq   uint64
	Owner model.ID
	Gen   uint64
	MsgID model.ID
}

// =============================================================================
// AUTH MESSAGES
// =============================================================================

// authChangedMsg reports a change of the token file.
type authChangedMsg struct {
	Change auth.Change
	closed bool
}
