// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"

	"github.com/jeranaias/showcase-chat/internal/auth"
	"github.com/jeranaias/showcase-chat/internal/model"
	"github.com/jeranaias/showcase-chat/internal/transport"
)

// Backend is the subset of the chat API the screen needs.
type Backend interface {
	ListConversations(ctx context.Context) ([]model.Conversation, error)
	GetMessages(ctx context.Context, id model.ID) ([]model.Message, error)
	// Open sends text to conversation id, or creates a conversation when id
	// is zero. It returns once response headers have arrived.
	Open(ctx context.Context, id model.ID, text string) (ReplyStream, error)
	DeleteConversation(ctx context.Context, id model.ID) error
}

// ReplyStream is an open streamed reply.
type ReplyStream interface {
	Reply() (*transport.Reply, error)
	Close() error
}

// Connector builds a Backend for freshly loaded credentials.
type Connector func(creds auth.Credentials) (Backend, error)

// NewBackend adapts a transport client.
func NewBackend(c *transport.Client) Backend {
	return clientBackend{c}
}

type clientBackend struct {
	*transport.Client
}

func (b clientBackend) Open(ctx context.Context, id model.ID, text string) (ReplyStream, error) {
	var (
		s   *transport.Stream
		err error
	)
	if id.IsZero() {
		s, err = b.CreateConversation(ctx, text)
	} else {
		s, err = b.PostMessage(ctx, id, text)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
