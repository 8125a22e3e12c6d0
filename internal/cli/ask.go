// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot message send.
//
// Examples:
//   showcase-chat ask "What is on show this year?"
//   showcase-chat ask --chat 42 "Tell me more"
//   git log -1 --format=%B | showcase-chat ask --plain

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/showcase-chat/internal/model"
	"github.com/jeranaias/showcase-chat/internal/transport"
	"github.com/jeranaias/showcase-chat/internal/typing"
)

// maxStdinMessage caps a message read from a pipe.
const maxStdinMessage = 64 * 1024

// askResult is the outcome of one send.
type askResult struct {
	ChatID  model.ID `json:"chat_id"`
	Title   string   `json:"title,omitempty"`
	Created bool     `json:"created"`
	Reply   string   `json:"reply"`
}

// HandleAsk sends one message, to a new conversation unless --chat is
// given, and prints the reply.
func (a *App) HandleAsk(ctx context.Context) error {
	text := a.Args.Query
	if text == "" && !a.Interactive && a.Stdin != nil {
		data, err := io.ReadAll(io.LimitReader(a.Stdin, maxStdinMessage))
		if err != nil {
			return fmt.Errorf("failed to read message from stdin: %w", err)
		}
		text = strings.TrimSpace(string(data))
	}
	if text == "" {
		return &ValidationError{
			Field:   "message",
			Reason:  "is required",
			Example: `showcase-chat ask "Hello"`,
		}
	}

	client, err := a.Client()
	if err != nil {
		return err
	}
	res, err := a.send(ctx, client, model.ID(a.Args.ChatID), text)
	if err != nil {
		return err
	}

	if a.Args.JSON {
		return a.printJSON("ask", res)
	}
	if err := a.printReply(ctx, res.Reply); err != nil {
		return err
	}
	if res.Created {
		a.hint("Started chat %s. Continue with: showcase-chat ask --chat %s \"...\"", res.ChatID, res.ChatID)
	}
	return nil
}

// send posts text to id, or creates a conversation when id is zero, and
// reads the whole reply. A reply with no text is recovered from the
// conversation's stored history.
func (a *App) send(ctx context.Context, client *transport.Client, id model.ID, text string) (askResult, error) {
	const action = "Failed to create chat or message"

	var (
		stream *transport.Stream
		err    error
	)
	if id.IsZero() {
		stream, err = client.CreateConversation(ctx, text)
	} else {
		stream, err = client.PostMessage(ctx, id, text)
	}
	if err != nil {
		return askResult{}, requestFailed("ask", action, err)
	}
	defer stream.Close()

	reply, err := stream.Reply()
	if err != nil {
		return askResult{}, requestFailed("ask", action, err)
	}

	res := askResult{
		ChatID:  reply.ChatID,
		Title:   reply.Title,
		Created: id.IsZero(),
		Reply:   reply.Text,
	}
	if strings.TrimSpace(res.Reply) == "" {
		msgs, err := client.GetMessages(ctx, res.ChatID)
		if err != nil {
			return askResult{}, requestFailed("ask", "Failed to load messages", err)
		}
		res.Reply = latestReply(msgs)
	}
	return res, nil
}

// latestReply returns the content of the newest assistant message.
func latestReply(msgs []model.Message) string {
	sorted := model.SortByID(msgs)
	for i := len(sorted) - 1; i >= 0; i-- {
		if !sorted[i].IsUser() {
			return sorted[i].Content
		}
	}
	return ""
}

// printReply prints an assistant reply. On a terminal it is revealed one
// character per typing interval; elsewhere it is printed at once.
func (a *App) printReply(ctx context.Context, text string) error {
	if !a.Pretty {
		fmt.Fprintln(a.Stdout, text)
		return nil
	}

	fmt.Fprintln(a.Stdout, AssistantStyle.Render(model.SenderAssistant.DisplayName()))
	printed := 0
	err := typing.Run(ctx, text, a.Config.TypingInterval(), func(slice string) {
		fmt.Fprint(a.Stdout, slice[printed:])
		printed = len(slice)
	})
	fmt.Fprintln(a.Stdout)
	fmt.Fprintln(a.Stdout)
	return err
}
