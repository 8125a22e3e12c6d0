// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// ParseSender normalizes a wire sender. The backend has used a few aliases
// for the assistant over time.
func ParseSender(s string) (Sender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return SenderUser, nil
	case "assistant", "ai", "bot", "model":
		return SenderAssistant, nil
	default:
		return "", fmt.Errorf("unknown sender %q", s)
	}
}

// UnmarshalJSON validates the sender at decode time.
func (s *Sender) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	parsed, err := ParseSender(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// DisplayName returns the label shown above a message.
func (s Sender) DisplayName() string {
	if s == SenderUser {
		return "You"
	}
	return "AI chat"
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is one turn in a conversation.
//
// For assistant messages Content always holds the full text; how much of it
// is currently revealed is UI state and lives elsewhere.
type Message struct {
	ID      ID     `json:"id"`
	Sender  Sender `json:"sender"`
	Content string `json:"content"`

	// Provisional records were inserted optimistically and carry a
	// client-minted id until reconciled with the server's copy.
	Provisional bool      `json:"-"`
	CreatedAt   time.Time `json:"-"`
}

// NewProvisional returns an optimistic message with a fresh client id.
func NewProvisional(sender Sender, content string) Message {
	return Message{
		ID:          NewProvisionalID(),
		Sender:      sender,
		Content:     content,
		Provisional: true,
		CreatedAt:   time.Now(),
	}
}

// IsUser reports whether the message was authored by the user.
func (m Message) IsUser() bool { return m.Sender == SenderUser }

// sameTurn reports whether a provisional record and a confirmed record
// describe the same turn.
func sameTurn(provisional, confirmed Message) bool {
	return provisional.Sender == confirmed.Sender &&
		strings.TrimSpace(provisional.Content) == strings.TrimSpace(confirmed.Content)
}
