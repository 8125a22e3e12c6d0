// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "strings"

// DefaultTitle is shown for a conversation until the backend supplies a title.
const DefaultTitle = "Untitled"

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is a chat persisted by the backend. Only Title is ever
// updated after creation.
type Conversation struct {
	ID    ID     `json:"id"`
	Title string `json:"title"`
}

// DisplayTitle returns the title, or DefaultTitle when it is blank.
func (c Conversation) DisplayTitle() string {
	if t := strings.TrimSpace(c.Title); t != "" {
		return t
	}
	return DefaultTitle
}

// IndexOf returns the position of id in list, or -1.
func IndexOf(list []Conversation, id ID) int {
	for i, c := range list {
		if c.ID == id {
			return i
		}
	}
	return -1
}
