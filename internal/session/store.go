// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"strings"

	"github.com/jeranaias/showcase-chat/internal/model"
)

// =============================================================================
// SESSION STORE
// =============================================================================

// Store holds the conversation list and the active conversation.
//
// Generation increases every time the active conversation changes. Work
// started for one generation must not mutate the log of another.
type Store struct {
	conversations []model.Conversation
	active        model.ID
	generation    uint64
	log           model.Log
}

// NewStore returns a store in the draft state with an empty list.
func NewStore() *Store {
	return &Store{}
}

// List returns a copy of the conversation list in server order.
func (s *Store) List() []model.Conversation {
	out := make([]model.Conversation, len(s.conversations))
	copy(out, s.conversations)
	return out
}

// Replace swaps in a freshly fetched list without re-sorting it. The active
// conversation is left alone even if the list no longer mentions it.
func (s *Store) Replace(list []model.Conversation) {
	s.conversations = make([]model.Conversation, len(list))
	copy(s.conversations, list)
}

// Active returns the active conversation id; zero means draft.
func (s *Store) Active() model.ID { return s.active }

// IsDraft reports whether no persisted conversation is active.
func (s *Store) IsDraft() bool { return s.active.IsZero() }

// Generation identifies the current active-conversation epoch.
func (s *Store) Generation() uint64 { return s.generation }

// Log returns the Message Log of the active conversation.
func (s *Store) Log() *model.Log { return &s.log }

// Owns reports whether work captured at (id, gen) still owns the log.
func (s *Store) Owns(id model.ID, gen uint64) bool {
	return s.active == id && s.generation == gen
}

// Select makes id active and clears the log. The caller fetches the
// messages for id afterwards. It returns the new generation.
func (s *Store) Select(id model.ID) uint64 {
	s.active = id
	s.log.Clear()
	s.generation++
	return s.generation
}

// Draft switches to an unsaved conversation with an empty log. The backend
// is not contacted.
func (s *Store) Draft() uint64 {
	return s.Select("")
}

// Remove drops id from the list. If id was active the store resets to the
// draft state in the same call and wasActive is true.
func (s *Store) Remove(id model.ID) (wasActive bool) {
	if i := model.IndexOf(s.conversations, id); i >= 0 {
		s.conversations = append(s.conversations[:i], s.conversations[i+1:]...)
	}
	if s.active == id && !id.IsZero() {
		s.Draft()
		return true
	}
	return false
}

// Register records a conversation learned from a reply. Known entries only
// get their title backfilled; new entries are appended.
func (s *Store) Register(conv model.Conversation) {
	if conv.ID.IsZero() {
		return
	}
	if i := model.IndexOf(s.conversations, conv.ID); i >= 0 {
		if strings.TrimSpace(s.conversations[i].Title) == "" {
			s.conversations[i].Title = conv.Title
		}
		return
	}
	s.conversations = append(s.conversations, conv)
}

// Adopt binds the draft of generation gen to the id the backend assigned.
// The log is kept and the generation is unchanged, since the user is still
// looking at the same conversation. It reports false if the user has moved
// on since gen.
func (s *Store) Adopt(id model.ID, gen uint64) bool {
	if id.IsZero() || !s.IsDraft() || s.generation != gen {
		return false
	}
	s.active = id
	return true
}
