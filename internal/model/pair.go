// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "sort"

// Turn is one exchange in a rebuilt history. Either side may be nil when
// the history has an unpaired message.
type Turn struct {
	User      *Message
	Assistant *Message
}

// Paired reports whether both sides are present.
func (t Turn) Paired() bool { return t.User != nil && t.Assistant != nil }

// Messages returns the turn's messages in display order.
func (t Turn) Messages() []Message {
	out := make([]Message, 0, 2)
	if t.User != nil {
		out = append(out, *t.User)
	}
	if t.Assistant != nil {
		out = append(out, *t.Assistant)
	}
	return out
}

// SortByID returns a copy of msgs in ascending id order. Equal ids keep
// their relative order.
func SortByID(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	copy(out, msgs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ID.Less(out[j].ID)
	})
	return out
}

// PairHistory sorts msgs by id and groups consecutive user/assistant
// messages into turns. A message that cannot be paired becomes a turn of
// its own, so no message is ever dropped.
func PairHistory(msgs []Message) []Turn {
	sorted := SortByID(msgs)
	turns := make([]Turn, 0, (len(sorted)+1)/2)
	for i := 0; i < len(sorted); i++ {
		cur := sorted[i]
		if cur.IsUser() && i+1 < len(sorted) && !sorted[i+1].IsUser() {
			next := sorted[i+1]
			turns = append(turns, Turn{User: &cur, Assistant: &next})
			i++
			continue
		}
		if cur.IsUser() {
			turns = append(turns, Turn{User: &cur})
		} else {
			turns = append(turns, Turn{Assistant: &cur})
		}
	}
	return turns
}

// Flatten returns the messages of turns in order.
func Flatten(turns []Turn) []Message {
	var out []Message
	for _, t := range turns {
		out = append(out, t.Messages()...)
	}
	return out
}
