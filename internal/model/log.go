// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// MESSAGE LOG
// =============================================================================

// Log is the ordered message sequence of the active conversation.
//
// Order is insertion order. Records are addressed by id only; nothing in
// Log ever reconciles by position. Log is not safe for concurrent use: it
// is owned by the event loop that drives the chat surface.
type Log struct {
	msgs []Message
}

// NewLog returns a log holding msgs in ascending id order.
func NewLog(msgs []Message) *Log {
	l := &Log{}
	l.Reset(msgs)
	return l
}

// Len returns the number of messages.
func (l *Log) Len() int { return len(l.msgs) }

// Messages returns a copy of the messages in order.
func (l *Log) Messages() []Message {
	out := make([]Message, len(l.msgs))
	copy(out, l.msgs)
	return out
}

// Reset replaces the whole log with msgs sorted by ascending id.
func (l *Log) Reset(msgs []Message) {
	l.msgs = SortByID(msgs)
}

// Clear empties the log.
func (l *Log) Clear() {
	l.msgs = nil
}

// Append adds a message at the end.
func (l *Log) Append(m Message) {
	l.msgs = append(l.msgs, m)
}

// AppendProvisional adds an optimistic record and returns it.
func (l *Log) AppendProvisional(sender Sender, content string) Message {
	m := NewProvisional(sender, content)
	l.Append(m)
	return m
}

// Find returns the message with the given id.
func (l *Log) Find(id ID) (Message, bool) {
	if i := l.index(id); i >= 0 {
		return l.msgs[i], true
	}
	return Message{}, false
}

// Last returns the final message.
func (l *Log) Last() (Message, bool) {
	if len(l.msgs) == 0 {
		return Message{}, false
	}
	return l.msgs[len(l.msgs)-1], true
}

// SetContent replaces the content of the message with the given id.
// It returns false when no such message exists.
func (l *Log) SetContent(id ID, content string) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	l.msgs[i].Content = content
	return true
}

// Remove deletes the message with the given id.
func (l *Log) Remove(id ID) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}
	l.msgs = append(l.msgs[:i], l.msgs[i+1:]...)
	return true
}

// Confirm swaps a provisional record for its server copy in place.
func (l *Log) Confirm(provisionalID ID, confirmed Message) bool {
	i := l.index(provisionalID)
	if i < 0 || !l.msgs[i].Provisional {
		return false
	}
	confirmed.Provisional = false
	l.msgs[i] = confirmed
	return true
}

// Reconcile merges a freshly fetched server history into the log.
//
// The confirmed records become the log, in ascending id order. Each
// provisional record is dropped if a confirmed record the log had not seen
// before has the same sender and content; the first such record wins and
// is consumed. A provisional assistant record left over after that is
// dropped in favour of the newest unclaimed assistant record following the
// server copy of the user record before it, since stored replies may be
// formatted differently from the streamed text. Provisional records
// without a counterpart are kept, in their original order, after the
// confirmed ones.
func (l *Log) Reconcile(confirmed []Message) {
	seen := make(map[ID]bool, len(l.msgs))
	for _, m := range l.msgs {
		if !m.Provisional {
			seen[m.ID] = true
		}
	}

	sorted := SortByID(confirmed)
	consumed := make([]bool, len(sorted))
	counterpart := make([]int, len(l.msgs))
	for i, m := range l.msgs {
		counterpart[i] = -1
		if !m.Provisional {
			counterpart[i] = indexByID(sorted, m.ID)
			continue
		}
		for j, c := range sorted {
			if consumed[j] || seen[c.ID] || !sameTurn(m, c) {
				continue
			}
			consumed[j] = true
			counterpart[i] = j
			break
		}
	}

	for i, m := range l.msgs {
		if !m.Provisional || counterpart[i] >= 0 || m.Sender != SenderAssistant || i == 0 {
			continue
		}
		prev := counterpart[i-1]
		if prev < 0 || l.msgs[i-1].Sender != SenderUser {
			continue
		}
		for j := len(sorted) - 1; j > prev; j-- {
			c := sorted[j]
			if consumed[j] || seen[c.ID] || c.Sender != SenderAssistant {
				continue
			}
			consumed[j] = true
			counterpart[i] = j
			break
		}
	}

	var pending []Message
	for i, m := range l.msgs {
		if m.Provisional && counterpart[i] < 0 {
			pending = append(pending, m)
		}
	}

	l.msgs = append(sorted, pending...)
}

func indexByID(msgs []Message, id ID) int {
	for i := range msgs {
		if msgs[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Log) index(id ID) int {
	for i := range l.msgs {
		if l.msgs[i].ID == id {
			return i
		}
	}
	return -1
}
