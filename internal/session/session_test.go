// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"testing"

	"github.com/jeranaias/showcase-chat/internal/model"
)

// =============================================================================
// STORE TESTS
// =============================================================================

func TestStore_ReplaceKeepsServerOrder(t *testing.T) {
	s := NewStore()
	s.Replace([]model.Conversation{{ID: "9", Title: "b"}, {ID: "2", Title: "a"}})

	list := s.List()
	if len(list) != 2 || list[0].ID != "9" || list[1].ID != "2" {
		t.Errorf("list = %+v", list)
	}
}

func TestStore_SelectClearsLogAndBumpsGeneration(t *testing.T) {
	s := NewStore()
	s.Log().Append(model.Message{ID: "1", Sender: model.SenderUser, Content: "x"})
	before := s.Generation()

	gen := s.Select("5")
	if gen == before {
		t.Error("generation should change on Select")
	}
	if s.Active() != "5" || s.Log().Len() != 0 {
		t.Errorf("active=%s len=%d", s.Active(), s.Log().Len())
	}
}

func TestStore_DraftDoesNotTouchList(t *testing.T) {
	s := NewStore()
	s.Replace([]model.Conversation{{ID: "1"}})
	s.Select("1")
	s.Draft()

	if !s.IsDraft() || len(s.List()) != 1 {
		t.Errorf("draft=%v list=%d", s.IsDraft(), len(s.List()))
	}
}

func TestStore_RemoveActiveResetsToDraft(t *testing.T) {
	s := NewStore()
	s.Replace([]model.Conversation{{ID: "1"}, {ID: "2"}})
	s.Select("2")
	s.Log().Append(model.Message{ID: "10", Sender: model.SenderUser, Content: "x"})

	if !s.Remove("2") {
		t.Fatal("Remove should report the conversation was active")
	}
	if !s.IsDraft() || s.Log().Len() != 0 {
		t.Errorf("draft=%v len=%d", s.IsDraft(), s.Log().Len())
	}
	if list := s.List(); len(list) != 1 || list[0].ID != "1" {
		t.Errorf("list = %+v", list)
	}
}

func TestStore_RemoveInactiveKeepsLog(t *testing.T) {
	s := NewStore()
	s.Replace([]model.Conversation{{ID: "1"}, {ID: "2"}})
	s.Select("1")
	s.Log().Append(model.Message{ID: "10", Sender: model.SenderUser, Content: "x"})

	if s.Remove("2") {
		t.Error("Remove of inactive conversation reported active")
	}
	if s.Active() != "1" || s.Log().Len() != 1 {
		t.Errorf("active=%s len=%d", s.Active(), s.Log().Len())
	}
}

func TestStore_RegisterAppendsAndBackfills(t *testing.T) {
	s := NewStore()
	s.Replace([]model.Conversation{{ID: "1", Title: "old"}})

	s.Register(model.Conversation{ID: "42"})
	s.Register(model.Conversation{ID: "42", Title: "hello"})
	s.Register(model.Conversation{ID: "1", Title: "renamed"})

	list := s.List()
	if len(list) != 2 {
		t.Fatalf("list = %+v", list)
	}
	if list[1].ID != "42" || list[1].Title != "hello" {
		t.Errorf("new entry = %+v", list[1])
	}
	if list[0].Title != "old" {
		t.Errorf("titles are only backfilled, got %q", list[0].Title)
	}
}

func TestStore_AdoptOnlyForSameDraft(t *testing.T) {
	s := NewStore()
	gen := s.Draft()
	s.Log().Append(model.NewProvisional(model.SenderUser, "hello"))

	if !s.Adopt("42", gen) {
		t.Fatal("Adopt failed")
	}
	if s.Active() != "42" || s.Log().Len() != 1 || s.Generation() != gen {
		t.Errorf("active=%s len=%d gen=%d", s.Active(), s.Log().Len(), s.Generation())
	}

	stale := s.Draft()
	s.Select("7")
	if s.Adopt("43", stale) {
		t.Error("Adopt must fail once the user moved on")
	}
}

// =============================================================================
// FLIGHT TESTS
// =============================================================================

func TestFlight_SingleFlight(t *testing.T) {
	var f Flight
	seq, ok := f.Begin("", 1)
	if !ok {
		t.Fatal("first Begin failed")
	}
	if _, ok := f.Begin("", 1); ok {
		t.Error("second Begin while busy must be rejected")
	}
	if f.Seq() != seq {
		t.Error("rejected Begin must not change the sequence")
	}
}

func TestFlight_PhasesOnlyMoveForward(t *testing.T) {
	var f Flight
	seq, _ := f.Begin("1", 1)

	steps := []Phase{PhaseAwaiting, PhaseStreaming, PhaseReplaying}
	for _, p := range steps {
		if !f.Advance(seq, p) {
			t.Fatalf("Advance(%s) failed", p)
		}
	}
	if f.Advance(seq, PhaseAwaiting) {
		t.Error("Advance backwards must be rejected")
	}
	if !f.End(seq) || f.Busy() {
		t.Error("End should return to idle")
	}
	if f.End(seq) {
		t.Error("End twice must be rejected")
	}
}

func TestFlight_StaleSequenceIgnored(t *testing.T) {
	var f Flight
	old, _ := f.Begin("1", 1)
	f.End(old)
	cur, _ := f.Begin("1", 1)

	if f.Advance(old, PhaseAwaiting) || f.End(old) {
		t.Error("stale sequence must not affect the current flight")
	}
	if f.Phase() != PhaseSubmitting {
		t.Errorf("phase = %s", f.Phase())
	}
	if !f.End(cur) {
		t.Error("current End failed")
	}
}
