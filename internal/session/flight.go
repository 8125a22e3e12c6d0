// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import "github.com/jeranaias/showcase-chat/internal/model"

// Phase is a step of the submission lifecycle.
type Phase int

const (
	// PhaseIdle accepts input.
	PhaseIdle Phase = iota
	// PhaseSubmitting has locked input; nothing has been sent yet.
	PhaseSubmitting
	// PhaseAwaiting has inserted the optimistic user message and started
	// the request.
	PhaseAwaiting
	// PhaseStreaming is reading the response body into the buffer.
	PhaseStreaming
	// PhaseReplaying is revealing the buffered reply.
	PhaseReplaying
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseAwaiting:
		return "awaiting"
	case PhaseStreaming:
		return "streaming"
	case PhaseReplaying:
		return "replaying"
	default:
		return "unknown"
	}
}

// =============================================================================
// FLIGHT
// =============================================================================

// Flight guards a single submission at a time. Each submission gets a
// sequence number; stale callers holding an older number are ignored.
type Flight struct {
	phase Phase
	seq   uint64
	owner model.ID
	gen   uint64
}

// Begin starts a submission owned by the conversation (owner, gen). It
// returns false, and changes nothing, if a submission is already running.
func (f *Flight) Begin(owner model.ID, gen uint64) (seq uint64, ok bool) {
	if f.phase != PhaseIdle {
		return 0, false
	}
	f.seq++
	f.phase = PhaseSubmitting
	f.owner = owner
	f.gen = gen
	return f.seq, true
}

// Advance moves submission seq forward to phase. Moving backwards, or
// advancing a finished or superseded submission, is rejected.
func (f *Flight) Advance(seq uint64, phase Phase) bool {
	if seq != f.seq || f.phase == PhaseIdle || phase <= f.phase {
		return false
	}
	f.phase = phase
	return true
}

// End returns submission seq to idle. It reports false for stale seq.
func (f *Flight) End(seq uint64) bool {
	if seq != f.seq || f.phase == PhaseIdle {
		return false
	}
	f.phase = PhaseIdle
	return true
}

// Rebind records the id a draft submission was adopted under.
func (f *Flight) Rebind(seq uint64, owner model.ID) {
	if seq == f.seq {
		f.owner = owner
	}
}

// Phase returns the current phase.
func (f *Flight) Phase() Phase { return f.phase }

// Busy reports whether input should be locked.
func (f *Flight) Busy() bool { return f.phase != PhaseIdle }

// Seq returns the sequence number of the latest submission.
func (f *Flight) Seq() uint64 { return f.seq }

// Owner returns the conversation the latest submission was made for.
func (f *Flight) Owner() (model.ID, uint64) { return f.owner, f.gen }
