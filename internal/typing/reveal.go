// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package typing reveals an already received text one character at a time
// to simulate live generation.
//
// Reveal is the pure state machine. The chat surface advances it from
// Bubble Tea ticks; Run advances it from a time.Ticker for line-mode output.
package typing

import (
	"context"
	"time"
)

// DefaultInterval is the delay between two revealed characters.
const DefaultInterval = 100 * time.Millisecond

// =============================================================================
// REVEAL
// =============================================================================

// Reveal produces the prefixes T[0:1], T[0:2], ... T[0:N] of a target text,
// counting in runes so multi-byte characters are never split.
type Reveal struct {
	target []rune
	k      int
	done   bool
}

// NewReveal prepares a reveal of text.
func NewReveal(text string) *Reveal {
	return &Reveal{target: []rune(text)}
}

// Next returns the next prefix. ok is false once the full text has been
// returned; every later call keeps returning ("", false) so termination is
// idempotent.
func (r *Reveal) Next() (slice string, ok bool) {
	if r.done {
		return "", false
	}
	r.k++
	if r.k > len(r.target) {
		r.k = len(r.target)
		r.done = true
		return "", false
	}
	return string(r.target[:r.k]), true
}

// Done reports whether the reveal has terminated.
func (r *Reveal) Done() bool { return r.done }

// Shown returns the number of runes revealed so far.
func (r *Reveal) Shown() int { return r.k }

// Len returns the target length in runes.
func (r *Reveal) Len() int { return len(r.target) }

// Text returns the full target.
func (r *Reveal) Text() string { return string(r.target) }

// Stop terminates the reveal early, leaving the last slice in place.
func (r *Reveal) Stop() { r.done = true }

// =============================================================================
// TICKER DRIVER
// =============================================================================

// Run reveals text by calling emit with each successive prefix, one per
// interval. It returns ctx.Err() if cancelled before completion; emit is
// never called after cancellation is observed.
func Run(ctx context.Context, text string, interval time.Duration, emit func(slice string)) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	r := NewReveal(text)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Stop()
			return ctx.Err()
		case <-ticker.C:
			if ctx.Err() != nil {
				r.Stop()
				return ctx.Err()
			}
			slice, ok := r.Next()
			if !ok {
				return nil
			}
			emit(slice)
		}
	}
}
