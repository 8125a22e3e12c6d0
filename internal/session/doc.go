// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks which conversations exist, which one is active,
// and where the current submission is in its lifecycle.
//
// Store owns the Message Log of the active conversation so that every
// change of the active conversation and the matching log reset happen in
// one call. Flight is the single-flight submission state machine.
//
// Neither type is safe for concurrent use. Both are driven from one event
// loop (the Bubble Tea update loop or the line-mode REPL); background work
// reports back with messages and never touches them directly.
package session
