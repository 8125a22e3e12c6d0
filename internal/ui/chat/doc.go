// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat screen for the TUI.
//
// The screen is a Bubble Tea model. Every mutation of the conversation list
// and the message log happens inside Update, on the program's event loop,
// so none of that state needs locking. Network calls run as tea.Cmds and
// report back through the message types in messages.go.
//
// # Submission lifecycle
//
// Submitting a message walks the session.Flight phases:
//
//	idle -> submitting -> awaiting -> streaming -> replaying -> idle
//
// The user message is inserted as soon as the request starts. The reply is
// read to completion before anything is shown, and is then revealed one
// character per tick. Each tick carries the conversation and generation it
// was started for and is dropped if the user has since moved elsewhere.
//
// # Key bindings
//
//	Enter       send message / open conversation
//	Tab         switch focus between sidebar and input
//	Ctrl+N      new conversation
//	d / Delete  delete the highlighted conversation (asks y/n)
//	Esc         dismiss error, skip typing, or cancel the request
//	Ctrl+R      reload conversations
//	?           toggle help
//	Ctrl+C      quit
package chat
