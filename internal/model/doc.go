// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// # Key Types
//
//   - ID: opaque backend identifier, decoded from either a JSON number or string
//   - Conversation: a backend chat with id and title
//   - Message: one turn authored by the user or the assistant
//   - Log: the ordered messages of the active conversation, with provisional
//     (client-only) records kept apart from confirmed (server) records
//   - Turn: a (user, assistant) pair used when rebuilding history
//
// # Usage
//
//	var log model.Log
//	pending := log.AppendProvisional(model.SenderUser, "hello")
//	// ... later, after the server history is fetched:
//	log.Reconcile(fetched)
//	_ = pending.ID // replaced by the confirmed record with the same content
package model
