// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage keeps local transcript snapshots of backend conversations.
//
// The backend is the only source of truth for chats. A transcript is a
// point-in-time copy taken by `showcase-chat export`, so it can be read or
// re-rendered later without network access.
//
// # Usage
//
//	store, err := storage.NewTranscriptStore(cfg.Storage.TranscriptsDir)
//	id, err := store.Save(&storage.Transcript{ConversationID: "42", Messages: msgs})
//	t, err := store.Load(id)
//
// # Storage Location
//
// Transcripts are stored as JSON files in ~/.showcase/transcripts/ unless
// storage.transcripts_dir says otherwise.
package storage
