// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport is the HTTP client for the showcase chat backend.
//
// Every request carries the bearer token from the auth.Credentials the
// client was built with. Responses are decoded into model types at this
// boundary; nothing above this package sees raw JSON.
//
// # Endpoints
//
//	GET    /chats                 -> {"data": [Conversation]}
//	GET    /chats/{id}/messages   -> {"data": [Message]}
//	POST   /chats                 {"content": text} -> streamed reply
//	POST   /chats/{id}/messages   {"content": text} -> streamed reply
//	DELETE /chats/{id}            -> status only
//
// Streamed replies are read to completion by Ingest before anything is
// shown. The reply text may end with a JSON object carrying the id (and
// sometimes the title) of the conversation; ParseReply splits the two.
//
// # Errors
//
// Failures are typed: *NetworkError, *HTTPError, *StreamUnavailableError,
// *TimeoutError, and auth.RequiredError when the client has no token.
// UserMessage turns any of them into the single line shown to the user.
package transport
