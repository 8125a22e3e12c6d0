// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for
// showcase-chat.
//
// Configuration file locations (in order of precedence):
//   - ~/.showcase/config.toml
//   - ~/.showcase/config.json
//   - Built-in defaults
//
// Environment variables override file values:
//
//	SHOWCASE_BASE_URL     api.base_url
//	SHOWCASE_TOKEN        bearer token (memory only, never saved)
//	SHOWCASE_TOKEN_FILE   api.token_file
//	SHOWCASE_TIMEOUT      api.timeout_seconds
//	SHOWCASE_TYPING_MS    ui.typing_interval_ms
//	SHOWCASE_NO_MARKDOWN  disables ui.render_markdown
//
// # Usage
//
//	cfg := config.Global()
//	client, err := transport.New(creds, cfg.TransportOptions())
package config
