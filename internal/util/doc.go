// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the showcase-chat packages.
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateWidth: display-width aware truncation for terminal columns
//   - PadWidth: right-pads to a display width
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
package util
