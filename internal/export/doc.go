// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders conversation transcripts to files.
//
// # Supported Formats
//
//   - Markdown: headings per speaker, optional YAML frontmatter
//   - JSON: the transcript as stored, for re-import or tooling
//   - HTML: a single self-contained page
//
// # Usage
//
//	exp, err := export.ForFormat("md", nil)
//	data, err := exp.Export(transcript)
//
// Write straight to a directory:
//
//	path, err := export.ToFile(transcript, exp, &export.Options{OutputDir: "."})
package export
