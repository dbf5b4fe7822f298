// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes support conversation transcripts to files.
//
// # Supported Formats
//
//   - Markdown: readable transcript with a YAML front matter header
//   - JSON: the conversation and its messages as returned by the backend
//
// # Usage
//
//	exp, err := export.ForFormat("markdown", nil)
//	path, err := export.ExportToFile(transcript, exp, nil)
package export
