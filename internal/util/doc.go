// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across freecom.
//
// # Key Functions
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync, used for the
//     identity file and the config file
//
// Display Helpers:
//   - TruncateWidth: cell-width aware truncation for terminal columns
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - SingleLine: collapses whitespace so previews fit on one row
//   - TimeAgo: relative timestamps ("5 minutes ago")
//
// # Usage
//
//	preview := util.TruncateWidth(util.SingleLine(msg.Text), 40)
//	created := util.TimeAgo(conv.UpdatedAt, time.Now())
package util
