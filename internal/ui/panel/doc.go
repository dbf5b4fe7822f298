// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package panel is the bubbletea program for the support widget. It routes
// key events to widget.Controller actions, runs every network call in a
// tea.Cmd and draws the components from controller snapshots.
package panel
