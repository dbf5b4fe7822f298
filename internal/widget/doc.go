// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package widget holds the view state of the Freecom panel.
//
// A Controller owns whether the panel is open, which conversation is
// selected, the cached conversations and the last visible error. It runs the
// one-time initialization (resume the stored customer or create a new one)
// and exposes the user actions. Front ends call Render to learn which view
// to draw and never mutate state directly.
//
// The Controller is safe for concurrent use. Network calls run outside the
// lock and their results are applied atomically.
package widget
