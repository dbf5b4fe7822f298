// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the freecom panel.
//
// Colors use lipgloss.AdaptiveColor so the panel reads well on light and
// dark terminals. The widget's main color (headers, toggle button, customer
// bubbles) comes from configuration and is applied by NewTheme.
package styles
