// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/freecom-tui/internal/ui/styles"
)

// ToggleButton is the button that opens and closes the panel. It is drawn
// in the main color whether or not the panel is open.
type ToggleButton struct {
	Open   bool
	Unread int
	Width  int
	theme  *styles.Theme
}

// NewToggleButton creates a closed toggle button.
func NewToggleButton(theme *styles.Theme) *ToggleButton {
	return &ToggleButton{Width: 40, theme: theme}
}

// SetTheme replaces the theme.
func (b *ToggleButton) SetTheme(theme *styles.Theme) { b.theme = theme }

// SetOpen mirrors the panel state.
func (b *ToggleButton) SetOpen(open bool) { b.Open = open }

// SetWidth updates the width used for right alignment.
func (b *ToggleButton) SetWidth(width int) { b.Width = width }

// Label returns the button text.
func (b *ToggleButton) Label() string {
	if b.Open {
		return "x Close"
	}
	return "? Chat with us"
}

// View renders the button aligned to the right edge.
func (b *ToggleButton) View() string {
	button := b.theme.Toggle.Render(b.Label())
	return lipgloss.PlaceHorizontal(max(b.Width, lipgloss.Width(button)), lipgloss.Right, button)
}
