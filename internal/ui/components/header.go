// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/freecom-tui/internal/ui/styles"
	"github.com/jeranaias/freecom-tui/internal/util"
	"github.com/jeranaias/freecom-tui/internal/widget"
)

const minHeaderWidth = 20

// =============================================================================
// LIST HEADER
// =============================================================================

// ListHeader is the banner above the conversation list.
type ListHeader struct {
	CompanyName  string
	CustomerName string
	Width        int
	theme        *styles.Theme
}

// NewListHeader creates a ListHeader.
func NewListHeader(theme *styles.Theme) *ListHeader {
	return &ListHeader{Width: 40, theme: theme}
}

// SetTheme replaces the theme (main color changes).
func (h *ListHeader) SetTheme(theme *styles.Theme) { h.theme = theme }

// SetWidth updates the header width.
func (h *ListHeader) SetWidth(width int) { h.Width = width }

// SetCompanyName updates the company name.
func (h *ListHeader) SetCompanyName(name string) { h.CompanyName = name }

// SetCustomerName updates the greeting.
func (h *ListHeader) SetCustomerName(name string) { h.CustomerName = name }

// View renders the header.
func (h *ListHeader) View() string {
	width := max(h.Width, minHeaderWidth)
	inner := width - 2

	title := h.theme.HeaderTitle.Render(util.TruncateWidth(h.CompanyName, inner))
	subtitle := "We're here to help"
	if h.CustomerName != "" {
		subtitle = "Hi " + h.CustomerName + ", we're here to help"
	}
	sub := h.theme.HeaderSubtitle.Render(util.TruncateWidth(subtitle, inner))

	return h.theme.Header.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, title, sub))
}

// =============================================================================
// CHAT HEADER
// =============================================================================

// ChatHeader shows who the customer is talking to.
type ChatHeader struct {
	chat  widget.ChatView
	Width int
	theme *styles.Theme
}

// NewChatHeader creates a ChatHeader.
func NewChatHeader(theme *styles.Theme) *ChatHeader {
	return &ChatHeader{Width: 40, theme: theme}
}

// SetTheme replaces the theme.
func (h *ChatHeader) SetTheme(theme *styles.Theme) { h.theme = theme }

// SetWidth updates the header width.
func (h *ChatHeader) SetWidth(width int) { h.Width = width }

// SetChat sets the derived chat values.
func (h *ChatHeader) SetChat(cv widget.ChatView) { h.chat = cv }

// View renders the header. The back arrow is drawn only when the chat view
// allows returning to the list.
func (h *ChatHeader) View() string {
	width := max(h.Width, minHeaderWidth)
	inner := width - 2

	prefix := ""
	if h.chat.ShowBackButton {
		prefix = h.theme.BackButton.Render("< ")
	}
	nameWidth := inner - lipgloss.Width(prefix)
	name := h.theme.HeaderTitle.Render(util.TruncateWidth(h.chat.PartnerName, nameWidth))
	top := prefix + name

	meta := h.chat.Created
	if meta != "" {
		meta = "Last active " + meta
	}
	if h.chat.ProfileImageURL != "" && lipgloss.Width(meta)+lipgloss.Width(h.chat.ProfileImageURL)+3 <= inner {
		if meta != "" {
			meta += " | "
		}
		meta += h.chat.ProfileImageURL
	}
	sub := h.theme.HeaderSubtitle.Render(util.TruncateWidth(meta, inner))

	return h.theme.Header.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, top, sub))
}
