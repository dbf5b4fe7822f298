// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/freecom-tui/internal/model"
	"github.com/jeranaias/freecom-tui/internal/ui/styles"
	"github.com/jeranaias/freecom-tui/internal/util"
)

// =============================================================================
// CONVERSATION LIST
// =============================================================================

// ConversationList renders conversations newest first with a cursor.
// The last row is the "New Conversation" button.
type ConversationList struct {
	conversations []model.Conversation
	cursor        int
	offset        int

	CompanyName string
	Width       int
	Height      int
	Now         func() time.Time

	theme *styles.Theme
}

// NewConversationList creates an empty list.
func NewConversationList(theme *styles.Theme) *ConversationList {
	return &ConversationList{Width: 40, Height: 10, Now: time.Now, theme: theme}
}

// SetTheme replaces the theme.
func (l *ConversationList) SetTheme(theme *styles.Theme) { l.theme = theme }

// SetSize updates the available area.
func (l *ConversationList) SetSize(width, height int) {
	l.Width = width
	l.Height = height
	l.clampOffset()
}

// SetConversations replaces the rows, keeping the cursor on the same
// conversation when it is still present.
func (l *ConversationList) SetConversations(convs []model.Conversation) {
	selectedID := ""
	if c, ok := l.Selected(); ok {
		selectedID = c.ID
	}
	// An empty list has its cursor on the button; that is not a user choice.
	onButton := l.OnNewConversation() && len(l.conversations) > 0

	l.conversations = convs

	switch {
	case onButton:
		l.cursor = len(convs)
	case selectedID != "":
		if i := model.IndexOf(convs, selectedID); i >= 0 {
			l.cursor = i
		}
	}
	if l.cursor > len(l.conversations) {
		l.cursor = len(l.conversations)
	}
	l.clampOffset()
}

// Len returns the number of conversations.
func (l *ConversationList) Len() int { return len(l.conversations) }

// Cursor returns the cursor row. Len() is the "New Conversation" button.
func (l *ConversationList) Cursor() int { return l.cursor }

// MoveUp moves the cursor up one row.
func (l *ConversationList) MoveUp() {
	if l.cursor > 0 {
		l.cursor--
	}
	l.clampOffset()
}

// MoveDown moves the cursor down one row.
func (l *ConversationList) MoveDown() {
	if l.cursor < len(l.conversations) {
		l.cursor++
	}
	l.clampOffset()
}

// Selected returns the conversation under the cursor.
func (l *ConversationList) Selected() (model.Conversation, bool) {
	if l.cursor < 0 || l.cursor >= len(l.conversations) {
		return model.Conversation{}, false
	}
	return l.conversations[l.cursor], true
}

// OnNewConversation reports whether the cursor is on the button row.
func (l *ConversationList) OnNewConversation() bool {
	return l.cursor == len(l.conversations)
}

// rowsVisible is how many two-line rows fit above the button.
func (l *ConversationList) rowsVisible() int {
	rows := (l.Height - 2) / 2
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (l *ConversationList) clampOffset() {
	rows := l.rowsVisible()
	if l.cursor < l.offset {
		l.offset = l.cursor
	}
	if l.cursor >= l.offset+rows && l.cursor < len(l.conversations) {
		l.offset = l.cursor - rows + 1
	}
	if l.offset > max(0, len(l.conversations)-rows) {
		l.offset = max(0, len(l.conversations)-rows)
	}
	if l.offset < 0 {
		l.offset = 0
	}
}

// View renders the list.
func (l *ConversationList) View() string {
	width := max(l.Width, minHeaderWidth)
	var b strings.Builder

	if len(l.conversations) == 0 {
		b.WriteString(l.theme.EmptyState.Render("No conversations yet"))
		b.WriteString("\n")
	}

	end := min(len(l.conversations), l.offset+l.rowsVisible())
	for i := l.offset; i < end; i++ {
		b.WriteString(l.renderRow(l.conversations[i], i == l.cursor, width))
		b.WriteString("\n")
	}

	button := l.theme.NewConversation.Render("+ New Conversation")
	if l.OnNewConversation() {
		button = l.theme.NewConversation.Underline(true).Render("> New Conversation")
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, button))
	return b.String()
}

func (l *ConversationList) renderRow(conv model.Conversation, selected bool, width int) string {
	inner := width - 3

	name := l.CompanyName
	if conv.Agent != nil {
		name = conv.Agent.DisplayName
	}

	when := util.TimeAgo(conv.UpdatedAt, l.now())
	nameWidth := inner - len(when) - 1
	top := l.theme.ListName.Render(util.PadWidth(util.TruncateWidth(name, nameWidth), nameWidth)) +
		" " + l.theme.ListTime.Render(when)

	preview := "No messages yet"
	if m, ok := conv.LatestMessage(); ok {
		preview = util.SingleLine(m.Text)
		if !m.FromAgent() {
			preview = "You: " + preview
		}
	}
	bottom := l.theme.ListPreview.Render(util.TruncateWidth(preview, inner))

	style := l.theme.ListItem
	if selected {
		style = l.theme.ListItemSelected
	}
	return style.Width(width).Render(top + "\n" + bottom)
}

func (l *ConversationList) now() time.Time {
	if l.Now == nil {
		return time.Now()
	}
	return l.Now()
}
