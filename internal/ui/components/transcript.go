// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/freecom-tui/internal/model"
	"github.com/jeranaias/freecom-tui/internal/ui/styles"
	"github.com/jeranaias/freecom-tui/internal/util"
)

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is a scrollable view of a conversation's messages.
type Transcript struct {
	viewport viewport.Model
	messages []model.Message
	loading  bool

	// Markdown renders message text through glamour.
	Markdown bool
	Now      func() time.Time

	renderer      *glamour.TermRenderer
	rendererWidth int
	theme         *styles.Theme
}

// NewTranscript creates a transcript.
func NewTranscript(theme *styles.Theme, markdown bool) *Transcript {
	return &Transcript{
		viewport: viewport.New(40, 10),
		Markdown: markdown,
		Now:      time.Now,
		theme:    theme,
	}
}

// SetTheme replaces the theme and re-renders.
func (t *Transcript) SetTheme(theme *styles.Theme) {
	t.theme = theme
	t.renderer = nil
	t.refresh(false)
}

// SetSize updates the viewport dimensions.
func (t *Transcript) SetSize(width, height int) {
	t.viewport.Width = max(width, minHeaderWidth)
	t.viewport.Height = max(height, 1)
	t.refresh(false)
}

// SetMessages replaces the transcript and scrolls to the newest message.
func (t *Transcript) SetMessages(msgs []model.Message) {
	t.messages = msgs
	t.loading = false
	t.refresh(true)
}

// SetLoading shows a placeholder while the transcript is fetched.
func (t *Transcript) SetLoading(loading bool) {
	t.loading = loading
	t.refresh(false)
}

// Update forwards scroll keys and mouse wheel events to the viewport.
func (t *Transcript) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	t.viewport, cmd = t.viewport.Update(msg)
	return cmd
}

// View renders the visible part of the transcript.
func (t *Transcript) View() string {
	return t.viewport.View()
}

func (t *Transcript) refresh(toBottom bool) {
	t.viewport.SetContent(t.render())
	if toBottom {
		t.viewport.GotoBottom()
	}
}

func (t *Transcript) render() string {
	if t.loading && len(t.messages) == 0 {
		return t.theme.EmptyState.Render("Loading messages...")
	}
	if len(t.messages) == 0 {
		return t.theme.EmptyState.Render("Say hello! A team member will be with you shortly.")
	}

	width := t.viewport.Width
	bubbleWidth := max(width*3/4, minHeaderWidth-4)

	blocks := make([]string, 0, len(t.messages))
	for _, m := range t.messages {
		blocks = append(blocks, t.renderMessage(m, width, bubbleWidth))
	}
	return strings.Join(blocks, "\n\n")
}

func (t *Transcript) renderMessage(m model.Message, width, bubbleWidth int) string {
	author := "You"
	style := t.theme.CustomerBubble
	align := lipgloss.Right
	if m.FromAgent() {
		author = m.Agent.DisplayName
		style = t.theme.AgentBubble
		align = lipgloss.Left
	}

	label := t.theme.MessageTime.Render(util.TruncateWidth(author+"  "+util.TimeAgo(m.CreatedAt, t.now()), bubbleWidth))
	body := style.Width(bubbleWidth).Render(t.renderText(m.Text, bubbleWidth-2))

	block := lipgloss.JoinVertical(align, label, body)
	return lipgloss.PlaceHorizontal(width, align, block)
}

// renderText renders markdown when enabled, falling back to plain text.
func (t *Transcript) renderText(text string, width int) string {
	if !t.Markdown {
		return text
	}
	if t.renderer == nil || t.rendererWidth != width {
		style := "light"
		if t.theme.IsDark {
			style = "dark"
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithStylePath(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return text
		}
		t.renderer = r
		t.rendererWidth = width
	}
	out, err := t.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

func (t *Transcript) now() time.Time {
	if t.Now == nil {
		return time.Now()
	}
	return t.Now()
}
