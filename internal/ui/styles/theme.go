// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components of the panel.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// MainColor is the normalized "#RRGGBB" accent
	MainColor string

	// ==========================================================================
	// PANEL
	// ==========================================================================

	Panel     lipgloss.Style
	PanelBody lipgloss.Style

	// ==========================================================================
	// HEADERS
	// ==========================================================================

	Header         lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style
	BackButton     lipgloss.Style

	// ==========================================================================
	// CONVERSATION LIST
	// ==========================================================================

	ListItem         lipgloss.Style
	ListItemSelected lipgloss.Style
	ListName         lipgloss.Style
	ListPreview      lipgloss.Style
	ListTime         lipgloss.Style
	NewConversation  lipgloss.Style

	// ==========================================================================
	// TRANSCRIPT
	// ==========================================================================

	CustomerBubble lipgloss.Style
	AgentBubble    lipgloss.Style
	MessageTime    lipgloss.Style
	EmptyState     lipgloss.Style

	// ==========================================================================
	// CHROME
	// ==========================================================================

	Toggle      lipgloss.Style
	ErrorLine   lipgloss.Style
	Muted       lipgloss.Style
	HelpKey     lipgloss.Style
	HelpDesc    lipgloss.Style
	InputBorder lipgloss.Style
}

// NewTheme builds a theme for mode ("dark", "light" or "auto") and the
// widget main color. "auto" asks the terminal for its background.
func NewTheme(mode, mainColor string) *Theme {
	var isDark bool
	switch strings.ToLower(mode) {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	default:
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),
		MainColor:    NormalizeHex(mainColor),
	}
	lipgloss.SetHasDarkBackground(isDark)
	t.initStyles()
	return t
}

// WithMainColor returns a copy of t using a different main color.
func (t *Theme) WithMainColor(mainColor string) *Theme {
	clone := *t
	clone.MainColor = NormalizeHex(mainColor)
	clone.initStyles()
	return &clone
}

func (t *Theme) initStyles() {
	main := lipgloss.Color(t.MainColor)
	onMain := ContrastText(t.MainColor)

	t.Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Overlay)

	t.PanelBody = lipgloss.NewStyle().
		Padding(0, 1)

	t.Header = lipgloss.NewStyle().
		Background(main).
		Foreground(onMain).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(onMain).
		Background(main)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(onMain).
		Background(main).
		Faint(true)

	t.BackButton = lipgloss.NewStyle().
		Bold(true).
		Foreground(onMain).
		Background(main)

	t.ListItem = lipgloss.NewStyle().
		Padding(0, 1)

	t.ListItemSelected = lipgloss.NewStyle().
		Padding(0, 1).
		Background(SurfaceBright).
		BorderLeft(true).
		BorderStyle(lipgloss.ThickBorder()).
		BorderForeground(main)

	t.ListName = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.ListPreview = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.ListTime = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.NewConversation = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(lipgloss.AdaptiveColor{Light: "#4B5563", Dark: "#45475A"}).
		Padding(0, 2)

	// Bubbles use a left bar rather than a background so markdown output,
	// which carries its own colors, stays readable.
	t.CustomerBubble = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(main).
		Foreground(TextPrimary).
		PaddingLeft(1)

	t.AgentBubble = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(Emerald).
		Foreground(TextPrimary).
		PaddingLeft(1)

	t.MessageTime = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.EmptyState = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true).
		Padding(1, 0)

	t.Toggle = lipgloss.NewStyle().
		Bold(true).
		Foreground(onMain).
		Background(main).
		Padding(0, 2)

	t.ErrorLine = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.Muted = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.HelpKey = lipgloss.NewStyle().
		Foreground(main).
		Bold(true)

	t.HelpDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.InputBorder = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), true, false, false, false).
		BorderForeground(Overlay)
}
