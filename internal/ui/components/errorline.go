// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"errors"

	"github.com/jeranaias/freecom-tui/internal/api"
	"github.com/jeranaias/freecom-tui/internal/ui/styles"
	"github.com/jeranaias/freecom-tui/internal/util"
)

// ErrorLine renders the controller's visible error on one line.
type ErrorLine struct {
	Err   error
	Width int
	theme *styles.Theme
}

// NewErrorLine creates an empty error line.
func NewErrorLine(theme *styles.Theme) *ErrorLine {
	return &ErrorLine{Width: 40, theme: theme}
}

// SetTheme replaces the theme.
func (e *ErrorLine) SetTheme(theme *styles.Theme) { e.theme = theme }

// SetError sets the error to show; nil hides the line.
func (e *ErrorLine) SetError(err error) { e.Err = err }

// SetWidth updates the width.
func (e *ErrorLine) SetWidth(width int) { e.Width = width }

// View renders the error or an empty string.
func (e *ErrorLine) View() string {
	if e.Err == nil {
		return ""
	}
	text := "[X] " + Describe(e.Err) + "  (esc to dismiss)"
	return e.theme.ErrorLine.Render(util.TruncateWidth(text, max(e.Width, minHeaderWidth)))
}

// Describe turns service errors into short human messages.
func Describe(err error) string {
	var gqlErr *api.GraphQLError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, api.ErrUnauthorized):
		return "Not authorized to reach support. Check the API token."
	case errors.Is(err, api.ErrRateLimited):
		return "Too many requests. Try again in a moment."
	case errors.Is(err, api.ErrServer):
		return "Support is temporarily unavailable."
	case errors.As(err, &gqlErr):
		return gqlErr.Error()
	default:
		return util.SingleLine(err.Error())
	}
}
