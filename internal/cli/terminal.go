// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// IsTTY reports whether stdin is a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// isTerminalWriter reports whether w is a terminal file.
func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// ColorsEnabled reports whether colored output should be written to w.
// NO_COLOR disables colors regardless of the terminal.
func ColorsEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isTerminalWriter(w)
}

// TerminalWidth returns the width of stdout, or 80.
func TerminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// =============================================================================
// PALETTE
// =============================================================================

// palette holds the colors used by plain-text output.
type palette struct {
	title *color.Color
	label *color.Color
	ok    *color.Color
	warn  *color.Color
	fail  *color.Color
	muted *color.Color
	agent *color.Color
	you   *color.Color
}

func newPalette(w io.Writer) palette {
	p := palette{
		title: color.New(color.FgBlue, color.Bold),
		label: color.New(color.FgWhite),
		ok:    color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		fail:  color.New(color.FgRed, color.Bold),
		muted: color.New(color.FgHiBlack),
		agent: color.New(color.FgCyan, color.Bold),
		you:   color.New(color.FgBlue, color.Bold),
	}
	enabled := ColorsEnabled(w)
	for _, c := range []*color.Color{p.title, p.label, p.ok, p.warn, p.fail, p.muted, p.agent, p.you} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}
