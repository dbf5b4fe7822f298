// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/freecom-tui/internal/ui/panel"
)

// runTUI runs the support panel until the user quits or ctx is cancelled.
func (a *App) runTUI(ctx context.Context) error {
	if err := a.require(true, false, true); err != nil {
		return err
	}

	m := panel.New(panel.Options{
		Controller: a.Controller,
		Theme:      a.Theme,
		Markdown:   a.Config.UI.RenderMarkdown,
		Timeout:    a.Config.API.Timeout(),
		Reload:     a.Reload,
	})

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			p.Quit()
		case <-done:
		}
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running freecom: %w", err)
	}
	return nil
}
