// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jeranaias/freecom-tui/internal/api"
	"github.com/jeranaias/freecom-tui/internal/config"
	"github.com/jeranaias/freecom-tui/internal/identity"
	"github.com/jeranaias/freecom-tui/internal/logging"
	"github.com/jeranaias/freecom-tui/internal/ui/styles"
	"github.com/jeranaias/freecom-tui/internal/widget"
)

// =============================================================================
// APP
// =============================================================================

// App holds the dependencies the subcommands run against. Commands that do
// not talk to the backend only need Config.
type App struct {
	Config *config.Config

	// ConfigPath is an explicit config file from --config.
	ConfigPath string

	Store      identity.Store
	Client     *api.Client
	Controller *widget.Controller
	Theme      *styles.Theme

	// Reload delivers presentation changes to the TUI.
	Reload <-chan widget.Presentation

	Stdout io.Writer
	Stderr io.Writer

	// NewLineReader opens the chat input. Defaults to a liner prompt.
	NewLineReader func() (LineReader, error)

	// Confirm asks a yes/no question. Defaults to a liner prompt on a TTY.
	Confirm func(question string) (bool, error)

	Logger *slog.Logger
}

// ErrMissingDependency is returned when a command runs without the store,
// client or controller it needs.
var ErrMissingDependency = errors.New("cli: missing dependency")

// Run executes cmd.
func (a *App) Run(ctx context.Context, cmd Command, args Args) error {
	a.defaults()
	a.Logger.Debug("running command", "command", cmd.String())

	switch cmd {
	case CmdTUI:
		return a.runTUI(ctx)
	case CmdChat:
		return a.runChat(ctx)
	case CmdStatus:
		return a.runStatus(ctx, args)
	case CmdReset:
		return a.runReset(args)
	case CmdConfig:
		return a.runConfig(args)
	case CmdExport:
		return a.runExport(ctx, args)
	case CmdVersion:
		return a.runVersion(args)
	default:
		PrintUsage(a.Stdout)
		return nil
	}
}

func (a *App) defaults() {
	if a.Stdout == nil {
		a.Stdout = os.Stdout
	}
	if a.Stderr == nil {
		a.Stderr = os.Stderr
	}
	if a.Logger == nil {
		a.Logger = logging.For("cli")
	}
	if a.Config == nil {
		a.Config = config.Default()
	}
	if a.NewLineReader == nil {
		a.NewLineReader = newLinerReader
	}
	if a.Confirm == nil {
		a.Confirm = confirmWithLiner
	}
}

func (a *App) require(store, client, ctrl bool) error {
	switch {
	case store && a.Store == nil:
		return fmt.Errorf("%w: identity store", ErrMissingDependency)
	case client && a.Client == nil:
		return fmt.Errorf("%w: api client", ErrMissingDependency)
	case ctrl && a.Controller == nil:
		return fmt.Errorf("%w: widget controller", ErrMissingDependency)
	}
	return nil
}

// presentation returns the widget settings from the loaded config.
func (a *App) presentation() widget.Presentation {
	return widget.Presentation{
		MainColor:      a.Config.Widget.MainColor,
		CompanyName:    a.Config.Widget.CompanyName,
		CompanyLogoURL: a.Config.Widget.CompanyLogoURL,
	}
}

func (a *App) runVersion(args Args) error {
	if args.JSON {
		return NewJSONResponse("version", map[string]string{
			"version":    Version,
			"git_commit": GitCommit,
			"build_date": BuildDate,
		}).Write(a.Stdout)
	}
	PrintVersion(a.Stdout)
	return nil
}
