// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// freecom - customer support chat widget for the terminal.
//
// The widget creates or resumes a customer identity stored on this device,
// lists the customer's conversations and lets them chat with support agents
// through a GraphQL backend.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeranaias/freecom-tui/internal/api"
	"github.com/jeranaias/freecom-tui/internal/cli"
	"github.com/jeranaias/freecom-tui/internal/config"
	"github.com/jeranaias/freecom-tui/internal/identity"
	"github.com/jeranaias/freecom-tui/internal/logging"
	"github.com/jeranaias/freecom-tui/internal/namegen"
	"github.com/jeranaias/freecom-tui/internal/ui/styles"
	"github.com/jeranaias/freecom-tui/internal/widget"
)

func main() {
	cmd, args, err := cli.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		cli.PrintUsage(os.Stderr)
		os.Exit(1)
	}

	if err := run(cmd, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the application for cmd and executes it.
func run(cmd cli.Command, args cli.Args) error {
	if cmd == cli.CmdHelp || cmd == cli.CmdVersion {
		return (&cli.App{Logger: logging.Discard()}).Run(context.Background(), cmd, args)
	}

	cfg, err := loadConfig(args.ConfigPath)
	if err != nil {
		return err
	}
	config.SetGlobal(cfg)

	if err := setupLogging(cmd, args, cfg); err != nil {
		return err
	}
	defer logging.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Config:     cfg,
		ConfigPath: args.ConfigPath,
		Logger:     logging.For("cli"),
	}

	if cmd == cli.CmdConfig {
		return app.Run(ctx, cmd, args)
	}

	// Everything else needs the identity store.
	identityPath, err := cfg.ResolvedIdentityPath()
	if err != nil {
		return err
	}
	store, err := identity.Open(cfg.Identity.Backend, identityPath)
	if err != nil {
		return fmt.Errorf("opening identity store: %w", err)
	}
	defer store.Close()
	app.Store = store

	if cmd.NeedsWidget() {
		if err := wireWidget(ctx, app, cmd); err != nil {
			return err
		}
	}

	return app.Run(ctx, cmd, args)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

// setupLogging sends logs to the log file for interactive commands, where
// stdout belongs to the UI, and to stderr otherwise.
func setupLogging(cmd cli.Command, args cli.Args, cfg *config.Config) error {
	opts := logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}
	if args.Verbose {
		opts.Level = "debug"
	}
	if args.Quiet {
		opts.Level = "error"
	}

	switch cmd {
	case cli.CmdTUI, cli.CmdChat:
		path, err := cfg.ResolvedLogPath()
		if err != nil {
			return err
		}
		opts.Path = path
	default:
		opts.Writer = os.Stderr
		if !args.Verbose {
			opts.Level = "warn"
		}
	}

	_, err := logging.Setup(opts)
	return err
}

// wireWidget builds the API client, the controller and, for the TUI, the
// theme and the config reload feed.
func wireWidget(ctx context.Context, app *cli.App, cmd cli.Command) error {
	cfg := app.Config

	app.Client = api.NewClient(cfg.API.Endpoint).
		WithToken(cfg.API.Token).
		WithTimeout(cfg.API.Timeout()).
		WithMaxRetries(cfg.API.MaxRetries).
		WithRateLimit(cfg.API.RateLimit, cfg.API.RateBurst).
		WithLogger(logging.For("api"))

	ctrl, err := widget.New(widget.Options{
		Service:             app.Client,
		Store:               app.Store,
		Names:               namegen.New(cfg.Customer.MaxUsernameLength),
		MaxUsernameLength:   cfg.Customer.MaxUsernameLength,
		Presentation:        presentationOf(cfg),
		TestWithNewCustomer: cfg.Customer.TestWithNewCustomer,
		StartOpen:           cfg.UI.StartOpen,
		Logger:              logging.For("widget"),
	})
	if err != nil {
		return err
	}
	app.Controller = ctrl

	if cmd != cli.CmdTUI {
		return nil
	}
	app.Theme = styles.NewTheme(cfg.UI.Theme, cfg.Widget.MainColor)
	app.Reload = watchPresentation(ctx, app.ConfigPath)
	return nil
}

func presentationOf(cfg *config.Config) widget.Presentation {
	return widget.Presentation{
		MainColor:      cfg.Widget.MainColor,
		CompanyName:    cfg.Widget.CompanyName,
		CompanyLogoURL: cfg.Widget.CompanyLogoURL,
	}
}

// watchPresentation streams presentation settings whenever the config file
// changes. It returns nil when there is no file to watch.
func watchPresentation(ctx context.Context, explicit string) <-chan widget.Presentation {
	path := explicit
	if path == "" {
		p, found, err := config.ActivePath()
		if err != nil || !found {
			return nil
		}
		path = p
	}

	logger := logging.For("main")
	ch := make(chan widget.Presentation, 1)
	go func() {
		err := config.Watch(ctx, path, func(cfg *config.Config) {
			config.SetGlobal(cfg)
			select {
			case ch <- presentationOf(cfg):
			default:
				// Drop the stale pending update in favor of this one.
				select {
				case <-ch:
				default:
				}
				ch <- presentationOf(cfg)
			}
		})
		if err != nil {
			logger.Warn("config watch stopped", slog.String("path", path), slog.Any("error", err))
		}
	}()
	return ch
}
