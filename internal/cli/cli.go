// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Version information, set at build time with -ldflags.
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command is the subcommand to run.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdStatus
	CmdReset
	CmdConfig
	CmdExport
	CmdVersion
	CmdHelp
)

var commandNames = map[Command]string{
	CmdTUI:     "tui",
	CmdChat:    "chat",
	CmdStatus:  "status",
	CmdReset:   "reset",
	CmdConfig:  "config",
	CmdExport:  "export",
	CmdVersion: "version",
	CmdHelp:    "help",
}

// String returns the command name.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("command(%d)", int(c))
}

// NeedsWidget reports whether the command talks to the support backend.
func (c Command) NeedsWidget() bool {
	switch c {
	case CmdTUI, CmdChat, CmdStatus, CmdExport:
		return true
	}
	return false
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	ConfigPath string
	JSON       bool
	Verbose    bool
	Quiet      bool

	// Command-specific
	Subcommand string
	Force      bool
	Format     string
	OutDir     string
	Raw        []string
}

// ErrUnknownCommand is returned by Parse for an unrecognized command.
var ErrUnknownCommand = errors.New("unknown command")

const usageText = `freecom - customer support chat in your terminal

Usage:
  freecom                        Open the support panel (default)
  freecom tui                    Open the support panel
  freecom chat                   Plain line-based chat
  freecom status [--json]        Show identity, backend and conversations
  freecom reset [--force]        Forget the local customer identity
  freecom config [show|path|init]
                                 Show, locate or create the config file
  freecom export [N|ID] [--format md|json] [--out DIR]
                                 Save a conversation transcript (default: latest)
  freecom version [--json]       Show version information
  freecom help                   Show this help

Global flags:
  --config PATH                  Use a specific config file
  --json                         Machine-readable output
  -v, --verbose                  Debug logging
  -q, --quiet                    Less output

Environment:
  FREECOM_HOME                   Config directory (default ~/.freecom)
  FREECOM_API_ENDPOINT           GraphQL endpoint
  FREECOM_API_TOKEN              Bearer token for the endpoint
  FREECOM_TEST_WITH_NEW_CUSTOMER Start with a fresh identity

Version: %s
`

// PrintUsage writes the help text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion writes version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "freecom version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
}

// Parse turns argv (without the program name) into a command and its args.
func Parse(argv []string) (Command, Args, error) {
	p := NewArgParser(argv)
	args := Args{
		ConfigPath: p.Flag("config"),
		JSON:       p.BoolFlag("json"),
		Verbose:    p.AnyBool("verbose", "v"),
		Quiet:      p.AnyBool("quiet", "q"),
		Force:      p.AnyBool("force", "f", "yes", "y"),
		Format:     p.Flag("format"),
		OutDir:     p.Flag("out"),
	}

	if p.AnyBool("help", "h") {
		return CmdHelp, args, nil
	}
	if p.BoolFlag("version") {
		return CmdVersion, args, nil
	}

	name := strings.ToLower(p.Subcommand())
	args.Subcommand = p.Positional(1)
	args.Raw = p.PositionalFrom(1)

	switch name {
	case "", "tui":
		return CmdTUI, args, nil
	case "chat":
		return CmdChat, args, nil
	case "status", "s":
		return CmdStatus, args, nil
	case "reset":
		return CmdReset, args, nil
	case "config":
		if args.Subcommand == "" {
			args.Subcommand = "show"
		}
		return CmdConfig, args, nil
	case "export":
		return CmdExport, args, nil
	case "version":
		return CmdVersion, args, nil
	case "help":
		return CmdHelp, args, nil
	}
	return CmdHelp, args, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
}
