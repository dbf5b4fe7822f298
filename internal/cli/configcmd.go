// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jeranaias/freecom-tui/internal/config"
)

// ErrConfigExists is returned by "config init" when a file is already there.
var ErrConfigExists = errors.New("config file already exists: rerun with --force to overwrite")

// configFile returns the file the config commands operate on.
func (a *App) configFile() (path string, found bool, err error) {
	if a.ConfigPath != "" {
		_, statErr := os.Stat(a.ConfigPath)
		return a.ConfigPath, statErr == nil, nil
	}
	return config.ActivePath()
}

func (a *App) runConfig(args Args) error {
	switch args.Subcommand {
	case "", "show":
		if args.JSON {
			// Round-trip through String so the token stays redacted.
			return NewJSONResponse("config", json.RawMessage(a.Config.String())).Write(a.Stdout)
		}
		fmt.Fprintln(a.Stdout, a.Config.String())
		return nil

	case "path":
		path, found, err := a.configFile()
		if err != nil {
			return err
		}
		if args.JSON {
			return NewJSONResponse("config path", map[string]any{"path": path, "exists": found}).Write(a.Stdout)
		}
		if found {
			fmt.Fprintln(a.Stdout, path)
		} else {
			fmt.Fprintf(a.Stdout, "%s (not created yet, run: freecom config init)\n", path)
		}
		return nil

	case "init":
		path, found, err := a.configFile()
		if err != nil {
			return err
		}
		if found && !args.Force {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
		if err := config.SaveTOML(config.Default(), path); err != nil {
			return err
		}
		fmt.Fprintf(a.Stdout, "Wrote %s\n", path)
		return nil
	}
	return fmt.Errorf("%w: config %s", ErrUnknownCommand, args.Subcommand)
}
