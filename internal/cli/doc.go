// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli parses the freecom command line and runs its subcommands:
// the terminal widget, a plain chat REPL, status, reset, config and
// transcript export.
package cli
