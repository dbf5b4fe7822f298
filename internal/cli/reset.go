// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"

	"github.com/jeranaias/freecom-tui/internal/identity"
)

// ErrConfirmationRequired is returned by reset without --force when no
// terminal is available to ask.
var ErrConfirmationRequired = errors.New("confirmation required: rerun with --force")

func (a *App) runReset(args Args) error {
	if err := a.require(true, false, false); err != nil {
		return err
	}

	ident, err := identity.ReadIdentity(a.Store)
	if err != nil {
		return err
	}
	if ident.CustomerID == "" && ident.Name == "" {
		fmt.Fprintln(a.Stdout, "No customer identity stored.")
		return nil
	}

	if !args.Force {
		ok, err := a.Confirm(fmt.Sprintf("Forget customer %q? Existing conversations will no longer be shown. [y/N] ", ident.Name))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.Stdout, "Aborted.")
			return nil
		}
	}

	if err := a.Store.Clear(); err != nil {
		return fmt.Errorf("identity: clear: %w", err)
	}
	a.Logger.Info("identity cleared", "customer_id", ident.CustomerID)
	fmt.Fprintln(a.Stdout, "Identity cleared. A new customer is created on next start.")
	return nil
}
