// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jeranaias/freecom-tui/internal/identity"
	"github.com/jeranaias/freecom-tui/internal/ui/components"
	"github.com/jeranaias/freecom-tui/internal/util"
	"github.com/jeranaias/freecom-tui/internal/widget"
)

// StatusReport is the data shown by "freecom status".
type StatusReport struct {
	Version         string                `json:"version"`
	Endpoint        string                `json:"endpoint"`
	IdentityBackend string                `json:"identity_backend"`
	IdentityPath    string                `json:"identity_path,omitempty"`
	CustomerID      string                `json:"customer_id,omitempty"`
	CustomerName    string                `json:"customer_name,omitempty"`
	Reachable       bool                  `json:"reachable"`
	Error           string                `json:"error,omitempty"`
	Conversations   []ConversationSummary `json:"conversations"`
}

// ConversationSummary is one conversation line of the status report.
type ConversationSummary struct {
	ID         string    `json:"id"`
	Partner    string    `json:"partner"`
	UpdatedAt  time.Time `json:"updated_at"`
	LastActive string    `json:"last_active"`
	Preview    string    `json:"preview,omitempty"`
}

// collectStatus reads the stored identity and, when there is one, the
// customer's conversations. It never creates a customer.
func (a *App) collectStatus(ctx context.Context) (StatusReport, error) {
	report := StatusReport{
		Version:         Version,
		Endpoint:        a.Client.Endpoint(),
		IdentityBackend: a.Config.Identity.Backend,
		Conversations:   []ConversationSummary{},
	}
	if a.Config.Identity.Backend != "memory" {
		report.IdentityPath, _ = a.Config.ResolvedIdentityPath()
	}

	ident, err := identity.ReadIdentity(a.Store)
	if err != nil {
		return report, err
	}
	report.CustomerID = ident.CustomerID
	report.CustomerName = ident.Name
	if !ident.Complete() {
		return report, nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.Config.API.Timeout())
	defer cancel()
	convs, err := a.Client.LoadConversations(ctx, ident.CustomerID)
	if err != nil {
		report.Error = components.Describe(err)
		return report, nil
	}
	report.Reachable = true

	presentation := a.presentation()
	now := time.Now()
	for _, conv := range convs {
		cv := widget.DeriveChatView(conv, presentation, now)
		summary := ConversationSummary{
			ID:         conv.ID,
			Partner:    cv.PartnerName,
			UpdatedAt:  conv.UpdatedAt,
			LastActive: cv.Created,
		}
		if last, ok := conv.LatestMessage(); ok {
			summary.Preview = util.SingleLine(last.Text)
		}
		report.Conversations = append(report.Conversations, summary)
	}
	return report, nil
}

func (a *App) runStatus(ctx context.Context, args Args) error {
	if err := a.require(true, true, false); err != nil {
		return err
	}
	report, err := a.collectStatus(ctx)
	if args.JSON {
		if err != nil {
			return NewJSONErrorResponse("status", err).Write(a.Stdout)
		}
		return NewJSONResponse("status", report).Write(a.Stdout)
	}
	if err != nil {
		return err
	}

	pal := newPalette(a.Stdout)
	w := a.Stdout
	row := func(label, value string) {
		fmt.Fprintf(w, "  %s %s\n", pal.label.Sprintf("%-12s", label), value)
	}

	pal.title.Fprintln(w, "freecom status")
	row("Version", report.Version)
	row("Endpoint", report.Endpoint)
	backend := report.IdentityBackend
	if report.IdentityPath != "" {
		backend += " (" + report.IdentityPath + ")"
	}
	row("Identity", backend)

	if report.CustomerID == "" {
		row("Customer", pal.warn.Sprint("none yet, one is created on first start"))
		return nil
	}
	row("Customer", fmt.Sprintf("%s %s", report.CustomerName, pal.muted.Sprint(report.CustomerID)))

	if !report.Reachable {
		row("Backend", pal.fail.Sprint("unreachable: "+report.Error))
		return nil
	}
	row("Backend", pal.ok.Sprint("reachable"))
	row("Chats", fmt.Sprintf("%d", len(report.Conversations)))

	width := max(TerminalWidth()-6, 20)
	for _, c := range report.Conversations {
		line := fmt.Sprintf("%s, %s", c.Partner, c.LastActive)
		if c.Preview != "" {
			line += ": " + c.Preview
		}
		fmt.Fprintf(w, "    - %s\n", util.TruncateWidth(line, width))
	}
	return nil
}
