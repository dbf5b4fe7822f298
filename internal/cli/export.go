// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jeranaias/freecom-tui/internal/export"
	"github.com/jeranaias/freecom-tui/internal/identity"
	"github.com/jeranaias/freecom-tui/internal/model"
	"github.com/jeranaias/freecom-tui/internal/widget"
)

// ErrNoConversation is returned when the export target does not exist.
var ErrNoConversation = errors.New("conversation not found")

// ExportResult is the data reported by "freecom export --json".
type ExportResult struct {
	ConversationID string `json:"conversation_id"`
	Partner        string `json:"partner"`
	Messages       int    `json:"messages"`
	Path           string `json:"path"`
}

// runExport writes one conversation transcript to disk. The target is a
// 1-based index into the most-recent-first list, or a conversation id.
func (a *App) runExport(ctx context.Context, args Args) error {
	if err := a.require(true, true, false); err != nil {
		return err
	}
	result, err := a.exportConversation(ctx, args)
	if args.JSON {
		if err != nil {
			return NewJSONErrorResponse("export", err).Write(a.Stdout)
		}
		return NewJSONResponse("export", result).Write(a.Stdout)
	}
	if err != nil {
		return err
	}

	pal := newPalette(a.Stdout)
	pal.ok.Fprintf(a.Stdout, "Exported %d messages with %s\n", result.Messages, result.Partner)
	fmt.Fprintf(a.Stdout, "  %s\n", result.Path)
	return nil
}

func (a *App) exportConversation(ctx context.Context, args Args) (ExportResult, error) {
	ident, err := identity.ReadIdentity(a.Store)
	if err != nil {
		return ExportResult{}, err
	}
	if !ident.Complete() {
		return ExportResult{}, fmt.Errorf("%w: no customer identity on this device", ErrNoConversation)
	}

	ctx, cancel := context.WithTimeout(ctx, a.Config.API.Timeout())
	defer cancel()

	convs, err := a.Client.LoadConversations(ctx, ident.CustomerID)
	if err != nil {
		return ExportResult{}, err
	}
	model.SortByUpdated(convs)

	conv, err := pickConversation(convs, args.Subcommand)
	if err != nil {
		return ExportResult{}, err
	}
	msgs, err := a.Client.LoadMessages(ctx, conv.ID)
	if err != nil {
		return ExportResult{}, err
	}
	conv.Messages = msgs

	presentation := a.presentation()
	cv := widget.DeriveChatView(conv, presentation, time.Now())
	transcript := export.Transcript{
		Conversation: conv,
		Partner:      cv.PartnerName,
		CustomerName: ident.Name,
		CompanyName:  presentation.CompanyName,
	}

	opts := export.DefaultOptions()
	if args.OutDir != "" {
		opts.OutputDir = args.OutDir
	}
	exporter, err := export.ForFormat(args.Format, opts)
	if err != nil {
		return ExportResult{}, err
	}
	path, err := export.ExportToFile(transcript, exporter, opts)
	if err != nil {
		return ExportResult{}, err
	}
	a.Logger.Info("exported conversation", "conversation", conv.ID, "path", path)

	return ExportResult{
		ConversationID: conv.ID,
		Partner:        cv.PartnerName,
		Messages:       len(msgs),
		Path:           path,
	}, nil
}

// pickConversation resolves target against convs. Empty means the latest.
func pickConversation(convs []model.Conversation, target string) (model.Conversation, error) {
	if len(convs) == 0 {
		return model.Conversation{}, fmt.Errorf("%w: no conversations yet", ErrNoConversation)
	}
	if target == "" {
		return convs[0], nil
	}
	if n, err := strconv.Atoi(target); err == nil {
		if n < 1 || n > len(convs) {
			return model.Conversation{}, fmt.Errorf("%w: %d (have %d)", ErrNoConversation, n, len(convs))
		}
		return convs[n-1], nil
	}
	if conv, ok := model.FindConversation(convs, target); ok {
		return conv, nil
	}
	return model.Conversation{}, fmt.Errorf("%w: %s", ErrNoConversation, target)
}
