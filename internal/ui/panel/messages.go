// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panel

import (
	"time"

	"github.com/jeranaias/freecom-tui/internal/model"
	"github.com/jeranaias/freecom-tui/internal/widget"
)

// initDoneMsg reports the result of Controller.Init.
type initDoneMsg struct {
	err error
}

// refreshedMsg reports a reload of the conversation list.
type refreshedMsg struct {
	err error
}

// createdMsg reports a new conversation.
type createdMsg struct {
	conv model.Conversation
	err  error
}

// messagesMsg carries a loaded transcript.
type messagesMsg struct {
	conversationID string
	messages       []model.Message
	err            error
}

// sentMsg reports a posted message.
type sentMsg struct {
	message model.Message
	err     error
}

// tickMsg drives the periodic poll for agent replies.
type tickMsg time.Time

// PresentationMsg applies new display settings, typically after a config
// reload. It can be sent with tea.Program.Send or through Options.Reload.
type PresentationMsg struct {
	Presentation widget.Presentation
}
