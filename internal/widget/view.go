// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import (
	"time"

	"github.com/jeranaias/freecom-tui/internal/model"
	"github.com/jeranaias/freecom-tui/internal/util"
)

// Presentation holds the host-provided display settings.
type Presentation struct {
	MainColor      string
	CompanyName    string
	CompanyLogoURL string
}

// ViewKind selects the child view inside the panel.
type ViewKind int

const (
	// ViewList shows the list header and the conversation list.
	ViewList ViewKind = iota
	// ViewChat shows the chat header and the transcript.
	ViewChat
)

func (k ViewKind) String() string {
	switch k {
	case ViewChat:
		return "chat"
	default:
		return "list"
	}
}

// View is everything a front end needs to draw one frame.
type View struct {
	Kind ViewKind

	// PanelOpen mirrors the open state; the toggle button is always drawn.
	PanelOpen bool

	Presentation Presentation

	// Conversations is a copy of the cached list, newest first.
	Conversations []model.Conversation

	// Chat is set only when Kind is ViewChat.
	Chat *ChatView

	CustomerName string
	Phase        Phase
	Err          error
}

// ChatView is the derived header and transcript of the selected conversation.
type ChatView struct {
	ConversationID string

	// PartnerName is the agent's display name, or the company name.
	PartnerName string
	// ProfileImageURL is the agent's image, or the company logo.
	ProfileImageURL string
	// AgentID is empty while no agent is assigned.
	AgentID string
	// Created is the relative time of the last update ("5 minutes ago").
	Created string
	// ShowBackButton is true once the conversation has a message.
	ShowBackButton bool

	HeaderColor string
	Messages    []model.Message
}

// DeriveChatView computes the chat header values for conv.
func DeriveChatView(conv model.Conversation, p Presentation, now time.Time) ChatView {
	cv := ChatView{
		ConversationID:  conv.ID,
		PartnerName:     p.CompanyName,
		ProfileImageURL: p.CompanyLogoURL,
		Created:         util.TimeAgo(conv.UpdatedAt, now),
		ShowBackButton:  len(conv.Messages) > 0,
		HeaderColor:     p.MainColor,
		Messages:        append([]model.Message(nil), conv.Messages...),
	}

	if agent := conv.Agent; agent != nil {
		cv.PartnerName = agent.DisplayName
		cv.AgentID = agent.ID
		if agent.ImageURL != "" {
			cv.ProfileImageURL = agent.ImageURL
		}
	}
	return cv
}
