// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// Customer is the end-user identity the widget creates and persists.
type Customer struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Conversations []Conversation `json:"conversations,omitempty"`
}

// Agent is a support representative assigned to a conversation.
// DisplayName carries the agent's Slack user name on the wire.
type Agent struct {
	ID          string `json:"id"`
	DisplayName string `json:"slackUserName"`
	ImageURL    string `json:"imageUrl"`
}
