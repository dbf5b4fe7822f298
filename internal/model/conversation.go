// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"sort"
	"time"
)

// DefaultSlackChannelIndex is the channel index new conversations are opened on.
const DefaultSlackChannelIndex = 1

// Conversation is a support thread between a customer and (optionally) an agent.
//
// Messages are held in chronological order. Conversation lists fetched from the
// backend carry only the latest message; the full transcript is loaded on demand.
type Conversation struct {
	ID                string    `json:"id"`
	UpdatedAt         time.Time `json:"updatedAt"`
	SlackChannelIndex int       `json:"slackChannelIndex"`
	Agent             *Agent    `json:"agent"`
	Messages          []Message `json:"messages"`
}

// HasAgent reports whether an agent is assigned.
func (c Conversation) HasAgent() bool {
	return c.Agent != nil
}

// HasMessages reports whether at least one message is known.
func (c Conversation) HasMessages() bool {
	return len(c.Messages) > 0
}

// LatestMessage returns the most recent message, or false if there is none.
func (c Conversation) LatestMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	latest := c.Messages[0]
	for _, m := range c.Messages[1:] {
		if !m.CreatedAt.Before(latest.CreatedAt) {
			latest = m
		}
	}
	return latest, true
}

// Clone returns a deep copy so callers can't mutate controller-owned state.
func (c Conversation) Clone() Conversation {
	out := c
	if c.Agent != nil {
		agent := *c.Agent
		out.Agent = &agent
	}
	if c.Messages != nil {
		out.Messages = make([]Message, len(c.Messages))
		copy(out.Messages, c.Messages)
	}
	return out
}

// =============================================================================
// SLICE HELPERS
// =============================================================================

// FindConversation looks up a conversation by id with a linear scan.
func FindConversation(convs []Conversation, id string) (Conversation, bool) {
	if id == "" {
		return Conversation{}, false
	}
	for _, c := range convs {
		if c.ID == id {
			return c, true
		}
	}
	return Conversation{}, false
}

// IndexOf returns the position of the conversation with id, or -1.
func IndexOf(convs []Conversation, id string) int {
	for i, c := range convs {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// SortByUpdated orders conversations newest first. The sort is stable so
// conversations with equal timestamps keep the backend's order.
func SortByUpdated(convs []Conversation) {
	sort.SliceStable(convs, func(i, j int) bool {
		return convs[i].UpdatedAt.After(convs[j].UpdatedAt)
	})
}

// CloneConversations deep-copies a conversation slice.
func CloneConversations(convs []Conversation) []Conversation {
	if convs == nil {
		return nil
	}
	out := make([]Conversation, len(convs))
	for i, c := range convs {
		out[i] = c.Clone()
	}
	return out
}
