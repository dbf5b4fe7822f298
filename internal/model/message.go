// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// Message is a single chat message.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`

	// Agent is set when a support agent wrote the message; nil means the customer.
	Agent *Agent `json:"agent,omitempty"`
}

// FromAgent reports whether a support agent wrote the message.
func (m Message) FromAgent() bool {
	return m.Agent != nil
}
