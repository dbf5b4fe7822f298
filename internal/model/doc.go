// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the support-chat domain types shared by the API
// client, the widget controller and the terminal UI.
//
// # Key Types
//
//   - Customer: the end-user identity created once per device
//   - Conversation: a support thread, optionally assigned to an Agent
//   - Agent: a support representative
//   - Message: a single chat message
//
// JSON tags match the GraphQL wire format, so values decode straight from
// API responses.
//
// # Usage
//
//	conv, ok := model.FindConversation(convs, selectedID)
//	if ok && conv.Agent != nil {
//	    fmt.Println(conv.Agent.DisplayName)
//	}
package model
