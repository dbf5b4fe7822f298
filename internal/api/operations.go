// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"strings"

	"github.com/jeranaias/freecom-tui/internal/model"
)

// Operation names, also used by apitest to dispatch.
const (
	OpCreateCustomer     = "CreateCustomer"
	OpAllConversations   = "AllConversations"
	OpCreateConversation = "CreateConversation"
	OpAllMessages        = "AllMessages"
	OpCreateMessage      = "CreateMessage"
)

// =============================================================================
// DOCUMENTS
// =============================================================================

// conversationFields is the selection shared by every conversation query.
// Only the latest message is fetched for list rendering.
const conversationFields = `
fragment ConversationFields on Conversation {
  id
  updatedAt
  slackChannelIndex
  agent {
    id
    slackUserName
    imageUrl
  }
  messages(last: 1) {
    id
    text
    createdAt
    agent {
      id
    }
  }
}`

const createCustomerMutation = `
mutation CreateCustomer($name: String!, $slackChannelIndex: Int!) {
  createCustomer(name: $name, conversations: [{slackChannelIndex: $slackChannelIndex}]) {
    id
    name
    conversations {
      ...ConversationFields
    }
  }
}` + conversationFields

const allConversationsQuery = `
query AllConversations($customerId: ID!) {
  allConversations(filter: {customer: {id: $customerId}}, orderBy: updatedAt_DESC) {
    ...ConversationFields
  }
}` + conversationFields

const createConversationMutation = `
mutation CreateConversation($customerId: ID!, $slackChannelIndex: Int!) {
  createConversation(customerId: $customerId, slackChannelIndex: $slackChannelIndex) {
    ...ConversationFields
  }
}` + conversationFields

const allMessagesQuery = `
query AllMessages($conversationId: ID!) {
  allMessages(filter: {conversation: {id: $conversationId}}, orderBy: createdAt_ASC) {
    id
    text
    createdAt
    agent {
      id
      slackUserName
      imageUrl
    }
  }
}`

const createMessageMutation = `
mutation CreateMessage($text: String!, $conversationId: ID!) {
  createMessage(text: $text, conversationId: $conversationId) {
    id
    text
    createdAt
    agent {
      id
      slackUserName
      imageUrl
    }
  }
}`

// ErrInvalidArgument is returned before any request when a required
// argument is empty.
var ErrInvalidArgument = errors.New("invalid argument")

func requireArg(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.Join(ErrInvalidArgument, errors.New(name+" is empty"))
	}
	return nil
}

// =============================================================================
// OPERATIONS
// =============================================================================

// CreateCustomer creates a customer named name together with one conversation
// on the default channel, and returns the customer with that conversation.
func (c *Client) CreateCustomer(ctx context.Context, name string) (model.Customer, error) {
	if err := requireArg("name", name); err != nil {
		return model.Customer{}, err
	}

	var out struct {
		CreateCustomer *model.Customer `json:"createCustomer"`
	}
	err := c.Do(ctx, Request{
		Query:         createCustomerMutation,
		OperationName: OpCreateCustomer,
		Variables: map[string]any{
			"name":              name,
			"slackChannelIndex": model.DefaultSlackChannelIndex,
		},
	}, &out)
	if err != nil {
		return model.Customer{}, err
	}
	if out.CreateCustomer == nil || out.CreateCustomer.ID == "" {
		return model.Customer{}, ErrEmptyResponse
	}
	return *out.CreateCustomer, nil
}

// LoadConversations returns every conversation of the customer, newest first.
func (c *Client) LoadConversations(ctx context.Context, customerID string) ([]model.Conversation, error) {
	if err := requireArg("customerId", customerID); err != nil {
		return nil, err
	}

	var out struct {
		AllConversations []model.Conversation `json:"allConversations"`
	}
	err := c.Do(ctx, Request{
		Query:         allConversationsQuery,
		OperationName: OpAllConversations,
		Idempotent:    true,
		Variables:     map[string]any{"customerId": customerID},
	}, &out)
	if err != nil {
		return nil, err
	}
	// The service sorts already; re-sorting keeps the contract when it doesn't.
	model.SortByUpdated(out.AllConversations)
	return out.AllConversations, nil
}

// CreateConversation opens a new conversation for the customer.
func (c *Client) CreateConversation(ctx context.Context, customerID string, slackChannelIndex int) (model.Conversation, error) {
	if err := requireArg("customerId", customerID); err != nil {
		return model.Conversation{}, err
	}

	var out struct {
		CreateConversation *model.Conversation `json:"createConversation"`
	}
	err := c.Do(ctx, Request{
		Query:         createConversationMutation,
		OperationName: OpCreateConversation,
		Variables: map[string]any{
			"customerId":        customerID,
			"slackChannelIndex": slackChannelIndex,
		},
	}, &out)
	if err != nil {
		return model.Conversation{}, err
	}
	if out.CreateConversation == nil || out.CreateConversation.ID == "" {
		return model.Conversation{}, ErrEmptyResponse
	}
	return *out.CreateConversation, nil
}

// LoadMessages returns the transcript of a conversation, oldest first.
func (c *Client) LoadMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	if err := requireArg("conversationId", conversationID); err != nil {
		return nil, err
	}

	var out struct {
		AllMessages []model.Message `json:"allMessages"`
	}
	err := c.Do(ctx, Request{
		Query:         allMessagesQuery,
		OperationName: OpAllMessages,
		Idempotent:    true,
		Variables:     map[string]any{"conversationId": conversationID},
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.AllMessages, nil
}

// SendMessage posts text to the conversation and returns the stored message.
func (c *Client) SendMessage(ctx context.Context, conversationID, text string) (model.Message, error) {
	if err := requireArg("conversationId", conversationID); err != nil {
		return model.Message{}, err
	}
	if err := requireArg("text", text); err != nil {
		return model.Message{}, err
	}

	var out struct {
		CreateMessage *model.Message `json:"createMessage"`
	}
	err := c.Do(ctx, Request{
		Query:         createMessageMutation,
		OperationName: OpCreateMessage,
		Variables: map[string]any{
			"text":           text,
			"conversationId": conversationID,
		},
	}, &out)
	if err != nil {
		return model.Message{}, err
	}
	if out.CreateMessage == nil || out.CreateMessage.ID == "" {
		return model.Message{}, ErrEmptyResponse
	}
	return *out.CreateMessage, nil
}
