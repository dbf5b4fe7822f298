// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the GraphQL client for the Freecom conversation service.
//
// Client speaks GraphQL over HTTP: every call is a POST of
// {query, variables, operationName} and the reply is {data, errors}.
// Transient failures (HTTP 5xx and 429) of the read queries are retried
// with exponential backoff; mutations are sent once. Each request is rate limited client side and tagged with an
// X-Request-ID header.
//
// # Operations
//
//   - CreateCustomer: new customer with a first conversation
//   - LoadConversations: a customer's conversations, newest first
//   - CreateConversation: open another conversation for a customer
//   - LoadMessages: a conversation's transcript, oldest first
//   - SendMessage: post a customer message
//
// Package apitest provides an in-memory server implementing the same
// operations for tests.
package api
