// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"strings"
)

// Error variables for common transport failures.
var (
	// ErrUnauthorized indicates the token was rejected (HTTP 401/403).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates too many requests were made (HTTP 429).
	ErrRateLimited = errors.New("rate limited")

	// ErrServer indicates a 5xx response from the service.
	ErrServer = errors.New("server error")

	// ErrEmptyResponse indicates a reply with neither data nor errors.
	ErrEmptyResponse = errors.New("empty response")
)

// HTTPError is a non-2xx response not covered by a sentinel.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Body)
}

// ErrorLocation is a position in the query document.
type ErrorLocation struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// ErrorItem is one entry of a GraphQL "errors" array.
type ErrorItem struct {
	Message   string          `json:"message"`
	Path      []any           `json:"path,omitempty"`
	Locations []ErrorLocation `json:"locations,omitempty"`
}

// GraphQLError is returned when the response carries an "errors" array.
type GraphQLError struct {
	Operation string
	Errors    []ErrorItem
}

func (e *GraphQLError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, item := range e.Errors {
		msgs = append(msgs, item.Message)
	}
	if e.Operation == "" {
		return "graphql: " + strings.Join(msgs, "; ")
	}
	return fmt.Sprintf("graphql %s: %s", e.Operation, strings.Join(msgs, "; "))
}
