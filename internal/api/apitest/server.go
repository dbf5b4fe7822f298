// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package apitest provides an in-memory Freecom GraphQL service for tests.
//
// The server dispatches on operationName and reads only the variables the
// api package sends. It does not parse the query document, but rejects one
// that does not select the operation's root field, and keeps the last
// document per operation for assertions.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/freecom-tui/internal/model"
)

// Failure is an injected failure for the next call of an operation.
// A zero Status produces a GraphQL error with Message instead of an HTTP error.
type Failure struct {
	Status  int
	Message string
}

type conversation struct {
	model.Conversation
	customerID string
}

// Server is a fake GraphQL endpoint backed by maps.
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	token         string
	now           func() time.Time
	customers     map[string]model.Customer
	conversations map[string]*conversation
	messages      map[string][]model.Message
	calls         map[string]int
	failures      map[string][]Failure
	lastVars      map[string]map[string]any
	lastQuery     map[string]string
}

// rootFields maps each operation to the field its document must select.
var rootFields = map[string]string{
	"CreateCustomer":     "createCustomer(",
	"AllConversations":   "allConversations(",
	"CreateConversation": "createConversation(",
	"AllMessages":        "allMessages(",
	"CreateMessage":      "createMessage(",
}

// NewServer starts a server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		now:           time.Now,
		customers:     make(map[string]model.Customer),
		conversations: make(map[string]*conversation),
		messages:      make(map[string][]model.Message),
		calls:         make(map[string]int),
		failures:      make(map[string][]Failure),
		lastVars:      make(map[string]map[string]any),
		lastQuery:     make(map[string]string),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// =============================================================================
// TEST CONTROLS
// =============================================================================

// SetNow replaces the server clock.
func (s *Server) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SetToken makes the server require a bearer token.
func (s *Server) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// FailNext queues a failure for the next call of op.
func (s *Server) FailNext(op string, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = append(s.failures[op], f)
}

// Calls returns how many requests for op have been received, failed ones included.
func (s *Server) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// LastVariables returns the variables of the most recent call of op.
func (s *Server) LastVariables(op string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastVars[op]
}

// LastQuery returns the query document of the most recent call of op.
func (s *Server) LastQuery(op string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastQuery[op]
}

// SeedCustomer creates a customer without going through the API.
func (s *Server) SeedCustomer(id, name string) model.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		id = uuid.NewString()
	}
	c := model.Customer{ID: id, Name: name}
	s.customers[id] = c
	return c
}

// AddConversation attaches a conversation to a customer.
func (s *Server) AddConversation(customerID string, agent *model.Agent, updatedAt time.Time) model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv := s.newConversationLocked(customerID, model.DefaultSlackChannelIndex)
	conv.Agent = agent
	conv.UpdatedAt = updatedAt
	return conv.Conversation.Clone()
}

// AddMessage appends a customer message to a conversation.
func (s *Server) AddMessage(conversationID, text string, createdAt time.Time) model.Message {
	return s.AddAgentMessage(conversationID, nil, text, createdAt)
}

// AddAgentMessage appends a message written by agent (nil for the customer).
func (s *Server) AddAgentMessage(conversationID string, agent *model.Agent, text string, createdAt time.Time) model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := model.Message{ID: uuid.NewString(), Text: text, CreatedAt: createdAt, Agent: agent}
	s.messages[conversationID] = append(s.messages[conversationID], m)
	return m
}

// Customer returns a stored customer.
func (s *Server) Customer(id string) (model.Customer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.customers[id]
	return c, ok
}

// Messages returns the stored transcript of a conversation.
func (s *Server) Messages(conversationID string) []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Message(nil), s.messages[conversationID]...)
}

// =============================================================================
// HANDLER
// =============================================================================

type request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls[req.OperationName]++
	s.lastVars[req.OperationName] = req.Variables
	s.lastQuery[req.OperationName] = req.Query

	if queue := s.failures[req.OperationName]; len(queue) > 0 {
		f := queue[0]
		s.failures[req.OperationName] = queue[1:]
		if f.Status != 0 {
			http.Error(w, f.Message, f.Status)
			return
		}
		writeErrors(w, f.Message)
		return
	}

	if field, ok := rootFields[req.OperationName]; ok && !strings.Contains(req.Query, field) {
		writeErrors(w, fmt.Sprintf("%s: document does not select %s", req.OperationName, strings.TrimSuffix(field, "(")))
		return
	}

	data, err := s.dispatch(req)
	if err != nil {
		writeErrors(w, err.Error())
		return
	}
	writeJSON(w, map[string]any{"data": data})
}

func (s *Server) dispatch(req request) (map[string]any, error) {
	vars := req.Variables
	switch req.OperationName {
	case "CreateCustomer":
		name := str(vars, "name")
		if name == "" {
			return nil, fmt.Errorf("name is required")
		}
		id := uuid.NewString()
		conv := s.newConversationLocked(id, intVar(vars, "slackChannelIndex"))
		c := model.Customer{ID: id, Name: name}
		s.customers[id] = c
		c.Conversations = []model.Conversation{s.viewLocked(conv)}
		return map[string]any{"createCustomer": c}, nil

	case "AllConversations":
		customerID := str(vars, "customerId")
		var out []model.Conversation
		for _, conv := range s.conversations {
			if conv.customerID == customerID {
				out = append(out, s.viewLocked(conv))
			}
		}
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
				return out[i].ID < out[j].ID
			}
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		})
		if out == nil {
			out = []model.Conversation{}
		}
		return map[string]any{"allConversations": out}, nil

	case "CreateConversation":
		customerID := str(vars, "customerId")
		if _, ok := s.customers[customerID]; !ok {
			return nil, fmt.Errorf("customer %q does not exist", customerID)
		}
		conv := s.newConversationLocked(customerID, intVar(vars, "slackChannelIndex"))
		return map[string]any{"createConversation": s.viewLocked(conv)}, nil

	case "AllMessages":
		msgs := append([]model.Message{}, s.messages[str(vars, "conversationId")]...)
		sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].CreatedAt.Before(msgs[j].CreatedAt) })
		return map[string]any{"allMessages": msgs}, nil

	case "CreateMessage":
		convID := str(vars, "conversationId")
		conv, ok := s.conversations[convID]
		if !ok {
			return nil, fmt.Errorf("conversation %q does not exist", convID)
		}
		now := s.now().UTC()
		m := model.Message{ID: uuid.NewString(), Text: str(vars, "text"), CreatedAt: now}
		s.messages[convID] = append(s.messages[convID], m)
		conv.UpdatedAt = now
		return map[string]any{"createMessage": m}, nil

	default:
		return nil, fmt.Errorf("unknown operation %q", req.OperationName)
	}
}

func (s *Server) newConversationLocked(customerID string, channel int) *conversation {
	if channel == 0 {
		channel = model.DefaultSlackChannelIndex
	}
	conv := &conversation{
		Conversation: model.Conversation{
			ID:                uuid.NewString(),
			UpdatedAt:         s.now().UTC(),
			SlackChannelIndex: channel,
		},
		customerID: customerID,
	}
	s.conversations[conv.ID] = conv
	return conv
}

// viewLocked renders a conversation the way the list selection does:
// only the latest message is included.
func (s *Server) viewLocked(conv *conversation) model.Conversation {
	out := conv.Conversation.Clone()
	out.Messages = []model.Message{}
	if msgs := s.messages[conv.ID]; len(msgs) > 0 {
		latest := model.Conversation{Messages: msgs}
		if m, ok := latest.LatestMessage(); ok {
			out.Messages = []model.Message{m}
		}
	}
	return out
}

func str(vars map[string]any, key string) string {
	v, _ := vars[key].(string)
	return v
}

func intVar(vars map[string]any, key string) int {
	switch v := vars[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrors(w http.ResponseWriter, msg string) {
	writeJSON(w, map[string]any{
		"data":   nil,
		"errors": []map[string]any{{"message": msg}},
	})
}
