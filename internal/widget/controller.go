// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/freecom-tui/internal/identity"
	"github.com/jeranaias/freecom-tui/internal/model"
	"github.com/jeranaias/freecom-tui/internal/namegen"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrAlreadyInitialized is returned by a second call to Init.
	ErrAlreadyInitialized = errors.New("widget already initialized")

	// ErrNoIdentity is returned by actions that need a stored customer.
	ErrNoIdentity = errors.New("no customer identity")

	// ErrNoSelection is returned by SendMessage without a selected conversation.
	ErrNoSelection = errors.New("no conversation selected")

	// ErrEmptyMessage is returned by SendMessage for blank text.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrUnknownConversation is returned for ids not in the cached list.
	ErrUnknownConversation = errors.New("unknown conversation")
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Service is the remote conversation service. *api.Client implements it.
type Service interface {
	CreateCustomer(ctx context.Context, name string) (model.Customer, error)
	LoadConversations(ctx context.Context, customerID string) ([]model.Conversation, error)
	CreateConversation(ctx context.Context, customerID string, slackChannelIndex int) (model.Conversation, error)
	LoadMessages(ctx context.Context, conversationID string) ([]model.Message, error)
	SendMessage(ctx context.Context, conversationID, text string) (model.Message, error)
}

// NameGenerator produces display names for new customers.
type NameGenerator interface {
	Name() string
}

// DefaultMaxUsernameLength bounds generated names when Options leaves it unset.
const DefaultMaxUsernameLength = 22

// Options configures a Controller.
type Options struct {
	Service Service
	Store   identity.Store

	// Names defaults to a namegen.Generator bounded by MaxUsernameLength.
	Names             NameGenerator
	MaxUsernameLength int

	Presentation Presentation

	// TestWithNewCustomer clears the store before Init reads it.
	TestWithNewCustomer bool

	// StartOpen is the initial panel state.
	StartOpen bool

	Now    func() time.Time
	Logger *slog.Logger
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the widget view state.
type Controller struct {
	svc    Service
	store  identity.Store
	names  NameGenerator
	now    func() time.Time
	logger *slog.Logger
	fresh  bool
	life   *lifecycle

	// initMu serializes the lifecycle start so Init runs once
	initMu sync.Mutex

	mu    sync.RWMutex
	state state
}

type state struct {
	presentation  Presentation
	isOpen        bool
	selected      string
	conversations []model.Conversation
	ident         identity.Identity
	err           error
}

// New creates a Controller. Service and Store are required.
func New(opts Options) (*Controller, error) {
	if opts.Service == nil {
		return nil, errors.New("widget: service is required")
	}
	if opts.Store == nil {
		return nil, errors.New("widget: identity store is required")
	}

	maxLen := opts.MaxUsernameLength
	if maxLen <= 0 {
		maxLen = DefaultMaxUsernameLength
	}
	names := opts.Names
	if names == nil {
		names = namegen.New(maxLen)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().With("component", "widget")
	}

	return &Controller{
		svc:    opts.Service,
		store:  opts.Store,
		names:  names,
		now:    now,
		logger: logger,
		fresh:  opts.TestWithNewCustomer,
		life:   newLifecycle(logger),
		state: state{
			presentation: opts.Presentation,
			isOpen:       opts.StartOpen,
		},
	}, nil
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// Init resumes the stored customer or creates a new one. It runs once; every
// later call returns ErrAlreadyInitialized. A failure is kept as the visible
// error and returned.
func (c *Controller) Init(ctx context.Context) error {
	c.initMu.Lock()
	err := c.life.start()
	c.initMu.Unlock()
	if err != nil {
		return ErrAlreadyInitialized
	}

	if err := c.initialize(ctx); err != nil {
		c.life.fail()
		c.setError(err)
		c.logger.Error("widget initialization failed", "error", err)
		return err
	}
	c.life.succeed()
	return nil
}

func (c *Controller) initialize(ctx context.Context) error {
	if c.fresh {
		if err := c.store.Clear(); err != nil {
			return fmt.Errorf("identity: clear: %w", err)
		}
		c.logger.Info("stored identity cleared for a new customer")
	}

	ident, err := identity.ReadIdentity(c.store)
	if err != nil {
		return err
	}

	if ident.Complete() {
		return c.loadConversations(ctx, ident)
	}
	return c.setupNewCustomer(ctx)
}

// loadConversations fetches the customer's conversations. The selection stays empty.
func (c *Controller) loadConversations(ctx context.Context, ident identity.Identity) error {
	convs, err := c.svc.LoadConversations(ctx, ident.CustomerID)
	if err != nil {
		return fmt.Errorf("load conversations: %w", err)
	}
	model.SortByUpdated(convs)

	c.mu.Lock()
	c.state.ident = ident
	c.state.conversations = convs
	c.mu.Unlock()

	c.logger.Info("customer resumed", "customer_id", ident.CustomerID, "conversations", len(convs))
	return nil
}

// setupNewCustomer creates a customer with a first conversation and selects it.
func (c *Controller) setupNewCustomer(ctx context.Context) error {
	name := c.names.Name()

	cust, err := c.svc.CreateCustomer(ctx, name)
	if err != nil {
		return fmt.Errorf("create customer: %w", err)
	}
	if cust.Name == "" {
		cust.Name = name
	}

	ident := identity.Identity{CustomerID: cust.ID, Name: cust.Name}
	if err := identity.WriteIdentity(c.store, ident); err != nil {
		return err
	}

	c.mu.Lock()
	c.state.ident = ident
	c.state.conversations = cust.Conversations
	if len(cust.Conversations) > 0 {
		c.state.selected = cust.Conversations[0].ID
	}
	c.mu.Unlock()

	c.logger.Info("customer created", "customer_id", cust.ID, "name", cust.Name)
	return nil
}

// Phase returns the initialization phase.
func (c *Controller) Phase() Phase {
	return c.life.phase()
}

// Refresh reloads the conversation list for the stored customer.
func (c *Controller) Refresh(ctx context.Context) error {
	ident := c.Identity()
	if !ident.Complete() {
		return ErrNoIdentity
	}

	convs, err := c.svc.LoadConversations(ctx, ident.CustomerID)
	if err != nil {
		err = fmt.Errorf("load conversations: %w", err)
		c.setError(err)
		return err
	}
	model.SortByUpdated(convs)

	c.mu.Lock()
	defer c.mu.Unlock()
	// Keep transcripts already loaded for conversations that did not change.
	for i := range convs {
		if j := model.IndexOf(c.state.conversations, convs[i].ID); j >= 0 {
			old := c.state.conversations[j]
			if old.UpdatedAt.Equal(convs[i].UpdatedAt) && len(old.Messages) > len(convs[i].Messages) {
				convs[i].Messages = old.Messages
			}
		}
	}
	c.state.conversations = convs
	return nil
}

// =============================================================================
// RENDER
// =============================================================================

// Render returns the view to draw. The chat view is chosen only when a
// conversation is selected, an identity exists and the selection is still
// in the list; anything else renders the list.
func (c *Controller) Render() View {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v := View{
		Kind:          ViewList,
		PanelOpen:     c.state.isOpen,
		Presentation:  c.state.presentation,
		Conversations: model.CloneConversations(c.state.conversations),
		CustomerName:  c.state.ident.Name,
		Phase:         c.life.phase(),
		Err:           c.state.err,
	}

	shouldRenderChat := c.state.selected != "" && c.state.ident.CustomerID != ""
	if !shouldRenderChat {
		return v
	}
	conv, ok := model.FindConversation(c.state.conversations, c.state.selected)
	if !ok {
		return v
	}

	chat := DeriveChatView(conv, c.state.presentation, c.now())
	v.Kind = ViewChat
	v.Chat = &chat
	return v
}

// Identity returns the identity loaded or created by Init.
func (c *Controller) Identity() identity.Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.ident
}

// SelectedConversationID returns the current selection, possibly empty.
func (c *Controller) SelectedConversationID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.selected
}

// Conversations returns a copy of the cached conversations.
func (c *Controller) Conversations() []model.Conversation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return model.CloneConversations(c.state.conversations)
}

// IsOpen reports whether the panel is open.
func (c *Controller) IsOpen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.isOpen
}

// SetPresentation replaces the display settings.
func (c *Controller) SetPresentation(p Presentation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.presentation = p
}

// =============================================================================
// USER ACTIONS
// =============================================================================

// Select selects a conversation by id. No network call is made.
func (c *Controller) Select(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.selected = id
}

// Reset clears the selection, returning to the list.
func (c *Controller) Reset() {
	c.Select("")
}

// Toggle flips the panel open state and returns the new value.
func (c *Controller) Toggle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.isOpen = !c.state.isOpen
	return c.state.isOpen
}

// InitiateNewConversation opens a conversation on the default channel for the
// stored customer, puts it at the top of the list and selects it.
func (c *Controller) InitiateNewConversation(ctx context.Context) (model.Conversation, error) {
	ident := c.Identity()
	if !ident.Complete() {
		c.setError(ErrNoIdentity)
		return model.Conversation{}, ErrNoIdentity
	}

	conv, err := c.svc.CreateConversation(ctx, ident.CustomerID, model.DefaultSlackChannelIndex)
	if err != nil {
		err = fmt.Errorf("create conversation: %w", err)
		c.setError(err)
		return model.Conversation{}, err
	}

	c.mu.Lock()
	c.state.conversations = append([]model.Conversation{conv}, c.state.conversations...)
	c.state.selected = conv.ID
	c.mu.Unlock()

	c.logger.Info("conversation created", "conversation_id", conv.ID)
	return conv.Clone(), nil
}

// LoadMessages fetches the transcript of a cached conversation and replaces
// its messages.
func (c *Controller) LoadMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	c.mu.RLock()
	known := model.IndexOf(c.state.conversations, conversationID) >= 0
	c.mu.RUnlock()
	if !known {
		return nil, fmt.Errorf("%w: %s", ErrUnknownConversation, conversationID)
	}

	msgs, err := c.svc.LoadMessages(ctx, conversationID)
	if err != nil {
		err = fmt.Errorf("load messages: %w", err)
		c.setError(err)
		return nil, err
	}

	c.mu.Lock()
	if i := model.IndexOf(c.state.conversations, conversationID); i >= 0 {
		c.state.conversations[i].Messages = msgs
	}
	c.mu.Unlock()

	return append([]model.Message(nil), msgs...), nil
}

// SendMessage posts text to the selected conversation. On success the message
// is appended and the conversation moves to the top of the list.
func (c *Controller) SendMessage(ctx context.Context, text string) (model.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Message{}, ErrEmptyMessage
	}

	c.mu.RLock()
	convID := c.state.selected
	known := model.IndexOf(c.state.conversations, convID) >= 0
	c.mu.RUnlock()
	if convID == "" || !known {
		return model.Message{}, ErrNoSelection
	}

	msg, err := c.svc.SendMessage(ctx, convID, text)
	if err != nil {
		err = fmt.Errorf("send message: %w", err)
		c.setError(err)
		return model.Message{}, err
	}

	c.mu.Lock()
	if i := model.IndexOf(c.state.conversations, convID); i >= 0 {
		conv := c.state.conversations[i]
		conv.Messages = append(conv.Messages, msg)
		updated := msg.CreatedAt
		if updated.IsZero() {
			updated = c.now()
		}
		if updated.After(conv.UpdatedAt) {
			conv.UpdatedAt = updated
		}
		c.state.conversations[i] = conv
		model.SortByUpdated(c.state.conversations)
	}
	c.mu.Unlock()

	return msg, nil
}

// =============================================================================
// ERRORS
// =============================================================================

// LastError returns the visible error, if any.
func (c *Controller) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.err
}

// DismissError clears the visible error.
func (c *Controller) DismissError() {
	c.setError(nil)
}

func (c *Controller) setError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.err = err
}
