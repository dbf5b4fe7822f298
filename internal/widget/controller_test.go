// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package widget

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/freecom-tui/internal/api"
	"github.com/jeranaias/freecom-tui/internal/api/apitest"
	"github.com/jeranaias/freecom-tui/internal/identity"
	"github.com/jeranaias/freecom-tui/internal/model"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeService struct {
	mu sync.Mutex

	customer      model.Customer
	conversations []model.Conversation
	messages      map[string][]model.Message
	newConv       model.Conversation
	err           error

	createCustomerCalls int
	loadCalls           int
	names               []string
}

func (f *fakeService) CreateCustomer(_ context.Context, name string) (model.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCustomerCalls++
	f.names = append(f.names, name)
	if f.err != nil {
		return model.Customer{}, f.err
	}
	return f.customer, nil
}

func (f *fakeService) LoadConversations(_ context.Context, _ string) ([]model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loadCalls++
	if f.err != nil {
		return nil, f.err
	}
	return model.CloneConversations(f.conversations), nil
}

func (f *fakeService) CreateConversation(_ context.Context, _ string, _ int) (model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.Conversation{}, f.err
	}
	return f.newConv, nil
}

func (f *fakeService) LoadMessages(_ context.Context, id string) ([]model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.messages[id], nil
}

func (f *fakeService) SendMessage(_ context.Context, _ string, text string) (model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return model.Message{}, f.err
	}
	return model.Message{ID: "m-" + text, Text: text, CreatedAt: testNow}, nil
}

func (f *fakeService) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

var testPresentation = Presentation{
	MainColor:      "#427FE1",
	CompanyName:    "Acme",
	CompanyLogoURL: "http://acme/logo.png",
}

func newController(t *testing.T, svc Service, store identity.Store, mutate ...func(*Options)) *Controller {
	t.Helper()
	opts := Options{
		Service:           svc,
		Store:             store,
		MaxUsernameLength: 12,
		Presentation:      testPresentation,
		Now:               func() time.Time { return testNow },
	}
	for _, m := range mutate {
		m(&opts)
	}
	c, err := New(opts)
	require.NoError(t, err)
	return c
}

func storeWith(t *testing.T, id identity.Identity) identity.Store {
	t.Helper()
	s := identity.NewMemoryStore()
	require.NoError(t, identity.WriteIdentity(s, id))
	return s
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(Options{Store: identity.NewMemoryStore()})
	assert.Error(t, err)
	_, err = New(Options{Service: &fakeService{}})
	assert.Error(t, err)
}

func TestInitialState(t *testing.T) {
	c := newController(t, &fakeService{}, identity.NewMemoryStore())
	assert.False(t, c.IsOpen())
	assert.Empty(t, c.SelectedConversationID())
	assert.Empty(t, c.Conversations())
	assert.Equal(t, PhaseIdle, c.Phase())

	open := newController(t, &fakeService{}, identity.NewMemoryStore(), func(o *Options) { o.StartOpen = true })
	assert.True(t, open.IsOpen())
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func TestInitNewCustomer(t *testing.T) {
	first := model.Conversation{ID: "v1", UpdatedAt: testNow, SlackChannelIndex: 1, Messages: []model.Message{}}
	svc := &fakeService{customer: model.Customer{
		ID:            "c1",
		Name:          "Sleepy Otter",
		Conversations: []model.Conversation{first},
	}}
	store := identity.NewMemoryStore()
	c := newController(t, svc, store)

	require.NoError(t, c.Init(context.Background()))

	assert.Equal(t, 1, svc.createCustomerCalls)
	assert.Equal(t, 0, svc.loadCalls)
	require.Len(t, svc.names, 1)
	assert.LessOrEqual(t, utf8.RuneCountInString(svc.names[0]), 12)

	got, err := identity.ReadIdentity(store)
	require.NoError(t, err)
	assert.Equal(t, identity.Identity{CustomerID: "c1", Name: "Sleepy Otter"}, got)

	assert.Equal(t, []model.Conversation{first}, c.Conversations())
	assert.Equal(t, "v1", c.SelectedConversationID())
	assert.Equal(t, PhaseReady, c.Phase())
	assert.NoError(t, c.LastError())

	// The first conversation opens straight into the chat, with no agent yet.
	view := c.Render()
	require.Equal(t, ViewChat, view.Kind)
	require.NotNil(t, view.Chat)
	assert.Equal(t, "v1", view.Chat.ConversationID)
	assert.Equal(t, testPresentation.CompanyName, view.Chat.PartnerName)
	assert.Equal(t, testPresentation.CompanyLogoURL, view.Chat.ProfileImageURL)
	assert.False(t, view.Chat.ShowBackButton)
	assert.Equal(t, "Sleepy Otter", view.CustomerName)
}

func TestInitNewCustomerWithoutConversations(t *testing.T) {
	svc := &fakeService{customer: model.Customer{ID: "c1", Name: "Foo"}}
	c := newController(t, svc, identity.NewMemoryStore())

	require.NoError(t, c.Init(context.Background()))
	assert.Empty(t, c.SelectedConversationID())
	assert.Equal(t, ViewList, c.Render().Kind)
}

func TestInitNewCustomerKeepsGeneratedNameWhenServerOmitsIt(t *testing.T) {
	svc := &fakeService{customer: model.Customer{ID: "c1"}}
	store := identity.NewMemoryStore()
	c := newController(t, svc, store)

	require.NoError(t, c.Init(context.Background()))
	got, err := identity.ReadIdentity(store)
	require.NoError(t, err)
	assert.Equal(t, svc.names[0], got.Name)
}

func TestInitExistingCustomer(t *testing.T) {
	older := model.Conversation{ID: "v1", UpdatedAt: testNow.Add(-time.Hour)}
	newer := model.Conversation{ID: "v2", UpdatedAt: testNow}
	svc := &fakeService{conversations: []model.Conversation{older, newer}}
	c := newController(t, svc, storeWith(t, identity.Identity{CustomerID: "c1", Name: "Foo"}))

	require.NoError(t, c.Init(context.Background()))

	assert.Equal(t, 0, svc.createCustomerCalls)
	assert.Equal(t, 1, svc.loadCalls)
	convs := c.Conversations()
	require.Len(t, convs, 2)
	assert.Equal(t, "v2", convs[0].ID)
	assert.Empty(t, c.SelectedConversationID())
	assert.Equal(t, "Foo", c.Identity().Name)
}

func TestInitPartialIdentityCreatesCustomer(t *testing.T) {
	tests := []struct {
		name  string
		ident identity.Identity
	}{
		{"id only", identity.Identity{CustomerID: "c1"}},
		{"name only", identity.Identity{Name: "Foo"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{customer: model.Customer{ID: "c9", Name: "New"}}
			c := newController(t, svc, storeWith(t, tt.ident))
			require.NoError(t, c.Init(context.Background()))
			assert.Equal(t, 1, svc.createCustomerCalls)
			assert.Equal(t, "c9", c.Identity().CustomerID)
		})
	}
}

func TestInitTestWithNewCustomerClearsStore(t *testing.T) {
	svc := &fakeService{customer: model.Customer{ID: "c2", Name: "Bar"}}
	store := storeWith(t, identity.Identity{CustomerID: "c1", Name: "Foo"})
	c := newController(t, svc, store, func(o *Options) { o.TestWithNewCustomer = true })

	require.NoError(t, c.Init(context.Background()))
	assert.Equal(t, 1, svc.createCustomerCalls)
	assert.Equal(t, 0, svc.loadCalls)

	got, err := identity.ReadIdentity(store)
	require.NoError(t, err)
	assert.Equal(t, "c2", got.CustomerID)
}

func TestInitTwice(t *testing.T) {
	svc := &fakeService{customer: model.Customer{ID: "c1", Name: "Foo"}}
	c := newController(t, svc, identity.NewMemoryStore())

	require.NoError(t, c.Init(context.Background()))
	assert.ErrorIs(t, c.Init(context.Background()), ErrAlreadyInitialized)
	assert.Equal(t, 1, svc.createCustomerCalls)
}

func TestInitConcurrentRunsOnce(t *testing.T) {
	svc := &fakeService{customer: model.Customer{ID: "c1", Name: "Foo"}}
	c := newController(t, svc, identity.NewMemoryStore())

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- c.Init(context.Background())
		}()
	}
	wg.Wait()
	close(errs)

	var ok, already int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrAlreadyInitialized):
			already++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 7, already)
	assert.Equal(t, 1, svc.createCustomerCalls)
}

func TestInitFailure(t *testing.T) {
	tests := []struct {
		name  string
		store identity.Store
	}{
		{"create customer", identity.NewMemoryStore()},
		{"load conversations", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			boom := errors.New("boom")
			svc := &fakeService{err: boom}
			store := tt.store
			if store == nil {
				store = storeWith(t, identity.Identity{CustomerID: "c1", Name: "Foo"})
			}
			c := newController(t, svc, store)

			err := c.Init(context.Background())
			require.ErrorIs(t, err, boom)
			assert.ErrorIs(t, c.LastError(), boom)
			assert.Equal(t, PhaseFailed, c.Phase())
			assert.Empty(t, c.Conversations())
			assert.Empty(t, c.SelectedConversationID())

			v := c.Render()
			assert.Equal(t, ViewList, v.Kind)
			assert.ErrorIs(t, v.Err, boom)

			// No retry at this level.
			assert.ErrorIs(t, c.Init(context.Background()), ErrAlreadyInitialized)

			c.DismissError()
			assert.NoError(t, c.LastError())
		})
	}
}

func TestInitFailedCreateDoesNotPersist(t *testing.T) {
	svc := &fakeService{err: errors.New("down")}
	store := identity.NewMemoryStore()
	c := newController(t, svc, store)

	require.Error(t, c.Init(context.Background()))
	got, err := identity.ReadIdentity(store)
	require.NoError(t, err)
	assert.False(t, got.Complete())
}

// =============================================================================
// RENDER
// =============================================================================

func TestRenderChatScenario(t *testing.T) {
	// Stored id c1, name Foo; one conversation v1 with no agent and no messages.
	v1 := model.Conversation{ID: "v1", UpdatedAt: testNow.Add(-5 * time.Minute), Messages: []model.Message{}}
	svc := &fakeService{conversations: []model.Conversation{v1}}
	c := newController(t, svc, storeWith(t, identity.Identity{CustomerID: "c1", Name: "Foo"}))
	require.NoError(t, c.Init(context.Background()))

	c.Select("v1")
	v := c.Render()

	require.Equal(t, ViewChat, v.Kind)
	require.NotNil(t, v.Chat)
	assert.Equal(t, "v1", v.Chat.ConversationID)
	assert.Equal(t, "Acme", v.Chat.PartnerName)
	assert.Equal(t, "http://acme/logo.png", v.Chat.ProfileImageURL)
	assert.Empty(t, v.Chat.AgentID)
	assert.Equal(t, "5 minutes ago", v.Chat.Created)
	assert.False(t, v.Chat.ShowBackButton)
	assert.Equal(t, "#427FE1", v.Chat.HeaderColor)
}

func TestRenderStaleSelectionFallsBackToList(t *testing.T) {
	svc := &fakeService{conversations: []model.Conversation{{ID: "v1"}}}
	c := newController(t, svc, storeWith(t, identity.Identity{CustomerID: "c1", Name: "Foo"}))
	require.NoError(t, c.Init(context.Background()))

	c.Select("gone")
	v := c.Render()
	assert.Equal(t, ViewList, v.Kind)
	assert.Nil(t, v.Chat)
}

func TestRenderWithoutIdentityIsList(t *testing.T) {
	c := newController(t, &fakeService{}, identity.NewMemoryStore())
	c.Select("v1")
	assert.Equal(t, ViewList, c.Render().Kind)
}

func TestRenderPanelOpenMirrorsToggle(t *testing.T) {
	c := newController(t, &fakeService{}, identity.NewMemoryStore())
	assert.False(t, c.Render().PanelOpen)
	assert.True(t, c.Toggle())
	assert.True(t, c.Render().PanelOpen)
}

func TestRenderReturnsCopies(t *testing.T) {
	svc := &fakeService{conversations: []model.Conversation{{ID: "v1"}}}
	c := newController(t, svc, storeWith(t, identity.Identity{CustomerID: "c1", Name: "Foo"}))
	require.NoError(t, c.Init(context.Background()))

	v := c.Render()
	v.Conversations[0].ID = "mutated"
	assert.Equal(t, "v1", c.Conversations()[0].ID)
}

func TestSetPresentation(t *testing.T) {
	c := newController(t, &fakeService{}, identity.NewMemoryStore())
	c.SetPresentation(Presentation{CompanyName: "Other", MainColor: "#000000"})
	assert.Equal(t, "Other", c.Render().Presentation.CompanyName)
}

// =============================================================================
// USER ACTIONS
// =============================================================================

func TestToggleTwiceRestores(t *testing.T) {
	c := newController(t, &fakeService{}, identity.NewMemoryStore())
	before := c.IsOpen()
	c.Toggle()
	assert.NotEqual(t, before, c.IsOpen())
	c.Toggle()
	assert.Equal(t, before, c.IsOpen())
}

func TestSelectThenReset(t *testing.T) {
	c := newController(t, &fakeService{}, identity.NewMemoryStore())
	c.Select("x")
	assert.Equal(t, "x", c.SelectedConversationID())
	c.Reset()
	assert.Empty(t, c.SelectedConversationID())
}

func TestInitiateNewConversation(t *testing.T) {
	existing := model.Conversation{ID: "v1", UpdatedAt: testNow.Add(-time.Hour)}
	svc := &fakeService{
		conversations: []model.Conversation{existing},
		newConv:       model.Conversation{ID: "v2", UpdatedAt: testNow, SlackChannelIndex: 1},
	}
	c := newController(t, svc, storeWith(t, identity.Identity{CustomerID: "c1", Name: "Foo"}))
	require.NoError(t, c.Init(context.Background()))

	conv, err := c.InitiateNewConversation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v2", conv.ID)

	convs := c.Conversations()
	require.Len(t, convs, 2)
	assert.Equal(t, "v2", convs[0].ID)
	assert.Equal(t, "v2", c.SelectedConversationID())
	assert.Equal(t, ViewChat, c.Render().Kind)
}

func TestInitiateNewConversationRequiresIdentity(t *testing.T) {
	c := newController(t, &fakeService{}, identity.NewMemoryStore())
	_, err := c.InitiateNewConversation(context.Background())
	assert.ErrorIs(t, err, ErrNoIdentity)
	assert.ErrorIs(t, c.LastError(), ErrNoIdentity)
}

func TestInitiateNewConversationFailure(t *testing.T) {
	svc := &fakeService{}
	c := newController(t, svc, storeWith(t, identity.Identity{CustomerID: "c1", Name: "Foo"}))
	require.NoError(t, c.Init(context.Background()))

	boom := errors.New("boom")
	svc.setErr(boom)
	_, err := c.InitiateNewConversation(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, c.LastError(), boom)
	assert.Empty(t, c.SelectedConversationID())
}

func TestLoadMessages(t *testing.T) {
	msgs := []model.Message{
		{ID: "m1", Text: "hi", CreatedAt: testNow.Add(-2 * time.Minute)},
		{ID: "m2", Text: "hello", CreatedAt: testNow.Add(-time.Minute)},
	}
	svc := &fakeService{
		conversations: []model.Conversation{{ID: "v1", Messages: msgs[1:]}},
		messages:      map[string][]model.Message{"v1": msgs},
	}
	c := newController(t, svc, storeWith(t, identity.Identity{CustomerID: "c1", Name: "Foo"}))
	require.NoError(t, c.Init(context.Background()))

	got, err := c.LoadMessages(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, msgs, got)

	c.Select("v1")
	v := c.Render()
	require.NotNil(t, v.Chat)
	assert.Len(t, v.Chat.Messages, 2)
	assert.True(t, v.Chat.ShowBackButton)

	_, err = c.LoadMessages(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUnknownConversation)
}

func TestSendMessage(t *testing.T) {
	svc := &fakeService{conversations: []model.Conversation{
		{ID: "v1", UpdatedAt: testNow.Add(-time.Hour)},
		{ID: "v2", UpdatedAt: testNow.Add(-2 * time.Hour)},
	}}
	c := newController(t, svc, storeWith(t, identity.Identity{CustomerID: "c1", Name: "Foo"}))
	require.NoError(t, c.Init(context.Background()))

	_, err := c.SendMessage(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrNoSelection)

	c.Select("v2")
	_, err = c.SendMessage(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	msg, err := c.SendMessage(context.Background(), "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Text)

	convs := c.Conversations()
	assert.Equal(t, "v2", convs[0].ID, "sent-to conversation moves to the top")
	assert.Equal(t, testNow, convs[0].UpdatedAt)
	require.Len(t, convs[0].Messages, 1)

	boom := errors.New("boom")
	svc.setErr(boom)
	_, err = c.SendMessage(context.Background(), "again")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, c.LastError(), boom)
}

func TestRefresh(t *testing.T) {
	svc := &fakeService{conversations: []model.Conversation{{ID: "v1"}}}
	c := newController(t, svc, storeWith(t, identity.Identity{CustomerID: "c1", Name: "Foo"}))

	assert.ErrorIs(t, c.Refresh(context.Background()), ErrNoIdentity)
	require.NoError(t, c.Init(context.Background()))

	svc.mu.Lock()
	svc.conversations = append(svc.conversations, model.Conversation{ID: "v2", UpdatedAt: testNow})
	svc.mu.Unlock()

	require.NoError(t, c.Refresh(context.Background()))
	assert.Len(t, c.Conversations(), 2)
}

func TestConcurrentActions(t *testing.T) {
	svc := &fakeService{
		conversations: []model.Conversation{{ID: "v1"}},
		newConv:       model.Conversation{ID: "v2"},
	}
	c := newController(t, svc, storeWith(t, identity.Identity{CustomerID: "c1", Name: "Foo"}))
	require.NoError(t, c.Init(context.Background()))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(4)
		go func() { defer wg.Done(); c.Toggle() }()
		go func() { defer wg.Done(); c.Select("v1"); c.Reset() }()
		go func() { defer wg.Done(); _ = c.Render() }()
		go func() { defer wg.Done(); _, _ = c.SendMessage(context.Background(), "x") }()
	}
	wg.Wait()
}

// =============================================================================
// AGAINST THE FAKE GRAPHQL SERVER
// =============================================================================

func TestEndToEndWithGraphQLServer(t *testing.T) {
	srv := apitest.NewServer(t)
	client := api.NewClient(srv.URL)
	store := identity.NewMemoryStore()

	first := newController(t, client, store)
	require.NoError(t, first.Init(context.Background()))
	assert.Equal(t, 1, srv.Calls(api.OpCreateCustomer))
	require.Equal(t, ViewChat, first.Render().Kind)

	_, err := first.SendMessage(context.Background(), "hello")
	require.NoError(t, err)

	// Second run on the same device resumes the customer.
	second := newController(t, client, store)
	require.NoError(t, second.Init(context.Background()))
	assert.Equal(t, 1, srv.Calls(api.OpCreateCustomer))
	assert.Equal(t, 1, srv.Calls(api.OpAllConversations))
	assert.Equal(t, ViewList, second.Render().Kind)

	convs := second.Conversations()
	require.Len(t, convs, 1)
	require.Len(t, convs[0].Messages, 1)
	assert.Equal(t, "hello", convs[0].Messages[0].Text)

	_, err = second.InitiateNewConversation(context.Background())
	require.NoError(t, err)
	assert.Len(t, second.Conversations(), 2)
}

func TestTransientFailuresDoNotRepeatMutations(t *testing.T) {
	srv := apitest.NewServer(t)
	client := api.NewClient(srv.URL)
	store := identity.NewMemoryStore()

	srv.FailNext(api.OpCreateCustomer, apitest.Failure{Status: 502, Message: "bad gateway"})
	c := newController(t, client, store)
	err := c.Init(context.Background())
	assert.ErrorIs(t, err, api.ErrServer)
	assert.Equal(t, 1, srv.Calls(api.OpCreateCustomer))
	assert.Equal(t, PhaseFailed, c.Phase())
	assert.Error(t, c.LastError())
	got, err := identity.ReadIdentity(store)
	require.NoError(t, err)
	assert.False(t, got.Complete())

	// A fresh run creates the customer; a failed send is not re-posted.
	c = newController(t, client, store)
	require.NoError(t, c.Init(context.Background()))
	id := c.SelectedConversationID()
	require.NotEmpty(t, id)

	srv.FailNext(api.OpCreateMessage, apitest.Failure{Status: 503, Message: "unavailable"})
	_, err = c.SendMessage(context.Background(), "hello")
	assert.ErrorIs(t, err, api.ErrServer)
	assert.Equal(t, 1, srv.Calls(api.OpCreateMessage))
	assert.Empty(t, srv.Messages(id))
}
