// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/freecom-tui/internal/api/apitest"
	"github.com/jeranaias/freecom-tui/internal/model"
)

func TestCreateCustomer(t *testing.T) {
	srv := apitest.NewServer(t)
	c := fastClient(srv.URL)

	cust, err := c.CreateCustomer(context.Background(), "Sleepy Otter")
	require.NoError(t, err)

	assert.NotEmpty(t, cust.ID)
	assert.Equal(t, "Sleepy Otter", cust.Name)
	require.Len(t, cust.Conversations, 1)
	assert.Equal(t, model.DefaultSlackChannelIndex, cust.Conversations[0].SlackChannelIndex)
	assert.Nil(t, cust.Conversations[0].Agent)
	assert.Equal(t, 1, srv.Calls(OpCreateCustomer))
	assert.EqualValues(t, 1, srv.LastVariables(OpCreateCustomer)["slackChannelIndex"])
}

func TestCreateCustomerRejectsEmptyName(t *testing.T) {
	srv := apitest.NewServer(t)
	_, err := fastClient(srv.URL).CreateCustomer(context.Background(), " ")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, 0, srv.Calls(OpCreateCustomer))
}

func TestLoadConversationsNewestFirst(t *testing.T) {
	srv := apitest.NewServer(t)
	cust := srv.SeedCustomer("c1", "Foo")
	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	old := srv.AddConversation(cust.ID, nil, base)
	agent := &model.Agent{ID: "a1", DisplayName: "nilan", ImageURL: "http://img/a.png"}
	recent := srv.AddConversation(cust.ID, agent, base.Add(time.Hour))
	srv.AddMessage(recent.ID, "first", base)
	srv.AddMessage(recent.ID, "second", base.Add(time.Minute))

	// Another customer's conversation must not leak in.
	srv.AddConversation("other", nil, base.Add(2*time.Hour))

	convs, err := fastClient(srv.URL).LoadConversations(context.Background(), cust.ID)
	require.NoError(t, err)
	require.Len(t, convs, 2)

	assert.Equal(t, recent.ID, convs[0].ID)
	assert.Equal(t, old.ID, convs[1].ID)
	require.NotNil(t, convs[0].Agent)
	assert.Equal(t, "nilan", convs[0].Agent.DisplayName)
	require.Len(t, convs[0].Messages, 1)
	assert.Equal(t, "second", convs[0].Messages[0].Text)
	assert.Empty(t, convs[1].Messages)
}

func TestLoadConversationsEmpty(t *testing.T) {
	srv := apitest.NewServer(t)
	convs, err := fastClient(srv.URL).LoadConversations(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, convs)
}

func TestCreateConversation(t *testing.T) {
	srv := apitest.NewServer(t)
	cust := srv.SeedCustomer("c1", "Foo")

	conv, err := fastClient(srv.URL).CreateConversation(context.Background(), cust.ID, 2)
	require.NoError(t, err)
	assert.NotEmpty(t, conv.ID)
	assert.Equal(t, 2, conv.SlackChannelIndex)

	_, err = fastClient(srv.URL).CreateConversation(context.Background(), "missing", 1)
	var gqlErr *GraphQLError
	assert.True(t, errors.As(err, &gqlErr))
}

func TestSendAndLoadMessages(t *testing.T) {
	srv := apitest.NewServer(t)
	cust := srv.SeedCustomer("c1", "Foo")
	conv := srv.AddConversation(cust.ID, nil, time.Now().Add(-time.Hour))
	c := fastClient(srv.URL)

	m1, err := c.SendMessage(context.Background(), conv.ID, "hello")
	require.NoError(t, err)
	m2, err := c.SendMessage(context.Background(), conv.ID, "anyone there?")
	require.NoError(t, err)

	msgs, err := c.LoadMessages(context.Background(), conv.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, m1.ID, msgs[0].ID)
	assert.Equal(t, m2.ID, msgs[1].ID)

	_, err = c.SendMessage(context.Background(), conv.ID, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestOperationFailuresSurface(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.FailNext(OpCreateCustomer, apitest.Failure{Message: "quota exceeded"})
	srv.FailNext(OpAllConversations, apitest.Failure{Status: http.StatusUnauthorized})

	c := fastClient(srv.URL)

	_, err := c.CreateCustomer(context.Background(), "Foo")
	var gqlErr *GraphQLError
	require.True(t, errors.As(err, &gqlErr))
	assert.Contains(t, gqlErr.Error(), "quota exceeded")

	_, err = c.LoadConversations(context.Background(), "c1")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestTokenRequired(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.SetToken("s3cret")

	_, err := fastClient(srv.URL).CreateCustomer(context.Background(), "Foo")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = fastClient(srv.URL).WithToken("s3cret").CreateCustomer(context.Background(), "Foo")
	assert.NoError(t, err)
}

func TestMutationsAreSentOnce(t *testing.T) {
	srv := apitest.NewServer(t)
	c := fastClient(srv.URL)
	ctx := context.Background()

	srv.FailNext(OpCreateCustomer, apitest.Failure{Status: http.StatusBadGateway})
	_, err := c.CreateCustomer(ctx, "Foo")
	assert.ErrorIs(t, err, ErrServer)
	assert.Equal(t, 1, srv.Calls(OpCreateCustomer))

	srv.SeedCustomer("c1", "Foo")
	srv.FailNext(OpCreateConversation, apitest.Failure{Status: http.StatusServiceUnavailable})
	_, err = c.CreateConversation(ctx, "c1", model.DefaultSlackChannelIndex)
	assert.ErrorIs(t, err, ErrServer)
	assert.Equal(t, 1, srv.Calls(OpCreateConversation))

	conv := srv.AddConversation("c1", nil, time.Now())
	srv.FailNext(OpCreateMessage, apitest.Failure{Status: http.StatusTooManyRequests})
	_, err = c.SendMessage(ctx, conv.ID, "hello")
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 1, srv.Calls(OpCreateMessage))
	assert.Empty(t, srv.Messages(conv.ID))
}

func TestReadsRetryTransientFailures(t *testing.T) {
	srv := apitest.NewServer(t)
	srv.SeedCustomer("c1", "Foo")
	conv := srv.AddConversation("c1", nil, time.Now())
	c := fastClient(srv.URL)

	srv.FailNext(OpAllConversations, apitest.Failure{Status: http.StatusBadGateway})
	convs, err := c.LoadConversations(context.Background(), "c1")
	require.NoError(t, err)
	assert.Len(t, convs, 1)
	assert.Equal(t, 2, srv.Calls(OpAllConversations))

	srv.FailNext(OpAllMessages, apitest.Failure{Status: http.StatusServiceUnavailable})
	_, err = c.LoadMessages(context.Background(), conv.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, srv.Calls(OpAllMessages))
}

func TestDocumentsSelectWireFields(t *testing.T) {
	conversation := []string{"...ConversationFields", "fragment ConversationFields on Conversation",
		"updatedAt", "slackChannelIndex", "slackUserName", "imageUrl", "messages(last: 1)"}
	message := []string{"id", "text", "createdAt", "slackUserName", "imageUrl"}

	tests := []struct {
		name string
		doc  string
		want []string
	}{
		{OpCreateCustomer, createCustomerMutation, append([]string{
			"mutation CreateCustomer(", "createCustomer(name: $name", "conversations: [{slackChannelIndex: $slackChannelIndex}]", "name",
		}, conversation...)},
		{OpAllConversations, allConversationsQuery, append([]string{
			"query AllConversations(", "filter: {customer: {id: $customerId}}", "orderBy: updatedAt_DESC",
		}, conversation...)},
		{OpCreateConversation, createConversationMutation, append([]string{
			"mutation CreateConversation(", "customerId: $customerId", "slackChannelIndex: $slackChannelIndex",
		}, conversation...)},
		{OpAllMessages, allMessagesQuery, append([]string{
			"query AllMessages(", "filter: {conversation: {id: $conversationId}}", "orderBy: createdAt_ASC",
		}, message...)},
		{OpCreateMessage, createMessageMutation, append([]string{
			"mutation CreateMessage(", "text: $text", "conversationId: $conversationId",
		}, message...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, field := range tt.want {
				assert.Contains(t, tt.doc, field)
			}
		})
	}
}

func TestServerSeesOperationDocuments(t *testing.T) {
	srv := apitest.NewServer(t)
	c := fastClient(srv.URL)

	cust, err := c.CreateCustomer(context.Background(), "Foo")
	require.NoError(t, err)
	assert.Contains(t, srv.LastQuery(OpCreateCustomer), "slackUserName")

	// A document missing its root field is rejected by the backend.
	err = c.Do(context.Background(), Request{Query: "query AllConversations { x }", OperationName: OpAllConversations}, nil)
	var gqlErr *GraphQLError
	require.True(t, errors.As(err, &gqlErr))
	assert.Contains(t, gqlErr.Error(), "allConversations")

	_, err = c.LoadConversations(context.Background(), cust.ID)
	require.NoError(t, err)
	assert.Equal(t, allConversationsQuery, srv.LastQuery(OpAllConversations))
}
