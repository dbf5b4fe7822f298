// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/freecom-tui/internal/api"
	"github.com/jeranaias/freecom-tui/internal/model"
	"github.com/jeranaias/freecom-tui/internal/ui/styles"
	"github.com/jeranaias/freecom-tui/internal/widget"
)

var (
	testTheme = styles.NewTheme("dark", "#427FE1")
	testNow   = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
)

// =============================================================================
// HEADERS
// =============================================================================

func TestListHeaderView(t *testing.T) {
	h := NewListHeader(testTheme)
	h.SetWidth(50)
	h.SetCompanyName("Acme")
	h.SetCustomerName("Sleepy Otter")

	view := h.View()
	if !strings.Contains(view, "Acme") {
		t.Errorf("header should contain company name, got %q", view)
	}
	if !strings.Contains(view, "Sleepy Otter") {
		t.Errorf("header should greet the customer, got %q", view)
	}
}

func TestChatHeaderBackButton(t *testing.T) {
	tests := []struct {
		name     string
		showBack bool
	}{
		{"with messages", true},
		{"without messages", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewChatHeader(testTheme)
			h.SetWidth(60)
			h.SetChat(widget.ChatView{PartnerName: "Acme", Created: "just now", ShowBackButton: tt.showBack})

			view := h.View()
			if got := strings.Contains(view, "< "); got != tt.showBack {
				t.Errorf("back arrow present = %v, want %v: %q", got, tt.showBack, view)
			}
			if !strings.Contains(view, "Acme") || !strings.Contains(view, "just now") {
				t.Errorf("header missing values: %q", view)
			}
		})
	}
}

// =============================================================================
// CONVERSATION LIST
// =============================================================================

func sampleConversations() []model.Conversation {
	return []model.Conversation{
		{
			ID:        "v1",
			UpdatedAt: testNow.Add(-5 * time.Minute),
			Agent:     &model.Agent{ID: "a1", DisplayName: "nilan"},
			Messages:  []model.Message{{ID: "m1", Text: "How can I help?", Agent: &model.Agent{ID: "a1"}}},
		},
		{
			ID:        "v2",
			UpdatedAt: testNow.Add(-2 * time.Hour),
			Messages:  []model.Message{{ID: "m2", Text: "hello\nthere"}},
		},
		{ID: "v3", UpdatedAt: testNow.Add(-48 * time.Hour)},
	}
}

func newTestList() *ConversationList {
	l := NewConversationList(testTheme)
	l.CompanyName = "Acme"
	l.Now = func() time.Time { return testNow }
	l.SetSize(60, 20)
	return l
}

func TestConversationListNavigation(t *testing.T) {
	l := newTestList()
	l.SetConversations(sampleConversations())

	c, ok := l.Selected()
	if !ok || c.ID != "v1" {
		t.Fatalf("initial selection = %v %v", c.ID, ok)
	}

	l.MoveUp()
	if l.Cursor() != 0 {
		t.Errorf("MoveUp at top moved to %d", l.Cursor())
	}

	for i := 0; i < 10; i++ {
		l.MoveDown()
	}
	if !l.OnNewConversation() {
		t.Error("cursor should stop on the New Conversation row")
	}
	if _, ok := l.Selected(); ok {
		t.Error("button row is not a conversation")
	}
}

func TestConversationListKeepsCursorOnRefresh(t *testing.T) {
	l := newTestList()
	convs := sampleConversations()
	l.SetConversations(convs)
	l.MoveDown() // v2

	reordered := []model.Conversation{convs[1], convs[0], convs[2]}
	l.SetConversations(reordered)
	c, ok := l.Selected()
	if !ok || c.ID != "v2" {
		t.Errorf("cursor should follow v2, got %q", c.ID)
	}

	l.SetConversations(nil)
	if !l.OnNewConversation() {
		t.Error("empty list puts the cursor on the button")
	}
}

func TestConversationListView(t *testing.T) {
	l := newTestList()
	l.SetConversations(sampleConversations())
	view := l.View()

	for _, want := range []string{
		"nilan",            // agent name
		"Acme",             // company name when no agent
		"How can I help?",  // agent message preview
		"You: hello there", // customer preview collapsed to one line
		"5 minutes ago",
		"No messages yet",
		"New Conversation",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("list view missing %q:\n%s", want, view)
		}
	}
}

func TestConversationListEmptyView(t *testing.T) {
	l := newTestList()
	if view := l.View(); !strings.Contains(view, "No conversations yet") {
		t.Errorf("empty view = %q", view)
	}
}

func TestConversationListScrolls(t *testing.T) {
	l := NewConversationList(testTheme)
	l.Now = func() time.Time { return testNow }
	l.SetSize(60, 6) // two rows visible

	var convs []model.Conversation
	for i := 0; i < 10; i++ {
		convs = append(convs, model.Conversation{ID: fmt.Sprintf("v%d", i), UpdatedAt: testNow})
	}
	l.SetConversations(convs)
	for i := 0; i < 5; i++ {
		l.MoveDown()
	}
	if l.offset == 0 {
		t.Error("list should scroll to keep the cursor visible")
	}
	if l.Cursor() < l.offset || l.Cursor() >= l.offset+l.rowsVisible() {
		t.Errorf("cursor %d outside window [%d,%d)", l.Cursor(), l.offset, l.offset+l.rowsVisible())
	}
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

func TestTranscriptStates(t *testing.T) {
	tr := NewTranscript(testTheme, false)
	tr.Now = func() time.Time { return testNow }
	tr.SetSize(60, 20)

	if !strings.Contains(tr.View(), "Say hello") {
		t.Errorf("empty transcript = %q", tr.View())
	}

	tr.SetLoading(true)
	if !strings.Contains(tr.View(), "Loading") {
		t.Errorf("loading transcript = %q", tr.View())
	}

	tr.SetMessages([]model.Message{
		{ID: "m1", Text: "hi", CreatedAt: testNow.Add(-time.Minute)},
		{ID: "m2", Text: "welcome", CreatedAt: testNow, Agent: &model.Agent{ID: "a1", DisplayName: "nilan"}},
	})
	view := tr.View()
	for _, want := range []string{"You", "hi", "nilan", "welcome"} {
		if !strings.Contains(view, want) {
			t.Errorf("transcript missing %q:\n%s", want, view)
		}
	}
}

func TestTranscriptMarkdown(t *testing.T) {
	tr := NewTranscript(testTheme, true)
	tr.SetSize(60, 20)
	tr.SetMessages([]model.Message{{ID: "m1", Text: "**bold** text", CreatedAt: testNow}})

	view := tr.View()
	if strings.Contains(view, "**bold**") {
		t.Errorf("markdown should be rendered, got %q", view)
	}
	if !strings.Contains(view, "bold") {
		t.Errorf("rendered text missing: %q", view)
	}
}

// =============================================================================
// TOGGLE AND ERRORS
// =============================================================================

func TestToggleButton(t *testing.T) {
	b := NewToggleButton(testTheme)
	if !strings.Contains(b.View(), "Chat with us") {
		t.Errorf("closed label = %q", b.View())
	}
	b.SetOpen(true)
	if !strings.Contains(b.View(), "Close") {
		t.Errorf("open label = %q", b.View())
	}
}

func TestErrorLine(t *testing.T) {
	e := NewErrorLine(testTheme)
	e.SetWidth(100)
	if e.View() != "" {
		t.Error("no error should render nothing")
	}
	e.SetError(errors.New("boom"))
	if !strings.Contains(e.View(), "boom") {
		t.Errorf("error line = %q", e.View())
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("create customer: %w", api.ErrUnauthorized), "Not authorized"},
		{api.ErrRateLimited, "Too many requests"},
		{fmt.Errorf("x: %w", api.ErrServer), "temporarily unavailable"},
		{&api.GraphQLError{Errors: []api.ErrorItem{{Message: "nope"}}}, "nope"},
		{errors.New("multi\nline"), "multi line"},
	}
	for _, tt := range tests {
		if got := Describe(tt.err); !strings.Contains(got, tt.want) {
			t.Errorf("Describe(%v) = %q, want substring %q", tt.err, got, tt.want)
		}
	}
}
