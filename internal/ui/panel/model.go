// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package panel

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/freecom-tui/internal/ui/components"
	"github.com/jeranaias/freecom-tui/internal/ui/styles"
	"github.com/jeranaias/freecom-tui/internal/widget"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultTimeout bounds each network call started by the panel.
	DefaultTimeout = 15 * time.Second

	// DefaultPollInterval is how often the panel reloads to pick up agent replies.
	DefaultPollInterval = 20 * time.Second

	minPanelWidth  = 30
	maxPanelWidth  = 72
	minPanelHeight = 12

	headerLines = 2
	inputLines  = 2
	footerLines = 2 // error line + help line
	chromeLines = 2 // panel border
	chromeCols  = 4 // panel border + body padding

	maxMessageLength = 2000
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures the panel model.
type Options struct {
	Controller *widget.Controller
	Theme      *styles.Theme

	// Markdown renders message text through glamour.
	Markdown bool

	// Timeout bounds each network call. Defaults to DefaultTimeout.
	Timeout time.Duration

	// PollInterval controls the background reload. Zero uses
	// DefaultPollInterval, negative disables polling.
	PollInterval time.Duration

	// Reload delivers presentation changes from a config watcher.
	Reload <-chan widget.Presentation
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the bubbletea model for the support panel.
type Model struct {
	ctrl  *widget.Controller
	theme *styles.Theme
	keys  KeyMap
	opts  Options

	listHeader *components.ListHeader
	chatHeader *components.ChatHeader
	list       *components.ConversationList
	transcript *components.Transcript
	toggle     *components.ToggleButton
	errLine    *components.ErrorLine

	input   textinput.Model
	spinner spinner.Model

	width  int
	height int

	// loadedChat is the conversation whose transcript is in the viewport
	loadedChat string
	sending    bool
	creating   bool
	showHelp   bool
	quitting   bool
}

// New creates the panel model.
func New(opts Options) Model {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.PollInterval == 0 {
		opts.PollInterval = DefaultPollInterval
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme("auto", styles.DefaultMainColor)
	}

	input := textinput.New()
	input.Placeholder = "Type a message..."
	input.Prompt = "> "
	input.CharLimit = maxMessageLength

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Muted

	m := Model{
		ctrl:       opts.Controller,
		theme:      theme,
		keys:       DefaultKeyMap(),
		opts:       opts,
		listHeader: components.NewListHeader(theme),
		chatHeader: components.NewChatHeader(theme),
		list:       components.NewConversationList(theme),
		transcript: components.NewTranscript(theme, opts.Markdown),
		toggle:     components.NewToggleButton(theme),
		errLine:    components.NewErrorLine(theme),
		input:      input,
		spinner:    sp,
		width:      80,
		height:     24,
	}
	m.layout()
	m.sync()
	return m
}

// Init starts initialization, the spinner, the poll timer and the reload
// listener.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.initCmd(), m.spinner.Tick}
	if cmd := m.tickCmd(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if cmd := m.waitForReload(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		cmd := m.transcript.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case initDoneMsg:
		return m, m.sync()

	case refreshedMsg:
		cmd := m.sync()
		if cmd == nil && msg.err == nil && m.loadedChat != "" {
			// Pick up agent replies in the open chat.
			cmd = m.loadMessagesCmd(m.loadedChat)
		}
		return m, cmd

	case createdMsg:
		m.creating = false
		return m, m.sync()

	case messagesMsg:
		if msg.conversationID == m.loadedChat {
			m.transcript.SetLoading(false)
			if msg.err == nil {
				m.transcript.SetMessages(msg.messages)
			}
		}
		return m, m.sync()

	case sentMsg:
		m.sending = false
		if msg.err == nil {
			m.input.Reset()
		}
		cmd := m.sync()
		if msg.err == nil {
			if view := m.ctrl.Render(); view.Chat != nil {
				m.transcript.SetMessages(view.Chat.Messages)
			}
		}
		return m, cmd

	case tickMsg:
		cmds := []tea.Cmd{m.sync(), m.tickCmd()}
		if m.ctrl.Phase() == widget.PhaseReady {
			cmds = append(cmds, m.refreshCmd())
		}
		return m, tea.Batch(cmds...)

	case PresentationMsg:
		m.applyPresentation(msg.Presentation)
		return m, m.waitForReload()
	}
	return m, nil
}

// handleKey routes a key press to the controller action for the current view.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		m.ctrl.Toggle()
		return m, m.sync()
	}

	view := m.ctrl.Render()

	if !view.PanelOpen {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Open):
			m.ctrl.Toggle()
			return m, m.sync()
		}
		return m, nil
	}

	if view.Err != nil && key.Matches(msg, m.keys.Back) {
		m.ctrl.DismissError()
		return m, m.sync()
	}

	if view.Kind == widget.ViewChat {
		return m.handleChatKey(msg, view)
	}
	return m.handleListKey(msg, view)
}

func (m Model) handleListKey(msg tea.KeyMsg, view widget.View) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Help) {
		m.showHelp = !m.showHelp
		return m, nil
	}
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	if view.Phase != widget.PhaseReady {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.list.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.list.MoveDown()
	case key.Matches(msg, m.keys.New):
		return m.startConversation()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshCmd()
	case key.Matches(msg, m.keys.Open):
		if m.list.OnNewConversation() {
			return m.startConversation()
		}
		if conv, ok := m.list.Selected(); ok {
			m.ctrl.Select(conv.ID)
			return m, m.sync()
		}
	}
	return m, nil
}

func (m Model) handleChatKey(msg tea.KeyMsg, view widget.View) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		// A chat without messages has no way back, matching the header.
		if view.Chat.ShowBackButton {
			m.ctrl.Reset()
			return m, m.sync()
		}
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshCmd()
	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		return m, m.transcript.Update(msg)
	case key.Matches(msg, m.keys.Send):
		text := strings.TrimSpace(m.input.Value())
		if text == "" || m.sending {
			return m, nil
		}
		m.sending = true
		return m, m.sendCmd(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) startConversation() (tea.Model, tea.Cmd) {
	if m.creating {
		return m, nil
	}
	m.creating = true
	return m, m.createCmd()
}

// =============================================================================
// SYNC & LAYOUT
// =============================================================================

// sync copies the controller snapshot into the components. When the chat view
// switches to a different conversation it returns the command loading its
// transcript.
func (m *Model) sync() tea.Cmd {
	if m.ctrl == nil {
		return nil
	}
	view := m.ctrl.Render()

	m.listHeader.SetCompanyName(view.Presentation.CompanyName)
	m.listHeader.SetCustomerName(view.CustomerName)
	m.list.CompanyName = view.Presentation.CompanyName
	m.list.SetConversations(view.Conversations)
	m.toggle.SetOpen(view.PanelOpen)
	m.errLine.SetError(view.Err)

	if view.Kind != widget.ViewChat {
		m.loadedChat = ""
		m.input.Blur()
		return nil
	}

	m.chatHeader.SetChat(*view.Chat)
	m.input.Focus()
	if view.Chat.ConversationID == m.loadedChat {
		return nil
	}
	m.loadedChat = view.Chat.ConversationID
	m.transcript.SetMessages(view.Chat.Messages)
	m.transcript.SetLoading(true)
	return m.loadMessagesCmd(view.Chat.ConversationID)
}

// layout sizes the components for the current window.
func (m *Model) layout() {
	panelWidth := min(max(m.width, minPanelWidth), maxPanelWidth)
	panelHeight := max(m.height-1, minPanelHeight)
	inner := panelWidth - chromeCols
	body := panelHeight - chromeLines - headerLines - footerLines

	m.listHeader.SetWidth(inner)
	m.chatHeader.SetWidth(inner)
	m.list.SetSize(inner, body)
	m.transcript.SetSize(inner, body-inputLines)
	m.errLine.SetWidth(inner)
	m.toggle.SetWidth(panelWidth)
	m.input.Width = max(inner-lipgloss.Width(m.input.Prompt)-1, 1)
}

func (m *Model) applyPresentation(p widget.Presentation) {
	m.ctrl.SetPresentation(p)
	m.theme = m.theme.WithMainColor(p.MainColor)
	m.spinner.Style = m.theme.Muted
	m.listHeader.SetTheme(m.theme)
	m.chatHeader.SetTheme(m.theme)
	m.list.SetTheme(m.theme)
	m.transcript.SetTheme(m.theme)
	m.toggle.SetTheme(m.theme)
	m.errLine.SetTheme(m.theme)
	m.sync()
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the panel and the toggle button.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	view := m.ctrl.Render()
	if !view.PanelOpen {
		return m.toggle.View()
	}

	panelWidth := min(max(m.width, minPanelWidth), maxPanelWidth)
	var sections []string

	switch {
	case view.Phase == widget.PhaseIdle || view.Phase == widget.PhaseInitializing:
		sections = append(sections,
			m.listHeader.View(),
			m.theme.EmptyState.Render(m.spinner.View()+" Connecting to support..."),
		)
	case view.Kind == widget.ViewChat:
		sections = append(sections,
			m.chatHeader.View(),
			m.transcript.View(),
			m.theme.InputBorder.Render(m.inputView()),
		)
	default:
		sections = append(sections, m.listHeader.View())
		if view.Phase == widget.PhaseFailed && len(view.Conversations) == 0 {
			sections = append(sections, m.theme.EmptyState.Render("Support is unavailable right now."))
		} else {
			sections = append(sections, m.list.View())
		}
	}

	if line := m.errLine.View(); line != "" {
		sections = append(sections, line)
	}
	sections = append(sections, m.helpView(view))

	body := m.theme.PanelBody.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
	panel := m.theme.Panel.Width(panelWidth - 2).Render(body)
	return lipgloss.JoinVertical(lipgloss.Right, panel, m.toggle.View())
}

func (m Model) inputView() string {
	if m.sending {
		return m.spinner.View() + " Sending..."
	}
	return m.input.View()
}

func (m Model) helpView(view widget.View) string {
	bindings := m.keys.ListHelp()
	if view.Kind == widget.ViewChat {
		bindings = m.keys.ChatHelp()
	}
	if !m.showHelp && view.Kind != widget.ViewChat {
		bindings = []key.Binding{m.keys.Open, m.keys.New, m.keys.Help}
	}

	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, m.theme.HelpKey.Render(h.Key)+" "+m.theme.HelpDesc.Render(h.Desc))
	}
	return strings.Join(parts, m.theme.Muted.Render("  "))
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m Model) initCmd() tea.Cmd {
	ctrl, timeout := m.ctrl, m.opts.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return initDoneMsg{err: ctrl.Init(ctx)}
	}
}

func (m Model) refreshCmd() tea.Cmd {
	ctrl, timeout := m.ctrl, m.opts.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return refreshedMsg{err: ctrl.Refresh(ctx)}
	}
}

func (m Model) createCmd() tea.Cmd {
	ctrl, timeout := m.ctrl, m.opts.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		conv, err := ctrl.InitiateNewConversation(ctx)
		return createdMsg{conv: conv, err: err}
	}
}

func (m Model) loadMessagesCmd(id string) tea.Cmd {
	ctrl, timeout := m.ctrl, m.opts.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		msgs, err := ctrl.LoadMessages(ctx, id)
		return messagesMsg{conversationID: id, messages: msgs, err: err}
	}
}

func (m Model) sendCmd(text string) tea.Cmd {
	ctrl, timeout := m.ctrl, m.opts.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		msg, err := ctrl.SendMessage(ctx, text)
		return sentMsg{message: msg, err: err}
	}
}

func (m Model) tickCmd() tea.Cmd {
	if m.opts.PollInterval < 0 {
		return nil
	}
	return tea.Tick(m.opts.PollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) waitForReload() tea.Cmd {
	ch := m.opts.Reload
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return PresentationMsg{Presentation: p}
	}
}
