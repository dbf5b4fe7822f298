// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/jeranaias/freecom-tui/internal/config"
	"github.com/jeranaias/freecom-tui/internal/model"
	"github.com/jeranaias/freecom-tui/internal/ui/components"
	"github.com/jeranaias/freecom-tui/internal/util"
	"github.com/jeranaias/freecom-tui/internal/widget"
)

// =============================================================================
// LINE INPUT
// =============================================================================

// LineReader reads one line of input per prompt. *liner.State satisfies it
// apart from history persistence, which linerReader adds.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// linerReader is a liner prompt with history kept in the config dir.
type linerReader struct {
	*liner.State
	historyFile string
}

func newLinerReader() (LineReader, error) {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	r := &linerReader{State: line}
	if dir, err := config.ConfigDir(); err == nil {
		r.historyFile = filepath.Join(dir, "chat_history")
		if f, err := os.Open(r.historyFile); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
	}
	return r, nil
}

// Close writes the history file (0600) and restores the terminal.
func (r *linerReader) Close() error {
	if r.historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(r.historyFile), 0700); err == nil {
			if f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
				_, _ = r.WriteHistory(f)
				f.Close()
			}
		}
	}
	return r.State.Close()
}

// confirmWithLiner asks a yes/no question on the terminal.
func confirmWithLiner(question string) (bool, error) {
	if !IsTTY() {
		return false, ErrConfirmationRequired
	}
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	answer, err := line.Prompt(question)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	return ParseBoolString(answer)
}

// =============================================================================
// CHAT SESSION
// =============================================================================

// ChatSession is the line-based front end to the widget controller.
type ChatSession struct {
	ctrl    *widget.Controller
	in      LineReader
	out     io.Writer
	pal     palette
	timeout time.Duration
	now     func() time.Time

	// printed counts the messages already shown per conversation
	printed map[string]int
}

// NewChatSession creates a session reading from in and writing to out.
func NewChatSession(ctrl *widget.Controller, in LineReader, out io.Writer, timeout time.Duration) *ChatSession {
	return &ChatSession{
		ctrl:    ctrl,
		in:      in,
		out:     out,
		pal:     newPalette(out),
		timeout: timeout,
		now:     time.Now,
		printed: make(map[string]int),
	}
}

func (a *App) runChat(ctx context.Context) error {
	if err := a.require(true, false, true); err != nil {
		return err
	}
	in, err := a.NewLineReader()
	if err != nil {
		return err
	}
	defer in.Close()

	return NewChatSession(a.Controller, in, a.Stdout, a.Config.API.Timeout()).Run(ctx)
}

// Run initializes the controller and reads commands until /quit or EOF.
func (s *ChatSession) Run(ctx context.Context) error {
	if err := s.call(ctx, s.ctrl.Init); err != nil {
		s.pal.fail.Fprintf(s.out, "Could not connect to support: %s\n", components.Describe(err))
		return err
	}

	view := s.ctrl.Render()
	s.pal.title.Fprintf(s.out, "%s support\n", view.Presentation.CompanyName)
	fmt.Fprintf(s.out, "Hi %s. Type /help for commands.\n\n", view.CustomerName)
	if view.Kind == widget.ViewChat {
		s.openSelected(ctx)
	} else {
		s.printList()
	}

	for {
		line, err := s.in.Prompt(s.prompt())
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintln(s.out)
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		s.in.AppendHistory(line)

		if strings.HasPrefix(line, "/") {
			quit, err := s.handleCommand(ctx, line)
			if err != nil {
				s.pal.fail.Fprintf(s.out, "[X] %s\n", components.Describe(err))
				s.ctrl.DismissError()
			}
			if quit {
				return nil
			}
			continue
		}

		if err := s.send(ctx, line); err != nil {
			s.pal.fail.Fprintf(s.out, "[X] %s\n", components.Describe(err))
			s.ctrl.DismissError()
		}
	}
}

func (s *ChatSession) prompt() string {
	view := s.ctrl.Render()
	if view.Kind == widget.ViewChat {
		return "you> "
	}
	return "freecom> "
}

// call runs fn with the request timeout applied.
func (s *ChatSession) call(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return fn(ctx)
}

// =============================================================================
// COMMANDS
// =============================================================================

const chatHelp = `Commands:
  /list            Show your conversations
  /open N          Open conversation N from the list
  /new             Start a new conversation
  /back            Return to the list
  /refresh         Check for new messages
  /help            Show this help
  /quit            Leave the chat
Anything else is sent to the open conversation.`

func (s *ChatSession) handleCommand(ctx context.Context, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case "/quit", "/q", "/exit":
		return true, nil

	case "/help", "/h", "/?":
		fmt.Fprintln(s.out, chatHelp)

	case "/list", "/l":
		s.printList()

	case "/back", "/b":
		s.ctrl.Reset()
		s.printList()

	case "/new", "/n":
		err = s.call(ctx, func(ctx context.Context) error {
			_, err := s.ctrl.InitiateNewConversation(ctx)
			return err
		})
		if err == nil {
			s.openSelected(ctx)
		}

	case "/open", "/o":
		if len(fields) < 2 {
			return false, errors.New("usage: /open N")
		}
		n, convErr := strconv.Atoi(fields[1])
		convs := s.ctrl.Conversations()
		if convErr != nil || n < 1 || n > len(convs) {
			return false, fmt.Errorf("no conversation %s, see /list", fields[1])
		}
		s.ctrl.Select(convs[n-1].ID)
		s.openSelected(ctx)

	case "/refresh", "/r":
		if id := s.ctrl.SelectedConversationID(); id != "" {
			err = s.printTranscript(ctx, id)
		} else if err = s.call(ctx, s.ctrl.Refresh); err == nil {
			s.printList()
		}

	default:
		return false, fmt.Errorf("unknown command %s, see /help", fields[0])
	}
	return false, err
}

func (s *ChatSession) send(ctx context.Context, text string) error {
	if s.ctrl.Render().Kind != widget.ViewChat {
		return errors.New("no conversation open: use /open N or /new")
	}
	var msg model.Message
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		msg, err = s.ctrl.SendMessage(ctx, text)
		return err
	})
	if err != nil {
		return err
	}
	s.printed[s.ctrl.SelectedConversationID()]++
	s.pal.muted.Fprintf(s.out, "  sent %s\n", util.TimeAgo(msg.CreatedAt, s.now()))
	return nil
}

// =============================================================================
// OUTPUT
// =============================================================================

// openSelected prints the header of the selected chat and its transcript.
func (s *ChatSession) openSelected(ctx context.Context) {
	view := s.ctrl.Render()
	if view.Chat == nil {
		s.printList()
		return
	}
	chat := view.Chat
	s.pal.title.Fprintf(s.out, "Chat with %s", chat.PartnerName)
	if chat.Created != "" {
		s.pal.muted.Fprintf(s.out, " (last active %s)", chat.Created)
	}
	fmt.Fprintln(s.out)

	delete(s.printed, chat.ConversationID)
	if err := s.printTranscript(ctx, chat.ConversationID); err != nil {
		s.pal.fail.Fprintf(s.out, "[X] %s\n", components.Describe(err))
		s.ctrl.DismissError()
	}
}

// printTranscript loads the conversation and prints messages not shown yet.
func (s *ChatSession) printTranscript(ctx context.Context, id string) error {
	var msgs []model.Message
	err := s.call(ctx, func(ctx context.Context) error {
		var err error
		msgs, err = s.ctrl.LoadMessages(ctx, id)
		return err
	})
	if err != nil {
		return err
	}

	start := min(s.printed[id], len(msgs))
	if len(msgs) == 0 {
		s.pal.muted.Fprintln(s.out, "  Say hello! A team member will be with you shortly.")
	}
	view := s.ctrl.Render()
	for _, m := range msgs[start:] {
		s.printMessage(m, view.Presentation.CompanyName)
	}
	s.printed[id] = len(msgs)
	return nil
}

func (s *ChatSession) printMessage(m model.Message, companyName string) {
	when := s.pal.muted.Sprint(util.TimeAgo(m.CreatedAt, s.now()))
	if m.FromAgent() {
		name := m.Agent.DisplayName
		if name == "" {
			name = companyName
		}
		fmt.Fprintf(s.out, "%s %s\n  %s\n", s.pal.agent.Sprint(name), when, m.Text)
		return
	}
	fmt.Fprintf(s.out, "%s %s\n  %s\n", s.pal.you.Sprint("You"), when, m.Text)
}

func (s *ChatSession) printList() {
	view := s.ctrl.Render()
	if len(view.Conversations) == 0 {
		fmt.Fprintln(s.out, "No conversations yet. Type /new to start one.")
		return
	}
	now := s.now()
	for i, conv := range view.Conversations {
		cv := widget.DeriveChatView(conv, view.Presentation, now)
		preview := "No messages yet"
		if last, ok := conv.LatestMessage(); ok {
			preview = util.SingleLine(last.Text)
			if !last.FromAgent() {
				preview = "You: " + preview
			}
		}
		fmt.Fprintf(s.out, "%s %s %s\n      %s\n",
			s.pal.label.Sprintf("%3d.", i+1),
			s.pal.agent.Sprint(cv.PartnerName),
			s.pal.muted.Sprint(cv.Created),
			util.TruncateWidth(preview, 60),
		)
	}
}
