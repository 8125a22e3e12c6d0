// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// repl.go - Line-mode chat with persistent input history.
//
// Interactive commands:
//   /new                Start a new chat with the next message
//   /chats              List chats
//   /history            Show the current chat's history
//   /help               Show commands
//   /quit, /exit        Leave
//   Ctrl+C              Cancel the reply in progress, or leave at the prompt
//   Ctrl+D              Leave

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/showcase-chat/internal/model"
	"github.com/jeranaias/showcase-chat/internal/transport"
	"github.com/jeranaias/showcase-chat/internal/util"
)

const replPrompt = "you> "

const replHelp = `Commands:
  /new        start a new chat with the next message
  /chats      list chats
  /history    show this chat's history
  /help       show this help
  /quit       leave (Ctrl+D works too)`

// =============================================================================
// LINE READER
// =============================================================================

// LineReader is the line editor behind the REPL. *liner.State satisfies
// everything but Close, which also persists history.
type LineReader interface {
	Prompt(prompt string) (string, error)
	PromptWithSuggestion(prompt, text string, pos int) (string, error)
	PasswordPrompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// linerReader saves history to historyFile on Close.
type linerReader struct {
	*liner.State
	historyFile string
}

func openLiner(historyFile string) (LineReader, error) {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	if historyFile != "" {
		if f, err := os.Open(historyFile); err == nil {
			if _, err := line.ReadHistory(f); err != nil {
				log.Printf("[repl] could not read history: %v", err)
			}
			f.Close()
		}
	}
	return &linerReader{State: line, historyFile: historyFile}, nil
}

func (l *linerReader) Close() error {
	if l.historyFile != "" {
		var buf bytes.Buffer
		if _, err := l.State.WriteHistory(&buf); err == nil {
			if err := util.AtomicWriteFile(l.historyFile, buf.Bytes(), 0600); err != nil {
				log.Printf("[repl] could not save history: %v", err)
			}
		}
	}
	return l.State.Close()
}

func (a *App) lineReader(historyFile string) (LineReader, error) {
	if a.NewLineReader != nil {
		return a.NewLineReader(historyFile)
	}
	return openLiner(historyFile)
}

// =============================================================================
// REPL
// =============================================================================

// replSession is the state carried between prompts.
type replSession struct {
	chatID model.ID

	// pending is a message whose send failed; it is offered again at the
	// next prompt.
	pending string
}

// HandleRepl runs the line-mode chat until /quit, Ctrl+D, or Ctrl+C at
// the prompt.
func (a *App) HandleRepl(ctx context.Context) error {
	if a.Args.JSON {
		return &ValidationError{Field: "flag", Value: "--json", Reason: "is not supported by repl"}
	}
	client, err := a.Client()
	if err != nil {
		return err
	}

	lr, err := a.lineReader(a.Config.Storage.HistoryFile)
	if err != nil {
		return fmt.Errorf("failed to open line editor: %w", err)
	}
	defer lr.Close()

	s := &replSession{chatID: model.ID(a.Args.ChatID)}
	if s.chatID.IsZero() {
		a.hint("New chat. Type /help for commands.")
	} else {
		a.hint("Continuing chat %s. Type /help for commands.", s.chatID)
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		var input string
		if s.pending != "" {
			input, err = lr.PromptWithSuggestion(replPrompt, s.pending, -1)
		} else {
			input, err = lr.Prompt(replPrompt)
		}
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(a.Stdout)
				return nil
			}
			return err
		}
		s.pending = ""

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		lr.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if quit := a.replCommand(ctx, client, s, input); quit {
				return nil
			}
			continue
		}
		a.replTurn(ctx, client, s, input)
	}
}

// replTurn sends one message. Ctrl+C cancels the request or the reveal
// without leaving the REPL.
func (a *App) replTurn(ctx context.Context, client *transport.Client, s *replSession, text string) {
	turnCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	res, err := a.send(turnCtx, client, s.chatID, text)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(a.Stdout)
			return
		}
		s.pending = text
		fmt.Fprintf(a.Stderr, "%s %s\n", ErrorStyle.Render("[ERROR]"), err)
		return
	}
	if res.Created {
		s.chatID = res.ChatID
		log.Printf("[repl] started chat %s", res.ChatID)
	}
	if err := a.printReply(turnCtx, res.Reply); err != nil {
		fmt.Fprintln(a.Stdout)
	}
}

// replCommand handles a slash command and reports whether to quit.
func (a *App) replCommand(ctx context.Context, client *transport.Client, s *replSession, input string) bool {
	switch cmd, _, _ := strings.Cut(strings.ToLower(input), " "); cmd {
	case "/quit", "/exit", "/q":
		return true
	case "/new":
		s.chatID = ""
		a.hint("New chat. Your next message starts it.")
	case "/chats":
		convs, err := client.ListConversations(ctx)
		if err != nil {
			fmt.Fprintf(a.Stderr, "%s %s\n", ErrorStyle.Render("[ERROR]"), transport.UserMessage("Failed to load chat history", err))
			return false
		}
		for _, c := range convs {
			marker := "  "
			if c.ID == s.chatID {
				marker = "* "
			}
			fmt.Fprintf(a.Stdout, "%s%s  %s\n", marker, c.ID, c.DisplayTitle())
		}
	case "/history":
		if s.chatID.IsZero() {
			a.hint("This chat has not started yet.")
			return false
		}
		msgs, err := client.GetMessages(ctx, s.chatID)
		if err != nil {
			fmt.Fprintf(a.Stderr, "%s %s\n", ErrorStyle.Render("[ERROR]"), transport.UserMessage("Failed to load messages", err))
			return false
		}
		a.printHistory(msgs)
	case "/help", "/h", "/?":
		fmt.Fprintln(a.Stdout, replHelp)
	default:
		fmt.Fprintf(a.Stderr, "%s unknown command %s (try /help)\n", WarningStyle.Render("[!]"), cmd)
	}
	return false
}
