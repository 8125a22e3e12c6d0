// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/jeranaias/showcase-chat/internal/auth"
	"github.com/jeranaias/showcase-chat/internal/config"
	"github.com/jeranaias/showcase-chat/internal/model"
	"github.com/jeranaias/showcase-chat/internal/transport"
	"github.com/jeranaias/showcase-chat/internal/ui/styles"
)

// App runs line-mode commands.
type App struct {
	Config *config.Config
	Args   Args

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Interactive is true when Stdin is a terminal.
	Interactive bool

	// Pretty enables the typing effect and Markdown rendering.
	Pretty bool
	Width  int

	// NewLineReader opens the line editor used by repl and login. Nil
	// means liner on the real terminal.
	NewLineReader func(historyFile string) (LineReader, error)

	client *transport.Client
}

// NewApp wires an App to the process's standard streams.
func NewApp(cfg *config.Config, args Args) *App {
	return &App{
		Config:      cfg,
		Args:        args,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Interactive: IsTTY(),
		Pretty:      IsStdoutTTY() && !args.Plain && !args.JSON,
		Width:       GetTerminalWidth(),
	}
}

// Run executes cmd. Except for repl, which handles interrupts per reply,
// SIGINT and SIGTERM cancel ctx.
func (a *App) Run(ctx context.Context, cmd Command) error {
	if cmd != CmdRepl {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
	}

	switch cmd {
	case CmdList:
		return a.HandleList(ctx)
	case CmdShow:
		return a.HandleShow(ctx)
	case CmdAsk:
		return a.HandleAsk(ctx)
	case CmdRepl:
		return a.HandleRepl(ctx)
	case CmdDelete:
		return a.HandleDelete(ctx)
	case CmdExport:
		return a.HandleExport(ctx)
	case CmdTranscripts:
		return a.HandleTranscripts(ctx)
	case CmdLogin:
		return a.HandleLogin(ctx)
	case CmdLogout:
		return a.HandleLogout(ctx)
	case CmdConfig:
		return a.HandleConfig(ctx)
	case CmdVersion:
		return a.HandleVersion()
	case CmdHelp:
		PrintUsage(a.Stdout)
		return nil
	default:
		return fmt.Errorf("%s is not a line-mode command", cmd)
	}
}

// Client returns the backend client, resolving credentials on first use.
func (a *App) Client() (*transport.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	creds, err := auth.Resolve(a.Config.API.TokenFile, a.Config.API.Token)
	if err != nil {
		return nil, err
	}
	client, err := transport.New(creds, a.Config.TransportOptions())
	if err != nil {
		return nil, err
	}
	a.client = client
	return client, nil
}

// HandleVersion prints version information.
func (a *App) HandleVersion() error {
	if a.Args.JSON {
		return NewJSONResponse("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}).PrintTo(a.Stdout)
	}
	PrintVersion(a.Stdout)
	return nil
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

// printJSON writes a success envelope for command.
func (a *App) printJSON(command string, data interface{}) error {
	return NewJSONResponse(command, data).PrintTo(a.Stdout)
}

// hint writes a secondary line to stderr unless --quiet.
func (a *App) hint(format string, args ...interface{}) {
	if a.Args.Quiet {
		return
	}
	fmt.Fprintln(a.Stderr, DimStyle.Render(fmt.Sprintf(format, args...)))
}

// ok prints a success line.
func (a *App) ok(format string, args ...interface{}) {
	fmt.Fprintf(a.Stdout, "%s %s\n", SuccessStyle.Render("[OK]"), fmt.Sprintf(format, args...))
}

// wrapWidth is the column budget for rendered Markdown.
func (a *App) wrapWidth() int {
	w := a.Width
	if wrap := a.Config.UI.WordWrap; wrap > 0 && (w <= 0 || wrap < w) {
		w = wrap
	}
	return w
}

// printMessage prints one message with its speaker label. Finished
// assistant messages are rendered as Markdown on a terminal.
func (a *App) printMessage(msg model.Message) {
	fmt.Fprintln(a.Stdout, speakerStyle(msg.IsUser()).Render(msg.Sender.DisplayName()))
	content := msg.Content
	if !msg.IsUser() && a.Pretty && a.Config.UI.RenderMarkdown {
		content = styles.RenderMarkdown(content, a.wrapWidth())
	}
	fmt.Fprintln(a.Stdout, content)
	fmt.Fprintln(a.Stdout)
}

// confirmOptions builds the confirmation gate for this invocation.
func (a *App) confirmOptions(details ...[2]string) ConfirmationOptions {
	return ConfirmationOptions{
		ConfirmFlag: a.Args.Yes,
		JSONMode:    a.Args.JSON,
		Interactive: a.Interactive,
		In:          a.Stdin,
		Out:         a.Stderr,
		Details:     details,
	}
}
