// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command-line parsing for showcase-chat.
package cli

import (
	"fmt"
	"io"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdList
	CmdShow
	CmdAsk
	CmdRepl
	CmdDelete
	CmdExport
	CmdTranscripts
	CmdLogin
	CmdLogout
	CmdConfig
	CmdVersion
	CmdHelp
)

var commandNames = map[Command]string{
	CmdTUI:         "tui",
	CmdList:        "list",
	CmdShow:        "show",
	CmdAsk:         "ask",
	CmdRepl:        "repl",
	CmdDelete:      "delete",
	CmdExport:      "export",
	CmdTranscripts: "transcripts",
	CmdLogin:       "login",
	CmdLogout:      "logout",
	CmdConfig:      "config",
	CmdVersion:     "version",
	CmdHelp:        "help",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("command(%d)", int(c))
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet      bool
	Verbose    bool
	JSON       bool
	ConfigPath string

	// Command-specific
	ChatID     string
	Query      string
	Subcommand string
	Yes        bool
	Plain      bool
	Force      bool
	Format     string
	Out        string
	Token      string
	Name       string
	Email      string

	// Positional holds the arguments after the subcommand, if any.
	Positional []string
}

const usageText = `showcase-chat - terminal client for the Graduation Showcase chat

Usage:
  showcase-chat                         Start the chat screen (default)
  showcase-chat tui                     Start the chat screen
  showcase-chat list                    List your chats
  showcase-chat show <chat-id>          Print a chat's history
  showcase-chat ask [--chat <id>] <message...>
                                        Send one message and print the reply
  showcase-chat repl [--chat <id>]      Line-mode chat with input history
  showcase-chat delete <chat-id> [--yes]
                                        Delete a chat
  showcase-chat export <chat-id> [--format md|json|html] [--out <dir>|-]
                                        Save a transcript and write it out
  showcase-chat transcripts [list|show <id>|search <text>|delete <id>]
                                        Browse saved transcripts
  showcase-chat login [--token <token>] [--name <name>] [--email <email>]
                                        Store credentials
  showcase-chat logout                  Remove stored credentials
  showcase-chat config [show|path|init|get <key>|set <key> <value>]
                                        Configuration
  showcase-chat version                 Show version information

Global Flags:
  -q, --quiet                           Only print results
  -v, --verbose                         Log requests to stderr
      --json                            Machine-readable output
      --config <path>                   Use a specific config file

Command Flags:
  --plain                               No typing effect or Markdown rendering
  --yes, -y                             Skip confirmation prompts
  --force                               Overwrite an existing config file (config init)

Environment:
  SHOWCASE_HOME                         Config directory (default ~/.showcase)
  SHOWCASE_BASE_URL                     Backend base URL
  SHOWCASE_TOKEN                        Bearer token (never written to disk)
  SHOWCASE_TOKEN_FILE                   Credentials file
  SHOWCASE_TIMEOUT                      Request timeout in seconds
  SHOWCASE_TYPING_MS                    Typing effect interval
  SHOWCASE_NO_MARKDOWN                  Disable Markdown rendering
  SHOWCASE_DEBUG                        Write a debug log (chat screen only)
  NO_COLOR                              Disable colors

A .env file in the working directory is loaded before the environment is read.

Examples:
  showcase-chat ask "What projects are on show this year?"
  showcase-chat ask --chat 42 "Tell me more about the second one"
  showcase-chat export 42 --format html --out ~/Desktop
  echo "Summarize our chat" | showcase-chat ask --chat 42

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "showcase-chat version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
}

// boolFlagNames are never given a value by the parser.
var boolFlagNames = []string{"yes", "y", "plain", "force", "json", "quiet", "q", "verbose", "v"}

// Parse parses argv (without the program name) into a command and its
// arguments.
func Parse(argv []string) (Command, Args, error) {
	remaining, args := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, args, nil
	}

	name := strings.ToLower(remaining[0])
	p := NewArgParser(remaining[1:], boolFlagNames...)
	args.Positional = p.PositionalFrom(0)

	var cmd Command
	var known []string
	switch name {
	case "tui":
		cmd = CmdTUI
	case "list", "ls":
		cmd = CmdList
	case "show", "history":
		cmd = CmdShow
		known = []string{"plain"}
		args.ChatID = p.Positional(0)
		if args.ChatID == "" {
			return cmd, args, &ValidationError{Field: "chat-id", Reason: "is required", Example: "showcase-chat show 42"}
		}
	case "ask":
		cmd = CmdAsk
		known = []string{"chat", "c", "plain"}
		args.ChatID = p.Flag("chat", "c")
		args.Query = strings.TrimSpace(JoinPositionalArgs(p, 0))
	case "repl", "chat":
		cmd = CmdRepl
		known = []string{"chat", "c", "plain"}
		args.ChatID = p.Flag("chat", "c")
	case "delete", "rm":
		cmd = CmdDelete
		known = []string{"yes", "y"}
		args.ChatID = p.Positional(0)
		if args.ChatID == "" {
			return cmd, args, &ValidationError{Field: "chat-id", Reason: "is required", Example: "showcase-chat delete 42"}
		}
	case "export":
		cmd = CmdExport
		known = []string{"format", "f", "out", "o"}
		args.ChatID = p.Positional(0)
		args.Format = p.Flag("format", "f")
		args.Out = p.Flag("out", "o")
		if args.ChatID == "" {
			return cmd, args, &ValidationError{Field: "chat-id", Reason: "is required", Example: "showcase-chat export 42 --format md"}
		}
	case "transcripts", "transcript":
		cmd = CmdTranscripts
		known = []string{"format", "f", "yes", "y", "plain"}
		args.Subcommand = strings.ToLower(p.Positional(0))
		args.Format = p.Flag("format", "f")
		args.Positional = p.PositionalFrom(1)
	case "login":
		cmd = CmdLogin
		known = []string{"token", "name", "email"}
		args.Token = p.Flag("token")
		args.Name = p.Flag("name")
		args.Email = p.Flag("email")
	case "logout":
		cmd = CmdLogout
	case "config":
		cmd = CmdConfig
		known = []string{"force"}
		args.Subcommand = strings.ToLower(p.Positional(0))
		args.Positional = p.PositionalFrom(1)
	case "version", "--version":
		cmd = CmdVersion
	case "help", "-h", "--help":
		cmd = CmdHelp
	default:
		return CmdHelp, args, &ValidationError{
			Field:   "command",
			Value:   remaining[0],
			Reason:  "is not a known command",
			Example: "showcase-chat help",
		}
	}

	if unknown := p.Unknown(known...); len(unknown) > 0 {
		return cmd, args, &ValidationError{
			Field:  "flag",
			Value:  "--" + unknown[0],
			Reason: fmt.Sprintf("is not accepted by %q", name),
		}
	}

	args.Yes = p.BoolFlag("yes", "y")
	args.Plain = p.BoolFlag("plain")
	args.Force = p.BoolFlag("force")
	return cmd, args, nil
}

// parseGlobalFlags extracts global flags from anywhere in argv and returns
// the rest.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var remaining []string
	var args Args

	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch {
		case arg == "--":
			remaining = append(remaining, argv[i:]...)
			return remaining, args
		case arg == "-q" || arg == "--quiet":
			args.Quiet = true
		case arg == "-v" || arg == "--verbose":
			args.Verbose = true
		case arg == "--json":
			args.JSON = true
		case arg == "--config":
			if i+1 < len(argv) {
				i++
				args.ConfigPath = argv[i]
			}
		case strings.HasPrefix(arg, "--config="):
			args.ConfigPath = strings.TrimPrefix(arg, "--config=")
		default:
			remaining = append(remaining, arg)
		}
	}
	return remaining, args
}
