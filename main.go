// showcase-chat - A terminal client for the showcase AI chat.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/jeranaias/showcase-chat/internal/auth"
	"github.com/jeranaias/showcase-chat/internal/cli"
	"github.com/jeranaias/showcase-chat/internal/config"
	"github.com/jeranaias/showcase-chat/internal/transport"
	"github.com/jeranaias/showcase-chat/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	// A missing .env is normal.
	_ = godotenv.Load()

	cmd, args, err := cli.Parse(os.Args[1:])
	if err != nil {
		cli.DisplayError(errorStream(args), cmd.String(), err, args.JSON)
		os.Exit(cli.ExitUsageError)
	}

	cfg, err := loadConfig(args)
	if err != nil {
		cli.DisplayError(errorStream(args), cmd.String(), err, args.JSON)
		os.Exit(cli.ExitConfigError)
	}

	if cmd == cli.CmdTUI {
		if err := runTUI(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error running showcase-chat: %v\n", err)
			os.Exit(cli.GetExitCode(err))
		}
		return
	}

	if args.Verbose {
		log.SetOutput(os.Stderr)
		log.SetFlags(log.Ltime | log.Lmicroseconds)
	} else {
		log.SetOutput(io.Discard)
	}

	app := cli.NewApp(cfg, args)
	if err := app.Run(context.Background(), cmd); err != nil {
		cli.DisplayError(errorStream(args), cmd.String(), err, args.JSON)
		os.Exit(cli.GetExitCode(err))
	}
}

// errorStream is stdout in JSON mode so scripts get one document.
func errorStream(args cli.Args) io.Writer {
	if args.JSON {
		return os.Stdout
	}
	return os.Stderr
}

// loadConfig honors --config, otherwise loads the default location.
func loadConfig(args cli.Args) (*config.Config, error) {
	if args.ConfigPath == "" {
		return config.Global(), nil
	}
	cfg, err := config.LoadFromPath(args.ConfigPath)
	if err != nil {
		return nil, err
	}
	config.SetGlobal(cfg)
	return cfg, nil
}

// runTUI starts the chat screen. Without credentials the screen opens
// locked and unlocks when a login is written to the token file.
func runTUI(cfg *config.Config) error {
	if os.Getenv("SHOWCASE_DEBUG") != "" {
		f, err := tea.LogToFile("showcase-debug.log", "debug")
		if err != nil {
			return fmt.Errorf("failed to open debug log: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connect := func(creds auth.Credentials) (chat.Backend, error) {
		client, err := transport.New(creds, cfg.TransportOptions())
		if err != nil {
			return nil, err
		}
		return chat.NewBackend(client), nil
	}

	opts := chat.Options{
		Connect:        connect,
		TypingInterval: cfg.TypingInterval(),
		RenderMarkdown: cfg.UI.RenderMarkdown,
		SidebarWidth:   cfg.UI.SidebarWidth,
		Token:          cfg.API.Token,
		Context:        ctx,
	}

	creds, err := auth.Resolve(cfg.API.TokenFile, cfg.API.Token)
	switch {
	case err == nil:
		backend, err := connect(creds)
		if err != nil {
			return err
		}
		opts.Backend = backend
		opts.Profile = creds.Redacted()
	case errors.Is(err, auth.ErrRequired):
		log.Printf("no credentials, starting locked")
	default:
		return err
	}

	changes, err := auth.Watch(ctx, cfg.API.TokenFile)
	if err != nil {
		log.Printf("credential watch disabled: %v", err)
	} else {
		opts.AuthChanges = changes
	}

	p := tea.NewProgram(chat.New(opts), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
