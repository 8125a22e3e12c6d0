// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the line-mode commands of showcase-chat.
//
// The chat screen (the default command) lives in ui/chat; everything here
// prints to a stream and exits, which makes it usable from scripts.
//
// # Key Types
//
//   - Command: Enumeration of the available commands
//   - Args: Parsed global and command-specific flags
//   - App: Runs one command against a config and a set of streams
//
// # Usage
//
//	cmd, args, err := cli.Parse(os.Args[1:])
//	app := cli.NewApp(cfg, args)
//	if err := app.Run(ctx, cmd); err != nil {
//	    cli.DisplayError(os.Stderr, cmd.String(), err, args.JSON)
//	    os.Exit(cli.GetExitCode(err))
//	}
//
// # Commands Overview
//
//   - list, show: read chats from the backend
//   - ask, repl: send messages; replies are revealed with the typing effect
//     on a terminal and printed whole otherwise
//   - delete: remove a chat after a yes/no confirmation
//   - export, transcripts: save and browse local transcript snapshots
//   - login, logout: manage the credentials file the chat screen watches
//   - config, version, help
//
// Every command honors --json, which prints a JSONResponse envelope.
package cli
