// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// login.go - Credentials file management.
//
// A running chat screen watches the credentials file, so login and logout
// from another terminal unlock or lock it.

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jeranaias/showcase-chat/internal/auth"
)

type loginResult struct {
	TokenFile string `json:"token_file"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
}

// HandleLogin stores a token and optional profile. Without --token the
// token is prompted for on a terminal, or read from the first line of
// stdin.
func (a *App) HandleLogin(ctx context.Context) error {
	token := strings.TrimSpace(a.Args.Token)
	if token == "" {
		var err error
		if token, err = a.readToken(); err != nil {
			return err
		}
	}

	creds := auth.Credentials{
		Token: token,
		Name:  strings.TrimSpace(a.Args.Name),
		Email: strings.TrimSpace(a.Args.Email),
	}
	if !creds.Valid() {
		return &ValidationError{
			Field:   "token",
			Reason:  "is required",
			Example: "showcase-chat login --token <token>",
		}
	}

	path := a.Config.API.TokenFile
	if err := auth.Save(path, creds); err != nil {
		return &CommandError{Command: "login", Action: "save credentials", Err: err}
	}

	if a.Args.JSON {
		return a.printJSON("login", loginResult{TokenFile: path, Name: creds.Name, Email: creds.Email})
	}
	if creds.Name != "" {
		a.ok("Logged in as %s", creds.Name)
	} else {
		a.ok("Logged in")
	}
	a.hint("Credentials saved to %s", path)
	return nil
}

func (a *App) readToken() (string, error) {
	if a.Interactive && !a.Args.JSON {
		lr, err := a.lineReader("")
		if err != nil {
			return "", fmt.Errorf("failed to open line editor: %w", err)
		}
		defer lr.Close()
		token, err := lr.PasswordPrompt("Token: ")
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return strings.TrimSpace(token), nil
	}

	if a.Stdin == nil {
		return "", nil
	}
	line, err := bufio.NewReader(a.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read token from stdin: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// HandleLogout removes the credentials file.
func (a *App) HandleLogout(ctx context.Context) error {
	path := a.Config.API.TokenFile
	if err := auth.Remove(path); err != nil {
		return &CommandError{Command: "logout", Action: "remove credentials", Err: err}
	}
	if a.Args.JSON {
		return a.printJSON("logout", map[string]string{"token_file": path})
	}
	a.ok("Logged out")
	if a.Config.API.Token != "" {
		a.hint("SHOWCASE_TOKEN is still set in this environment.")
	}
	return nil
}
