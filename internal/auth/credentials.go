// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth loads the bearer credential the chat client sends with every
// request.
//
// The web login stores a token and a small profile; the terminal client
// reads the same data from a JSON file (default ~/.showcase/credentials.json)
// once, builds a Credentials value, and hands it to the transport. Nothing
// else reads the file.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/showcase-chat/internal/util"
)

// ErrRequired is matched by errors.Is for every missing-credential failure.
var ErrRequired = errors.New("authentication required")

// RequiredError reports that no token is available. It is checked before the
// chat surface opens rather than caught from a failed request.
type RequiredError struct {
	Path string
}

func (e *RequiredError) Error() string {
	if e.Path == "" {
		return "not logged in: no token configured"
	}
	return fmt.Sprintf("not logged in: no token in %s", e.Path)
}

// Is lets errors.Is(err, ErrRequired) match.
func (e *RequiredError) Is(target error) bool { return target == ErrRequired }

// Credentials is the explicit credential object injected into the transport.
type Credentials struct {
	Token  string `json:"token"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// Valid reports whether a token is present.
func (c Credentials) Valid() bool { return strings.TrimSpace(c.Token) != "" }

// Header returns the Authorization header value.
func (c Credentials) Header() string { return "Bearer " + strings.TrimSpace(c.Token) }

// Redacted returns a copy safe to print.
func (c Credentials) Redacted() Credentials {
	if c.Token != "" {
		c.Token = "[REDACTED]"
	}
	return c
}

// Load reads credentials from path. A missing file, or a file with an empty
// token, yields a *RequiredError.
func Load(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Credentials{}, &RequiredError{Path: path}
	}
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds Credentials
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal(data, &creds); err != nil {
			return Credentials{}, fmt.Errorf("failed to parse credentials: %w", err)
		}
	} else {
		// A bare token file is accepted as well.
		creds.Token = trimmed
	}

	if !creds.Valid() {
		return Credentials{}, &RequiredError{Path: path}
	}
	return creds, nil
}

// Resolve prefers an explicit token (from the environment or a flag) over
// the file. The profile still comes from the file when it can be read.
func Resolve(path, token string) (Credentials, error) {
	fromFile, err := Load(path)
	if strings.TrimSpace(token) == "" {
		return fromFile, err
	}
	fromFile.Token = token
	return fromFile, nil
}

// Save writes creds to path with 0600 permissions.
func Save(path string, creds Credentials) error {
	if !creds.Valid() {
		return &RequiredError{Path: path}
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// Remove deletes the credentials file. Removing a missing file is not an
// error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}
