// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Change describes the credentials after the file changed on disk.
type Change struct {
	Credentials Credentials
	Err         error // *RequiredError after a logout
}

// Resolve applies an explicit token to c the way Resolve does at startup:
// a non-blank token replaces the file's token and survives a logout.
func (c Change) Resolve(token string) Change {
	if strings.TrimSpace(token) == "" {
		return c
	}
	if c.Err != nil {
		c.Credentials = Credentials{}
	}
	c.Credentials.Token = token
	c.Err = nil
	return c
}

// Watch reports credential changes made by another process (a login or a
// logout in a second terminal). The parent directory is watched because
// the file is replaced atomically and may not exist yet.
//
// The channel is closed when ctx is cancelled.
func Watch(ctx context.Context, path string) (<-chan Change, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create credentials directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	out := make(chan Change, 1)
	target := filepath.Clean(path)

	go func() {
		defer close(out)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
					!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
					continue
				}
				creds, err := Load(path)
				select {
				case out <- Change{Credentials: creds, Err: err}:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[auth] watcher error: %v", err)
			}
		}
	}()

	return out, nil
}
