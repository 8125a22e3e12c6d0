// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - The config command.

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/jeranaias/showcase-chat/internal/config"
)

// HandleConfig shows, initializes or edits the configuration file.
func (a *App) HandleConfig(ctx context.Context) error {
	switch a.Args.Subcommand {
	case "", "show":
		if a.Args.JSON {
			return a.printJSON("config", a.Config)
		}
		for _, key := range config.GetAllKeys() {
			v, err := a.Config.Get(key)
			if err != nil {
				continue
			}
			fmt.Fprintf(a.Stdout, "%-26s %v\n", key, v)
		}
		return nil

	case "path":
		path, err := a.configPath()
		if err != nil {
			return err
		}
		if a.Args.JSON {
			return a.printJSON("config", map[string]string{"path": path})
		}
		fmt.Fprintln(a.Stdout, path)
		return nil

	case "init":
		path, err := a.configPath()
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err == nil && !a.Args.Force {
			return &CommandError{
				Command: "config",
				Reason:  fmt.Sprintf("%s already exists (use --force to overwrite)", path),
			}
		}
		if err := config.SaveTOML(config.Default(), path); err != nil {
			return &CommandError{Command: "config", Action: "write config", Err: err}
		}
		if a.Args.JSON {
			return a.printJSON("config", map[string]string{"path": path})
		}
		a.ok("Wrote %s", path)
		return nil

	case "get":
		key := a.positional(0)
		v, err := a.Config.Get(key)
		if err != nil {
			return &ValidationError{Field: "key", Value: key, Reason: err.Error(), Example: "showcase-chat config get api.base_url"}
		}
		if a.Args.JSON {
			return a.printJSON("config", map[string]interface{}{key: v})
		}
		fmt.Fprintln(a.Stdout, v)
		return nil

	case "set":
		return a.configSet(a.positional(0), a.positional(1))

	default:
		return &ValidationError{
			Field:   "subcommand",
			Value:   a.Args.Subcommand,
			Reason:  "must be show, path, init, get or set",
			Example: "showcase-chat config set ui.typing_interval_ms 50",
		}
	}
}

// configSet edits the file on disk. Environment overrides are not
// applied first, so they are never persisted.
func (a *App) configSet(key, value string) error {
	if key == "" || value == "" {
		return &ValidationError{Field: "arguments", Reason: "need a key and a value", Example: "showcase-chat config set ui.word_wrap 100"}
	}
	path, err := a.configPath()
	if err != nil {
		return err
	}

	cfg := config.Default()
	if _, err := os.Stat(path); err == nil {
		if err := config.LoadTOML(cfg, path); err != nil {
			return err
		}
	}
	if err := cfg.Set(key, value); err != nil {
		return &ValidationError{Field: "key", Value: key, Reason: err.Error()}
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.SaveTOML(cfg, path); err != nil {
		return &CommandError{Command: "config", Action: "write config", Err: err}
	}

	if a.Args.JSON {
		return a.printJSON("config", map[string]string{"path": path, "key": key, "value": value})
	}
	a.ok("Set %s = %s", key, value)
	return nil
}

func (a *App) configPath() (string, error) {
	if a.Args.ConfigPath != "" {
		return a.Args.ConfigPath, nil
	}
	return config.ConfigPathTOML()
}

func (a *App) positional(i int) string {
	if i < len(a.Args.Positional) {
		return a.Args.Positional[i]
	}
	return ""
}
