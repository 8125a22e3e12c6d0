// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types and exit codes for CLI commands.
//
// Commands always return errors; main displays them once and exits with
// the code from GetExitCode.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jeranaias/showcase-chat/internal/auth"
	"github.com/jeranaias/showcase-chat/internal/config"
	"github.com/jeranaias/showcase-chat/internal/storage"
	"github.com/jeranaias/showcase-chat/internal/transport"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess       = 0
	ExitGeneralError  = 1
	ExitUsageError    = 2
	ExitConfigError   = 3
	ExitAuthError     = 4
	ExitNetworkError  = 5
	ExitNotFoundError = 7
	ExitTimeoutError  = 8
	ExitInterrupted   = 130
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError is a failed command step. Reason is already phrased for
// the user.
type CommandError struct {
	Command string // e.g. "delete"
	Action  string // e.g. "Failed to delete chat"
	Reason  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Command, e.Action, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Command, e.Action)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// requestFailed wraps a backend error with the same wording the chat
// screen uses.
func requestFailed(command, action string, err error) error {
	return &CommandError{
		Command: command,
		Action:  action,
		Reason:  transport.UserMessage(action, err),
		Err:     err,
	}
}

// ValidationError represents invalid user input.
type ValidationError struct {
	Field   string
	Value   string
	Reason  string
	Example string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// NotFoundError represents a missing local resource.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// GetExitCode determines the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
		httpErr       *transport.HTTPError
		netErr        *transport.NetworkError
		cfgErr        config.ValidationError
		cfgErrs       config.ValidateErrors
	)
	switch {
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case errors.As(err, &validationErr):
		return ExitUsageError
	case errors.As(err, &cfgErr), errors.As(err, &cfgErrs):
		return ExitConfigError
	case errors.Is(err, auth.ErrRequired):
		return ExitAuthError
	case errors.As(err, &notFoundErr), errors.Is(err, storage.ErrTranscriptNotFound):
		return ExitNotFoundError
	case errors.Is(err, transport.ErrTimeout):
		return ExitTimeoutError
	case errors.As(err, &httpErr):
		switch httpErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return ExitAuthError
		case http.StatusNotFound:
			return ExitNotFoundError
		}
		return ExitNetworkError
	case errors.As(err, &netErr):
		return ExitNetworkError
	}
	return ExitGeneralError
}

// =============================================================================
// ERROR DISPLAY
// =============================================================================

// DisplayError writes err to w, as a JSON envelope in JSON mode.
func DisplayError(w io.Writer, command string, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		resp := NewJSONErrorResponse(command, err)
		resp.ErrorType = errorType(err)
		resp.ExitCode = GetExitCode(err)
		_ = resp.PrintTo(w)
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
}

func errorType(err error) string {
	var (
		cmdErr        *CommandError
		validationErr *ValidationError
		notFoundErr   *NotFoundError
	)
	switch {
	case errors.As(err, &validationErr):
		return "validation_error"
	case errors.As(err, &notFoundErr):
		return "not_found_error"
	case errors.Is(err, auth.ErrRequired):
		return "auth_error"
	case errors.As(err, &cmdErr):
		return "command_error"
	}
	return "generic_error"
}
