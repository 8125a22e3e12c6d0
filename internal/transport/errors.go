// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jeranaias/showcase-chat/internal/auth"
	"github.com/jeranaias/showcase-chat/internal/util"
)

// Sentinels for errors.Is.
var (
	// ErrStreamUnavailable is matched by *StreamUnavailableError.
	ErrStreamUnavailable = errors.New("response has no readable body")

	// ErrTimeout is matched by *TimeoutError.
	ErrTimeout = errors.New("request timed out")

	// ErrNoConversationID means a create reply did not say which
	// conversation it created.
	ErrNoConversationID = errors.New("reply did not include a conversation id")

	// ErrResponseTooLarge means the body exceeded MaxResponseSize.
	ErrResponseTooLarge = errors.New("response exceeded maximum size")
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// NetworkError means the request never completed.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError means the server answered with a non-2xx status.
type HTTPError struct {
	Op     string
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s: %d %s", e.Op, e.Status, http.StatusText(e.Status))
	if body := strings.TrimSpace(e.Body); body != "" {
		msg += ": " + util.TruncateRunes(body, 200)
	}
	return msg
}

// StreamUnavailableError means the response had no body to read.
type StreamUnavailableError struct {
	Op string
}

func (e *StreamUnavailableError) Error() string {
	if e.Op == "" {
		return ErrStreamUnavailable.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, ErrStreamUnavailable)
}

func (e *StreamUnavailableError) Is(target error) bool { return target == ErrStreamUnavailable }

// TimeoutError means the request, including reading its body, did not
// finish within the configured timeout.
type TimeoutError struct {
	Op    string
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: no response after %v", e.Op, e.After)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// =============================================================================
// USER-FACING MESSAGES
// =============================================================================

// UserMessage converts err into the single line shown near the input.
// action describes what the user tried, e.g. "Failed to load messages".
func UserMessage(action string, err error) string {
	if err == nil {
		return ""
	}
	return action + ": " + reason(err)
}

func reason(err error) string {
	var (
		httpErr    *HTTPError
		netErr     *NetworkError
		timeoutErr *TimeoutError
	)
	switch {
	case errors.Is(err, auth.ErrRequired):
		return "user not authenticated, run `showcase-chat login`."
	case errors.As(err, &timeoutErr):
		return fmt.Sprintf("the server did not answer within %v.", timeoutErr.After)
	case errors.As(err, &httpErr):
		switch httpErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "your session is not authorized, log in again."
		case http.StatusNotFound:
			return "chat not found."
		case http.StatusTooManyRequests:
			return "too many requests, try again shortly."
		default:
			return fmt.Sprintf("server error (%d).", httpErr.Status)
		}
	case errors.Is(err, ErrStreamUnavailable):
		return "the server sent an empty response."
	case errors.Is(err, ErrNoConversationID):
		return "the server did not return the new chat."
	case errors.Is(err, ErrResponseTooLarge):
		return "the response was too large."
	case errors.As(err, &netErr):
		return "could not reach the chat server."
	default:
		return err.Error()
	}
}
