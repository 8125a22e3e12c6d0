// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// provisionalPrefix marks ids minted on the client before the server knows
// about a record.
const provisionalPrefix = "tmp-"

// ID is an opaque identifier assigned by the backend. The backend emits
// numbers in some responses and strings in others, so ID decodes both.
// The zero value means "no id" (a draft conversation).
type ID string

// NewProvisionalID returns a client-only id that can never collide with a
// server id.
func NewProvisionalID() ID {
	return ID(provisionalPrefix + uuid.NewString())
}

// IsZero reports whether the id is unset.
func (id ID) IsZero() bool { return id == "" }

// IsProvisional reports whether the id was minted by NewProvisionalID.
func (id ID) IsProvisional() bool { return strings.HasPrefix(string(id), provisionalPrefix) }

func (id ID) String() string { return string(id) }

// Less orders ids numerically when both are integers, lexically otherwise.
// Integers sort before non-integers so provisional ids trail server ids.
func (id ID) Less(other ID) bool {
	a, aErr := strconv.ParseInt(string(id), 10, 64)
	b, bErr := strconv.ParseInt(string(other), 10, 64)
	switch {
	case aErr == nil && bErr == nil:
		return a < b
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	default:
		return id < other
	}
}

// UnmarshalJSON accepts a JSON number, a JSON string, or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid id: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON writes integer ids as numbers and everything else as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}
