// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode"

	"github.com/jeranaias/showcase-chat/internal/model"
)

// maxTrailingCandidates bounds how many '{' positions ParseReply tries when
// looking for a trailing JSON object.
const maxTrailingCandidates = 64

// idPattern finds a numeric id after a known key when the trailing object is
// not valid JSON.
var idPattern = regexp.MustCompile(`"(chat_id|chatId|id)"\s*:\s*"?(\d+)"?`)

// Reply is a fully received streamed response.
type Reply struct {
	// Text is the assistant reply with any trailing JSON removed.
	Text string

	// ChatID is the conversation id from a "chat" object or a chat_id key.
	ChatID model.ID

	// ID is a bare "id" key. On create it names the new conversation; on a
	// follow-up message the backend uses it for the stored reply.
	ID model.ID

	// Title is the conversation title, when the backend sent one.
	Title string
}

// ConversationID returns the id of the conversation the reply created.
func (r Reply) ConversationID() model.ID {
	if !r.ChatID.IsZero() {
		return r.ChatID
	}
	return r.ID
}

type replyTrailer struct {
	ID     model.ID        `json:"id"`
	ChatID model.ID        `json:"chat_id"`
	Title  string          `json:"title"`
	Chat   *replyChat      `json:"chat"`
	Reply  json.RawMessage `json:"reply"`
	Answer json.RawMessage `json:"content"`
	Text   json.RawMessage `json:"message"`
}

type replyChat struct {
	ID    model.ID `json:"id"`
	Title string   `json:"title"`
}

// ParseReply splits raw streamed text into the reply and its trailing
// metadata. Text with no recognizable trailer is returned unchanged.
func ParseReply(raw string) Reply {
	body := strings.TrimRightFunc(raw, unicode.IsSpace)

	if start, trailer, ok := findTrailer(body); ok {
		r := Reply{
			Text:   strings.TrimRightFunc(body[:start], unicode.IsSpace),
			ID:     trailer.ID,
			ChatID: trailer.ChatID,
			Title:  trailer.Title,
		}
		if trailer.Chat != nil {
			if !trailer.Chat.ID.IsZero() {
				r.ChatID = trailer.Chat.ID
			}
			if trailer.Chat.Title != "" {
				r.Title = trailer.Chat.Title
			}
		}
		if r.Text == "" {
			r.Text = firstString(trailer.Reply, trailer.Answer, trailer.Text)
		}
		return r
	}

	if start, key, id, ok := findBrokenTrailer(body); ok {
		r := Reply{Text: strings.TrimRightFunc(body[:start], unicode.IsSpace)}
		if key == "id" {
			r.ID = id
		} else {
			r.ChatID = id
		}
		return r
	}

	return Reply{Text: raw}
}

// findTrailer returns the start of the JSON object that ends body, trying
// '{' positions from the right.
func findTrailer(body string) (int, replyTrailer, bool) {
	if !strings.HasSuffix(body, "}") {
		return 0, replyTrailer{}, false
	}
	end := len(body)
	for tries := 0; tries < maxTrailingCandidates; tries++ {
		i := strings.LastIndex(body[:end], "{")
		if i < 0 {
			break
		}
		candidate := body[i:]
		if json.Valid([]byte(candidate)) {
			var t replyTrailer
			if err := json.Unmarshal([]byte(candidate), &t); err == nil && t.hasMetadata() {
				return i, t, true
			}
			// Valid JSON that is not a trailer (e.g. a code sample): stop.
			return 0, replyTrailer{}, false
		}
		end = i
	}
	return 0, replyTrailer{}, false
}

// findBrokenTrailer matches idPattern inside a final, malformed {...} object.
// The object must close the body; an id key anywhere else is reply text.
func findBrokenTrailer(body string) (int, string, model.ID, bool) {
	if !strings.HasSuffix(body, "}") {
		return 0, "", "", false
	}
	m := idPattern.FindAllStringSubmatchIndex(body, -1)
	if len(m) == 0 {
		return 0, "", "", false
	}
	last := m[len(m)-1]

	brace := strings.LastIndex(body[:last[0]], "{")
	if brace < 0 || strings.Contains(body[brace:last[0]], "}") {
		return 0, "", "", false
	}
	if strings.Index(body[last[1]:], "}") != len(body)-1-last[1] {
		return 0, "", "", false
	}
	return brace, body[last[2]:last[3]], model.ID(body[last[4]:last[5]]), true
}

func (t replyTrailer) hasMetadata() bool {
	return !t.ID.IsZero() || !t.ChatID.IsZero() || t.Chat != nil
}

func firstString(raws ...json.RawMessage) string {
	for _, raw := range raws {
		if len(raw) == 0 {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}
