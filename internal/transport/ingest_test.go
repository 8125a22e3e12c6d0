// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"errors"
	"io"
	"strings"
	"testing"
)

// chunkReader returns one chunk per Read call.
type chunkReader struct {
	chunks [][]byte
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	r.chunks[0] = r.chunks[0][n:]
	if len(r.chunks[0]) == 0 {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

// =============================================================================
// INGEST TESTS
// =============================================================================

func TestIngest_SplitMultiByteCharacter(t *testing.T) {
	text := "Xin chào 世界 🎓"
	raw := []byte(text)

	// Split inside every multi-byte sequence in turn.
	for cut := 1; cut < len(raw); cut++ {
		r := &chunkReader{chunks: [][]byte{
			append([]byte(nil), raw[:cut]...),
			append([]byte(nil), raw[cut:]...),
		}}
		got, err := Ingest(r, "text/plain; charset=utf-8")
		if err != nil {
			t.Fatalf("cut %d: Ingest: %v", cut, err)
		}
		if got != text {
			t.Fatalf("cut %d: got %q, want %q", cut, got, text)
		}
	}
}

func TestIngest_ByteAtATime(t *testing.T) {
	text := "héllo wörld ✓"
	var chunks [][]byte
	for _, b := range []byte(text) {
		chunks = append(chunks, []byte{b})
	}
	got, err := Ingest(&chunkReader{chunks: chunks}, "")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if got != text {
		t.Errorf("got %q, want %q", got, text)
	}
}

func TestIngest_NilBody(t *testing.T) {
	_, err := Ingest(nil, "")
	if !errors.Is(err, ErrStreamUnavailable) {
		t.Fatalf("err = %v, want ErrStreamUnavailable", err)
	}
	var su *StreamUnavailableError
	if !errors.As(err, &su) {
		t.Errorf("err should be *StreamUnavailableError, got %T", err)
	}
}

func TestIngest_DeclaredCharset(t *testing.T) {
	// "café" in ISO-8859-1
	latin1 := []byte{'c', 'a', 'f', 0xE9}
	got, err := Ingest(strings.NewReader(string(latin1)), "text/plain; charset=ISO-8859-1")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if got != "café" {
		t.Errorf("got %q, want %q", got, "café")
	}
}

func TestIngest_ReadErrorKeepsPartial(t *testing.T) {
	boom := errors.New("connection reset")
	r := io.MultiReader(strings.NewReader("partial"), errReader{boom})
	got, err := Ingest(r, "")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if got != "partial" {
		t.Errorf("partial = %q", got)
	}
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

// =============================================================================
// REPLY PARSING TESTS
// =============================================================================

func TestParseReply(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantText  string
		wantConv  string
		wantTitle string
	}{
		{
			name:     "plain text",
			raw:      "Hi there!",
			wantText: "Hi there!",
		},
		{
			name:     "trailing id object",
			raw:      `Hi there!{"id": 42}`,
			wantText: "Hi there!",
			wantConv: "42",
		},
		{
			name:      "chat structure",
			raw:       "Hello.\n{\"chat\":{\"id\":7,\"title\":\"Greetings\"}}\n",
			wantText:  "Hello.",
			wantConv:  "7",
			wantTitle: "Greetings",
		},
		{
			name:      "json only with reply field",
			raw:       `{"chat":{"id":"abc","title":"T"},"reply":"Answer"}`,
			wantText:  "Answer",
			wantConv:  "abc",
			wantTitle: "T",
		},
		{
			name:     "chat_id wins over id",
			raw:      `ok {"id": 99, "chat_id": 5}`,
			wantText: "ok",
			wantConv: "5",
		},
		{
			name:     "broken trailer falls back to pattern",
			raw:      `Sure thing {"id": 12, "title": 'single quoted'}`,
			wantText: "Sure thing",
			wantConv: "12",
		},
		{
			name:     "unterminated trailer is text",
			raw:      `Sure thing {"id": 12, "title": "unterminated`,
			wantText: `Sure thing {"id": 12, "title": "unterminated`,
		},
		{
			name:     "json in the middle of the text",
			raw:      `Send it like {"id": 7, "name": "x"} and the server answers 200.`,
			wantText: `Send it like {"id": 7, "name": "x"} and the server answers 200.`,
		},
		{
			name:     "fenced json block",
			raw:      "Example:\n```json\n{\"id\": 3}\n```",
			wantText: "Example:\n```json\n{\"id\": 3}\n```",
		},
		{
			name:     "id key before a later object",
			raw:      `Try {"id": 4, 'a': 1} then {'b': 2}`,
			wantText: `Try {"id": 4, 'a': 1} then {'b': 2}`,
		},
		{
			name:     "json without metadata is text",
			raw:      "Use this config: {\"debug\": true}",
			wantText: "Use this config: {\"debug\": true}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := ParseReply(tt.raw)
			if r.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", r.Text, tt.wantText)
			}
			if string(r.ConversationID()) != tt.wantConv {
				t.Errorf("ConversationID = %q, want %q", r.ConversationID(), tt.wantConv)
			}
			if r.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", r.Title, tt.wantTitle)
			}
		})
	}
}
