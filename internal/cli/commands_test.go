// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/peterh/liner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/showcase-chat/internal/auth"
	"github.com/jeranaias/showcase-chat/internal/config"
	"github.com/jeranaias/showcase-chat/internal/model"
	"github.com/jeranaias/showcase-chat/internal/storage"
)

// =============================================================================
// FAKE BACKEND
// =============================================================================

type fakeChat struct {
	ID       int             `json:"id"`
	Title    string          `json:"title"`
	Messages []model.Message `json:"-"`
}

// fakeBackend serves the chat API from memory. Replies echo the message.
type fakeBackend struct {
	mu       sync.Mutex
	chats    []*fakeChat
	nextID   int
	fail     int    // status returned for every request when non-zero
	silent   bool   // stream replies carry no text
	lastPost string // content of the last POST
	deleted  []string
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()
	b := &fakeBackend{nextID: 100}
	b.chats = []*fakeChat{
		{ID: 42, Title: "Trip planning", Messages: []model.Message{
			{ID: "2", Sender: model.SenderAssistant, Content: "**Tenerife** is lovely."},
			{ID: "1", Sender: model.SenderUser, Content: "Where should I go?"},
		}},
		{ID: 7, Title: ""},
	}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	return b, srv
}

func (b *fakeBackend) find(id string) *fakeChat {
	for _, c := range b.chats {
		if fmt.Sprint(c.ID) == id {
			return c
		}
	}
	return nil
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer test-token" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if b.fail != 0 {
		w.WriteHeader(b.fail)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.Method == http.MethodGet && len(parts) == 1:
		writeData(w, b.chats)

	case r.Method == http.MethodGet && len(parts) == 3:
		c := b.find(parts[1])
		if c == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeData(w, c.Messages)

	case r.Method == http.MethodPost:
		var body struct {
			Content string `json:"content"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.lastPost = body.Content

		var c *fakeChat
		if len(parts) == 1 {
			b.nextID++
			c = &fakeChat{ID: b.nextID, Title: "New chat"}
			b.chats = append([]*fakeChat{c}, b.chats...)
		} else if c = b.find(parts[1]); c == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		text := "Echo: " + body.Content
		n := len(c.Messages)
		c.Messages = append(c.Messages,
			model.Message{ID: model.ID(fmt.Sprint(1000 + 2*n)), Sender: model.SenderUser, Content: body.Content},
			model.Message{ID: model.ID(fmt.Sprint(1001 + 2*n)), Sender: model.SenderAssistant, Content: text})

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if b.silent {
			text = ""
		}
		if len(parts) == 1 {
			fmt.Fprintf(w, `%s{"id": %d, "title": %q}`, text, c.ID, c.Title)
		} else {
			fmt.Fprintf(w, `%s{"id": %d}`, text, 1001+2*n)
		}

	case r.Method == http.MethodDelete && len(parts) == 2:
		b.deleted = append(b.deleted, parts[1])
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func writeData(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
}

// =============================================================================
// HELPERS
// =============================================================================

type testApp struct {
	*App
	out *bytes.Buffer
	err *bytes.Buffer
}

func newTestApp(t *testing.T, srv *httptest.Server, args Args) *testApp {
	t.Helper()
	t.Setenv("SHOWCASE_HOME", t.TempDir())

	cfg := config.Default()
	cfg.API.Token = "test-token"
	cfg.UI.TypingIntervalMs = 1
	if srv != nil {
		cfg.API.BaseURL = srv.URL
	}

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return &testApp{
		App: &App{
			Config: cfg,
			Args:   args,
			Stdin:  strings.NewReader(""),
			Stdout: out,
			Stderr: errOut,
			Width:  80,
		},
		out: out,
		err: errOut,
	}
}

func decodeEnvelope(t *testing.T, data []byte, into interface{}) JSONResponse {
	t.Helper()
	var env JSONResponse
	raw := struct {
		JSONResponse
		Data json.RawMessage `json:"data"`
	}{}
	require.NoError(t, json.Unmarshal(data, &raw), "output: %s", data)
	env = raw.JSONResponse
	if into != nil {
		require.NoError(t, json.Unmarshal(raw.Data, into))
	}
	return env
}

// fakeLineReader replays scripted input and records what it was shown.
type fakeLineReader struct {
	lines       []string
	history     []string
	suggestions []string
	closed      bool
}

func (f *fakeLineReader) next() (string, error) {
	if len(f.lines) == 0 {
		return "", io.EOF
	}
	line := f.lines[0]
	f.lines = f.lines[1:]
	return line, nil
}

func (f *fakeLineReader) Prompt(string) (string, error)         { return f.next() }
func (f *fakeLineReader) PasswordPrompt(string) (string, error) { return f.next() }
func (f *fakeLineReader) AppendHistory(item string)             { f.history = append(f.history, item) }
func (f *fakeLineReader) Close() error                          { f.closed = true; return nil }

func (f *fakeLineReader) PromptWithSuggestion(_, text string, _ int) (string, error) {
	f.suggestions = append(f.suggestions, text)
	return f.next()
}

func (a *testApp) useLines(lines ...string) *fakeLineReader {
	lr := &fakeLineReader{lines: lines}
	a.NewLineReader = func(string) (LineReader, error) { return lr, nil }
	return lr
}

// =============================================================================
// LIST / SHOW / DELETE
// =============================================================================

func TestHandleList_Table(t *testing.T) {
	_, srv := newFakeBackend(t)
	app := newTestApp(t, srv, Args{})

	require.NoError(t, app.Run(context.Background(), CmdList))

	lines := strings.Split(strings.TrimSpace(app.out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "TITLE")
	assert.Contains(t, lines[1], "42")
	assert.Contains(t, lines[1], "Trip planning")
	assert.Contains(t, lines[2], model.DefaultTitle)
}

func TestHandleList_JSON(t *testing.T) {
	_, srv := newFakeBackend(t)
	app := newTestApp(t, srv, Args{JSON: true})

	require.NoError(t, app.Run(context.Background(), CmdList))

	var convs []model.Conversation
	env := decodeEnvelope(t, app.out.Bytes(), &convs)
	assert.True(t, env.Success)
	require.Len(t, convs, 2)
	assert.Equal(t, model.ID("42"), convs[0].ID)
}

func TestHandleList_Unauthorized(t *testing.T) {
	_, srv := newFakeBackend(t)
	app := newTestApp(t, srv, Args{})
	app.Config.API.Token = "wrong"

	err := app.Run(context.Background(), CmdList)
	require.Error(t, err)
	assert.Equal(t, ExitAuthError, GetExitCode(err))
	assert.True(t, strings.HasPrefix(err.Error(), "Failed to load chat history"), err.Error())
}

func TestHandleList_NoCredentials(t *testing.T) {
	_, srv := newFakeBackend(t)
	app := newTestApp(t, srv, Args{})
	app.Config.API.Token = ""

	err := app.Run(context.Background(), CmdList)
	assert.True(t, errors.Is(err, auth.ErrRequired), "err = %v", err)
	assert.Equal(t, ExitAuthError, GetExitCode(err))
}

func TestHandleShow_PairsTurns(t *testing.T) {
	_, srv := newFakeBackend(t)
	app := newTestApp(t, srv, Args{ChatID: "42"})

	require.NoError(t, app.Run(context.Background(), CmdShow))

	out := app.out.String()
	user := strings.Index(out, "Where should I go?")
	reply := strings.Index(out, "**Tenerife** is lovely.")
	require.True(t, user >= 0 && reply >= 0, "output:\n%s", out)
	assert.Less(t, user, reply, "question should print before its reply")
	assert.Contains(t, out, model.SenderUser.DisplayName())
	assert.Contains(t, out, model.SenderAssistant.DisplayName())
}

func TestHandleShow_MissingChat(t *testing.T) {
	_, srv := newFakeBackend(t)
	app := newTestApp(t, srv, Args{ChatID: "999"})

	err := app.Run(context.Background(), CmdShow)
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))
}

func TestHandleDelete_RequiresConfirmation(t *testing.T) {
	b, srv := newFakeBackend(t)
	app := newTestApp(t, srv, Args{ChatID: "42"})

	err := app.Run(context.Background(), CmdDelete)
	assert.True(t, errors.Is(err, ErrConfirmationRequired), "err = %v", err)
	assert.Empty(t, b.deleted)
}

func TestHandleDelete_InteractiveDecline(t *testing.T) {
	b, srv := newFakeBackend(t)
	app := newTestApp(t, srv, Args{ChatID: "42"})
	app.Interactive = true
	app.Stdin = strings.NewReader("n\n")

	require.NoError(t, app.Run(context.Background(), CmdDelete))
	assert.Empty(t, b.deleted)
	assert.Contains(t, app.err.String(), "Trip planning", "prompt should show the chat title")
	assert.Contains(t, app.err.String(), "Cancelled.")
}

func TestHandleDelete_Yes(t *testing.T) {
	b, srv := newFakeBackend(t)
	app := newTestApp(t, srv, Args{ChatID: "42", Yes: true, JSON: true})

	require.NoError(t, app.Run(context.Background(), CmdDelete))
	assert.Equal(t, []string{"42"}, b.deleted)

	var data map[string]model.ID
	decodeEnvelope(t, app.out.Bytes(), &data)
	assert.Equal(t, model.ID("42"), data["deleted"])
}

// =============================================================================
// ASK
// =============================================================================

func TestHandleAsk_CreatesChat(t *testing.T) {
	b, srv := newFakeBackend(t)
	app := newTestApp(t, srv, Args{Query: "hello there"})

	require.NoError(t, app.Run(context.Background(), CmdAsk))

	assert.Equal(t, "hello there", b.lastPost)
	assert.Equal(t, "Echo: hello there\n", app.out.String())
	assert.Contains(t, app.err.String(), "Started chat 101")
}

func TestHandleAsk_ContinuesChatJSON(t *testing.T) {
	_, srv := newFakeBackend(t)
	app := newTestApp(t, srv, Args{Query: "and then?", ChatID: "42", JSON: true})

	require.NoError(t, app.Run(context.Background(), CmdAsk))

	var res askResult
	decodeEnvelope(t, app.out.Bytes(), &res)
	assert.Equal(t, model.ID("42"), res.ChatID)
	assert.False(t, res.Created)
	assert.Equal(t, "Echo: and then?", res.Reply)
}

func TestHandleAsk_ReadsStdin(t *testing.T) {
	b, srv := newFakeBackend(t)
	app := newTestApp(t, srv, Args{})
	app.Stdin = strings.NewReader("  piped question \n")

	require.NoError(t, app.Run(context.Background(), CmdAsk))
	assert.Equal(t, "piped question", b.lastPost)
}

func TestHandleAsk_EmptyMessage(t *testing.T) {
	_, srv := newFakeBackend(t)
	app := newTestApp(t, srv, Args{})
	app.Stdin = strings.NewReader("   \n")

	err := app.Run(context.Background(), CmdAsk)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestHandleAsk_EmptyReplyFallsBackToHistory(t *testing.T) {
	b, srv := newFakeBackend(t)
	b.silent = true
	app := newTestApp(t, srv, Args{Query: "ping", ChatID: "42"})

	require.NoError(t, app.Run(context.Background(), CmdAsk))
	assert.Equal(t, "Echo: ping\n", app.out.String())
}

func TestHandleAsk_ServerError(t *testing.T) {
	b, srv := newFakeBackend(t)
	b.fail = http.StatusBadGateway
	app := newTestApp(t, srv, Args{Query: "hi"})

	err := app.Run(context.Background(), CmdAsk)
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "Failed to create chat or message"), err.Error())
	assert.Equal(t, ExitNetworkError, GetExitCode(err))
}

func TestPrintReply_TypingEffect(t *testing.T) {
	app := newTestApp(t, nil, Args{})
	app.Pretty = true

	require.NoError(t, app.printReply(context.Background(), "Hi 👋"))
	assert.Contains(t, app.out.String(), "Hi 👋\n")
}

func TestPrintReply_CanceledStopsEarly(t *testing.T) {
	app := newTestApp(t, nil, Args{})
	app.Pretty = true
	app.Config.UI.TypingIntervalMs = 1000

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := app.printReply(ctx, "a long reply that will not finish")
	assert.True(t, errors.Is(err, context.Canceled), "err = %v", err)
	assert.NotContains(t, app.out.String(), "will not finish")
}

// =============================================================================
// REPL
// =============================================================================

func TestHandleRepl_ConversationFlow(t *testing.T) {
	b, srv := newFakeBackend(t)
	app := newTestApp(t, srv, Args{})
	lr := app.useLines("first", "", "second", "/history", "/quit")

	require.NoError(t, app.Run(context.Background(), CmdRepl))

	assert.True(t, lr.closed)
	assert.Equal(t, []string{"first", "second", "/history", "/quit"}, lr.history)
	assert.Equal(t, "second", b.lastPost)

	created := b.find("101")
	require.NotNil(t, created, "first message should create a chat")
	assert.Len(t, created.Messages, 4, "second message should reuse the new chat")
	assert.Contains(t, app.out.String(), "Echo: second")
}

func TestHandleRepl_FailedSendIsOfferedAgain(t *testing.T) {
	b, srv := newFakeBackend(t)
	b.fail = http.StatusInternalServerError
	app := newTestApp(t, srv, Args{ChatID: "42"})
	lr := app.useLines("keep me")

	require.NoError(t, app.Run(context.Background(), CmdRepl))

	assert.Equal(t, []string{"keep me"}, lr.suggestions)
	assert.Contains(t, app.err.String(), "Failed to create chat or message")
}

func TestHandleRepl_Commands(t *testing.T) {
	_, srv := newFakeBackend(t)
	app := newTestApp(t, srv, Args{ChatID: "42"})
	app.useLines("/chats", "/help", "/bogus", "/new", "/history")

	require.NoError(t, app.Run(context.Background(), CmdRepl))

	out := app.out.String()
	assert.Contains(t, out, "* 42  Trip planning")
	assert.Contains(t, out, "  7  "+model.DefaultTitle)
	assert.Contains(t, out, "/new")
	assert.Contains(t, app.err.String(), "unknown command /bogus")
	assert.Contains(t, app.err.String(), "has not started yet")
}

func TestHandleRepl_AbortAtPrompt(t *testing.T) {
	_, srv := newFakeBackend(t)
	app := newTestApp(t, srv, Args{})
	app.NewLineReader = func(string) (LineReader, error) {
		return abortingReader{&fakeLineReader{}}, nil
	}

	assert.NoError(t, app.Run(context.Background(), CmdRepl))
}

type abortingReader struct{ *fakeLineReader }

func (abortingReader) Prompt(string) (string, error) { return "", liner.ErrPromptAborted }

func TestHandleRepl_RejectsJSON(t *testing.T) {
	app := newTestApp(t, nil, Args{JSON: true})
	err := app.Run(context.Background(), CmdRepl)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

// =============================================================================
// EXPORT / TRANSCRIPTS
// =============================================================================

func TestHandleExport_WritesFileAndTranscript(t *testing.T) {
	_, srv := newFakeBackend(t)
	outDir := t.TempDir()
	app := newTestApp(t, srv, Args{ChatID: "42", Format: "md", Out: outDir, JSON: true})

	require.NoError(t, app.Run(context.Background(), CmdExport))

	var res exportResult
	decodeEnvelope(t, app.out.Bytes(), &res)
	assert.Equal(t, 2, res.Messages)
	assert.Equal(t, outDir, filepath.Dir(res.Path))
	assert.True(t, strings.HasPrefix(filepath.Base(res.Path), "chat_Trip_planning_"), res.Path)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Trip planning")
	assert.Less(t, strings.Index(string(data), "Where should I go?"), strings.Index(string(data), "Tenerife"))

	store, err := storage.NewTranscriptStore(app.Config.Storage.TranscriptsDir)
	require.NoError(t, err)
	saved, err := store.Load(res.TranscriptID)
	require.NoError(t, err)
	assert.Equal(t, model.ID("42"), saved.ConversationID)
}

func TestHandleExport_Stdout(t *testing.T) {
	_, srv := newFakeBackend(t)
	app := newTestApp(t, srv, Args{ChatID: "42", Format: "json", Out: "-"})

	require.NoError(t, app.Run(context.Background(), CmdExport))

	var tr storage.Transcript
	require.NoError(t, json.Unmarshal(app.out.Bytes(), &tr))
	assert.Equal(t, "Trip planning", tr.Title)
	assert.Len(t, tr.Messages, 2)
}

func TestHandleExport_Errors(t *testing.T) {
	_, srv := newFakeBackend(t)

	app := newTestApp(t, srv, Args{ChatID: "42", Format: "pdf"})
	assert.Equal(t, ExitUsageError, GetExitCode(app.Run(context.Background(), CmdExport)))

	app = newTestApp(t, srv, Args{ChatID: "7"})
	err := app.Run(context.Background(), CmdExport)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no messages")
}

func TestHandleTranscripts(t *testing.T) {
	app := newTestApp(t, nil, Args{})
	store, err := storage.NewTranscriptStore(app.Config.Storage.TranscriptsDir)
	require.NoError(t, err)

	tr := &storage.Transcript{
		ConversationID: "42",
		Title:          "Trip planning",
		Messages: []model.Message{
			{ID: "1", Sender: model.SenderUser, Content: "Where should I go?"},
			{ID: "2", Sender: model.SenderAssistant, Content: "Tenerife."},
		},
	}
	_, err = store.Save(tr)
	require.NoError(t, err)

	t.Run("list", func(t *testing.T) {
		app.out.Reset()
		app.Args = Args{Subcommand: "list"}
		require.NoError(t, app.Run(context.Background(), CmdTranscripts))
		assert.Contains(t, app.out.String(), tr.ID)
		assert.Contains(t, app.out.String(), "Trip planning")
	})

	t.Run("search miss", func(t *testing.T) {
		app.out.Reset()
		app.Args = Args{Subcommand: "search", Positional: []string{"lanzarote"}, JSON: true}
		require.NoError(t, app.Run(context.Background(), CmdTranscripts))
		var metas []storage.TranscriptMeta
		decodeEnvelope(t, app.out.Bytes(), &metas)
		assert.Empty(t, metas)
	})

	t.Run("show", func(t *testing.T) {
		app.out.Reset()
		app.Args = Args{Subcommand: "show", Positional: []string{tr.ID}}
		require.NoError(t, app.Run(context.Background(), CmdTranscripts))
		assert.Contains(t, app.out.String(), "Tenerife.")
	})

	t.Run("show missing", func(t *testing.T) {
		app.Args = Args{Subcommand: "show", Positional: []string{"nope"}}
		err := app.Run(context.Background(), CmdTranscripts)
		assert.Equal(t, ExitNotFoundError, GetExitCode(err))
	})

	t.Run("bad subcommand", func(t *testing.T) {
		app.Args = Args{Subcommand: "frob"}
		err := app.Run(context.Background(), CmdTranscripts)
		assert.Equal(t, ExitUsageError, GetExitCode(err))
	})

	t.Run("delete", func(t *testing.T) {
		app.Args = Args{Subcommand: "delete", Positional: []string{tr.ID}, Yes: true}
		require.NoError(t, app.Run(context.Background(), CmdTranscripts))
		_, err := store.Load(tr.ID)
		assert.True(t, errors.Is(err, storage.ErrTranscriptNotFound), "err = %v", err)
	})
}

// =============================================================================
// LOGIN / LOGOUT
// =============================================================================

func TestHandleLogin_FlagToken(t *testing.T) {
	app := newTestApp(t, nil, Args{Token: " abc ", Name: "Ada"})

	require.NoError(t, app.Run(context.Background(), CmdLogin))

	creds, err := auth.Load(app.Config.API.TokenFile)
	require.NoError(t, err)
	assert.Equal(t, "abc", creds.Token)
	assert.Equal(t, "Ada", creds.Name)
	assert.Contains(t, app.out.String(), "Logged in as Ada")

	info, err := os.Stat(app.Config.API.TokenFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestHandleLogin_PromptsOnTerminal(t *testing.T) {
	app := newTestApp(t, nil, Args{})
	app.Interactive = true
	app.useLines("secret-token")

	require.NoError(t, app.Run(context.Background(), CmdLogin))

	creds, err := auth.Load(app.Config.API.TokenFile)
	require.NoError(t, err)
	assert.Equal(t, "secret-token", creds.Token)
}

func TestHandleLogin_Stdin(t *testing.T) {
	app := newTestApp(t, nil, Args{})
	app.Stdin = strings.NewReader("piped-token\nignored\n")

	require.NoError(t, app.Run(context.Background(), CmdLogin))

	creds, err := auth.Load(app.Config.API.TokenFile)
	require.NoError(t, err)
	assert.Equal(t, "piped-token", creds.Token)
}

func TestHandleLogin_EmptyToken(t *testing.T) {
	app := newTestApp(t, nil, Args{})
	err := app.Run(context.Background(), CmdLogin)
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestHandleLogout(t *testing.T) {
	app := newTestApp(t, nil, Args{JSON: true})
	require.NoError(t, auth.Save(app.Config.API.TokenFile, auth.Credentials{Token: "abc"}))

	require.NoError(t, app.Run(context.Background(), CmdLogout))
	_, err := os.Stat(app.Config.API.TokenFile)
	assert.True(t, os.IsNotExist(err))

	// Logging out twice is fine.
	app.out.Reset()
	require.NoError(t, app.Run(context.Background(), CmdLogout))
	env := decodeEnvelope(t, app.out.Bytes(), nil)
	assert.True(t, env.Success)
}

// =============================================================================
// CONFIG
// =============================================================================

func TestHandleConfig(t *testing.T) {
	app := newTestApp(t, nil, Args{})
	path := filepath.Join(t.TempDir(), "config.toml")

	t.Run("init", func(t *testing.T) {
		app.Args = Args{Subcommand: "init", ConfigPath: path}
		require.NoError(t, app.Run(context.Background(), CmdConfig))
		_, err := os.Stat(path)
		require.NoError(t, err)
	})

	t.Run("init refuses overwrite", func(t *testing.T) {
		app.Args = Args{Subcommand: "init", ConfigPath: path}
		assert.Error(t, app.Run(context.Background(), CmdConfig))

		app.Args.Force = true
		assert.NoError(t, app.Run(context.Background(), CmdConfig))
	})

	t.Run("set", func(t *testing.T) {
		app.Args = Args{Subcommand: "set", ConfigPath: path, Positional: []string{"ui.word_wrap", "100"}}
		require.NoError(t, app.Run(context.Background(), CmdConfig))

		cfg, err := config.LoadFromPath(path)
		require.NoError(t, err)
		assert.Equal(t, 100, cfg.UI.WordWrap)
	})

	t.Run("set invalid value", func(t *testing.T) {
		app.Args = Args{Subcommand: "set", ConfigPath: path, Positional: []string{"ui.word_wrap", "3"}}
		err := app.Run(context.Background(), CmdConfig)
		assert.Equal(t, ExitConfigError, GetExitCode(err))
	})

	t.Run("set unknown key", func(t *testing.T) {
		app.Args = Args{Subcommand: "set", ConfigPath: path, Positional: []string{"ui.nope", "1"}}
		err := app.Run(context.Background(), CmdConfig)
		assert.Equal(t, ExitUsageError, GetExitCode(err))
	})

	t.Run("get", func(t *testing.T) {
		app.out.Reset()
		app.Args = Args{Subcommand: "get", Positional: []string{"ui.typing_interval_ms"}}
		require.NoError(t, app.Run(context.Background(), CmdConfig))
		assert.Equal(t, "1\n", app.out.String())
	})

	t.Run("show", func(t *testing.T) {
		app.out.Reset()
		app.Args = Args{}
		require.NoError(t, app.Run(context.Background(), CmdConfig))
		assert.Contains(t, app.out.String(), "api.base_url")
		assert.NotContains(t, app.out.String(), "test-token")
	})

	t.Run("path", func(t *testing.T) {
		app.out.Reset()
		app.Args = Args{Subcommand: "path", ConfigPath: path}
		require.NoError(t, app.Run(context.Background(), CmdConfig))
		assert.Equal(t, path+"\n", app.out.String())
	})
}

// =============================================================================
// VERSION / HELP
// =============================================================================

func TestHandleVersion_JSON(t *testing.T) {
	app := newTestApp(t, nil, Args{JSON: true})
	require.NoError(t, app.Run(context.Background(), CmdVersion))

	var v VersionData
	decodeEnvelope(t, app.out.Bytes(), &v)
	assert.Equal(t, Version, v.Version)
	assert.NotEmpty(t, v.GoVersion)
}

func TestRun_Help(t *testing.T) {
	app := newTestApp(t, nil, Args{})
	require.NoError(t, app.Run(context.Background(), CmdHelp))
	assert.Contains(t, app.out.String(), "showcase-chat")
}
