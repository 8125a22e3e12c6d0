// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/showcase-chat/internal/auth"
	"github.com/jeranaias/showcase-chat/internal/model"
	"github.com/jeranaias/showcase-chat/internal/session"
	"github.com/jeranaias/showcase-chat/internal/typing"
	"github.com/jeranaias/showcase-chat/internal/ui/styles"
)

// Strings shown to the user.
const (
	emptyStateText   = "How can I help you today?"
	placeholderText  = "Type your message..."
	processingText   = "Processing..."
	typingText       = "Typing..."
	loginPromptText  = "User not authenticated."
	loginHintText    = "Run `showcase-chat login --token <token>` in another terminal."
	confirmDeleteFmt = "Delete %q? (y/n)"
)

// Options configure a chat screen.
type Options struct {
	// Backend is nil when no credentials are available; the screen then
	// shows a login prompt until AuthChanges delivers a token.
	Backend Backend
	Profile auth.Credentials

	// Token is an explicit token (SHOWCASE_TOKEN) that outranks the
	// credentials file. When set, Backend was built with it.
	Token string

	// Connect builds a Backend after a login observed on AuthChanges.
	Connect     Connector
	AuthChanges <-chan auth.Change

	TypingInterval time.Duration
	RenderMarkdown bool
	SidebarWidth   int

	// Context bounds every request the screen starts.
	Context context.Context
}

type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)

// typingState is an in-progress reveal. Owner and gen capture the
// conversation it was started for.
type typingState struct {
	seq     uint64
	owner   model.ID
	gen     uint64
	msgID   model.ID
	reveal  *typing.Reveal
	shown   string
	created bool
}

// renderedMessage caches the markdown rendering of one message.
type renderedMessage struct {
	content string
	width   int
	out     string
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the chat screen.
type Model struct {
	ctx         context.Context
	backend     Backend
	connect     Connector
	authCh      <-chan auth.Change
	profile     auth.Credentials
	token       string // explicit token, see Options.Token
	activeToken string // token the current backend was built with

	store     *session.Store
	flight    *session.Flight
	typing    *typingState
	cancelMgr *cancelManager

	// pendingUser is the optimistic message of the in-flight submission.
	pendingUser model.ID
	pendingText string

	cursor          int
	focus           focusArea
	pendingDelete   *model.Conversation
	err             string
	loadingList     bool
	loadingMessages bool
	showHelp        bool

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	keys     KeyMap
	theme    *styles.Theme

	interval       time.Duration
	renderMarkdown bool
	sidebarWidth   int
	rendered       map[model.ID]renderedMessage

	width  int
	height int
	ready  bool
}

// New creates a chat screen.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	interval := opts.TypingInterval
	if interval <= 0 {
		interval = typing.DefaultInterval
	}
	sidebar := opts.SidebarWidth
	if sidebar <= 0 {
		sidebar = 28
	}

	ti := textinput.New()
	ti.Placeholder = placeholderText
	ti.Prompt = "> "
	ti.CharLimit = 4000
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(styles.TypingSpinner.Bubbles()))

	m := Model{
		ctx:            ctx,
		backend:        opts.Backend,
		connect:        opts.Connect,
		authCh:         opts.AuthChanges,
		store:          session.NewStore(),
		flight:         &session.Flight{},
		cancelMgr:      newCancelManager(),
		input:          ti,
		viewport:       viewport.New(80, 20),
		spinner:        sp,
		help:           help.New(),
		keys:           DefaultKeyMap(),
		theme:          styles.NewTheme(),
		interval:       interval,
		renderMarkdown: opts.RenderMarkdown,
		sidebarWidth:   sidebar,
		rendered:       make(map[model.ID]renderedMessage),
		token:          strings.TrimSpace(opts.Token),
	}
	if opts.Backend != nil {
		m.profile = opts.Profile.Redacted()
		m.activeToken = m.token
		m.loadingList = true
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, waitForAuthCmd(m.authCh)}
	if m.authenticated() {
		cmds = append(cmds, loadConversationsCmd(m.ctx, m.backend))
	}
	return tea.Batch(cmds...)
}

// =============================================================================
// ACCESSORS
// =============================================================================

func (m Model) authenticated() bool { return m.backend != nil }

// Store returns the session store.
func (m Model) Store() *session.Store { return m.store }

// Phase returns the submission phase.
func (m Model) Phase() session.Phase { return m.flight.Phase() }

// Err returns the error line, if any.
func (m Model) Err() string { return m.err }

// revealed returns the text to display for msg, which differs from its
// content while msg is being typed out.
func (m Model) revealed(msg model.Message) (string, bool) {
	if m.typing != nil && m.typing.msgID == msg.ID && m.store.Owns(m.typing.owner, m.typing.gen) {
		return m.typing.shown, true
	}
	return msg.Content, false
}
