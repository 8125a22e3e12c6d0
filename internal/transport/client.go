// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/showcase-chat/internal/auth"
	"github.com/jeranaias/showcase-chat/internal/model"
)

const (
	// DefaultBaseURL is the production chat API.
	DefaultBaseURL = "http://graduationshowcase.online/api/v1"

	// DefaultTimeout bounds one request, including reading its body.
	DefaultTimeout = 60 * time.Second

	// userAgent identifies the client to the backend.
	userAgent = "showcase-chat/1.0"

	// maxErrorBody is how much of a failed response is kept in HTTPError.
	maxErrorBody = 4 * 1024
)

// sharedHTTPClient pools connections for every Client. It has no timeout of
// its own; each request carries a context deadline so streamed bodies are
// bounded too.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	},
}

// =============================================================================
// CLIENT
// =============================================================================

// Options configures a Client. Zero values select the defaults.
type Options struct {
	BaseURL string
	Timeout time.Duration

	// RequestsPerSecond limits outgoing requests; zero disables the limit.
	RequestsPerSecond float64
	Burst             int

	// HTTPClient overrides the shared pooled client (tests).
	HTTPClient *http.Client
}

// Client issues authenticated requests against the chat backend.
// It is safe for concurrent use.
type Client struct {
	baseURL    string
	creds      auth.Credentials
	httpClient *http.Client
	timeout    time.Duration
	limiter    *rate.Limiter
}

// New builds a client for creds. Missing credentials fail up front with
// *auth.RequiredError instead of on the first request.
func New(creds auth.Credentials, opts Options) (*Client, error) {
	if !creds.Valid() {
		return nil, &auth.RequiredError{}
	}

	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", opts.BaseURL)
	}

	c := &Client{
		baseURL:    base,
		creds:      creds,
		httpClient: opts.HTTPClient,
		timeout:    opts.Timeout,
	}
	if c.httpClient == nil {
		c.httpClient = sharedHTTPClient
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return c, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Profile returns the credentials with the token redacted.
func (c *Client) Profile() auth.Credentials { return c.creds.Redacted() }

// =============================================================================
// ENDPOINTS
// =============================================================================

type listEnvelope struct {
	Data json.RawMessage `json:"data"`
}

type contentRequest struct {
	Content string `json:"content"`
}

// ListConversations fetches every conversation in server order.
func (c *Client) ListConversations(ctx context.Context) ([]model.Conversation, error) {
	var out []model.Conversation
	if err := c.getList(ctx, "/chats", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMessages fetches the history of a conversation in ascending id order.
func (c *Client) GetMessages(ctx context.Context, id model.ID) ([]model.Message, error) {
	var out []model.Message
	if err := c.getList(ctx, "/chats/"+url.PathEscape(id.String())+"/messages", &out); err != nil {
		return nil, err
	}
	return model.SortByID(out), nil
}

// CreateConversation starts a conversation with its first message. The
// returned stream must be read with Reply or closed.
func (c *Client) CreateConversation(ctx context.Context, text string) (*Stream, error) {
	return c.openStream(ctx, "/chats", text, "")
}

// PostMessage sends a follow-up message to conversation id.
func (c *Client) PostMessage(ctx context.Context, id model.ID, text string) (*Stream, error) {
	if id.IsZero() {
		return nil, errors.New("post message: conversation id is required")
	}
	return c.openStream(ctx, "/chats/"+url.PathEscape(id.String())+"/messages", text, id)
}

// DeleteConversation removes conversation id.
func (c *Client) DeleteConversation(ctx context.Context, id model.ID) error {
	resp, _, cancel, err := c.do(ctx, http.MethodDelete, "/chats/"+url.PathEscape(id.String()), nil)
	if err != nil {
		return err
	}
	defer cancel()
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	return nil
}

func (c *Client) getList(ctx context.Context, path string, into any) error {
	resp, reqCtx, cancel, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer cancel()
	defer resp.Body.Close()

	op := "GET " + path
	body, err := Ingest(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return c.classify(reqCtx, op, err)
	}

	var env listEnvelope
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || data[0] != '[' {
		// The backend answers an empty history with null or omits data.
		log.Printf("[transport] %s: no data array in response", op)
		return nil
	}
	if err := json.Unmarshal(data, into); err != nil {
		return fmt.Errorf("%s: failed to decode data: %w", op, err)
	}
	return nil
}

func (c *Client) openStream(ctx context.Context, path, text string, conv model.ID) (*Stream, error) {
	resp, reqCtx, cancel, err := c.do(ctx, http.MethodPost, path, contentRequest{Content: text})
	if err != nil {
		return nil, err
	}
	op := "POST " + path
	if resp.Body == nil || resp.Body == http.NoBody {
		cancel()
		return nil, &StreamUnavailableError{Op: op}
	}
	return &Stream{
		op:          op,
		conv:        conv,
		body:        resp.Body,
		contentType: resp.Header.Get("Content-Type"),
		cancel:      cancel,
		client:      c,
		ctx:         reqCtx,
	}, nil
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// do sends a request bounded by the client timeout. On success the caller
// owns resp.Body, reads it under the returned request context, and must
// call cancel once the body is consumed.
func (c *Client) do(ctx context.Context, method, path string, payload any) (*http.Response, context.Context, context.CancelFunc, error) {
	op := method + " " + path

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, nil, nil, &NetworkError{Op: op, Err: err}
		}
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	req, err := http.NewRequestWithContext(reqCtx, method, c.baseURL+path, body)
	if err != nil {
		cancel()
		return nil, nil, nil, fmt.Errorf("%s: failed to create request: %w", op, err)
	}
	c.setHeaders(req, payload != nil)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		log.Printf("[transport] %s failed after %v", op, time.Since(start).Round(time.Millisecond))
		return nil, nil, nil, c.classify(reqCtx, op, err)
	}
	log.Printf("[transport] %s -> %d (%v)", op, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer cancel()
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, nil, nil, &HTTPError{Op: op, Status: resp.StatusCode, Body: string(data)}
	}
	return resp, reqCtx, cancel, nil
}

// setHeaders never logs: the Authorization header carries the token.
func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	req.Header.Set("Authorization", c.creds.Header())
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("User-Agent", userAgent)
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
}

// classify maps a failure on ctx to the error taxonomy.
func (c *Client) classify(ctx context.Context, op string, err error) error {
	if errors.Is(err, ErrResponseTooLarge) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Op: op, After: c.timeout}
	}
	return &NetworkError{Op: op, Err: err}
}

// =============================================================================
// STREAM
// =============================================================================

// Stream is an open streamed reply.
type Stream struct {
	op          string
	conv        model.ID
	body        io.ReadCloser
	contentType string
	cancel      context.CancelFunc
	client      *Client
	ctx         context.Context
}

// Reply reads the body to completion, closes the stream, and parses the
// result. For a conversation created by this stream a missing id fails
// with ErrNoConversationID.
func (s *Stream) Reply() (*Reply, error) {
	defer s.Close()

	raw, err := Ingest(s.body, s.contentType)
	if err != nil {
		return nil, s.client.classify(s.ctx, s.op, err)
	}

	r := ParseReply(raw)
	if s.conv.IsZero() {
		if r.ConversationID().IsZero() {
			return nil, fmt.Errorf("%s: %w", s.op, ErrNoConversationID)
		}
		r.ChatID = r.ConversationID()
	} else {
		r.ChatID = s.conv
	}
	return &r, nil
}

// Close releases the connection. It is safe to call more than once.
func (s *Stream) Close() error {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.body == nil {
		return nil
	}
	err := s.body.Close()
	s.body = nil
	return err
}
