// Package api implements the HTTP client for the Sabiá backend.
// It owns the cross-cutting transport rules: bearer-token injection on
// every request, the global 401 side effect, and error normalization.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client talks to the Sabiá backend.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	tokenSource    func() string
	onUnauthorized func()
}

// Option configures a Client.
type Option func(*Client)

// WithTokenSource sets the credential provider. When the returned token
// is non-empty it is sent as "Authorization: Bearer <token>" on every
// request.
func WithTokenSource(fn func() string) Option {
	return func(c *Client) { c.tokenSource = fn }
}

// WithUnauthorizedHook sets a callback invoked whenever any request is
// rejected with 401. The hook runs once per rejected request, before
// the error is returned to the caller.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) { c.onUnauthorized = fn }
}

// NewClient creates a client for the given base URL. The timeout is a
// fixed wall-clock budget per call.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs one request/response round trip. A nil body sends no
// payload; a nil out discards the response body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.tokenSource != nil {
		if token := c.tokenSource(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return normalizeTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(resp.Body)
		return normalizeError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Login exchanges email/password for a token and user.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/login", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates an account and returns the same shape as Login.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/register", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AskQuestion sends a question to the bot.
func (c *Client) AskQuestion(ctx context.Context, req QuestionRequest) (*QuestionResponse, error) {
	var out QuestionResponse
	if err := c.do(ctx, http.MethodPost, "/api/bot/question", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// History fetches one page of conversation summaries for a user.
func (c *Client) History(ctx context.Context, userID, limit, offset int) (*HistoryResponse, error) {
	q := url.Values{}
	q.Set("user_id", strconv.Itoa(userID))
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var out HistoryResponse
	if err := c.do(ctx, http.MethodGet, "/bot/history", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search runs a keyword search over a user's conversations. The result
// set is server-capped at limit and never paginated.
func (c *Client) Search(ctx context.Context, userID int, query string, limit int) (*SearchResponse, error) {
	q := url.Values{}
	q.Set("user_id", strconv.Itoa(userID))
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))

	var out SearchResponse
	if err := c.do(ctx, http.MethodGet, "/bot/search", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Conversation fetches the full record for one conversation.
func (c *Client) Conversation(ctx context.Context, id int) (*Conversation, error) {
	var out ConversationDetailResponse
	path := fmt.Sprintf("/bot/conversation/%d", id)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out.Conversation, nil
}

// DeleteConversation deletes one conversation. The backend validates
// that the conversation belongs to userID.
func (c *Client) DeleteConversation(ctx context.Context, id, userID int) error {
	path := fmt.Sprintf("/bot/conversation/%d", id)
	body := map[string]int{"user_id": userID}
	return c.do(ctx, http.MethodDelete, path, nil, body, nil)
}

// ClearHistory deletes every conversation a user owns and returns the
// count the server reports deleted.
func (c *Client) ClearHistory(ctx context.Context, userID int) (int, error) {
	body := map[string]int{"user_id": userID}
	var out ClearResponse
	if err := c.do(ctx, http.MethodDelete, "/bot/history/clear", nil, body, &out); err != nil {
		return 0, err
	}
	return out.DeletedCount, nil
}

// Statistics fetches the usage dashboard aggregate for a user.
func (c *Client) Statistics(ctx context.Context, userID int) (*UserStatistics, error) {
	q := url.Values{}
	q.Set("user_id", strconv.Itoa(userID))

	var out StatisticsResponse
	if err := c.do(ctx, http.MethodGet, "/api/bot/stats", q, nil, &out); err != nil {
		return nil, err
	}
	return &out.Statistics, nil
}
