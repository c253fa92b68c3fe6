package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qurvii/stylesync/internal/session"
)

// envelope is the response wrapper used by every endpoint.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Client talks to the StyleSync API. It attaches the stored bearer
// token to every authenticated request and performs exactly one
// refresh-and-retry when a request is rejected as unauthenticated.
type Client struct {
	baseURL string
	http    *http.Client
	store   *session.Store
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger enables request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates an API client. The session store supplies tokens
// and receives refreshed ones.
func NewClient(baseURL string, timeout time.Duration, store *session.Store, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
		},
		store:  store,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// call performs one request against the API. When authed is set, the
// stored access token is attached and a 401 triggers a single token
// refresh followed by one retry of this request; a second rejection is
// terminal. The envelope message is returned alongside any decoded
// data.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body, out any, authed bool) (string, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return "", fmt.Errorf("failed to encode request: %w", err)
		}
	}

	token := ""
	if authed {
		access, _ := c.store.Tokens()
		if access == "" {
			return "", ErrNoSession
		}
		token = access
	}

	status, env, err := c.do(ctx, method, path, query, payload, token)
	if err != nil {
		return "", err
	}

	if status == http.StatusUnauthorized && authed {
		if err := c.refresh(ctx); err != nil {
			return "", err
		}
		access, _ := c.store.Tokens()
		status, env, err = c.do(ctx, method, path, query, payload, access)
		if err != nil {
			return "", err
		}
		if status == http.StatusUnauthorized {
			// Fresh token rejected too; tear the session down.
			_ = c.store.Clear()
			return "", ErrSessionExpired
		}
	}

	if status < 200 || status > 299 {
		return "", &APIError{Status: status, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return "", fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return env.Message, nil
}

// do issues a single HTTP request and decodes the response envelope.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload []byte, token string) (int, envelope, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return 0, envelope{}, err
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("request",
		zap.String("method", method),
		zap.String("url", endpoint),
		zap.String("request_id", requestID),
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, envelope{}, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("response",
		zap.String("url", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
	)

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, envelope{}, fmt.Errorf("failed to read response: %w", err)
	}
	if len(raw) > 0 {
		// Non-envelope bodies (proxies, crashes) are tolerated; the
		// status code alone decides the outcome then.
		_ = json.Unmarshal(raw, &env)
	}

	return resp.StatusCode, env, nil
}

// refreshData is the token pair returned by the refresh endpoint. The
// refresh token may be absent when the server rotates only the access
// token.
type refreshData struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// refresh exchanges the stored refresh token for a new token pair. Any
// failure is terminal: the stored tokens are cleared and the caller
// must sign in again.
func (c *Client) refresh(ctx context.Context) error {
	_, refreshToken := c.store.Tokens()
	if refreshToken == "" {
		_ = c.store.Clear()
		return ErrSessionExpired
	}

	payload, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return err
	}

	status, env, err := c.do(ctx, http.MethodPost, "/auth/refresh-token", nil, payload, "")
	if err != nil {
		_ = c.store.Clear()
		return fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}
	if status < 200 || status > 299 {
		_ = c.store.Clear()
		return fmt.Errorf("%w: refresh rejected (status %d)", ErrSessionExpired, status)
	}

	var data refreshData
	if err := json.Unmarshal(env.Data, &data); err != nil || data.AccessToken == "" {
		_ = c.store.Clear()
		return fmt.Errorf("%w: malformed refresh response", ErrSessionExpired)
	}

	c.logger.Debug("token refreshed")
	return c.store.SetTokens(data.AccessToken, data.RefreshToken)
}
