// Package remote provides the HTTP client for the Scratcha backend API.
// Account, application, and API-key mutations all delegate to it; the
// dashboard never persists any of that state itself.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TokenSource supplies the current bearer token, or "" when signed out.
type TokenSource interface {
	Token() string
}

// Client provides HTTP communication with the Scratcha backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
	headers    map[string]string
}

// ClientConfig configures the backend client.
type ClientConfig struct {
	BaseURL string
	Tokens  TokenSource
	Timeout time.Duration
	Headers map[string]string
}

// NewClient creates a new backend HTTP client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		tokens:     cfg.Tokens,
		headers:    cfg.Headers,
	}
}

// Request sends an HTTP request to the backend. A non-2xx response is
// returned as *Error carrying the status code.
func (c *Client) Request(ctx context.Context, method, path string, body, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		return &Error{
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

// Error represents an HTTP error from the backend.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend error %d: %s", e.StatusCode, e.Body)
}

// StatusOf extracts the HTTP status from an error chain, or 0 when the
// error did not come from the backend.
func StatusOf(err error) int {
	var re *Error
	if errors.As(err, &re) {
		return re.StatusCode
	}
	return 0
}

// IsNotFound reports whether the error is a 404.
func IsNotFound(err error) bool { return StatusOf(err) == http.StatusNotFound }

// IsUnauthorized reports whether the error is a 401.
func IsUnauthorized(err error) bool { return StatusOf(err) == http.StatusUnauthorized }

// IsConflict reports whether the error is a 409.
func IsConflict(err error) bool { return StatusOf(err) == http.StatusConflict }

// userMessages maps backend status codes to the message shown in the
// dashboard.
var userMessages = map[int]string{
	http.StatusUnauthorized:        "세션이 만료되었습니다. 다시 로그인해 주세요.",
	http.StatusForbidden:           "이 작업을 수행할 권한이 없습니다.",
	http.StatusNotFound:            "요청한 대상을 찾을 수 없습니다.",
	http.StatusConflict:            "이미 존재하는 항목입니다.",
	http.StatusUnprocessableEntity: "입력 값이 올바르지 않습니다.",
}

// UserMessage translates an error into the user-facing text for it.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if msg, ok := userMessages[StatusOf(err)]; ok {
		return msg
	}
	return "요청을 처리하지 못했습니다. 잠시 후 다시 시도해 주세요."
}
