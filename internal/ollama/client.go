// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the Ollama client.
type ClientError struct {
	Type       ErrorType
	StatusCode int
	Message    string
	Cause      error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches any ClientError of the same type, so the sentinels below work
// with errors.Is regardless of message or cause.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	return ok && t.Type == e.Type
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotRunning
	ErrTypeTimeout
	ErrTypeCanceled
	ErrTypeModelNotFound
	ErrTypeConnection
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrNotRunning      = &ClientError{Type: ErrTypeNotRunning, Message: "Ollama is not running"}
	ErrTimeout         = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrCanceled        = &ClientError{Type: ErrTypeCanceled, Message: "request canceled"}
	ErrModelNotFound   = &ClientError{Type: ErrTypeModelNotFound, Message: "model not found"}
	ErrInvalidResponse = &ClientError{Type: ErrTypeInvalidResponse, Message: "invalid response"}
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// DefaultBaseURL uses an explicit IPv4 address to avoid IPv6 resolution
// issues on Windows.
const DefaultBaseURL = "http://127.0.0.1:11434"

// ClientConfig holds configuration options for the Ollama client.
type ClientConfig struct {
	// BaseURL is the Ollama API base URL (default: http://127.0.0.1:11434)
	BaseURL string

	// Timeout bounds a whole request, including reading the body (default: 30s).
	// Chat calls are usually bounded tighter by their context.
	Timeout time.Duration
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: DefaultBaseURL,
		Timeout: 30 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the Ollama API.
//
// The Client is safe for concurrent use.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClientWithConfig creates a new Ollama client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// BaseURL returns the server address the client talks to.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// CheckRunning verifies that Ollama is reachable and running.
func (c *Client) CheckRunning(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &ClientError{
			Type:       ErrTypeConnection,
			StatusCode: resp.StatusCode,
			Message:    "unexpected status from Ollama: " + resp.Status,
		}
	}
	return nil
}

// =============================================================================
// MODEL OPERATIONS
// =============================================================================

// ListModels retrieves all locally installed models.
func (c *Client) ListModels(ctx context.Context) ([]LocalModel, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/tags", nil)
	if err != nil {
		return nil, err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, "failed to list models")
	}

	var result TagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return result.Models, nil
}

// ModelNames returns the names of the installed models in server order.
func (c *Client) ModelNames(ctx context.Context) ([]string, error) {
	models, err := c.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(models))
	for _, m := range models {
		names = append(names, m.Name)
	}
	return names, nil
}

// =============================================================================
// CHAT OPERATIONS
// =============================================================================

// Chat sends a chat request and returns the complete response. Streaming is
// always disabled.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if req.Model == "" {
		return nil, &ClientError{Type: ErrTypeModelNotFound, Message: "no model selected"}
	}
	req.Stream = false

	body, err := json.Marshal(req)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/chat", body)
	if err != nil {
		return nil, err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, "chat request failed")
	}

	var result ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	if result.Message.Content == "" {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "response contained no message"}
	}
	return &result, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

// do sends a request and maps transport failures onto ClientError types.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(ctx, err)
	}
	return resp, nil
}

func transportError(ctx context.Context, err error) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return &ClientError{Type: ErrTypeTimeout, Message: ErrTimeout.Message, Cause: err}
	case errors.Is(ctx.Err(), context.Canceled), errors.Is(err, context.Canceled):
		return &ClientError{Type: ErrTypeCanceled, Message: ErrCanceled.Message, Cause: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &ClientError{Type: ErrTypeTimeout, Message: ErrTimeout.Message, Cause: err}
	}
	return &ClientError{Type: ErrTypeNotRunning, Message: ErrNotRunning.Message, Cause: err}
}

// statusError builds an error from a non-200 response, preferring the
// server's own error text.
func statusError(resp *http.Response, prefix string) error {
	typ := ErrTypeInvalidResponse
	if resp.StatusCode == http.StatusNotFound {
		typ = ErrTypeModelNotFound
	}

	var ollamaErr errorBody
	if err := json.NewDecoder(resp.Body).Decode(&ollamaErr); err == nil && ollamaErr.Error != "" {
		return &ClientError{Type: typ, StatusCode: resp.StatusCode, Message: ollamaErr.Error}
	}
	return &ClientError{Type: typ, StatusCode: resp.StatusCode, Message: prefix + ": " + resp.Status}
}

// IsModelNotFound checks if an error is a model not found error.
func IsModelNotFound(err error) bool {
	return errors.Is(err, ErrModelNotFound)
}

// IsNotRunning checks if an error indicates Ollama is not running.
func IsNotRunning(err error) bool {
	return errors.Is(err, ErrNotRunning)
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// Helper to drain response body
func drainAndClose(r io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 4096))
	_ = r.Close()
}
