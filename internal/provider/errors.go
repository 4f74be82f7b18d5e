// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"github.com/jeranaias/parrot-tui/internal/model"
	"github.com/jeranaias/parrot-tui/internal/ollama"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// Kind categorizes completion failures.
type Kind int

const (
	KindProvider Kind = iota // the backend rejected or failed the request
	KindTimeout
	KindCanceled
	KindNetwork
	KindAuth
	KindRateLimit
	KindMalformed
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindRateLimit:
		return "rate_limit"
	case KindMalformed:
		return "malformed"
	case KindConfig:
		return "config"
	default:
		return "provider"
	}
}

// CompletionError is returned by every Completer on failure.
type CompletionError struct {
	Kind     Kind
	Provider model.Provider
	Message  string
	Cause    error
}

func (e *CompletionError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *CompletionError) Unwrap() error {
	return e.Cause
}

// IsKind reports whether err is a CompletionError of kind k.
func IsKind(err error, k Kind) bool {
	var ce *CompletionError
	return errors.As(err, &ce) && ce.Kind == k
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

// classify maps a backend error onto a CompletionError.
func classify(p model.Provider, err error) error {
	if err == nil {
		return nil
	}
	var ce *CompletionError
	if errors.As(err, &ce) {
		return ce
	}

	wrap := func(k Kind, msg string) error {
		return &CompletionError{Kind: k, Provider: p, Message: msg, Cause: err}
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return wrap(KindTimeout, "request timed out")
	case errors.Is(err, context.Canceled):
		return wrap(KindCanceled, "request canceled")
	}

	var oe *ollama.ClientError
	if errors.As(err, &oe) {
		switch {
		case ollama.IsTimeout(err):
			return wrap(KindTimeout, "request timed out")
		case ollama.IsNotRunning(err):
			return wrap(KindNetwork, "Ollama is not running")
		case ollama.IsModelNotFound(err):
			return wrap(KindProvider, "model not found")
		case oe.Type == ollama.ErrTypeCanceled:
			return wrap(KindCanceled, "request canceled")
		case oe.Type == ollama.ErrTypeConnection:
			return wrap(KindNetwork, "cannot reach Ollama")
		default:
			return wrap(KindMalformed, "unexpected response from Ollama")
		}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return wrap(kindForStatus(apiErr.HTTPStatusCode), "request rejected")
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return wrap(kindForStatus(reqErr.HTTPStatusCode), "request failed")
	}
	var gErr genai.APIError
	if errors.As(err, &gErr) {
		return wrap(kindForStatus(gErr.Code), "request rejected")
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return wrap(KindTimeout, "request timed out")
		}
		return wrap(KindNetwork, "network error")
	}

	if status := statusFromText(err.Error()); status != 0 {
		return wrap(kindForStatus(status), "request rejected")
	}
	return wrap(KindProvider, "request failed")
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusTooManyRequests:
		return KindRateLimit
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return KindTimeout
	default:
		return KindProvider
	}
}

// statusFromText finds an HTTP status in an error message. Some client
// libraries only report the status as text.
func statusFromText(msg string) int {
	for _, status := range []int{
		http.StatusUnauthorized,
		http.StatusForbidden,
		http.StatusTooManyRequests,
		http.StatusRequestTimeout,
		http.StatusGatewayTimeout,
	} {
		code := strconv.Itoa(status)
		if strings.Contains(msg, "status code: "+code) ||
			strings.Contains(msg, "status: "+code) ||
			strings.Contains(msg, "HTTP "+code) {
			return status
		}
	}
	return 0
}
