// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/jeranaias/parrot-tui/internal/config"
	"github.com/jeranaias/parrot-tui/internal/model"
	"github.com/jeranaias/parrot-tui/internal/ollama"
)

// testConversation has a system note between the exchange messages; it must
// never reach a backend.
func testConversation() *model.Conversation {
	conv := model.NewConversation("be terse")
	conv.Append(model.NewUserMessage("first question"))
	conv.Append(model.NewSystemMessage("Failed to get a response from the assistant: timeout"))
	conv.Append(model.NewUserMessage("second question"))
	return conv
}

func TestUsage_String(t *testing.T) {
	u := Usage{Prompt: 12, Completion: 30}.normalize()
	assert.Equal(t, "Tokens: 42 [12 prompt, 30 completion]", u.String())

	u = Usage{Prompt: 1, Completion: 1, Total: 5}.normalize()
	assert.Equal(t, 5, u.Total, "reported total is kept")
}

// =============================================================================
// OPENAI
// =============================================================================

func TestOpenAI_Complete(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-2024-08-06",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "short answer"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 20, "completion_tokens": 2, "total_tokens": 22}
		}`))
	}))
	defer srv.Close()

	cfg := config.Default().OpenAI
	cfg.Key = "sk-test"
	cfg.BaseURL = srv.URL + "/v1"
	c, err := NewOpenAI(cfg)
	require.NoError(t, err)

	completion, err := c.Complete(context.Background(), testConversation())
	require.NoError(t, err)

	require.Len(t, got.Messages, 3)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, "be terse", got.Messages[0].Content)
	assert.Equal(t, "first question", got.Messages[1].Content)
	assert.Equal(t, "second question", got.Messages[2].Content)
	assert.Equal(t, "gpt-4o", got.Model)
	assert.Equal(t, cfg.MaxTokens.Value, got.MaxTokens)

	assert.Equal(t, model.RoleAssistant, completion.Message.Role)
	assert.Equal(t, model.ProviderOpenAI, completion.Message.Provider)
	assert.Equal(t, "short answer", completion.Message.Content)
	assert.Equal(t, Usage{Prompt: 20, Completion: 2, Total: 22}, completion.Usage)
	assert.Equal(t, "gpt-4o-2024-08-06", completion.Model)
}

func TestOpenAI_StatusKinds(t *testing.T) {
	tests := []struct {
		status int
		want   Kind
	}{
		{http.StatusUnauthorized, KindAuth},
		{http.StatusTooManyRequests, KindRateLimit},
		{http.StatusInternalServerError, KindProvider},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error": {"message": "nope", "type": "invalid_request_error"}}`))
			}))
			defer srv.Close()

			cfg := config.Default().OpenAI
			cfg.Key = "sk-test"
			cfg.BaseURL = srv.URL + "/v1"
			c, err := NewOpenAI(cfg)
			require.NoError(t, err)

			_, err = c.Complete(context.Background(), testConversation())
			var ce *CompletionError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.want, ce.Kind, "error: %v", err)
			assert.Equal(t, model.ProviderOpenAI, ce.Provider)
		})
	}
}

func TestOpenAI_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "x", "choices": []}`))
	}))
	defer srv.Close()

	cfg := config.Default().OpenAI
	cfg.BaseURL = srv.URL
	c, err := NewOpenAI(cfg)
	require.NoError(t, err, "a custom base_url does not need a key")

	_, err = c.Complete(context.Background(), testConversation())
	assert.True(t, IsKind(err, KindMalformed), "error: %v", err)
}

// =============================================================================
// GEMINI
// =============================================================================

func TestGemini_Complete(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "gemini-2.0-flash:generateContent")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "gemini says hi"}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 7, "candidatesTokenCount": 3, "totalTokenCount": 10}
		}`))
	}))
	defer srv.Close()

	cfg := config.Default().Gemini
	cfg.Key = "g-test"
	c, err := newGemini(context.Background(), cfg, srv.URL+"/")
	require.NoError(t, err)

	completion, err := c.Complete(context.Background(), testConversation())
	require.NoError(t, err)

	contents, ok := body["contents"].([]any)
	require.True(t, ok, "request body: %v", body)
	assert.Len(t, contents, 2)
	assert.Contains(t, body, "systemInstruction")

	assert.Equal(t, "gemini says hi", completion.Message.Content)
	assert.Equal(t, Usage{Prompt: 7, Completion: 3, Total: 10}, completion.Usage)
}

// =============================================================================
// OLLAMA
// =============================================================================

func TestOllama_Complete(t *testing.T) {
	var got ollama.ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"model":"llama3.2","done":true,"message":{"role":"assistant","content":"local reply"},"prompt_eval_count":9,"eval_count":4}`))
	}))
	defer srv.Close()

	cfg := config.Default().Ollama
	cfg.URL = srv.URL
	completion, err := NewOllama(cfg, time.Second).Complete(context.Background(), testConversation())
	require.NoError(t, err)

	require.Len(t, got.Messages, 3)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.False(t, got.Stream)
	assert.Equal(t, cfg.MaxTokens.Value, got.Options.NumPredict)

	assert.Equal(t, "local reply", completion.Message.Content)
	assert.Equal(t, model.ProviderOllama, completion.Provider)
	assert.Equal(t, Usage{Prompt: 9, Completion: 4, Total: 13}, completion.Usage)
}

func TestOllama_NotRunning(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := config.Default().Ollama
	cfg.URL = url
	_, err := NewOllama(cfg, time.Second).Complete(context.Background(), testConversation())
	assert.True(t, IsKind(err, KindNetwork), "error: %v", err)
}

func TestOllama_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := config.Default().Ollama
	cfg.URL = srv.URL
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewOllama(cfg, time.Minute).Complete(ctx, testConversation())
	assert.True(t, IsKind(err, KindTimeout), "error: %v", err)
}

// =============================================================================
// FACTORY AND CLASSIFICATION
// =============================================================================

func TestNew_MissingKey(t *testing.T) {
	for _, p := range []model.Provider{model.ProviderOpenAI, model.ProviderAnthropic, model.ProviderGemini} {
		cfg := config.Default()
		cfg.Provider = p
		_, err := New(context.Background(), cfg)
		assert.True(t, IsKind(err, KindConfig), "%s: error = %v", p, err)
	}
}

func TestNew_SelectsProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Anthropic.Key = "a"
	cfg.Provider = model.ProviderAnthropic

	c, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, model.ProviderAnthropic, c.Provider())
	assert.Equal(t, cfg.Anthropic.Model, c.Model())

	cfg.Provider = model.ProviderOllama
	c, err = New(context.Background(), cfg)
	require.NoError(t, err, "ollama needs no key")
	assert.Equal(t, model.ProviderOllama, c.Provider())
}

func TestModels_FromConfigAndServer(t *testing.T) {
	cfg := config.Default()
	got, err := Models(context.Background(), cfg, model.ProviderOpenAI)
	require.NoError(t, err)
	assert.Equal(t, cfg.OpenAI.Models, got)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"models":[{"name":"mistral:latest"}]}`))
	}))
	defer srv.Close()
	cfg.Ollama.URL = srv.URL

	got, err = Models(context.Background(), cfg, model.ProviderOllama)
	require.NoError(t, err)
	assert.Equal(t, []string{"mistral:latest"}, got)
}

func TestModels_OllamaNotRunning(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	cfg := config.Default()
	cfg.Ollama.URL = url
	_, err := Models(context.Background(), cfg, model.ProviderOllama)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNetwork), "error: %v", err)

	var ce *CompletionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Ollama is not running", ce.Message)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), KindTimeout},
		{"canceled", context.Canceled, KindCanceled},
		{"openai auth", &openai.APIError{HTTPStatusCode: 401, Message: "bad key"}, KindAuth},
		{"openai request", &openai.RequestError{HTTPStatusCode: 429, Err: errors.New("slow down")}, KindRateLimit},
		{"genai", genai.APIError{Code: 403, Message: "denied"}, KindAuth},
		{"ollama timeout", &ollama.ClientError{Type: ollama.ErrTypeTimeout, Message: "t"}, KindTimeout},
		{"ollama down", ollama.ErrNotRunning, KindNetwork},
		{"ollama garbage", &ollama.ClientError{Type: ollama.ErrTypeInvalidResponse, Message: "x"}, KindMalformed},
		{"text status", errors.New("error, status code: 429, message: too many"), KindRateLimit},
		{"other", errors.New("boom"), KindProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(model.ProviderGemini, tt.err)
			var ce *CompletionError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.want, ce.Kind, "kind %s", ce.Kind)
			assert.Equal(t, model.ProviderGemini, ce.Provider)
			assert.NotNil(t, ce.Cause)
		})
	}

	assert.NoError(t, classify(model.ProviderGemini, nil))
}
