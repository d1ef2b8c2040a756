package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewProvider(&Config{
		BaseURL:      server.URL + "/v1",
		APIKey:       "sk-test",
		ChatModel:    "test-model",
		MaxRetries:   3,
		Timeout:      5 * time.Second,
		RetryBackoff: time.Millisecond,
	})
	require.NoError(t, err)
	return p
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]string{"role": "assistant", "content": content},
		}},
	})
}

func TestNewProvider_RequiresKey(t *testing.T) {
	_, err := NewProvider(&Config{})
	assert.Error(t, err)
}

func TestProvider_Chat(t *testing.T) {
	var got chatRequest
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeCompletion(w, "Happy to help!")
	})

	reply, err := p.Chat(context.Background(), []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	}, "what can you do?")
	require.NoError(t, err)
	assert.Equal(t, "Happy to help!", reply)

	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, Message{Role: RoleSystem, Content: SystemPrompt}, got.Messages[0])
	assert.Equal(t, Message{Role: RoleUser, Content: "what can you do?"}, got.Messages[3])
}

func TestProvider_ChatRetries(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
			return
		}
		writeCompletion(w, "finally")
	})

	reply, err := p.Chat(context.Background(), nil, "hello")
	require.NoError(t, err)
	assert.Equal(t, "finally", reply)
	assert.Equal(t, int32(3), calls.Load())
}

func TestProvider_ChatGivesUp(t *testing.T) {
	var calls atomic.Int32
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, `{"error":{"message":"nope"}}`, http.StatusInternalServerError)
	})

	_, err := p.Chat(context.Background(), nil, "hello")
	assert.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestProvider_EmptyChoices(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","choices":[]}`))
	})

	_, err := p.Chat(context.Background(), nil, "hello")
	assert.ErrorContains(t, err, "empty chat response")
}
