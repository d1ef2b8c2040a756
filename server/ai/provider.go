// Package ai answers messages no calendar intent matched, using an
// OpenAI-compatible chat completion API.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/Avaneesh16/Travel-Genie/plugin/ai/timeout"
)

// SystemPrompt sets the assistant persona for every conversation.
const SystemPrompt = "You are Genie, a helpful AI assistant focused on travel planning and calendar management. " +
	"Help users plan trips and manage their schedule effectively."

// Chat roles.
const (
	RoleUser      = openai.ChatMessageRoleUser
	RoleAssistant = openai.ChatMessageRoleAssistant
	RoleSystem    = openai.ChatMessageRoleSystem
)

// Config holds the AI provider configuration.
type Config struct {
	BaseURL    string
	APIKey     string
	ChatModel  string
	MaxRetries int
	Timeout    time.Duration
	// RetryBackoff is the first retry delay; it doubles on every attempt.
	RetryBackoff time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:      "https://api.openai.com/v1",
		ChatModel:    "gpt-4o-mini",
		MaxRetries:   3,
		Timeout:      timeout.ChatTimeout,
		RetryBackoff: time.Second,
	}
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider talks to the chat completion API.
type Provider struct {
	client *openai.Client
	config *Config
}

// NewProvider creates a new AI provider.
func NewProvider(cfg *Config) (*Provider, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required, set TRAVELGENIE_OPENAI_API_KEY")
	}

	// Apply defaults for unset values
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = timeout.ChatTimeout
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = time.Second
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gpt-4o-mini"
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Provider{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}, nil
}

// Model returns the chat model in use.
func (p *Provider) Model() string {
	return p.config.ChatModel
}

// Chat answers message given the earlier turns of the conversation. The
// system prompt is always sent first.
func (p *Provider) Chat(ctx context.Context, history []Message, message string) (string, error) {
	llmMessages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	llmMessages = append(llmMessages, openai.ChatCompletionMessage{Role: RoleSystem, Content: SystemPrompt})
	for _, msg := range history {
		llmMessages = append(llmMessages, openai.ChatCompletionMessage{Role: msg.Role, Content: msg.Content})
	}
	llmMessages = append(llmMessages, openai.ChatCompletionMessage{Role: RoleUser, Content: message})

	var result string
	err := p.doWithRetry(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()

		resp, err := p.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model:    p.config.ChatModel,
			Messages: llmMessages,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("empty chat response")
		}
		result = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to complete chat: %w", err)
	}
	return result, nil
}

// doWithRetry executes a function with exponential backoff retry.
func (p *Provider) doWithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < p.config.MaxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt < p.config.MaxRetries-1 {
			waitTime := time.Duration(math.Pow(2, float64(attempt))) * p.config.RetryBackoff
			slog.Debug("AI request failed, retrying",
				"attempt", attempt+1,
				"wait_time", waitTime,
				"error", err)
			select {
			case <-time.After(waitTime):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}
