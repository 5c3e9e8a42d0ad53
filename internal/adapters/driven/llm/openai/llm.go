// Package openai talks to the OpenAI chat completions API and compatible servers.
package openai

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/custodia-labs/ctxwin/internal/adapters/driven/llm"
	"github.com/custodia-labs/ctxwin/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

// Defaults.
const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultLLMModel   = "gpt-4o-mini"
	DefaultLLMTimeout = 120 * time.Second
)

const providerName = "openai"

// ErrMissingAPIKey is returned by NewLLMService without a key.
var ErrMissingAPIKey = errors.New("openai: API key is required")

// LLMConfig configures the OpenAI backend. APIKey is required; BaseURL may
// point at Azure OpenAI or another compatible server.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService generates text with OpenAI chat models.
type LLMService struct {
	client *llm.Client
	model  string
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionBody struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	Stop        []string  `json:"stop,omitempty"`
}

type completionReply struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewLLMService creates an OpenAI backend.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+cfg.APIKey)

	return &LLMService{
		client: llm.NewClient(providerName, cfg.BaseURL, cfg.Timeout, header),
		model:  cfg.Model,
	}, nil
}

// Generate sends the system prompt, when set, followed by one user message.
func (s *LLMService) Generate(
	ctx context.Context, systemPrompt, prompt string, opts driven.GenerateOptions,
) (string, error) {
	messages := llm.WithSystem(systemPrompt, driven.ChatMessage{Role: driven.RoleUser, Content: prompt})
	return s.complete(ctx, messages, opts.MaxTokens, opts.Temperature, opts.StopWords)
}

// Chat sends messages as they are; the API accepts system messages inline.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	return s.complete(ctx, messages, opts.MaxTokens, opts.Temperature, nil)
}

func (s *LLMService) complete(
	ctx context.Context, messages []driven.ChatMessage, maxTokens int, temperature float64, stop []string,
) (string, error) {
	body := completionBody{
		Model:       s.model,
		Messages:    make([]message, 0, len(messages)),
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Stop:        stop,
	}
	for _, m := range messages {
		body.Messages = append(body.Messages, message{Role: m.Role, Content: m.Content})
	}

	var reply completionReply
	if err := s.client.PostJSON(ctx, "/chat/completions", body, &reply); err != nil {
		return "", err
	}
	if reply.Error != nil {
		return "", llm.ProtocolError(providerName, "%s: %s", reply.Error.Type, reply.Error.Message)
	}
	if len(reply.Choices) == 0 || reply.Choices[0].Message.Content == "" {
		return "", llm.ProtocolError(providerName, "no choices returned")
	}
	return reply.Choices[0].Message.Content, nil
}

// ModelName returns the configured model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models, which checks the key without spending tokens.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.client.Probe(ctx, "/models")
}

// Close is a no-op.
func (s *LLMService) Close() error {
	return nil
}
