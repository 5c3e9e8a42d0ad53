// Package anthropic talks to the Anthropic Messages API.
package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/ctxwin/internal/adapters/driven/llm"
	"github.com/custodia-labs/ctxwin/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

// Defaults.
const (
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-sonnet-4-20250514"
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 1024

	apiVersion   = "2023-06-01"
	providerName = "anthropic"
)

// ErrMissingAPIKey is returned by NewLLMService without a key.
var ErrMissingAPIKey = errors.New("anthropic: API key is required")

// Config configures the Anthropic backend. APIKey is required.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService generates text with Claude models.
type LLMService struct {
	client *llm.Client
	model  string
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesBody struct {
	Model         string    `json:"model"`
	System        string    `json:"system,omitempty"`
	Messages      []message `json:"messages"`
	MaxTokens     int       `json:"max_tokens"`
	Temperature   float64   `json:"temperature,omitempty"`
	StopSequences []string  `json:"stop_sequences,omitempty"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesReply struct {
	Content []contentBlock `json:"content"`
	Error   *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewLLMService creates an Anthropic backend.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	header := http.Header{}
	header.Set("x-api-key", cfg.APIKey)
	header.Set("anthropic-version", apiVersion)

	return &LLMService{
		client: llm.NewClient(providerName, cfg.BaseURL, cfg.Timeout, header),
		model:  cfg.Model,
	}, nil
}

// Generate sends a single user message.
func (s *LLMService) Generate(
	ctx context.Context, systemPrompt, prompt string, opts driven.GenerateOptions,
) (string, error) {
	return s.send(ctx, messagesBody{
		System:        systemPrompt,
		Messages:      []message{{Role: driven.RoleUser, Content: prompt}},
		MaxTokens:     opts.MaxTokens,
		Temperature:   opts.Temperature,
		StopSequences: opts.StopWords,
	})
}

// Chat moves system messages into the top-level system field, which is
// the only place the Messages API accepts them.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	system, turns := llm.SplitSystem(messages)
	body := messagesBody{
		System:      system,
		Messages:    make([]message, 0, len(turns)),
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	for _, m := range turns {
		body.Messages = append(body.Messages, message{Role: m.Role, Content: m.Content})
	}
	return s.send(ctx, body)
}

func (s *LLMService) send(ctx context.Context, body messagesBody) (string, error) {
	body.Model = s.model
	// max_tokens is mandatory for this API
	if body.MaxTokens <= 0 {
		body.MaxTokens = DefaultMaxTokens
	}

	var reply messagesReply
	if err := s.client.PostJSON(ctx, "/v1/messages", body, &reply); err != nil {
		return "", err
	}
	if reply.Error != nil {
		return "", llm.ProtocolError(providerName, "%s: %s", reply.Error.Type, reply.Error.Message)
	}

	var text strings.Builder
	for _, block := range reply.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", llm.ProtocolError(providerName, "no text content returned")
	}
	return text.String(), nil
}

// ModelName returns the configured model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists models, which checks the key without spending tokens.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.client.Probe(ctx, "/v1/models")
}

// Close is a no-op.
func (s *LLMService) Close() error {
	return nil
}
