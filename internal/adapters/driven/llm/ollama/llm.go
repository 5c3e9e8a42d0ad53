// Package ollama talks to a local Ollama server.
package ollama

import (
	"context"
	"time"

	"github.com/custodia-labs/ctxwin/internal/adapters/driven/llm"
	"github.com/custodia-labs/ctxwin/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

// Defaults.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMModel   = "phi3:mini"
	DefaultLLMTimeout = 120 * time.Second
)

const providerName = "ollama"

// LLMConfig configures the Ollama backend. Zero values take the defaults.
type LLMConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService generates text with a model served by Ollama.
// No API key is involved.
type LLMService struct {
	client *llm.Client
	model  string
}

// sampling maps onto Ollama's "options" object.
type sampling struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature float64  `json:"temperature,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type generateBody struct {
	Model   string    `json:"model"`
	System  string    `json:"system,omitempty"`
	Prompt  string    `json:"prompt"`
	Stream  bool      `json:"stream"`
	Options *sampling `json:"options,omitempty"`
}

type generateReply struct {
	Response string `json:"response"`
}

type chatBody struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  *sampling `json:"options,omitempty"`
}

type chatReply struct {
	Message message `json:"message"`
}

// NewLLMService creates an Ollama backend.
func NewLLMService(cfg LLMConfig) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}
	return &LLMService{
		client: llm.NewClient(providerName, cfg.BaseURL, cfg.Timeout, nil),
		model:  cfg.Model,
	}
}

// newSampling returns nil when nothing deviates from the server defaults.
func newSampling(maxTokens int, temperature float64, stop []string) *sampling {
	if maxTokens <= 0 && temperature <= 0 && len(stop) == 0 {
		return nil
	}
	return &sampling{NumPredict: maxTokens, Temperature: temperature, Stop: stop}
}

// Generate uses /api/generate with streaming off.
func (s *LLMService) Generate(
	ctx context.Context, systemPrompt, prompt string, opts driven.GenerateOptions,
) (string, error) {
	body := generateBody{
		Model:   s.model,
		System:  systemPrompt,
		Prompt:  prompt,
		Options: newSampling(opts.MaxTokens, opts.Temperature, opts.StopWords),
	}

	var reply generateReply
	if err := s.client.PostJSON(ctx, "/api/generate", body, &reply); err != nil {
		return "", err
	}
	if reply.Response == "" {
		return "", llm.ProtocolError(providerName, "empty response")
	}
	return reply.Response, nil
}

// Chat uses /api/chat, which accepts system messages inline.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	body := chatBody{
		Model:    s.model,
		Messages: make([]message, 0, len(messages)),
		Options:  newSampling(opts.MaxTokens, opts.Temperature, nil),
	}
	for _, m := range messages {
		body.Messages = append(body.Messages, message{Role: m.Role, Content: m.Content})
	}

	var reply chatReply
	if err := s.client.PostJSON(ctx, "/api/chat", body, &reply); err != nil {
		return "", err
	}
	if reply.Message.Content == "" {
		return "", llm.ProtocolError(providerName, "empty message")
	}
	return reply.Message.Content, nil
}

// ModelName returns the configured model.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping lists local models, which needs no inference.
func (s *LLMService) Ping(ctx context.Context) error {
	return s.client.Probe(ctx, "/api/tags")
}

// Close is a no-op.
func (s *LLMService) Close() error {
	return nil
}
