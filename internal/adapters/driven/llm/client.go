package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/ctxwin/internal/core/ports/driven"
)

// Client does the JSON round trips every backend adapter needs and maps
// failures onto the backend error taxonomy.
type Client struct {
	http     *http.Client
	baseURL  string
	provider string
	header   http.Header
}

// NewClient creates a client for provider rooted at baseURL.
// header is sent with every request, for API keys and version pins.
func NewClient(provider, baseURL string, timeout time.Duration, header http.Header) *Client {
	if header == nil {
		header = http.Header{}
	}
	return &Client{
		http:     &http.Client{Timeout: timeout},
		baseURL:  strings.TrimRight(baseURL, "/"),
		provider: provider,
		header:   header,
	}
}

// BaseURL returns the root every path is resolved against.
func (c *Client) BaseURL() string { return c.baseURL }

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration { return c.http.Timeout }

// PostJSON sends body to path and decodes a 200 response into out.
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", c.provider, err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return TransportError(c.provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return StatusError(c.provider, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return ProtocolError(c.provider, "decode response: %v", err)
	}
	return nil
}

// Probe issues a GET to path and succeeds on a 200. Backends use it for Ping.
func (c *Client) Probe(ctx context.Context, path string) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return TransportError(c.provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return StatusError(c.provider, resp)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", c.provider, err)
	}
	for k, v := range c.header {
		req.Header[k] = v
	}
	return req, nil
}

// SplitSystem separates system messages from the conversation, joining them
// with blank lines, for APIs that take the system prompt out of band.
func SplitSystem(messages []driven.ChatMessage) (string, []driven.ChatMessage) {
	var system []string
	rest := make([]driven.ChatMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role == driven.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		rest = append(rest, m)
	}
	return strings.Join(system, "\n\n"), rest
}

// WithSystem prepends systemPrompt as a system message when it is set.
func WithSystem(systemPrompt string, messages ...driven.ChatMessage) []driven.ChatMessage {
	if systemPrompt == "" {
		return messages
	}
	return append([]driven.ChatMessage{{Role: driven.RoleSystem, Content: systemPrompt}}, messages...)
}
