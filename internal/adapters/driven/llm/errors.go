// Package llm holds helpers shared by the generation backend adapters.
package llm

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/ctxwin/internal/core/domain"
)

// maxErrorBody limits how much of an error response is quoted.
const maxErrorBody = 512

// TransportError wraps a failed round trip as domain.ErrBackendUnavailable.
func TransportError(provider string, err error) error {
	return fmt.Errorf("%s: %w: %w", provider, domain.ErrBackendUnavailable, err)
}

// StatusError maps a non-200 response to a domain error.
// Overload, rate limiting, timeouts, and server errors are reported as
// domain.ErrBackendUnavailable; everything else as domain.ErrBackendProtocol.
func StatusError(provider string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(body))

	if resp.StatusCode == http.StatusTooManyRequests {
		return &RateLimitedError{
			Provider:   provider,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    msg,
		}
	}

	kind := domain.ErrBackendProtocol
	switch {
	case resp.StatusCode == http.StatusRequestTimeout,
		resp.StatusCode >= 500:
		kind = domain.ErrBackendUnavailable
	}

	if msg == "" {
		return fmt.Errorf("%s: %w: status %d", provider, kind, resp.StatusCode)
	}
	return fmt.Errorf("%s: %w: status %d: %s", provider, kind, resp.StatusCode, msg)
}

// ProtocolError reports an unusable response body.
func ProtocolError(provider, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", provider, domain.ErrBackendProtocol, fmt.Sprintf(format, args...))
}

// RateLimitedError reports a 429 response. It unwraps to domain.ErrBackendUnavailable.
type RateLimitedError struct {
	Provider   string
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitedError) Error() string {
	msg := fmt.Sprintf("%s: %v: rate limited", e.Provider, domain.ErrBackendUnavailable)
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %s)", e.RetryAfter)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *RateLimitedError) Unwrap() error {
	return domain.ErrBackendUnavailable
}

// parseRetryAfter reads a Retry-After header given in seconds.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
