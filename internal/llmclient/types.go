// Package llmclient implements the documentation pipeline's LLM Client: a
// single streaming chat operation dispatched over two wire formats
// (OpenAI-compatible chat completions and Anthropic messages) chosen by
// inspecting the configured model name.
package llmclient

import (
	"context"
	"errors"
	"strconv"
)

// Role is a chat message role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of the conversation sent to the LLM.
type Message struct {
	Role    Role
	Content string
}

// Options configures a single chat_stream call, or (via RequestsPerSecond
// and Burst) a StructuredClient's call rate.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int

	// RequestsPerSecond throttles StructuredClient.GenerateJSON calls; <= 0
	// disables throttling.
	RequestsPerSecond float64
	Burst             int
}

// Chunk is one piece of a streamed response.
type Chunk struct {
	Content      string
	FinishReason string
}

// Error kinds per the spec's §7 taxonomy for the LLM Client layer. All are
// terminal for a ChatStream call, which never retries; the Gemini
// StructuredClient's GenerateJSON alone retries, up to three attempts.
var (
	ErrTransport       = errors.New("llmclient: transport error")
	ErrHTTPStatus      = errors.New("llmclient: non-2xx http status")
	ErrMalformedStream = errors.New("llmclient: malformed stream framing")
	ErrAuth            = errors.New("llmclient: authentication failed")
	ErrRateLimit       = errors.New("llmclient: rate limited")
)

// StatusError carries the provider's HTTP status and body alongside one of
// the sentinel errors above, so callers can errors.Is against the sentinel
// while still inspecting details.
type StatusError struct {
	Status   int
	Body     string
	Sentinel error
}

func (e *StatusError) Error() string {
	return e.Sentinel.Error() + ": status=" + strconv.Itoa(e.Status) + " body=" + truncate(e.Body, 500)
}

func (e *StatusError) Unwrap() error { return e.Sentinel }

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// StreamFunc is implemented by each wire-format variant.
type StreamFunc func(ctx context.Context, messages []Message, opts Options, emit func(Chunk) error) error

// Client presents the uniform chat_stream contract over whichever wire
// format the configured model requires.
type Client struct {
	httpClient    httpDoer
	simulateBrowser bool
}
