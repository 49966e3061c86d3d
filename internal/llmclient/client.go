package llmclient

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"
)

type httpDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// New builds a Client with a connection-pooled HTTP client tuned the way the
// original implementation configures its request client (120s overall
// timeout, 30s wait for response headers). LLM_SIMULATE_BROWSER=1 attaches browser-like
// headers to outbound requests for providers that filter non-browser
// traffic.
func New() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost:   5,
				ResponseHeaderTimeout: 30 * time.Second,
			},
		},
		simulateBrowser: os.Getenv("LLM_SIMULATE_BROWSER") == "1",
	}
}

// ErrEmptyConfig is returned when an API key is missing.
var ErrEmptyConfig = errors.New("llmclient: api key is required")

// ChatStream dispatches to the wire format implied by opts.Model and invokes
// emit once per decoded chunk, in order; a chunk may carry only a
// FinishReason with empty Content. It returns once the stream is
// exhausted or emit/transport returns an error.
func (c *Client) ChatStream(ctx context.Context, messages []Message, opts Options, emit func(Chunk) error) error {
	if strings.TrimSpace(opts.APIKey) == "" {
		return ErrEmptyConfig
	}
	switch DetectFormat(opts.Model) {
	case FormatAnthropic:
		return streamAnthropic(ctx, c.httpClient, messages, opts, c.simulateBrowser, emit)
	default:
		return streamOpenAI(ctx, c.httpClient, messages, opts, c.simulateBrowser, emit)
	}
}

// ChatCollect drives ChatStream and concatenates the text chunks into a
// single response string, as the Node Processor does for a file or
// directory analysis call.
func (c *Client) ChatCollect(ctx context.Context, messages []Message, opts Options) (string, error) {
	var sb strings.Builder
	err := c.ChatStream(ctx, messages, opts, func(ch Chunk) error {
		sb.WriteString(ch.Content)
		return nil
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}
