package llmclient

import (
	"net/http"
	"strings"
)

// Format is the wire format a model name dispatches to.
type Format int

const (
	FormatOpenAI Format = iota
	FormatAnthropic
)

// DetectFormat inspects the model name: names containing "claude" use the
// Anthropic format, everything else uses OpenAI-compatible chat completions.
func DetectFormat(model string) Format {
	if strings.Contains(strings.ToLower(model), "claude") {
		return FormatAnthropic
	}
	return FormatOpenAI
}

// fixBaseURL trims a trailing slash and collapses any doubled slash that
// isn't part of the protocol separator.
func fixBaseURL(base string) string {
	url := strings.TrimRight(base, "/")
	if idx := strings.Index(url, "://"); idx >= 0 {
		protocol, rest := url[:idx+3], url[idx+3:]
		url = protocol + strings.ReplaceAll(rest, "//", "/")
	}
	return url
}

func buildOpenAIEndpoint(base string) string {
	url := fixBaseURL(base)
	switch {
	case strings.HasSuffix(url, "/chat/completions"):
		return url
	case strings.HasSuffix(url, "/v1"):
		return url + "/chat/completions"
	default:
		return url + "/v1/chat/completions"
	}
}

func buildAnthropicEndpoint(base string) string {
	url := fixBaseURL(base)
	switch {
	case strings.HasSuffix(url, "/messages"):
		return url
	case strings.HasSuffix(url, "/v1"):
		return url + "/messages"
	default:
		return url + "/v1/messages"
	}
}

// simulateBrowserHeaders are attached when LLM_SIMULATE_BROWSER=1, for
// providers that filter non-browser traffic. Off by default.
func simulateBrowserHeaders(h http.Header) {
	h.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	h.Set("Accept", "application/json, text/plain, */*")
	h.Set("Accept-Language", "en-US,en;q=0.9")
}
