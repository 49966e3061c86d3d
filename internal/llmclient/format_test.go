package llmclient

import "testing"

func TestDetectFormat(t *testing.T) {
	cases := map[string]Format{
		"gpt-4o":         FormatOpenAI,
		"deepseek-chat":  FormatOpenAI,
		"claude-3-opus":  FormatAnthropic,
		"Claude-3-Sonnet": FormatAnthropic,
	}
	for model, want := range cases {
		if got := DetectFormat(model); got != want {
			t.Fatalf("DetectFormat(%q) = %v, want %v", model, got, want)
		}
	}
}

func TestBuildOpenAIEndpoint(t *testing.T) {
	cases := map[string]string{
		"https://api.openai.com":                    "https://api.openai.com/v1/chat/completions",
		"https://api.openai.com/v1":                 "https://api.openai.com/v1/chat/completions",
		"https://api.openai.com/v1/chat/completions": "https://api.openai.com/v1/chat/completions",
		"https://api.openai.com/":                    "https://api.openai.com/v1/chat/completions",
	}
	for base, want := range cases {
		if got := buildOpenAIEndpoint(base); got != want {
			t.Fatalf("buildOpenAIEndpoint(%q) = %q, want %q", base, got, want)
		}
	}
}

func TestBuildAnthropicEndpoint(t *testing.T) {
	cases := map[string]string{
		"https://api.anthropic.com":    "https://api.anthropic.com/v1/messages",
		"https://api.anthropic.com/v1": "https://api.anthropic.com/v1/messages",
	}
	for base, want := range cases {
		if got := buildAnthropicEndpoint(base); got != want {
			t.Fatalf("buildAnthropicEndpoint(%q) = %q, want %q", base, got, want)
		}
	}
}

func TestFixBaseURL(t *testing.T) {
	if got := fixBaseURL("https://api.openai.com/"); got != "https://api.openai.com" {
		t.Fatalf("fixBaseURL trailing slash: got %q", got)
	}
	if got := fixBaseURL("https://api.openai.com//v1"); got != "https://api.openai.com/v1" {
		t.Fatalf("fixBaseURL double slash: got %q", got)
	}
}
