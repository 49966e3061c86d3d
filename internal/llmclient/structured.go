package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	genai "google.golang.org/genai"
)

// StructuredClient is the JSON-mode counterpart to Client's streaming chat:
// one call in, one parsed JSON value out. The chat-suggest endpoint is the
// only caller — it needs a single structured answer, not a token stream.
type StructuredClient interface {
	Name() string
	GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error)
	Close() error
}

// NewStructuredClient selects a StructuredClient for opts: Gemini for
// "gemini"-named models, a Groq-style OpenAI-compatible JSON client
// otherwise, falling back to an offline FakeStructuredClient when no API key
// is configured so /api/chat/suggest keeps answering without a provider.
func NewStructuredClient(ctx context.Context, opts Options) (StructuredClient, error) {
	if opts.APIKey == "" {
		return NewFakeStructuredClient(0), nil
	}
	if isGeminiModel(opts.Model) {
		return newGeminiStructuredClient(ctx, opts)
	}
	return newGroqStructuredClient(opts), nil
}

// geminiStructuredClient wraps the official genai client for single-shot
// JSON generation, throttled by a per-process request-rate budget.
type geminiStructuredClient struct {
	cli     *genai.Client
	model   string
	limiter *requestThrottle
}

func newGeminiStructuredClient(ctx context.Context, opts Options) (*geminiStructuredClient, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	return &geminiStructuredClient{cli: cli, model: opts.Model, limiter: newRequestThrottle(opts.RequestsPerSecond, opts.Burst)}, nil
}

func (g *geminiStructuredClient) Name() string { return "Gemini:" + g.model }

func (g *geminiStructuredClient) Close() error {
	g.limiter.Stop()
	return nil
}

func (g *geminiStructuredClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	in, _ := json.MarshalIndent(input, "", "  ")
	full := prompt + "\n\n[INPUT JSON]\n" + string(in)
	log.Printf("structured llm request: model=%s bytes=%d", g.model, len(full))

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if err := g.limiter.Acquire(ctx); err != nil {
			return nil, err
		}
		resp, err := g.cli.Models.GenerateContent(ctx, g.model,
			[]*genai.Content{{Parts: []*genai.Part{{Text: full}}}},
			&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
		)
		switch {
		case err != nil:
			lastErr = err
		case len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0:
			lastErr = ErrMalformedStream
		default:
			return json.RawMessage(resp.Candidates[0].Content.Parts[0].Text), nil
		}
		time.Sleep(time.Duration(300*(1<<attempt)) * time.Millisecond)
	}
	return nil, lastErr
}

// groqStructuredClient calls the Groq Chat Completions API (OpenAI-compatible)
// in JSON mode.
type groqStructuredClient struct {
	http    *http.Client
	apiKey  string
	model   string
	baseURL string
}

func newGroqStructuredClient(opts Options) *groqStructuredClient {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1/chat/completions"
	}
	return &groqStructuredClient{
		http:    &http.Client{Timeout: 60 * time.Second},
		apiKey:  opts.APIKey,
		model:   opts.Model,
		baseURL: baseURL,
	}
}

func (g *groqStructuredClient) Name() string { return "Groq:" + g.model }
func (g *groqStructuredClient) Close() error { return nil }

type groqChatReq struct {
	Model          string            `json:"model"`
	Messages       []groqMessage     `json:"messages"`
	Temperature    float32           `json:"temperature,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqChatResp struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (g *groqStructuredClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	in, _ := json.MarshalIndent(input, "", "  ")
	full := prompt + "\n\n[INPUT JSON]\n" + string(in)

	reqBody := groqChatReq{
		Model:          g.model,
		Messages:       []groqMessage{{Role: string(RoleUser), Content: full}},
		ResponseFormat: map[string]string{"type": "json_object"},
	}
	b, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, &StatusError{Sentinel: ErrTransport, Body: err.Error()}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Status: resp.StatusCode, Sentinel: ErrHTTPStatus}
	}

	var out groqChatResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return nil, ErrMalformedStream
	}
	raw := json.RawMessage(out.Choices[0].Message.Content)
	var scratch any
	if err := json.Unmarshal(raw, &scratch); err != nil {
		return nil, ErrMalformedStream
	}
	return raw, nil
}

// FakeStructuredClient answers every call with a deterministic suggestion
// payload, so /api/chat/suggest stays usable with no API key configured.
type FakeStructuredClient struct {
	tokenCap int
}

// NewFakeStructuredClient returns a FakeStructuredClient. cap <= 0 selects a
// default token-capacity figure (unused by GenerateJSON itself, kept for
// callers that report client capacity alongside its name).
func NewFakeStructuredClient(cap int) *FakeStructuredClient {
	if cap <= 0 {
		cap = 4096
	}
	return &FakeStructuredClient{tokenCap: cap}
}

func (f *FakeStructuredClient) Name() string       { return "FakeStructuredClient" }
func (f *FakeStructuredClient) Close() error       { return nil }
func (f *FakeStructuredClient) TokenCapacity() int { return f.tokenCap }

func (f *FakeStructuredClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	b, _ := json.Marshal(map[string]any{
		"questions": []string{
			"What does this change affect?",
			"Are there tests covering this?",
			"What would you like to explore next?",
		},
	})
	return json.RawMessage(b), nil
}

func isGeminiModel(model string) bool {
	return strings.Contains(strings.ToLower(model), "gemini")
}

// requestThrottle is a token-bucket limiter bounding structured-JSON calls to
// at most RequestsPerSecond per second, with Burst slack. Grounded on the
// teacher's rpsLimiter; folded into this package so the suggest endpoint's
// rate limiting lives next to the client that needs it.
type requestThrottle struct {
	tokens chan struct{}
	stopCh chan struct{}
}

func newRequestThrottle(rps float64, burst int) *requestThrottle {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}

	t := &requestThrottle{
		tokens: make(chan struct{}, burst),
		stopCh: make(chan struct{}),
	}
	for i := 0; i < burst; i++ {
		t.tokens <- struct{}{}
	}

	period := time.Duration(float64(time.Second) / rps)
	if period <= 0 {
		period = time.Millisecond
	}
	ticker := time.NewTicker(period)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				select {
				case t.tokens <- struct{}{}:
				default:
				}
			case <-t.stopCh:
				return
			}
		}
	}()
	return t
}

func (t *requestThrottle) Acquire(ctx context.Context) error {
	if t == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.stopCh:
		return context.Canceled
	case <-t.tokens:
		return nil
	}
}

func (t *requestThrottle) Stop() {
	if t == nil {
		return
	}
	close(t.stopCh)
}
