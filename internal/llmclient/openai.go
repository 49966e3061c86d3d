package llmclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponseFormat struct {
	Type string `json:"type"`
}

type openAIRequest struct {
	Model          string                 `json:"model"`
	Messages       []openAIMessage        `json:"messages"`
	Stream         bool                   `json:"stream"`
	Temperature    *float64               `json:"temperature,omitempty"`
	MaxTokens      *int                   `json:"max_tokens,omitempty"`
	ResponseFormat *openAIResponseFormat  `json:"response_format,omitempty"`
}

type openAIStreamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

func streamOpenAI(ctx context.Context, hc httpDoer, messages []Message, opts Options, simulateBrowser bool, emit func(Chunk) error) error {
	endpoint := buildOpenAIEndpoint(opts.BaseURL)

	payload := openAIRequest{
		Model:    opts.Model,
		Messages: make([]openAIMessage, 0, len(messages)),
		Stream:   true,
	}
	for _, m := range messages {
		payload.Messages = append(payload.Messages, openAIMessage{Role: string(m.Role), Content: m.Content})
	}
	if opts.Temperature != 0 {
		t := opts.Temperature
		payload.Temperature = &t
	}
	if opts.MaxTokens > 0 {
		mt := opts.MaxTokens
		payload.MaxTokens = &mt
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Authorization", "Bearer "+opts.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if simulateBrowser {
		simulateBrowserHeaders(req.Header)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		b, _ := io.ReadAll(resp.Body)
		return &StatusError{Status: resp.StatusCode, Body: string(b), Sentinel: ErrAuth}
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		b, _ := io.ReadAll(resp.Body)
		return &StatusError{Status: resp.StatusCode, Body: string(b), Sentinel: ErrRateLimit}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &StatusError{Status: resp.StatusCode, Body: string(b), Sentinel: ErrHTTPStatus}
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		if data == "[DONE]" {
			return nil
		}
		var chunk openAIStreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Malformed individual frame; keep streaming rather than abort.
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		choice := chunk.Choices[0]
		out := Chunk{Content: choice.Delta.Content}
		if choice.FinishReason != nil {
			out.FinishReason = *choice.FinishReason
		}
		if err := emit(out); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedStream, err)
	}
	return nil
}
