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

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	Stream      bool               `json:"stream"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float64           `json:"temperature,omitempty"`
}

type anthropicEvent struct {
	Type  string `json:"type"`
	Delta *struct {
		Type       string `json:"type"`
		Text       string `json:"text"`
		StopReason string `json:"stop_reason"`
	} `json:"delta"`
}

func streamAnthropic(ctx context.Context, hc httpDoer, messages []Message, opts Options, simulateBrowser bool, emit func(Chunk) error) error {
	endpoint := buildAnthropicEndpoint(opts.BaseURL)

	var system string
	converted := make([]anthropicMessage, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleSystem {
			system = m.Content
			continue
		}
		converted = append(converted, anthropicMessage{Role: string(m.Role), Content: m.Content})
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	payload := anthropicRequest{
		Model:     opts.Model,
		Messages:  converted,
		System:    system,
		Stream:    true,
		MaxTokens: maxTokens,
	}
	if opts.Temperature != 0 {
		t := opts.Temperature
		payload.Temperature = &t
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+opts.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")
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
		var event anthropicEvent
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			continue
		}
		switch event.Type {
		case "content_block_delta":
			if event.Delta != nil && event.Delta.Type == "text_delta" && event.Delta.Text != "" {
				if err := emit(Chunk{Content: event.Delta.Text}); err != nil {
					return err
				}
			}
		case "message_delta":
			if event.Delta != nil && event.Delta.StopReason != "" {
				if err := emit(Chunk{FinishReason: event.Delta.StopReason}); err != nil {
					return err
				}
			}
		case "message_stop":
			if err := emit(Chunk{FinishReason: "stop"}); err != nil {
				return err
			}
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedStream, err)
	}
	return nil
}
