// Package chatservice implements the chat-suggest endpoint and the chat
// websocket backing the desktop UI's assistant panel.
package chatservice

import (
	"context"
	"encoding/json"
	"fmt"

	"codedocs/internal/llmclient"
)

// SuggestRequest is the body of POST /api/chat/suggest.
type SuggestRequest struct {
	Context string `json:"context"`
}

// SuggestResponse is its response.
type SuggestResponse struct {
	Questions []string `json:"questions"`
}

// SuggestService generates follow-up questions for a chat context using the
// JSON-mode llmclient.StructuredClient (Gemini, Groq, or the offline
// FakeStructuredClient).
type SuggestService struct {
	client llmclient.StructuredClient
}

// NewSuggestService wraps client for suggestion generation.
func NewSuggestService(client llmclient.StructuredClient) *SuggestService {
	return &SuggestService{client: client}
}

const suggestPrompt = "Given the conversation context, propose 3 short, specific follow-up questions " +
	"the user might want to ask next. Respond with JSON: {\"questions\": [\"...\", \"...\", \"...\"]}."

// Suggest returns candidate follow-up questions for req.Context.
func (s *SuggestService) Suggest(ctx context.Context, req SuggestRequest) (SuggestResponse, error) {
	raw, err := s.client.GenerateJSON(ctx, suggestPrompt, map[string]string{"context": req.Context})
	if err != nil {
		return SuggestResponse{}, fmt.Errorf("chatservice: generate suggestions: %w", err)
	}
	var out SuggestResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return SuggestResponse{}, fmt.Errorf("chatservice: decode suggestions: %w", err)
	}
	return out, nil
}
