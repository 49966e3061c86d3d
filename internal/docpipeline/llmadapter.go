package docpipeline

import (
	"context"

	"codedocs/internal/config"
	"codedocs/internal/llmclient"
)

// llmAdapter adapts the dual-format llmclient.Client to the single blocking
// Analyze call the Node Processor and Aggregator depend on.
type llmAdapter struct {
	client *llmclient.Client
	cfg    config.LLMConfig
}

func newLLMAdapter(client *llmclient.Client, cfg config.LLMConfig) *llmAdapter {
	return &llmAdapter{client: client, cfg: cfg}
}

func (a *llmAdapter) Analyze(ctx context.Context, prompt string) (string, error) {
	return a.client.ChatCollect(ctx, []llmclient.Message{
		{Role: llmclient.RoleUser, Content: prompt},
	}, llmclient.Options{
		APIKey:      a.cfg.APIKey,
		BaseURL:     a.cfg.BaseURL,
		Model:       a.cfg.Model,
		Temperature: a.cfg.Temperature,
		MaxTokens:   a.cfg.MaxTokens,
	})
}
