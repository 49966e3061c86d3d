package chatservice

import (
	"context"
	"encoding/json"

	"codedocs/internal/config"
	"codedocs/internal/llmclient"
)

// dynamicLLMClient resolves a fresh llmclient.StructuredClient from the live
// configuration on every call, so a PUT /api/config update takes effect on
// the next /api/chat/suggest request without restarting the process.
type dynamicLLMClient struct {
	cfgFunc func() config.LLMConfig
}

// NewDynamicLLMClient wraps cfgFunc into a StructuredClient for SuggestService.
func NewDynamicLLMClient(cfgFunc func() config.LLMConfig) llmclient.StructuredClient {
	return &dynamicLLMClient{cfgFunc: cfgFunc}
}

func (d *dynamicLLMClient) Name() string { return "dynamic" }
func (d *dynamicLLMClient) Close() error { return nil }

func (d *dynamicLLMClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	cfg := d.cfgFunc()
	client, err := llmclient.NewStructuredClient(ctx, llmclient.Options{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Model: cfg.Model})
	if err != nil {
		return nil, err
	}
	defer client.Close()
	return client.GenerateJSON(ctx, prompt, input)
}
