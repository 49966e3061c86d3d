package httpapi

import (
	"codedocs/internal/chatservice"
	"codedocs/internal/config"
	"codedocs/internal/docpipeline"
	"codedocs/internal/history"
	"codedocs/internal/llmclient"
)

// API holds every dependency the HTTP handlers need: live configuration, the
// LLM client used for chat streaming, the chat-suggest service, the
// documentation pipeline, and the run-history recorder.
type API struct {
	cfg      *config.Store
	llm      *llmclient.Client
	suggest  *chatservice.SuggestService
	chatWS   *chatservice.WSHandler
	pipeline *docpipeline.Service
	history  *history.Store
}

// NewAPI wires the dependencies into an API.
func NewAPI(cfg *config.Store, llm *llmclient.Client, suggest *chatservice.SuggestService, pipeline *docpipeline.Service, hist *history.Store) *API {
	return &API{
		cfg:      cfg,
		llm:      llm,
		suggest:  suggest,
		chatWS:   chatservice.NewWSHandler(llm, cfg.Get),
		pipeline: pipeline,
		history:  hist,
	}
}
