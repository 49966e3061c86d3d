package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"codedocs/internal/llmclient"
)

func (a *API) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.cfg.Summary())
}

func (a *API) handlePutConfig(w http.ResponseWriter, r *http.Request) {
	var patch map[string]json.RawMessage
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.cfg.Update(patch); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// configTestOverrides is the optional body of POST /api/config/test: any
// field present overrides the live configuration for this one test call.
type configTestOverrides struct {
	APIKey      *string  `json:"api_key,omitempty"`
	BaseURL     *string  `json:"base_url,omitempty"`
	Model       *string  `json:"model,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
}

func (a *API) handleTestConfig(w http.ResponseWriter, r *http.Request) {
	var overrides configTestOverrides
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &overrides); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	cfg := a.cfg.Get()
	if overrides.APIKey != nil {
		cfg.APIKey = *overrides.APIKey
	}
	if overrides.BaseURL != nil {
		cfg.BaseURL = *overrides.BaseURL
	}
	if overrides.Model != nil {
		cfg.Model = *overrides.Model
	}
	if overrides.Temperature != nil {
		cfg.Temperature = *overrides.Temperature
	}
	if overrides.MaxTokens != nil {
		cfg.MaxTokens = *overrides.MaxTokens
	}

	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	var reply string
	err := a.llm.ChatStream(ctx, []llmclient.Message{{Role: llmclient.RoleUser, Content: "ping"}}, llmclient.Options{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   16,
	}, func(chunk llmclient.Chunk) error {
		reply += chunk.Content
		return nil
	})
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "model": cfg.Model})
}
