package llmclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChatStreamOpenAI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		frames := []string{
			`{"choices":[{"delta":{"content":"hello "}}]}`,
			`{"choices":[{"delta":{"content":"world"},"finish_reason":"stop"}]}`,
		}
		for _, f := range frames {
			fmt.Fprintf(w, "data: %s\n\n", f)
			flusher.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
		flusher.Flush()
	}))
	defer srv.Close()

	c := New()
	var got string
	err := c.ChatStream(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, Options{
		APIKey:  "k",
		BaseURL: srv.URL,
		Model:   "gpt-4o-mini",
	}, func(ch Chunk) error {
		got += ch.Content
		return nil
	})
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}
	if got != "hello world" {
		t.Fatalf("got %q", got)
	}
}

func TestChatStreamAnthropic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, `data: {"type":"content_block_delta","delta":{"type":"text_delta","text":"hi"}}`+"\n\n")
		flusher.Flush()
		fmt.Fprint(w, `data: {"type":"message_stop"}`+"\n\n")
		flusher.Flush()
	}))
	defer srv.Close()

	c := New()
	text, err := c.ChatCollect(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, Options{
		APIKey:  "k",
		BaseURL: srv.URL,
		Model:   "claude-3-opus",
	})
	if err != nil {
		t.Fatalf("ChatCollect: %v", err)
	}
	if text != "hi" {
		t.Fatalf("got %q", text)
	}
}

func TestChatStreamRequiresAPIKey(t *testing.T) {
	c := New()
	err := c.ChatStream(context.Background(), nil, Options{Model: "gpt-4o-mini"}, func(Chunk) error { return nil })
	if err != ErrEmptyConfig {
		t.Fatalf("expected ErrEmptyConfig, got %v", err)
	}
}

func TestChatStreamAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"bad key"}`)
	}))
	defer srv.Close()

	c := New()
	err := c.ChatStream(context.Background(), nil, Options{APIKey: "k", BaseURL: srv.URL, Model: "gpt-4o-mini"}, func(Chunk) error { return nil })
	if err == nil {
		t.Fatal("expected error")
	}
	var statusErr *StatusError
	if !asStatusError(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %T: %v", err, err)
	}
	if statusErr.Sentinel != ErrAuth {
		t.Fatalf("expected ErrAuth sentinel, got %v", statusErr.Sentinel)
	}
}

func asStatusError(err error, target **StatusError) bool {
	se, ok := err.(*StatusError)
	if !ok {
		return false
	}
	*target = se
	return true
}
