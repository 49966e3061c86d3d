package chatservice

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"codedocs/internal/config"
	"codedocs/internal/llmclient"
)

const (
	chatWSWriteWait = 10 * time.Second
	chatWSPongWait  = 60 * time.Second
	chatWSPingEvery = (chatWSPongWait * 9) / 10
)

var chatWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(_ *http.Request) bool { return true },
}

// inbound is the message shape accepted from the client: a ping keepalive
// or a chat message to stream a reply for.
type inbound struct {
	Type           string `json:"type"`
	Content        string `json:"content,omitempty"`
	Context        string `json:"context,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
}

// outbound is the tagged message shape streamed back to the client.
type outbound struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
	Error   string `json:"error,omitempty"`
}

// WSHandler drives the /ws/chat websocket, streaming LLM chunks to the
// client as chat_chunk messages followed by chat_done.
type WSHandler struct {
	client  *llmclient.Client
	cfgFunc func() config.LLMConfig
}

// NewWSHandler wraps an llmclient.Client and a live config accessor.
func NewWSHandler(client *llmclient.Client, cfgFunc func() config.LLMConfig) *WSHandler {
	return &WSHandler{client: client, cfgFunc: cfgFunc}
}

// ServeHTTP upgrades the connection and drives the inbound/outbound loop.
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := chatWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(chatWSPongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(chatWSPongWait))
	})

	writeCh := make(chan outbound, 32)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		ticker := time.NewTicker(chatWSPingEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(chatWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-ticker.C:
				if err := conn.SetWriteDeadline(time.Now().Add(chatWSWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	for {
		var in inbound
		if err := conn.ReadJSON(&in); err != nil {
			cancel()
			<-writerDone
			return
		}
		switch in.Type {
		case "ping":
			pushChat(writeCh, outbound{Type: "pong"})
		case "chat_message":
			h.streamReply(ctx, in, writeCh)
		default:
			pushChat(writeCh, outbound{Type: "chat_error", Error: "unsupported message type: " + in.Type})
		}
	}
}

func (h *WSHandler) streamReply(ctx context.Context, in inbound, writeCh chan outbound) {
	cfg := h.cfgFunc()
	messages := []llmclient.Message{}
	if in.Context != "" {
		messages = append(messages, llmclient.Message{Role: llmclient.RoleSystem, Content: in.Context})
	}
	messages = append(messages, llmclient.Message{Role: llmclient.RoleUser, Content: in.Content})

	err := h.client.ChatStream(ctx, messages, llmclient.Options{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}, func(chunk llmclient.Chunk) error {
		if chunk.Content == "" {
			return nil
		}
		pushChat(writeCh, outbound{Type: "chat_chunk", Content: chunk.Content})
		return nil
	})
	if err != nil {
		pushChat(writeCh, outbound{Type: "chat_error", Error: err.Error()})
		return
	}
	pushChat(writeCh, outbound{Type: "chat_done"})
}

// pushChat enqueues out, dropping the oldest queued message rather than
// blocking if the writer goroutine has fallen behind.
func pushChat(writeCh chan outbound, out outbound) {
	select {
	case writeCh <- out:
		return
	default:
	}
	select {
	case <-writeCh:
	default:
	}
	select {
	case writeCh <- out:
	default:
	}
}
