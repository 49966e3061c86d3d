package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"codedocs/internal/docmodel"
)

const (
	docsWSWriteWait = 10 * time.Second
	docsWSPongWait  = 60 * time.Second
	docsWSPingEvery = (docsWSPongWait * 9) / 10
)

var docsWSUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(_ *http.Request) bool { return true },
}

// serveDocsWS streams the Progress Bus for one task id to the client,
// replaying cached state on connect per the Progress Bus contract (§4.5).
func (a *API) serveDocsWS(w http.ResponseWriter, r *http.Request, taskID string) {
	bus, err := a.pipeline.Registry.Bus(taskID)
	if err != nil {
		http.Error(w, "task not found", http.StatusNotFound)
		return
	}

	conn, err := docsWSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(docsWSPingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			if err := conn.SetWriteDeadline(time.Now().Add(docsWSWriteWait)); err != nil {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
			if isTerminal(ev.Kind) {
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(docsWSWriteWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func isTerminal(k docmodel.EventKind) bool {
	return k == docmodel.EventCompleted || k == docmodel.EventError || k == docmodel.EventCancelled
}
