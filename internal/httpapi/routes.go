package httpapi

import "net/http"

// Routes builds the full handler tree described by the external interface
// table, wrapped in CORS middleware.
func (a *API) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", a.handleHealth)

	mux.HandleFunc("GET /api/config", a.handleGetConfig)
	mux.HandleFunc("PUT /api/config", a.handlePutConfig)
	mux.HandleFunc("POST /api/config/test", a.handleTestConfig)

	mux.HandleFunc("POST /api/chat/suggest", a.handleChatSuggest)
	mux.Handle("GET /ws/chat", a.chatWS)

	mux.HandleFunc("POST /api/docs/generate", a.handleDocsGenerate)
	mux.HandleFunc("GET /api/docs/tasks/{id}", a.handleDocsTask)
	mux.HandleFunc("POST /api/docs/tasks/{id}/cancel", a.handleDocsTaskCancel)
	mux.HandleFunc("GET /ws/docs/{id}", a.handleDocsWS)

	mux.HandleFunc("POST /api/docs/graph", a.handleProjectGraph)
	mux.HandleFunc("POST /api/docs/file-graph", a.handleFileGraph)
	mux.HandleFunc("POST /api/docs/dir-graph", a.handleDirGraph)

	mux.HandleFunc("GET /api/docs/history", a.handleHistory)

	return corsMiddleware(mux)
}

func (a *API) handleDocsWS(w http.ResponseWriter, r *http.Request) {
	a.serveDocsWS(w, r, r.PathValue("id"))
}
