package httpapi

import "net/http"

// handleHistory serves GET /api/docs/history, a supplemented endpoint
// listing terminal outcomes of past documentation runs.
func (a *API) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"runs": a.history.List()})
}
