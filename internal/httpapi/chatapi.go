package httpapi

import (
	"net/http"

	"codedocs/internal/chatservice"
)

func (a *API) handleChatSuggest(w http.ResponseWriter, r *http.Request) {
	var req chatservice.SuggestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	resp, err := a.suggest.Suggest(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
