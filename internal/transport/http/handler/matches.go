package handler

import (
	"encoding/json"
	"net/http"

	"github.com/materio/backend/internal/application/matchmaking"
	"github.com/materio/backend/internal/domain"
	"github.com/materio/backend/internal/pkg/validate"
	"github.com/materio/backend/internal/transport/http/middleware"
)

// MatchHandler serves ranked listing matches for the authenticated user.
type MatchHandler struct {
	svc matchmaking.Service
}

func NewMatchHandler(svc matchmaking.Service) *MatchHandler { return &MatchHandler{svc: svc} }

// Find scores published listings against the caller's filters. With
// ?strict=true any internal failure is surfaced; otherwise the endpoint
// degrades to an empty result set.
func (h *MatchHandler) Find(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var params domain.MatchParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	params.UserID = claims.UserID
	if err := validate.Struct(&params); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if r.URL.Query().Get("strict") == "true" {
		results, err := h.svc.Matches(r.Context(), params)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, DataEnvelope{Data: results})
		return
	}

	writeJSON(w, http.StatusOK, DataEnvelope{Data: h.svc.FindMatches(r.Context(), params)})
}
