// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/okian/dojang/internal/domain/inference"
)

// SuggestHandler handles opponent default suggestions.
type SuggestHandler struct {
	deps Dependencies
}

// NewSuggestHandler creates a new suggest handler.
func NewSuggestHandler(deps Dependencies) *SuggestHandler {
	return &SuggestHandler{deps: deps}
}

// suggestRequest carries the active fighter's committed layers.
type suggestRequest struct {
	Attitude *string `json:"attitude"`
	Role     *string `json:"role"`
	Penalty  *string `json:"penalty"`
}

type suggestResponse struct {
	Attitude     *string `json:"attitude"`
	Role         *string `json:"role"`
	ScoringValue *string `json:"scoring_value"`
}

// HandleSuggest handles POST /suggest requests.
func (h *SuggestHandler) HandleSuggest(w http.ResponseWriter, r *http.Request) {
	const op = "api.suggest"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	sugg := h.deps.Suggest(r.Context(), inference.Snapshot{
		Attitude: req.Attitude,
		Role:     req.Role,
		Penalty:  req.Penalty,
	})
	writeJSON(w, http.StatusOK, suggestResponse{
		Attitude:     sugg.Attitude,
		Role:         sugg.Role,
		ScoringValue: sugg.ScoringValue,
	})
}
