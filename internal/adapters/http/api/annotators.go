// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// AnnotatorsHandler handles the annotator book endpoints.
type AnnotatorsHandler struct {
	deps Dependencies
}

// NewAnnotatorsHandler creates a new annotators handler.
func NewAnnotatorsHandler(deps Dependencies) *AnnotatorsHandler {
	return &AnnotatorsHandler{deps: deps}
}

type addAnnotatorRequest struct {
	Name string `json:"name"`
}

// HandleAnnotators handles GET and POST /annotators requests.
func (h *AnnotatorsHandler) HandleAnnotators(w http.ResponseWriter, r *http.Request) {
	const op = "api.annotators"
	switch r.Method {
	case http.MethodGet:
		names, err := h.deps.Annotators(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, names)

	case http.MethodPost:
		var req addAnnotatorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing name")))
			return
		}
		names, err := h.deps.AddAnnotator(r.Context(), req.Name)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, names)

	default:
		http.NotFound(w, r)
	}
}
