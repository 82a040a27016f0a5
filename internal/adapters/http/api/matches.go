// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

// MatchesHandler handles the match group registry endpoints.
type MatchesHandler struct {
	deps           Dependencies
	maxUploadBytes int64
}

// NewMatchesHandler creates a new matches handler.
func NewMatchesHandler(deps Dependencies, maxUploadBytes int64) *MatchesHandler {
	return &MatchesHandler{deps: deps, maxUploadBytes: maxUploadBytes}
}

// matchGroupRequest mirrors the OpenAPI schema for POST /matches.
type matchGroupRequest struct {
	MatchName string `json:"match_name"`
	VideoStem string `json:"video_stem"`
	Part      int    `json:"part"`
	RedName   string `json:"red_name"`
	BlueName  string `json:"blue_name"`
}

func (m matchGroupRequest) validate() error {
	switch {
	case strings.TrimSpace(m.MatchName) == "":
		return errors.New("missing match_name")
	case strings.TrimSpace(m.VideoStem) == "":
		return errors.New("missing video_stem")
	case m.Part < 1:
		return errors.New("part must be at least 1")
	}
	return nil
}

// HandleMatches handles GET and POST /matches requests.
func (h *MatchesHandler) HandleMatches(w http.ResponseWriter, r *http.Request) {
	const op = "api.matches"
	switch r.Method {
	case http.MethodGet:
		groups, err := h.deps.MatchGroups(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, groups)

	case http.MethodPost:
		var req matchGroupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if err := h.deps.UpsertMatchGroup(r.Context(), req.MatchName, req.VideoStem, req.Part, req.RedName, req.BlueName); err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})

	default:
		http.NotFound(w, r)
	}
}

// HandleMatch routes /matches/names, /matches/restore, and
// /matches/{name}/stats requests.
func (h *MatchesHandler) HandleMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.match"
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/matches/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	switch {
	case len(parts) == 1 && parts[0] == "names":
		h.handleNames(w, r)
	case len(parts) == 1 && parts[0] == "restore":
		h.handleRestore(w, r)
	case len(parts) == 2 && parts[1] == "stats":
		h.handleStats(w, r, parts[0])
	default:
		http.NotFound(w, r)
	}
}

func (h *MatchesHandler) handleNames(w http.ResponseWriter, r *http.Request) {
	const op = "api.match_names"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	names, err := h.deps.ListMatchNames(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (h *MatchesHandler) handleRestore(w http.ResponseWriter, r *http.Request) {
	const op = "api.match_restore"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	count, err := h.deps.RestoreMatchGroups(r.Context(), payload)
	if err != nil {
		if isBadInput(err) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, restoreResponse{Restored: count})
}

func (h *MatchesHandler) handleStats(w http.ResponseWriter, r *http.Request, matchName string) {
	const op = "api.match_stats"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	stats, err := h.deps.MatchStats(r.Context(), matchName)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
