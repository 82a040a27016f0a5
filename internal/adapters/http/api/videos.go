// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/dojang/internal/domain/model"
	"github.com/okian/dojang/internal/domain/types"
)

// VideosHandler handles video listing and all per-video subresources.
type VideosHandler struct {
	deps           Dependencies
	maxUploadBytes int64
}

// NewVideosHandler creates a new videos handler.
func NewVideosHandler(deps Dependencies, maxUploadBytes int64) *VideosHandler {
	return &VideosHandler{deps: deps, maxUploadBytes: maxUploadBytes}
}

// HandleListVideos handles GET /videos requests.
func (h *VideosHandler) HandleListVideos(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_videos"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	videos, err := h.deps.ListVideos(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, videos)
}

// HandleVideo routes /videos/{stem}/... to the subresource handlers.
func (h *VideosHandler) HandleVideo(w http.ResponseWriter, r *http.Request) {
	const op = "api.video"
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/videos/"), "/")
	if len(parts) < 2 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	stem := parts[0]

	switch parts[1] {
	case "events":
		h.handleEvents(w, r, stem)
	case "annotations":
		if len(parts) == 3 && parts[2] == "restore" {
			h.handleRestore(w, r, stem)
			return
		}
		h.handleAnnotations(w, r, stem)
	case "annotation":
		h.handleFindAnnotation(w, r, stem)
	case "stats":
		h.handleStats(w, r, stem)
	case "match":
		h.handleMatchContext(w, r, stem)
	case "thumbnail":
		h.handleThumbnail(w, r, stem, parts)
	case "boxes":
		h.handleBoxes(w, r, stem, parts)
	default:
		http.NotFound(w, r)
	}
}

func (h *VideosHandler) handleEvents(w http.ResponseWriter, r *http.Request, stem string) {
	const op = "api.video_events"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	fromSec, err := parseFromSec(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	events, err := h.deps.Events(r.Context(), stem, fromSec)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if events == nil {
		events = []model.TechniqueEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

// annotateRequest mirrors the OpenAPI schema for POST annotations.
type annotateRequest struct {
	Event       model.TechniqueEvent `json:"event"`
	Corrections model.Correction     `json:"corrections"`
	AnnotatedBy string               `json:"annotated_by"`
}

func (a annotateRequest) validate() error {
	switch {
	case strings.TrimSpace(a.AnnotatedBy) == "":
		return errors.New("missing annotated_by")
	case a.Event.StartFrame < 0 || a.Event.EndFrame < 0:
		return errors.New("negative frame numbers")
	case a.Event.EndFrame < a.Event.StartFrame:
		return errors.New("end_frame before start_frame")
	}
	return nil
}

type annotateResponse struct {
	AnnotationID string `json:"annotation_id"`
}

type deleteResponse struct {
	Deleted bool `json:"deleted"`
}

type restoreResponse struct {
	Restored int `json:"restored"`
}

func (h *VideosHandler) handleAnnotations(w http.ResponseWriter, r *http.Request, stem string) {
	const op = "api.video_annotations"
	switch r.Method {
	case http.MethodGet:
		set, err := h.deps.Annotations(r.Context(), stem)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, set)

	case http.MethodPost:
		var req annotateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		id, err := h.deps.Annotate(r.Context(), stem, req.Event, req.Corrections, req.AnnotatedBy)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, annotateResponse{AnnotationID: id})

	case http.MethodDelete:
		key, err := parseEventKey(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		deleted, err := h.deps.DeleteAnnotation(r.Context(), stem, key)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, deleteResponse{Deleted: deleted})

	default:
		http.NotFound(w, r)
	}
}

func (h *VideosHandler) handleFindAnnotation(w http.ResponseWriter, r *http.Request, stem string) {
	const op = "api.video_annotation"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	key, err := parseEventKey(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	ann, found, err := h.deps.FindAnnotation(r.Context(), stem, key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, errors.New("no annotation for event")))
		return
	}
	writeJSON(w, http.StatusOK, ann)
}

func (h *VideosHandler) handleRestore(w http.ResponseWriter, r *http.Request, stem string) {
	const op = "api.video_restore"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	count, err := h.deps.RestoreAnnotations(r.Context(), stem, payload)
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

func (h *VideosHandler) handleStats(w http.ResponseWriter, r *http.Request, stem string) {
	const op = "api.video_stats"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	fromSec, err := parseFromSec(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	stats, err := h.deps.Stats(r.Context(), stem, fromSec)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *VideosHandler) handleMatchContext(w http.ResponseWriter, r *http.Request, stem string) {
	const op = "api.video_match"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	mctx, found, err := h.deps.MatchContext(r.Context(), stem)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, errors.New("video not in any match group")))
		return
	}
	writeJSON(w, http.StatusOK, mctx)
}

func (h *VideosHandler) handleThumbnail(w http.ResponseWriter, r *http.Request, stem string, parts []string) {
	const op = "api.video_thumbnail"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	frame, err := parseFrame(parts)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	data, ext, err := h.deps.Thumbnail(r.Context(), stem, frame)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", contentTypeForExt(ext))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *VideosHandler) handleBoxes(w http.ResponseWriter, r *http.Request, stem string, parts []string) {
	const op = "api.video_boxes"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	frame, err := parseFrame(parts)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	boxes, err := h.deps.BoxMeta(r.Context(), stem, frame)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if boxes == nil {
		boxes = []model.BoxMeta{}
	}
	writeJSON(w, http.StatusOK, boxes)
}

func parseFromSec(r *http.Request) (float64, error) {
	raw := r.URL.Query().Get("from")
	if raw == "" {
		return 0, nil
	}
	fromSec, err := strconv.ParseFloat(raw, 64)
	if err != nil || fromSec < 0 {
		return 0, errors.New("invalid from; must be a non-negative number of seconds")
	}
	return fromSec, nil
}

func parseEventKey(r *http.Request) (types.EventKey, error) {
	q := r.URL.Query()
	start, err := strconv.Atoi(q.Get("start_frame"))
	if err != nil {
		return types.EventKey{}, errors.New("invalid start_frame")
	}
	end, err := strconv.Atoi(q.Get("end_frame"))
	if err != nil {
		return types.EventKey{}, errors.New("invalid end_frame")
	}
	color := q.Get("fighter_color")
	if color == "" {
		return types.EventKey{}, errors.New("missing fighter_color")
	}
	return types.EventKey{
		StartFrame:   start,
		EndFrame:     end,
		FighterColor: types.NormalizeColor(color),
	}, nil
}

func parseFrame(parts []string) (int, error) {
	if len(parts) != 3 {
		return 0, errors.New("missing frame number")
	}
	frame, err := strconv.Atoi(parts[2])
	if err != nil || frame < 0 {
		return 0, errors.New("invalid frame number")
	}
	return frame, nil
}

func contentTypeForExt(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	default:
		return "image/jpeg"
	}
}
