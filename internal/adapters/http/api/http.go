// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/dojang/internal/adapters/repository"
	"github.com/okian/dojang/internal/domain/inference"
	"github.com/okian/dojang/internal/domain/model"
	"github.com/okian/dojang/internal/domain/progress"
	"github.com/okian/dojang/internal/domain/types"
)

// Default upload cap for restore endpoints.
const defaultMaxUploadBytes = 8 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Video reads expose pipeline output.
	ListVideos(ctx context.Context) ([]string, error)
	Events(ctx context.Context, videoStem string, fromSec float64) ([]model.TechniqueEvent, error)
	Thumbnail(ctx context.Context, videoStem string, frame int) ([]byte, string, error)
	BoxMeta(ctx context.Context, videoStem string, frame int) ([]model.BoxMeta, error)

	// Annotation operations.
	Annotations(ctx context.Context, videoStem string) (model.AnnotationSet, error)
	Annotate(ctx context.Context, videoStem string, event model.TechniqueEvent, corr model.Correction, annotatedBy string) (string, error)
	DeleteAnnotation(ctx context.Context, videoStem string, key types.EventKey) (bool, error)
	FindAnnotation(ctx context.Context, videoStem string, key types.EventKey) (model.Annotation, bool, error)
	RestoreAnnotations(ctx context.Context, videoStem string, payload []byte) (int, error)
	Stats(ctx context.Context, videoStem string, fromSec float64) (VideoStats, error)

	// Match grouping.
	MatchContext(ctx context.Context, videoStem string) (model.MatchContext, bool, error)
	MatchGroups(ctx context.Context) (map[string]model.MatchGroup, error)
	UpsertMatchGroup(ctx context.Context, matchName, videoStem string, part int, redName, blueName string) error
	ListMatchNames(ctx context.Context) ([]string, error)
	RestoreMatchGroups(ctx context.Context, payload []byte) (int, error)
	MatchStats(ctx context.Context, matchName string) (progress.MatchStats, error)

	// Annotators.
	Annotators(ctx context.Context) ([]string, error)
	AddAnnotator(ctx context.Context, name string) ([]string, error)

	// Inference.
	Suggest(ctx context.Context, other inference.Snapshot) inference.Suggestion
}

// VideoStats mirrors the read shape returned by the stats operation.
type VideoStats = progress.VideoStats

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxUploadBytes caps the restore payload size.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	videosHandler     *VideosHandler
	matchesHandler    *MatchesHandler
	annotatorsHandler *AnnotatorsHandler
	suggestHandler    *SuggestHandler

	maxUploadBytes int64
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		maxUploadBytes: defaultMaxUploadBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.videosHandler = NewVideosHandler(deps, s.maxUploadBytes)
	s.matchesHandler = NewMatchesHandler(deps, s.maxUploadBytes)
	s.annotatorsHandler = NewAnnotatorsHandler(deps)
	s.suggestHandler = NewSuggestHandler(deps)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/videos", MetricsMiddleware(s.videosHandler.HandleListVideos, "videos"))
	mux.HandleFunc("/videos/", MetricsMiddleware(s.videosHandler.HandleVideo, "videos"))
	mux.HandleFunc("/matches", MetricsMiddleware(s.matchesHandler.HandleMatches, "matches"))
	mux.HandleFunc("/matches/", MetricsMiddleware(s.matchesHandler.HandleMatch, "matches"))
	mux.HandleFunc("/annotators", MetricsMiddleware(s.annotatorsHandler.HandleAnnotators, "annotators"))
	mux.HandleFunc("/suggest", MetricsMiddleware(s.suggestHandler.HandleSuggest, "suggest"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// isNotFound translates upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrAnnotationNotFound) ||
		errors.Is(err, repository.ErrThumbnailNotFound) ||
		errors.Is(err, repository.ErrMatchNotFound)
}

// isBadInput translates malformed documents and imports to 400.
func isBadInput(err error) bool {
	return errors.Is(err, ErrBadRequest) ||
		errors.Is(err, repository.ErrMalformedImport)
}
