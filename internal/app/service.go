// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"

	blobstore "github.com/okian/dojang/internal/adapters/blobstore"
	repository "github.com/okian/dojang/internal/adapters/repository"
	"github.com/okian/dojang/internal/domain/inference"
	"github.com/okian/dojang/internal/domain/model"
	"github.com/okian/dojang/internal/domain/progress"
	"github.com/okian/dojang/internal/domain/types"
	"github.com/okian/dojang/pkg/logger"
	"github.com/okian/dojang/pkg/metrics"
)

// Service wires the annotation repositories, the event store, and the
// inference engine behind the operations the HTTP API needs.
type Service struct {
	mu sync.RWMutex

	// Core components
	blobs       *blobstore.Store
	events      *repository.EventStore
	annotations *repository.Annotations
	matches     *repository.Matches
	annotators  *repository.AnnotatorBook
	engine      *inference.Engine

	// Configuration
	dataRoot           string
	defaultAnnotators  []string
	prettyJSON         bool
	targetPerTechnique int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDataRoot sets the data root directory.
func WithDataRoot(root string) Option {
	return func(s *Service) {
		if root != "" {
			s.dataRoot = root
		}
	}
}

// WithDefaultAnnotators sets the built-in annotator names.
func WithDefaultAnnotators(names []string) Option {
	return func(s *Service) {
		if len(names) > 0 {
			s.defaultAnnotators = names
		}
	}
}

// WithPrettyJSON toggles indented persistence of annotation documents.
func WithPrettyJSON(pretty bool) Option {
	return func(s *Service) {
		s.prettyJSON = pretty
	}
}

// WithTargetPerTechnique sets the dataset collection goal per technique
// class, reported as per-technique completion in video stats.
func WithTargetPerTechnique(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.targetPerTechnique = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dataRoot:           "data",
		defaultAnnotators:  []string{"Coach Mehdi", "Luke", "Analyst"},
		prettyJSON:         true,
		targetPerTechnique: 50,
		logger:             nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the stores and acquires the data root lock.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting annotation service...")

	blobs, err := blobstore.New(ctx, s.dataRoot)
	if err != nil {
		return err
	}
	s.blobs = blobs
	s.events = repository.NewEventStore(blobs)
	s.annotations = repository.NewAnnotations(blobs,
		repository.WithPrettyJSON(s.prettyJSON),
	)
	s.matches = repository.NewMatches(blobs,
		repository.WithMatchesPrettyJSON(s.prettyJSON),
	)
	s.annotators = repository.NewAnnotatorBook(blobs, s.defaultAnnotators)
	s.engine = inference.NewEngine()

	s.started = true
	s.logger.Info(ctx, "annotation service started",
		logger.String("dataRoot", s.dataRoot),
		logger.Int("defaultAnnotators", len(s.defaultAnnotators)),
	)

	return nil
}

// Stop releases the data root lock.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping annotation service...")

	if s.blobs != nil {
		if err := s.blobs.Close(); err != nil {
			s.logger.Warn(context.Background(), "failed to release data root lock",
				logger.Error(err),
			)
		}
	}

	s.started = false
	s.logger.Info(context.Background(), "annotation service stopped")
}

// ListVideos returns the stems of all videos with technique results.
func (s *Service) ListVideos(ctx context.Context) ([]string, error) {
	videos, err := s.events.ListVideos(ctx)
	if err != nil {
		return nil, err
	}
	metrics.UpdateKnownVideos(len(videos))
	return videos, nil
}

// Events returns a video's technique events, optionally skipping those
// before fromSec.
func (s *Service) Events(ctx context.Context, videoStem string, fromSec float64) ([]model.TechniqueEvent, error) {
	return s.events.EventsSince(ctx, videoStem, fromSec)
}

// Annotations returns a video's full annotation document.
func (s *Service) Annotations(ctx context.Context, videoStem string) (model.AnnotationSet, error) {
	return s.annotations.Load(ctx, videoStem)
}

// Annotate records a correction for an event and returns the
// annotation id.
func (s *Service) Annotate(ctx context.Context, videoStem string, event model.TechniqueEvent, corr model.Correction, annotatedBy string) (string, error) {
	id, err := s.annotations.Upsert(ctx, videoStem, event, corr, annotatedBy)
	if err != nil {
		s.logger.Error(ctx, "annotation upsert failed",
			logger.String("video", videoStem),
			logger.Error(err),
		)
		return "", err
	}
	s.logger.Debug(ctx, "annotation saved",
		logger.String("video", videoStem),
		logger.String("annotationID", id),
		logger.String("annotatedBy", annotatedBy),
	)
	return id, nil
}

// DeleteAnnotation removes the annotation matching the event key.
func (s *Service) DeleteAnnotation(ctx context.Context, videoStem string, key types.EventKey) (bool, error) {
	return s.annotations.Delete(ctx, videoStem, key)
}

// FindAnnotation returns the annotation matching the event key, if any.
func (s *Service) FindAnnotation(ctx context.Context, videoStem string, key types.EventKey) (model.Annotation, bool, error) {
	return s.annotations.Find(ctx, videoStem, key)
}

// RestoreAnnotations replaces a video's document with an uploaded one.
func (s *Service) RestoreAnnotations(ctx context.Context, videoStem string, payload []byte) (int, error) {
	count, err := s.annotations.Restore(ctx, videoStem, payload)
	if err != nil {
		return 0, err
	}
	s.logger.Info(ctx, "annotations restored",
		logger.String("video", videoStem),
		logger.Int("count", count),
	)
	return count, nil
}

// VideoStats mirrors the read shape returned by the stats operation.
type VideoStats = progress.VideoStats

// Stats computes coverage stats for a video, including the latest
// scoreboard reading and the next unannotated event index.
func (s *Service) Stats(ctx context.Context, videoStem string, fromSec float64) (VideoStats, error) {
	events, err := s.events.EventsSince(ctx, videoStem, fromSec)
	if err != nil {
		return VideoStats{}, err
	}
	set, err := s.annotations.Load(ctx, videoStem)
	if err != nil {
		return VideoStats{}, err
	}

	stats := VideoStats{
		Stats:           progress.Compute(set.Annotations, len(events)),
		NextUnannotated: repository.NextUnannotated(events, set),
	}
	stats.TechniqueTargetPct = progress.TargetPct(stats.ByTechnique, s.targetPerTechnique)
	if red, blue, round, ok := repository.LatestScoreboard(set); ok {
		stats.ScoreboardRed = red
		stats.ScoreboardBlue = blue
		stats.ScoreboardRound = round
	}
	metrics.UpdateTotalAnnotations(len(set.Annotations))
	return stats, nil
}

// MatchContext resolves a video's match membership.
func (s *Service) MatchContext(ctx context.Context, videoStem string) (model.MatchContext, bool, error) {
	return s.matches.GroupForVideo(ctx, videoStem)
}

// MatchGroups returns the whole match registry.
func (s *Service) MatchGroups(ctx context.Context) (map[string]model.MatchGroup, error) {
	return s.matches.LoadAll(ctx)
}

// UpsertMatchGroup adds or updates a video within a match group.
func (s *Service) UpsertMatchGroup(ctx context.Context, matchName, videoStem string, part int, redName, blueName string) error {
	return s.matches.UpsertGroup(ctx, matchName, videoStem, part, redName, blueName)
}

// ListMatchNames returns every match name, sorted.
func (s *Service) ListMatchNames(ctx context.Context) ([]string, error) {
	return s.matches.ListNames(ctx)
}

// RestoreMatchGroups replaces the registry with an uploaded document.
func (s *Service) RestoreMatchGroups(ctx context.Context, payload []byte) (int, error) {
	return s.matches.Restore(ctx, payload)
}

// MatchStats combines per-part coverage for one match.
func (s *Service) MatchStats(ctx context.Context, matchName string) (progress.MatchStats, error) {
	group, err := s.matches.Group(ctx, matchName)
	if err != nil {
		return progress.MatchStats{}, err
	}

	parts := make([]progress.PartStats, 0, len(group.Videos))
	for _, v := range group.Videos {
		events, err := s.events.Events(ctx, v.VideoStem)
		if err != nil {
			return progress.MatchStats{}, err
		}
		set, err := s.annotations.Load(ctx, v.VideoStem)
		if err != nil {
			return progress.MatchStats{}, err
		}
		parts = append(parts, progress.PartStats{
			Part:      v.Part,
			VideoStem: v.VideoStem,
			Stats:     progress.Compute(set.Annotations, len(events)),
		})
	}
	return progress.CombineMatch(parts), nil
}

// Annotators returns all known annotator names, defaults first.
func (s *Service) Annotators(ctx context.Context) ([]string, error) {
	return s.annotators.List(ctx)
}

// AddAnnotator records a new annotator name.
func (s *Service) AddAnnotator(ctx context.Context, name string) ([]string, error) {
	return s.annotators.Add(ctx, name)
}

// Suggest derives opponent defaults from one fighter's layers.
func (s *Service) Suggest(_ context.Context, other inference.Snapshot) inference.Suggestion {
	return s.engine.Suggest(other)
}

// Thumbnail returns the frame image and its extension.
func (s *Service) Thumbnail(ctx context.Context, videoStem string, frame int) ([]byte, string, error) {
	return s.events.Thumbnail(ctx, videoStem, frame)
}

// BoxMeta returns the detection boxes for a frame.
func (s *Service) BoxMeta(ctx context.Context, videoStem string, frame int) ([]model.BoxMeta, error) {
	return s.events.BoxMeta(ctx, videoStem, frame)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":  s.started,
		"dataRoot": s.dataRoot,
	}

	if s.started {
		if videos, err := s.events.ListVideos(ctx); err == nil {
			stats["knownVideos"] = len(videos)
			metrics.UpdateKnownVideos(len(videos))

			total := 0
			for _, stem := range videos {
				set, err := s.annotations.Load(ctx, stem)
				if err != nil {
					continue
				}
				total += len(set.Annotations)
			}
			stats["totalAnnotations"] = total
			metrics.UpdateTotalAnnotations(total)
		}
		if names, err := s.matches.ListNames(ctx); err == nil {
			stats["matchGroups"] = len(names)
			metrics.UpdateMatchGroups(len(names))
		}
		if annotators, err := s.annotators.List(ctx); err == nil {
			stats["annotators"] = len(annotators)
			metrics.UpdateAnnotators(len(annotators))
		}
	}

	return stats
}
