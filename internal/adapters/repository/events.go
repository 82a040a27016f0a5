// Package repository provides the persistence adapters for technique
// events, annotations, match groups, and annotators, all backed by the
// blobstore data root.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/dojang/internal/adapters/blobstore"
	"github.com/okian/dojang/internal/domain/model"
	"github.com/okian/dojang/pkg/metrics"
)

// Data root layout.
const (
	resultsPrefix    = "results"
	thumbnailsPrefix = "thumbnails"
	annotationsDir   = "annotations"

	techniquesSuffix = "_techniques.json"
)

var thumbnailExts = []string{".jpg", ".jpeg", ".png"}

// EventStore reads pipeline output: technique events, thumbnails, and
// box metadata. It never writes.
type EventStore struct {
	blobs *blobstore.Store
}

// NewEventStore creates an EventStore over the given blob store.
func NewEventStore(blobs *blobstore.Store) *EventStore {
	return &EventStore{blobs: blobs}
}

// ListVideos returns the stems of all videos with technique results,
// sorted ascending.
func (s *EventStore) ListVideos(ctx context.Context) ([]string, error) {
	keys, err := s.blobs.List(ctx, resultsPrefix)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	videos := make([]string, 0, len(keys))
	for _, key := range keys {
		name := strings.TrimPrefix(key, resultsPrefix+"/")
		if !strings.HasSuffix(name, techniquesSuffix) {
			continue
		}
		videos = append(videos, strings.TrimSuffix(name, techniquesSuffix))
	}
	return videos, nil
}

// Events returns the detected technique events for a video. A video
// with no results file yields an empty slice, not an error.
func (s *EventStore) Events(ctx context.Context, videoStem string) ([]model.TechniqueEvent, error) {
	start := time.Now()
	data, err := s.blobs.Read(ctx, resultsPrefix+"/"+videoStem+techniquesSuffix)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read events for %q: %w", videoStem, err)
	}

	var events []model.TechniqueEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("%w: events for %q: %v", ErrMalformedDocument, videoStem, err)
	}
	metrics.RecordStoreLoadLatency(float64(time.Since(start).Milliseconds()))
	metrics.RecordEventsLoaded(len(events))
	return events, nil
}

// EventsSince returns the events starting at or after fromSec. Used to
// skip walkouts and ceremonies at the head of a recording.
func (s *EventStore) EventsSince(ctx context.Context, videoStem string, fromSec float64) ([]model.TechniqueEvent, error) {
	events, err := s.Events(ctx, videoStem)
	if err != nil {
		return nil, err
	}
	if fromSec <= 0 {
		return events, nil
	}
	filtered := make([]model.TechniqueEvent, 0, len(events))
	for _, e := range events {
		if e.StartTimestamp >= fromSec {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// Thumbnail returns the frame image and its extension, probing the
// known extensions in order. Missing frames yield ErrThumbnailNotFound.
func (s *EventStore) Thumbnail(ctx context.Context, videoStem string, frame int) ([]byte, string, error) {
	for _, ext := range thumbnailExts {
		key := fmt.Sprintf("%s/%s/frame_%06d%s", thumbnailsPrefix, videoStem, frame, ext)
		data, err := s.blobs.Read(ctx, key)
		if err == nil {
			return data, ext, nil
		}
		if !errors.Is(err, blobstore.ErrNotFound) {
			return nil, "", fmt.Errorf("read thumbnail %q frame %d: %w", videoStem, frame, err)
		}
	}
	return nil, "", fmt.Errorf("%w: %s frame %d", ErrThumbnailNotFound, videoStem, frame)
}

// BoxMeta returns the detection boxes for a frame. A frame without
// metadata yields an empty slice.
func (s *EventStore) BoxMeta(ctx context.Context, videoStem string, frame int) ([]model.BoxMeta, error) {
	key := fmt.Sprintf("%s/%s/meta/frame_%06d.json", thumbnailsPrefix, videoStem, frame)
	data, err := s.blobs.Read(ctx, key)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read box metadata %q frame %d: %w", videoStem, frame, err)
	}

	var meta model.FrameMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: box metadata %q frame %d: %v", ErrMalformedDocument, videoStem, frame, err)
	}
	return meta.Boxes, nil
}
