// Package seedevents generates synthetic technique result files for
// exercising the annotation service without a real analysis run.
package seedevents

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/okian/dojang/internal/adapters/blobstore"
	"github.com/okian/dojang/internal/adapters/repository"
	"github.com/okian/dojang/pkg/logger"
)

// Run seeds the configured data root with generated technique results
// and, when enabled, a match registry grouping consecutive video pairs.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if cfg.NumVideos <= 0 || cfg.EventsPerVideo <= 0 {
		return nil, fmt.Errorf("seed: videos and events per video must be positive")
	}
	if cfg.FPS <= 0 {
		return nil, fmt.Errorf("seed: fps must be positive")
	}

	blobs, err := blobstore.New(ctx, cfg.DataRoot)
	if err != nil {
		return nil, fmt.Errorf("seed: open data root: %w", err)
	}
	defer blobs.Close()

	rng := rand.New(rand.NewSource(cfg.Seed))
	stats := &Stats{}

	logger.Get().Info(ctx, "seeding technique results",
		logger.String("dataRoot", cfg.DataRoot),
		logger.Int("videos", cfg.NumVideos),
		logger.Int("eventsPerVideo", cfg.EventsPerVideo))

	for i := 0; i < cfg.NumVideos; i++ {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		stem := videoStem(cfg.StemPrefix, i)
		events := generateVideoEvents(rng, cfg.EventsPerVideo, cfg.FPS)

		var payload []byte
		if cfg.PrettyJSON {
			payload, err = json.MarshalIndent(events, "", "  ")
		} else {
			payload, err = json.Marshal(events)
		}
		if err != nil {
			return stats, fmt.Errorf("seed: marshal events for %q: %w", stem, err)
		}
		if err := blobs.Write(ctx, "results/"+stem+"_techniques.json", payload); err != nil {
			return stats, fmt.Errorf("seed: write events for %q: %w", stem, err)
		}
		stats.VideosWritten++
		stats.EventsWritten += len(events)
	}

	if cfg.Matches {
		if err := seedMatches(ctx, blobs, cfg, stats); err != nil {
			return stats, err
		}
	}

	logger.Get().Info(ctx, "seeding complete",
		logger.Int("videosWritten", stats.VideosWritten),
		logger.Int("eventsWritten", stats.EventsWritten),
		logger.Int("matchesWritten", stats.MatchesWritten))

	return stats, nil
}

// seedMatches groups every consecutive pair of videos into a two-part
// match. An odd trailing video stays ungrouped.
func seedMatches(ctx context.Context, blobs *blobstore.Store, cfg *Config, stats *Stats) error {
	matches := repository.NewMatches(blobs, repository.WithMatchesPrettyJSON(cfg.PrettyJSON))
	for i := 0; i+1 < cfg.NumVideos; i += 2 {
		name := fmt.Sprintf("Match %d", i/2+1)
		red := fmt.Sprintf("Red Fighter %d", i/2+1)
		blue := fmt.Sprintf("Blue Fighter %d", i/2+1)
		for part := 0; part < 2; part++ {
			stem := videoStem(cfg.StemPrefix, i+part)
			if err := matches.UpsertGroup(ctx, name, stem, part+1, red, blue); err != nil {
				return fmt.Errorf("seed: group %q part %d: %w", name, part+1, err)
			}
		}
		stats.MatchesWritten++
	}
	return nil
}
