// Command seed-events fills a data root with synthetic technique
// results so the annotation service can be exercised without running
// the video analysis pipeline.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/dojang/internal/seedevents"
	"github.com/okian/dojang/pkg/logger"
)

// Default configuration constants.
const (
	defaultNumVideos      = 6
	defaultEventsPerVideo = 40
	defaultFPS            = 30.0
	defaultStemPrefix     = "sparring"
)

func main() {
	var (
		dataRoot       = flag.String("data", "data", "Data root directory to seed")
		numVideos      = flag.Int("videos", defaultNumVideos, "Number of videos to generate")
		eventsPerVideo = flag.Int("events", defaultEventsPerVideo, "Number of events per video")
		fps            = flag.Float64("fps", defaultFPS, "Frame rate used to derive timestamps")
		seed           = flag.Int64("seed", time.Now().UnixNano(), "Random seed; fix it for a reproducible dataset")
		stemPrefix     = flag.String("prefix", defaultStemPrefix, "Prefix for generated video stems")
		matches        = flag.Bool("matches", true, "Group consecutive video pairs into matches")
		pretty         = flag.Bool("pretty", true, "Indent generated documents")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &seedevents.Config{
		DataRoot:       *dataRoot,
		NumVideos:      *numVideos,
		EventsPerVideo: *eventsPerVideo,
		FPS:            *fps,
		Seed:           *seed,
		StemPrefix:     *stemPrefix,
		Matches:        *matches,
		PrettyJSON:     *pretty,
	}

	stats, err := seedevents.Run(ctx, cfg)
	if err != nil {
		logger.Get().Error(ctx, "seeding failed", logger.Error(err))
		os.Exit(1)
	}

	logger.Get().Info(ctx, "seeded data root",
		logger.String("dataRoot", cfg.DataRoot),
		logger.Int("videos", stats.VideosWritten),
		logger.Int("events", stats.EventsWritten),
		logger.Int("matches", stats.MatchesWritten))
}
