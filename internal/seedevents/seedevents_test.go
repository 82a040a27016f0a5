package seedevents

import (
	"context"
	"math/rand"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/dojang/internal/adapters/blobstore"
	"github.com/okian/dojang/internal/adapters/repository"
	"github.com/okian/dojang/pkg/logger"
)

func init() {
	logger.Init()
}

func TestGenerateVideoEvents(t *testing.T) {
	convey.Convey("Given a seeded generator", t, func() {
		rng := rand.New(rand.NewSource(42))
		events := generateVideoEvents(rng, 20, 30.0)

		convey.Convey("Then it should produce the requested count", func() {
			convey.So(events, convey.ShouldHaveLength, 20)
		})

		convey.Convey("Then spans should be ordered and non-overlapping", func() {
			for i, e := range events {
				convey.So(e.EndFrame, convey.ShouldBeGreaterThan, e.StartFrame)
				if i > 0 {
					convey.So(e.StartFrame, convey.ShouldBeGreaterThan, events[i-1].EndFrame)
				}
			}
		})

		convey.Convey("Then timestamps should follow the frame rate", func() {
			for _, e := range events {
				convey.So(e.StartTimestamp, convey.ShouldAlmostEqual, float64(e.StartFrame)/30.0)
				convey.So(e.Confidence, convey.ShouldBeBetweenOrEqual, 0.0, 1.0)
				convey.So(e.Technique, convey.ShouldNotBeEmpty)
			}
		})

		convey.Convey("Then the same seed should reproduce the same timeline", func() {
			again := generateVideoEvents(rand.New(rand.NewSource(42)), 20, 30.0)
			convey.So(again, convey.ShouldResemble, events)
		})
	})
}

func TestRun(t *testing.T) {
	convey.Convey("Given a seeding config", t, func() {
		ctx := context.Background()
		cfg := &Config{
			DataRoot:       t.TempDir(),
			NumVideos:      4,
			EventsPerVideo: 5,
			FPS:            30.0,
			Seed:           7,
			StemPrefix:     "sparring",
			Matches:        true,
			PrettyJSON:     true,
		}

		convey.Convey("When running the seeder", func() {
			stats, err := Run(ctx, cfg)
			convey.So(err, convey.ShouldBeNil)
			convey.So(stats.VideosWritten, convey.ShouldEqual, 4)
			convey.So(stats.EventsWritten, convey.ShouldEqual, 20)
			convey.So(stats.MatchesWritten, convey.ShouldEqual, 2)

			convey.Convey("Then the results should load through the event store", func() {
				blobs, err := blobstore.New(ctx, cfg.DataRoot)
				convey.So(err, convey.ShouldBeNil)
				defer blobs.Close()

				store := repository.NewEventStore(blobs)
				videos, err := store.ListVideos(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(videos, convey.ShouldResemble, []string{
					"sparring_001", "sparring_002", "sparring_003", "sparring_004",
				})

				events, err := store.Events(ctx, "sparring_001")
				convey.So(err, convey.ShouldBeNil)
				convey.So(events, convey.ShouldHaveLength, 5)

				convey.Convey("And the match registry should group pairs", func() {
					matches := repository.NewMatches(blobs)
					names, err := matches.ListNames(ctx)
					convey.So(err, convey.ShouldBeNil)
					convey.So(names, convey.ShouldResemble, []string{"Match 1", "Match 2"})

					groupCtx, ok, err := matches.GroupForVideo(ctx, "sparring_002")
					convey.So(err, convey.ShouldBeNil)
					convey.So(ok, convey.ShouldBeTrue)
					convey.So(groupCtx.MatchName, convey.ShouldEqual, "Match 1")
					convey.So(groupCtx.VideoPart, convey.ShouldEqual, 2)
				})
			})
		})

		convey.Convey("When the config is invalid", func() {
			_, err := Run(ctx, &Config{DataRoot: t.TempDir()})
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
