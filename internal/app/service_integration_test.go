package service_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	service "github.com/okian/dojang/internal/app"
	"github.com/okian/dojang/internal/domain/inference"
	"github.com/okian/dojang/internal/domain/model"
	"github.com/okian/dojang/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func seedResults(t *testing.T, root, stem string, events []model.TechniqueEvent) {
	t.Helper()
	data, err := json.Marshal(events)
	if err != nil {
		t.Fatalf("marshal events: %v", err)
	}
	dir := filepath.Join(root, "results")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir results: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, stem+"_techniques.json"), data, 0o644); err != nil {
		t.Fatalf("write results: %v", err)
	}
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service over a seeded data root", t, func() {
		root := t.TempDir()
		seedResults(t, root, "match01", []model.TechniqueEvent{
			{StartFrame: 100, EndFrame: 140, StartTimestamp: 3.3, FighterColor: "red",
				Technique: "dollyo_chagi", Confidence: 0.9, ClassifierTier: "pose_model"},
			{StartFrame: 300, EndFrame: 360, StartTimestamp: 10.0, FighterColor: "blue",
				Technique: "cut_kick", Confidence: 0.8},
			{StartFrame: 500, EndFrame: 540, StartTimestamp: 16.6, FighterColor: "red",
				Technique: "ap_chagi", Confidence: 0.7},
		})

		svc := service.New(
			service.WithDataRoot(root),
			service.WithTargetPerTechnique(2),
		)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When listing videos", func() {
			videos, err := svc.ListVideos(ctx)
			So(err, ShouldBeNil)
			So(videos, ShouldResemble, []string{"match01"})
		})

		Convey("When loading events with a start filter", func() {
			events, err := svc.Events(ctx, "match01", 5.0)
			So(err, ShouldBeNil)
			So(events, ShouldHaveLength, 2)
			So(events[0].StartFrame, ShouldEqual, 300)
		})

		Convey("When annotating the first event", func() {
			events, err := svc.Events(ctx, "match01", 0)
			So(err, ShouldBeNil)

			id, err := svc.Annotate(ctx, "match01", events[0],
				model.Correction{Technique: "ap_chagi"}, "Luke")
			So(err, ShouldBeNil)
			So(id, ShouldStartWith, "match01_red_100_140_")

			Convey("Then stats reflect one of three annotated", func() {
				stats, err := svc.Stats(ctx, "match01", 0)
				So(err, ShouldBeNil)
				So(stats.TotalEvents, ShouldEqual, 3)
				So(stats.Annotated, ShouldEqual, 1)
				So(stats.ProgressPct, ShouldEqual, 33.3)
				So(stats.ByAnnotator["Luke"], ShouldEqual, 1)

				Convey("And the next unannotated cursor points past it", func() {
					So(stats.NextUnannotated, ShouldEqual, 1)
				})

				Convey("And technique completion tracks the collection target", func() {
					So(stats.TechniqueTargetPct["ap_chagi"], ShouldEqual, 50.0)
				})
			})

			Convey("Then re-annotating keeps the id and count", func() {
				again, err := svc.Annotate(ctx, "match01", events[0],
					model.Correction{Technique: "yeop_chagi"}, "Coach Mehdi")
				So(err, ShouldBeNil)
				So(again, ShouldEqual, id)

				set, err := svc.Annotations(ctx, "match01")
				So(err, ShouldBeNil)
				So(set.Annotations, ShouldHaveLength, 1)
				So(set.Annotations[0].Technique, ShouldEqual, "yeop_chagi")
			})

			Convey("Then deleting it zeroes the stats", func() {
				removed, err := svc.DeleteAnnotation(ctx, "match01", events[0].Key())
				So(err, ShouldBeNil)
				So(removed, ShouldBeTrue)

				stats, err := svc.Stats(ctx, "match01", 0)
				So(err, ShouldBeNil)
				So(stats.Annotated, ShouldEqual, 0)
				So(stats.ProgressPct, ShouldEqual, 0.0)
			})
		})

		Convey("When annotating with a scoreboard snapshot", func() {
			events, err := svc.Events(ctx, "match01", 0)
			So(err, ShouldBeNil)

			red, blue := 5, 2
			round := "R2"
			_, err = svc.Annotate(ctx, "match01", events[1], model.Correction{
				ScoreboardRed: &red, ScoreboardBlue: &blue, ScoreboardRound: &round,
			}, "Luke")
			So(err, ShouldBeNil)

			stats, err := svc.Stats(ctx, "match01", 0)
			So(err, ShouldBeNil)
			So(stats.ScoreboardRed, ShouldEqual, 5)
			So(stats.ScoreboardBlue, ShouldEqual, 2)
			So(stats.ScoreboardRound, ShouldEqual, "R2")
		})

		Convey("When grouping the video into a match", func() {
			So(svc.UpsertMatchGroup(ctx, "finals", "match01", 1, "Kim", "Lee"), ShouldBeNil)

			mctx, found, err := svc.MatchContext(ctx, "match01")
			So(err, ShouldBeNil)
			So(found, ShouldBeTrue)
			So(mctx.MatchName, ShouldEqual, "finals")
			So(mctx.RedName, ShouldEqual, "Kim")

			Convey("Then match stats combine the parts", func() {
				events, err := svc.Events(ctx, "match01", 0)
				So(err, ShouldBeNil)
				_, err = svc.Annotate(ctx, "match01", events[0], model.Correction{}, "Luke")
				So(err, ShouldBeNil)

				match, err := svc.MatchStats(ctx, "finals")
				So(err, ShouldBeNil)
				So(match.TotalEvents, ShouldEqual, 3)
				So(match.Annotated, ShouldEqual, 1)
				So(match.Parts, ShouldHaveLength, 1)
			})
		})

		Convey("When asking for opponent suggestions", func() {
			role := "Attack"
			pen := "Out 10 sec (-2)"
			sugg := svc.Suggest(ctx, inference.Snapshot{Role: &role, Penalty: &pen})

			So(*sugg.Role, ShouldEqual, "Contre Attack")
			So(*sugg.ScoringValue, ShouldEqual, "2")
		})

		Convey("When restoring an uploaded document", func() {
			payload := []byte(`{"version":"1.1","created_at":"2026-08-01T00:00:00",
				"num_annotations":1,"annotations":[
				{"video_path":"match01.mp4","start_frame":100,"end_frame":140,
				 "fighter_color":"red","technique":"cut_kick"}]}`)

			count, err := svc.RestoreAnnotations(ctx, "match01", payload)
			So(err, ShouldBeNil)
			So(count, ShouldEqual, 1)

			Convey("Then a malformed upload is rejected cleanly", func() {
				_, err := svc.RestoreAnnotations(ctx, "match01", []byte("nope"))
				So(err, ShouldNotBeNil)

				set, err := svc.Annotations(ctx, "match01")
				So(err, ShouldBeNil)
				So(set.Annotations, ShouldHaveLength, 1)
			})
		})
	})
}
