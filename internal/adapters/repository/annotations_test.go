package repository_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	repository "github.com/okian/dojang/internal/adapters/repository"
	model "github.com/okian/dojang/internal/domain/model"
	"github.com/okian/dojang/internal/domain/types"
	"github.com/smartystreets/goconvey/convey"
)

var testEvent = model.TechniqueEvent{
	StartFrame:     120,
	EndFrame:       168,
	StartTimestamp: 4.0,
	FighterColor:   "red",
	Technique:      "dollyo_chagi",
	Confidence:     0.9,
	ClassifierTier: "pose_model",
}

func TestAnnotationsUpsert(t *testing.T) {
	convey.Convey("Given an annotation repository", t, func() {
		ctx := context.Background()
		blobs := newTestBlobs(t)
		repo := repository.NewAnnotations(blobs)

		convey.Convey("When annotating an event for the first time", func() {
			id, err := repo.Upsert(ctx, "match01", testEvent, model.Correction{Technique: "ap_chagi"}, "Luke")
			convey.So(err, convey.ShouldBeNil)

			set, err := repo.Load(ctx, "match01")
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then one annotation exists with a fresh id", func() {
				convey.So(set.Annotations, convey.ShouldHaveLength, 1)
				convey.So(set.NumAnnotations, convey.ShouldEqual, 1)
				convey.So(id, convey.ShouldStartWith, "match01_red_120_168_")

				ann := set.Annotations[0]
				convey.So(ann.Technique, convey.ShouldEqual, "ap_chagi")
				convey.So(ann.TechniqueID, convey.ShouldEqual, 1)
				convey.So(ann.Annotator, convey.ShouldEqual, "manual")
				convey.So(ann.Source, convey.ShouldEqual, "confirmed_pose_model")
				convey.So(ann.Confidence, convey.ShouldEqual, 1.0)
				convey.So(ann.AnnotatedBy, convey.ShouldEqual, "Luke")
				convey.So(ann.VideoPath, convey.ShouldEqual, "match01.mp4")
			})
		})

		convey.Convey("When annotating the same event twice", func() {
			first, err := repo.Upsert(ctx, "match01", testEvent, model.Correction{Technique: "ap_chagi"}, "Luke")
			convey.So(err, convey.ShouldBeNil)
			second, err := repo.Upsert(ctx, "match01", testEvent, model.Correction{Technique: "yeop_chagi"}, "Coach Mehdi")
			convey.So(err, convey.ShouldBeNil)

			set, err := repo.Load(ctx, "match01")
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the annotation is replaced, not duplicated", func() {
				convey.So(set.Annotations, convey.ShouldHaveLength, 1)
				convey.So(set.Annotations[0].Technique, convey.ShouldEqual, "yeop_chagi")
				convey.So(set.Annotations[0].Annotator, convey.ShouldEqual, "verified")
			})

			convey.Convey("Then the annotation id is preserved", func() {
				convey.So(second, convey.ShouldEqual, first)
			})
		})

		convey.Convey("When annotating both fighters on the same span", func() {
			_, err := repo.Upsert(ctx, "match01", testEvent, model.Correction{Technique: "ap_chagi"}, "Luke")
			convey.So(err, convey.ShouldBeNil)
			_, err = repo.Upsert(ctx, "match01", testEvent,
				model.Correction{FighterColor: "blue", Technique: "block_defense"}, "Luke")
			convey.So(err, convey.ShouldBeNil)

			set, err := repo.Load(ctx, "match01")
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the fighters get separate annotations", func() {
				convey.So(set.Annotations, convey.ShouldHaveLength, 2)
				convey.So(set.Annotations[0].FighterColor, convey.ShouldEqual, "red")
				convey.So(set.Annotations[1].FighterColor, convey.ShouldEqual, "blue")
			})
		})

		convey.Convey("When the correction carries no technique", func() {
			bare := model.TechniqueEvent{StartFrame: 1, EndFrame: 2, FighterColor: "red"}
			_, err := repo.Upsert(ctx, "match01", bare, model.Correction{}, "Luke")
			convey.So(err, convey.ShouldBeNil)

			ann, found, err := repo.Find(ctx, "match01", bare.Key())
			convey.So(err, convey.ShouldBeNil)
			convey.So(found, convey.ShouldBeTrue)

			convey.Convey("Then the neutral fallbacks apply", func() {
				convey.So(ann.Technique, convey.ShouldEqual, "neutral_stance")
				convey.So(ann.TechniqueID, convey.ShouldEqual, 9)
				convey.So(ann.TargetZone, convey.ShouldEqual, "trunk")
				convey.So(ann.Source, convey.ShouldEqual, "confirmed_rule_based")
			})
		})

		convey.Convey("When the correction carries layers and scoreboard", func() {
			role := "Attack"
			red := 3
			corr := model.Correction{
				Technique:     "dwit_chagi",
				Role:          &role,
				ScoreboardRed: &red,
			}
			_, err := repo.Upsert(ctx, "match01", testEvent, corr, "Coach Mehdi")
			convey.So(err, convey.ShouldBeNil)

			ann, found, err := repo.Find(ctx, "match01", testEvent.Key())
			convey.So(err, convey.ShouldBeNil)
			convey.So(found, convey.ShouldBeTrue)
			convey.So(*ann.Role, convey.ShouldEqual, "Attack")
			convey.So(*ann.ScoreboardRed, convey.ShouldEqual, 3)
			convey.So(ann.Attitude, convey.ShouldBeNil)
		})
	})
}

func TestAnnotationsSaveAndBackup(t *testing.T) {
	convey.Convey("Given a repository with a saved document", t, func() {
		ctx := context.Background()
		blobs := newTestBlobs(t)
		fixed := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
		repo := repository.NewAnnotations(blobs,
			repository.WithClock(func() time.Time { return fixed }))

		_, err := repo.Upsert(ctx, "match01", testEvent, model.Correction{Technique: "ap_chagi"}, "Luke")
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When saving again", func() {
			_, err := repo.Upsert(ctx, "match01", testEvent, model.Correction{Technique: "yeop_chagi"}, "Luke")
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then the previous version lands in the backup", func() {
				backup, err := blobs.Read(ctx, "annotations/match01_annotations.json.bak")
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(backup), convey.ShouldContainSubstring, `"ap_chagi"`)

				current, err := blobs.Read(ctx, "annotations/match01_annotations.json")
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(current), convey.ShouldContainSubstring, `"yeop_chagi"`)
			})
		})

		convey.Convey("When inspecting the persisted document", func() {
			raw, err := blobs.Read(ctx, "annotations/match01_annotations.json")
			convey.So(err, convey.ShouldBeNil)

			convey.Convey("Then it is indented and stamped", func() {
				convey.So(strings.Contains(string(raw), "\n  \"version\": \"1.1\""), convey.ShouldBeTrue)
				convey.So(string(raw), convey.ShouldContainSubstring, "2026-08-29T10:00:00")
			})
		})

		convey.Convey("When the stored document is corrupt", func() {
			convey.So(blobs.Write(ctx, "annotations/match01_annotations.json", []byte("{broken")), convey.ShouldBeNil)

			_, err := repo.Load(ctx, "match01")

			convey.Convey("Then loading fails instead of silently resetting", func() {
				convey.So(errors.Is(err, repository.ErrMalformedDocument), convey.ShouldBeTrue)
			})
		})
	})

	convey.Convey("Given a repository with compact persistence", t, func() {
		ctx := context.Background()
		blobs := newTestBlobs(t)
		repo := repository.NewAnnotations(blobs, repository.WithPrettyJSON(false))

		_, err := repo.Upsert(ctx, "match01", testEvent, model.Correction{}, "Luke")
		convey.So(err, convey.ShouldBeNil)

		raw, err := blobs.Read(ctx, "annotations/match01_annotations.json")
		convey.So(err, convey.ShouldBeNil)
		convey.So(strings.Contains(string(raw), "\n"), convey.ShouldBeFalse)
	})
}

func TestAnnotationsDeleteAndRestore(t *testing.T) {
	convey.Convey("Given a repository with one annotation", t, func() {
		ctx := context.Background()
		blobs := newTestBlobs(t)
		repo := repository.NewAnnotations(blobs)

		_, err := repo.Upsert(ctx, "match01", testEvent, model.Correction{Technique: "ap_chagi"}, "Luke")
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("When deleting it", func() {
			removed, err := repo.Delete(ctx, "match01", testEvent.Key())
			convey.So(err, convey.ShouldBeNil)
			convey.So(removed, convey.ShouldBeTrue)

			set, err := repo.Load(ctx, "match01")
			convey.So(err, convey.ShouldBeNil)
			convey.So(set.Annotations, convey.ShouldBeEmpty)
			convey.So(set.NumAnnotations, convey.ShouldEqual, 0)

			convey.Convey("Then deleting again reports nothing removed", func() {
				removed, err := repo.Delete(ctx, "match01", testEvent.Key())
				convey.So(err, convey.ShouldBeNil)
				convey.So(removed, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When deleting a different fighter on the same span", func() {
			removed, err := repo.Delete(ctx, "match01", types.EventKey{
				StartFrame: 120, EndFrame: 168, FighterColor: "blue",
			})
			convey.So(err, convey.ShouldBeNil)
			convey.So(removed, convey.ShouldBeFalse)
		})

		convey.Convey("When restoring a valid export", func() {
			payload := []byte(`{
				"version": "1.1", "created_at": "2026-08-01T00:00:00",
				"num_annotations": 2,
				"annotations": [
					{"video_path": "match01.mp4", "start_frame": 1, "end_frame": 2,
					 "fighter_color": "red", "technique": "cut_kick"},
					{"video_path": "match01.mp4", "start_frame": 3, "end_frame": 4,
					 "fighter_color": "blue", "technique": "ap_chagi"}
				]
			}`)

			count, err := repo.Restore(ctx, "match01", payload)
			convey.So(err, convey.ShouldBeNil)
			convey.So(count, convey.ShouldEqual, 2)

			set, err := repo.Load(ctx, "match01")
			convey.So(err, convey.ShouldBeNil)
			convey.So(set.Annotations, convey.ShouldHaveLength, 2)
		})

		convey.Convey("When restoring a malformed payload", func() {
			_, err := repo.Restore(ctx, "match01", []byte("not json at all"))

			convey.Convey("Then the error is recoverable and the store untouched", func() {
				convey.So(errors.Is(err, repository.ErrMalformedImport), convey.ShouldBeTrue)

				set, lerr := repo.Load(ctx, "match01")
				convey.So(lerr, convey.ShouldBeNil)
				convey.So(set.Annotations, convey.ShouldHaveLength, 1)
			})
		})

		convey.Convey("When restoring a payload without annotations", func() {
			_, err := repo.Restore(ctx, "match01", []byte(`{"version": "1.1"}`))
			convey.So(errors.Is(err, repository.ErrMalformedImport), convey.ShouldBeTrue)
		})
	})
}

func TestAnnotationsHelpers(t *testing.T) {
	convey.Convey("Given events and a partially annotated document", t, func() {
		events := []model.TechniqueEvent{
			{StartFrame: 1, EndFrame: 2, FighterColor: "red"},
			{StartFrame: 3, EndFrame: 4, FighterColor: "blue"},
			{StartFrame: 5, EndFrame: 6, FighterColor: "red"},
		}
		set := model.AnnotationSet{Annotations: []model.Annotation{
			{StartFrame: 1, EndFrame: 2, FighterColor: "red"},
		}}

		convey.Convey("Then the next unannotated cursor skips covered events", func() {
			convey.So(repository.NextUnannotated(events, set), convey.ShouldEqual, 1)
		})

		convey.Convey("Then full coverage wraps the cursor to zero", func() {
			full := model.AnnotationSet{Annotations: []model.Annotation{
				{StartFrame: 1, EndFrame: 2, FighterColor: "red"},
				{StartFrame: 3, EndFrame: 4, FighterColor: "blue"},
				{StartFrame: 5, EndFrame: 6, FighterColor: "red"},
			}}
			convey.So(repository.NextUnannotated(events, full), convey.ShouldEqual, 0)
		})
	})

	convey.Convey("Given a document with scoreboard readings", t, func() {
		three, one := 3, 1
		round := "R2"
		set := model.AnnotationSet{Annotations: []model.Annotation{
			{ScoreboardRed: &one, ScoreboardBlue: &one},
			{ScoreboardRed: &three, ScoreboardBlue: &one, ScoreboardRound: &round},
			{},
		}}

		convey.Convey("Then the newest reading wins", func() {
			red, blue, gotRound, ok := repository.LatestScoreboard(set)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(red, convey.ShouldEqual, 3)
			convey.So(blue, convey.ShouldEqual, 1)
			convey.So(gotRound, convey.ShouldEqual, "R2")
		})

		convey.Convey("Then a document without readings reports none", func() {
			_, _, _, ok := repository.LatestScoreboard(model.AnnotationSet{})
			convey.So(ok, convey.ShouldBeFalse)
		})
	})
}
