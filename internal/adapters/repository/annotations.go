package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/dojang/internal/adapters/blobstore"
	"github.com/okian/dojang/internal/domain/model"
	"github.com/okian/dojang/internal/domain/taxonomy"
	"github.com/okian/dojang/internal/domain/types"
	"github.com/okian/dojang/pkg/metrics"
)

const (
	annotationsSuffix = "_annotations.json"
	backupSuffix      = ".bak"

	defaultTargetZone    = "trunk"
	defaultClassifier    = "rule_based"
	annotatorFirstWrite  = "manual"
	annotatorRewrite     = "verified"
	createdAtLayout      = "2006-01-02T15:04:05.999999"
	confirmedSourceStamp = "confirmed_"
)

// AnnotationsOption applies a configuration option to Annotations.
type AnnotationsOption func(*Annotations)

// WithPrettyJSON toggles indented persistence. Indented documents diff
// cleanly in backups and survive hand edits.
func WithPrettyJSON(pretty bool) AnnotationsOption {
	return func(a *Annotations) {
		a.pretty = pretty
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) AnnotationsOption {
	return func(a *Annotations) {
		if now != nil {
			a.now = now
		}
	}
}

// Annotations persists per-video annotation documents. Every mutation
// is a full read-modify-write of the video's document, serialized by a
// per-video mutex; the write itself is a rolling backup followed by an
// atomic swap.
type Annotations struct {
	blobs  *blobstore.Store
	pretty bool
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewAnnotations creates the annotation repository.
func NewAnnotations(blobs *blobstore.Store, opts ...AnnotationsOption) *Annotations {
	a := &Annotations{
		blobs:  blobs,
		pretty: true,
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Annotations) videoLock(videoStem string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	lock, ok := a.locks[videoStem]
	if !ok {
		lock = &sync.Mutex{}
		a.locks[videoStem] = lock
	}
	return lock
}

func (a *Annotations) key(videoStem string) string {
	return annotationsDir + "/" + videoStem + annotationsSuffix
}

// Load returns a video's annotation document. A video that was never
// annotated yields a fresh empty document; a document that exists but
// does not parse is an error, never silently replaced.
func (a *Annotations) Load(ctx context.Context, videoStem string) (model.AnnotationSet, error) {
	data, err := a.blobs.Read(ctx, a.key(videoStem))
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return model.AnnotationSet{
				Version:     model.DocumentVersion,
				CreatedAt:   a.now().Format(createdAtLayout),
				Annotations: []model.Annotation{},
			}, nil
		}
		return model.AnnotationSet{}, fmt.Errorf("load annotations for %q: %w", videoStem, err)
	}

	var set model.AnnotationSet
	if err := json.Unmarshal(data, &set); err != nil {
		return model.AnnotationSet{}, fmt.Errorf("%w: annotations for %q: %v", ErrMalformedDocument, videoStem, err)
	}
	return set, nil
}

// Save persists a document with a rolling backup. The previous version
// is copied to .bak first, so one bad write never loses prior work.
func (a *Annotations) Save(ctx context.Context, videoStem string, set model.AnnotationSet) error {
	lock := a.videoLock(videoStem)
	lock.Lock()
	defer lock.Unlock()
	return a.save(ctx, videoStem, set)
}

// save expects the video lock to be held.
func (a *Annotations) save(ctx context.Context, videoStem string, set model.AnnotationSet) error {
	key := a.key(videoStem)

	if err := a.blobs.Copy(ctx, key, key+backupSuffix); err != nil {
		if !errors.Is(err, blobstore.ErrNotFound) {
			metrics.RecordStoreSaveError()
			return fmt.Errorf("backup annotations for %q: %w", videoStem, err)
		}
	} else {
		metrics.RecordStoreBackup()
	}

	// Derived field, recomputed on every save.
	set.NumAnnotations = len(set.Annotations)
	if set.Version == "" {
		set.Version = model.DocumentVersion
	}
	if set.CreatedAt == "" {
		set.CreatedAt = a.now().Format(createdAtLayout)
	}

	data, err := a.marshal(set)
	if err != nil {
		metrics.RecordStoreSaveError()
		return fmt.Errorf("encode annotations for %q: %w", videoStem, err)
	}

	start := time.Now()
	if err := a.blobs.Write(ctx, key, data); err != nil {
		metrics.RecordStoreSaveError()
		return fmt.Errorf("write annotations for %q: %w", videoStem, err)
	}
	metrics.RecordStoreSave(float64(time.Since(start).Milliseconds()))
	return nil
}

func (a *Annotations) marshal(set model.AnnotationSet) ([]byte, error) {
	if a.pretty {
		return json.MarshalIndent(set, "", "  ")
	}
	return json.Marshal(set)
}

// Upsert adds or replaces the annotation for an event. The identity
// key is (start_frame, end_frame, fighter_color), with the correction's
// fighter color taking precedence over the event's. An existing
// annotation keeps its annotation_id and is marked verified; a new one
// gets a fresh id and is marked manual.
func (a *Annotations) Upsert(ctx context.Context, videoStem string, event model.TechniqueEvent, corr model.Correction, annotatedBy string) (string, error) {
	lock := a.videoLock(videoStem)
	lock.Lock()
	defer lock.Unlock()

	set, err := a.Load(ctx, videoStem)
	if err != nil {
		return "", err
	}

	color := corr.FighterColor
	if color == "" {
		color = event.FighterColor
	}
	color = types.NormalizeColor(color)

	key := types.EventKey{
		StartFrame:   event.StartFrame,
		EndFrame:     event.EndFrame,
		FighterColor: color,
	}

	existing := -1
	for i, ann := range set.Annotations {
		if ann.Key() == key {
			existing = i
			break
		}
	}

	technique := corr.Technique
	if technique == "" {
		technique = event.Technique
	}
	if technique == "" {
		technique = taxonomy.DefaultTechnique
	}

	targetZone := corr.TargetZone
	if targetZone == "" {
		targetZone = event.TargetZone
	}
	if targetZone == "" {
		targetZone = defaultTargetZone
	}

	tier := event.ClassifierTier
	if tier == "" {
		tier = defaultClassifier
	}

	annotator := annotatorFirstWrite
	if existing >= 0 {
		annotator = annotatorRewrite
	}

	ann := model.Annotation{
		VideoPath:    videoStem + ".mp4",
		StartFrame:   event.StartFrame,
		EndFrame:     event.EndFrame,
		FighterColor: color,
		Technique:    technique,
		TechniqueID:  taxonomy.TechniqueID(technique),
		TargetZone:   targetZone,
		Annotator:    annotator,
		Source:       confirmedSourceStamp + tier,
		Confidence:   1.0,
		AnnotatedBy:  annotatedBy,
		Notes:        corr.Notes,
		CreatedAt:    a.now().Format(createdAtLayout),

		Attitude:     corr.Attitude,
		GuardStance:  corr.GuardStance,
		Role:         corr.Role,
		ActionType:   corr.ActionType,
		LegUsed:      corr.LegUsed,
		ScoringValue: corr.ScoringValue,
		Penalty:      corr.Penalty,

		ScoreboardRed:   corr.ScoreboardRed,
		ScoreboardBlue:  corr.ScoreboardBlue,
		ScoreboardRound: corr.ScoreboardRound,

		MatchName: corr.MatchName,
		VideoPart: corr.VideoPart,
	}

	if existing >= 0 {
		ann.AnnotationID = set.Annotations[existing].AnnotationID
		set.Annotations[existing] = ann
	} else {
		ann.AnnotationID = fmt.Sprintf("%s_%s_%d_%d_%s",
			videoStem, color, event.StartFrame, event.EndFrame, shortID())
		set.Annotations = append(set.Annotations, ann)
	}

	if err := a.save(ctx, videoStem, set); err != nil {
		return "", err
	}
	metrics.RecordAnnotationUpserted()
	return ann.AnnotationID, nil
}

// Delete removes the annotation matching the event key. It reports
// whether anything was removed; deleting an absent annotation is not
// an error and does not rewrite the document.
func (a *Annotations) Delete(ctx context.Context, videoStem string, key types.EventKey) (bool, error) {
	lock := a.videoLock(videoStem)
	lock.Lock()
	defer lock.Unlock()

	set, err := a.Load(ctx, videoStem)
	if err != nil {
		return false, err
	}

	kept := set.Annotations[:0:0]
	for _, ann := range set.Annotations {
		if ann.Key() != key {
			kept = append(kept, ann)
		}
	}
	if len(kept) == len(set.Annotations) {
		return false, nil
	}

	set.Annotations = kept
	if err := a.save(ctx, videoStem, set); err != nil {
		return false, err
	}
	metrics.RecordAnnotationDeleted()
	return true, nil
}

// Find returns the annotation matching the event key, if any.
func (a *Annotations) Find(ctx context.Context, videoStem string, key types.EventKey) (model.Annotation, bool, error) {
	set, err := a.Load(ctx, videoStem)
	if err != nil {
		return model.Annotation{}, false, err
	}
	for _, ann := range set.Annotations {
		if ann.Key() == key {
			return ann, true, nil
		}
	}
	return model.Annotation{}, false, nil
}

// Restore replaces a video's document with an imported one. The payload
// is validated before anything is written; a malformed import leaves
// the stored document untouched.
func (a *Annotations) Restore(ctx context.Context, videoStem string, payload []byte) (int, error) {
	var set model.AnnotationSet
	if err := json.Unmarshal(payload, &set); err != nil {
		return 0, fmt.Errorf("%w: annotations for %q: %v", ErrMalformedImport, videoStem, err)
	}
	if set.Annotations == nil {
		return 0, fmt.Errorf("%w: annotations for %q: missing annotations field", ErrMalformedImport, videoStem)
	}

	if err := a.Save(ctx, videoStem, set); err != nil {
		return 0, err
	}
	metrics.RecordAnnotationRestored()
	return len(set.Annotations), nil
}

// LatestScoreboard returns the most recent scoreboard reading in the
// document, scanning from the newest annotation backwards.
func LatestScoreboard(set model.AnnotationSet) (red, blue int, round string, ok bool) {
	for i := len(set.Annotations) - 1; i >= 0; i-- {
		ann := set.Annotations[i]
		if ann.ScoreboardRed == nil {
			continue
		}
		red = *ann.ScoreboardRed
		if ann.ScoreboardBlue != nil {
			blue = *ann.ScoreboardBlue
		}
		if ann.ScoreboardRound != nil {
			round = *ann.ScoreboardRound
		}
		return red, blue, round, true
	}
	return 0, 0, "", false
}

// NextUnannotated returns the index of the first event without an
// annotation, or 0 when every event is covered.
func NextUnannotated(events []model.TechniqueEvent, set model.AnnotationSet) int {
	keys := make(map[types.EventKey]struct{}, len(set.Annotations))
	for _, ann := range set.Annotations {
		keys[ann.Key()] = struct{}{}
	}
	for i, event := range events {
		if _, ok := keys[event.Key()]; !ok {
			return i
		}
	}
	return 0
}

func shortID() string {
	u := uuid.New()
	return fmt.Sprintf("%x", u[:4])
}
