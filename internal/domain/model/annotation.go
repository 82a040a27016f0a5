package model

import (
	"github.com/okian/dojang/internal/domain/types"
)

// DocumentVersion is written into every persisted annotation document.
const DocumentVersion = "1.1"

// Annotation is one human-corrected record for one event+fighter. It
// carries the nine-layer taxonomy plus the scoreboard and match context
// captured at save time. JSON names match the persisted format exactly
// so externally produced documents round-trip unchanged.
//
// The nine layers and the scoreboard snapshot are nullable: an absent
// value means the annotator made no call, which is distinct from any
// concrete option.
type Annotation struct {
	VideoPath    string  `json:"video_path"`
	StartFrame   int     `json:"start_frame"`
	EndFrame     int     `json:"end_frame"`
	FighterColor string  `json:"fighter_color"`
	Technique    string  `json:"technique"`
	TechniqueID  int     `json:"technique_id"`
	TargetZone   string  `json:"target_zone"`
	Annotator    string  `json:"annotator"`
	Source       string  `json:"source"`
	Confidence   float64 `json:"confidence"`
	AnnotatedBy  string  `json:"annotated_by"`
	Notes        string  `json:"notes"`
	CreatedAt    string  `json:"created_at"`
	AnnotationID string  `json:"annotation_id"`

	// The nine annotation layers (attitude, stance, role, type, leg,
	// technique, target, value, penalty); technique and target are the
	// dedicated fields above.
	Attitude     *string `json:"attitude"`
	GuardStance  *string `json:"guard_stance"`
	Role         *string `json:"role"`
	ActionType   *string `json:"action_type"`
	LegUsed      *string `json:"leg_used"`
	ScoringValue *string `json:"scoring_value"`
	Penalty      *string `json:"penalty"`

	// Scoreboard snapshot at the moment of annotation.
	ScoreboardRed   *int    `json:"scoreboard_red"`
	ScoreboardBlue  *int    `json:"scoreboard_blue"`
	ScoreboardRound *string `json:"scoreboard_round"`

	// Match context, denormalized at save time.
	MatchName *string `json:"match_name"`
	VideoPart *int    `json:"video_part"`
}

// Key returns the identity key used for annotation matching.
func (a Annotation) Key() types.EventKey {
	return types.EventKey{
		StartFrame:   a.StartFrame,
		EndFrame:     a.EndFrame,
		FighterColor: types.NormalizeColor(a.FighterColor),
	}
}

// AnnotationSet is the persisted per-video annotation document.
// NumAnnotations is derived from len(Annotations) on every save and is
// never independently mutated.
type AnnotationSet struct {
	Version        string       `json:"version"`
	CreatedAt      string       `json:"created_at"`
	NumAnnotations int          `json:"num_annotations"`
	Annotations    []Annotation `json:"annotations"`
}

// Correction carries the annotator's corrected values for one event.
// Zero-valued fields fall back to the source event (or a neutral
// default) during upsert.
type Correction struct {
	FighterColor string `json:"fighter_color,omitempty"`
	Technique    string `json:"technique,omitempty"`
	TargetZone   string `json:"target_zone,omitempty"`
	Notes        string `json:"notes,omitempty"`

	Attitude     *string `json:"attitude,omitempty"`
	GuardStance  *string `json:"guard_stance,omitempty"`
	Role         *string `json:"role,omitempty"`
	ActionType   *string `json:"action_type,omitempty"`
	LegUsed      *string `json:"leg_used,omitempty"`
	ScoringValue *string `json:"scoring_value,omitempty"`
	Penalty      *string `json:"penalty,omitempty"`

	ScoreboardRed   *int    `json:"scoreboard_red,omitempty"`
	ScoreboardBlue  *int    `json:"scoreboard_blue,omitempty"`
	ScoreboardRound *string `json:"scoreboard_round,omitempty"`

	MatchName *string `json:"match_name,omitempty"`
	VideoPart *int    `json:"video_part,omitempty"`
}
