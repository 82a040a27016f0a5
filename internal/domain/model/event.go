// Package model contains domain models passed between layers.
package model

import (
	"github.com/okian/dojang/internal/domain/types"
)

// TechniqueEvent represents one detected action span attributed to one
// fighter, as produced by the upstream analysis pipeline. Field names
// mirror the persisted {video}_techniques.json format; events are
// immutable inputs and never written back.
type TechniqueEvent struct {
	StartFrame     int     `json:"start_frame"`
	EndFrame       int     `json:"end_frame"`
	StartTimestamp float64 `json:"start_timestamp"`
	EndTimestamp   float64 `json:"end_timestamp,omitempty"`
	FighterColor   string  `json:"fighter_color"`
	Technique      string  `json:"technique"`
	Confidence     float64 `json:"confidence"`
	TargetZone     string  `json:"target_zone,omitempty"`
	ClassifierTier string  `json:"classifier_tier,omitempty"`
}

// Key returns the identity key used for annotation matching.
func (e TechniqueEvent) Key() types.EventKey {
	return types.EventKey{
		StartFrame:   e.StartFrame,
		EndFrame:     e.EndFrame,
		FighterColor: types.NormalizeColor(e.FighterColor),
	}
}

// BoxMeta describes one detected bounding box on a thumbnail frame.
type BoxMeta struct {
	Box       int    `json:"box"`
	AutoColor string `json:"auto_color"`
}

// FrameMeta is the per-frame metadata sidecar written by the thumbnail
// extractor alongside each still image.
type FrameMeta struct {
	Boxes []BoxMeta `json:"boxes"`
}
