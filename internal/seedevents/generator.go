package seedevents

import (
	"fmt"
	"math/rand"

	"github.com/okian/dojang/internal/domain/model"
	"github.com/okian/dojang/internal/domain/taxonomy"
)

// Constants for event span generation, in frames.
const (
	minSpanFrames = 8
	maxSpanFrames = 45
	minGapFrames  = 12
	maxGapFrames  = 120
)

// Constants for confidence distribution cases.
const (
	caseConfident     = 0
	caseModerate      = 1
	caseUncertain     = 2
	confidenceDivisor = 4
)

var fighterColors = []string{"red", "blue"}

var classifierTiers = []string{"pose_lstm", "rule_based"}

// generateVideoEvents produces a plausible event timeline for one
// video: non-overlapping spans in frame order with colors drawn at
// random and timestamps derived from the frame rate.
func generateVideoEvents(rng *rand.Rand, count int, fps float64) []model.TechniqueEvent {
	events := make([]model.TechniqueEvent, 0, count)
	frame := minGapFrames + rng.Intn(maxGapFrames)
	for i := 0; i < count; i++ {
		span := minSpanFrames + rng.Intn(maxSpanFrames-minSpanFrames)
		start := frame
		end := start + span
		events = append(events, model.TechniqueEvent{
			StartFrame:     start,
			EndFrame:       end,
			StartTimestamp: float64(start) / fps,
			EndTimestamp:   float64(end) / fps,
			FighterColor:   fighterColors[rng.Intn(len(fighterColors))],
			Technique:      taxonomy.TechniqueClasses[rng.Intn(len(taxonomy.TechniqueClasses))],
			Confidence:     generateConfidence(rng),
			TargetZone:     "trunk",
			ClassifierTier: classifierTiers[rng.Intn(len(classifierTiers))],
		})
		frame = end + minGapFrames + rng.Intn(maxGapFrames-minGapFrames)
	}
	return events
}

// generateConfidence draws a confidence with a distribution skewed
// toward confident detections, matching what the pipeline emits.
func generateConfidence(rng *rand.Rand) float64 {
	switch rng.Intn(confidenceDivisor) {
	case caseConfident, caseModerate:
		// Most detections land in 0.75 - 0.95.
		return 0.75 + rng.Float64()*0.20
	case caseUncertain:
		// Borderline calls in 0.40 - 0.75.
		return 0.40 + rng.Float64()*0.35
	default:
		// Occasional low-confidence noise.
		return 0.10 + rng.Float64()*0.30
	}
}

// videoStem formats the stem for the i-th generated video.
func videoStem(prefix string, i int) string {
	return fmt.Sprintf("%s_%03d", prefix, i+1)
}
