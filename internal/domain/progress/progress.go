// Package progress aggregates annotation coverage for single videos and
// for multi-part matches.
package progress

import (
	"math"
	"sort"

	"github.com/okian/dojang/internal/domain/model"
)

// Stats summarizes annotation coverage for one video.
type Stats struct {
	TotalEvents int            `json:"total_events"`
	Annotated   int            `json:"annotated"`
	Remaining   int            `json:"remaining"`
	ProgressPct float64        `json:"progress_pct"`
	ByAnnotator map[string]int `json:"by_annotator"`
	ByTechnique map[string]int `json:"by_technique"`
}

// VideoStats is the read shape served for one video: coverage plus the
// latest scoreboard reading and the next unannotated event index.
type VideoStats struct {
	Stats
	TechniqueTargetPct map[string]float64 `json:"technique_target_pct"`
	ScoreboardRed      int                `json:"scoreboard_red"`
	ScoreboardBlue     int                `json:"scoreboard_blue"`
	ScoreboardRound    string             `json:"scoreboard_round"`
	NextUnannotated    int                `json:"next_unannotated"`
}

// PartStats is the coverage of one video part within a match.
type PartStats struct {
	Part      int    `json:"part"`
	VideoStem string `json:"video_stem"`
	Stats     Stats  `json:"stats"`
}

// MatchStats is the combined coverage across the parts of a match.
type MatchStats struct {
	TotalEvents int            `json:"total_events"`
	Annotated   int            `json:"annotated"`
	Remaining   int            `json:"remaining"`
	ProgressPct float64        `json:"progress_pct"`
	Parts       []PartStats    `json:"parts"`
	ByTechnique map[string]int `json:"by_technique"`
}

// Compute builds coverage stats from a video's annotations and its
// total event count. A missing annotated_by counts under "Unknown".
func Compute(annotations []model.Annotation, totalEvents int) Stats {
	byAnnotator := make(map[string]int)
	byTechnique := make(map[string]int)
	for _, ann := range annotations {
		who := ann.AnnotatedBy
		if who == "" {
			who = "Unknown"
		}
		byAnnotator[who]++
		tech := ann.Technique
		if tech == "" {
			tech = "unknown"
		}
		byTechnique[tech]++
	}

	annotated := len(annotations)
	remaining := totalEvents - annotated
	if remaining < 0 {
		remaining = 0
	}
	return Stats{
		TotalEvents: totalEvents,
		Annotated:   annotated,
		Remaining:   remaining,
		ProgressPct: pct(annotated, totalEvents),
		ByAnnotator: byAnnotator,
		ByTechnique: byTechnique,
	}
}

// CombineMatch merges per-part stats into a match-level summary. Parts
// are re-sorted by part number so callers can pass them in any order.
func CombineMatch(parts []PartStats) MatchStats {
	sorted := make([]PartStats, len(parts))
	copy(sorted, parts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Part < sorted[j].Part })

	combined := MatchStats{
		Parts:       sorted,
		ByTechnique: make(map[string]int),
	}
	for _, p := range sorted {
		combined.TotalEvents += p.Stats.TotalEvents
		combined.Annotated += p.Stats.Annotated
		for tech, n := range p.Stats.ByTechnique {
			combined.ByTechnique[tech] += n
		}
	}
	combined.Remaining = combined.TotalEvents - combined.Annotated
	if combined.Remaining < 0 {
		combined.Remaining = 0
	}
	combined.ProgressPct = pct(combined.Annotated, combined.TotalEvents)
	return combined
}

// pct rounds to one decimal, capped at 100 so a document holding more
// annotations than the current events file reports full coverage. A
// zero total yields 0 rather than a division blowup.
func pct(annotated, total int) float64 {
	if total <= 0 {
		return 0
	}
	p := math.Round(float64(annotated)/float64(total)*1000) / 10
	if p > 100 {
		return 100
	}
	return p
}

// TargetPct reports per-technique dataset completion against the
// per-class collection target, each value capped at 100.
func TargetPct(byTechnique map[string]int, target int) map[string]float64 {
	if target <= 0 {
		return nil
	}
	out := make(map[string]float64, len(byTechnique))
	for tech, n := range byTechnique {
		out[tech] = pct(n, target)
	}
	return out
}
