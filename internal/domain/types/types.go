// Package types contains common types used across the application
package types

import "strings"

// Fighter colors as produced by the detection pipeline.
const (
	ColorRed     = "red"
	ColorBlue    = "blue"
	ColorReferee = "referee"
	ColorUnknown = "unknown"
)

// EventKey identifies one detected action span for one fighter.
// It is the identity key for annotation matching: at most one
// annotation exists per key per video.
type EventKey struct {
	StartFrame   int    `json:"start_frame"`
	EndFrame     int    `json:"end_frame"`
	FighterColor string `json:"fighter_color"`
}

// NormalizeColor folds case and surrounding whitespace before matching
// so casing variants share one identity key, and maps anything
// unrecognized to ColorUnknown.
func NormalizeColor(c string) string {
	switch strings.ToLower(strings.TrimSpace(c)) {
	case ColorRed:
		return ColorRed
	case ColorBlue:
		return ColorBlue
	case ColorReferee:
		return ColorReferee
	default:
		return ColorUnknown
	}
}
