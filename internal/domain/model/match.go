package model

// MatchVideo ties one recorded video file to its ordinal part within a
// match. Part numbering starts at 1.
type MatchVideo struct {
	VideoStem string `json:"video_stem"`
	Part      int    `json:"part"`
}

// MatchGroup is one named match with its fighters and ordered video
// parts. Videos are kept sorted by Part ascending.
type MatchGroup struct {
	RedName  string       `json:"red_name"`
	BlueName string       `json:"blue_name"`
	Videos   []MatchVideo `json:"videos"`
}

// MatchContext is the resolved match membership for a single video:
// which match it belongs to, its part number within that match, and
// the sibling parts.
type MatchContext struct {
	MatchName string       `json:"match_name"`
	VideoPart int          `json:"video_part"`
	RedName   string       `json:"red_name"`
	BlueName  string       `json:"blue_name"`
	Videos    []MatchVideo `json:"videos"`
}
