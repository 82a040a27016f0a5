// Package taxonomy holds the World Taekwondo sparring technique
// vocabulary and the nine annotation layers. All slices are declared in
// presentation order and must not be re-sorted.
package taxonomy

import "strings"

// UnknownTechniqueID is assigned when a technique name has no class in
// the pipeline vocabulary (annotation-only techniques).
const UnknownTechniqueID = 9

// DefaultTechnique is used when neither the correction nor the source
// event carries a technique.
const DefaultTechnique = "neutral_stance"

// TechniqueClasses maps the ten pipeline class IDs to canonical
// technique names.
var TechniqueClasses = map[int]string{
	0: "dollyo_chagi",
	1: "ap_chagi",
	2: "yeop_chagi",
	3: "dwit_chagi",
	4: "naeryo_chagi",
	5: "dwi_huryeo_chagi",
	6: "momtong_jireugi",
	7: "cut_kick",
	8: "block_defense",
	9: "neutral_stance",
}

var techniqueIDs = func() map[string]int {
	m := make(map[string]int, len(TechniqueClasses))
	for id, name := range TechniqueClasses {
		m[name] = id
	}
	return m
}()

// TechniqueID returns the pipeline class ID for a technique name.
// Annotation-only techniques fall back to UnknownTechniqueID.
func TechniqueID(technique string) int {
	if id, ok := techniqueIDs[technique]; ok {
		return id
	}
	return UnknownTechniqueID
}

// DisplayNames maps canonical technique names to coach shorthand.
// Includes annotation-only techniques that the pipeline never emits.
var DisplayNames = map[string]string{
	"dollyo_chagi":     "Dolyo",
	"ap_chagi":         "Apchagi",
	"yeop_chagi":       "Anchagi",
	"dwit_chagi":       "Tichagi",
	"naeryo_chagi":     "Neryo",
	"dwi_huryeo_chagi": "Hook",
	"momtong_jireugi":  "Punch",
	"cut_kick":         "Cut",
	"block_defense":    "Block",
	"neutral_stance":   "Neutral",
	"makloub":          "Makloub",
	"sweep":            "Sweep",
	"360_kick":         "360",
	"scorpion":         "Scorpion",
	"double_anchagi":   "Double Anchagi",
	"apal_min_foug":    "Apal Min Foug",
	"double":           "Double",
}

// DisplayName returns the coach shorthand for a technique, or the
// canonical name itself when no shorthand exists.
func DisplayName(technique string) string {
	if name, ok := DisplayNames[technique]; ok {
		return name
	}
	return technique
}

// Group is one coach category of techniques.
type Group struct {
	Name       string
	Techniques []string
}

// Groups lists the technique categories in presentation order.
var Groups = []Group{
	{Name: "Front", Techniques: []string{"ap_chagi", "naeryo_chagi", "momtong_jireugi"}},
	{Name: "Cut", Techniques: []string{"cut_kick"}},
	{Name: "Circular", Techniques: []string{"dollyo_chagi", "dwi_huryeo_chagi", "yeop_chagi"}},
	{Name: "Turning", Techniques: []string{"dwit_chagi", "makloub", "sweep", "360_kick", "scorpion"}},
	{Name: "Unclassified", Techniques: []string{"double_anchagi", "double", "apal_min_foug", "block_defense", "neutral_stance"}},
}

// GroupOf returns the category name for a technique, or "Unclassified"
// when the technique belongs to no group.
func GroupOf(technique string) string {
	for _, g := range Groups {
		for _, t := range g.Techniques {
			if t == technique {
				return g.Name
			}
		}
	}
	return "Unclassified"
}

// SpinningTechniques score double under WT rules.
var SpinningTechniques = map[string]bool{
	"dwit_chagi":       true,
	"dwi_huryeo_chagi": true,
	"360_kick":         true,
	"scorpion":         true,
}

// IsSpinning reports whether the technique is a spinning kick.
func IsSpinning(technique string) bool {
	return SpinningTechniques[technique]
}

// WTScoring maps scoring situations to point values.
var WTScoring = map[string]int{
	"punch_trunk":         1,
	"kick_trunk":          2,
	"kick_head":           3,
	"spinning_kick_trunk": 4,
	"spinning_kick_head":  5,
}

// DimensionOptions lists the allowed values per annotation layer, in
// presentation order. Layer order: attitude, stance, role, type, leg,
// technique, target, value, penalty (technique has its own Groups).
var DimensionOptions = map[string][]string{
	"attitude":     {"Forward", "Stationary", "Backward"},
	"guard_stance": {"Right Close", "Right Open", "Left Open", "Left Close"},
	"role":         {"Attack", "Contre Attack", "Defence"},
	"action_type":  {"Single", "Combination"},
	"leg_used":     {"Front", "Back", "Right", "Left"},
	"target_zone":  {"Head", "Body"},
	"scoring_value": {"No score", "1", "2", "3", "4", "6",
		"-1", "-2", "-3", "-4", "-6"},
	"penalty": {
		"None",
		"Fall (-1)", "Out (-1)", "Avoid (-1)", "Grab (-1)",
		"After Kalyo (-1)", "Hit below waist (-1)",
		"Kicking falling opponent (-1)", "Misconduct (-1)",
		"Fall 10 sec (-2)", "Out 10 sec (-2)", "Avoid 10 sec (-2)",
		"Apal min foug",
	},
}

// ValidOption reports whether value is an allowed option for the given
// layer. An unknown layer never validates.
func ValidOption(layer, value string) bool {
	for _, opt := range DimensionOptions[layer] {
		if opt == value {
			return true
		}
	}
	return false
}

// PenaltyPoints extracts the point value awarded to the opponent from a
// penalty label. Labels carry the value in parentheses; "None", empty,
// and unvalued labels yield 0.
func PenaltyPoints(penalty string) int {
	if penalty == "" || penalty == "None" {
		return 0
	}
	switch {
	case strings.Contains(penalty, "(-2)") || strings.Contains(penalty, "(+2)"):
		return 2
	case strings.Contains(penalty, "(-1)") || strings.Contains(penalty, "(+1)"):
		return 1
	}
	return 0
}
