// Package inference derives default annotation values for one fighter
// from the other fighter's committed layers. The rules are relational:
// roles and attitudes mirror each other, and a penalty awards points to
// the opponent. Suggestions are defaults only and never overwrite a
// value the annotator already set.
package inference

import (
	"strconv"

	"github.com/okian/dojang/internal/domain/taxonomy"
)

// Default mirror tables. Defence mirrors to Attack because a defending
// fighter implies the opponent initiated.
var (
	defaultRoleMirror = map[string]string{
		"Attack":        "Contre Attack",
		"Contre Attack": "Attack",
		"Defence":       "Attack",
	}
	defaultAttitudeMirror = map[string]string{
		"Forward":    "Backward",
		"Backward":   "Forward",
		"Stationary": "Stationary",
	}
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithRoleMirror replaces the role mirror table.
func WithRoleMirror(mirror map[string]string) Option {
	return func(e *Engine) {
		if len(mirror) == 0 {
			return
		}
		e.roleMirror = make(map[string]string, len(mirror))
		for k, v := range mirror {
			e.roleMirror[k] = v
		}
	}
}

// WithAttitudeMirror replaces the attitude mirror table.
func WithAttitudeMirror(mirror map[string]string) Option {
	return func(e *Engine) {
		if len(mirror) == 0 {
			return
		}
		e.attitudeMirror = make(map[string]string, len(mirror))
		for k, v := range mirror {
			e.attitudeMirror[k] = v
		}
	}
}

// Snapshot carries the layers of one fighter that drive suggestions for
// the opponent. Nil means the layer was not set.
type Snapshot struct {
	Attitude *string
	Role     *string
	Penalty  *string
}

// Suggestion holds derived defaults for the opposite fighter. Nil means
// no rule produced a value for that layer.
type Suggestion struct {
	Attitude     *string
	Role         *string
	ScoringValue *string
}

// Suggester derives opponent defaults from one fighter's snapshot.
type Suggester interface {
	Suggest(other Snapshot) Suggestion
}

// Engine implements Suggester with configurable mirror tables.
type Engine struct {
	roleMirror     map[string]string
	attitudeMirror map[string]string
}

// NewEngine creates an Engine with the default mirror tables.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		roleMirror:     defaultRoleMirror,
		attitudeMirror: defaultAttitudeMirror,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Suggest derives defaults for a fighter from the opponent's snapshot.
func (e *Engine) Suggest(other Snapshot) Suggestion {
	var s Suggestion
	if other.Attitude != nil {
		if mirrored, ok := e.attitudeMirror[*other.Attitude]; ok {
			s.Attitude = &mirrored
		}
	}
	if other.Role != nil {
		if mirrored, ok := e.roleMirror[*other.Role]; ok {
			s.Role = &mirrored
		}
	}
	if other.Penalty != nil {
		if pts := taxonomy.PenaltyPoints(*other.Penalty); pts > 0 {
			value := strconv.Itoa(pts)
			s.ScoringValue = &value
		}
	}
	return s
}

// MirrorRole resolves a role against the default mirror table.
func MirrorRole(role string) (string, bool) {
	mirrored, ok := defaultRoleMirror[role]
	return mirrored, ok
}

// MirrorAttitude resolves an attitude against the default mirror table.
func MirrorAttitude(attitude string) (string, bool) {
	mirrored, ok := defaultAttitudeMirror[attitude]
	return mirrored, ok
}

// ExpectedRole returns the role the mirror table expects the opponent
// to hold, and whether the table covers the given role.
func (e *Engine) ExpectedRole(role string) (string, bool) {
	mirrored, ok := e.roleMirror[role]
	return mirrored, ok
}

// RolesConsistent reports whether two committed roles satisfy the
// mirror relation. Unset or uncovered roles are never inconsistent.
func (e *Engine) RolesConsistent(role, otherRole *string) bool {
	if role == nil || otherRole == nil {
		return true
	}
	expected, ok := e.roleMirror[*role]
	if !ok {
		return true
	}
	return *otherRole == expected
}
