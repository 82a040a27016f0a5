package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/okian/dojang/internal/adapters/blobstore"
	"github.com/okian/dojang/internal/domain/model"
	"github.com/okian/dojang/pkg/metrics"
)

const matchesKey = annotationsDir + "/_matches.json"

// Matches persists the match group registry: one document mapping
// match names to fighter names and ordered video parts.
type Matches struct {
	blobs  *blobstore.Store
	pretty bool

	mu sync.Mutex
}

// NewMatches creates the match group registry.
func NewMatches(blobs *blobstore.Store, opts ...MatchesOption) *Matches {
	m := &Matches{
		blobs:  blobs,
		pretty: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MatchesOption applies a configuration option to Matches.
type MatchesOption func(*Matches)

// WithMatchesPrettyJSON toggles indented persistence of the registry.
func WithMatchesPrettyJSON(pretty bool) MatchesOption {
	return func(m *Matches) {
		m.pretty = pretty
	}
}

// LoadAll returns every match group keyed by match name. A missing
// registry yields an empty map.
func (m *Matches) LoadAll(ctx context.Context) (map[string]model.MatchGroup, error) {
	data, err := m.blobs.Read(ctx, matchesKey)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return map[string]model.MatchGroup{}, nil
		}
		return nil, fmt.Errorf("load match registry: %w", err)
	}

	var groups map[string]model.MatchGroup
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("%w: match registry: %v", ErrMalformedDocument, err)
	}
	if groups == nil {
		groups = map[string]model.MatchGroup{}
	}
	return groups, nil
}

// SaveAll replaces the registry document.
func (m *Matches) SaveAll(ctx context.Context, groups map[string]model.MatchGroup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveAll(ctx, groups)
}

func (m *Matches) saveAll(ctx context.Context, groups map[string]model.MatchGroup) error {
	var (
		data []byte
		err  error
	)
	if m.pretty {
		data, err = json.MarshalIndent(groups, "", "  ")
	} else {
		data, err = json.Marshal(groups)
	}
	if err != nil {
		return fmt.Errorf("encode match registry: %w", err)
	}
	if err := m.blobs.Write(ctx, matchesKey, data); err != nil {
		return fmt.Errorf("write match registry: %w", err)
	}
	metrics.UpdateMatchGroups(len(groups))
	return nil
}

// UpsertGroup adds or updates a video within a match group. Fighter
// names only change when non-empty, a video entry is matched by stem
// and re-parted in place, and the group's videos stay sorted by part.
func (m *Matches) UpsertGroup(ctx context.Context, matchName, videoStem string, part int, redName, blueName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	groups, err := m.LoadAll(ctx)
	if err != nil {
		return err
	}

	group, ok := groups[matchName]
	if !ok {
		group = model.MatchGroup{RedName: redName, BlueName: blueName}
	}
	if redName != "" {
		group.RedName = redName
	}
	if blueName != "" {
		group.BlueName = blueName
	}

	found := false
	for i := range group.Videos {
		if group.Videos[i].VideoStem == videoStem {
			group.Videos[i].Part = part
			found = true
			break
		}
	}
	if !found {
		group.Videos = append(group.Videos, model.MatchVideo{VideoStem: videoStem, Part: part})
	}
	sort.SliceStable(group.Videos, func(i, j int) bool {
		return group.Videos[i].Part < group.Videos[j].Part
	})

	groups[matchName] = group
	return m.saveAll(ctx, groups)
}

// GroupForVideo resolves the match context for a video. Group names are
// scanned in sorted order so a video claimed by two groups always
// resolves to the same one. Videos outside any group yield ok=false.
func (m *Matches) GroupForVideo(ctx context.Context, videoStem string) (model.MatchContext, bool, error) {
	groups, err := m.LoadAll(ctx)
	if err != nil {
		return model.MatchContext{}, false, err
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		group := groups[name]
		for _, v := range group.Videos {
			if v.VideoStem != videoStem {
				continue
			}
			part := v.Part
			if part == 0 {
				part = 1
			}
			return model.MatchContext{
				MatchName: name,
				VideoPart: part,
				RedName:   group.RedName,
				BlueName:  group.BlueName,
				Videos:    group.Videos,
			}, true, nil
		}
	}
	return model.MatchContext{}, false, nil
}

// Group returns one match group by name.
func (m *Matches) Group(ctx context.Context, matchName string) (model.MatchGroup, error) {
	groups, err := m.LoadAll(ctx)
	if err != nil {
		return model.MatchGroup{}, err
	}
	group, ok := groups[matchName]
	if !ok {
		return model.MatchGroup{}, fmt.Errorf("%w: %s", ErrMatchNotFound, matchName)
	}
	return group, nil
}

// ListNames returns every match name, sorted ascending.
func (m *Matches) ListNames(ctx context.Context) ([]string, error) {
	groups, err := m.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Restore replaces the registry with an imported document, validating
// before writing.
func (m *Matches) Restore(ctx context.Context, payload []byte) (int, error) {
	var groups map[string]model.MatchGroup
	if err := json.Unmarshal(payload, &groups); err != nil {
		return 0, fmt.Errorf("%w: match registry: %v", ErrMalformedImport, err)
	}
	if groups == nil {
		groups = map[string]model.MatchGroup{}
	}
	if err := m.SaveAll(ctx, groups); err != nil {
		return 0, err
	}
	return len(groups), nil
}
