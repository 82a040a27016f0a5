package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/okian/dojang/internal/adapters/blobstore"
	"github.com/okian/dojang/pkg/metrics"
)

const annotatorsKey = annotationsDir + "/annotators.json"

// AnnotatorBook tracks who annotates. Built-in defaults are always
// listed first; saved names follow in insertion order with duplicates
// collapsed.
type AnnotatorBook struct {
	blobs    *blobstore.Store
	defaults []string

	mu sync.Mutex
}

// NewAnnotatorBook creates the annotator book with the given defaults.
func NewAnnotatorBook(blobs *blobstore.Store, defaults []string) *AnnotatorBook {
	return &AnnotatorBook{
		blobs:    blobs,
		defaults: append([]string(nil), defaults...),
	}
}

// List returns all known annotators, defaults first.
func (b *AnnotatorBook) List(ctx context.Context) ([]string, error) {
	data, err := b.blobs.Read(ctx, annotatorsKey)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return append([]string(nil), b.defaults...), nil
		}
		return nil, fmt.Errorf("load annotators: %w", err)
	}

	var saved []string
	if err := json.Unmarshal(data, &saved); err != nil {
		// A corrupt book is not worth failing the UI over.
		return append([]string(nil), b.defaults...), nil
	}

	seen := make(map[string]struct{}, len(b.defaults)+len(saved))
	out := make([]string, 0, len(b.defaults)+len(saved))
	for _, name := range append(append([]string(nil), b.defaults...), saved...) {
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}

// Add records a new annotator. Adding an existing name is a no-op.
func (b *AnnotatorBook) Add(ctx context.Context, name string) ([]string, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty annotator name", ErrMalformedImport)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	names, err := b.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, existing := range names {
		if existing == name {
			return names, nil
		}
	}
	names = append(names, name)

	data, err := json.MarshalIndent(names, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode annotators: %w", err)
	}
	if err := b.blobs.Write(ctx, annotatorsKey, data); err != nil {
		return nil, fmt.Errorf("write annotators: %w", err)
	}
	metrics.UpdateAnnotators(len(names))
	return names, nil
}
