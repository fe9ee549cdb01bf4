package repository

import (
	"context"
	"strings"
	"sync"
)

// MemoryLinksRepo in-memory link table for tests and stub mode. Keys are
// "<through>/<match>=<value>" -> result ids.
type MemoryLinksRepo struct {
	mu    sync.RWMutex
	links map[string][]string
}

func NewMemoryLinksRepo() *MemoryLinksRepo {
	return &MemoryLinksRepo{links: map[string][]string{}}
}

// SeedLink registers result ids for one (through, match, value) lookup.
func (r *MemoryLinksRepo) SeedLink(through, match, value string, ids []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.links[linkKey(through, match, value)] = ids
}

func (r *MemoryLinksRepo) ResolveIndirectIDs(_ context.Context, through, _, match, value, _ string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.links[linkKey(through, match, value)], nil
}

func linkKey(through, match, value string) string {
	return strings.Join([]string{through, match, value}, "/")
}
