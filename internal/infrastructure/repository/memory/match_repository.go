package memory

import (
	"sync"

	"github.com/riskibarqy/matchcentre/internal/domain/match"
)

type viewEntry struct {
	records  []match.Record
	present  bool
	hasError bool
}

// MatchRepository keeps the latest records per view. Writers replace the whole
// slice; readers always receive copies.
type MatchRepository struct {
	mu    sync.RWMutex
	views map[match.View]*viewEntry
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{views: make(map[match.View]*viewEntry, len(match.AllViews))}
}

func (r *MatchRepository) Get(view match.View) ([]match.Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.views[view]
	if !ok || !entry.present {
		return nil, false
	}
	return match.CloneAll(entry.records), true
}

func (r *MatchRepository) Set(view match.View, records []match.Record) {
	stored := match.CloneAll(records)
	if stored == nil {
		stored = []match.Record{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entry := r.entry(view)
	entry.records = stored
	entry.present = true
}

func (r *MatchRepository) SetError(view match.View, hasError bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entry(view).hasError = hasError
}

func (r *MatchRepository) HasError(view match.View) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.views[view]
	return ok && entry.hasError
}

func (r *MatchRepository) Snapshot(view match.View) match.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.views[view]
	if !ok {
		return match.Snapshot{}
	}
	out := match.Snapshot{Present: entry.present, HasError: entry.hasError}
	if entry.present {
		out.Records = match.CloneAll(entry.records)
	}
	return out
}

func (r *MatchRepository) entry(view match.View) *viewEntry {
	entry, ok := r.views[view]
	if !ok {
		entry = &viewEntry{}
		r.views[view] = entry
	}
	return entry
}
