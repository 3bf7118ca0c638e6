package cache

import (
	"time"

	"github.com/tachyon-beep/mnemosyne-sub011/pkg/types"
)

// tier is one bounded cache partition. It owns its entry table and
// per-tier statistics; all access is serialized by the Manager's
// lock, so the tier itself carries no synchronization.
type tier struct {
	name     string
	capacity int64
	policy   Policy
	entries  map[string]*Entry

	hits      uint64
	misses    uint64
	evictions uint64
	size      int64
}

func newTier(name string, capacity int64, policy Policy) *tier {
	return &tier{
		name:     name,
		capacity: capacity,
		policy:   policy,
		entries:  make(map[string]*Entry),
	}
}

// insert adds an entry to the tier. The caller is responsible for
// having removed any copy of the key from other tiers first.
func (t *tier) insert(e *Entry) {
	if old, exists := t.entries[e.key]; exists {
		t.size -= old.size
	}
	t.entries[e.key] = e
	t.size += e.size
}

// remove deletes the key if present and reports whether it was found.
func (t *tier) remove(key string) bool {
	e, exists := t.entries[key]
	if !exists {
		return false
	}
	delete(t.entries, key)
	t.size -= e.size
	return true
}

// victim returns the entry the tier's policy would evict next, or nil
// if the tier is empty.
func (t *tier) victim(now time.Time) *Entry {
	var victim *Entry
	for _, e := range t.entries {
		if victim == nil || t.policy.evictsBefore(e, victim, now) {
			victim = e
		}
	}
	return victim
}

// hasRoom reports whether an additional size bytes fit.
func (t *tier) hasRoom(size int64) bool {
	return t.size+size <= t.capacity
}

// clear drops all entries and resets the tier's statistics.
func (t *tier) clear() {
	t.entries = make(map[string]*Entry)
	t.size = 0
	t.hits = 0
	t.misses = 0
	t.evictions = 0
}

// resize changes the tier's capacity. Trimming down to the new
// capacity is the Manager's job.
func (t *tier) resize(capacity int64) {
	t.capacity = capacity
}

// stats returns a snapshot of the tier's statistics.
func (t *tier) stats() types.CacheStats {
	s := types.CacheStats{
		Hits:       t.hits,
		Misses:     t.misses,
		Evictions:  t.evictions,
		Size:       t.size,
		Capacity:   t.capacity,
		EntryCount: len(t.entries),
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	if s.Capacity > 0 {
		s.Utilization = float64(s.Size) / float64(s.Capacity)
	}
	return s
}
